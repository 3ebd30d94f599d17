package mapping

import (
	"cartridge-engine/internal/common"
	"cartridge-engine/internal/diagnostic"
)

// Result is a serialized mapping outcome.
// Body is an *OrderedMap for JSON output and a string for XML output.
type Result struct {
	ContentType string
	Body        any
}

// Engine validates and maps inputs with cached plans.
type Engine struct {
	plans PlanCache
}

// NewEngine creates an Engine with an empty plan cache.
func NewEngine() *Engine {
	return &Engine{}
}

// Plan returns the cached plan for doc.
func (e *Engine) Plan(doc *Document) (*Plan, error) {
	return e.plans.Get(doc)
}

// Plans exposes the plan cache.
func (e *Engine) Plans() *PlanCache {
	return &e.plans
}

// Validate runs doc's validations against input.
func (e *Engine) Validate(input any, doc *Document) error {
	plan, err := e.plans.Get(doc)
	if err != nil {
		return err
	}

	return plan.Validate(input)
}

// Map validates input and builds a new output structure from doc's mappings.
func (e *Engine) Map(input any, doc *Document) (*OrderedMap, error) {
	plan, err := e.plans.Get(doc)
	if err != nil {
		return nil, err
	}

	err = plan.Validate(input)
	if err != nil {
		return nil, err
	}

	return plan.Map(input)
}

// Transform maps input and serializes the output as doc.Output requests.
func (e *Engine) Transform(input any, doc *Document) (Result, error) {
	out, err := e.Map(input, doc)
	if err != nil {
		return Result{}, err
	}

	return Serialize(out, doc.Output)
}

// Map applies the plan's mappings to input without validating.
func (p *Plan) Map(input any) (*OrderedMap, error) {
	out := NewOrderedMap(max(len(p.mappings), 4))

	for i := range p.mappings {
		cm := &p.mappings[i]

		v := cm.source.Eval(input)
		if common.IsMissing(v) {
			switch {
			case cm.rule.Default != nil:
				v = *cm.rule.Default
			case cm.rule.Required:
				return nil, diagnostic.Functional(diagnostic.CodeMappingSourceMissing, diagnostic.StepTransform,
					cm.rule.Source, "required mapping source missing: %s -> %s", cm.rule.Source, cm.rule.Target)
			default:
				continue
			}
		}

		out.Put(cm.target.Keys, v)
	}

	return out, nil
}

// Serialize renders out according to output.
func Serialize(out *OrderedMap, output Output) (Result, error) {
	if !output.IsXML() {
		return Result{ContentType: ContentTypeJSON, Body: out}, nil
	}

	root := output.Root
	if common.IsBlank(root) {
		root = DefaultXMLRoot
	}

	body, err := EncodeXML(root, out)
	if err != nil {
		return Result{}, diagnostic.Technical(diagnostic.CodeOutputSerializeFailed, diagnostic.StepTransform, "",
			"failed to serialize XML output").Wrap(err)
	}

	return Result{ContentType: ContentTypeXML, Body: body}, nil
}

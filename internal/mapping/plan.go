package mapping

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"sync"

	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/fieldpath"
)

// Plan is the compiled form of a Document.
type Plan struct {
	doc         *Document
	validations []compiledValidation
	mappings    []compiledMapping
}

// Document returns the document the plan was compiled from.
func (p *Plan) Document() *Document {
	return p.doc
}

// compiledValidation is a ValidationRule with parsed paths and regex.
// levels has one entry for a plain path and one more per "[]" marker.
type compiledValidation struct {
	rule    *ValidationRule
	levels  []fieldpath.ReadPath
	when    fieldpath.ReadPath
	pattern *regexp.Regexp
}

type compiledMapping struct {
	rule   *MappingRule
	source fieldpath.ReadPath
	target fieldpath.WritePath
}

// Compile turns doc into a Plan. Array markers are split, regex patterns are
// compiled with full-match anchoring and every path is parsed up front.
func Compile(doc *Document) (*Plan, error) {
	if doc == nil {
		return nil, diagnostic.Functional(diagnostic.CodeMappingDefinitionMissing, diagnostic.StepValidation, "",
			"mapping definition is missing")
	}

	p := &Plan{
		doc:         doc,
		validations: make([]compiledValidation, 0, len(doc.Validations)),
		mappings:    make([]compiledMapping, 0, len(doc.Mappings)),
	}

	for i := range doc.Validations {
		cv, err := compileValidation(&doc.Validations[i])
		if err != nil {
			return nil, err
		}

		p.validations = append(p.validations, cv)
	}

	for i := range doc.Mappings {
		rule := &doc.Mappings[i]

		src, err := fieldpath.ParseRead(rule.Source)
		if err != nil {
			return nil, malformed(diagnostic.StepTransform, rule.Source, err)
		}

		p.mappings = append(p.mappings, compiledMapping{
			rule:   rule,
			source: src,
			target: fieldpath.ParseWrite(rule.Target),
		})
	}

	return p, nil
}

func compileValidation(rule *ValidationRule) (compiledValidation, error) {
	cv := compiledValidation{rule: rule}

	rest := rule.Path
	for {
		list, elem, ok := fieldpath.SplitArray(rest)
		if !ok {
			break
		}

		lp, err := fieldpath.ParseRead(list)
		if err != nil {
			return cv, malformed(diagnostic.StepValidation, rule.Path, err)
		}

		cv.levels = append(cv.levels, lp)
		rest = elem
	}

	last, err := fieldpath.ParseRead(rest)
	if err != nil {
		return cv, malformed(diagnostic.StepValidation, rule.Path, err)
	}

	cv.levels = append(cv.levels, last)

	if rule.HasGuard() {
		cv.when, err = fieldpath.ParseRead(rule.WhenPath)
		if err != nil {
			return cv, malformed(diagnostic.StepValidation, rule.WhenPath, err)
		}
	}

	if rule.Pattern != "" {
		cv.pattern, err = regexp.Compile("^(?:" + rule.Pattern + ")$")
		if err != nil {
			return cv, diagnostic.Functional(diagnostic.CodeValidationPattern, diagnostic.StepValidation, rule.Path,
				"invalid pattern %q for %s", rule.Pattern, rule.Path).Wrap(err)
		}
	}

	return cv, nil
}

func malformed(step diagnostic.Step, path string, err error) *diagnostic.Error {
	return diagnostic.Functional(diagnostic.CodeGenericFunctional, step, path,
		"malformed path reference %q", path).Wrap(err)
}

// Fingerprint returns a content hash of doc: the SHA-256 of its canonical
// YAML encoding. Documents with the same content share a fingerprint.
func Fingerprint(doc *Document) ([sha256.Size]byte, error) {
	data, err := Marshal(doc)
	if err != nil {
		return [sha256.Size]byte{}, fmt.Errorf("failed to encode mapping document: %w", err)
	}

	return sha256.Sum256(data), nil
}

// PlanCache memoizes compiled plans by document fingerprint. Each document
// instance is fingerprinted once; later lookups with the same *Document skip
// the hash. Documents must not change after their first lookup.
// The zero value is ready to use.
type PlanCache struct {
	plans sync.Map // [32]byte -> *Plan
	docs  sync.Map // *Document -> *Plan
}

// Get returns the plan for doc, compiling it on first use. Compile errors
// are not cached.
func (c *PlanCache) Get(doc *Document) (*Plan, error) {
	if doc == nil {
		return Compile(nil)
	}

	if cached, ok := c.docs.Load(doc); ok {
		return cached.(*Plan), nil
	}

	key, err := Fingerprint(doc)
	if err != nil {
		return nil, diagnostic.Technical(diagnostic.CodeGenericTechnical, diagnostic.StepValidation, "",
			"failed to fingerprint mapping document").Wrap(err)
	}

	if cached, ok := c.plans.Load(key); ok {
		c.docs.Store(doc, cached)
		return cached.(*Plan), nil
	}

	plan, err := Compile(doc)
	if err != nil {
		return nil, err
	}

	actual, _ := c.plans.LoadOrStore(key, plan)
	c.docs.Store(doc, actual)

	return actual.(*Plan), nil
}

// Clear drops every cached plan.
func (c *PlanCache) Clear() {
	c.plans.Clear()
	c.docs.Clear()
}

// Len returns the number of cached plans.
func (c *PlanCache) Len() int {
	n := 0

	c.plans.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}

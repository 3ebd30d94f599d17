package enrich

import (
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"cartridge-engine/internal/common"
	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/fieldpath"
)

// Reserved set values.
const (
	TokenNow  = "${now}"
	TokenUUID = "${uuid}"
)

// Engine applies enrichment documents.
type Engine struct {
	registry *Registry
	paths    fieldpath.Cache

	now   func() time.Time
	newID func() string
}

// NewEngine creates an Engine resolving calls through registry.
// A nil registry behaves like an empty one.
func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}

	return &Engine{
		registry: registry,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Registry returns the function registry used by calls.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Enrich applies doc (which may be nil) and then the built-in normalizations.
func (e *Engine) Enrich(input map[string]any, doc *Document) (map[string]any, error) {
	out, err := e.Apply(input, doc)
	if err != nil {
		return nil, err
	}

	Normalize(out)

	return out, nil
}

// Apply returns a deep copy of input with doc's rules applied in order.
// input is never modified. A nil or empty doc yields a plain copy.
func (e *Engine) Apply(input map[string]any, doc *Document) (map[string]any, error) {
	out := common.CopyMap(input)
	if doc == nil {
		return out, nil
	}

	for i, rule := range doc.Rules {
		if rule == nil {
			continue
		}

		if !e.matches(out, rule.When) {
			continue
		}

		switch {
		case rule.Set != nil:
			e.paths.Put(out, rule.Set.Target, e.resolveValue(rule.Set.Value))
		case rule.Copy != nil:
			e.paths.Put(out, rule.Copy.Target, common.DeepCopy(e.paths.Get(out, rule.Copy.Source)))
		case rule.Call != nil:
			err := e.applyCall(out, rule.Call)
			if err != nil {
				return nil, err
			}
		default:
			return nil, diagnostic.Functional(diagnostic.CodeEnrichRuleInvalid, diagnostic.StepEnrichment, "",
				"invalid enrichment rule #%d: must contain 'set' or 'copy' or 'call'", i+1)
		}
	}

	return out, nil
}

func (e *Engine) matches(current map[string]any, when *When) bool {
	if when == nil {
		return true
	}

	v := e.paths.Get(current, when.Path)

	if when.Exists != nil && *when.Exists == common.IsMissing(v) {
		return false
	}

	if when.Equals != nil {
		return v != nil && common.Stringify(v) == *when.Equals
	}

	return true
}

func (e *Engine) resolveValue(value any) any {
	s, ok := value.(string)
	if !ok {
		return common.DeepCopy(value)
	}

	switch s {
	case TokenNow:
		return e.now().UTC().Format(time.RFC3339Nano)
	case TokenUUID:
		return e.newID()
	default:
		return s
	}
}

func (e *Engine) applyCall(body map[string]any, call *Call) error {
	if call.Bean == "" || call.Method == "" {
		return diagnostic.Functional(diagnostic.CodeEnrichCallMissing, diagnostic.StepEnrichment, "",
			"enrichment call must specify bean and method")
	}

	fn, ok := e.registry.Lookup(call.Bean, call.Method)
	if !ok {
		return diagnostic.Technical(diagnostic.CodeEnrichCallFailed, diagnostic.StepEnrichment, "",
			"failed enrichment call: %s(map): function not registered", call.Name())
	}

	result, err := invoke(fn, body)
	if err != nil {
		return diagnostic.Technical(diagnostic.CodeEnrichCallFailed, diagnostic.StepEnrichment, "",
			"failed enrichment call: %s(map)", call.Name()).Wrap(err)
	}

	if call.Target != "" {
		e.paths.Put(body, call.Target, result)
		return nil
	}

	m, ok := result.(map[string]any)
	if !ok {
		return diagnostic.Functional(diagnostic.CodeEnrichCallNotMap, diagnostic.StepEnrichment, "",
			"enrichment call %s returned %T but no target was provided", call.Name(), result)
	}

	maps.Copy(body, m)

	return nil
}

// invoke runs fn, turning a panic into an error.
func invoke(fn Func, body map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()

	return fn(body)
}

type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return "panic: " + common.Stringify(p.value)
}

// Normalize upper-cases and trims a non-blank string "currency" and trims a
// non-blank string "bic", in place.
func Normalize(m map[string]any) {
	if s, ok := m["currency"].(string); ok && !common.IsBlank(s) {
		m["currency"] = strings.ToUpper(strings.TrimSpace(s))
	}

	if s, ok := m["bic"].(string); ok && !common.IsBlank(s) {
		m["bic"] = strings.TrimSpace(s)
	}
}

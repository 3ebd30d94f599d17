package enrich

import (
	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/fieldpath"
	"cartridge-engine/internal/suggest"
)

// Lint reports every structural problem in doc without applying it: rules
// without an action, calls missing bean or method, calls to unregistered
// functions and malformed guard or copy paths.
func Lint(doc *Document, registry *Registry) []*diagnostic.Error {
	if doc == nil {
		return nil
	}

	var errs []*diagnostic.Error

	for i, rule := range doc.Rules {
		if rule == nil {
			continue
		}

		if rule.When != nil && rule.When.Path != "" {
			if _, err := fieldpath.ParseRead(rule.When.Path); err != nil {
				errs = append(errs, diagnostic.Functional(diagnostic.CodeEnrichRuleInvalid, diagnostic.StepEnrichment,
					rule.When.Path, "rule #%d: %v", i+1, err))
			}
		}

		switch {
		case rule.Set != nil:
		case rule.Copy != nil:
			if _, err := fieldpath.ParseRead(rule.Copy.Source); err != nil {
				errs = append(errs, diagnostic.Functional(diagnostic.CodeEnrichRuleInvalid, diagnostic.StepEnrichment,
					rule.Copy.Source, "rule #%d: %v", i+1, err))
			}
		case rule.Call != nil:
			call := rule.Call
			if call.Bean == "" || call.Method == "" {
				errs = append(errs, diagnostic.Functional(diagnostic.CodeEnrichCallMissing, diagnostic.StepEnrichment, "",
					"rule #%d: enrichment call must specify bean and method", i+1))

				continue
			}

			if registry == nil {
				registry = NewRegistry()
			}

			if !registry.Has(call.Bean, call.Method) {
				errs = append(errs, diagnostic.Technical(diagnostic.CodeEnrichCallFailed, diagnostic.StepEnrichment, "",
					"rule #%d: function %s is not registered%s", i+1, call.Name(),
					suggest.Hint(call.Name(), registry.Names())))
			}
		default:
			errs = append(errs, diagnostic.Functional(diagnostic.CodeEnrichRuleInvalid, diagnostic.StepEnrichment, "",
				"rule #%d: must contain 'set' or 'copy' or 'call'", i+1))
		}
	}

	return errs
}

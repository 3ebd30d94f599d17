package pipeline

import (
	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/enrich"
	"cartridge-engine/internal/mapping"
	"cartridge-engine/internal/resolver"
)

// template is everything a record needs from its resolved cartridge. It is
// shared read-only by every record of a request.
type template struct {
	ctx     resolver.Context
	mapping *mapping.Document
	plan    *mapping.Plan
	enrich  *enrich.Document
}

// template resolves the cartridge and loads its documents.
func (s *Service) template(cartridgeID, currency, direction string) (*template, error) {
	ctx, err := s.resolver.Resolve(cartridgeID, currency, direction)
	if err != nil {
		return nil, err
	}

	doc, err := s.mappings.Load(ctx.MappingPath)
	if err != nil {
		return nil, err
	}

	plan, err := s.mapper.Plan(doc)
	if err != nil {
		return nil, err
	}

	edoc, _, err := s.enrichments.LoadOptional(ctx.EnrichPath)
	if err != nil {
		return nil, err
	}

	return &template{ctx: ctx, mapping: doc, plan: plan, enrich: edoc}, nil
}

// execute runs one record through validation, enrichment and transformation.
func (s *Service) execute(tpl *template, input map[string]any) (mapping.Result, error) {
	err := s.validate(tpl, input)
	if err != nil {
		return mapping.Result{}, err
	}

	enriched, err := s.enrich(tpl, input)
	if err != nil {
		return mapping.Result{}, err
	}

	return s.transform(tpl, enriched)
}

// validate checks the raw record against the template's schema, if any.
func (s *Service) validate(tpl *template, input map[string]any) error {
	err := s.schemas.Validate(tpl.ctx.SchemaPath, input)
	if err != nil {
		return diagnostic.From(err, diagnostic.StepValidation)
	}

	return nil
}

// enrich returns a new record with the enrichment rules and the built-in
// normalizations applied.
func (s *Service) enrich(tpl *template, input map[string]any) (map[string]any, error) {
	out, err := s.enricher.Enrich(input, tpl.enrich)
	if err != nil {
		return nil, diagnostic.From(err, diagnostic.StepEnrichment)
	}

	return out, nil
}

// transform runs the mapping document's validations against the enriched
// record, maps it and serializes the result.
func (s *Service) transform(tpl *template, enriched map[string]any) (mapping.Result, error) {
	err := tpl.plan.Validate(enriched)
	if err != nil {
		return mapping.Result{}, diagnostic.From(err, diagnostic.StepValidation)
	}

	out, err := tpl.plan.Map(enriched)
	if err != nil {
		return mapping.Result{}, diagnostic.From(err, diagnostic.StepTransform)
	}

	res, err := mapping.Serialize(out, tpl.mapping.Output)
	if err != nil {
		return mapping.Result{}, diagnostic.From(err, diagnostic.StepTransform)
	}

	return res, nil
}

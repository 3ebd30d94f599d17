package pipeline

import (
	"fmt"
	"path"

	"cartridge-engine/internal/catalog"
	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/enrich"
	"cartridge-engine/internal/resolver"
	"cartridge-engine/internal/suggest"
)

// Check loads every cartridge template reachable from the catalog and
// collects all problems instead of stopping at the first one.
//
// Each declared flow direction is resolved; every distinct template
// directory (base and per-currency) is loaded once, its plan compiled, its
// enrichment rules linted against the registry and its schema compiled.
func (s *Service) Check() diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	snap := s.catalog.Snapshot()
	diags.Merge(checkProviders(snap))

	seen := make(map[string]struct{})

	for _, id := range snap.CartridgeIDs() {
		flow, ok := snap.Flow(id)
		if !ok {
			diags.AddError(diagnostic.CodeCartridgeFlowNotFound, "no flow mapping declared", id, "")
			continue
		}

		for _, direction := range declaredDirections(flow) {
			diags.Merge(s.checkContext(seen, id, "", direction))

			for _, currency := range WarmCurrencies {
				if s.resolver.CurrencyTemplateExists(id, currency) {
					diags.Merge(s.checkContext(seen, id, currency, direction))
				}
			}
		}
	}

	diags.AddInfo(diagnostic.CodeGenericFunctional,
		fmt.Sprintf("checked %d cartridges, %d templates", len(snap.CartridgeIDs()), len(seen)), "", "")

	return diags
}

func checkProviders(snap *catalog.Snapshot) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	for _, name := range snap.ProviderNames() {
		p, _ := snap.Provider(name)
		for _, id := range p.Cartridges {
			if _, ok := snap.Cartridge(id); !ok {
				diags.AddWarning(diagnostic.CodeCartridgeNotFound,
					fmt.Sprintf("provider %s lists unknown cartridge%s", name, suggest.Hint(id, snap.CartridgeIDs())), id, "")
			}
		}
	}

	return diags
}

func declaredDirections(flow catalog.CartridgeFlow) []string {
	var dirs []string
	if flow.Outbound != nil {
		dirs = append(dirs, resolver.DirectionOutbound)
	}

	if flow.Inbound != nil {
		dirs = append(dirs, resolver.DirectionInbound)
	}

	return dirs
}

// checkContext reports the problems of one resolved template, or nothing
// when the template was already checked.
func (s *Service) checkContext(seen map[string]struct{}, id, currency, direction string) diagnostic.Diagnostics {
	var diags diagnostic.Diagnostics

	label := id
	if currency != "" {
		label = path.Join(id, currency)
	}

	ctx, err := s.resolver.Resolve(id, currency, direction)
	if err != nil {
		diags.AddFromError(err, label+" "+direction)
		return diags
	}

	dir := ctx.TemplateDir()
	if _, done := seen[dir]; done {
		return diags
	}

	seen[dir] = struct{}{}

	s.checkTemplate(&diags, label, ctx)

	return diags
}

func (s *Service) checkTemplate(diags *diagnostic.Diagnostics, label string, ctx resolver.Context) {
	doc, err := s.mappings.Load(ctx.MappingPath)
	if err != nil {
		diags.AddFromError(err, label)
	} else {
		if len(doc.Mappings) == 0 {
			diags.AddWarning(diagnostic.CodeMappingDefinitionMissing, "mapping document has no mappings", label,
				ctx.MappingPath)
		}

		_, err = s.mapper.Plan(doc)
		if err != nil {
			diags.AddFromError(err, label)
		}
	}

	edoc, _, err := s.enrichments.LoadOptional(ctx.EnrichPath)
	if err != nil {
		diags.AddFromError(err, label)
	}

	for _, lintErr := range enrich.Lint(edoc, s.enricher.Registry()) {
		diags.AddFromError(lintErr, label)
	}

	_, err = s.schemas.Has(ctx.SchemaPath)
	if err != nil {
		diags.AddFromError(err, label)
	}
}

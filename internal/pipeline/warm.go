package pipeline

import (
	"log"
	"time"

	"cartridge-engine/internal/resolver"
)

// WarmCurrencies are the currencies whose templates are preloaded by Warm.
var WarmCurrencies = []string{"USD", "EUR", "GBP", "INR", "JPY", "CAD", "AUD"}

// WarmStats counts what Warm loaded.
type WarmStats struct {
	Contexts    int
	Mappings    int
	Enrichments int
	Elapsed     time.Duration
}

// Warm resolves every cartridge in both directions, for the base template
// and for each of WarmCurrencies that has its own template, and loads the
// mapping (with its compiled plan) and the optional enrichment document.
// Anything that fails is skipped.
func (s *Service) Warm() WarmStats {
	start := time.Now()

	var stats WarmStats

	for _, id := range s.catalog.Snapshot().CartridgeIDs() {
		for _, direction := range []string{resolver.DirectionOutbound, resolver.DirectionInbound} {
			s.warmOne(&stats, id, "", direction)

			for _, currency := range WarmCurrencies {
				if s.resolver.CurrencyTemplateExists(id, currency) {
					s.warmOne(&stats, id, currency, direction)
				}
			}
		}
	}

	stats.Elapsed = time.Since(start)
	log.Printf("cache warming completed in %s: %d contexts, %d mappings, %d enrichments",
		stats.Elapsed, stats.Contexts, stats.Mappings, stats.Enrichments)

	return stats
}

func (s *Service) warmOne(stats *WarmStats, id, currency, direction string) {
	ctx, err := s.resolver.Resolve(id, currency, direction)
	if err != nil {
		log.Printf("cache warming: skipping %s %s %s: %v", id, currency, direction, err)
		return
	}

	stats.Contexts++

	doc, err := s.mappings.Load(ctx.MappingPath)
	if err != nil {
		log.Printf("cache warming: skipping mapping %s: %v", ctx.MappingPath, err)
		return
	}

	_, err = s.mapper.Plan(doc)
	if err != nil {
		log.Printf("cache warming: skipping plan %s: %v", ctx.MappingPath, err)
		return
	}

	stats.Mappings++

	_, _, err = s.enrichments.LoadOptional(ctx.EnrichPath)
	if err != nil {
		log.Printf("cache warming: skipping enrichment %s: %v", ctx.EnrichPath, err)
		return
	}

	stats.Enrichments++
}

package pipeline

import (
	"context"
	"log"

	"github.com/google/uuid"

	"cartridge-engine/internal/audit"
	"cartridge-engine/internal/catalog"
	"cartridge-engine/internal/common"
	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/enrich"
	"cartridge-engine/internal/mapping"
	"cartridge-engine/internal/resolver"
	"cartridge-engine/internal/resource"
	"cartridge-engine/internal/schema"
	"cartridge-engine/internal/workpool"
)

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	// Registry resolves enrichment calls. Defaults to enrich.Builtins().
	Registry *enrich.Registry
	// Pool runs bulk records. Defaults to workpool.Sequential.
	Pool workpool.Pool
	// Sink receives raw and transformed payloads. Defaults to audit.Nop.
	Sink audit.Sink
}

// Service wires the stages together and owns their caches.
type Service struct {
	catalog  *catalog.Store
	resolver *resolver.Resolver

	mappings    *mapping.Loader
	mapper      *mapping.Engine
	enrichments *enrich.Loader
	enricher    *enrich.Engine
	schemas     *schema.Validator

	pool  workpool.Pool
	sink  audit.Sink
	newID func() string
}

// New creates a Service reading cartridge templates under cartridgesRoot
// through res.
func New(store *catalog.Store, res resource.Loader, cartridgesRoot string, opts Options) *Service {
	registry := opts.Registry
	if registry == nil {
		registry = enrich.Builtins()
	}

	pool := opts.Pool
	if pool == nil {
		pool = workpool.Sequential{}
	}

	sink := opts.Sink
	if sink == nil {
		sink = audit.Nop{}
	}

	return &Service{
		catalog:     store,
		resolver:    resolver.New(store, res, cartridgesRoot),
		mappings:    mapping.NewLoader(res),
		mapper:      mapping.NewEngine(),
		enrichments: enrich.NewLoader(res),
		enricher:    enrich.NewEngine(registry),
		schemas:     schema.NewValidator(res),
		pool:        pool,
		sink:        sink,
		newID:       uuid.NewString,
	}
}

// Catalog returns the configuration store.
func (s *Service) Catalog() *catalog.Store {
	return s.catalog
}

// Resolver returns the cartridge resolver.
func (s *Service) Resolver() *resolver.Resolver {
	return s.resolver
}

// Registry returns the enrichment function registry.
func (s *Service) Registry() *enrich.Registry {
	return s.enricher.Registry()
}

// ClearCaches drops every cached context, document, plan and schema.
func (s *Service) ClearCaches() {
	s.resolver.ClearCache()
	s.mappings.Clear()
	s.mapper.Plans().Clear()
	s.enrichments.Clear()
	s.schemas.Clear()
}

// Reload re-reads the configuration documents and, on success, rebuilds the
// resolver and drops every cache. On failure nothing changes.
func (s *Service) Reload() error {
	err := s.catalog.Reload()
	if err != nil {
		return err
	}

	s.resolver.Rebuild()
	s.ClearCaches()

	return nil
}

// Process runs req through the pipeline.
//
// Errors are *diagnostic.Error values. For bulk requests only request-level
// failures (body shape, cartridge resolution, template loading, a broken
// worker pool) are returned; record failures land in Response.Results.
func (s *Service) Process(ctx context.Context, req Request) (Response, error) {
	id := req.RequestID
	if common.IsBlank(id) {
		var ok bool
		if id, ok = requestID(req.Body); !ok {
			id = s.newID()
		}
	}

	s.record(ctx, audit.KindRaw, id, req.Body, audit.StatusReceived)

	resp, err := s.process(req)
	if err != nil {
		de := diagnostic.From(err, diagnostic.StepUnknown)
		s.record(ctx, audit.KindTransformed, id, de.Payload(), audit.StatusFailed)

		return Response{RequestID: id}, de
	}

	resp.RequestID = id
	s.record(ctx, audit.KindTransformed, id, resp.Body, audit.StatusTransformed)

	return resp, nil
}

func (s *Service) process(req Request) (Response, error) {
	records, bulk, err := split(req.Body)
	if err != nil {
		return Response{}, err
	}

	if common.IsBlank(req.CartridgeID) {
		return Response{}, diagnostic.Functional(diagnostic.CodeRequestCartridgeIDMissing, diagnostic.StepValidation, "",
			"missing cartridge id")
	}

	tpl, err := s.template(req.CartridgeID, req.Currency, req.Direction)
	if err != nil {
		return Response{}, err
	}

	if !bulk {
		rec := records[0]

		res, err := s.execute(tpl, rec.Input)
		if err != nil {
			return Response{}, err
		}

		return Response{ContentType: res.ContentType, Body: res.Body}, nil
	}

	err = s.runBulk(tpl, records)
	if err != nil {
		return Response{}, err
	}

	results := make([]Result, len(records))
	for i, rec := range records {
		results[i] = rec.Result()
	}

	return Response{ContentType: mapping.ContentTypeJSON, Body: results, Bulk: true, Results: results}, nil
}

// runBulk executes every record that has not failed yet. Only a failure of
// the pool itself is returned.
func (s *Service) runBulk(tpl *template, records []*Record) error {
	err := s.pool.Run(len(records), func(i int) {
		rec := records[i]
		if rec.Failed() {
			return
		}

		res, err := s.execute(tpl, rec.Input)
		if err != nil {
			rec.Err = diagnostic.From(err, diagnostic.StepUnknown)
			return
		}

		rec.succeed(res)
	})
	if err != nil {
		return diagnostic.From(err, diagnostic.StepUnknown)
	}

	return nil
}

func (s *Service) record(ctx context.Context, kind, id string, payload any, status string) {
	var err error

	switch kind {
	case audit.KindRaw:
		err = s.sink.StoreRaw(ctx, id, payload, status)
	default:
		err = s.sink.StoreTransformed(ctx, id, payload, status)
	}

	if err != nil {
		log.Printf("audit: failed to store %s payload for request %s: %v", kind, id, err)
	}
}

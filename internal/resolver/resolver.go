package resolver

import (
	"log"
	"path"
	"sync"

	"cartridge-engine/internal/catalog"
	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/resource"
	"cartridge-engine/internal/suggest"
)

// Resolver resolves cartridge contexts against a catalog store.
type Resolver struct {
	store  *catalog.Store
	loader resource.Loader
	root   string

	baseMu    sync.RWMutex
	basePaths map[string]string

	templates sync.Map // directory -> bool
	contexts  sync.Map // contextKey -> Context
}

// New creates a Resolver whose templates live under root and builds the
// base-path table from the current catalog snapshot.
func New(store *catalog.Store, loader resource.Loader, root string) *Resolver {
	r := &Resolver{
		store:  store,
		loader: loader,
		root:   root,
	}

	r.Rebuild()

	return r
}

// Rebuild re-derives the base-path table from the current catalog snapshot.
// It does not touch the other caches; call ClearCache for that.
func (r *Resolver) Rebuild() {
	snap := r.store.Snapshot()
	ids := snap.CartridgeIDs()
	paths := make(map[string]string, len(ids))

	for _, id := range ids {
		cs, _ := snap.Cartridge(id)
		paths[id] = path.Join(r.root, cs.Provider, id)
	}

	r.baseMu.Lock()
	r.basePaths = paths
	r.baseMu.Unlock()

	log.Printf("resolver built %d cartridge base paths under %s", len(paths), r.root)
}

// Resolve returns the context for the triple. An empty direction means
// outbound. Every failure is FUNCTIONAL with step RESOLVE.
func (r *Resolver) Resolve(cartridgeID, currency, direction string) (Context, error) {
	direction = NormalizeDirection(direction)
	key := contextKey{cartridgeID: cartridgeID, currency: currency, direction: direction}

	if cached, ok := r.contexts.Load(key); ok {
		return cached.(Context), nil
	}

	ctx, err := r.resolve(cartridgeID, currency, direction)
	if err != nil {
		return Context{}, err
	}

	actual, _ := r.contexts.LoadOrStore(key, ctx)

	return actual.(Context), nil
}

func (r *Resolver) resolve(cartridgeID, currency, direction string) (Context, error) {
	snap := r.store.Snapshot()

	base, ok := r.basePath(cartridgeID)
	if !ok {
		return Context{}, resolveError(diagnostic.CodeCartridgeNotFound, "cartridge not found: %s%s",
			cartridgeID, suggest.Hint(cartridgeID, snap.CartridgeIDs()))
	}

	schema, ok := snap.Cartridge(cartridgeID)
	if !ok {
		return Context{}, resolveError(diagnostic.CodeCartridgeNotFound, "cartridge not found: %s", cartridgeID)
	}

	flow, ok := snap.Flow(cartridgeID)
	if !ok {
		return Context{}, resolveError(diagnostic.CodeCartridgeFlowNotFound, "cartridge flow not found: %s", cartridgeID)
	}

	dir := flow.Outbound
	if IsInbound(direction) {
		dir = flow.Inbound
	}

	if dir == nil || dir.FlowID == "" {
		return Context{}, resolveError(diagnostic.CodeCartridgeFlowNotFound,
			"flow direction not found for %s: %s", cartridgeID, direction)
	}

	def, ok := snap.FlowDefinition(dir.FlowID)
	if !ok {
		return Context{}, resolveError(diagnostic.CodeCartridgeFlowNotFound, "flow definition not found: %s", dir.FlowID)
	}

	templateDir, err := r.templateDir(base, currency)
	if err != nil {
		return Context{}, err
	}

	return newContext(schema.Provider, cartridgeID, currency, direction, dir.FlowID,
		schema.InputFormat, def.From, def.To, templateDir), nil
}

func (r *Resolver) templateDir(base, currency string) (string, error) {
	if currency != "" {
		candidate := path.Join(base, currency)
		if r.templateExists(candidate) {
			return candidate, nil
		}
	}

	if !r.templateExists(base) {
		return "", resolveError(diagnostic.CodeCartridgeTemplateNotFound, "cartridge templates not found: %s", base)
	}

	return base, nil
}

func (r *Resolver) templateExists(dir string) bool {
	if cached, ok := r.templates.Load(dir); ok {
		return cached.(bool)
	}

	exists := r.loader.Exists(path.Join(dir, MappingFile))
	r.templates.Store(dir, exists)

	return exists
}

func (r *Resolver) basePath(cartridgeID string) (string, bool) {
	r.baseMu.RLock()
	defer r.baseMu.RUnlock()

	p, ok := r.basePaths[cartridgeID]

	return p, ok
}

// CartridgeExists reports whether the cartridge has a base path.
func (r *Resolver) CartridgeExists(cartridgeID string) bool {
	_, ok := r.basePath(cartridgeID)
	return ok
}

// CurrencyTemplateExists reports whether the cartridge has a template
// directory dedicated to currency.
func (r *Resolver) CurrencyTemplateExists(cartridgeID, currency string) bool {
	base, ok := r.basePath(cartridgeID)
	if !ok || currency == "" {
		return false
	}

	return r.templateExists(path.Join(base, currency))
}

// ClearCache drops resolved contexts and template existence results.
// The base-path table is kept.
func (r *Resolver) ClearCache() {
	r.contexts.Clear()
	r.templates.Clear()

	log.Printf("resolver caches cleared")
}

func resolveError(code diagnostic.Code, format string, args ...any) *diagnostic.Error {
	return diagnostic.Functional(code, diagnostic.StepResolve, "", format, args...)
}

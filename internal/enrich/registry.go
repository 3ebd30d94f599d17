package enrich

import (
	"maps"
	"slices"
	"sync"
)

// Func is an enrichment function. It receives the output built so far and
// must not modify it. A map result is merged into the output when the call
// has no target.
type Func func(body map[string]any) (any, error)

// Registry maps "bean.method" names to functions.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]Func),
	}
}

// Register adds fn under bean.method, replacing any previous entry.
func (r *Registry) Register(bean, method string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.funcs[bean+"."+method] = fn
}

// Lookup returns the function registered under bean.method.
func (r *Registry) Lookup(bean, method string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[bean+"."+method]

	return fn, ok
}

// Has returns true if a function is registered under bean.method.
func (r *Registry) Has(bean, method string) bool {
	_, ok := r.Lookup(bean, method)
	return ok
}

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.funcs))
}

package sources

import (
	"sync"

	"github.com/samber/lo"
)

// Registry holds the registered sources keyed by name. Re-registering a name
// replaces the previous source but keeps its original position in listings.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register inserts src under src.Name(), overwriting any existing entry.
func (r *Registry) Register(src Source) {
	if src == nil {
		return
	}
	name := src.Name()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[name]; !exists {
		r.order = append(r.order, name)
	}
	r.sources[name] = src
}

// Get looks up a source by its exact name.
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[name]
	return src, ok
}

// All returns every registered source in registration order.
func (r *Registry) All() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(r.order, func(name string, _ int) Source {
		return r.sources[name]
	})
}

// Names returns the names of every registered source in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// AvailableNames returns the names of sources that currently report themselves
// available. Sources without an availability flag count as available.
func (r *Registry) AvailableNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.order, func(name string, _ int) bool {
		return isAvailable(r.sources[name])
	})
}

// Len reports how many sources are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func isAvailable(src Source) bool {
	if checker, ok := src.(Availability); ok {
		return checker.IsAvailable()
	}
	return true
}

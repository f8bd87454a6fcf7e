package routing

import (
	"sort"
	"sync"

	"github.com/swanstudios/plangate/internal/ports"
)

// Registry holds the registered provider adapters. Registration
// normally happens once at startup; the lock exists for tests that
// swap adapters mid-run.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]ports.ProviderAdapter
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]ports.ProviderAdapter)}
}

// Register adds or replaces the adapter under its own name.
func (r *Registry) Register(adapter ports.ProviderAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Name()] = adapter
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (ports.ProviderAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[name]
	return adapter, ok
}

// Names returns the registered adapter names, sorted for determinism.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every registered adapter. Intended for tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters = make(map[string]ports.ProviderAdapter)
}

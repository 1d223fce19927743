package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a thread-safe registry of source adapters, keyed by the
// provider name indicator specs carry.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates a new empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// Register adds an adapter to the registry. Duplicate registrations
// overwrite the previous entry.
func (r *Registry) Register(a Adapter) error {
	name := a.Info().Name
	if name == "" {
		return fmt.Errorf("adapter name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = a
	return nil
}

// Get returns an adapter by name, or an error if not found.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return a, nil
}

// List returns info about all registered adapters, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.adapters))
	for _, a := range r.adapters {
		infos = append(infos, a.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// Names returns all registered adapter names, sorted.
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

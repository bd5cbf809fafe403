package convert

import (
	"fmt"
	"sync"
)

// Registry tracks in-flight conversions for the server, keyed by ID.
type Registry struct {
	mu          sync.RWMutex
	conversions map[string]*Conversion
}

// NewRegistry creates an empty conversion registry.
func NewRegistry() *Registry {
	return &Registry{conversions: make(map[string]*Conversion)}
}

// Add registers a conversion.
func (r *Registry) Add(c *Conversion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversions[c.ID()] = c
}

// Get returns a conversion by ID.
func (r *Registry) Get(id string) (*Conversion, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conversions[id]
	return c, ok
}

// Remove deletes a conversion and closes its page source.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	c, ok := r.conversions[id]
	delete(r.conversions, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("conversion not found: %s", id)
	}
	return c.Close()
}

// IDs returns the IDs of all registered conversions.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.conversions))
	for id := range r.conversions {
		ids = append(ids, id)
	}
	return ids
}

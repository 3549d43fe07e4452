package gantry

import "sync"

// Registry manages named containers. Instances are created lazily on first
// request and live until removed. Unlike the containers it hands out, the
// registry itself is safe for concurrent use.
type Registry struct {
	containers map[string]Container
	order      []string
	mu         sync.Mutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		containers: make(map[string]Container),
	}
}

// Instance returns the container registered under name, creating it with the
// given options on first request. Options are applied only when the container
// is created; later calls return the existing instance unchanged.
func (r *Registry) Instance(name string, opts ...Option) Container {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.containers[name]; ok {
		return c
	}

	c := New(opts...)
	r.containers[name] = c
	r.order = append(r.order, name)

	return c
}

// Has reports whether a container exists under name.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.containers[name]
	return ok
}

// Names returns the registered container names in creation order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Remove drops the container registered under name. The next Instance call
// for that name creates a fresh container.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.containers[name]; !ok {
		return
	}
	delete(r.containers, name)
	for i, v := range r.order {
		if v == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Reset drops every registered container.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.containers = make(map[string]Container)
	r.order = nil
}

// defaultRegistry backs the package-level Instance helper. It is the only
// process-wide state in the package; prefer an owned Registry or container
// in library code.
var defaultRegistry = NewRegistry()

// Instance returns a named container from the package-level registry,
// creating it on first request.
//
// Usage:
//
//	c := gantry.Instance("app")
//	c.Define("mailer", NewMailer)
func Instance(name string, opts ...Option) Container {
	return defaultRegistry.Instance(name, opts...)
}

// DefaultRegistry exposes the package-level registry, mainly so tests can
// reset it.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

package gantry

import (
	"context"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// containerImpl implements Container.
type containerImpl struct {
	definitions map[string]*definition
	instances   map[string]any
	order       []string // definition and instance ids, registration order
	refs        *referenceIndex
	loading     *loadingSet
	delayed     *delayedCalls
	graph       *DependencyGraph
	middleware  *middlewareChain
	introspect  Introspector

	autowire      bool
	fullReference bool

	log *zap.Logger
	mu  sync.RWMutex
}

// newContainerImpl creates a new container implementation.
func newContainerImpl() *containerImpl {
	return &containerImpl{
		definitions:   make(map[string]*definition),
		instances:     make(map[string]any),
		refs:          newReferenceIndex(),
		loading:       newLoadingSet(),
		delayed:       newDelayedCalls(),
		graph:         NewDependencyGraph(),
		middleware:    newMiddlewareChain(),
		introspect:    defaultIntrospector,
		autowire:      true,
		fullReference: true,
		log:           zap.NewNop(),
	}
}

// =============================================================================
// REGISTRATION
// =============================================================================

// Define registers a service recipe under id. The target is either a
// constructor function returning (T) or (T, error), or a pointer-to-struct
// prototype instantiated without constructor arguments.
func (c *containerImpl) Define(id string, target any, opts ...DefineOption) error {
	if id == "" {
		return ErrInvalidDefinition(id, "service id cannot be empty")
	}
	if target == nil {
		return ErrInvalidTarget
	}

	def := &definition{id: id, target: target}
	for _, opt := range opts {
		opt(def)
	}

	t := reflect.TypeOf(target)
	if t.Kind() == reflect.Func {
		def.isFunc = true
		def.ctor = reflect.ValueOf(target)
		def.ctorType = t

		result, hasError, err := resultType(t)
		if err != nil {
			return ErrInvalidDefinition(id, err.Error())
		}
		def.result = result
		def.hasError = hasError
	} else {
		if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
			return ErrInvalidDefinition(id, "prototype target must be a pointer to a struct")
		}
		if len(def.args) > 0 {
			return ErrInvalidDefinition(id, "prototype definitions take no constructor arguments")
		}
		def.result = t
	}

	c.mu.Lock()
	if _, exists := c.definitions[id]; exists {
		c.mu.Unlock()
		return ErrServiceAlreadyExists(id)
	}
	if _, exists := c.instances[id]; exists {
		c.mu.Unlock()
		return ErrServiceAlreadyExists(id)
	}
	c.definitions[id] = def
	c.order = append(c.order, id)
	c.graph.AddNode(id, def.edges())
	fullReference := c.fullReference
	c.mu.Unlock()

	for _, iface := range def.as {
		c.refs.addInterface(iface)
		c.refs.record(id, TypeName(iface))
	}
	if fullReference {
		c.refs.indexType(id, def.result)
	}

	c.log.Debug("service defined",
		zap.String("service", id),
		zap.String("type", TypeName(def.result)))

	return nil
}

// SetInstance stores a pre-built instance in the cache. The cache is
// write-once per id.
func (c *containerImpl) SetInstance(id string, instance any) error {
	if id == "" {
		return ErrInvalidDefinition(id, "service id cannot be empty")
	}

	c.mu.Lock()
	if _, exists := c.instances[id]; exists {
		c.mu.Unlock()
		return ErrServiceAlreadyExists(id)
	}
	c.instances[id] = instance
	if _, defined := c.definitions[id]; !defined {
		c.order = append(c.order, id)
	}
	if !c.graph.HasNode(id) {
		c.graph.AddNode(id, nil)
	}
	fullReference := c.fullReference
	c.mu.Unlock()

	if fullReference && instance != nil {
		c.refs.indexType(id, reflect.TypeOf(instance))
	}

	c.log.Debug("instance set", zap.String("service", id))

	return nil
}

// AddReference records id under a class or interface name, so the service can
// be looked up by that name.
func (c *containerImpl) AddReference(id string, name string) {
	c.refs.record(id, name)
}

// AddInterface catalogs an interface type for implements-based lookup.
// Non-interface types are ignored.
func (c *containerImpl) AddInterface(iface reflect.Type) {
	c.refs.addInterface(iface)
}

// =============================================================================
// SETTINGS
// =============================================================================

// SetAutowire toggles descriptor-driven resolution of unsupplied parameters.
func (c *containerImpl) SetAutowire(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autowire = enabled
}

// Autowire reports whether auto-wiring is enabled.
func (c *containerImpl) Autowire() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.autowire
}

// SetFullReference toggles automatic reference indexing. The flag applies to
// definitions and instances registered after the change.
func (c *containerImpl) SetFullReference(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fullReference = enabled
}

// FullReference reports whether automatic reference indexing is enabled.
func (c *containerImpl) FullReference() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fullReference
}

// =============================================================================
// LOOKUP
// =============================================================================

// Resolve returns the service registered under id, building it on first use.
func (c *containerImpl) Resolve(id string) (any, error) {
	ctx := context.Background()

	if err := c.middleware.beforeResolve(ctx, id); err != nil {
		return nil, err
	}

	service, err := c.resolveInternal(id)

	if mwErr := c.middleware.afterResolve(ctx, id, service, err); mwErr != nil {
		return nil, mwErr
	}

	return service, err
}

// resolveInternal performs the actual lookup without middleware: instance
// cache first, then definitions, then the reference index.
func (c *containerImpl) resolveInternal(id string) (any, error) {
	c.mu.RLock()
	instance, cached := c.instances[id]
	def, defined := c.definitions[id]
	c.mu.RUnlock()

	if cached {
		return instance, nil
	}

	if defined {
		return c.buildService(def)
	}

	if target, ok := c.refs.resolve(id); ok && target != id {
		return c.resolveInternal(target)
	}

	return nil, ErrServiceNotFound(id)
}

// ResolveType returns a service satisfying the given class or interface name.
func (c *containerImpl) ResolveType(name string) (any, error) {
	if id, ok := c.refs.resolve(name); ok {
		return c.Resolve(id)
	}

	if iface, ok := c.refs.interfaceByName(name); ok {
		if id, ok := c.scanForType(iface); ok {
			return c.Resolve(id)
		}
	}

	return nil, ErrServiceNotFound(name)
}

// Has reports whether id is known: cached, defined, or a recorded reference.
func (c *containerImpl) Has(id string) bool {
	c.mu.RLock()
	_, cached := c.instances[id]
	_, defined := c.definitions[id]
	c.mu.RUnlock()

	return cached || defined || c.refs.has(id)
}

// Loaded reports whether id has a cached instance.
func (c *containerImpl) Loaded(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, cached := c.instances[id]
	return cached
}

// Services returns all known service ids in registration order.
func (c *containerImpl) Services() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, len(c.order))
	copy(ids, c.order)

	return ids
}

// =============================================================================
// PLUMBING
// =============================================================================

// Use adds middleware to the container.
// Middleware is called in the order they are added.
func (c *containerImpl) Use(middleware Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware.add(middleware)
}

// Graph returns the declared dependency graph.
func (c *containerImpl) Graph() *DependencyGraph {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.graph
}

// providerType returns the concrete type id would produce, without building.
func (c *containerImpl) providerType(id string) reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if def, ok := c.definitions[id]; ok {
		return def.result
	}
	if instance, ok := c.instances[id]; ok && instance != nil {
		return reflect.TypeOf(instance)
	}
	return nil
}

// scanForType finds the first registered provider whose type implements the
// interface, records it in the index, and returns its id. The scan only runs
// in full-reference mode; explicit mode resolves recorded names alone.
func (c *containerImpl) scanForType(iface reflect.Type) (string, bool) {
	c.mu.RLock()
	fullReference := c.fullReference
	order := make([]string, len(c.order))
	copy(order, c.order)
	c.mu.RUnlock()

	if !fullReference {
		return "", false
	}

	for _, id := range order {
		t := c.providerType(id)
		if t != nil && t.Implements(iface) {
			c.refs.record(id, TypeName(iface))
			return id, true
		}
	}
	return "", false
}

// edges derives the declared dependency edges of a definition. Loaded-only
// references become deferred edges since they never force a build.
func (d *definition) edges() []Edge {
	var edges []Edge

	addArg := func(a Arg) {
		switch a.Kind {
		case ArgRef:
			edges = append(edges, Edge{Target: a.Target})
		case ArgOptionalRef:
			edges = append(edges, Edge{Target: a.Target, Optional: true})
		case ArgLoadedRef:
			edges = append(edges, Edge{Target: a.Target, Deferred: true})
		}
	}

	for _, a := range d.args {
		addArg(a)
	}
	for _, p := range d.props {
		addArg(p.Arg)
	}
	for _, call := range d.calls {
		for _, a := range call.Args {
			addArg(a)
		}
	}

	return edges
}

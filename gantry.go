// Package gantry is a recipe-driven service container. Services are declared
// as definitions: a constructor or prototype plus constructor arguments,
// property assignments, and post-construction method calls. Definitions build
// lazily on first resolution, cache as singletons, and wire together through
// string ids, reference arguments, and type-based auto-wiring.
package gantry

import "reflect"

// Container builds and caches services from declarative definitions.
type Container interface {
	// Define registers a service recipe under id. The target is either a
	// constructor function returning (T) or (T, error), or a pointer-to-struct
	// prototype. Duplicate ids are an error.
	Define(id string, target any, opts ...DefineOption) error

	// SetServices defines multiple services, reporting all failures together.
	SetServices(services ...ServiceDef) error

	// SetInstance stores a pre-built instance under id. The instance cache is
	// write-once per id.
	SetInstance(id string, instance any) error

	// AddReference records id under a class or interface name for name-based
	// lookup.
	AddReference(id string, name string)

	// AddInterface catalogs an interface type so implementations can be found
	// by implements checks.
	AddInterface(iface reflect.Type)

	// SetAutowire toggles descriptor-driven resolution of unsupplied
	// parameters. Enabled by default.
	SetAutowire(enabled bool)

	// Autowire reports whether auto-wiring is enabled.
	Autowire() bool

	// SetFullReference toggles automatic reference indexing of newly
	// registered services. Enabled by default.
	SetFullReference(enabled bool)

	// FullReference reports whether automatic reference indexing is enabled.
	FullReference() bool

	// Resolve returns the service registered under id, building it on first
	// use. Unknown ids that match a recorded reference name resolve to the
	// first service registered under that name.
	Resolve(id string) (any, error)

	// ResolveType returns a service satisfying the given class or interface
	// name.
	ResolveType(name string) (any, error)

	// Has reports whether id is known: cached, defined, or recorded as a
	// reference name.
	Has(id string) bool

	// Loaded reports whether id has a cached instance.
	Loaded(id string) bool

	// Invoke calls fn with container-resolved arguments and returns its
	// results, splitting off a trailing error.
	Invoke(fn any, args ...Arg) ([]any, error)

	// Construct builds a fresh instance with auto-wiring disabled and without
	// registering it.
	Construct(target any, args ...Arg) (any, error)

	// Services returns all known service ids in registration order.
	Services() []string

	// Inspect returns diagnostic information about a service.
	Inspect(id string) DefinitionInfo

	// Use adds middleware to the container.
	Use(mw Middleware)

	// Graph returns the declared dependency graph.
	Graph() *DependencyGraph
}

// New creates a new service container.
func New(opts ...Option) Container {
	c := newContainerImpl()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

package gantry

import (
	"fmt"
	"sync"
)

// Lazy wraps a dependency that is resolved on first access.
// This is useful for breaking circular dependencies or deferring
// resolution of expensive services until they're actually needed.
type Lazy[T any] struct {
	container Container
	id        string
	mu        sync.Once
	value     T
	err       error
	resolved  bool
}

// NewLazy creates a new lazy dependency wrapper.
func NewLazy[T any](container Container, id string) *Lazy[T] {
	return &Lazy[T]{
		container: container,
		id:        id,
	}
}

// Get resolves the dependency and returns it.
// The resolution happens only once; subsequent calls return the cached value.
func (l *Lazy[T]) Get() (T, error) {
	l.mu.Do(func() {
		instance, err := l.container.Resolve(l.id)
		if err != nil {
			l.err = err

			return
		}

		typed, ok := instance.(T)
		if !ok {
			var zero T

			l.err = fmt.Errorf("lazy dependency %s: expected type %T, got %T", l.id, zero, instance)

			return
		}

		l.value = typed
		l.resolved = true
	})

	return l.value, l.err
}

// MustGet resolves the dependency and returns it, panicking on error.
func (l *Lazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy dependency %s failed: %v", l.id, err))
	}

	return value
}

// IsResolved returns true if the dependency has been resolved.
func (l *Lazy[T]) IsResolved() bool {
	return l.resolved
}

// ID returns the id of the dependency.
func (l *Lazy[T]) ID() string {
	return l.id
}

// OptionalLazy wraps an optional dependency that is resolved on first access.
// Returns the zero value without error if the dependency is not found.
type OptionalLazy[T any] struct {
	container Container
	id        string
	mu        sync.Once
	value     T
	err       error
	resolved  bool
	found     bool
}

// NewOptionalLazy creates a new optional lazy dependency wrapper.
func NewOptionalLazy[T any](container Container, id string) *OptionalLazy[T] {
	return &OptionalLazy[T]{
		container: container,
		id:        id,
	}
}

// Get resolves the dependency and returns it.
// Returns the zero value without error if the dependency is not found.
func (l *OptionalLazy[T]) Get() (T, error) {
	l.mu.Do(func() {
		if !l.container.Has(l.id) {
			l.resolved = true
			l.found = false

			return
		}

		instance, err := l.container.Resolve(l.id)
		if err != nil {
			l.err = err

			return
		}

		typed, ok := instance.(T)
		if !ok {
			var zero T

			l.err = fmt.Errorf("optional lazy dependency %s: expected type %T, got %T", l.id, zero, instance)

			return
		}

		l.value = typed
		l.resolved = true
		l.found = true
	})

	return l.value, l.err
}

// MustGet resolves the dependency and returns it, panicking on error.
// Returns the zero value if the dependency is not found (does not panic).
func (l *OptionalLazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("optional lazy dependency %s failed: %v", l.id, err))
	}

	return value
}

// IsResolved returns true if the dependency has been resolved.
func (l *OptionalLazy[T]) IsResolved() bool {
	return l.resolved
}

// IsFound returns true if the dependency was found (only valid after resolution).
func (l *OptionalLazy[T]) IsFound() bool {
	return l.found
}

// ID returns the id of the dependency.
func (l *OptionalLazy[T]) ID() string {
	return l.id
}

// Factory builds a fresh instance on each call, bypassing the singleton
// cache. The target follows the Construct rules: a constructor function or a
// pointer-to-struct prototype.
type Factory[T any] struct {
	container Container
	target    any
}

// NewFactory creates a factory for transient instances of target.
func NewFactory[T any](container Container, target any) *Factory[T] {
	return &Factory[T]{
		container: container,
		target:    target,
	}
}

// New constructs and returns a fresh instance.
// Each call returns a different instance; nothing is cached or registered.
func (f *Factory[T]) New(args ...Arg) (T, error) {
	instance, err := f.container.Construct(f.target, args...)
	if err != nil {
		var zero T

		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		var zero T

		return zero, fmt.Errorf("factory: expected type %T, got %T", zero, instance)
	}

	return typed, nil
}

// MustNew constructs and returns a fresh instance, panicking on error.
func (f *Factory[T]) MustNew(args ...Arg) T {
	value, err := f.New(args...)
	if err != nil {
		panic(fmt.Sprintf("factory failed: %v", err))
	}

	return value
}

package gantry

import (
	"fmt"
	"reflect"

	typetostring "github.com/samber/go-type-to-string"
)

// Resolve with type safety.
func Resolve[T any](c Container, id string) (T, error) {
	var zero T

	instance, err := c.Resolve(id)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: service %s is not of type %T", ErrTypeMismatch(id, instance), id, zero)
	}

	return typed, nil
}

// Must resolves or panics - use only during startup.
func Must[T any](c Container, id string) T {
	instance, err := Resolve[T](c, id)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", id, err))
	}

	return instance
}

// ResolveAs resolves a service by its type rather than its id, going through
// the reference index.
//
// Usage:
//
//	mailer, err := gantry.ResolveAs[*Mailer](c)
//	sender, err := gantry.ResolveAs[Sender](c)
func ResolveAs[T any](c Container) (T, error) {
	var zero T

	name := typetostring.GetType[T]()

	// Interface lookups go through the implements scan; make sure the
	// index knows the interface type, not just its name.
	if t := reflect.TypeOf((*T)(nil)).Elem(); t.Kind() == reflect.Interface {
		c.AddInterface(t)
	}

	instance, err := c.ResolveType(name)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: reference %s is not of type %T", ErrTypeMismatch(name, instance), name, zero)
	}

	return typed, nil
}

// MustAs resolves by type or panics - use only during startup.
func MustAs[T any](c Container) T {
	instance, err := ResolveAs[T](c)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", typetostring.GetType[T](), err))
	}

	return instance
}

// RegisterInterface records a service id under an interface name so the
// service resolves wherever that interface is referenced.
//
// Usage:
//
//	c.Define("mailer", NewSMTPMailer)
//	gantry.RegisterInterface[Sender](c, "mailer")
func RegisterInterface[I any](c Container, id string) error {
	t := reflect.TypeOf((*I)(nil)).Elem()
	if t.Kind() != reflect.Interface {
		return ErrInvalidDefinition(id, fmt.Sprintf("type %s is not an interface", t))
	}

	c.AddInterface(t)
	c.AddReference(id, TypeName(t))

	return nil
}

// DefineValue stores a pre-built value under id. The value is cached as-is
// and its type is indexed like any other instance.
func DefineValue[T any](c Container, id string, value T) error {
	return c.SetInstance(id, value)
}

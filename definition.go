package gantry

import (
	"reflect"

	"go.uber.org/multierr"
)

// definition holds one service recipe: a target to instantiate plus the
// declared constructor arguments, property assignments, and method calls.
type definition struct {
	id       string
	target   any
	isFunc   bool
	ctor     reflect.Value
	ctorType reflect.Type
	result   reflect.Type
	hasError bool

	args  []Arg
	props []Property
	calls []CallSpec
	as    []reflect.Type
}

// Property is a named field assignment applied after instantiation.
type Property struct {
	Name string
	Arg  Arg
}

// CallSpec is a method invocation applied after property assignment.
type CallSpec struct {
	Method string
	Args   []Arg
}

// Call creates a method call spec for a definition.
//
// Usage:
//
//	c.Define("app", NewApp,
//	    gantry.Calls(gantry.Call("SetLogger", gantry.Ref("logger"))),
//	)
func Call(method string, args ...Arg) CallSpec {
	return CallSpec{Method: method, Args: args}
}

// =============================================================================
// DEFINE OPTIONS
// =============================================================================

// DefineOption configures a service definition.
type DefineOption func(*definition)

// Args sets the constructor arguments, in order. Positions not covered fall
// back to auto-wiring.
func Args(args ...Arg) DefineOption {
	return func(d *definition) {
		d.args = append(d.args, args...)
	}
}

// Prop adds a property assignment. Properties apply in the order declared.
func Prop(name string, arg Arg) DefineOption {
	return func(d *definition) {
		d.props = append(d.props, Property{Name: name, Arg: arg})
	}
}

// Props adds several property assignments at once.
func Props(props ...Property) DefineOption {
	return func(d *definition) {
		d.props = append(d.props, props...)
	}
}

// Calls adds method calls to run after the instance is populated.
func Calls(calls ...CallSpec) DefineOption {
	return func(d *definition) {
		d.calls = append(d.calls, calls...)
	}
}

// As records the definition under the given interface types in the reference
// index, independent of the full-reference setting. Each value must be a
// pointer to an interface, e.g. As(new(Logger)).
func As(ifaces ...any) DefineOption {
	return func(d *definition) {
		for _, v := range ifaces {
			t := reflect.TypeOf(v)
			if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Interface {
				continue
			}
			d.as = append(d.as, t.Elem())
		}
	}
}

// =============================================================================
// BATCH REGISTRATION
// =============================================================================

// ServiceDef holds one service definition for batch registration.
type ServiceDef struct {
	ID      string
	Target  any
	Options []DefineOption
}

// Service creates a ServiceDef for batch registration.
//
// Example:
//
//	c.SetServices(
//	    gantry.Service("db", NewDatabase),
//	    gantry.Service("cache", NewCache, gantry.Args(gantry.Ref("db"))),
//	)
func Service(id string, target any, opts ...DefineOption) ServiceDef {
	return ServiceDef{
		ID:      id,
		Target:  target,
		Options: opts,
	}
}

// SetServices defines multiple services in a single call. Every definition is
// attempted and the failures are reported together.
func (c *containerImpl) SetServices(services ...ServiceDef) error {
	var errs error
	for _, svc := range services {
		if err := c.Define(svc.ID, svc.Target, svc.Options...); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

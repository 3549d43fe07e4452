package gantry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// In is a marker type that should be embedded in structs to indicate
// they are parameter objects. Fields of the struct are treated as
// individual parameters of the constructor. This follows the dig pattern
// for constructor injection.
//
// Example:
//
//	type AppParams struct {
//	    gantry.In
//
//	    DB     *Database
//	    Logger *Logger `optional:"true"`
//	    Cache  *Cache  `name:"redis"`
//	}
//
// The `name` tag pins a field to a specific service id instead of type-based
// lookup, and `optional:"true"` leaves the field zero when no provider is
// known.
type In struct{}

var (
	inType    = reflect.TypeOf(In{})
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// Param describes one logical parameter of a callable.
type Param struct {
	// Name is the binding name for Arg.Named. Plain function parameters have
	// no names in Go, so Name is only set for In struct fields (the field
	// name verbatim).
	Name string

	// Index is the parameter position, or the field index inside an In struct.
	Index int

	// Service pins the parameter to a service id, from the `name` tag.
	Service string

	// Type is the declared parameter type.
	Type reflect.Type

	// Optional marks the parameter as resolvable to its zero value.
	Optional bool

	// Object reports whether the type participates in reference lookup
	// during auto-wiring.
	Object bool

	// In marks a parameter struct; Fields holds its expanded members.
	In     bool
	Fields []Param
}

// Introspector produces ordered parameter descriptors for callables. The
// container ships a reflection-based implementation; alternatives backed by
// pre-registered metadata can be supplied with WithIntrospector.
type Introspector interface {
	Parameters(fnType reflect.Type) ([]Param, error)
}

// =============================================================================
// REFLECTION INTROSPECTOR
// =============================================================================

// reflectIntrospector analyzes function signatures with the reflect package
// and caches descriptor lists per function type. The cache is shared across
// containers, so it carries its own lock.
type reflectIntrospector struct {
	mu    sync.RWMutex
	cache map[reflect.Type][]Param
}

// NewReflectIntrospector creates the default reflection-based introspector.
func NewReflectIntrospector() Introspector {
	return &reflectIntrospector{cache: make(map[reflect.Type][]Param)}
}

// defaultIntrospector is shared by containers created without WithIntrospector.
var defaultIntrospector = NewReflectIntrospector()

// Parameters returns the cached or freshly analyzed descriptors for fnType.
func (ri *reflectIntrospector) Parameters(fnType reflect.Type) ([]Param, error) {
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, errors.New("target must be a function")
	}

	ri.mu.RLock()
	params, ok := ri.cache[fnType]
	ri.mu.RUnlock()
	if ok {
		return params, nil
	}

	params, err := analyzeParams(fnType)
	if err != nil {
		return nil, err
	}

	ri.mu.Lock()
	ri.cache[fnType] = params
	ri.mu.Unlock()

	return params, nil
}

// analyzeParams walks a function type's parameters in order. A trailing
// variadic parameter ends descriptor generation.
func analyzeParams(fnType reflect.Type) ([]Param, error) {
	var params []Param
	for i := 0; i < fnType.NumIn(); i++ {
		if fnType.IsVariadic() && i == fnType.NumIn()-1 {
			break
		}
		param, err := analyzeParam(fnType.In(i))
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		param.Index = i
		params = append(params, param)
	}
	return params, nil
}

// analyzeParam analyzes a single parameter type
func analyzeParam(t reflect.Type) (Param, error) {
	param := Param{
		Type:   t,
		Object: isObjectType(t),
	}

	if isInStruct(t) {
		param.In = true
		param.Object = false
		fields, err := expandInStruct(t)
		if err != nil {
			return param, err
		}
		param.Fields = fields
	}

	return param, nil
}

// isObjectType reports whether a parameter type is looked up through the
// reference index when auto-wiring. Interfaces, pointers, and named struct
// types qualify; scalars, slices, maps, funcs, and channels stay literal.
func isObjectType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Ptr:
		return true
	case reflect.Struct:
		return t.Name() != ""
	default:
		return false
	}
}

// isInStruct checks if a type embeds gantry.In
func isInStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type == inType {
			return true
		}
		// Check embedded structs recursively
		if field.Anonymous && isInStruct(field.Type) {
			return true
		}
	}
	return false
}

// expandInStruct expands an In struct into its field parameters
func expandInStruct(t reflect.Type) ([]Param, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var params []Param

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip the embedded In marker
		if field.Anonymous && (field.Type == inType || isInStruct(field.Type)) {
			continue
		}

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		param := Param{
			Name:   field.Name,
			Index:  i,
			Type:   field.Type,
			Object: isObjectType(field.Type),
		}

		if tag := field.Tag.Get("name"); tag != "" {
			param.Service = tag
		}

		if tag := field.Tag.Get("optional"); strings.ToLower(tag) == "true" {
			param.Optional = true
		}

		params = append(params, param)
	}

	return params, nil
}

// resultType validates a constructor's return shape, (T) or (T, error), and
// reports the produced type and whether an error return is present.
func resultType(fnType reflect.Type) (reflect.Type, bool, error) {
	switch fnType.NumOut() {
	case 1:
		if fnType.Out(0).Implements(errorType) {
			return nil, false, errors.New("constructor must return a non-error value")
		}
		return fnType.Out(0), false, nil
	case 2:
		if !fnType.Out(1).Implements(errorType) {
			return nil, false, errors.New("second return value must be an error")
		}
		if fnType.Out(0).Implements(errorType) {
			return nil, false, errors.New("constructor must return a non-error value first")
		}
		return fnType.Out(0), true, nil
	default:
		return nil, false, errors.New("constructor must return (T) or (T, error)")
	}
}

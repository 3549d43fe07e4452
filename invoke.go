package gantry

import (
	"fmt"
	"reflect"
)

// Invoke calls fn with container-resolved arguments. Explicit arguments merge
// with introspected descriptors exactly as constructor arguments do. Results
// are returned in order; a trailing error result is split off and returned as
// the error.
func (c *containerImpl) Invoke(fn any, args ...Arg) ([]any, error) {
	fnValue := reflect.ValueOf(fn)
	if !fnValue.IsValid() || fnValue.Kind() != reflect.Func {
		return nil, ErrNotCallable(fn)
	}

	values, err := c.resolveCallArgs(fnValue.Type(), args)
	if err != nil {
		return nil, err
	}

	results := fnValue.Call(values)

	out := make([]any, 0, len(results))
	for _, r := range results {
		out = append(out, r.Interface())
	}

	if n := len(results); n > 0 {
		if last := results[n-1]; last.Type().Implements(errorType) {
			out = out[:n-1]
			if !last.IsNil() {
				return out, last.Interface().(error)
			}
		}
	}

	return out, nil
}

// Construct builds a fresh instance with auto-wiring disabled and without
// registering it. Explicit arguments apply positionally; uncovered parameters
// become zero values, and loaded-only references read the cache but never
// build.
func (c *containerImpl) Construct(target any, args ...Arg) (any, error) {
	if target == nil {
		return nil, ErrInvalidTarget
	}

	t := reflect.TypeOf(target)
	if t.Kind() != reflect.Func {
		if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
			return nil, NewError(CodeInvalidDefinition,
				fmt.Sprintf("construct target %T must be a function or a pointer to a struct", target), nil)
		}
		if len(args) > 0 {
			return nil, NewError(CodeInvalidDefinition,
				"prototype targets take no constructor arguments", nil)
		}

		proto := reflect.ValueOf(target)
		fresh := reflect.New(t.Elem())
		if !proto.IsNil() {
			fresh.Elem().Set(proto.Elem())
		}
		return fresh.Interface(), nil
	}

	fnValue := reflect.ValueOf(target)
	fnType := fnValue.Type()

	if _, _, err := resultType(fnType); err != nil {
		return nil, NewError(CodeInvalidDefinition, err.Error(), nil)
	}

	values, err := c.resolveBareArgs(fnType, args)
	if err != nil {
		return nil, NewError(CodeBuildFailed, "construct failed", err)
	}

	instance, err := callFunc(fnValue, fnType, values)
	if err != nil {
		return nil, NewError(CodeBuildFailed, "construct failed", err)
	}

	return instance, nil
}

// callFunc invokes a constructor-shaped function, unwrapping the (T, error)
// form.
func callFunc(fn reflect.Value, fnType reflect.Type, args []reflect.Value) (any, error) {
	results := fn.Call(args)

	switch fnType.NumOut() {
	case 1:
		return results[0].Interface(), nil
	case 2:
		if !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		return results[0].Interface(), nil
	default:
		return nil, fmt.Errorf("constructor must return (T) or (T, error), got %d return values", fnType.NumOut())
	}
}

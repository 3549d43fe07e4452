package gantry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// =============================================================================
// LOADING SET
// =============================================================================

// loadingSet tracks the service ids currently being built, in entry order.
// Re-entry on a member id means the recipe graph loops back on itself.
type loadingSet struct {
	members map[string]struct{}
	ordered []string
	mu      sync.Mutex
}

func newLoadingSet() *loadingSet {
	return &loadingSet{members: make(map[string]struct{})}
}

// enter adds id to the set, reporting false when it is already a member.
func (s *loadingSet) enter(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	s.ordered = append(s.ordered, id)
	return true
}

// leave removes id from the set wherever it sits.
func (s *loadingSet) leave(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; !ok {
		return
	}
	delete(s.members, id)
	for i, v := range s.ordered {
		if v == id {
			s.ordered = append(s.ordered[:i], s.ordered[i+1:]...)
			break
		}
	}
}

// chain returns the ids being built, in entry order.
func (s *loadingSet) chain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// member reports whether id is currently being built.
func (s *loadingSet) member(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.members[id]
	return ok
}

// =============================================================================
// BUILD PIPELINE
// =============================================================================

// buildService guards the build with the loading set and middleware hooks.
// The id leaves the loading set on every exit path, so a failed build can be
// retried without a stale circular-dependency report.
func (c *containerImpl) buildService(def *definition) (any, error) {
	id := def.id

	if !c.loading.enter(id) {
		return nil, ErrCircularDependency(id, c.loading.chain())
	}
	defer c.loading.leave(id)

	ctx := context.Background()
	if err := c.middleware.beforeBuild(ctx, id); err != nil {
		return nil, err
	}

	instance, err := c.build(def)

	if mwErr := c.middleware.afterBuild(ctx, id, instance, err); mwErr != nil {
		return nil, mwErr
	}

	return instance, err
}

// build runs the pipeline: instantiate, assign properties, run calls, cache
// the instance, then flush calls that were waiting on this id.
func (c *containerImpl) build(def *definition) (any, error) {
	id := def.id
	c.log.Debug("building service", zap.String("service", id))

	instance, err := c.instantiate(def)
	if err != nil {
		return nil, err
	}

	if err := c.applyProperties(def, instance); err != nil {
		return nil, err
	}

	for _, call := range def.calls {
		if err := c.invokeCall(id, instance, call); err != nil {
			return nil, err
		}
	}

	if err := c.storeBuilt(id, instance); err != nil {
		return nil, err
	}

	if err := c.flushDelayed(id); err != nil {
		return nil, err
	}

	c.log.Debug("service built", zap.String("service", id))

	return instance, nil
}

// instantiate produces the raw instance from the constructor or prototype.
func (c *containerImpl) instantiate(def *definition) (any, error) {
	if !def.isFunc {
		proto := reflect.ValueOf(def.target)
		fresh := reflect.New(def.result.Elem())
		if !proto.IsNil() {
			fresh.Elem().Set(proto.Elem())
		}
		return fresh.Interface(), nil
	}

	values, err := c.resolveCallArgs(def.ctorType, def.args)
	if err != nil {
		return nil, NewBuildError(def.id, "constructor", err)
	}

	instance, err := callFunc(def.ctor, def.ctorType, values)
	if err != nil {
		return nil, NewBuildError(def.id, "constructor", err)
	}

	return instance, nil
}

// storeBuilt registers a freshly built instance in the write-once cache.
func (c *containerImpl) storeBuilt(id string, instance any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.instances[id]; exists {
		return ErrServiceAlreadyExists(id)
	}
	c.instances[id] = instance
	return nil
}

// applyProperties assigns the declared properties in order. Assignment is
// bounded to exported struct fields.
func (c *containerImpl) applyProperties(def *definition, instance any) error {
	if len(def.props) == 0 {
		return nil
	}

	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return NewBuildError(def.id, "property",
			fmt.Errorf("instance of type %T has no assignable fields", instance))
	}
	elem := rv.Elem()

	for _, prop := range def.props {
		field := elem.FieldByName(prop.Name)
		if !field.IsValid() {
			return NewBuildError(def.id, "property",
				fmt.Errorf("no field %q on %T", prop.Name, instance))
		}
		if !field.CanSet() {
			return NewBuildError(def.id, "property",
				fmt.Errorf("field %q on %T is not settable", prop.Name, instance))
		}

		value, err := c.resolvePropArg(prop, field.Type())
		if err != nil {
			return NewBuildError(def.id, "property",
				fmt.Errorf("%s: %w", prop.Name, err))
		}
		field.Set(value)
	}

	return nil
}

// resolvePropArg produces a property value. An auto argument on an
// object-kind field resolves by field type when auto-wiring is on.
func (c *containerImpl) resolvePropArg(prop Property, want reflect.Type) (reflect.Value, error) {
	if prop.Arg.Kind == ArgAuto && c.Autowire() && isObjectType(want) {
		instance, err := c.resolveByType(want)
		if err != nil {
			return reflect.Value{}, err
		}
		return coerce(instance, want)
	}
	return c.resolveArg(prop.Arg, want)
}

// =============================================================================
// ARGUMENT RESOLUTION
// =============================================================================

// resolveCallArgs produces the values for invoking fnType. Explicit arguments
// override introspected descriptors by name, then by position; uncovered
// positions fall back to their descriptor classification. With auto-wiring
// disabled no descriptors are consulted and uncovered positions become zero
// values.
func (c *containerImpl) resolveCallArgs(fnType reflect.Type, explicit []Arg) ([]reflect.Value, error) {
	if !c.Autowire() {
		return c.resolveBareArgs(fnType, explicit)
	}

	params, err := c.introspect.Parameters(fnType)
	if err != nil {
		return nil, err
	}

	positional, named := splitArgs(explicit)
	usedNames := make(map[string]bool)
	logical := 0

	// pick returns the explicit argument bound to a descriptor, consuming
	// one logical position per call.
	pick := func(p Param) (*Arg, error) {
		idx := logical
		logical++

		var posArg *Arg
		if idx < len(positional) && positional[idx].Kind != ArgAuto {
			a := positional[idx]
			posArg = &a
		}

		if p.Name != "" {
			if a, ok := named[p.Name]; ok {
				usedNames[p.Name] = true
				if posArg != nil {
					return nil, fmt.Errorf("parameter %q bound both by position %d and by name", p.Name, idx)
				}
				return &a, nil
			}
		}

		return posArg, nil
	}

	values := make([]reflect.Value, 0, fnType.NumIn())
	for i, p := range params {
		if p.In {
			sv, err := c.buildInStruct(p, pick)
			if err != nil {
				return nil, fmt.Errorf("parameter %d: %w", i, err)
			}
			values = append(values, sv)
			continue
		}

		expl, err := pick(p)
		if err != nil {
			return nil, err
		}
		v, err := c.resolveParam(p, expl)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		values = append(values, v)
	}

	for name := range named {
		if !usedNames[name] {
			return nil, fmt.Errorf("unknown named argument %q", name)
		}
	}

	if len(positional) > logical {
		if !fnType.IsVariadic() {
			return nil, fmt.Errorf("too many arguments: got %d, want %d", len(positional), logical)
		}
		elemType := fnType.In(fnType.NumIn() - 1).Elem()
		for i, a := range positional[logical:] {
			v, err := c.resolveArg(a, elemType)
			if err != nil {
				return nil, fmt.Errorf("parameter %d: %w", logical+i, err)
			}
			values = append(values, v)
		}
	}

	return values, nil
}

// resolveBareArgs delivers explicit arguments positionally with no
// introspection. Uncovered parameters become zero values; named arguments
// need descriptors and are rejected.
func (c *containerImpl) resolveBareArgs(fnType reflect.Type, explicit []Arg) ([]reflect.Value, error) {
	for _, a := range explicit {
		if a.Name != "" {
			return nil, fmt.Errorf("named argument %q requires auto-wiring", a.Name)
		}
	}

	fixed := fnType.NumIn()
	variadic := fnType.IsVariadic()
	if variadic {
		fixed--
	}

	if len(explicit) > fixed && !variadic {
		return nil, fmt.Errorf("too many arguments: got %d, want %d", len(explicit), fixed)
	}

	values := make([]reflect.Value, 0, fnType.NumIn())
	for i := 0; i < fixed; i++ {
		want := fnType.In(i)
		if i >= len(explicit) {
			values = append(values, reflect.Zero(want))
			continue
		}
		v, err := c.resolveArg(explicit[i], want)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		values = append(values, v)
	}

	if variadic && len(explicit) > fixed {
		elemType := fnType.In(fnType.NumIn() - 1).Elem()
		for i, a := range explicit[fixed:] {
			v, err := c.resolveArg(a, elemType)
			if err != nil {
				return nil, fmt.Errorf("parameter %d: %w", fixed+i, err)
			}
			values = append(values, v)
		}
	}

	return values, nil
}

// buildInStruct assembles a parameter struct from its expanded fields.
func (c *containerImpl) buildInStruct(p Param, pick func(Param) (*Arg, error)) (reflect.Value, error) {
	st := p.Type
	isPtr := st.Kind() == reflect.Ptr
	if isPtr {
		st = st.Elem()
	}

	sv := reflect.New(st)
	for _, f := range p.Fields {
		expl, err := pick(f)
		if err != nil {
			return reflect.Value{}, err
		}
		v, err := c.resolveParam(f, expl)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		sv.Elem().Field(f.Index).Set(v)
	}

	if isPtr {
		return sv, nil
	}
	return sv.Elem(), nil
}

// resolveParam produces the value for one descriptor, honoring an explicit
// argument override when present.
func (c *containerImpl) resolveParam(p Param, expl *Arg) (reflect.Value, error) {
	if expl != nil {
		return c.resolveArg(*expl, p.Type)
	}

	if p.Service != "" {
		if p.Optional && !c.Has(p.Service) {
			return reflect.Zero(p.Type), nil
		}
		instance, err := c.Resolve(p.Service)
		if err != nil {
			return reflect.Value{}, err
		}
		return coerce(instance, p.Type)
	}

	if p.Object {
		instance, err := c.resolveByType(p.Type)
		if err != nil {
			if p.Optional && errors.Is(err, ErrServiceNotFoundSentinel) {
				return reflect.Zero(p.Type), nil
			}
			return reflect.Value{}, err
		}
		return coerce(instance, p.Type)
	}

	return reflect.Zero(p.Type), nil
}

// resolveArg produces the value for one explicit argument.
func (c *containerImpl) resolveArg(a Arg, want reflect.Type) (reflect.Value, error) {
	switch a.Kind {
	case ArgValue:
		return coerce(a.Literal, want)

	case ArgRef:
		instance, err := c.Resolve(a.Target)
		if err != nil {
			return reflect.Value{}, err
		}
		return coerce(instance, want)

	case ArgOptionalRef:
		if !c.Has(a.Target) {
			return reflect.Zero(want), nil
		}
		instance, err := c.Resolve(a.Target)
		if err != nil {
			return reflect.Value{}, err
		}
		return coerce(instance, want)

	case ArgLoadedRef:
		c.mu.RLock()
		instance, ok := c.instances[a.Target]
		c.mu.RUnlock()
		if !ok {
			return reflect.Zero(want), nil
		}
		return coerce(instance, want)

	default:
		return reflect.Zero(want), nil
	}
}

// resolveByType finds a provider for a parameter type through the reference
// index, scanning registered providers for interface types on a miss.
func (c *containerImpl) resolveByType(t reflect.Type) (any, error) {
	name := TypeName(t)

	if id, ok := c.refs.resolve(name); ok {
		return c.Resolve(id)
	}

	if t.Kind() == reflect.Interface {
		c.refs.addInterface(t)
		if id, ok := c.scanForType(t); ok {
			return c.Resolve(id)
		}
	}

	return nil, ErrServiceNotFound(name)
}

// splitArgs separates positional arguments from named ones.
func splitArgs(args []Arg) ([]Arg, map[string]Arg) {
	var positional []Arg
	var named map[string]Arg

	for _, a := range args {
		if a.Name != "" {
			if named == nil {
				named = make(map[string]Arg)
			}
			named[a.Name] = a
			continue
		}
		positional = append(positional, a)
	}

	return positional, named
}

// numericKinds covers the conversions recipe literals go through when YAML
// or callers hand over a differently sized number.
func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// coerce adapts a resolved value to the requested type. Assignable values
// pass through; numbers convert between numeric kinds; everything else is a
// type mismatch.
func coerce(v any, want reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch want.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(want), nil
		default:
			return reflect.Value{}, fmt.Errorf("cannot use nil as %s", want)
		}
	}

	rv := reflect.ValueOf(v)
	rt := rv.Type()

	if rt.AssignableTo(want) {
		return rv, nil
	}
	if isNumericKind(rt.Kind()) && isNumericKind(want.Kind()) {
		return rv.Convert(want), nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", rt, want)
}

package gantry

import (
	"reflect"
	"sync"

	typetostring "github.com/samber/go-type-to-string"
)

// TypeName renders the stable reference name the container uses for a type.
func TypeName(t reflect.Type) string {
	return typetostring.GetReflectType(t)
}

// referenceIndex maps class and interface names to the service ids able to
// satisfy them. Ids are kept in registration order under each name and the
// first one recorded wins, so resolution is deterministic for the life of
// the container.
type referenceIndex struct {
	mu sync.RWMutex

	// refs holds reference name -> service ids in registration order.
	refs map[string][]string

	// catalog holds the interface types known to the index, keyed by name,
	// in insertion order. Concrete types are tested against these with
	// reflect.Type.Implements.
	catalog      map[string]reflect.Type
	catalogOrder []string

	// supertypes caches the reference-name list per concrete type. Computed
	// once; interfaces cataloged later are found by the miss-path scan in
	// the container, not by recomputation.
	supertypes map[reflect.Type][]string
}

func newReferenceIndex() *referenceIndex {
	return &referenceIndex{
		refs:       make(map[string][]string),
		catalog:    make(map[string]reflect.Type),
		supertypes: make(map[reflect.Type][]string),
	}
}

// record appends id under name. Duplicate pairs are kept out so re-indexing
// an id is harmless.
func (ix *referenceIndex) record(id, name string) {
	if name == "" {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, existing := range ix.refs[name] {
		if existing == id {
			return
		}
	}
	ix.refs[name] = append(ix.refs[name], id)
}

// resolve returns the first service id recorded under name.
func (ix *referenceIndex) resolve(name string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ids := ix.refs[name]
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// has reports whether any id is recorded under name.
func (ix *referenceIndex) has(name string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.refs[name]) > 0
}

// idsFor returns every id recorded under name, in registration order.
func (ix *referenceIndex) idsFor(name string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ids := ix.refs[name]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// addInterface catalogs an interface type for implements checks. Non-interface
// types are ignored.
func (ix *referenceIndex) addInterface(t reflect.Type) {
	if t == nil || t.Kind() != reflect.Interface {
		return
	}

	name := TypeName(t)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.catalog[name]; ok {
		return
	}
	ix.catalog[name] = t
	ix.catalogOrder = append(ix.catalogOrder, name)
}

// interfaceByName returns a cataloged interface type.
func (ix *referenceIndex) interfaceByName(name string) (reflect.Type, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	t, ok := ix.catalog[name]
	return t, ok
}

// referencesFor computes the names a concrete type can satisfy: its own name,
// every cataloged interface it implements, then its embedded ancestors. The
// list is cached per type.
func (ix *referenceIndex) referencesFor(t reflect.Type) []string {
	if t == nil {
		return nil
	}

	ix.mu.RLock()
	cached, ok := ix.supertypes[t]
	ix.mu.RUnlock()
	if ok {
		return cached
	}

	names := []string{TypeName(t)}

	ix.mu.RLock()
	for _, ifaceName := range ix.catalogOrder {
		if t.Implements(ix.catalog[ifaceName]) {
			names = append(names, ifaceName)
		}
	}
	ix.mu.RUnlock()

	names = appendAncestors(names, t)

	ix.mu.Lock()
	ix.supertypes[t] = names
	ix.mu.Unlock()

	return names
}

// indexType records id under every reference name its concrete type satisfies.
func (ix *referenceIndex) indexType(id string, t reflect.Type) {
	for _, name := range ix.referencesFor(t) {
		ix.record(id, name)
	}
}

// appendAncestors walks embedded struct fields recursively and appends their
// type names. Ancestors resolve by name only; assignability is checked when
// the instance is actually delivered.
func appendAncestors(names []string, t reflect.Type) []string {
	st := t
	if st.Kind() == reflect.Ptr {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return names
	}

	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if !field.Anonymous {
			continue
		}
		names = append(names, TypeName(field.Type))
		names = appendAncestors(names, field.Type)
	}
	return names
}

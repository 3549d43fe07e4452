package gantry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// base and derived exercise embedded-ancestor indexing.
type base struct {
	ID string
}

type derived struct {
	base
	Extra string
}

func TestReferenceIndex_FirstRegisteredWins(t *testing.T) {
	ix := newReferenceIndex()

	ix.record("first", "gantry.Logger")
	ix.record("second", "gantry.Logger")

	id, ok := ix.resolve("gantry.Logger")
	require.True(t, ok)
	assert.Equal(t, "first", id)
	assert.Equal(t, []string{"first", "second"}, ix.idsFor("gantry.Logger"))
}

func TestReferenceIndex_DuplicatePairIgnored(t *testing.T) {
	ix := newReferenceIndex()

	ix.record("svc", "name")
	ix.record("svc", "name")

	assert.Equal(t, []string{"svc"}, ix.idsFor("name"))
}

func TestReferenceIndex_ResolveMiss(t *testing.T) {
	ix := newReferenceIndex()

	_, ok := ix.resolve("unknown")
	assert.False(t, ok)
	assert.False(t, ix.has("unknown"))
}

func TestReferenceIndex_ReferencesForCataloged(t *testing.T) {
	ix := newReferenceIndex()
	ix.addInterface(reflect.TypeOf((*Logger)(nil)).Elem())

	names := ix.referencesFor(reflect.TypeOf(&ConsoleLogger{}))

	assert.Contains(t, names, "*gantry.ConsoleLogger")
	assert.Contains(t, names, "gantry.Logger")
	// Own type name comes first.
	assert.Equal(t, "*gantry.ConsoleLogger", names[0])
}

func TestReferenceIndex_ReferencesForCached(t *testing.T) {
	ix := newReferenceIndex()
	typ := reflect.TypeOf(&ConsoleLogger{})

	first := ix.referencesFor(typ)

	// Interfaces cataloged after the first computation do not alter the
	// cached list; the container's miss-path scan covers them instead.
	ix.addInterface(reflect.TypeOf((*Logger)(nil)).Elem())
	second := ix.referencesFor(typ)

	assert.Equal(t, first, second)
	assert.NotContains(t, second, "gantry.Logger")
}

func TestReferenceIndex_EmbeddedAncestors(t *testing.T) {
	ix := newReferenceIndex()

	names := ix.referencesFor(reflect.TypeOf(&derived{}))

	assert.Contains(t, names, "*gantry.derived")
	assert.Contains(t, names, "gantry.base")
}

func TestReferenceIndex_AddInterfaceIgnoresConcrete(t *testing.T) {
	ix := newReferenceIndex()

	ix.addInterface(reflect.TypeOf(&ConsoleLogger{}))
	ix.addInterface(nil)

	_, ok := ix.interfaceByName("*gantry.ConsoleLogger")
	assert.False(t, ok)
}

func TestAddReference_ManualAlias(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("logger", NewConsoleLogger))
	c.AddReference("logger", "app.logger")

	instance, err := c.Resolve("app.logger")
	require.NoError(t, err)
	assert.IsType(t, &ConsoleLogger{}, instance)
}

func TestAddInterface_ExplicitCatalog(t *testing.T) {
	c := New()
	c.SetFullReference(false)

	require.NoError(t, c.Define("logger", NewConsoleLogger))
	c.AddInterface(reflect.TypeOf((*Logger)(nil)).Elem())

	// Explicit mode performs no implements scan, so the interface name
	// still misses without a recorded reference.
	_, err := c.ResolveType("gantry.Logger")
	assert.Error(t, err)

	c.AddReference("logger", "gantry.Logger")

	instance, err := c.ResolveType("gantry.Logger")
	require.NoError(t, err)
	assert.IsType(t, &ConsoleLogger{}, instance)
}

func TestAs_DefineOption(t *testing.T) {
	c := New()
	c.SetFullReference(false)

	require.NoError(t, c.Define("logger", NewConsoleLogger, As(new(Logger))))

	instance, err := c.ResolveType("gantry.Logger")
	require.NoError(t, err)
	assert.IsType(t, &ConsoleLogger{}, instance)
}

func TestAs_IgnoresNonInterface(t *testing.T) {
	c := New()

	// Non-interface values are silently skipped rather than indexed.
	err := c.Define("logger", NewConsoleLogger, As(42, new(int), nil))
	assert.NoError(t, err)
}

func TestResolveType_InterfaceScanOrder(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("console", NewConsoleLogger))
	require.NoError(t, c.Define("mem", newMemLogger))

	// Both implement Logger; the scan finds the first registered.
	instance, err := c.ResolveType("gantry.Logger")
	require.Error(t, err)

	// ResolveType only scans interfaces it knows by type; catalog it first.
	c.AddInterface(reflect.TypeOf((*Logger)(nil)).Elem())

	instance, err = c.ResolveType("gantry.Logger")
	require.NoError(t, err)
	assert.IsType(t, &ConsoleLogger{}, instance)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "*gantry.ConsoleLogger", TypeName(reflect.TypeOf(&ConsoleLogger{})))
	assert.Equal(t, "gantry.Logger", TypeName(reflect.TypeOf((*Logger)(nil)).Elem()))
	assert.Equal(t, "string", TypeName(reflect.TypeOf("")))
}

package gantry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_Constructor(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("db", NewDatabase,
		Args(Value("file:app.db"), Ref("logger")),
		Prop("Retries", Value(3)),
		Calls(Call("SetLogger", Ref("logger"))),
	))

	info := c.Inspect("db")

	assert.Equal(t, "db", info.ID)
	assert.Equal(t, "constructor", info.Kind)
	assert.Equal(t, "*gantry.Database", info.Type)
	assert.Len(t, info.Arguments, 2)
	assert.Len(t, info.Properties, 1)
	assert.Len(t, info.Calls, 1)
	assert.Equal(t, []string{"logger", "logger"}, info.Dependencies)
	assert.False(t, info.Built)
	assert.False(t, info.Building)
}

func TestInspect_Prototype(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("logger", &ConsoleLogger{}))

	info := c.Inspect("logger")
	assert.Equal(t, "prototype", info.Kind)
	assert.Equal(t, "*gantry.ConsoleLogger", info.Type)
}

func TestInspect_Instance(t *testing.T) {
	c := New()

	require.NoError(t, c.SetInstance("logger", &ConsoleLogger{}))

	info := c.Inspect("logger")
	assert.Equal(t, "instance", info.Kind)
	assert.Equal(t, "*gantry.ConsoleLogger", info.Type)
	assert.True(t, info.Built)
}

func TestInspect_UntypedNilInstance(t *testing.T) {
	c := New()

	require.NoError(t, c.SetInstance("hole", nil))

	info := c.Inspect("hole")
	assert.Equal(t, "instance", info.Kind)
	assert.Equal(t, "unknown", info.Type)
}

func TestInspect_Unknown(t *testing.T) {
	c := New()

	info := c.Inspect("missing")
	assert.Equal(t, "missing", info.ID)
	assert.Empty(t, info.Kind)
	assert.False(t, info.Built)
}

func TestInspect_BuiltFlag(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("logger", NewConsoleLogger))
	assert.False(t, c.Inspect("logger").Built)

	_, err := c.Resolve("logger")
	require.NoError(t, err)
	assert.True(t, c.Inspect("logger").Built)
}

func TestInspect_PendingCalls(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("x", NewNode,
		Calls(Call("SetPeer", LoadedRef("y"))),
	))

	_, err := c.Resolve("x")
	require.NoError(t, err)

	assert.Equal(t, []string{"SetPeer"}, c.Inspect("x").PendingCalls)

	require.NoError(t, c.Define("y", NewNode))
	_, err = c.Resolve("y")
	require.NoError(t, err)

	assert.Empty(t, c.Inspect("x").PendingCalls)
}

func TestQuery_ByKind(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("ctor", NewConsoleLogger))
	require.NoError(t, c.Define("proto", &ConsoleLogger{}))
	require.NoError(t, c.SetInstance("inst", &ConsoleLogger{}))

	assert.Equal(t, []string{"ctor"}, QueryIDs(c, DefinitionQuery{Kind: "constructor"}))
	assert.Equal(t, []string{"proto"}, QueryIDs(c, DefinitionQuery{Kind: "prototype"}))
	assert.Equal(t, []string{"inst"}, QueryIDs(c, DefinitionQuery{Kind: "instance"}))
}

func TestQuery_ByDependency(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("logger", NewConsoleLogger))
	require.NoError(t, c.Define("app", NewApp, Args(Ref("logger"))))
	require.NoError(t, c.Define("db", NewDatabase, Args(Value("dsn"), Ref("logger"))))

	ids := QueryIDs(c, DefinitionQuery{DependsOn: "logger"})
	assert.Equal(t, []string{"app", "db"}, ids)
}

func TestQuery_ByBuiltState(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("a", NewConsoleLogger))
	require.NoError(t, c.Define("b", newMemLogger))

	_, err := c.Resolve("a")
	require.NoError(t, err)

	built := true
	assert.Equal(t, []string{"a"}, QueryIDs(c, DefinitionQuery{Built: &built}))

	unbuilt := FindUnbuilt(c)
	require.Len(t, unbuilt, 1)
	assert.Equal(t, "b", unbuilt[0].ID)
}

func TestFindDependents(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("logger", NewConsoleLogger))
	require.NoError(t, c.Define("app", NewApp, Args(Ref("logger"))))

	dependents := FindDependents(c, "logger")
	require.Len(t, dependents, 1)
	assert.Equal(t, "app", dependents[0].ID)
}

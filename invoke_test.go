package gantry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke_AutowiredArguments(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("logger", NewConsoleLogger))

	results, err := c.Invoke(func(log Logger) string {
		log.Log("invoked")
		return "done"
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "done", results[0])

	logger, err := Resolve[*ConsoleLogger](c, "logger")
	require.NoError(t, err)
	assert.Equal(t, []string{"invoked"}, logger.Lines)
}

func TestInvoke_ExplicitArguments(t *testing.T) {
	c := New()

	results, err := c.Invoke(func(a, b int) int { return a + b },
		Value(2), Value(3))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 5, results[0])
}

func TestInvoke_ReferenceArgument(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("logger", NewConsoleLogger))

	_, err := c.Invoke(func(log *ConsoleLogger) { log.Log("via ref") },
		Ref("logger"))
	require.NoError(t, err)

	logger, err := Resolve[*ConsoleLogger](c, "logger")
	require.NoError(t, err)
	assert.Equal(t, []string{"via ref"}, logger.Lines)
}

func TestInvoke_TrailingErrorSplit(t *testing.T) {
	c := New()
	boom := errors.New("invoke failed")

	results, err := c.Invoke(func() (string, error) { return "partial", boom })

	assert.ErrorIs(t, err, boom)
	require.Len(t, results, 1)
	assert.Equal(t, "partial", results[0])
}

func TestInvoke_NilTrailingError(t *testing.T) {
	c := New()

	results, err := c.Invoke(func() (int, error) { return 7, nil })

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 7, results[0])
}

func TestInvoke_NoResults(t *testing.T) {
	c := New()
	called := false

	results, err := c.Invoke(func() { called = true })

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.True(t, called)
}

func TestInvoke_NotCallable(t *testing.T) {
	c := New()

	_, err := c.Invoke("not a function")
	assert.ErrorIs(t, err, ErrNotCallableSentinel)

	_, err = c.Invoke(nil)
	assert.ErrorIs(t, err, ErrNotCallableSentinel)

	_, err = c.Invoke(42)
	assert.ErrorIs(t, err, ErrNotCallableSentinel)
}

func TestInvoke_NoCaching(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("logger", NewConsoleLogger))

	_, err := c.Invoke(func(log Logger) {})
	require.NoError(t, err)

	// Invoking built the dependency (it is a managed service), but the
	// callable itself left nothing behind.
	assert.Equal(t, []string{"logger"}, c.Services())
}

func TestConstruct_FreshInstances(t *testing.T) {
	c := New()

	first, err := c.Construct(NewConsoleLogger)
	require.NoError(t, err)

	second, err := c.Construct(NewConsoleLogger)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Empty(t, c.Services())
}

func TestConstruct_ExplicitArguments(t *testing.T) {
	c := New()

	instance, err := c.Construct(NewDatabase, Value("file:tmp.db"))
	require.NoError(t, err)

	db := instance.(*Database)
	assert.Equal(t, "file:tmp.db", db.DSN)
	// Auto-wiring is off in Construct; the Logger position stays nil.
	assert.Nil(t, db.Log)
}

func TestConstruct_AutowireStaysDisabled(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("logger", NewConsoleLogger))

	instance, err := c.Construct(NewApp)
	require.NoError(t, err)
	assert.Nil(t, instance.(*App).Log)
	assert.False(t, c.Loaded("logger"))
}

func TestConstruct_LoadedRefReadsCache(t *testing.T) {
	c := New()

	require.NoError(t, c.Define("logger", NewConsoleLogger))
	_, err := c.Resolve("logger")
	require.NoError(t, err)

	instance, err := c.Construct(NewApp, LoadedRef("logger"))
	require.NoError(t, err)
	assert.IsType(t, &ConsoleLogger{}, instance.(*App).Log)
}

func TestConstruct_Prototype(t *testing.T) {
	c := New()

	instance, err := c.Construct(&ConsoleLogger{Prefix: "p: "})
	require.NoError(t, err)
	assert.Equal(t, "p: ", instance.(*ConsoleLogger).Prefix)
}

func TestConstruct_PrototypeRejectsArguments(t *testing.T) {
	c := New()

	_, err := c.Construct(&ConsoleLogger{}, Value("x"))
	assert.Error(t, err)
}

func TestConstruct_InvalidTargets(t *testing.T) {
	c := New()

	_, err := c.Construct(nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = c.Construct(42)
	assert.Error(t, err)

	_, err = c.Construct(func() {})
	assert.Error(t, err)
}

func TestConstruct_ConstructorError(t *testing.T) {
	c := New()
	boom := errors.New("cannot build")

	_, err := c.Construct(func() (*App, error) { return nil, boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, CodeBuildFailed, ErrorCode(err))
}

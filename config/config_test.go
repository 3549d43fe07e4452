package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BareClassName(t *testing.T) {
	f, err := Parse([]byte(`
services:
  logger: ConsoleLogger
`))
	require.NoError(t, err)

	require.Len(t, f.Recipes, 1)
	assert.Equal(t, "logger", f.Recipes[0].ID)
	assert.Equal(t, "ConsoleLogger", f.Recipes[0].Class)
	assert.Empty(t, f.Recipes[0].Arguments)
	assert.Empty(t, f.Recipes[0].Calls)
}

func TestParse_FullRecipe(t *testing.T) {
	f, err := Parse([]byte(`
services:
  db:
    class: Database
    arguments:
      - "file:app.db"
      - "@logger"
    properties:
      Retries: 3
    calls:
      - Ping
      - Configure: ["@?tracer"]
`))
	require.NoError(t, err)

	require.Len(t, f.Recipes, 1)
	r := f.Recipes[0]

	assert.Equal(t, "Database", r.Class)

	require.Len(t, r.Arguments, 2)
	assert.Equal(t, "file:app.db", r.Arguments[0].Value)
	assert.Equal(t, "@logger", r.Arguments[1].Value)

	require.Len(t, r.Properties, 1)
	assert.Equal(t, "Retries", r.Properties[0].Name)

	require.Len(t, r.Calls, 2)
	assert.Equal(t, "Ping", r.Calls[0].Method)
	assert.Empty(t, r.Calls[0].Arguments)
	assert.Equal(t, "Configure", r.Calls[1].Method)
	require.Len(t, r.Calls[1].Arguments, 1)
	assert.Equal(t, "@?tracer", r.Calls[1].Arguments[0].Value)
}

func TestParse_ServicesKeepFileOrder(t *testing.T) {
	f, err := Parse([]byte(`
services:
  zulu: Z
  alpha: A
  mike: M
`))
	require.NoError(t, err)

	ids := make([]string, len(f.Recipes))
	for i, r := range f.Recipes {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"zulu", "alpha", "mike"}, ids)
}

func TestParse_PropertiesKeepFileOrder(t *testing.T) {
	f, err := Parse([]byte(`
services:
  svc:
    class: C
    properties:
      Third: 3
      First: 1
      Second: 2
`))
	require.NoError(t, err)

	names := make([]string, len(f.Recipes[0].Properties))
	for i, p := range f.Recipes[0].Properties {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Third", "First", "Second"}, names)
}

func TestParse_NamedArguments(t *testing.T) {
	f, err := Parse([]byte(`
services:
  db:
    class: Database
    arguments:
      dsn: "file:app.db"
      log: "@logger"
`))
	require.NoError(t, err)

	args := f.Recipes[0].Arguments
	require.Len(t, args, 2)
	assert.Equal(t, "dsn", args[0].Name)
	assert.Equal(t, "file:app.db", args[0].Value)
	assert.Equal(t, "log", args[1].Name)
}

func TestParse_PositionalArgumentMapping(t *testing.T) {
	f, err := Parse([]byte(`
services:
  db:
    class: Database
    arguments:
      1: "@logger"
`))
	require.NoError(t, err)

	args := f.Recipes[0].Arguments
	require.Len(t, args, 2)
	assert.True(t, args[0].Auto)
	assert.False(t, args[1].Auto)
	assert.Equal(t, "@logger", args[1].Value)
}

func TestParse_Settings(t *testing.T) {
	f, err := Parse([]byte(`
autowire: false
full_reference: true
services: {}
`))
	require.NoError(t, err)

	require.NotNil(t, f.Autowire)
	assert.False(t, *f.Autowire)
	require.NotNil(t, f.FullReference)
	assert.True(t, *f.FullReference)
}

func TestParse_SettingsDefaultNil(t *testing.T) {
	f, err := Parse([]byte(`
services:
  logger: ConsoleLogger
`))
	require.NoError(t, err)

	assert.Nil(t, f.Autowire)
	assert.Nil(t, f.FullReference)
}

func TestParse_MissingClass(t *testing.T) {
	_, err := Parse([]byte(`
services:
  broken:
    arguments: ["x"]
`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestParse_UnknownRecipeKey(t *testing.T) {
	_, err := Parse([]byte(`
services:
  broken:
    class: C
    factory: nope
`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "factory")
}

func TestParse_InvalidShapes(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"recipe is a list", "services:\n  svc:\n    - one\n"},
		{"arguments scalar", "services:\n  svc:\n    class: C\n    arguments: nope\n"},
		{"properties list", "services:\n  svc:\n    class: C\n    properties:\n      - one\n"},
		{"calls mapping", "services:\n  svc:\n    class: C\n    calls:\n      m: [1]\n"},
		{"call with two methods", "services:\n  svc:\n    class: C\n    calls:\n      - a: [1]\n        b: [2]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_NotYAML(t *testing.T) {
	_, err := Parse([]byte(`{{{`))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services.yaml")
	data := []byte(`
services:
  logger: ConsoleLogger
  app:
    class: App
    arguments: ["@logger"]
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Recipes, 2)
}

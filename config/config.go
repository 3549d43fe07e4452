// Package config loads service recipes from YAML files and applies them to a
// container. A recipe file maps service ids to class names registered in a
// Catalog; argument values use the marker syntax understood by
// gantry.ParseArg ("@id", "@?id", "@!id").
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"go.uber.org/multierr"
)

var recipeValidator = validator.New()

// File is a parsed recipe file.
type File struct {
	// Autowire toggles descriptor-driven argument resolution. Nil leaves the
	// container's current setting untouched.
	Autowire *bool

	// FullReference toggles automatic type indexing of defined services.
	// Nil leaves the container's current setting untouched.
	FullReference *bool

	// Recipes are the service definitions in file order.
	Recipes []Recipe
}

// Recipe is one service definition from a file.
type Recipe struct {
	ID         string `validate:"required"`
	Class      string `validate:"required"`
	Arguments  []Argument
	Properties []Property
	Calls      []Call `validate:"dive"`
}

// Argument is one raw constructor or call argument.
type Argument struct {
	// Name binds the argument to a parameter name. Empty means positional.
	Name string

	// Auto marks a positional placeholder left to auto-wiring. Set when an
	// integer-keyed argument mapping skips positions.
	Auto bool

	// Value is the raw value, classified by gantry.ParseArg on apply.
	Value any
}

// Property is one raw property assignment.
type Property struct {
	Name  string `validate:"required"`
	Value any
}

// Call is one raw method call.
type Call struct {
	Method    string `validate:"required"`
	Arguments []Argument
}

// rawFile is the direct YAML shape. Services stays an ordered map so
// definition order survives into the container.
type rawFile struct {
	Autowire      *bool         `yaml:"autowire"`
	FullReference *bool         `yaml:"full_reference"`
	Services      yaml.MapSlice `yaml:"services"`
}

// Load reads and parses a recipe file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe file: %w", err)
	}

	return Parse(data)
}

// Parse parses recipe file contents. The services mapping and everything
// nested in it keep their file order.
func Parse(data []byte) (*File, error) {
	var raw rawFile
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("parse recipe file: %w", err)
	}

	f := &File{
		Autowire:      raw.Autowire,
		FullReference: raw.FullReference,
	}

	for _, item := range raw.Services {
		id, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("service id %v must be a string", item.Key)
		}

		recipe, err := parseRecipe(id, item.Value)
		if err != nil {
			return nil, err
		}
		f.Recipes = append(f.Recipes, recipe)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return f, nil
}

// Validate checks every recipe's shape, reporting all failures together.
func (f *File) Validate() error {
	var errs error
	for _, r := range f.Recipes {
		if err := recipeValidator.Struct(r); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("service %q: %w", r.ID, err))
		}
	}

	return errs
}

// parseRecipe accepts either a bare class name or a recipe mapping.
func parseRecipe(id string, value any) (Recipe, error) {
	recipe := Recipe{ID: id}

	switch v := value.(type) {
	case string:
		recipe.Class = v
		return recipe, nil

	case yaml.MapSlice:
		for _, item := range v {
			key, ok := item.Key.(string)
			if !ok {
				return recipe, fmt.Errorf("service %q: recipe key %v must be a string", id, item.Key)
			}

			var err error
			switch key {
			case "class":
				recipe.Class, ok = item.Value.(string)
				if !ok {
					err = fmt.Errorf("service %q: class must be a string", id)
				}
			case "arguments":
				recipe.Arguments, err = parseArguments(id, item.Value)
			case "properties":
				recipe.Properties, err = parseProperties(id, item.Value)
			case "calls":
				recipe.Calls, err = parseCalls(id, item.Value)
			default:
				err = fmt.Errorf("service %q: unknown recipe key %q", id, key)
			}
			if err != nil {
				return recipe, err
			}
		}
		return recipe, nil

	default:
		return recipe, fmt.Errorf("service %q must be a class name or a recipe mapping, got %T", id, value)
	}
}

// parseArguments accepts an ordered list (positional) or a mapping. String
// keys bind by parameter name; integer keys place the value at that position,
// padding skipped positions with auto-wired placeholders.
func parseArguments(id string, value any) ([]Argument, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil

	case []any:
		args := make([]Argument, len(v))
		for i, item := range v {
			args[i] = Argument{Value: item}
		}
		return args, nil

	case yaml.MapSlice:
		var args []Argument
		for _, item := range v {
			if name, ok := item.Key.(string); ok {
				args = append(args, Argument{Name: name, Value: item.Value})
				continue
			}

			pos, ok := asInt(item.Key)
			if !ok || pos < 0 {
				return nil, fmt.Errorf("service %q: argument key %v must be a name or a position", id, item.Key)
			}
			for len(args) <= pos {
				args = append(args, Argument{Auto: true})
			}
			args[pos] = Argument{Value: item.Value}
		}
		return args, nil

	default:
		return nil, fmt.Errorf("service %q: arguments must be a list or a mapping, got %T", id, value)
	}
}

// parseProperties accepts a name-to-value mapping, kept in file order.
func parseProperties(id string, value any) ([]Property, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil

	case yaml.MapSlice:
		props := make([]Property, 0, len(v))
		for _, item := range v {
			name, ok := item.Key.(string)
			if !ok {
				return nil, fmt.Errorf("service %q: property name %v must be a string", id, item.Key)
			}
			props = append(props, Property{Name: name, Value: item.Value})
		}
		return props, nil

	default:
		return nil, fmt.Errorf("service %q: properties must be a mapping, got %T", id, value)
	}
}

// parseCalls accepts a list where each entry is a bare method name or a
// single-entry mapping from method name to its arguments.
func parseCalls(id string, value any) ([]Call, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil

	case []any:
		calls := make([]Call, 0, len(v))
		for _, item := range v {
			call, err := parseCall(id, item)
			if err != nil {
				return nil, err
			}
			calls = append(calls, call)
		}
		return calls, nil

	default:
		return nil, fmt.Errorf("service %q: calls must be a list, got %T", id, value)
	}
}

func parseCall(id string, value any) (Call, error) {
	switch v := value.(type) {
	case string:
		return Call{Method: v}, nil

	case yaml.MapSlice:
		if len(v) != 1 {
			return Call{}, fmt.Errorf("service %q: a call mapping must have exactly one method entry", id)
		}

		method, ok := v[0].Key.(string)
		if !ok {
			return Call{}, fmt.Errorf("service %q: call method %v must be a string", id, v[0].Key)
		}

		args, err := parseArguments(id, v[0].Value)
		if err != nil {
			return Call{}, err
		}
		return Call{Method: method, Arguments: args}, nil

	default:
		return Call{}, fmt.Errorf("service %q: call entry must be a method name or a mapping, got %T", id, value)
	}
}

// asInt normalizes the integer types the YAML decoder produces for map keys.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}

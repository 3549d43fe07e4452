package gantry

import "fmt"

// =============================================================================
// ARGUMENT KINDS
// =============================================================================

// ArgKind discriminates how an argument value is produced at build time.
type ArgKind uint8

const (
	// ArgAuto leaves the position to descriptor classification (auto-wiring).
	ArgAuto ArgKind = iota

	// ArgValue passes a literal through untouched.
	ArgValue

	// ArgRef resolves a service id, building it on demand; unknown ids fail.
	ArgRef

	// ArgOptionalRef resolves a service id, building it on demand; unknown
	// ids yield the zero value instead of failing.
	ArgOptionalRef

	// ArgLoadedRef reads the instance cache only. It never triggers a build:
	// an uncached id yields the zero value in constructors and properties,
	// and defers the whole invocation when used in a method call.
	ArgLoadedRef
)

// String returns the kind name.
func (k ArgKind) String() string {
	switch k {
	case ArgAuto:
		return "auto"
	case ArgValue:
		return "value"
	case ArgRef:
		return "reference"
	case ArgOptionalRef:
		return "optional-reference"
	case ArgLoadedRef:
		return "loaded-reference"
	default:
		return "unknown"
	}
}

// =============================================================================
// ARGUMENT VALUES
// =============================================================================

// Arg is a single constructor, property, or method-call argument. The zero
// value is an auto-wired position.
type Arg struct {
	Kind ArgKind

	// Name binds the argument to a parameter name instead of its position.
	Name string

	// Target is the referenced service id for the reference kinds.
	Target string

	// Literal holds the value for ArgValue.
	Literal any
}

// Value creates a literal argument. The value is passed through as-is, even
// when it is a string starting with a reference marker.
//
// Usage:
//
//	c.Define("database", NewDatabase, gantry.Args(gantry.Value("file:app.db")))
func Value(v any) Arg {
	return Arg{Kind: ArgValue, Literal: v}
}

// Ref creates a required reference argument. The target service is resolved,
// building it on demand, and an unknown id is an error.
//
// Usage:
//
//	c.Define("app", NewApp, gantry.Args(gantry.Ref("logger")))
func Ref(id string) Arg {
	return Arg{Kind: ArgRef, Target: id}
}

// OptionalRef creates an optional reference argument. It resolves like Ref
// but yields the parameter's zero value when the target is unknown.
//
// Usage:
//
//	c.Define("app", NewApp, gantry.Args(gantry.OptionalRef("tracer")))
func OptionalRef(id string) Arg {
	return Arg{Kind: ArgOptionalRef, Target: id}
}

// LoadedRef creates a loaded-only reference argument. The target is read from
// the instance cache without building it. In a method call an uncached target
// defers the whole call until the target finishes building.
//
// Usage:
//
//	c.Define("worker", NewWorker,
//	    gantry.Calls(gantry.Call("SetPool", gantry.LoadedRef("pool"))))
func LoadedRef(id string) Arg {
	return Arg{Kind: ArgLoadedRef, Target: id}
}

// Auto creates an explicitly auto-wired position, useful for skipping a
// parameter while overriding a later one.
func Auto() Arg {
	return Arg{Kind: ArgAuto}
}

// Named binds the argument to a parameter name, detaching it from its
// position in the argument list.
func (a Arg) Named(name string) Arg {
	a.Name = name
	return a
}

// String renders the argument in marker syntax, mirroring ParseArg.
func (a Arg) String() string {
	switch a.Kind {
	case ArgValue:
		return fmt.Sprintf("%v", a.Literal)
	case ArgRef:
		return refMarker + a.Target
	case ArgOptionalRef:
		return optionalMarker + a.Target
	case ArgLoadedRef:
		return loadedMarker + a.Target
	default:
		return "<auto>"
	}
}

// =============================================================================
// MARKER CLASSIFICATION
// =============================================================================

const (
	refMarker      = "@"
	optionalMarker = "@?"
	loadedMarker   = "@!"
)

// ParseArg classifies a raw configuration value into an argument. Strings
// starting with "@!" become loaded-only references, "@?" optional references,
// and "@" required references; every other value, including non-strings, is
// a literal. Reference resolution order does not depend on marker length:
// the longest marker wins.
//
// Usage:
//
//	gantry.ParseArg("@logger")      // required reference to "logger"
//	gantry.ParseArg("@?tracer")     // optional reference to "tracer"
//	gantry.ParseArg("@!pool")       // loaded-only reference to "pool"
//	gantry.ParseArg("plain string") // literal
//	gantry.ParseArg(42)             // literal
func ParseArg(raw any) Arg {
	s, ok := raw.(string)
	if !ok {
		return Value(raw)
	}
	switch {
	case len(s) >= len(loadedMarker) && s[:len(loadedMarker)] == loadedMarker:
		return LoadedRef(s[len(loadedMarker):])
	case len(s) >= len(optionalMarker) && s[:len(optionalMarker)] == optionalMarker:
		return OptionalRef(s[len(optionalMarker):])
	case len(s) >= len(refMarker) && s[:len(refMarker)] == refMarker:
		return Ref(s[len(refMarker):])
	default:
		return Value(raw)
	}
}

// ParseArgs classifies a slice of raw configuration values.
func ParseArgs(raw []any) []Arg {
	args := make([]Arg, len(raw))
	for i, v := range raw {
		args[i] = ParseArg(v)
	}
	return args
}

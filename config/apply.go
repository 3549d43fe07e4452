package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/xraph/gantry"
)

// Apply configures the container from the file: settings first, then every
// recipe in file order. Each recipe's class is looked up in the catalog.
// Every definition is attempted and the failures are reported together.
func (f *File) Apply(c gantry.Container, classes *Catalog) error {
	if f.Autowire != nil {
		c.SetAutowire(*f.Autowire)
	}
	if f.FullReference != nil {
		c.SetFullReference(*f.FullReference)
	}

	var errs error
	for _, r := range f.Recipes {
		target, ok := classes.Lookup(r.Class)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("service %q: class %q not in catalog", r.ID, r.Class))
			continue
		}

		if err := c.Define(r.ID, target, r.options()...); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// options converts a recipe into define options, classifying raw values with
// the marker syntax.
func (r Recipe) options() []gantry.DefineOption {
	var opts []gantry.DefineOption

	if len(r.Arguments) > 0 {
		opts = append(opts, gantry.Args(convertArgs(r.Arguments)...))
	}

	for _, p := range r.Properties {
		opts = append(opts, gantry.Prop(p.Name, gantry.ParseArg(p.Value)))
	}

	if len(r.Calls) > 0 {
		specs := make([]gantry.CallSpec, 0, len(r.Calls))
		for _, call := range r.Calls {
			specs = append(specs, gantry.Call(call.Method, convertArgs(call.Arguments)...))
		}
		opts = append(opts, gantry.Calls(specs...))
	}

	return opts
}

func convertArgs(args []Argument) []gantry.Arg {
	out := make([]gantry.Arg, len(args))
	for i, a := range args {
		if a.Auto {
			out[i] = gantry.Auto()
			continue
		}

		arg := gantry.ParseArg(a.Value)
		if a.Name != "" {
			arg = arg.Named(a.Name)
		}
		out[i] = arg
	}
	return out
}

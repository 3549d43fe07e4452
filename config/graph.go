package config

import "github.com/xraph/gantry"

// Graph builds the dependency graph a file's recipes declare, without
// touching a container or a catalog. Useful for diagnostics over a recipe
// file alone.
func (f *File) Graph() *gantry.DependencyGraph {
	g := gantry.NewDependencyGraph()
	for _, r := range f.Recipes {
		g.AddNode(r.ID, r.edges())
	}
	return g
}

// edges derives the declared dependency edges of a recipe from its raw
// marker-syntax values.
func (r Recipe) edges() []gantry.Edge {
	var edges []gantry.Edge

	addValue := func(v any) {
		arg := gantry.ParseArg(v)
		switch arg.Kind {
		case gantry.ArgRef:
			edges = append(edges, gantry.Edge{Target: arg.Target})
		case gantry.ArgOptionalRef:
			edges = append(edges, gantry.Edge{Target: arg.Target, Optional: true})
		case gantry.ArgLoadedRef:
			edges = append(edges, gantry.Edge{Target: arg.Target, Deferred: true})
		}
	}

	for _, a := range r.Arguments {
		if a.Auto {
			continue
		}
		addValue(a.Value)
	}
	for _, p := range r.Properties {
		addValue(p.Value)
	}
	for _, call := range r.Calls {
		for _, a := range call.Arguments {
			if a.Auto {
				continue
			}
			addValue(a.Value)
		}
	}

	return edges
}

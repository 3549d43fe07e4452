package gantry

import "reflect"

// DefinitionInfo is a diagnostic snapshot of a registered service.
type DefinitionInfo struct {
	// ID is the service id.
	ID string

	// Type is the reference name of the type the service produces.
	// "unknown" for an untyped nil instance.
	Type string

	// Kind reports how the service is produced: "constructor" for function
	// targets, "prototype" for pointer-to-struct targets, "instance" for
	// values stored with SetInstance and never defined.
	Kind string

	// Arguments are the declared constructor arguments.
	Arguments []Arg

	// Properties are the declared property assignments.
	Properties []Property

	// Calls are the declared method calls.
	Calls []CallSpec

	// Dependencies are the service ids referenced by arguments, properties
	// and calls, including optional and deferred ones.
	Dependencies []string

	// Built reports whether an instance is cached for the id.
	Built bool

	// Building reports whether the id is currently being constructed.
	Building bool

	// PendingCalls lists methods of this service parked in the delayed call
	// queue, still waiting for another service to finish building.
	PendingCalls []string
}

// Inspect returns diagnostic information about a service.
func (c *containerImpl) Inspect(id string) DefinitionInfo {
	c.mu.RLock()
	def, defined := c.definitions[id]
	instance, built := c.instances[id]
	c.mu.RUnlock()

	info := DefinitionInfo{
		ID:           id,
		Built:        built,
		Building:     c.loading.member(id),
		Dependencies: c.graph.Dependencies(id),
		PendingCalls: c.delayed.pendingFor(id),
	}

	switch {
	case defined:
		if def.isFunc {
			info.Kind = "constructor"
		} else {
			info.Kind = "prototype"
		}
		info.Type = TypeName(def.result)
		info.Arguments = def.args
		info.Properties = def.props
		info.Calls = def.calls
	case built:
		info.Kind = "instance"
		info.Type = "unknown"
		if instance != nil {
			info.Type = TypeName(reflect.TypeOf(instance))
		}
	}

	return info
}

// DefinitionQuery defines criteria for querying services.
type DefinitionQuery struct {
	// Kind filters by how the service is produced ("constructor",
	// "prototype", "instance"). Empty string matches all kinds.
	Kind string

	// DependsOn filters to services that declare a reference to the given
	// id. Empty string matches all services.
	DependsOn string

	// Built filters by whether an instance is cached.
	// nil matches all services (built and not built).
	Built *bool
}

// Query returns detailed information about services matching the query
// criteria, in registration order.
//
// Example:
//
//	// Find every constructed service that references the mailer
//	built := true
//	results := gantry.Query(c, gantry.DefinitionQuery{
//	    DependsOn: "mailer",
//	    Built: &built,
//	})
func Query(c Container, query DefinitionQuery) []DefinitionInfo {
	var results []DefinitionInfo

	for _, id := range c.Services() {
		info := c.Inspect(id)

		if query.Kind != "" && info.Kind != query.Kind {
			continue
		}

		if query.DependsOn != "" {
			found := false
			for _, dep := range info.Dependencies {
				if dep == query.DependsOn {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}

		if query.Built != nil && info.Built != *query.Built {
			continue
		}

		results = append(results, info)
	}

	return results
}

// QueryIDs returns the ids of services matching the query criteria.
// This is more efficient than Query when you only need service ids.
func QueryIDs(c Container, query DefinitionQuery) []string {
	results := Query(c, query)
	ids := make([]string, len(results))
	for i, info := range results {
		ids[i] = info.ID
	}
	return ids
}

// FindDependents returns every service that declares a reference to id.
func FindDependents(c Container, id string) []DefinitionInfo {
	return Query(c, DefinitionQuery{DependsOn: id})
}

// FindUnbuilt returns every service without a cached instance yet.
func FindUnbuilt(c Container) []DefinitionInfo {
	built := false
	return Query(c, DefinitionQuery{Built: &built})
}

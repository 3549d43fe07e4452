package gantry

import (
	"fmt"
	"strings"
)

// Edge is a declared dependency from one service to another.
type Edge struct {
	// Target is the id of the service depended on.
	Target string

	// Optional marks a reference that tolerates the target being absent.
	Optional bool

	// Deferred marks a loaded-only reference. Deferred edges never force a
	// build, so they are excluded from cycle detection and ordering.
	Deferred bool
}

// DependencyGraph records the declared dependencies between services.
type DependencyGraph struct {
	nodes map[string]*node
	order []string // Preserve registration order
}

type node struct {
	name  string
	edges []Edge
}

// NewDependencyGraph creates a new dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*node),
		order: make([]string, 0),
	}
}

// AddNode adds a node with its declared edges.
// Nodes are processed in the order they are added (FIFO) when no dependencies exist.
func (g *DependencyGraph) AddNode(name string, edges []Edge) {
	if _, ok := g.nodes[name]; !ok {
		g.order = append(g.order, name)
	}
	g.nodes[name] = &node{
		name:  name,
		edges: edges,
	}
}

// HasNode checks if a node exists in the graph.
func (g *DependencyGraph) HasNode(name string) bool {
	_, ok := g.nodes[name]

	return ok
}

// Nodes returns all node names in registration order.
func (g *DependencyGraph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)

	return out
}

// Edges returns the declared edges for a node.
func (g *DependencyGraph) Edges(name string) []Edge {
	if node, ok := g.nodes[name]; ok {
		return node.edges
	}

	return nil
}

// Dependencies returns the target names of all edges for a node,
// including optional and deferred ones.
func (g *DependencyGraph) Dependencies(name string) []string {
	node, ok := g.nodes[name]
	if !ok {
		return nil
	}

	deps := make([]string, 0, len(node.edges))
	for _, e := range node.edges {
		deps = append(deps, e.Target)
	}

	return deps
}

// RequiredDependencies returns only the targets that must exist before the
// node can be built. Deferred edges are excluded since they are delivered
// after construction.
func (g *DependencyGraph) RequiredDependencies(name string) []string {
	node, ok := g.nodes[name]
	if !ok {
		return nil
	}

	var required []string
	for _, e := range node.edges {
		if !e.Deferred {
			required = append(required, e.Target)
		}
	}

	return required
}

// TopologicalSort returns nodes in dependency order.
// Nodes without dependencies maintain their registration order (FIFO).
// Deferred edges do not participate in the ordering, so a cycle that is
// broken by a loaded-only reference sorts cleanly.
// Returns error if circular dependency detected.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	result := make([]string, 0, len(g.nodes))

	// Visit nodes in registration order to preserve FIFO for nodes without dependencies
	for _, name := range g.order {
		if err := g.visit(name, visited, visiting, nil, &result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// visit performs DFS traversal. The path accumulates the chain of nodes
// currently being visited so a detected cycle can be reported in full.
func (g *DependencyGraph) visit(name string, visited, visiting map[string]bool, path []string, result *[]string) error {
	if visited[name] {
		return nil
	}

	if visiting[name] {
		return ErrCircularDependency(name, append(path, name))
	}

	node := g.nodes[name]
	if node == nil {
		// Node not in graph, skip (may be optional dependency)
		return nil
	}

	visiting[name] = true
	path = append(path, name)

	for _, edge := range node.edges {
		if edge.Deferred {
			continue
		}
		if err := g.visit(edge.Target, visited, visiting, path, result); err != nil {
			return err
		}
	}

	visiting[name] = false
	visited[name] = true
	*result = append(*result, name)

	return nil
}

// DOT renders the graph in graphviz dot format. Required references draw
// solid, optional ones dashed and deferred ones dotted.
func (g *DependencyGraph) DOT() string {
	var b strings.Builder

	b.WriteString("digraph services {\n")
	b.WriteString("\trankdir=LR;\n")
	b.WriteString("\tnode [fontname=\"Helvetica,Arial,sans-serif\", shape=box];\n")
	b.WriteString("\tedge [fontname=\"Helvetica,Arial,sans-serif\"];\n")

	for _, name := range g.order {
		fmt.Fprintf(&b, "\t%s [label=%q];\n", sanitizeNodeID(name), name)
	}

	for _, name := range g.order {
		for _, edge := range g.nodes[name].edges {
			fmt.Fprintf(&b, "\t%s -> %s [style=%q];\n",
				sanitizeNodeID(name), sanitizeNodeID(edge.Target), edgeStyle(edge))
		}
	}

	b.WriteString("}\n")

	return b.String()
}

func edgeStyle(e Edge) string {
	switch {
	case e.Deferred:
		return "dotted"
	case e.Optional:
		return "dashed"
	default:
		return "solid"
	}
}

// sanitizeNodeID rewrites a service id into a valid dot identifier.
func sanitizeNodeID(id string) string {
	return "n_" + strings.NewReplacer("*", "", ".", "_", "/", "_", "-", "_", " ", "_").Replace(id)
}

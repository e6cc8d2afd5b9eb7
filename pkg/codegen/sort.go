package codegen

import (
	"slices"

	"github.com/matzehuels/shadergraph/pkg/graph"
)

// Graph is a read-only, id-keyed view over a set of nodes. It preserves the order
// the nodes were given in, which makes scheduling deterministic.
type Graph struct {
	nodes []graph.Node
	index map[string]int
}

// NewGraph builds a view over nodes. Later duplicates of an id are ignored.
func NewGraph(nodes []graph.Node) *Graph {
	g := &Graph{index: make(map[string]int, len(nodes))}
	for _, n := range nodes {
		if _, dup := g.index[n.ID()]; dup {
			continue
		}
		g.index[n.ID()] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
	return g
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (graph.Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Len returns the number of nodes in the view.
func (g *Graph) Len() int { return len(g.nodes) }

// Edges returns the outgoing connections of n that stay inside the view.
// Unused outputs and connections to nodes outside the view are dropped.
func (g *Graph) Edges(n graph.Node) []graph.Connection {
	var out []graph.Connection
	for _, c := range n.Outgoing() {
		if c.Unused() {
			continue
		}
		if _, ok := g.index[c.To]; !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Sort orders the nodes of g so that every node comes before the targets of its
// outgoing connections. The graph must be acyclic.
//
// Sort runs a depth-first search from each unvisited node in view order and
// returns the reversed finish order.
func Sort(g *Graph) []graph.Node {
	type frame struct {
		node  graph.Node
		edges []graph.Connection
		next  int
	}

	visited := make([]bool, len(g.nodes))
	finished := make([]graph.Node, 0, len(g.nodes))

	for i, root := range g.nodes {
		if visited[i] {
			continue
		}
		visited[i] = true
		stack := []*frame{{node: root, edges: g.Edges(root)}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.next == len(top.edges) {
				finished = append(finished, top.node)
				stack = stack[:len(stack)-1]
				continue
			}
			c := top.edges[top.next]
			top.next++

			j := g.index[c.To]
			if visited[j] {
				continue
			}
			visited[j] = true
			child := g.nodes[j]
			stack = append(stack, &frame{node: child, edges: g.Edges(child)})
		}
	}

	slices.Reverse(finished)
	return finished
}

// Schedule returns the ids of nodes in execution order.
func Schedule(nodes []graph.Node) []string {
	sorted := Sort(NewGraph(nodes))
	ids := make([]string, len(sorted))
	for i, n := range sorted {
		ids[i] = n.ID()
	}
	return ids
}

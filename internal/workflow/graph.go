package workflow

import (
	"context"
	"fmt"
)

const (
	NodeRouter    = "router"
	NodeChat      = "chat"
	NodeDiscovery = "discovery"
	NodeContent   = "content"

	End = ""
)

const maxSteps = 8

// Node runs one step and may update st.
type Node func(ctx context.Context, st *State, out *stream) error

// Edge picks the next node from the state after a node ran. End stops the run.
type Edge func(st *State) string

// Graph is a small directed graph of nodes with conditional edges.
type Graph struct {
	entry string
	nodes map[string]Node
	edges map[string]Edge
}

func NewGraph(entry string) *Graph {
	return &Graph{entry: entry, nodes: map[string]Node{}, edges: map[string]Edge{}}
}

func (g *Graph) AddNode(name string, n Node) *Graph {
	g.nodes[name] = n
	return g
}

// AddEdge sets the outgoing edge of from. Nodes without one end the run.
func (g *Graph) AddEdge(from string, e Edge) *Graph {
	g.edges[from] = e
	return g
}

func (g *Graph) Run(ctx context.Context, st *State, out *stream) error {
	cur := g.entry
	for step := 0; cur != End; step++ {
		if step >= maxSteps {
			return fmt.Errorf("graph did not finish after %d steps", maxSteps)
		}
		node, ok := g.nodes[cur]
		if !ok {
			return fmt.Errorf("unknown node %q", cur)
		}
		if err := node(ctx, st, out); err != nil {
			return fmt.Errorf("node %s: %w", cur, err)
		}
		edge, ok := g.edges[cur]
		if !ok {
			return nil
		}
		cur = edge(st)
	}
	return nil
}

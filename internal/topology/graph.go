package topology

import (
	"fmt"
	"sort"
	"strings"
)

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Edge is one directed half of an undirected connection.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
}

// Graph is an adjacency list keyed by vertex key.
//
// Connections are stored as two directed edges, one in each endpoint's
// list. Parallel edges are kept: adding the same connection twice yields
// two entries per endpoint.
//
// Thread Safety:
//   - Graph has no internal locking. Populate it from one goroutine, then
//     share it read-only.
type Graph struct {
	adj map[string][]Edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{adj: make(map[string][]Edge)}
}

// AddVertex registers key with an empty adjacency list if it is not present.
// A vertex with no edges can still be looked up; it is just unreachable.
func (g *Graph) AddVertex(key string) {
	if _, ok := g.adj[key]; !ok {
		g.adj[key] = nil
	}
}

// HasVertex reports whether key was added to the graph.
func (g *Graph) HasVertex(key string) bool {
	_, ok := g.adj[key]
	return ok
}

// AddUndirectedEdge appends a→b to a's list and b→a to b's list, creating
// either vertex if absent.
func (g *Graph) AddUndirectedEdge(a, b string, weight int) {
	g.adj[a] = append(g.adj[a], Edge{From: a, To: b, Weight: weight})
	g.adj[b] = append(g.adj[b], Edge{From: b, To: a, Weight: weight})
}

// Neighbors returns the edges incident to key in insertion order.
// The slice is shared with the graph and must not be modified.
//
// Returns:
//   - []Edge: Possibly empty adjacency list
//   - error: ErrVertexNotFound if key was never added
func (g *Graph) Neighbors(key string) ([]Edge, error) {
	edges, ok := g.adj[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVertexNotFound, key)
	}
	return edges, nil
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int {
	return len(g.adj)
}

// EdgeCount returns the number of directed edges (twice the number of
// undirected connections).
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.adj {
		n += len(edges)
	}
	return n
}

// Keys returns every vertex key in sorted order.
func (g *Graph) Keys() []string {
	keys := make([]string, 0, len(g.adj))
	for k := range g.adj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Edges returns a copy of every directed edge, grouped by sorted From key.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.EdgeCount())
	for _, k := range g.Keys() {
		out = append(out, g.adj[k]...)
	}
	return out
}

// Dump logs one line per vertex listing its neighbours.
func (g *Graph) Dump(log Logger) {
	if log == nil {
		log = noopLogger{}
	}
	log.Info("topology graph", "vertices", g.VertexCount(), "edges", g.EdgeCount())
	for _, k := range g.Keys() {
		to := make([]string, 0, len(g.adj[k]))
		for _, e := range g.adj[k] {
			to = append(to, e.To)
		}
		log.Info("vertex", "key", k, "neighbors", strings.Join(to, ","))
	}
}

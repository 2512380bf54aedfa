package topology

import (
	"github.com/nerrad567/gray-logic-av/internal/room"
)

// Kind tells the dispatcher how to treat a vertex on a resolved path.
type Kind string

// Vertex kinds.
const (
	// KindInput is a source leaf.
	KindInput Kind = "input"

	// KindOutput is a destination leaf.
	KindOutput Kind = "output"

	// KindMatrix is a matrix input or output port. Only these drive
	// hardware commands.
	KindMatrix Kind = "matrix"
)

// edgeWeight is the weight of every connection. Paths are compared by hop count.
const edgeWeight = 1

// Vertex is one addressable point in the room topology.
//
// ParentKey and TargetKey record static wiring made at build time:
// a source's ParentKey is the matrix input it plugs into, and that matrix
// input's TargetKey points back at the source. Destinations mirror this
// on the output side. They never change after Build.
type Vertex struct {
	Key       string `json:"key"`
	Kind      Kind   `json:"kind"`
	ParentKey string `json:"parent_key,omitempty"`
	TargetKey string `json:"target_key,omitempty"`
}

// Topology is the built graph plus its vertex index.
type Topology struct {
	Graph *Graph

	vertices map[string]*Vertex
	order    []string
}

// Vertex returns a copy of the vertex with the given key.
func (t *Topology) Vertex(key string) (Vertex, bool) {
	v, ok := t.vertices[key]
	if !ok {
		return Vertex{}, false
	}
	return *v, true
}

// Vertices returns copies of all vertices in build order: matrix ports,
// then sources, then destinations.
func (t *Topology) Vertices() []Vertex {
	out := make([]Vertex, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, *t.vertices[k])
	}
	return out
}

func (t *Topology) add(v *Vertex) bool {
	if _, exists := t.vertices[v.Key]; exists {
		return false
	}
	t.vertices[v.Key] = v
	t.order = append(t.order, v.Key)
	t.Graph.AddVertex(v.Key)
	return true
}

// Build turns a room inventory into a Topology.
//
// Wiring problems (a source on an unknown matrix, a port beyond the
// matrix port count, a tie-line to a missing port, a leaf ID that collides
// with another vertex) are logged as warnings. The affected vertex is left
// unconnected and routing to it fails later with no path.
//
// Parameters:
//   - r: Validated room inventory
//   - log: Receives build warnings; nil discards them
//
// Returns:
//   - *Topology: Read-only topology for the dispatcher
func Build(r *room.Room, log Logger) *Topology {
	if log == nil {
		log = noopLogger{}
	}

	t := &Topology{
		Graph:    NewGraph(),
		vertices: make(map[string]*Vertex),
	}

	for _, m := range r.Matrices {
		for n := 1; n <= m.Inputs; n++ {
			t.add(&Vertex{Key: MatrixInputKey(m.ID, n), Kind: KindMatrix})
		}
		for n := 1; n <= m.Outputs; n++ {
			t.add(&Vertex{Key: MatrixOutputKey(m.ID, n), Kind: KindMatrix})
		}
	}

	var sourceLinks, destLinks [][2]string

	for _, s := range r.Sources {
		portKey := MatrixInputKey(s.Matrix, s.Input)
		if !t.add(&Vertex{Key: s.ID, Kind: KindInput, ParentKey: portKey}) {
			log.Warn("source id collides with an existing vertex", "source", s.ID)
			continue
		}
		port, ok := t.vertices[portKey]
		if !ok || port.Kind != KindMatrix {
			log.Warn("source wired to missing matrix input", "source", s.ID, "port", portKey)
			continue
		}
		port.TargetKey = s.ID
		sourceLinks = append(sourceLinks, [2]string{s.ID, portKey})
	}

	for _, d := range r.Destinations {
		portKey := MatrixOutputKey(d.Matrix, d.Output)
		if !t.add(&Vertex{Key: d.ID, Kind: KindOutput, TargetKey: portKey}) {
			log.Warn("destination id collides with an existing vertex", "destination", d.ID)
			continue
		}
		port, ok := t.vertices[portKey]
		if !ok || port.Kind != KindMatrix {
			log.Warn("destination wired to missing matrix output", "destination", d.ID, "port", portKey)
			continue
		}
		port.ParentKey = d.ID
		destLinks = append(destLinks, [2]string{d.ID, portKey})
	}

	for _, l := range sourceLinks {
		t.Graph.AddUndirectedEdge(l[0], l[1], edgeWeight)
	}
	for _, l := range destLinks {
		t.Graph.AddUndirectedEdge(l[0], l[1], edgeWeight)
	}

	for _, m := range r.Matrices {
		for in := 1; in <= m.Inputs; in++ {
			for out := 1; out <= m.Outputs; out++ {
				t.Graph.AddUndirectedEdge(MatrixInputKey(m.ID, in), MatrixOutputKey(m.ID, out), edgeWeight)
			}
		}
	}

	for _, tl := range r.TieLines {
		if _, ok := t.vertices[tl.Start]; !ok {
			log.Warn("tie-line start not found", "start", tl.Start, "end", tl.End)
			continue
		}
		if _, ok := t.vertices[tl.End]; !ok {
			log.Warn("tie-line end not found", "start", tl.Start, "end", tl.End)
			continue
		}
		t.Graph.AddUndirectedEdge(tl.Start, tl.End, edgeWeight)
	}

	log.Debug("topology built",
		"vertices", t.Graph.VertexCount(),
		"edges", t.Graph.EdgeCount(),
		"tie_lines", len(r.TieLines),
	)

	return t
}

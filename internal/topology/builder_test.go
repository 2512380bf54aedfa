package topology

import (
	"reflect"
	"testing"

	"github.com/nerrad567/gray-logic-av/internal/room"
)

func singleMatrixRoom() *room.Room {
	return &room.Room{
		Matrices: []room.Matrix{
			{ID: "MX1", Inputs: 4, Outputs: 2, Driver: room.Driver{Type: room.DriverSimulated}},
		},
		Sources: []room.Source{
			{ID: "CAM1", Label: "Camera 1", Matrix: "MX1", Input: 1},
		},
		Destinations: []room.Destination{
			{ID: "DISP1", Label: "Display 1", Matrix: "MX1", Output: 1},
		},
	}
}

func cascadeRoom() *room.Room {
	return &room.Room{
		Matrices: []room.Matrix{
			{ID: "MX1", Inputs: 2, Outputs: 2, Driver: room.Driver{Type: room.DriverSimulated}},
			{ID: "MX2", Inputs: 2, Outputs: 2, Driver: room.Driver{Type: room.DriverSimulated}},
		},
		Sources: []room.Source{
			{ID: "CAM1", Matrix: "MX1", Input: 1},
		},
		Destinations: []room.Destination{
			{ID: "PROJ1", Matrix: "MX2", Output: 1},
		},
		TieLines: []room.TieLine{
			{Start: "MX1.OUT.2", End: "MX2.IN.1"},
		},
	}
}

func TestBuild_SingleMatrix(t *testing.T) {
	top := Build(singleMatrixRoom(), nil)

	// 4 inputs + 2 outputs + 1 source + 1 destination.
	if got := top.Graph.VertexCount(); got != 8 {
		t.Errorf("VertexCount() = %d, want 8", got)
	}
	// Crossbar 4x2 = 8 links, plus 2 leaf links; each stored twice.
	if got := top.Graph.EdgeCount(); got != 20 {
		t.Errorf("EdgeCount() = %d, want 20", got)
	}

	path, err := FindPath(top.Graph, "CAM1", "DISP1")
	if err != nil {
		t.Fatalf("FindPath error = %v", err)
	}
	want := []string{"CAM1", "MX1.IN.1", "MX1.OUT.1", "DISP1"}
	if !reflect.DeepEqual(path, want) {
		t.Errorf("FindPath = %v, want %v", path, want)
	}
}

func TestBuild_VertexWiring(t *testing.T) {
	top := Build(singleMatrixRoom(), nil)

	tests := []struct {
		key  string
		want Vertex
	}{
		{"CAM1", Vertex{Key: "CAM1", Kind: KindInput, ParentKey: "MX1.IN.1"}},
		{"MX1.IN.1", Vertex{Key: "MX1.IN.1", Kind: KindMatrix, TargetKey: "CAM1"}},
		{"DISP1", Vertex{Key: "DISP1", Kind: KindOutput, TargetKey: "MX1.OUT.1"}},
		{"MX1.OUT.1", Vertex{Key: "MX1.OUT.1", Kind: KindMatrix, ParentKey: "DISP1"}},
		{"MX1.IN.4", Vertex{Key: "MX1.IN.4", Kind: KindMatrix}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := top.Vertex(tt.key)
			if !ok {
				t.Fatalf("Vertex(%q) not found", tt.key)
			}
			if got != tt.want {
				t.Errorf("Vertex(%q) = %+v, want %+v", tt.key, got, tt.want)
			}
		})
	}

	if _, ok := top.Vertex("MX1.IN.5"); ok {
		t.Error("Vertex(MX1.IN.5) exists beyond port count")
	}
}

func TestBuild_VerticesOrder(t *testing.T) {
	top := Build(singleMatrixRoom(), nil)
	vs := top.Vertices()

	if len(vs) != 8 {
		t.Fatalf("len(Vertices()) = %d, want 8", len(vs))
	}
	if vs[0].Key != "MX1.IN.1" || vs[6].Key != "CAM1" || vs[7].Key != "DISP1" {
		t.Errorf("unexpected order: first=%s src=%s dst=%s", vs[0].Key, vs[6].Key, vs[7].Key)
	}
}

func TestBuild_Cascade(t *testing.T) {
	top := Build(cascadeRoom(), nil)

	path, err := FindPath(top.Graph, "CAM1", "PROJ1")
	if err != nil {
		t.Fatalf("FindPath error = %v", err)
	}
	want := []string{"CAM1", "MX1.IN.1", "MX1.OUT.2", "MX2.IN.1", "MX2.OUT.1", "PROJ1"}
	if !reflect.DeepEqual(path, want) {
		t.Errorf("FindPath = %v, want %v", path, want)
	}
}

func TestBuild_MissingWiringWarns(t *testing.T) {
	r := singleMatrixRoom()
	r.Sources = append(r.Sources,
		room.Source{ID: "GHOST", Matrix: "MX9", Input: 1},
		room.Source{ID: "HIGH", Matrix: "MX1", Input: 99},
	)
	r.Destinations = append(r.Destinations, room.Destination{ID: "NOWHERE", Matrix: "MX1", Output: 7})
	r.TieLines = append(r.TieLines, room.TieLine{Start: "MX1.OUT.2", End: "MX9.IN.1"})

	log := &recordingLogger{}
	top := Build(r, log)

	if got := log.count("WARN"); got != 4 {
		t.Errorf("Build logged %d warnings, want 4", got)
	}

	// Unwired leaves still exist so lookups succeed, but nothing reaches them.
	for _, key := range []string{"GHOST", "HIGH", "NOWHERE"} {
		if _, ok := top.Vertex(key); !ok {
			t.Errorf("Vertex(%q) missing", key)
		}
		edges, err := top.Graph.Neighbors(key)
		if err != nil || len(edges) != 0 {
			t.Errorf("Neighbors(%q) = %v, %v; want empty", key, edges, err)
		}
	}

	path, err := FindPath(top.Graph, "GHOST", "DISP1")
	if err != nil || path != nil {
		t.Errorf("FindPath(GHOST, DISP1) = %v, %v; want nil, nil", path, err)
	}
	if top.Graph.HasVertex("MX9.IN.1") {
		t.Error("missing matrix port must not be created by a tie-line")
	}
}

func TestBuild_LeafKeyCollision(t *testing.T) {
	r := singleMatrixRoom()
	r.Sources = append(r.Sources, room.Source{ID: "MX1.IN.2", Matrix: "MX1", Input: 2})

	log := &recordingLogger{}
	top := Build(r, log)

	if log.count("WARN") != 1 {
		t.Errorf("expected one collision warning, got %d", log.count("WARN"))
	}
	v, _ := top.Vertex("MX1.IN.2")
	if v.Kind != KindMatrix {
		t.Errorf("matrix port overwritten by source: %+v", v)
	}
}

func TestBuild_EmptyRoom(t *testing.T) {
	top := Build(&room.Room{}, nil)
	if top.Graph.VertexCount() != 0 || len(top.Vertices()) != 0 {
		t.Error("empty room should build an empty topology")
	}
}

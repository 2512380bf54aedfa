package room

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const boardroomYAML = `
room:
  id: boardroom
  name: Boardroom
matrices:
  - id: MX1
    label: Main Matrix
    inputs: 4
    outputs: 2
    driver:
      type: mqtt
      address: mx1
  - id: MX2
    inputs: 2
    outputs: 2
sources:
  - {id: CAM1, label: Camera 1, icon: camera, tags: [video], matrix: MX1, input: 1}
  - {id: PC1, label: Lectern PC, matrix: MX1, input: 2, control_id: KVM1}
destinations:
  - {id: DISP1, label: Display 1, icon: display, matrix: MX1, output: 1}
  - {id: PROJ1, label: Projector, matrix: MX2, output: 1}
tie_lines:
  - {start: MX1.OUT.2, end: MX2.IN.1}
presets:
  - id: presentation
    name: Presentation
    steps:
      - {input: PC1, output: PROJ1}
      - {input: PC1, output: DISP1, parallel: true, delay_ms: 250}
      - {input: CAM1, output: DISP1, continue_on_error: true}
`

func TestParse_Boardroom(t *testing.T) {
	r, err := Parse([]byte(boardroomYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if r.Info.ID != "boardroom" {
		t.Errorf("Info.ID = %q, want boardroom", r.Info.ID)
	}
	if len(r.Matrices) != 2 || len(r.Sources) != 2 || len(r.Destinations) != 2 || len(r.TieLines) != 1 {
		t.Fatalf("unexpected counts: %d matrices, %d sources, %d destinations, %d tie-lines",
			len(r.Matrices), len(r.Sources), len(r.Destinations), len(r.TieLines))
	}
	if r.Matrices[0].Driver.Type != DriverMQTT {
		t.Errorf("MX1 driver = %q, want mqtt", r.Matrices[0].Driver.Type)
	}
	if r.Matrices[1].Driver.Type != DriverSimulated {
		t.Errorf("MX2 driver = %q, want simulated default", r.Matrices[1].Driver.Type)
	}
	if r.Sources[1].ControlID != "KVM1" {
		t.Errorf("PC1 ControlID = %q, want KVM1", r.Sources[1].ControlID)
	}
	if got := r.Sources[0].Tags; len(got) != 1 || got[0] != "video" {
		t.Errorf("CAM1 tags = %v, want [video]", got)
	}
}

func TestParse_JSON(t *testing.T) {
	doc := `{
		"room": {"id": "huddle"},
		"matrices": [{"id": "MX1", "inputs": 2, "outputs": 1, "driver": {"type": "simulated"}}],
		"sources": [{"id": "HDMI1", "label": "Table HDMI", "matrix": "MX1", "input": 1}],
		"destinations": [{"id": "TV", "label": "TV", "matrix": "MX1", "output": 1}]
	}`

	r, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := r.Source("HDMI1"); !ok {
		t.Error("Source(HDMI1) not found")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("matrices: [oops")); err == nil {
		t.Error("Parse() expected error for invalid YAML, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		room    Room
		wantErr string
	}{
		{
			name: "valid",
			room: Room{
				Matrices: []Matrix{{ID: "MX1", Inputs: 1, Outputs: 1, Driver: Driver{Type: DriverSimulated}}},
				Sources:  []Source{{ID: "S1", Matrix: "MX1", Input: 1}},
			},
		},
		{
			name: "unknown matrix reference is not an error",
			room: Room{
				Sources: []Source{{ID: "S1", Matrix: "GHOST", Input: 9}},
			},
		},
		{
			name:    "empty matrix id",
			room:    Room{Matrices: []Matrix{{Inputs: 1, Outputs: 1, Driver: Driver{Type: DriverSimulated}}}},
			wantErr: "matrices[0].id is required",
		},
		{
			name: "duplicate matrix",
			room: Room{Matrices: []Matrix{
				{ID: "MX1", Inputs: 1, Outputs: 1, Driver: Driver{Type: DriverSimulated}},
				{ID: "MX1", Inputs: 1, Outputs: 1, Driver: Driver{Type: DriverSimulated}},
			}},
			wantErr: "declared more than once",
		},
		{
			name:    "zero inputs",
			room:    Room{Matrices: []Matrix{{ID: "MX1", Outputs: 1, Driver: Driver{Type: DriverSimulated}}}},
			wantErr: "at least one input",
		},
		{
			name:    "zero outputs",
			room:    Room{Matrices: []Matrix{{ID: "MX1", Inputs: 1, Driver: Driver{Type: DriverSimulated}}}},
			wantErr: "at least one output",
		},
		{
			name:    "unknown driver",
			room:    Room{Matrices: []Matrix{{ID: "MX1", Inputs: 1, Outputs: 1, Driver: Driver{Type: "serial"}}}},
			wantErr: "unknown driver type",
		},
		{
			name:    "empty source id",
			room:    Room{Sources: []Source{{Matrix: "MX1", Input: 1}}},
			wantErr: "sources[0].id is required",
		},
		{
			name:    "empty destination id",
			room:    Room{Destinations: []Destination{{Matrix: "MX1", Output: 1}}},
			wantErr: "destinations[0].id is required",
		},
		{
			name: "source and destination share id",
			room: Room{
				Sources:      []Source{{ID: "X", Matrix: "MX1", Input: 1}},
				Destinations: []Destination{{ID: "X", Matrix: "MX1", Output: 1}},
			},
			wantErr: "duplicates a source id",
		},
		{
			name:    "half tie-line",
			room:    Room{TieLines: []TieLine{{Start: "MX1.OUT.1"}}},
			wantErr: "needs both start and end",
		},
		{
			name: "preset with unknown source is not an error",
			room: Room{Presets: []Preset{{ID: "p", Steps: []PresetStep{{Input: "GHOST", Output: "X"}}}}},
		},
		{
			name:    "empty preset id",
			room:    Room{Presets: []Preset{{Steps: []PresetStep{{Input: "A", Output: "B"}}}}},
			wantErr: "presets[0].id is required",
		},
		{
			name: "duplicate preset",
			room: Room{Presets: []Preset{
				{ID: "p", Steps: []PresetStep{{Input: "A", Output: "B"}}},
				{ID: "p", Steps: []PresetStep{{Input: "A", Output: "B"}}},
			}},
			wantErr: "preset \"p\" is declared more than once",
		},
		{
			name:    "preset without steps",
			room:    Room{Presets: []Preset{{ID: "p"}}},
			wantErr: "has no steps",
		},
		{
			name:    "half step",
			room:    Room{Presets: []Preset{{ID: "p", Steps: []PresetStep{{Input: "A"}}}}},
			wantErr: "needs both input and output",
		},
		{
			name:    "delay out of range",
			room:    Room{Presets: []Preset{{ID: "p", Steps: []PresetStep{{Input: "A", Output: "B", DelayMS: MaxPresetDelayMS + 1}}}}},
			wantErr: "delay_ms must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.room.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidRoom) {
				t.Fatalf("Validate() error = %v, want ErrInvalidRoom", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.yaml")
	if err := os.WriteFile(path, []byte(boardroomYAML), 0600); err != nil {
		t.Fatalf("failed to write room file: %v", err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if r.Info.Name != "Boardroom" {
		t.Errorf("Info.Name = %q, want Boardroom", r.Info.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/room.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLookups(t *testing.T) {
	r, err := Parse([]byte(boardroomYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if s, ok := r.Source("CAM1"); !ok || s.Input != 1 {
		t.Errorf("Source(CAM1) = %+v, %v", s, ok)
	}
	if _, ok := r.Source("cam1"); ok {
		t.Error("Source lookup must be case-sensitive")
	}
	if d, ok := r.Destination("PROJ1"); !ok || d.Matrix != "MX2" {
		t.Errorf("Destination(PROJ1) = %+v, %v", d, ok)
	}
	if _, ok := r.Destination("NOPE"); ok {
		t.Error("Destination(NOPE) found, want miss")
	}
	if m, ok := r.Matrix("MX1"); !ok || m.Inputs != 4 {
		t.Errorf("Matrix(MX1) = %+v, %v", m, ok)
	}
	if _, ok := r.Matrix("MX9"); ok {
		t.Error("Matrix(MX9) found, want miss")
	}
	if ds := r.DestinationsAt("MX1", 1); len(ds) != 1 || ds[0].ID != "DISP1" {
		t.Errorf("DestinationsAt(MX1, 1) = %+v", ds)
	}
	if ds := r.DestinationsAt("MX1", 2); len(ds) != 0 {
		t.Errorf("DestinationsAt(MX1, 2) = %+v, want none (tie-line output)", ds)
	}
	if s, ok := r.SourceAt("MX1", 2); !ok || s.ID != "PC1" {
		t.Errorf("SourceAt(MX1, 2) = %+v, %v", s, ok)
	}
	if _, ok := r.SourceAt("MX2", 1); ok {
		t.Error("SourceAt(MX2, 1) found, want miss (tie-line input)")
	}
}

func TestParse_Presets(t *testing.T) {
	r, err := Parse([]byte(boardroomYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	p, ok := r.Preset("presentation")
	if !ok {
		t.Fatal("Preset(presentation) not found")
	}
	if p.Name != "Presentation" || p.Disabled || len(p.Steps) != 3 {
		t.Fatalf("preset = %+v", p)
	}
	if st := p.Steps[1]; !st.Parallel || st.DelayMS != 250 || st.Output != "DISP1" {
		t.Errorf("step 1 = %+v", st)
	}
	if !p.Steps[2].ContinueOnError {
		t.Error("step 2 should continue on error")
	}
	if _, ok := r.Preset("missing"); ok {
		t.Error("Preset(missing) found, want miss")
	}
}

func TestLoad_ShippedRoom(t *testing.T) {
	r, err := Load(filepath.Join("..", "..", "configs", "room.yaml"))
	if err != nil {
		t.Fatalf("Load(configs/room.yaml) error = %v", err)
	}
	if len(r.Matrices) == 0 || len(r.Sources) == 0 || len(r.Destinations) == 0 {
		t.Errorf("shipped room is empty: %+v", r)
	}
}

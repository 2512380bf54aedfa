package room

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a room file.
//
// Parameters:
//   - path: Path to a YAML or JSON room file
//
// Returns:
//   - *Room: Parsed and validated room
//   - error: If the file cannot be read, parsed, or fails validation
func Load(path string) (*Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading room file: %w", err)
	}

	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading room file %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a room document held in memory.
func Parse(data []byte) (*Room, error) {
	r := &Room{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing room: %w", err)
	}

	for i := range r.Matrices {
		if r.Matrices[i].Driver.Type == "" {
			r.Matrices[i].Driver.Type = DriverSimulated
		}
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the room for structural errors.
//
// Wiring references (a source naming an unknown matrix, a port beyond the
// matrix port count, a tie-line to a missing port) are not errors here.
// They are reported as warnings when the topology is built.
//
// Returns:
//   - error: Wrapping ErrInvalidRoom with every problem found, or nil
func (r *Room) Validate() error {
	var errs []string

	matrixIDs := make(map[string]struct{}, len(r.Matrices))
	for i, m := range r.Matrices {
		if m.ID == "" {
			errs = append(errs, fmt.Sprintf("matrices[%d].id is required", i))
			continue
		}
		if _, dup := matrixIDs[m.ID]; dup {
			errs = append(errs, fmt.Sprintf("matrix %q is declared more than once", m.ID))
		}
		matrixIDs[m.ID] = struct{}{}

		if m.Inputs < 1 {
			errs = append(errs, fmt.Sprintf("matrix %q must have at least one input", m.ID))
		}
		if m.Outputs < 1 {
			errs = append(errs, fmt.Sprintf("matrix %q must have at least one output", m.ID))
		}
		if !ValidDriverType(m.Driver.Type) {
			errs = append(errs, fmt.Sprintf("matrix %q has unknown driver type %q", m.ID, m.Driver.Type))
		}
	}

	// Sources and destinations share the vertex key space in the topology
	// graph, so an ID may only be used once across both lists.
	leafIDs := make(map[string]string, len(r.Sources)+len(r.Destinations))
	for i, s := range r.Sources {
		if s.ID == "" {
			errs = append(errs, fmt.Sprintf("sources[%d].id is required", i))
			continue
		}
		if kind, dup := leafIDs[s.ID]; dup {
			errs = append(errs, fmt.Sprintf("source %q duplicates a %s id", s.ID, kind))
		}
		leafIDs[s.ID] = "source"
	}
	for i, d := range r.Destinations {
		if d.ID == "" {
			errs = append(errs, fmt.Sprintf("destinations[%d].id is required", i))
			continue
		}
		if kind, dup := leafIDs[d.ID]; dup {
			errs = append(errs, fmt.Sprintf("destination %q duplicates a %s id", d.ID, kind))
		}
		leafIDs[d.ID] = "destination"
	}

	for i, t := range r.TieLines {
		if t.Start == "" || t.End == "" {
			errs = append(errs, fmt.Sprintf("tie_lines[%d] needs both start and end", i))
		}
	}

	errs = append(errs, r.validatePresets()...)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRoom, strings.Join(errs, "; "))
	}
	return nil
}

// MaxPresetDelayMS caps the per-step delay of a preset.
const MaxPresetDelayMS = 300000

func (r *Room) validatePresets() []string {
	var errs []string
	ids := make(map[string]struct{}, len(r.Presets))
	for i, p := range r.Presets {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("presets[%d].id is required", i))
			continue
		}
		if _, dup := ids[p.ID]; dup {
			errs = append(errs, fmt.Sprintf("preset %q is declared more than once", p.ID))
		}
		ids[p.ID] = struct{}{}

		if len(p.Steps) == 0 {
			errs = append(errs, fmt.Sprintf("preset %q has no steps", p.ID))
		}
		for j, st := range p.Steps {
			if st.Input == "" || st.Output == "" {
				errs = append(errs, fmt.Sprintf("preset %q step %d needs both input and output", p.ID, j))
			}
			if st.DelayMS < 0 || st.DelayMS > MaxPresetDelayMS {
				errs = append(errs, fmt.Sprintf("preset %q step %d delay_ms must be 0-%d", p.ID, j, MaxPresetDelayMS))
			}
		}
	}
	return errs
}

// Source returns the source with the given ID.
func (r *Room) Source(id string) (Source, bool) {
	for _, s := range r.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}

// Destination returns the destination with the given ID.
func (r *Room) Destination(id string) (Destination, bool) {
	for _, d := range r.Destinations {
		if d.ID == id {
			return d, true
		}
	}
	return Destination{}, false
}

// Preset returns the preset with the given ID.
func (r *Room) Preset(id string) (Preset, bool) {
	for _, p := range r.Presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// Matrix returns the matrix with the given ID.
func (r *Room) Matrix(id string) (Matrix, bool) {
	for _, m := range r.Matrices {
		if m.ID == id {
			return m, true
		}
	}
	return Matrix{}, false
}

// DestinationsAt returns every destination wired to output n of the matrix,
// in file order. A distribution amplifier can put several on one port.
func (r *Room) DestinationsAt(matrixID string, output int) []Destination {
	var found []Destination
	for _, d := range r.Destinations {
		if d.Matrix == matrixID && d.Output == output {
			found = append(found, d)
		}
	}
	return found
}

// SourceAt returns the source wired to input n of the matrix.
func (r *Room) SourceAt(matrixID string, input int) (Source, bool) {
	for _, s := range r.Sources {
		if s.Matrix == matrixID && s.Input == input {
			return s, true
		}
	}
	return Source{}, false
}

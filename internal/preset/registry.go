package preset

import (
	"sync"

	"github.com/nerrad567/gray-logic-av/internal/room"
)

// Logger defines the logging interface used by the Registry and Engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry holds the room's presets in declaration order.
//
// Presets come from the room file and never change at runtime except for
// their enabled flag.
type Registry struct {
	presets map[string]*room.Preset
	order   []string
	mu      sync.RWMutex
}

// NewRegistry loads the presets declared in r. Steps that reference
// unknown sources or destinations are logged as warnings.
func NewRegistry(r *room.Room, logger Logger) *Registry {
	if logger == nil {
		logger = noopLogger{}
	}

	reg := &Registry{
		presets: make(map[string]*room.Preset, len(r.Presets)),
		order:   make([]string, 0, len(r.Presets)),
	}
	for _, p := range r.Presets {
		for _, problem := range CheckReferences(p, r) {
			logger.Warn("preset step will fail", "preset", p.ID, "problem", problem)
		}
		reg.presets[p.ID] = copyPreset(p)
		reg.order = append(reg.order, p.ID)
	}

	logger.Info("presets loaded", "count", len(reg.order))
	return reg
}

// Get returns a copy of the preset with the given ID.
func (r *Registry) Get(id string) (room.Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.presets[id]
	if !ok {
		return room.Preset{}, ErrPresetNotFound
	}
	return *copyPreset(*p), nil
}

// List returns copies of every preset in room-file order.
func (r *Registry) List() []room.Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]room.Preset, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *copyPreset(*r.presets[id]))
	}
	return out
}

// SetEnabled enables or disables a preset.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.presets[id]
	if !ok {
		return ErrPresetNotFound
	}
	p.Disabled = !enabled
	return nil
}

// Count returns the number of presets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func copyPreset(p room.Preset) *room.Preset {
	cpy := p
	cpy.Steps = make([]room.PresetStep, len(p.Steps))
	copy(cpy.Steps, p.Steps)
	return &cpy
}

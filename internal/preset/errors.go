package preset

import "errors"

// Domain errors for the preset package.
var (
	// ErrPresetNotFound is returned when a preset ID does not exist.
	ErrPresetNotFound = errors.New("preset: not found")

	// ErrPresetDisabled is returned when recalling a disabled preset.
	ErrPresetDisabled = errors.New("preset: disabled")

	// ErrMissingDependency is returned by NewEngine when a required
	// collaborator is nil.
	ErrMissingDependency = errors.New("preset: missing dependency")
)

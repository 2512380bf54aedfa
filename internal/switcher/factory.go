package switcher

import (
	"fmt"

	"github.com/nerrad567/gray-logic-av/internal/room"
)

// Deps carries what drivers may need from the process.
type Deps struct {
	// Bus is required by MQTT-bridged matrices unless DevMode is set.
	Bus Bus

	// Logger receives driver logs. Optional.
	Logger Logger

	// DevMode replaces every driver with a Simulated switcher.
	DevMode bool
}

// New builds the driver m.Driver.Type asks for.
//
// Parameters:
//   - m: matrix from the room inventory
//   - deps: shared dependencies
//
// Returns:
//   - Driver: switcher ready for Start
//   - error: ErrUnknownDriver, or a construction error from the driver
func New(m room.Matrix, deps Deps) (Driver, error) {
	if deps.DevMode {
		return NewSimulated(m), nil
	}

	switch m.Driver.Type {
	case room.DriverSimulated, "":
		return NewSimulated(m), nil
	case room.DriverMQTT:
		d, err := NewMQTT(m, deps.Bus, deps.Logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	case room.DriverQuartz:
		d, err := NewQuartz(m, deps.Logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: %q for matrix %s", ErrUnknownDriver, m.Driver.Type, m.ID)
	}
}

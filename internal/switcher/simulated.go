package switcher

import (
	"context"

	"github.com/nerrad567/gray-logic-av/internal/room"
)

// Simulated is an in-memory matrix switcher.
//
// With echo enabled (the default) a routed crosspoint is reported back
// through the event handler straight away, as real hardware confirms a
// take. SimulateRoute changes a crosspoint as if from the device's front
// panel.
type Simulated struct {
	*crossbar
	echo bool
}

// NewSimulated creates a simulated switcher sized from m.
// It starts offline; Start brings it online.
func NewSimulated(m room.Matrix) *Simulated {
	return &Simulated{
		crossbar: newCrossbar(m.ID, m.Inputs, m.Outputs),
		echo:     true,
	}
}

// SetEcho controls whether RouteInput reports feedback.
func (s *Simulated) SetEcho(echo bool) {
	s.mu.Lock()
	s.echo = echo
	s.mu.Unlock()
}

// Start brings the simulated device online.
func (s *Simulated) Start(_ context.Context) error {
	s.setOnline(true)
	return nil
}

// Stop takes the simulated device offline.
func (s *Simulated) Stop() error {
	s.setOnline(false)
	return nil
}

// RouteInput connects input to output.
func (s *Simulated) RouteInput(ctx context.Context, input, output int) error {
	if err := s.checkRoute(ctx, input, output); err != nil {
		return err
	}

	s.mu.RLock()
	echo := s.echo
	s.mu.RUnlock()

	if echo {
		s.setRoute(input, output)
		return nil
	}

	s.mu.Lock()
	s.routes[output] = input
	s.mu.Unlock()
	return nil
}

// SetLocked locks or unlocks output.
func (s *Simulated) SetLocked(ctx context.Context, output int, locked bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.checkOutput(output); err != nil {
		return err
	}
	s.setLocked(output, locked)
	return nil
}

// SimulateRoute changes a crosspoint without a command, as a front panel
// take would, and reports it.
func (s *Simulated) SimulateRoute(input, output int) error {
	if err := s.checkInput(input); err != nil {
		return err
	}
	if err := s.checkOutput(output); err != nil {
		return err
	}
	s.setRoute(input, output)
	return nil
}

// SimulateClear drops output's crosspoint and reports it.
func (s *Simulated) SimulateClear(output int) {
	s.clearRoute(output)
}

// SetOnline forces the connection state and reports a transition.
func (s *Simulated) SetOnline(online bool) {
	s.setOnline(online)
}

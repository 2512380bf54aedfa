package switcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-av/internal/routing"
)

// Driver is a routing.Switcher with a connection lifecycle.
type Driver interface {
	routing.Switcher

	// Start connects to the device and begins processing feedback.
	Start(ctx context.Context) error

	// Stop disconnects. It is safe to call more than once.
	Stop() error
}

// Logger defines the logging interface used by drivers.
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

// crossbar is the state every driver shares: size, online flag, route
// table, locks and the feedback handler.
//
// Handlers are always called with mu released so a handler may call back
// into CurrentSource.
type crossbar struct {
	id      string
	inputs  int
	outputs int

	mu      sync.RWMutex
	online  bool
	routes  map[int]int
	locks   map[int]bool
	handler routing.EventHandler
}

func newCrossbar(id string, inputs, outputs int) *crossbar {
	return &crossbar{
		id:      id,
		inputs:  inputs,
		outputs: outputs,
		routes:  make(map[int]int),
		locks:   make(map[int]bool),
	}
}

// ID returns the matrix ID.
func (c *crossbar) ID() string { return c.id }

// IsOnline reports the last known connection state.
func (c *crossbar) IsOnline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

// CurrentSource returns the input last reported on output.
func (c *crossbar) CurrentSource(output int) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	in, ok := c.routes[output]
	return in, ok
}

// SetEventHandler registers the receiver of feedback events.
func (c *crossbar) SetEventHandler(h routing.EventHandler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// Locked reports whether output is locked on the device.
func (c *crossbar) Locked(output int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locks[output]
}

func (c *crossbar) checkInput(input int) error {
	if input < 1 || input > c.inputs {
		return fmt.Errorf("%w: input %d not in 1..%d on %s", ErrPortOutOfRange, input, c.inputs, c.id)
	}
	return nil
}

func (c *crossbar) checkOutput(output int) error {
	if output < 1 || output > c.outputs {
		return fmt.Errorf("%w: output %d not in 1..%d on %s", ErrPortOutOfRange, output, c.outputs, c.id)
	}
	return nil
}

// checkRoute validates a route command before it reaches the device.
func (c *crossbar) checkRoute(ctx context.Context, input, output int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.checkInput(input); err != nil {
		return err
	}
	if err := c.checkOutput(output); err != nil {
		return err
	}

	c.mu.RLock()
	online, locked := c.online, c.locks[output]
	c.mu.RUnlock()

	if !online {
		return fmt.Errorf("%w: %s", ErrOffline, c.id)
	}
	if locked {
		return fmt.Errorf("%w: %s output %d", ErrLocked, c.id, output)
	}
	return nil
}

// setRoute records that output carries input and reports the change.
// It returns false when the table already held that crosspoint.
func (c *crossbar) setRoute(input, output int) bool {
	c.mu.Lock()
	if cur, ok := c.routes[output]; ok && cur == input {
		c.mu.Unlock()
		return false
	}
	c.routes[output] = input
	h := c.handler
	c.mu.Unlock()

	if h != nil {
		h.RouteChanged(c.id, output)
	}
	return true
}

// clearRoute forgets output's source and reports the change.
func (c *crossbar) clearRoute(output int) {
	c.mu.Lock()
	if _, ok := c.routes[output]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.routes, output)
	h := c.handler
	c.mu.Unlock()

	if h != nil {
		h.RouteChanged(c.id, output)
	}
}

func (c *crossbar) setLocked(output int, locked bool) {
	c.mu.Lock()
	if locked {
		c.locks[output] = true
	} else {
		delete(c.locks, output)
	}
	c.mu.Unlock()
}

// setOnline updates the online flag and reports a transition.
func (c *crossbar) setOnline(online bool) {
	c.mu.Lock()
	if c.online == online {
		c.mu.Unlock()
		return
	}
	c.online = online
	h := c.handler
	c.mu.Unlock()

	if h != nil {
		h.OnlineChanged(c.id, online)
	}
}

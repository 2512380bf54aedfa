package routing

import (
	"context"
	"time"
)

// Switcher is a matrix switcher the dispatcher can command.
//
// Implementations live in the switcher package. ID must equal the matrix
// ID in the room inventory. Ports are 1-based.
type Switcher interface {
	ID() string
	IsOnline() bool

	// RouteInput connects input to output. It returns once the command has
	// been handed to the device; confirmation arrives later as feedback.
	RouteInput(ctx context.Context, input, output int) error

	// CurrentSource returns the input last reported on output.
	// It must not block on I/O.
	CurrentSource(output int) (int, bool)

	// SetEventHandler registers the receiver of feedback events.
	SetEventHandler(h EventHandler)
}

// EventHandler receives unsolicited reports from switchers.
// Calls may arrive on any goroutine.
type EventHandler interface {
	// RouteChanged reports that output on deviceID now carries a different input.
	RouteChanged(deviceID string, output int)

	// OnlineChanged reports a connection state change.
	OnlineChanged(deviceID string, online bool)
}

// Locker is implemented by switchers that can lock a destination so it
// ignores route commands.
type Locker interface {
	SetLocked(ctx context.Context, output int, locked bool) error
}

// Listener receives outward notifications from the dispatcher.
//
// Methods are called synchronously, in registration order, with no
// dispatcher lock held. Slow listeners delay the caller of MakeRoute, so
// implementations that do I/O should hand off to their own goroutine or
// use a non-blocking client.
type Listener interface {
	RouteChanged(ev RouteEvent)
	RouterConnectivityChanged(ev ConnectivityEvent)
}

// Recorder receives metrics. The metrics package provides the Prometheus
// implementation.
type Recorder interface {
	RecordRoute(status string, duration time.Duration)
	RecordHardwareCommand(router string, err error)
	RecordFeedback(result string)
	SetRouterOnline(router string, online bool)
}

// Logger defines the logging interface used by the Dispatcher.
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

type noopRecorder struct{}

func (noopRecorder) RecordRoute(string, time.Duration)   {}
func (noopRecorder) RecordHardwareCommand(string, error) {}
func (noopRecorder) RecordFeedback(string)               {}
func (noopRecorder) SetRouterOnline(string, bool)        {}

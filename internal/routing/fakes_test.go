package routing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-av/internal/room"
	"github.com/nerrad567/gray-logic-av/internal/topology"
)

// fakeSwitcher is an in-memory Switcher that records every command.
type fakeSwitcher struct {
	id string

	mu       sync.Mutex
	online   bool
	routes   map[int]int
	commands []Command
	failNext error
	handler  EventHandler

	// echo makes RouteInput report feedback synchronously, like a
	// driver that confirms commands from inside the call.
	echo bool

	// afterRoute runs at the end of every successful RouteInput.
	afterRoute func(Command)
}

func newFakeSwitcher(id string) *fakeSwitcher {
	return &fakeSwitcher{id: id, online: true, routes: make(map[int]int)}
}

func (f *fakeSwitcher) ID() string { return f.id }

func (f *fakeSwitcher) IsOnline() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online
}

func (f *fakeSwitcher) RouteInput(_ context.Context, input, output int) error {
	f.mu.Lock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		f.mu.Unlock()
		return err
	}
	f.commands = append(f.commands, Command{Router: f.id, Input: input, Output: output})
	f.routes[output] = input
	h, echo, after := f.handler, f.echo, f.afterRoute
	f.mu.Unlock()

	if echo && h != nil {
		h.RouteChanged(f.id, output)
	}
	if after != nil {
		after(Command{Router: f.id, Input: input, Output: output})
	}
	return nil
}

func (f *fakeSwitcher) CurrentSource(output int) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.routes[output]
	return in, ok
}

func (f *fakeSwitcher) SetEventHandler(h EventHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

// simulate changes a crosspoint as if from the front panel and reports it.
func (f *fakeSwitcher) simulate(input, output int) {
	f.mu.Lock()
	f.routes[output] = input
	h := f.handler
	f.mu.Unlock()
	h.RouteChanged(f.id, output)
}

func (f *fakeSwitcher) clear(output int) {
	f.mu.Lock()
	delete(f.routes, output)
	h := f.handler
	f.mu.Unlock()
	h.RouteChanged(f.id, output)
}

func (f *fakeSwitcher) setOnline(online bool) {
	f.mu.Lock()
	f.online = online
	h := f.handler
	f.mu.Unlock()
	h.OnlineChanged(f.id, online)
}

func (f *fakeSwitcher) issued() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command(nil), f.commands...)
}

func (f *fakeSwitcher) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = err
}

// lockingSwitcher adds the Locker capability.
type lockingSwitcher struct {
	*fakeSwitcher
	locked map[int]bool
	err    error
}

func (l *lockingSwitcher) SetLocked(_ context.Context, output int, locked bool) error {
	if l.err != nil {
		return l.err
	}
	l.locked[output] = locked
	return nil
}

// recordingListener captures dispatcher notifications.
type recordingListener struct {
	mu     sync.Mutex
	routes []RouteEvent
	conns  []ConnectivityEvent
}

func (l *recordingListener) RouteChanged(ev RouteEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.routes = append(l.routes, ev)
}

func (l *recordingListener) RouterConnectivityChanged(ev ConnectivityEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conns = append(l.conns, ev)
}

func (l *recordingListener) routeEvents() []RouteEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]RouteEvent(nil), l.routes...)
}

func (l *recordingListener) connEvents() []ConnectivityEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ConnectivityEvent(nil), l.conns...)
}

// panickingListener panics on every call.
type panickingListener struct{}

func (panickingListener) RouteChanged(RouteEvent)                   { panic("boom") }
func (panickingListener) RouterConnectivityChanged(ConnectivityEvent) { panic("boom") }

// fakeRecorder captures metric calls.
type fakeRecorder struct {
	mu       sync.Mutex
	routes   []string
	commands map[string]int
	feedback []string
	online   map[string]bool
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{commands: make(map[string]int), online: make(map[string]bool)}
}

func (r *fakeRecorder) RecordRoute(status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, status)
}

func (r *fakeRecorder) RecordHardwareCommand(router string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.commands[router+"/"+status]++
}

func (r *fakeRecorder) RecordFeedback(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedback = append(r.feedback, result)
}

func (r *fakeRecorder) SetRouterOnline(router string, online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online[router] = online
}

// countingLogger counts error-level entries.
type countingLogger struct {
	mu     sync.Mutex
	errors int
	warns  int
}

func (l *countingLogger) Debug(string, ...any) {}
func (l *countingLogger) Info(string, ...any)  {}
func (l *countingLogger) Warn(string, ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns++
}
func (l *countingLogger) Error(string, ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors++
}

func (l *countingLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errors
}

var errHardware = errors.New("serial port closed")

// fixture bundles a dispatcher with its fakes.
type fixture struct {
	room      *room.Room
	dispatch  *Dispatcher
	switchers map[string]*fakeSwitcher
	listener  *recordingListener
	recorder  *fakeRecorder
	logger    *countingLogger
}

func newFixture(t testing.TB, r *room.Room) *fixture {
	t.Helper()

	fakes := make(map[string]*fakeSwitcher)
	switchers := make(map[string]Switcher)
	for _, m := range r.Matrices {
		f := newFakeSwitcher(m.ID)
		fakes[m.ID] = f
		switchers[m.ID] = f
	}

	fx := &fixture{
		room:      r,
		switchers: fakes,
		listener:  &recordingListener{},
		recorder:  newFakeRecorder(),
		logger:    &countingLogger{},
	}

	d, err := New(Options{
		Room:      r,
		Topology:  topology.Build(r, nil),
		Switchers: switchers,
		Logger:    fx.logger,
		Recorder:  fx.recorder,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d.AddListener(fx.listener)
	fx.dispatch = d
	return fx
}

func matrix(id string, inputs, outputs int) room.Matrix {
	return room.Matrix{ID: id, Inputs: inputs, Outputs: outputs, Driver: room.Driver{Type: room.DriverSimulated}}
}

// scenarioRoom is one 4x2 matrix with CAM1 on input 1 and DISP1 on output 1.
func scenarioRoom() *room.Room {
	return &room.Room{
		Matrices:     []room.Matrix{matrix("MX1", 4, 2)},
		Sources:      []room.Source{{ID: "CAM1", Label: "Camera 1", Matrix: "MX1", Input: 1}},
		Destinations: []room.Destination{{ID: "DISP1", Label: "Display 1", Matrix: "MX1", Output: 1}},
	}
}

// cascadeRoom has MX1 output 2 tie-lined into MX2 input 1.
//
//	CAM1 -> MX1.IN.1        MX1.OUT.1 -> DISP1
//	PC1  -> MX1.IN.2        MX1.OUT.2 => MX2.IN.1
//	DOC  -> MX2.IN.2        MX2.OUT.1 -> PROJ1
//	                        MX2.OUT.2 -> REC1
func cascadeRoom() *room.Room {
	return &room.Room{
		Matrices: []room.Matrix{matrix("MX1", 2, 2), matrix("MX2", 2, 2)},
		Sources: []room.Source{
			{ID: "CAM1", Matrix: "MX1", Input: 1},
			{ID: "PC1", Matrix: "MX1", Input: 2},
			{ID: "DOC", Matrix: "MX2", Input: 2},
		},
		Destinations: []room.Destination{
			{ID: "DISP1", Matrix: "MX1", Output: 1},
			{ID: "PROJ1", Matrix: "MX2", Output: 1},
			{ID: "REC1", Matrix: "MX2", Output: 2},
		},
		TieLines: []room.TieLine{{Start: "MX1.OUT.2", End: "MX2.IN.1"}},
	}
}

package routing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-av/internal/room"
	"github.com/nerrad567/gray-logic-av/internal/topology"
)

// Options configures a Dispatcher.
type Options struct {
	// Room is the equipment inventory. Required.
	Room *room.Room

	// Topology is the graph built from Room. Required.
	Topology *topology.Topology

	// Switchers maps matrix ID to its driver. Required; may be empty.
	Switchers map[string]Switcher

	// Logger receives routing logs. Optional.
	Logger Logger

	// Recorder receives metrics. Optional.
	Recorder Recorder
}

// Dispatcher executes route requests and tracks the current source of
// every destination.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - routeMu serialises route execution and lock changes; mu guards
//     routes, chains and locks and is never held across hardware calls or
//     listener calls.
type Dispatcher struct {
	room      *room.Room
	topology  *topology.Topology
	switchers map[string]Switcher
	logger    Logger
	recorder  Recorder

	// tieUp maps a matrix input key to the output key feeding it over a
	// tie-line; tieDown is the reverse.
	tieUp   map[string]string
	tieDown map[string]string

	routeMu sync.Mutex

	mu     sync.RWMutex
	routes map[string]room.Source
	chains map[string][]string
	locks  map[string]bool

	// inflight is the destination MakeRoute is switching. Feedback for it
	// updates the cache without an event; held records that it did.
	inflight string
	held     bool

	listenerMu sync.RWMutex
	listeners  []Listener
}

// New creates a Dispatcher and registers it as the event handler of every
// switcher.
//
// Returns:
//   - *Dispatcher: Ready dispatcher with every destination at NoRoute
//   - error: ErrMissingDependency if Room, Topology or Switchers is nil
func New(opts Options) (*Dispatcher, error) {
	if opts.Room == nil {
		return nil, fmt.Errorf("%w: room", ErrMissingDependency)
	}
	if opts.Topology == nil {
		return nil, fmt.Errorf("%w: topology", ErrMissingDependency)
	}
	if opts.Switchers == nil {
		return nil, fmt.Errorf("%w: switchers", ErrMissingDependency)
	}

	d := &Dispatcher{
		room:      opts.Room,
		topology:  opts.Topology,
		switchers: make(map[string]Switcher, len(opts.Switchers)),
		logger:    opts.Logger,
		recorder:  opts.Recorder,
		tieUp:     make(map[string]string),
		tieDown:   make(map[string]string),
		routes:    make(map[string]room.Source, len(opts.Room.Destinations)),
		chains:    make(map[string][]string),
		locks:     make(map[string]bool),
	}
	if d.logger == nil {
		d.logger = noopLogger{}
	}
	if d.recorder == nil {
		d.recorder = noopRecorder{}
	}

	for id, sw := range opts.Switchers {
		if sw == nil {
			return nil, fmt.Errorf("%w: switcher %q is nil", ErrMissingDependency, id)
		}
		d.switchers[id] = sw
	}

	for _, m := range d.room.Matrices {
		if _, ok := d.switchers[m.ID]; !ok {
			d.logger.Warn("no switcher for matrix, routes through it will fail", "matrix", m.ID)
		}
	}

	for _, dst := range d.room.Destinations {
		d.routes[dst.ID] = NoRoute
	}

	d.indexTieLines()

	for _, sw := range d.switchers {
		sw.SetEventHandler(d)
		d.recorder.SetRouterOnline(sw.ID(), sw.IsOnline())
	}

	return d, nil
}

// indexTieLines records which matrix output feeds which matrix input.
// Tie-lines may be declared in either direction.
func (d *Dispatcher) indexTieLines() {
	for _, tl := range d.room.TieLines {
		a, errA := topology.ParsePortKey(tl.Start)
		b, errB := topology.ParsePortKey(tl.End)
		if errA != nil || errB != nil {
			continue
		}
		switch {
		case a.Direction == topology.DirectionOut && b.Direction == topology.DirectionIn:
			d.tieUp[tl.End] = tl.Start
			d.tieDown[tl.Start] = tl.End
		case a.Direction == topology.DirectionIn && b.Direction == topology.DirectionOut:
			d.tieUp[tl.Start] = tl.End
			d.tieDown[tl.End] = tl.Start
		}
	}
}

// AddListener registers l for route and connectivity notifications.
func (d *Dispatcher) AddListener(l Listener) {
	d.listenerMu.Lock()
	defer d.listenerMu.Unlock()
	d.listeners = append(d.listeners, l)
}

// MakeRoute routes the source inputID to the destination outputID.
//
// The shortest path is resolved and one command is sent per matrix hop.
// On success the route cache and active chain are updated and listeners
// receive a RouteEvent with OriginCommand. Repeating a route re-sends
// every command.
//
// Parameters:
//   - ctx: Checked once before the first hardware command. A route that
//     has started is always driven to completion.
//   - inputID: Source ID (case-sensitive)
//   - outputID: Destination ID (case-sensitive)
//
// Returns:
//   - error: nil on success, or one of ErrSourceNotFound, ErrDestinationNotFound,
//     ErrDestinationLocked, ErrNoPath (no hardware touched), ErrMalformedPath,
//     ErrCommandFailed (earlier hops stay switched)
func (d *Dispatcher) MakeRoute(ctx context.Context, inputID, outputID string) error {
	start := time.Now()
	err := d.makeRoute(ctx, inputID, outputID)
	d.recorder.RecordRoute(StatusOf(err), time.Since(start))
	return err
}

func (d *Dispatcher) makeRoute(ctx context.Context, inputID, outputID string) error {
	src, ok := d.room.Source(inputID)
	if !ok || !d.isKind(inputID, topology.KindInput) {
		d.logger.Error("route failed: unknown source", "source", inputID, "destination", outputID)
		return fmt.Errorf("%w: %q", ErrSourceNotFound, inputID)
	}
	if _, ok := d.room.Destination(outputID); !ok || !d.isKind(outputID, topology.KindOutput) {
		d.logger.Error("route failed: unknown destination", "source", inputID, "destination", outputID)
		return fmt.Errorf("%w: %q", ErrDestinationNotFound, outputID)
	}

	d.routeMu.Lock()
	defer d.routeMu.Unlock()

	if d.Locked(outputID) {
		d.logger.Warn("route refused: destination locked", "source", inputID, "destination", outputID)
		return fmt.Errorf("%w: %q", ErrDestinationLocked, outputID)
	}

	path, err := topology.FindPath(d.topology.Graph, inputID, outputID)
	if err != nil {
		d.logger.Error("route failed: path search", "source", inputID, "destination", outputID, "error", err)
		return fmt.Errorf("%w: %w", ErrNoPath, err)
	}
	if len(path) == 0 {
		d.logger.Error("route failed: no path", "source", inputID, "destination", outputID)
		return fmt.Errorf("%w: %s to %s", ErrNoPath, inputID, outputID)
	}

	cmds, planErr := planCommands(path, d.kindOf)
	if planErr != nil {
		d.logger.Error("malformed path, issuing only the hops before it",
			"source", inputID, "destination", outputID, "path", path, "error", planErr)
	}

	if err := ctx.Err(); err != nil {
		d.logger.Warn("route abandoned before first command", "source", inputID, "destination", outputID, "error", err)
		return fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}
	hwCtx := context.WithoutCancel(ctx)

	d.beginRoute(outputID)
	for _, cmd := range cmds {
		if err := d.issue(hwCtx, cmd); err != nil {
			d.logger.Error("route aborted: hardware command failed",
				"source", inputID, "destination", outputID,
				"router", cmd.Router, "input", cmd.Input, "output", cmd.Output, "error", err)
			d.endRoute(outputID, nil, nil)
			return err
		}
	}
	if planErr != nil {
		d.endRoute(outputID, nil, nil)
		return planErr
	}
	d.endRoute(outputID, &src, path)

	d.logger.Info("route made", "source", inputID, "destination", outputID, "hops", len(cmds))

	d.notifyRoute(RouteEvent{
		DestinationID: outputID,
		Source:        src,
		Origin:        OriginCommand,
		Path:          append([]string(nil), path...),
		Timestamp:     time.Now(),
	})
	return nil
}

func (d *Dispatcher) beginRoute(destID string) {
	d.mu.Lock()
	d.inflight, d.held = destID, false
	d.mu.Unlock()
}

// endRoute closes the inflight window. On success src and path become the
// cached route. On failure, feedback held back during the window is
// published so listeners see what the hardware did.
func (d *Dispatcher) endRoute(destID string, src *room.Source, path []string) {
	d.mu.Lock()
	held := d.held
	d.inflight, d.held = "", false
	if src != nil {
		d.routes[destID] = *src
		d.chains[destID] = path
	}
	current := d.routes[destID]
	chain := append([]string(nil), d.chains[destID]...)
	d.mu.Unlock()

	if src == nil && held {
		d.notifyRoute(RouteEvent{
			DestinationID: destID,
			Source:        current,
			Origin:        OriginFeedback,
			Path:          chain,
			Timestamp:     time.Now(),
		})
	}
}

// issue sends one command to its switcher.
func (d *Dispatcher) issue(ctx context.Context, cmd Command) error {
	sw, ok := d.switchers[cmd.Router]
	if !ok {
		d.recorder.RecordHardwareCommand(cmd.Router, ErrCommandFailed)
		return fmt.Errorf("%w: no switcher for matrix %q", ErrCommandFailed, cmd.Router)
	}

	err := sw.RouteInput(ctx, cmd.Input, cmd.Output)
	d.recorder.RecordHardwareCommand(cmd.Router, err)
	if err != nil {
		return fmt.Errorf("%w: %s route %d to %d: %w", ErrCommandFailed, cmd.Router, cmd.Input, cmd.Output, err)
	}

	d.logger.Debug("crosspoint set", "router", cmd.Router, "input", cmd.Input, "output", cmd.Output)
	return nil
}

// RouteToAll routes inputID to every configured destination in turn.
// A failure on one destination does not stop the others.
func (d *Dispatcher) RouteToAll(ctx context.Context, inputID string) []Outcome {
	outcomes := make([]Outcome, 0, len(d.room.Destinations))
	for _, dst := range d.room.Destinations {
		outcomes = append(outcomes, Outcome{
			DestinationID: dst.ID,
			Err:           d.MakeRoute(ctx, inputID, dst.ID),
		})
	}
	return outcomes
}

// CurrentRoute returns the source currently routed to outputID, or NoRoute
// if nothing is routed or outputID is unknown.
func (d *Dispatcher) CurrentRoute(outputID string) room.Source {
	d.mu.RLock()
	src, ok := d.routes[outputID]
	d.mu.RUnlock()

	if !ok {
		d.logger.Error("current route requested for unknown destination", "destination", outputID)
		return NoRoute
	}
	return src
}

// ActiveChain returns the signal chain last routed to destID, source first.
// It is nil when nothing is routed or the chain could not be traced.
func (d *Dispatcher) ActiveChain(destID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.chains[destID]...)
}

// RouterOnline reports whether the switcher with the given ID is online.
// Unknown IDs are logged and report false.
func (d *Dispatcher) RouterOnline(id string) bool {
	sw, ok := d.switchers[id]
	if !ok {
		d.logger.Error("connection status requested for unknown router", "router", id)
		return false
	}
	return sw.IsOnline()
}

// Sources returns every configured source.
func (d *Dispatcher) Sources() []room.Source {
	return append([]room.Source(nil), d.room.Sources...)
}

// Destinations returns every configured destination.
func (d *Dispatcher) Destinations() []room.Destination {
	return append([]room.Destination(nil), d.room.Destinations...)
}

// Routers returns the status of every configured matrix.
func (d *Dispatcher) Routers() []RouterStatus {
	out := make([]RouterStatus, 0, len(d.room.Matrices))
	for _, m := range d.room.Matrices {
		out = append(out, d.routerStatus(m))
	}
	return out
}

// Router returns the status of one matrix.
func (d *Dispatcher) Router(id string) (RouterStatus, bool) {
	m, ok := d.room.Matrix(id)
	if !ok {
		return RouterStatus{}, false
	}
	return d.routerStatus(m), true
}

func (d *Dispatcher) routerStatus(m room.Matrix) RouterStatus {
	st := RouterStatus{
		ID:      m.ID,
		Label:   m.Label,
		Driver:  m.Driver.Type,
		Inputs:  m.Inputs,
		Outputs: m.Outputs,
	}
	if sw, ok := d.switchers[m.ID]; ok {
		st.Online = sw.IsOnline()
	}
	return st
}

// Topology returns the read-only topology the dispatcher routes over.
func (d *Dispatcher) Topology() *topology.Topology {
	return d.topology
}

// DumpTopology logs every vertex and its neighbours.
func (d *Dispatcher) DumpTopology() {
	d.topology.Graph.Dump(d.logger)
}

// LockDestination locks or unlocks a destination on its switcher. It waits
// for a route in progress so a lock never lands in the middle of one.
//
// Returns:
//   - error: ErrDestinationNotFound, ErrCapabilityUnsupported if the
//     switcher cannot lock, or ErrCommandFailed
func (d *Dispatcher) LockDestination(ctx context.Context, destID string, locked bool) error {
	dst, ok := d.room.Destination(destID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrDestinationNotFound, destID)
	}

	sw, ok := d.switchers[dst.Matrix]
	if !ok {
		return fmt.Errorf("%w: no switcher for matrix %q", ErrCommandFailed, dst.Matrix)
	}
	locker, ok := sw.(Locker)
	if !ok {
		return fmt.Errorf("%w: %s cannot lock outputs", ErrCapabilityUnsupported, dst.Matrix)
	}

	d.routeMu.Lock()
	defer d.routeMu.Unlock()

	if err := locker.SetLocked(ctx, dst.Output, locked); err != nil {
		return fmt.Errorf("%w: lock %s: %w", ErrCommandFailed, destID, err)
	}

	d.mu.Lock()
	if locked {
		d.locks[destID] = true
	} else {
		delete(d.locks, destID)
	}
	d.mu.Unlock()

	d.logger.Info("destination lock changed", "destination", destID, "locked", locked)
	return nil
}

// Locked reports whether destID is locked.
func (d *Dispatcher) Locked(destID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.locks[destID]
}

func (d *Dispatcher) kindOf(key string) topology.Kind {
	v, ok := d.topology.Vertex(key)
	if !ok {
		return ""
	}
	return v.Kind
}

func (d *Dispatcher) isKind(key string, kind topology.Kind) bool {
	return d.kindOf(key) == kind
}

func (d *Dispatcher) snapshotListeners() []Listener {
	d.listenerMu.RLock()
	defer d.listenerMu.RUnlock()
	return append([]Listener(nil), d.listeners...)
}

func (d *Dispatcher) notifyRoute(ev RouteEvent) {
	for _, l := range d.snapshotListeners() {
		d.safeNotify(func() { l.RouteChanged(ev) })
	}
}

func (d *Dispatcher) notifyConnectivity(ev ConnectivityEvent) {
	for _, l := range d.snapshotListeners() {
		d.safeNotify(func() { l.RouterConnectivityChanged(ev) })
	}
}

// safeNotify runs fn and recovers a listener panic.
func (d *Dispatcher) safeNotify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("listener panic recovered", "panic", r)
		}
	}()
	fn()
}

// StatusOf classifies a route error as one of the Status constants.
func StatusOf(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrSourceNotFound), errors.Is(err, ErrDestinationNotFound):
		return StatusNotFound
	case errors.Is(err, ErrDestinationLocked):
		return StatusLocked
	case errors.Is(err, ErrNoPath):
		return StatusNoPath
	case errors.Is(err, ErrMalformedPath):
		return StatusMalformed
	default:
		return StatusCommandFailed
	}
}

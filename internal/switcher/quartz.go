package switcher

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cassaram/quartz"

	"github.com/nerrad567/gray-logic-av/internal/room"
)

// defaultQuartzPort is the Quartz remote control port on Evertz routers.
const defaultQuartzPort = 23

// quartzLevelIDs maps level IDs (index) to Quartz level letters.
const quartzLevelIDs = "VABCDEFGHIJKLMNOPQRSTUWXYZ"

// quartzConn is the subset of *quartz.Quartz the driver uses.
type quartzConn interface {
	Connect() error
	Disconnect() error
	SetCrosspoint(levels []quartz.QuartzLevel, destination uint, source uint) error
	GetRoute(level quartz.QuartzLevel, destination uint) error
	LockDestination(destination uint) error
	UnlockDestination(destination uint) error
}

// Quartz drives an Evertz router over the Quartz protocol.
//
// Crosspoints are taken on every configured level. The first configured
// level is the one whose updates feed the route table.
type Quartz struct {
	*crossbar
	conn   quartzConn
	rx     <-chan quartz.QuartzResponse
	levels []uint
	logger Logger

	stopMu sync.Mutex
	stop   chan struct{}
	done   chan struct{}
}

// NewQuartz creates a Quartz driver for m. The connection is opened by Start.
func NewQuartz(m room.Matrix, logger Logger) (*Quartz, error) {
	if m.Driver.Address == "" {
		return nil, fmt.Errorf("%w: matrix %s", ErrInvalidAddress, m.ID)
	}
	port := m.Driver.Port
	if port == 0 {
		port = defaultQuartzPort
	}

	conn := quartz.NewQuartz(m.Driver.Address, uint16(port), true)
	return newQuartz(m, conn, conn.RxMessages, logger), nil
}

func newQuartz(m room.Matrix, conn quartzConn, rx <-chan quartz.QuartzResponse, logger Logger) *Quartz {
	if logger == nil {
		logger = noopLogger{}
	}
	levels := make([]uint, 0, len(m.Driver.Levels))
	for _, l := range m.Driver.Levels {
		if l >= 0 && l < len(quartzLevelIDs) {
			levels = append(levels, uint(l))
		}
	}
	if len(levels) == 0 {
		levels = []uint{0}
	}
	return &Quartz{
		crossbar: newCrossbar(m.ID, m.Inputs, m.Outputs),
		conn:     conn,
		rx:       rx,
		levels:   levels,
		logger:   logger,
	}
}

// Start connects, begins reading responses and requests the current route
// of every output on the primary level.
func (q *Quartz) Start(_ context.Context) error {
	q.stopMu.Lock()
	if q.stop != nil {
		q.stopMu.Unlock()
		return nil
	}
	q.stop = make(chan struct{})
	q.done = make(chan struct{})
	stop, done := q.stop, q.done
	q.stopMu.Unlock()

	go q.readLoop(stop, done)

	if err := q.conn.Connect(); err != nil {
		q.halt()
		return fmt.Errorf("connecting to %s: %w", q.id, err)
	}
	q.setOnline(true)

	primary := idToQuartzLevel(q.levels[0])
	for out := 1; out <= q.outputs; out++ {
		if err := q.conn.GetRoute(primary, uint(out)); err != nil {
			q.logger.Warn("quartz route query failed", "router", q.id, "output", out, "error", err)
		}
	}
	return nil
}

// Stop disconnects and stops the read loop.
func (q *Quartz) Stop() error {
	if !q.halt() {
		return nil
	}
	q.setOnline(false)
	if err := q.conn.Disconnect(); err != nil {
		return fmt.Errorf("disconnecting from %s: %w", q.id, err)
	}
	return nil
}

// halt stops the read loop. It returns false if it was not running.
func (q *Quartz) halt() bool {
	q.stopMu.Lock()
	stop := q.stop
	q.stop = nil
	q.stopMu.Unlock()

	if stop == nil {
		return false
	}
	close(stop)
	return true
}

// RouteInput takes input to output on every configured level.
func (q *Quartz) RouteInput(ctx context.Context, input, output int) error {
	if err := q.checkRoute(ctx, input, output); err != nil {
		return err
	}
	levels := make([]quartz.QuartzLevel, 0, len(q.levels))
	for _, id := range q.levels {
		levels = append(levels, idToQuartzLevel(id))
	}
	if err := q.conn.SetCrosspoint(levels, uint(output), uint(input)); err != nil {
		return fmt.Errorf("quartz crosspoint on %s: %w", q.id, err)
	}
	return nil
}

// SetLocked locks or unlocks a destination on the router.
func (q *Quartz) SetLocked(ctx context.Context, output int, locked bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := q.checkOutput(output); err != nil {
		return err
	}
	if !q.IsOnline() {
		return fmt.Errorf("%w: %s", ErrOffline, q.id)
	}

	var err error
	if locked {
		err = q.conn.LockDestination(uint(output))
	} else {
		err = q.conn.UnlockDestination(uint(output))
	}
	if err != nil {
		return fmt.Errorf("quartz lock on %s: %w", q.id, err)
	}
	return nil
}

func (q *Quartz) readLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case msg, ok := <-q.rx:
			if !ok {
				q.setOnline(false)
				return
			}
			q.handleResponse(msg)
		}
	}
}

func (q *Quartz) handleResponse(msg quartz.QuartzResponse) {
	switch msg.GetType() {
	case quartz.QUARTZ_RESP_TYPE_UPDATE:
		update, ok := msg.(*quartz.ResponseUpdate)
		if !ok {
			return
		}
		ids := make([]uint, 0, len(update.Levels))
		for _, level := range update.Levels {
			ids = append(ids, quartzLevelToID(level))
		}
		q.applyUpdate(uint(update.Destination), uint(update.Source), ids)
	case quartz.QUARTZ_RESP_TYPE_LOCK_STS:
		status, ok := msg.(*quartz.ResponseLockStatus)
		if !ok {
			return
		}
		q.applyLock(uint(status.Destination), status.Locked)
	case quartz.QUARTZ_RESP_TYPE_PWRON:
		q.logger.Info("quartz router powered on", "router", q.id)
	case quartz.QUARTZ_RESP_TYPE_ERR:
		q.logger.Warn("quartz router reported an error", "router", q.id)
	}
}

// applyUpdate records a crosspoint update if it touches the primary level.
func (q *Quartz) applyUpdate(destination, source uint, levels []uint) {
	primary := q.levels[0]
	for _, l := range levels {
		if l != primary {
			continue
		}
		output, input := int(destination), int(source)
		if q.checkOutput(output) != nil {
			q.logger.Debug("quartz update for unmapped destination", "router", q.id, "destination", destination)
			return
		}
		if input == 0 {
			q.clearRoute(output)
			return
		}
		if q.checkInput(input) != nil {
			q.logger.Debug("quartz update from unmapped source", "router", q.id, "source", source)
			return
		}
		q.setRoute(input, output)
		return
	}
}

func (q *Quartz) applyLock(destination uint, locked bool) {
	output := int(destination)
	if q.checkOutput(output) != nil {
		return
	}
	q.setLocked(output, locked)
}

func quartzLevelToID(level quartz.QuartzLevel) uint {
	return uint(strings.Index(quartzLevelIDs, string(level)))
}

func idToQuartzLevel(id uint) quartz.QuartzLevel {
	return quartz.QuartzLevel(quartzLevelIDs[id])
}

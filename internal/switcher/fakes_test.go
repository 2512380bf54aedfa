package switcher

import (
	"errors"
	"sync"

	"github.com/cassaram/quartz"

	"github.com/nerrad567/gray-logic-av/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-av/internal/room"
)

var errDevice = errors.New("device unreachable")

func testMatrix(driver room.DriverType) room.Matrix {
	return room.Matrix{
		ID:      "MX1",
		Label:   "Main matrix",
		Inputs:  4,
		Outputs: 2,
		Driver:  room.Driver{Type: driver, Address: "mx1"},
	}
}

type routeReport struct {
	device string
	output int
}

// recordingHandler is a routing.EventHandler that records every call.
type recordingHandler struct {
	mu     sync.Mutex
	routes []routeReport
	online []bool

	// source, when set, is called from RouteChanged to check the driver
	// does not hold its lock during callbacks.
	source func(output int) (int, bool)
}

func (h *recordingHandler) RouteChanged(deviceID string, output int) {
	if h.source != nil {
		h.source(output)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, routeReport{deviceID, output})
}

func (h *recordingHandler) OnlineChanged(_ string, online bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.online = append(h.online, online)
}

func (h *recordingHandler) routeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.routes)
}

type published struct {
	topic    string
	payload  []byte
	retained bool
}

// fakeBus is an in-memory Bus.
type fakeBus struct {
	mu         sync.Mutex
	published  []published
	handlers   map[string]mqtt.MessageHandler
	publishErr error
	subErr     error
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string]mqtt.MessageHandler)}
}

func (b *fakeBus) Publish(topic string, payload []byte, _ byte, retained bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, published{topic, payload, retained})
	return nil
}

func (b *fakeBus) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subErr != nil {
		return b.subErr
	}
	b.handlers[topic] = handler
	return nil
}

func (b *fakeBus) Unsubscribe(topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, topic)
	return nil
}

func (b *fakeBus) QoS() byte { return 1 }

// deliver calls the handler subscribed on topic.
func (b *fakeBus) deliver(topic, payload string) error {
	b.mu.Lock()
	h := b.handlers[topic]
	b.mu.Unlock()
	if h == nil {
		return errors.New("no subscriber for " + topic)
	}
	return h(topic, []byte(payload))
}

func (b *fakeBus) last() published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.published[len(b.published)-1]
}

type crosspoint struct {
	levels      []uint
	destination uint
	source      uint
}

// fakeQuartzConn is an in-memory quartzConn.
type fakeQuartzConn struct {
	mu          sync.Mutex
	connectErr  error
	commandErr  error
	connected   bool
	crosspoints []crosspoint
	queried     []uint
	locked      map[uint]bool
}

func newFakeQuartzConn() *fakeQuartzConn {
	return &fakeQuartzConn{locked: make(map[uint]bool)}
}

func (c *fakeQuartzConn) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connectErr != nil {
		return c.connectErr
	}
	c.connected = true
	return nil
}

func (c *fakeQuartzConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

func (c *fakeQuartzConn) SetCrosspoint(levels []quartz.QuartzLevel, destination uint, source uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.commandErr != nil {
		return c.commandErr
	}
	ids := make([]uint, 0, len(levels))
	for _, l := range levels {
		ids = append(ids, quartzLevelToID(l))
	}
	c.crosspoints = append(c.crosspoints, crosspoint{ids, destination, source})
	return nil
}

func (c *fakeQuartzConn) GetRoute(_ quartz.QuartzLevel, destination uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queried = append(c.queried, destination)
	return nil
}

func (c *fakeQuartzConn) LockDestination(destination uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.commandErr != nil {
		return c.commandErr
	}
	c.locked[destination] = true
	return nil
}

func (c *fakeQuartzConn) UnlockDestination(destination uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.commandErr != nil {
		return c.commandErr
	}
	delete(c.locked, destination)
	return nil
}

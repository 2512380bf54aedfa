package notify

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-av/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-av/internal/preset"
	"github.com/nerrad567/gray-logic-av/internal/routing"
)

// defaultQueueSize bounds messages waiting to be published.
const defaultQueueSize = 256

// Bus is the subset of *mqtt.Client the publisher uses.
type Bus interface {
	PublishJSON(topic string, v any, retained bool) error
}

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// RouteState is the retained payload on graylogic/core/route/{destination}/state.
type RouteState struct {
	DestinationID string         `json:"destination_id"`
	SourceID      string         `json:"source_id"`
	SourceLabel   string         `json:"source_label,omitempty"`
	Origin        routing.Origin `json:"origin"`
	Path          []string       `json:"path,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// RouterConnectivity is the retained payload on graylogic/core/router/{id}/connectivity.
type RouterConnectivity struct {
	RouterID  string    `json:"router_id"`
	Online    bool      `json:"online"`
	Timestamp time.Time `json:"timestamp"`
}

type message struct {
	topic    string
	payload  any
	retained bool
}

// Publisher publishes dispatcher and preset events on the MQTT bus.
//
// Events are queued and sent by Run. When the queue is full the event is
// dropped and logged; the retained state topic is corrected by the next
// change to that destination.
type Publisher struct {
	bus    Bus
	logger Logger
	topics mqtt.Topics

	queue  chan message
	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a publisher. Call Run to start sending.
func NewPublisher(bus Bus, logger Logger) *Publisher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Publisher{
		bus:    bus,
		logger: logger,
		queue:  make(chan message, defaultQueueSize),
	}
}

// RouteChanged queues the retained destination state and a route event.
func (p *Publisher) RouteChanged(ev routing.RouteEvent) {
	state := RouteState{
		DestinationID: ev.DestinationID,
		SourceID:      ev.Source.ID,
		SourceLabel:   ev.Source.Label,
		Origin:        ev.Origin,
		Path:          ev.Path,
		Timestamp:     ev.Timestamp,
	}
	p.enqueue(message{topic: p.topics.CoreRouteState(ev.DestinationID), payload: state, retained: true})
	p.enqueue(message{topic: p.topics.CoreEvent("route_changed"), payload: state})
}

// RouterConnectivityChanged queues the retained connectivity state.
func (p *Publisher) RouterConnectivityChanged(ev routing.ConnectivityEvent) {
	p.enqueue(message{
		topic: p.topics.CoreRouterConnectivity(ev.RouterID),
		payload: RouterConnectivity{
			RouterID:  ev.RouterID,
			Online:    ev.Online,
			Timestamp: ev.Timestamp,
		},
		retained: true,
	})
}

// PresetRecalled queues a preset_recalled event. Recalls are not retained;
// the route state topics already carry the result.
func (p *Publisher) PresetRecalled(exec preset.Execution) {
	p.enqueue(message{topic: p.topics.CoreEvent("preset_recalled"), payload: exec})
}

func (p *Publisher) enqueue(msg message) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	select {
	case p.queue <- msg:
	default:
		p.logger.Warn("dropping mqtt notification", "topic", msg.topic, "error", ErrQueueFull)
	}
}

// Run publishes queued messages until ctx is cancelled, then sends what
// is already queued and returns.
func (p *Publisher) Run(ctx context.Context) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	for {
		select {
		case msg := <-p.queue:
			p.publish(msg)
		case <-ctx.Done():
			p.close()
			p.drain()
			return nil
		}
	}
}

func (p *Publisher) close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *Publisher) drain() {
	for {
		select {
		case msg := <-p.queue:
			p.publish(msg)
		default:
			return
		}
	}
}

func (p *Publisher) publish(msg message) {
	if err := p.bus.PublishJSON(msg.topic, msg.payload, msg.retained); err != nil {
		p.logger.Error("mqtt notification failed", "topic", msg.topic, "error", err)
		return
	}
	p.logger.Debug("mqtt notification published", "topic", msg.topic)
}

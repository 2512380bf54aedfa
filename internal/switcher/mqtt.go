package switcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-av/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-av/internal/room"
)

// Bus is the subset of *mqtt.Client the MQTT driver uses.
type Bus interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	QoS() byte
}

// Command actions understood by matrix bridges.
const (
	ActionRoute = "route"
	ActionLock  = "lock"
)

// CommandMessage is published to graylogic/command/matrix/{address}.
type CommandMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Input     int       `json:"input,omitempty"`
	Output    int       `json:"output"`
	Locked    *bool     `json:"locked,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StateMessage is received on graylogic/state/matrix/{address}.
//
// Routes maps output number (as a string) to input number. An input of
// 0 means the output carries nothing. Bridges may send the full table or
// only the outputs that changed.
type StateMessage struct {
	Routes map[string]int  `json:"routes"`
	Locks  map[string]bool `json:"locks,omitempty"`
}

// HealthMessage is received on graylogic/health/matrix/{address}.
type HealthMessage struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// MQTT drives a matrix through a protocol bridge on the Gray Logic bus.
//
// The switcher is online while the bridge's last health report says
// "online". Bridges publish health retained, so the state is known as soon
// as Start subscribes.
type MQTT struct {
	*crossbar
	address string
	bus     Bus
	logger  Logger
	topics  mqtt.Topics
}

// NewMQTT creates an MQTT-bridged switcher for m.
//
// Returns:
//   - *MQTT: driver ready for Start
//   - error: ErrMissingBus or ErrInvalidAddress
func NewMQTT(m room.Matrix, bus Bus, logger Logger) (*MQTT, error) {
	if bus == nil {
		return nil, fmt.Errorf("%w: matrix %s", ErrMissingBus, m.ID)
	}
	if m.Driver.Address == "" {
		return nil, fmt.Errorf("%w: matrix %s", ErrInvalidAddress, m.ID)
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTT{
		crossbar: newCrossbar(m.ID, m.Inputs, m.Outputs),
		address:  m.Driver.Address,
		bus:      bus,
		logger:   logger,
	}, nil
}

// Start subscribes to the bridge's state and health topics.
func (d *MQTT) Start(_ context.Context) error {
	if err := d.bus.Subscribe(d.topics.MatrixHealth(d.address), d.bus.QoS(), d.handleHealth); err != nil {
		return fmt.Errorf("subscribing to %s health: %w", d.id, err)
	}
	if err := d.bus.Subscribe(d.topics.MatrixState(d.address), d.bus.QoS(), d.handleState); err != nil {
		return fmt.Errorf("subscribing to %s state: %w", d.id, err)
	}
	return nil
}

// Stop unsubscribes and marks the switcher offline.
func (d *MQTT) Stop() error {
	var firstErr error
	for _, topic := range []string{d.topics.MatrixState(d.address), d.topics.MatrixHealth(d.address)} {
		if err := d.bus.Unsubscribe(topic); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.setOnline(false)
	return firstErr
}

// RouteInput publishes a route command. Confirmation arrives on the state topic.
func (d *MQTT) RouteInput(ctx context.Context, input, output int) error {
	if err := d.checkRoute(ctx, input, output); err != nil {
		return err
	}
	return d.send(CommandMessage{Action: ActionRoute, Input: input, Output: output})
}

// SetLocked publishes a lock command and records the lock locally.
func (d *MQTT) SetLocked(ctx context.Context, output int, locked bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.checkOutput(output); err != nil {
		return err
	}
	if !d.IsOnline() {
		return fmt.Errorf("%w: %s", ErrOffline, d.id)
	}
	if err := d.send(CommandMessage{Action: ActionLock, Output: output, Locked: &locked}); err != nil {
		return err
	}
	d.setLocked(output, locked)
	return nil
}

func (d *MQTT) send(cmd CommandMessage) error {
	cmd.ID = uuid.NewString()
	cmd.Timestamp = time.Now().UTC()

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encoding command: %w", err)
	}
	if err := d.bus.Publish(d.topics.MatrixCommand(d.address), payload, d.bus.QoS(), false); err != nil {
		return fmt.Errorf("publishing %s command to %s: %w", cmd.Action, d.id, err)
	}

	d.logger.Debug("matrix command sent",
		"router", d.id,
		"command_id", cmd.ID,
		"action", cmd.Action,
		"input", cmd.Input,
		"output", cmd.Output,
	)
	return nil
}

func (d *MQTT) handleHealth(_ string, payload []byte) error {
	var msg HealthMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: health from %s: %w", ErrInvalidPayload, d.id, err)
	}
	online := msg.Status == "online"
	if !online {
		d.logger.Warn("matrix bridge reports offline", "router", d.id, "reason", msg.Reason)
	}
	d.setOnline(online)
	return nil
}

func (d *MQTT) handleState(_ string, payload []byte) error {
	var msg StateMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: state from %s: %w", ErrInvalidPayload, d.id, err)
	}

	for key, locked := range msg.Locks {
		output, err := strconv.Atoi(key)
		if err != nil || d.checkOutput(output) != nil {
			d.logger.Warn("ignoring lock for unknown output", "router", d.id, "output", key)
			continue
		}
		d.setLocked(output, locked)
	}

	for key, input := range msg.Routes {
		output, err := strconv.Atoi(key)
		if err != nil || d.checkOutput(output) != nil {
			d.logger.Warn("ignoring route for unknown output", "router", d.id, "output", key)
			continue
		}
		if input == 0 {
			d.clearRoute(output)
			continue
		}
		if d.checkInput(input) != nil {
			d.logger.Warn("ignoring route from unknown input", "router", d.id, "input", input, "output", output)
			continue
		}
		d.setRoute(input, output)
	}
	return nil
}

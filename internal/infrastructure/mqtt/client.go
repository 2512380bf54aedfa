package mqtt

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-av/internal/infrastructure/config"
)

// Client is the routing core's broker connection, shared by MQTT-bridged
// switchers and the route state publisher. Safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig

	connected atomic.Bool

	mu            sync.RWMutex
	subscriptions map[string]subscription
	onConnect     func()
	onDisconnect  func(err error)
	logger        Logger
}

// Logger is the subset of logging.Logger the client needs.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler receives one message. It runs on a paho delivery
// goroutine; a returned error is logged and the message is still acked.
type MessageHandler func(topic string, payload []byte) error

type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// Connect dials the broker and waits up to the connect timeout.
//
// A retained last-will on graylogic/system/status/{client_id} is registered
// first. After every (re)connect the client republishes an online status
// and restores tracked subscriptions.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := newClient(cfg)

	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.handleConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.handleDisconnect(err) })

	c.client = pahomqtt.NewClient(opts)
	if err := await(c.client.Connect(), defaultConnectTimeout); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The connect handler runs asynchronously. Callers may subscribe now.
	c.setConnected(true)
	return c, nil
}

func newClient(cfg config.MQTTConfig) *Client {
	return &Client{
		cfg:           cfg,
		subscriptions: make(map[string]subscription),
	}
}

// await waits for a paho token and returns its error, or a timeout error.
func await(token pahomqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("timeout after %v", timeout)
	}
	return token.Error()
}

func (c *Client) setConnected(v bool) {
	c.connected.Store(v)
}

func (c *Client) handleConnect() {
	c.setConnected(true)

	c.mu.RLock()
	subs := slices.Collect(maps.Values(c.subscriptions))
	fn := c.onConnect
	c.mu.RUnlock()

	for _, sub := range subs {
		c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
	}
	c.publishStatus("online", "")

	if fn != nil {
		fn()
	}
}

func (c *Client) handleDisconnect(err error) {
	c.setConnected(false)

	c.mu.RLock()
	fn, logger := c.onDisconnect, c.logger
	c.mu.RUnlock()

	if logger != nil {
		logger.Warn("mqtt connection lost", "error", err)
	}
	if fn != nil {
		fn(err)
	}
}

// publishStatus writes the retained service status.
func (c *Client) publishStatus(status, reason string) pahomqtt.Token {
	id := c.cfg.Broker.ClientID
	return c.client.Publish(Topics{}.ServiceStatus(id), c.QoS(), true, buildStatusPayload(status, id, reason))
}

// Close publishes a graceful offline status and disconnects. Closing a
// client that never connected is a no-op.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	if c.IsConnected() {
		c.publishStatus("offline", "shutdown").WaitTimeout(defaultPublishTimeout)
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
	c.setConnected(false)
	return nil
}

// HealthCheck reports whether the broker connection is usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports the last known connection state.
func (c *Client) IsConnected() bool {
	return c.connected.Load() && c.client != nil && c.client.IsConnected()
}

// SetOnConnect sets a callback run after every connect and reconnect.
func (c *Client) SetOnConnect(fn func()) {
	c.mu.Lock()
	c.onConnect = fn
	c.mu.Unlock()
}

// SetOnDisconnect sets a callback run when the connection drops.
func (c *Client) SetOnDisconnect(fn func(err error)) {
	c.mu.Lock()
	c.onDisconnect = fn
	c.mu.Unlock()
}

// SetLogger sets the logger for handler failures and connection loss.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		c.deliver(handler, msg.Topic(), msg.Payload())
	}
}

// deliver runs handler, logging a returned error or a recovered panic.
func (c *Client) deliver(handler MessageHandler, topic string, payload []byte) {
	c.mu.RLock()
	logger := c.logger
	c.mu.RUnlock()

	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Error("mqtt handler panic recovered", "topic", topic, "panic", r)
		}
	}()

	if err := handler(topic, payload); err != nil && logger != nil {
		logger.Warn("mqtt handler returned error", "topic", topic, "error", err)
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-av/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-av/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-av/internal/preset"
	"github.com/nerrad567/gray-logic-av/internal/routing"
)

// WebSocket message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"

	// wsSendBufferSize is the per-client outbound queue length. A client
	// that falls this far behind misses events.
	wsSendBufferSize = 256
)

// Broadcast channels.
const (
	ChannelRouteChanged        = "route.changed"
	ChannelConnectivityChanged = "router.connectivity_changed"
	ChannelPresetRecalled      = "preset.recalled"
)

var knownChannels = map[string]struct{}{
	ChannelRouteChanged:        {},
	ChannelConnectivityChanged: {},
	ChannelPresetRecalled:      {},
}

// WSMessage is the envelope for every frame in either direction.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload for subscribe and unsubscribe frames.
// An empty channel list means every channel.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// Hub fans dispatcher and preset events out to connected control surfaces.
// It implements routing.Listener and preset.Listener.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// WSClient is one connected control surface.
type WSClient struct {
	hub     *Hub
	conn    *websocket.Conn
	subject string // token subject from the ticket; empty when auth is disabled

	// mu guards closed and subscriptions. send is only written while
	// holding a read lock and only closed while holding the write lock.
	mu            sync.RWMutex
	send          chan []byte
	closed        bool
	subscriptions map[string]struct{}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS middleware has already vetted the origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*WSClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.shutdown()
		if c.conn != nil {
			c.conn.Close()
		}
	}
	h.logger.Debug("websocket hub stopped", "disconnected", len(clients))
}

// Register adds a client.
func (h *Hub) Register(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n, "subject", c.subject)
}

// Unregister removes a client and closes its queue. Safe to call twice.
func (h *Hub) Unregister(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	c.shutdown()
	h.logger.Debug("websocket client disconnected", "clients", n, "subject", c.subject)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues an event for every client subscribed to channel.
// Clients whose queue is full miss the event.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := encodeFrame(WSMessage{Type: WSTypeEvent, EventType: channel, Payload: payload})
	if err != nil {
		h.logger.Error("encoding broadcast", "channel", channel, "error", err)
		return
	}

	var sent, dropped int
	for _, c := range h.snapshot() {
		if !c.isSubscribed(channel) {
			continue
		}
		if c.enqueue(data) {
			sent++
		} else {
			dropped++
		}
	}

	if dropped > 0 {
		h.logger.Warn("websocket event dropped for slow clients", "channel", channel, "dropped", dropped)
	}
	if sent > 0 {
		h.logger.Debug("broadcast sent", "channel", channel, "recipients", sent)
	}
}

func (h *Hub) snapshot() []*WSClient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Collect(maps.Keys(h.clients))
}

// RouteChanged publishes on route.changed.
func (h *Hub) RouteChanged(ev routing.RouteEvent) {
	h.Broadcast(ChannelRouteChanged, ev)
}

// RouterConnectivityChanged publishes on router.connectivity_changed.
func (h *Hub) RouterConnectivityChanged(ev routing.ConnectivityEvent) {
	h.Broadcast(ChannelConnectivityChanged, ev)
}

// PresetRecalled publishes a finished recall on preset.recalled.
func (h *Hub) PresetRecalled(exec preset.Execution) {
	h.Broadcast(ChannelPresetRecalled, exec)
}

// handleWebSocket upgrades the connection. With bearer auth enabled the
// client must present a single-use ticket from POST /auth/ws-ticket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	var subject string
	if s.authEnabled() {
		ticket := r.URL.Query().Get("ticket")
		if ticket == "" {
			writeUnauthorized(w, "ticket query parameter is required")
			return
		}
		entry, ok := s.tickets.consume(ticket)
		if !ok {
			writeUnauthorized(w, "invalid or expired ticket")
			return
		}
		subject = entry.subject
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &WSClient{
		hub:           s.hub,
		conn:          conn,
		subject:       subject,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
	s.hub.Register(c)

	ka := keepaliveFor(s.wsCfg)
	go c.writePump(ka)
	go c.readPump(ka, int64(s.wsCfg.MaxMessageSize))
}

// keepalive holds the ping cadence and the grace period for a reply.
type keepalive struct {
	ping time.Duration
	wait time.Duration
}

func keepaliveFor(cfg config.WebSocketConfig) keepalive {
	return keepalive{
		ping: time.Duration(cfg.PingInterval) * time.Second,
		wait: time.Duration(cfg.PongTimeout) * time.Second,
	}
}

func (k keepalive) readDeadline() time.Time  { return time.Now().Add(k.ping + k.wait) }
func (k keepalive) writeDeadline() time.Time { return time.Now().Add(k.wait) }

func (c *WSClient) readPump(ka keepalive, limit int64) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(limit)
	c.conn.SetReadDeadline(ka.readDeadline()) //nolint:errcheck // a dead conn fails the next read
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(ka.readDeadline())
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "subject", c.subject, "error", err)
			}
			return
		}
		// Panels that ignore protocol pings stay alive by sending frames.
		c.conn.SetReadDeadline(ka.readDeadline()) //nolint:errcheck // a dead conn fails the next read
		c.handleMessage(data)
	}
}

func (c *WSClient) writePump(ka keepalive) {
	ticker := time.NewTicker(ka.ping)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		var (
			kind int
			data []byte
		)
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil) //nolint:errcheck // closing anyway
				return
			}
			kind, data = websocket.TextMessage, msg
		case <-ticker.C:
			kind = websocket.PingMessage
		}

		c.conn.SetWriteDeadline(ka.writeDeadline()) //nolint:errcheck // write below reports failure
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply("", WSTypeError, errorPayload("invalid JSON message"))
		return
	}

	switch msg.Type {
	case WSTypeSubscribe:
		channels, err := channelsFrom(msg)
		if err != nil {
			c.reply(msg.ID, WSTypeError, errorPayload(err.Error()))
			return
		}
		c.setSubscribed(channels, true)
		c.reply(msg.ID, WSTypeResponse, map[string]any{"subscribed": channels})
	case WSTypeUnsubscribe:
		channels, err := channelsFrom(msg)
		if err != nil {
			c.reply(msg.ID, WSTypeError, errorPayload(err.Error()))
			return
		}
		c.setSubscribed(channels, false)
		c.reply(msg.ID, WSTypeResponse, map[string]any{"unsubscribed": channels})
	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)
	default:
		c.reply(msg.ID, WSTypeError, errorPayload("unknown message type: "+msg.Type))
	}
}

// channelsFrom extracts and validates the channel list of a subscribe or
// unsubscribe frame. An empty list expands to every known channel.
func channelsFrom(msg WSMessage) ([]string, error) {
	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, errors.New("invalid payload")
	}
	var sub WSSubscribePayload
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, fmt.Errorf("invalid %s payload", msg.Type)
	}

	if len(sub.Channels) == 0 {
		return slices.Sorted(maps.Keys(knownChannels)), nil
	}
	for _, ch := range sub.Channels {
		if _, ok := knownChannels[ch]; !ok {
			return nil, fmt.Errorf("unknown channel: %s", ch)
		}
	}
	return sub.Channels, nil
}

func (c *WSClient) setSubscribed(channels []string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range channels {
		if on {
			c.subscriptions[ch] = struct{}{}
		} else {
			delete(c.subscriptions, ch)
		}
	}
}

func (c *WSClient) isSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscriptions[channel]
	return ok
}

// enqueue queues data without blocking. It reports false when the client
// is closed or its queue is full.
func (c *WSClient) enqueue(data []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// shutdown closes the send queue once, which stops writePump.
func (c *WSClient) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *WSClient) reply(id, msgType string, payload any) {
	data, err := encodeFrame(WSMessage{Type: msgType, ID: id, Payload: payload})
	if err != nil {
		return
	}
	c.enqueue(data)
}

func errorPayload(message string) map[string]string {
	return map[string]string{"message": message}
}

// encodeFrame stamps msg with the current time and marshals it.
func encodeFrame(msg WSMessage) ([]byte, error) {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return json.Marshal(msg)
}

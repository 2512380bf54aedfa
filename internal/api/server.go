package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-av/internal/audit"
	"github.com/nerrad567/gray-logic-av/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-av/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-av/internal/metrics"
	"github.com/nerrad567/gray-logic-av/internal/preset"
	"github.com/nerrad567/gray-logic-av/internal/routing"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// ConnectionChecker reports whether a backing connection is up.
// *mqtt.Client satisfies it.
type ConnectionChecker interface {
	IsConnected() bool
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Security   config.SecurityConfig
	Logger     *logging.Logger
	Dispatcher *routing.Dispatcher
	Presets    *preset.Engine    // optional: preset routes return 503 without it
	Audit      audit.Repository  // optional: GET /audit returns 503 without it
	Metrics    *metrics.Registry // optional: /metrics is not mounted without it
	MQTT       ConnectionChecker // optional: reported in system metrics
	Hub        *Hub              // optional: created and registered with the dispatcher if nil
	Version    string
}

// Server is the HTTP API server for the AV routing core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	wsCfg      config.WebSocketConfig
	secCfg     config.SecurityConfig
	logger     *logging.Logger
	dispatcher *routing.Dispatcher
	presets    *preset.Engine
	auditRepo  audit.Repository
	metrics    *metrics.Registry
	mqtt       ConnectionChecker
	hub        *Hub
	tickets    *ticketStore
	version    string
	startTime  time.Time
	server     *http.Server
	cancel     context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If the logger or dispatcher is missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}

	s := &Server{
		cfg:        deps.Config,
		wsCfg:      deps.WS,
		secCfg:     deps.Security,
		logger:     deps.Logger,
		dispatcher: deps.Dispatcher,
		presets:    deps.Presets,
		auditRepo:  deps.Audit,
		metrics:    deps.Metrics,
		mqtt:       deps.MQTT,
		hub:        deps.Hub,
		tickets:    newTicketStore(ticketTTL(deps.Security.JWT)),
		version:    deps.Version,
		startTime:  time.Now(),
	}

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
		s.dispatcher.AddListener(s.hub)
		if s.presets != nil {
			s.presets.AddListener(s.hub)
		}
	}

	return s, nil
}

// Hub returns the WebSocket hub the server broadcasts through.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub and ticket cleanup, then launches the HTTP
// listener in a background goroutine. The server can be stopped with Close().
//
// Returns:
//   - error: Always nil; listener errors are logged
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)
	go s.cleanTicketsLoop(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.ReadTimeout(),
		WriteTimeout:      s.cfg.WriteTimeout(),
		IdleTimeout:       s.cfg.IdleTimeout(),
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

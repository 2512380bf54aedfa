// Gray Logic AV - Audio/Video Routing Core
//
// This is the main entry point for the Gray Logic AV routing service.
// It loads a room's equipment inventory, builds the signal topology, and
// routes sources to destinations across one or more matrix switchers:
//   - Shortest-path routing through cascaded matrices and tie-lines
//   - Hardware feedback reconciliation (front-panel takes, other controllers)
//   - Named presets that recall a set of routes in one request
//   - REST + WebSocket API for control surfaces
//   - MQTT state publication, InfluxDB telemetry and a SQLite route history
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/gray-logic-av/internal/api"
	"github.com/nerrad567/gray-logic-av/internal/audit"
	"github.com/nerrad567/gray-logic-av/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-av/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-av/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-av/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-av/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-av/internal/metrics"
	"github.com/nerrad567/gray-logic-av/internal/notify"
	"github.com/nerrad567/gray-logic-av/internal/preset"
	"github.com/nerrad567/gray-logic-av/internal/room"
	"github.com/nerrad567/gray-logic-av/internal/routing"
	"github.com/nerrad567/gray-logic-av/internal/switcher"
	"github.com/nerrad567/gray-logic-av/internal/topology"
	"github.com/nerrad567/gray-logic-av/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence
	log := logging.Default()
	log.Info("starting Gray Logic AV",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Room inventory and topology
	rm, err := room.Load(cfg.Room.TopologyFile)
	if err != nil {
		return fmt.Errorf("loading room: %w", err)
	}
	top := topology.Build(rm, log.Component("topology"))
	log.Info("topology built",
		"room", rm.Info.ID,
		"matrices", len(rm.Matrices),
		"sources", len(rm.Sources),
		"destinations", len(rm.Destinations),
		"tie_lines", len(rm.TieLines),
		"vertices", top.Graph.VertexCount(),
	)

	// Database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// MQTT (not needed in dev mode: every matrix is simulated)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled && !cfg.Room.DevMode {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled", "dev_mode", cfg.Room.DevMode)
	}

	// InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Switchers
	drivers, err := buildSwitchers(rm, mqttClient, cfg.Room.DevMode, log.Component("switcher"))
	if err != nil {
		return err
	}

	// Dispatcher
	registry := metrics.NewRegistry()
	switchers := make(map[string]routing.Switcher, len(drivers))
	for id, drv := range drivers {
		switchers[id] = drv
	}
	dispatcher, err := routing.New(routing.Options{
		Room:      rm,
		Topology:  top,
		Switchers: switchers,
		Logger:    log.Component("routing"),
		Recorder:  registry,
	})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}
	if cfg.Logging.Level == "debug" {
		dispatcher.DumpTopology()
	}

	// Presets
	presets, err := preset.NewEngine(preset.Options{
		Registry: preset.NewRegistry(rm, log.Component("preset")),
		Router:   dispatcher,
		Logger:   log.Component("preset"),
		Recorder: registry,
	})
	if err != nil {
		return fmt.Errorf("creating preset engine: %w", err)
	}

	// Listeners
	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))
	dispatcher.AddListener(hub)
	presets.AddListener(hub)

	auditRepo := audit.NewSQLiteRepository(db.DB)
	auditRecorder := audit.NewRecorder(auditRepo, log.Component("audit"))
	dispatcher.AddListener(auditRecorder)
	presets.AddListener(auditRecorder)

	if mqttClient != nil {
		publisher := notify.NewPublisher(mqttClient, log.Component("notify"))
		dispatcher.AddListener(publisher)
		presets.AddListener(publisher)
		pubCtx, stopPublisher := context.WithCancel(context.Background())
		pubDone := make(chan struct{})
		go func() {
			defer close(pubDone)
			if runErr := publisher.Run(pubCtx); runErr != nil {
				log.Error("MQTT publisher stopped", "error", runErr)
			}
		}()
		defer func() {
			log.Info("stopping MQTT publisher")
			stopPublisher()
			<-pubDone
		}()
	}

	if influxClient != nil {
		telemetry := notify.NewTelemetry(influxClient)
		dispatcher.AddListener(telemetry)
		presets.AddListener(telemetry)
	}

	// Start drivers once the dispatcher is listening for their feedback.
	startSwitchers(ctx, drivers, log)
	defer stopSwitchers(drivers, log)

	// API server
	server, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Security:   cfg.Security,
		Logger:     log.Component("api"),
		Dispatcher: dispatcher,
		Presets:    presets,
		Audit:      auditRepo,
		Metrics:    registry,
		MQTT:       connectionChecker(mqttClient),
		Hub:        hub,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// API server, switchers, MQTT publisher, InfluxDB, MQTT, database.

	log.Info("Gray Logic AV stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_AV_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_AV_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildSwitchers creates a driver for every matrix in the room.
func buildSwitchers(rm *room.Room, mqttClient *mqtt.Client, devMode bool, log *logging.Logger) (map[string]switcher.Driver, error) {
	deps := switcher.Deps{Logger: log, DevMode: devMode}
	if mqttClient != nil {
		deps.Bus = mqttClient
	}

	drivers := make(map[string]switcher.Driver, len(rm.Matrices))
	for _, m := range rm.Matrices {
		drv, err := switcher.New(m, deps)
		if err != nil {
			return nil, fmt.Errorf("creating switcher %s: %w", m.ID, err)
		}
		drivers[m.ID] = drv
		log.Info("switcher created", "matrix", m.ID, "driver", m.Driver.Type, "dev_mode", devMode)
	}
	return drivers, nil
}

// startSwitchers starts every driver. A router that cannot be reached stays
// offline; routes through it fail until it comes back.
func startSwitchers(ctx context.Context, drivers map[string]switcher.Driver, log *logging.Logger) {
	for id, drv := range drivers {
		if err := drv.Start(ctx); err != nil {
			log.Warn("switcher failed to start", "matrix", id, "error", err)
			continue
		}
		log.Info("switcher started", "matrix", id, "online", drv.IsOnline())
	}
}

func stopSwitchers(drivers map[string]switcher.Driver, log *logging.Logger) {
	for id, drv := range drivers {
		if err := drv.Stop(); err != nil {
			log.Error("error stopping switcher", "matrix", id, "error", err)
		}
	}
}

// connectionChecker avoids handing the API a typed nil.
func connectionChecker(c *mqtt.Client) api.ConnectionChecker {
	if c == nil {
		return nil
	}
	return c
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (nil if disabled)
//   - influxClient: InfluxDB client to check (nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Gray Logic AV routing core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Room      RoomConfig      `yaml:"room"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// RoomConfig points at the room topology (sources, destinations, matrices, tie-lines).
type RoomConfig struct {
	// TopologyFile is the path to the room topology file (YAML or JSON).
	TopologyFile string `yaml:"topology_file"`

	// DevMode replaces every configured matrix driver with an in-memory
	// simulated switcher. No MQTT broker or router hardware is required.
	DevMode bool `yaml:"dev_mode"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings for route telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains settings for bearer tokens accepted by the API.
type JWTConfig struct {
	// Enabled turns on bearer token checks for protected API routes.
	Enabled bool `yaml:"enabled"`

	// Secret is the HS256 signing key. Set via GRAYLOGIC_AV_JWT_SECRET.
	Secret string `yaml:"secret"`

	// TicketTTL is the lifetime of single-use WebSocket tickets (seconds).
	TicketTTL int `yaml:"ws_ticket_ttl"`
}

// minJWTSecretLength is the shortest accepted HS256 signing key.
const minJWTSecretLength = 32

// envPrefix is prepended to every override variable name.
const envPrefix = "GRAYLOGIC_AV_"

// envOverrides lists the keys that can be set from the environment.
// Secrets belong here rather than in the file.
var envOverrides = []struct {
	name  string
	apply func(c *Config, v string)
}{
	{"ROOM_TOPOLOGY_FILE", func(c *Config, v string) { c.Room.TopologyFile = v }},
	{"DEV_MODE", func(c *Config, v string) {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Room.DevMode = b
		}
	}},
	{"DATABASE_PATH", func(c *Config, v string) { c.Database.Path = v }},
	{"MQTT_HOST", func(c *Config, v string) { c.MQTT.Broker.Host = v }},
	{"MQTT_USERNAME", func(c *Config, v string) { c.MQTT.Auth.Username = v }},
	{"MQTT_PASSWORD", func(c *Config, v string) { c.MQTT.Auth.Password = v }},
	{"API_HOST", func(c *Config, v string) { c.API.Host = v }},
	{"INFLUXDB_TOKEN", func(c *Config, v string) { c.InfluxDB.Token = v }},
	{"JWT_SECRET", func(c *Config, v string) { c.Security.JWT.Secret = v }},
}

// Load reads path over the defaults, applies GRAYLOGIC_AV_* overrides and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used for any key the file omits.
func Default() *Config {
	return &Config{
		Site: SiteConfig{ID: "site-001", Name: "Gray Logic AV"},
		Room: RoomConfig{TopologyFile: "configs/room.yaml"},
		Database: DatabaseConfig{
			Path:        "./data/graylogic-av.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled:   true,
			Broker:    MQTTBrokerConfig{Host: "localhost", Port: 1883, ClientID: "graylogic-av"},
			QoS:       1,
			Reconnect: MQTTReconnectConfig{InitialDelay: 1, MaxDelay: 60},
		},
		API: APIConfig{
			Host:     "0.0.0.0",
			Port:     8090,
			Timeouts: APITimeoutConfig{Read: 30, Write: 30, Idle: 60},
		},
		WebSocket: WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10},
		Logging:   LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
		Security:  SecurityConfig{JWT: JWTConfig{Enabled: true, TicketTTL: 60}},
	}
}

func applyEnvOverrides(cfg *Config) {
	for _, o := range envOverrides {
		if v := os.Getenv(envPrefix + o.name); v != "" {
			o.apply(cfg, v)
		}
	}
}

// Validate reports every problem in one error.
func (c *Config) Validate() error {
	var errs []string
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, msg)
		}
	}

	check(c.Site.ID != "", "site.id is required")
	check(c.Room.TopologyFile != "", "room.topology_file is required")
	check(c.Database.Path != "", "database.path is required")
	check(c.MQTT.QoS >= 0 && c.MQTT.QoS <= 2, "mqtt.qos must be 0, 1, or 2")
	check(c.MQTT.Reconnect.MaxDelay >= c.MQTT.Reconnect.InitialDelay, "mqtt.reconnect.max_delay must not be below initial_delay")
	check(c.API.Port >= 1 && c.API.Port <= 65535, "api.port must be between 1 and 65535")
	check(!c.API.TLS.Enabled || (c.API.TLS.CertFile != "" && c.API.TLS.KeyFile != ""),
		"api.tls needs cert_file and key_file when enabled")
	check(c.WebSocket.PingInterval >= 0 && c.WebSocket.PongTimeout >= 0 && c.WebSocket.MaxMessageSize >= 0,
		"websocket values must not be negative")
	check(!c.InfluxDB.Enabled || c.InfluxDB.URL != "", "influxdb.url is required when influxdb is enabled")

	if jwt := c.Security.JWT; jwt.Enabled {
		switch {
		case jwt.Secret == "":
			errs = append(errs, "security.jwt.secret is required (set "+envPrefix+"JWT_SECRET)")
		case len(jwt.Secret) < minJWTSecretLength:
			errs = append(errs, fmt.Sprintf("security.jwt.secret must be at least %d characters", minJWTSecretLength))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ReadTimeout returns the HTTP read timeout.
func (a APIConfig) ReadTimeout() time.Duration { return time.Duration(a.Timeouts.Read) * time.Second }

// WriteTimeout returns the HTTP write timeout.
func (a APIConfig) WriteTimeout() time.Duration { return time.Duration(a.Timeouts.Write) * time.Second }

// IdleTimeout returns the HTTP keep-alive idle timeout.
func (a APIConfig) IdleTimeout() time.Duration { return time.Duration(a.Timeouts.Idle) * time.Second }

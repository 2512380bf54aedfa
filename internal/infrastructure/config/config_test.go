package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// validJWTSecret meets the 32-character minimum requirement.
const validJWTSecret = "test-secret-key-at-least-32-chars!"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-site"
room:
  topology_file: "/etc/graylogic/boardroom.yaml"
  dev_mode: true
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8090
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}
	if cfg.Room.TopologyFile != "/etc/graylogic/boardroom.yaml" {
		t.Errorf("Room.TopologyFile = %q, want %q", cfg.Room.TopologyFile, "/etc/graylogic/boardroom.yaml")
	}
	if !cfg.Room.DevMode {
		t.Error("Room.DevMode = false, want true")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
	// Not set in the file, so the default survives.
	if cfg.WebSocket.PingInterval != 30 {
		t.Errorf("WebSocket.PingInterval = %d, want 30", cfg.WebSocket.PingInterval)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
site:
  id: ""
database:
  path: "/tmp/test.db"
api:
  port: 8090
security:
  jwt:
    enabled: false
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error for empty site.id, got nil")
	}
	if !strings.Contains(err.Error(), "site.id is required") {
		t.Errorf("error = %v, want mention of site.id", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Site:     SiteConfig{ID: "site-001"},
			Room:     RoomConfig{TopologyFile: "configs/room.yaml"},
			Database: DatabaseConfig{Path: "/data/graylogic-av.db"},
			MQTT:     MQTTConfig{QoS: 1},
			API:      APIConfig{Port: 8090},
			Security: SecurityConfig{JWT: JWTConfig{Enabled: true, Secret: validJWTSecret}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}, wantErr: false},
		{name: "missing site ID", mutate: func(c *Config) { c.Site.ID = "" }, wantErr: true},
		{name: "missing topology file", mutate: func(c *Config) { c.Room.TopologyFile = "" }, wantErr: true},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: true},
		{name: "invalid port low", mutate: func(c *Config) { c.API.Port = 0 }, wantErr: true},
		{name: "invalid port high", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: true},
		{name: "influx enabled without url", mutate: func(c *Config) { c.InfluxDB.Enabled = true }, wantErr: true},
		{name: "reconnect delays inverted", mutate: func(c *Config) { c.MQTT.Reconnect = MQTTReconnectConfig{InitialDelay: 30, MaxDelay: 5} }, wantErr: true},
		{name: "tls without cert", mutate: func(c *Config) { c.API.TLS.Enabled = true }, wantErr: true},
		{name: "negative ping interval", mutate: func(c *Config) { c.WebSocket.PingInterval = -1 }, wantErr: true},
		{name: "missing JWT secret", mutate: func(c *Config) { c.Security.JWT.Secret = "" }, wantErr: true},
		{name: "JWT secret too short", mutate: func(c *Config) { c.Security.JWT.Secret = "short" }, wantErr: true},
		{
			name: "JWT disabled needs no secret",
			mutate: func(c *Config) {
				c.Security.JWT.Enabled = false
				c.Security.JWT.Secret = ""
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := &Config{API: APIConfig{Port: 0}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	for _, want := range []string{"site.id", "room.topology_file", "database.path", "api.port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestAPIConfig_Timeouts(t *testing.T) {
	api := APIConfig{Timeouts: APITimeoutConfig{Read: 30, Write: 45, Idle: 60}}

	if got := api.ReadTimeout().Seconds(); got != 30 {
		t.Errorf("ReadTimeout() = %v, want 30", got)
	}
	if got := api.WriteTimeout().Seconds(); got != 45 {
		t.Errorf("WriteTimeout() = %v, want 45", got)
	}
	if got := api.IdleTimeout().Seconds(); got != 60 {
		t.Errorf("IdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	t.Setenv("GRAYLOGIC_AV_ROOM_TOPOLOGY_FILE", "/srv/rooms/studio.yaml")
	t.Setenv("GRAYLOGIC_AV_DEV_MODE", "true")
	t.Setenv("GRAYLOGIC_AV_DATABASE_PATH", "/custom/path.db")
	t.Setenv("GRAYLOGIC_AV_MQTT_HOST", "mqtt.example.com")
	t.Setenv("GRAYLOGIC_AV_MQTT_USERNAME", "testuser")
	t.Setenv("GRAYLOGIC_AV_MQTT_PASSWORD", "testpass")
	t.Setenv("GRAYLOGIC_AV_API_HOST", "192.168.1.1")
	t.Setenv("GRAYLOGIC_AV_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("GRAYLOGIC_AV_JWT_SECRET", "jwt-secret")

	applyEnvOverrides(cfg)

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Room.TopologyFile", cfg.Room.TopologyFile, "/srv/rooms/studio.yaml"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Security.JWT.Secret", cfg.Security.JWT.Secret, "jwt-secret"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
	if !cfg.Room.DevMode {
		t.Error("Room.DevMode = false, want true")
	}
}

func TestApplyEnvOverrides_BadBoolIgnored(t *testing.T) {
	cfg := Default()
	t.Setenv("GRAYLOGIC_AV_DEV_MODE", "sometimes")
	applyEnvOverrides(cfg)
	if cfg.Room.DevMode {
		t.Error("Room.DevMode = true, want default false for unparseable value")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Site.ID == "" {
		t.Error("Default should have non-empty Site.ID")
	}
	if cfg.Room.TopologyFile == "" {
		t.Error("Default should have non-empty Room.TopologyFile")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("Default MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8090 {
		t.Errorf("Default API.Port = %d, want 8090", cfg.API.Port)
	}
	if !cfg.Security.JWT.Enabled {
		t.Error("Default should enable JWT checks")
	}
}

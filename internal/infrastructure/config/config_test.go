package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

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
database:
  driver: sqlite3
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
session:
  backend: memory
  ttl: 600
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.MQTT.Broker.ClientID != "test-client" {
		t.Errorf("MQTT.Broker.ClientID = %q, want %q", cfg.MQTT.Broker.ClientID, "test-client")
	}
	if got := cfg.SessionTTL(); got != 10*time.Minute {
		t.Errorf("SessionTTL() = %v, want 10m", got)
	}
	// Defaults survive partial files.
	if cfg.Auth.DefaultRoleID != 2 {
		t.Errorf("Auth.DefaultRoleID = %d, want 2", cfg.Auth.DefaultRoleID)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Database.Driver = %q, want sqlite3", cfg.Database.Driver)
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
database:
  driver: mysql
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error for unsupported driver, got nil")
	}
	if !strings.Contains(err.Error(), "database.driver") {
		t.Errorf("error = %v, want mention of database.driver", err)
	}
}

func TestLoad_PostgresFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_DATABASE", "homes")
	t.Setenv("DB_USER", "smarthome")
	t.Setenv("DB_PASSWORD", "s3cret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want db.internal", cfg.Database.Host)
	}
	if cfg.Database.Port != 6543 {
		t.Errorf("Database.Port = %d, want 6543", cfg.Database.Port)
	}
	if cfg.Database.Name != "homes" {
		t.Errorf("Database.Name = %q, want homes", cfg.Database.Name)
	}
	if cfg.Database.User != "smarthome" || cfg.Database.Password != "s3cret" {
		t.Errorf("Database credentials = %q/%q, want smarthome/s3cret", cfg.Database.User, cfg.Database.Password)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing sqlite path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name: "postgres without password",
			mutate: func(c *Config) {
				c.Database.Driver = "pgx"
				c.Database.User = "smarthome"
			},
			wantErr: true,
		},
		{
			name: "postgres complete",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
				c.Database.User = "smarthome"
				c.Database.Password = "pw"
			},
			wantErr: false,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "unknown session backend",
			mutate:  func(c *Config) { c.Session.Backend = "memcached" },
			wantErr: true,
		},
		{
			name:    "non-positive default role",
			mutate:  func(c *Config) { c.Auth.DefaultRoleID = 0 },
			wantErr: true,
		},
		{
			name: "influxdb enabled without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
			},
			wantErr: true,
		},
		{
			name:    "file logging without path",
			mutate:  func(c *Config) { c.Logging.Output = "file" },
			wantErr: true,
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

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("SMARTHOME_DATABASE_PATH", "/custom/path.db")
	t.Setenv("SMARTHOME_MQTT_HOST", "mqtt.example.com")
	t.Setenv("SMARTHOME_MQTT_USERNAME", "testuser")
	t.Setenv("SMARTHOME_MQTT_PASSWORD", "testpass")
	t.Setenv("SMARTHOME_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("SMARTHOME_REDIS_ADDR", "redis:6379")
	t.Setenv("SMARTHOME_LOG_LEVEL", "debug")
	t.Setenv("DB_PORT", "not-a-number")

	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.Session.Redis.Addr != "redis:6379" {
		t.Errorf("Session.Redis.Addr = %q, want %q", cfg.Session.Redis.Addr, "redis:6379")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// An unparsable port keeps the default.
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}
	if cfg.Database.Name != "smarthome" {
		t.Errorf("defaultConfig Database.Name = %q, want smarthome", cfg.Database.Name)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Session.Backend != "memory" {
		t.Errorf("defaultConfig Session.Backend = %q, want memory", cfg.Session.Backend)
	}
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for SmartHome Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Session  SessionConfig  `yaml:"session"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig selects the SQL driver and its connection settings.
//
// SQLite drivers ("sqlite3", "sqlite") use Path; Postgres drivers
// ("postgres", "pgx") use Host, Port, Name, User, Password and SSLMode.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	Path         string `yaml:"path"`
	WALMode      bool   `yaml:"wal_mode"`
	BusyTimeout  int    `yaml:"busy_timeout"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Name         string `yaml:"name"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// AuthConfig contains account defaults.
type AuthConfig struct {
	// DefaultRoleID is the role assigned to self-registered users.
	DefaultRoleID int64 `yaml:"default_role_id"`
}

// SessionConfig selects where login sessions are kept.
type SessionConfig struct {
	// Backend is "memory" or "redis".
	Backend string      `yaml:"backend"`
	TTL     int         `yaml:"ttl"` // seconds
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig contains Redis connection settings for the session store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
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

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
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
	Level  string            `yaml:"level"`
	Format string            `yaml:"format"`
	Output string            `yaml:"output"`
	File   FileLoggingConfig `yaml:"file"`
}

// FileLoggingConfig contains file-based logging settings.
// Rotation is left to the host (logrotate or similar).
type FileLoggingConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// An empty path, or a path that does not exist, skips step 2 so the
// application can be configured from the environment alone.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Environment-only configuration.
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:       "sqlite3",
			Path:         "./data/smarthome.db",
			WALMode:      true,
			BusyTimeout:  5,
			Host:         "localhost",
			Port:         5432,
			Name:         "smarthome",
			SSLMode:      "disable",
			MaxOpenConns: 5,
		},
		Auth: AuthConfig{
			DefaultRoleID: 2,
		},
		Session: SessionConfig{
			Backend: "memory",
			TTL:     3600,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "smarthome-core",
			},
			QoS:         1,
			TopicPrefix: "smarthome",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			Org:    "smarthome",
			Bucket: "devices",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// The DB_* names are shared with the provisioning scripts; the rest follow
// the pattern SMARTHOME_SECTION_KEY.
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("DB_DATABASE"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("SMARTHOME_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("SMARTHOME_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SMARTHOME_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SMARTHOME_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("SMARTHOME_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Sessions
	if v := os.Getenv("SMARTHOME_REDIS_ADDR"); v != "" {
		cfg.Session.Redis.Addr = v
	}

	// Logging
	if v := os.Getenv("SMARTHOME_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	switch c.Database.Driver {
	case "sqlite3", "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for sqlite drivers")
		}
	case "postgres", "pgx":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required (set DB_HOST)")
		}
		if c.Database.Name == "" {
			errs = append(errs, "database.name is required (set DB_DATABASE)")
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required (set DB_USER)")
		}
		if c.Database.Password == "" {
			errs = append(errs, "database.password is required (set DB_PASSWORD)")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			errs = append(errs, "database.port must be between 1 and 65535")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite3, sqlite, postgres, pgx)", c.Database.Driver))
	}

	if c.Auth.DefaultRoleID < 1 {
		errs = append(errs, "auth.default_role_id must be positive")
	}

	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.Redis.Addr == "" {
			errs = append(errs, "session.redis.addr is required for the redis backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("session.backend %q is not supported (memory, redis)", c.Session.Backend))
	}
	if c.Session.TTL < 0 {
		errs = append(errs, "session.ttl must not be negative")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if strings.EqualFold(c.Logging.Output, "file") && c.Logging.File.Path == "" {
		errs = append(errs, "logging.file.path is required for file output")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// SessionTTL returns the session lifetime as a Duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTL) * time.Second
}

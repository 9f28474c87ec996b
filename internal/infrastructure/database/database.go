package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "github.com/lib/pq"              // Postgres driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver (cgo)
	_ "modernc.org/sqlite"             // SQLite driver (pure Go)
)

// Database configuration constants.
const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second

	// connMaxIdleTime is how long idle connections are kept open.
	connMaxIdleTime = 30 * time.Minute

	// defaultMaxOpenConns is the Postgres pool size when none is configured.
	defaultMaxOpenConns = 5
)

// Supported driver names, as registered with database/sql.
const (
	DriverSQLite3  = "sqlite3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// Config contains database configuration options.
// These map to the database section of config.yaml.
type Config struct {
	// Driver selects the database/sql driver: sqlite3, sqlite, postgres or pgx.
	Driver string

	// Path is the filesystem path to the SQLite database file.
	// The directory will be created if it doesn't exist.
	Path string

	// WALMode enables Write-Ahead Logging (SQLite only).
	WALMode bool

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int

	// Postgres connection settings.
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string

	// MaxOpenConns caps the Postgres pool. SQLite always uses one connection.
	MaxOpenConns int
}

// openFunc matches sql.Open so tests can substitute go-sqlmock.
type openFunc func(driverName, dataSourceName string) (*sql.DB, error)

// Manager owns the single shared handle to the relational store.
//
// The handle is opened lazily by Connect and re-opened if a liveness ping
// fails. Repositories obtain statement handles through Cursor, Begin, Write
// and InTx, never from the raw *sql.DB.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Manager struct {
	cfg     Config
	dialect Dialect
	openFn  openFunc

	mu sync.Mutex
	db *sql.DB
}

// NewManager creates a Manager for cfg. No connection is made until the
// first call to Connect (directly or through Cursor, Begin, Write, InTx).
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite3
	}
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	return &Manager{
		cfg:     cfg,
		dialect: dialect,
		openFn:  sql.Open,
	}, nil
}

// Dialect returns the SQL dialect of the configured driver.
func (m *Manager) Dialect() Dialect {
	return m.dialect
}

// Driver returns the configured driver name.
func (m *Manager) Driver() string {
	return m.cfg.Driver
}

// Connect returns a live handle, opening one when none is held.
//
// A held handle is pinged first; if the ping fails the handle is closed and
// re-opened. Failures wrap ErrConnectionFailure.
func (m *Manager) Connect(ctx context.Context) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		if err := ping(ctx, m.db); err == nil {
			return m.db, nil
		}
		m.db.Close() //nolint:errcheck // Replacing a dead handle
		m.db = nil
	}

	db, err := m.open(ctx)
	if err != nil {
		return nil, err
	}
	m.db = db
	return db, nil
}

func (m *Manager) open(ctx context.Context) (*sql.DB, error) {
	if m.dialect == DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(m.cfg.Path), dirPermissions); err != nil {
			return nil, fmt.Errorf("%w: creating database directory: %w", ErrConnectionFailure, err)
		}
	}

	db, err := m.openFn(m.cfg.Driver, m.dsn())
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrConnectionFailure, m.cfg.Driver, err)
	}

	if m.dialect == DialectSQLite {
		// SQLite only supports one writer; one connection also keeps
		// transaction-scoped work on the same session.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		maxOpen := m.cfg.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = defaultMaxOpenConns
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := ping(ctx, db); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: verifying %s connection: %w", ErrConnectionFailure, m.cfg.Driver, err)
	}

	if m.dialect == DialectSQLite {
		_ = os.Chmod(m.cfg.Path, filePermissions) //nolint:errcheck // File may not exist until first write
	}
	return db, nil
}

// dsn builds the data source name for the configured driver.
func (m *Manager) dsn() string {
	switch m.cfg.Driver {
	case DriverSQLite3:
		// See: https://github.com/mattn/go-sqlite3#connection-string
		dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
			m.cfg.Path, m.cfg.BusyTimeout*msPerSecond)
		if m.cfg.WALMode {
			dsn += "&_journal_mode=WAL&_synchronous=NORMAL"
		}
		return dsn
	case DriverSQLite:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
			m.cfg.Path, m.cfg.BusyTimeout*msPerSecond)
		if m.cfg.WALMode {
			dsn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
		}
		return dsn
	default:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(m.cfg.User, m.cfg.Password),
			Host:   m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port),
			Path:   "/" + m.cfg.Name,
		}
		q := url.Values{}
		sslMode := m.cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		q.Set("sslmode", sslMode)
		u.RawQuery = q.Encode()
		return u.String()
	}
}

func ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()
	return db.PingContext(ctx)
}

// Disconnect closes the handle if one is open. Calling it again is a no-op.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	db := m.db
	m.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// HealthCheck verifies the database is accessible and functioning.
func (m *Manager) HealthCheck(ctx context.Context) error {
	db, err := m.Connect(ctx)
	if err != nil {
		return err
	}
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

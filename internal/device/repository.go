package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/location"
)

// Getter resolves a device ID.
type Getter interface {
	// GetByID returns ErrDeviceNotFound if the device does not exist or one
	// of its relations cannot be resolved.
	GetByID(ctx context.Context, id int64) (*Device, error)
}

// Repository defines the interface for device persistence.
type Repository interface {
	Getter

	// Insert creates a device. Returns ErrInvalidReference when any of its
	// relations does not exist.
	Insert(ctx context.Context, d *Device) error

	// Update stores the name and all four relations of the device.
	Update(ctx context.Context, d *Device) error

	Delete(ctx context.Context, id int64) error

	// List returns all loadable devices ordered by ID.
	List(ctx context.Context) ([]Device, error)

	// ListByHome returns the loadable devices of one home.
	ListByHome(ctx context.Context, homeID int64) ([]Device, error)

	// SearchByName returns devices of one home whose name contains
	// substring, ignoring case.
	SearchByName(ctx context.Context, substring string, homeID int64) ([]Device, error)

	// ChangeState sets the device's state.
	ChangeState(ctx context.Context, deviceID, stateID int64) error
}

// SQLRepository implements Repository. Relations are loaded through a
// Resolver after each result set is closed.
type SQLRepository struct {
	db       *database.Manager
	resolver Resolver
	logger   Logger
}

// NewRepository creates a device repository.
func NewRepository(db *database.Manager, resolver Resolver) *SQLRepository {
	return &SQLRepository{db: db, resolver: resolver, logger: noopLogger{}}
}

// SetLogger sets the logger used to report skipped rows.
func (r *SQLRepository) SetLogger(logger Logger) {
	r.logger = logger
}

const deviceColumns = `id, name, state_id, device_type_id, location_id, home_id`

// deviceRow is a device as stored, before its relations are resolved.
type deviceRow struct {
	id         int64
	name       string
	stateID    int64
	typeID     int64
	locationID int64
	homeID     int64
}

// Insert creates a device and assigns its ID.
func (r *SQLRepository) Insert(ctx context.Context, d *Device) error {
	stateID, typeID, locationID, homeID := d.refs()
	return r.db.Write(ctx, func(c *database.Cursor) error {
		id, err := c.InsertID(ctx,
			`INSERT INTO device (name, state_id, device_type_id, location_id, home_id)
			VALUES (?, ?, ?, ?, ?)`,
			d.Name, stateID, typeID, locationID, homeID,
		)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("inserting device: %w", ErrInvalidReference)
			}
			return fmt.Errorf("inserting device: %w", err)
		}
		d.ID = id
		return nil
	})
}

// Update stores a device's name and relations.
func (r *SQLRepository) Update(ctx context.Context, d *Device) error {
	stateID, typeID, locationID, homeID := d.refs()
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx,
			`UPDATE device SET name = ?, state_id = ?, device_type_id = ?, location_id = ?, home_id = ?
			WHERE id = ?`,
			d.Name, stateID, typeID, locationID, homeID, d.ID,
		)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("updating device %d: %w", d.ID, ErrInvalidReference)
			}
			return fmt.Errorf("updating device %d: %w", d.ID, err)
		}
		return database.RequireRow(res, ErrDeviceNotFound)
	})
}

// Delete removes a device. Its events keep their history without it.
func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "DELETE FROM device WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting device %d: %w", id, err)
		}
		return database.RequireRow(res, ErrDeviceNotFound)
	})
}

// ChangeState sets a device's state.
func (r *SQLRepository) ChangeState(ctx context.Context, deviceID, stateID int64) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "UPDATE device SET state_id = ? WHERE id = ?", stateID, deviceID)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("changing state of device %d: %w", deviceID, ErrInvalidReference)
			}
			return fmt.Errorf("changing state of device %d: %w", deviceID, err)
		}
		return database.RequireRow(res, ErrDeviceNotFound)
	})
}

// GetByID retrieves a fully loaded device.
func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*Device, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	var row deviceRow
	err = c.QueryRow(ctx, "SELECT "+deviceColumns+" FROM device WHERE id = ?", id).
		Scan(&row.id, &row.name, &row.stateID, &row.typeID, &row.locationID, &row.homeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("scanning device %d: %w", id, err)
	}

	d, err := r.hydrate(ctx, row)
	if isUnresolved(err) {
		r.logger.Debug("device relation missing", "device_id", row.id, "error", err)
		return nil, ErrDeviceNotFound
	}
	return d, err
}

// List returns all loadable devices.
func (r *SQLRepository) List(ctx context.Context) ([]Device, error) {
	return r.queryDevices(ctx, "SELECT "+deviceColumns+" FROM device ORDER BY id")
}

// ListByHome returns the loadable devices of a home.
func (r *SQLRepository) ListByHome(ctx context.Context, homeID int64) ([]Device, error) {
	return r.queryDevices(ctx, "SELECT "+deviceColumns+" FROM device WHERE home_id = ? ORDER BY id", homeID)
}

// SearchByName returns a home's devices whose name contains substring,
// ignoring case. SQLite only folds ASCII in LOWER and LIKE, so on SQLite
// names are matched in Go.
func (r *SQLRepository) SearchByName(ctx context.Context, substring string, homeID int64) ([]Device, error) {
	if r.db.Dialect() == database.DialectPostgres {
		const query = "SELECT " + deviceColumns + ` FROM device
			WHERE home_id = ? AND name ILIKE ? ESCAPE '\'
			ORDER BY id`
		return r.queryDevices(ctx, query, homeID, "%"+escapeLike(substring)+"%")
	}

	rows, err := r.scanRows(ctx, "SELECT "+deviceColumns+" FROM device WHERE home_id = ? ORDER BY id", homeID)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(substring)
	matched := rows[:0]
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.name), needle) {
			matched = append(matched, row)
		}
	}
	return r.hydrateRows(ctx, matched)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *SQLRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.scanRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r.hydrateRows(ctx, rows)
}

func (r *SQLRepository) hydrateRows(ctx context.Context, rows []deviceRow) ([]Device, error) {
	devices := make([]Device, 0, len(rows))
	for _, row := range rows {
		d, err := r.hydrate(ctx, row)
		if isUnresolved(err) {
			r.logger.Debug("skipping unloadable device", "device_id", row.id, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	return devices, nil
}

// scanRows reads every row and closes the result set before relations are
// resolved, since SQLite runs on one connection.
func (r *SQLRepository) scanRows(ctx context.Context, query string, args ...any) ([]deviceRow, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var out []deviceRow
	for rows.Next() {
		var row deviceRow
		if err := rows.Scan(&row.id, &row.name, &row.stateID, &row.typeID, &row.locationID, &row.homeID); err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) hydrate(ctx context.Context, row deviceRow) (*Device, error) {
	state, err := r.resolver.State(ctx, row.stateID)
	if err != nil {
		return nil, err
	}
	typ, err := r.resolver.DeviceType(ctx, row.typeID)
	if err != nil {
		return nil, err
	}
	loc, err := r.resolver.Location(ctx, row.locationID)
	if err != nil {
		return nil, err
	}
	home, err := r.resolver.Home(ctx, row.homeID)
	if err != nil {
		return nil, err
	}
	return &Device{ID: row.id, Name: row.name, State: state, Type: typ, Location: loc, Home: home}, nil
}

// isUnresolved reports whether err means a relation does not exist.
func isUnresolved(err error) bool {
	return errors.Is(err, ErrStateNotFound) ||
		errors.Is(err, ErrDeviceTypeNotFound) ||
		errors.Is(err, location.ErrLocationNotFound) ||
		errors.Is(err, location.ErrHomeNotFound)
}

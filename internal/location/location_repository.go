package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// LocationGetter resolves a location ID while loading devices.
type LocationGetter interface {
	// GetByID returns ErrLocationNotFound if the location does not exist or
	// its home cannot be loaded.
	GetByID(ctx context.Context, id int64) (*Location, error)
}

// LocationRepository defines the interface for location persistence.
type LocationRepository interface {
	LocationGetter

	// Insert creates a location. Returns ErrInvalidReference when its home
	// does not exist.
	Insert(ctx context.Context, loc *Location) error
	Update(ctx context.Context, loc *Location) error

	// Delete returns ErrInUse while devices are placed in the location.
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context) ([]Location, error)
	ListByHome(ctx context.Context, homeID int64) ([]Location, error)
}

// SQLLocationRepository implements LocationRepository. Each location's home
// is loaded through a HomeGetter.
type SQLLocationRepository struct {
	db     *database.Manager
	homes  HomeGetter
	logger Logger
}

// NewLocationRepository creates a location repository.
func NewLocationRepository(db *database.Manager, homes HomeGetter) *SQLLocationRepository {
	return &SQLLocationRepository{db: db, homes: homes, logger: noopLogger{}}
}

// SetLogger sets the logger used to report skipped rows.
func (r *SQLLocationRepository) SetLogger(logger Logger) {
	r.logger = logger
}

type locationRow struct {
	id     int64
	name   string
	homeID int64
}

// Insert creates a location and assigns its ID.
func (r *SQLLocationRepository) Insert(ctx context.Context, loc *Location) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		id, err := c.InsertID(ctx, "INSERT INTO location (name, home_id) VALUES (?, ?)", loc.Name, loc.HomeID())
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("inserting location: %w", ErrInvalidReference)
			}
			return fmt.Errorf("inserting location: %w", err)
		}
		loc.ID = id
		return nil
	})
}

// Update changes a location's name and home.
func (r *SQLLocationRepository) Update(ctx context.Context, loc *Location) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "UPDATE location SET name = ?, home_id = ? WHERE id = ?",
			loc.Name, loc.HomeID(), loc.ID)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("updating location %d: %w", loc.ID, ErrInvalidReference)
			}
			return fmt.Errorf("updating location %d: %w", loc.ID, err)
		}
		return database.RequireRow(res, ErrLocationNotFound)
	})
}

// Delete removes a location by ID.
func (r *SQLLocationRepository) Delete(ctx context.Context, id int64) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "DELETE FROM location WHERE id = ?", id)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return ErrInUse
			}
			return fmt.Errorf("deleting location %d: %w", id, err)
		}
		return database.RequireRow(res, ErrLocationNotFound)
	})
}

// GetByID retrieves a location with its home.
func (r *SQLLocationRepository) GetByID(ctx context.Context, id int64) (*Location, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	var row locationRow
	err = c.QueryRow(ctx, "SELECT id, name, home_id FROM location WHERE id = ?", id).
		Scan(&row.id, &row.name, &row.homeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("scanning location %d: %w", id, err)
	}

	loc, err := r.hydrate(ctx, row)
	if errors.Is(err, ErrHomeNotFound) {
		r.logger.Debug("location home missing", "location_id", row.id, "home_id", row.homeID)
		return nil, ErrLocationNotFound
	}
	return loc, err
}

// List returns all loadable locations ordered by ID.
func (r *SQLLocationRepository) List(ctx context.Context) ([]Location, error) {
	return r.queryLocations(ctx, "SELECT id, name, home_id FROM location ORDER BY id")
}

// ListByHome returns the locations of one home ordered by ID.
func (r *SQLLocationRepository) ListByHome(ctx context.Context, homeID int64) ([]Location, error) {
	return r.queryLocations(ctx, "SELECT id, name, home_id FROM location WHERE home_id = ? ORDER BY id", homeID)
}

func (r *SQLLocationRepository) queryLocations(ctx context.Context, query string, args ...any) ([]Location, error) {
	rows, err := r.scanRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	locs := make([]Location, 0, len(rows))
	for _, row := range rows {
		loc, err := r.hydrate(ctx, row)
		if errors.Is(err, ErrHomeNotFound) {
			r.logger.Debug("skipping location with missing home", "location_id", row.id, "home_id", row.homeID)
			continue
		}
		if err != nil {
			return nil, err
		}
		locs = append(locs, *loc)
	}
	return locs, nil
}

// scanRows reads and closes the result set before homes are resolved.
func (r *SQLLocationRepository) scanRows(ctx context.Context, query string, args ...any) ([]locationRow, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	var out []locationRow
	for rows.Next() {
		var row locationRow
		if err := rows.Scan(&row.id, &row.name, &row.homeID); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLLocationRepository) hydrate(ctx context.Context, row locationRow) (*Location, error) {
	home, err := r.homes.GetByID(ctx, row.homeID)
	if err != nil {
		return nil, err
	}
	return &Location{ID: row.id, Name: row.name, Home: home}, nil
}

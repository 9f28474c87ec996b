package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// StateGetter resolves a state ID.
type StateGetter interface {
	GetByID(ctx context.Context, id int64) (*State, error)
}

// TypeGetter resolves a device type ID.
type TypeGetter interface {
	GetByID(ctx context.Context, id int64) (*DeviceType, error)
}

// StateRepository defines the interface for state persistence.
type StateRepository interface {
	StateGetter
	Insert(ctx context.Context, s *State) error
	Update(ctx context.Context, s *State) error
	Delete(ctx context.Context, id int64) error
	GetByName(ctx context.Context, name string) (*State, error)
	List(ctx context.Context) ([]State, error)
}

// TypeRepository defines the interface for device type persistence.
type TypeRepository interface {
	TypeGetter
	Insert(ctx context.Context, t *DeviceType) error
	Update(ctx context.Context, t *DeviceType) error
	Delete(ctx context.Context, id int64) error
	GetByName(ctx context.Context, name string) (*DeviceType, error)
	List(ctx context.Context) ([]DeviceType, error)
}

// SQLStateRepository implements StateRepository.
type SQLStateRepository struct {
	db *database.Manager
}

// NewStateRepository creates a state repository.
func NewStateRepository(db *database.Manager) *SQLStateRepository {
	return &SQLStateRepository{db: db}
}

// Insert creates a state and assigns its ID.
func (r *SQLStateRepository) Insert(ctx context.Context, s *State) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		id, err := c.InsertID(ctx, "INSERT INTO state (name) VALUES (?)", s.Name)
		if err != nil {
			return fmt.Errorf("inserting state: %w", err)
		}
		s.ID = id
		return nil
	})
}

// Update renames a state.
func (r *SQLStateRepository) Update(ctx context.Context, s *State) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "UPDATE state SET name = ? WHERE id = ?", s.Name, s.ID)
		if err != nil {
			return fmt.Errorf("updating state %d: %w", s.ID, err)
		}
		return database.RequireRow(res, ErrStateNotFound)
	})
}

// Delete removes a state.
func (r *SQLStateRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "state", id, ErrStateNotFound)
}

// GetByID retrieves a state.
func (r *SQLStateRepository) GetByID(ctx context.Context, id int64) (*State, error) {
	return r.get(ctx, "SELECT id, name FROM state WHERE id = ?", id)
}

// GetByName retrieves a state by exact name.
func (r *SQLStateRepository) GetByName(ctx context.Context, name string) (*State, error) {
	return r.get(ctx, "SELECT id, name FROM state WHERE name = ? ORDER BY id LIMIT 1", name)
}

func (r *SQLStateRepository) get(ctx context.Context, query string, arg any) (*State, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	var s State
	if err := c.QueryRow(ctx, query, arg).Scan(&s.ID, &s.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("scanning state: %w", err)
	}
	return &s, nil
}

// List returns all states ordered by ID.
func (r *SQLStateRepository) List(ctx context.Context) ([]State, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, "SELECT id, name FROM state ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing states: %w", err)
	}
	defer rows.Close()

	states := []State{}
	for rows.Next() {
		var s State
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scanning state: %w", err)
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

// SQLTypeRepository implements TypeRepository.
type SQLTypeRepository struct {
	db *database.Manager
}

// NewTypeRepository creates a device type repository.
func NewTypeRepository(db *database.Manager) *SQLTypeRepository {
	return &SQLTypeRepository{db: db}
}

// Insert creates a device type and assigns its ID.
func (r *SQLTypeRepository) Insert(ctx context.Context, t *DeviceType) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		id, err := c.InsertID(ctx, "INSERT INTO device_type (name, characteristic) VALUES (?, ?)",
			t.Name, t.Characteristics)
		if err != nil {
			return fmt.Errorf("inserting device type: %w", err)
		}
		t.ID = id
		return nil
	})
}

// Update changes a device type's name and characteristics.
func (r *SQLTypeRepository) Update(ctx context.Context, t *DeviceType) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "UPDATE device_type SET name = ?, characteristic = ? WHERE id = ?",
			t.Name, t.Characteristics, t.ID)
		if err != nil {
			return fmt.Errorf("updating device type %d: %w", t.ID, err)
		}
		return database.RequireRow(res, ErrDeviceTypeNotFound)
	})
}

// Delete removes a device type.
func (r *SQLTypeRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "device_type", id, ErrDeviceTypeNotFound)
}

// GetByID retrieves a device type.
func (r *SQLTypeRepository) GetByID(ctx context.Context, id int64) (*DeviceType, error) {
	return r.get(ctx, "SELECT id, name, characteristic FROM device_type WHERE id = ?", id)
}

// GetByName retrieves a device type by exact name.
func (r *SQLTypeRepository) GetByName(ctx context.Context, name string) (*DeviceType, error) {
	return r.get(ctx, "SELECT id, name, characteristic FROM device_type WHERE name = ? ORDER BY id LIMIT 1", name)
}

func (r *SQLTypeRepository) get(ctx context.Context, query string, arg any) (*DeviceType, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	var t DeviceType
	if err := c.QueryRow(ctx, query, arg).Scan(&t.ID, &t.Name, &t.Characteristics); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceTypeNotFound
		}
		return nil, fmt.Errorf("scanning device type: %w", err)
	}
	return &t, nil
}

// List returns all device types ordered by ID.
func (r *SQLTypeRepository) List(ctx context.Context) ([]DeviceType, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, "SELECT id, name, characteristic FROM device_type ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing device types: %w", err)
	}
	defer rows.Close()

	types := []DeviceType{}
	for rows.Next() {
		var t DeviceType
		if err := rows.Scan(&t.ID, &t.Name, &t.Characteristics); err != nil {
			return nil, fmt.Errorf("scanning device type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// deleteByID removes a catalogue row, mapping a foreign key violation to
// ErrInUse. table is always a package constant.
func deleteByID(ctx context.Context, db *database.Manager, table string, id int64, notFound error) error {
	return db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return ErrInUse
			}
			return fmt.Errorf("deleting %s %d: %w", table, id, err)
		}
		return database.RequireRow(res, notFound)
	})
}

package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// HomeGetter resolves a home ID while loading dependent entities.
type HomeGetter interface {
	// GetByID returns ErrHomeNotFound if the home does not exist.
	GetByID(ctx context.Context, id int64) (*Home, error)
}

// HomeRepository defines the interface for home persistence and the
// user-to-home ownership links.
type HomeRepository interface {
	HomeGetter

	Insert(ctx context.Context, home *Home) error
	Update(ctx context.Context, home *Home) error

	// Delete removes a home and its memberships. Returns ErrInUse while
	// locations, devices or automations still belong to it.
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context) ([]Home, error)

	// ListByUser returns the homes linked to email, ordered by ID.
	ListByUser(ctx context.Context, email string) ([]Home, error)

	// AddMember links a user to a home. Linking twice is not an error.
	AddMember(ctx context.Context, homeID int64, email string) error

	// RemoveMember unlinks a user. Returns ErrNotMember if no link exists.
	RemoveMember(ctx context.Context, homeID int64, email string) error
}

// SQLHomeRepository implements HomeRepository on the shared database manager.
type SQLHomeRepository struct {
	db *database.Manager
}

// NewHomeRepository creates a home repository.
func NewHomeRepository(db *database.Manager) *SQLHomeRepository {
	return &SQLHomeRepository{db: db}
}

// Insert creates a home and assigns its ID.
func (r *SQLHomeRepository) Insert(ctx context.Context, home *Home) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		id, err := c.InsertID(ctx, "INSERT INTO home (name) VALUES (?)", home.Name)
		if err != nil {
			return fmt.Errorf("inserting home: %w", err)
		}
		home.ID = id
		return nil
	})
}

// Update renames a home.
func (r *SQLHomeRepository) Update(ctx context.Context, home *Home) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "UPDATE home SET name = ? WHERE id = ?", home.Name, home.ID)
		if err != nil {
			return fmt.Errorf("updating home %d: %w", home.ID, err)
		}
		return database.RequireRow(res, ErrHomeNotFound)
	})
}

// Delete removes a home by ID.
func (r *SQLHomeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "DELETE FROM home WHERE id = ?", id)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return ErrInUse
			}
			return fmt.Errorf("deleting home %d: %w", id, err)
		}
		return database.RequireRow(res, ErrHomeNotFound)
	})
}

// GetByID retrieves a home by ID.
func (r *SQLHomeRepository) GetByID(ctx context.Context, id int64) (*Home, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	var h Home
	err = c.QueryRow(ctx, "SELECT id, name FROM home WHERE id = ?", id).Scan(&h.ID, &h.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHomeNotFound
		}
		return nil, fmt.Errorf("scanning home %d: %w", id, err)
	}
	return &h, nil
}

// List returns all homes ordered by ID.
func (r *SQLHomeRepository) List(ctx context.Context) ([]Home, error) {
	return r.queryHomes(ctx, "SELECT id, name FROM home ORDER BY id")
}

// ListByUser returns the homes a user belongs to.
func (r *SQLHomeRepository) ListByUser(ctx context.Context, email string) ([]Home, error) {
	const query = `SELECT h.id, h.name FROM home h
		JOIN user_home uh ON uh.home_id = h.id
		WHERE uh.user_email = ?
		ORDER BY h.id`
	return r.queryHomes(ctx, query, email)
}

// AddMember links a user to a home.
func (r *SQLHomeRepository) AddMember(ctx context.Context, homeID int64, email string) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		_, err := c.Exec(ctx, `INSERT INTO user_home (user_email, home_id) VALUES (?, ?)
			ON CONFLICT (user_email, home_id) DO NOTHING`, email, homeID)
		switch {
		case err == nil:
			return nil
		case database.IsForeignKeyViolation(err):
			return fmt.Errorf("adding member %s to home %d: %w", email, homeID, ErrInvalidReference)
		default:
			return fmt.Errorf("adding member %s to home %d: %w", email, homeID, err)
		}
	})
}

// RemoveMember unlinks a user from a home.
func (r *SQLHomeRepository) RemoveMember(ctx context.Context, homeID int64, email string) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "DELETE FROM user_home WHERE user_email = ? AND home_id = ?", email, homeID)
		if err != nil {
			return fmt.Errorf("removing member %s from home %d: %w", email, homeID, err)
		}
		return database.RequireRow(res, ErrNotMember)
	})
}

func (r *SQLHomeRepository) queryHomes(ctx context.Context, query string, args ...any) ([]Home, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying homes: %w", err)
	}
	defer rows.Close()

	homes := []Home{}
	for rows.Next() {
		var h Home
		if err := rows.Scan(&h.ID, &h.Name); err != nil {
			return nil, fmt.Errorf("scanning home: %w", err)
		}
		homes = append(homes, h)
	}
	return homes, rows.Err()
}

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// RoleRepository defines the interface for role persistence.
type RoleRepository interface {
	RoleGetter

	// Insert creates a role and assigns its generated ID.
	// Returns ErrRoleExists if the name is taken.
	Insert(ctx context.Context, role *Role) error

	// Update renames a role. Returns ErrRoleNotFound if it does not exist.
	Update(ctx context.Context, role *Role) error

	// Delete removes a role. Returns ErrRoleNotFound if it does not exist
	// and ErrInUse if users still hold it.
	Delete(ctx context.Context, id int64) error

	// GetByName retrieves a role by exact name.
	GetByName(ctx context.Context, name string) (*Role, error)

	// List returns all roles ordered by ID.
	List(ctx context.Context) ([]Role, error)
}

// RoleGetter resolves a role ID while loading users.
type RoleGetter interface {
	// GetByID returns ErrRoleNotFound if the role does not exist.
	GetByID(ctx context.Context, id int64) (*Role, error)
}

// SQLRoleRepository implements RoleRepository on the shared database manager.
type SQLRoleRepository struct {
	db *database.Manager
}

// NewRoleRepository creates a role repository.
func NewRoleRepository(db *database.Manager) *SQLRoleRepository {
	return &SQLRoleRepository{db: db}
}

// Insert creates a role.
func (r *SQLRoleRepository) Insert(ctx context.Context, role *Role) error {
	if strings.TrimSpace(role.Name) == "" {
		return errors.New("inserting role: name is empty")
	}
	return r.db.Write(ctx, func(c *database.Cursor) error {
		id, err := c.InsertID(ctx, "INSERT INTO role (name) VALUES (?)", role.Name)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return ErrRoleExists
			}
			return fmt.Errorf("inserting role: %w", err)
		}
		role.ID = id
		return nil
	})
}

// Update renames a role.
func (r *SQLRoleRepository) Update(ctx context.Context, role *Role) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "UPDATE role SET name = ? WHERE id = ?", role.Name, role.ID)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return ErrRoleExists
			}
			return fmt.Errorf("updating role: %w", err)
		}
		return database.RequireRow(res, ErrRoleNotFound)
	})
}

// Delete removes a role by ID.
func (r *SQLRoleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "DELETE FROM role WHERE id = ?", id)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return ErrInUse
			}
			return fmt.Errorf("deleting role: %w", err)
		}
		return database.RequireRow(res, ErrRoleNotFound)
	})
}

// GetByID retrieves a role by ID.
func (r *SQLRoleRepository) GetByID(ctx context.Context, id int64) (*Role, error) {
	return r.getRole(ctx, "SELECT id, name FROM role WHERE id = ?", id)
}

// GetByName retrieves a role by name.
func (r *SQLRoleRepository) GetByName(ctx context.Context, name string) (*Role, error) {
	return r.getRole(ctx, "SELECT id, name FROM role WHERE name = ?", name)
}

func (r *SQLRoleRepository) getRole(ctx context.Context, query string, args ...any) (*Role, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	var role Role
	if err := c.QueryRow(ctx, query, args...).Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("scanning role: %w", err)
	}
	return &role, nil
}

// List returns all roles ordered by ID.
func (r *SQLRoleRepository) List(ctx context.Context) ([]Role, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, "SELECT id, name FROM role ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	defer rows.Close()

	roles := []Role{}
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating roles: %w", err)
	}
	return roles, nil
}

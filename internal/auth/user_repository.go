package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	// Insert creates a user. Returns ErrEmailExists for a taken email and
	// ErrInvalidReference when the role does not exist.
	Insert(ctx context.Context, user *User) error

	// Update changes name and role. Returns ErrUserNotFound if absent.
	Update(ctx context.Context, user *User) error

	// Delete removes a user by email. Returns ErrUserNotFound if absent.
	Delete(ctx context.Context, email string) error

	// GetByID is GetByEmail; the email is the user's identity.
	GetByID(ctx context.Context, email string) (*User, error)

	// GetByEmail returns ErrUserNotFound if absent or if the user's role
	// cannot be loaded.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List returns all loadable users ordered by email.
	List(ctx context.Context) ([]User, error)

	// ChangeRole assigns roleID to the user.
	ChangeRole(ctx context.Context, email string, roleID int64) error

	// UpdatePassword stores a new encoded password hash.
	UpdatePassword(ctx context.Context, email, hash string) error

	// ValidateCredentials returns the user when password matches,
	// ErrInvalidCredentials on mismatch and ErrUserNotFound for an unknown email.
	ValidateCredentials(ctx context.Context, email, password string) (*User, error)

	// Count returns the number of users.
	Count(ctx context.Context) (int, error)
}

// SQLUserRepository implements UserRepository on the shared database manager.
// Roles are loaded one user at a time through a RoleGetter.
type SQLUserRepository struct {
	db       *database.Manager
	roles    RoleGetter
	verifier CredentialVerifier
	logger   Logger
}

// NewUserRepository creates a user repository.
func NewUserRepository(db *database.Manager, roles RoleGetter, verifier CredentialVerifier) *SQLUserRepository {
	return &SQLUserRepository{db: db, roles: roles, verifier: verifier, logger: noopLogger{}}
}

// SetLogger sets the logger for the repository.
func (r *SQLUserRepository) SetLogger(logger Logger) {
	r.logger = logger
}

const userColumns = `email, password, name, role_id`

// userRow is a user as stored, before its role is resolved.
type userRow struct {
	email, password, name string
	roleID                int64
}

// Insert creates a user.
func (r *SQLUserRepository) Insert(ctx context.Context, user *User) error {
	if user.Role == nil {
		return fmt.Errorf("inserting user: %w", ErrInvalidReference)
	}
	user.Email = strings.TrimSpace(user.Email)

	return r.db.Write(ctx, func(c *database.Cursor) error {
		_, err := c.Exec(ctx,
			`INSERT INTO "user" (email, password, name, role_id) VALUES (?, ?, ?, ?)`,
			user.Email, user.Password, user.Name, user.Role.ID,
		)
		switch {
		case err == nil:
			return nil
		case database.IsUniqueViolation(err):
			return ErrEmailExists
		case database.IsForeignKeyViolation(err):
			return fmt.Errorf("inserting user: %w", ErrInvalidReference)
		default:
			return fmt.Errorf("inserting user: %w", err)
		}
	})
}

// Update changes a user's name and role.
func (r *SQLUserRepository) Update(ctx context.Context, user *User) error {
	if user.Role == nil {
		return fmt.Errorf("updating user: %w", ErrInvalidReference)
	}
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx,
			`UPDATE "user" SET name = ?, role_id = ? WHERE email = ?`,
			user.Name, user.Role.ID, user.Email,
		)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("updating user: %w", ErrInvalidReference)
			}
			return fmt.Errorf("updating user: %w", err)
		}
		return database.RequireRow(res, ErrUserNotFound)
	})
}

// Delete removes a user by email. Home memberships go with it and the
// user's events keep their history without the user reference.
func (r *SQLUserRepository) Delete(ctx context.Context, email string) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, `DELETE FROM "user" WHERE email = ?`, email)
		if err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		return database.RequireRow(res, ErrUserNotFound)
	})
}

// GetByID retrieves a user by email.
func (r *SQLUserRepository) GetByID(ctx context.Context, email string) (*User, error) {
	return r.GetByEmail(ctx, email)
}

// GetByEmail retrieves a user by email.
func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row, err := r.getRow(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	user, err := r.hydrate(ctx, row)
	if errors.Is(err, ErrRoleNotFound) {
		r.logger.Debug("user role missing", "email", row.email, "role_id", row.roleID)
		return nil, ErrUserNotFound
	}
	return user, err
}

// List returns all loadable users ordered by email.
func (r *SQLUserRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.listRows(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(rows))
	for _, row := range rows {
		user, err := r.hydrate(ctx, row)
		if errors.Is(err, ErrRoleNotFound) {
			r.logger.Debug("skipping user with missing role", "email", row.email, "role_id", row.roleID)
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

// ChangeRole assigns a role to the user.
func (r *SQLUserRepository) ChangeRole(ctx context.Context, email string, roleID int64) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, `UPDATE "user" SET role_id = ? WHERE email = ?`, roleID, email)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("changing role: %w", ErrInvalidReference)
			}
			return fmt.Errorf("changing role: %w", err)
		}
		return database.RequireRow(res, ErrUserNotFound)
	})
}

// UpdatePassword stores a new password hash.
func (r *SQLUserRepository) UpdatePassword(ctx context.Context, email, hash string) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, `UPDATE "user" SET password = ? WHERE email = ?`, hash, email)
		if err != nil {
			return fmt.Errorf("updating password: %w", err)
		}
		return database.RequireRow(res, ErrUserNotFound)
	})
}

// ValidateCredentials checks password for the user with email.
func (r *SQLUserRepository) ValidateCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	ok, err := r.verifier.Verify(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Count returns the number of users.
func (r *SQLUserRepository) Count(ctx context.Context) (int, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := c.QueryRow(ctx, `SELECT COUNT(*) FROM "user"`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

func (r *SQLUserRepository) getRow(ctx context.Context, email string) (userRow, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return userRow{}, err
	}
	var row userRow
	err = c.QueryRow(ctx, `SELECT `+userColumns+` FROM "user" WHERE email = ?`, email).
		Scan(&row.email, &row.password, &row.name, &row.roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return userRow{}, ErrUserNotFound
		}
		return userRow{}, fmt.Errorf("scanning user: %w", err)
	}
	return row, nil
}

// listRows reads every row and closes the result set before any role is
// resolved, since SQLite runs on one connection.
func (r *SQLUserRepository) listRows(ctx context.Context) ([]userRow, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, `SELECT `+userColumns+` FROM "user" ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var out []userRow
	for rows.Next() {
		var row userRow
		if err := rows.Scan(&row.email, &row.password, &row.name, &row.roleID); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return out, nil
}

func (r *SQLUserRepository) hydrate(ctx context.Context, row userRow) (*User, error) {
	role, err := r.roles.GetByID(ctx, row.roleID)
	if err != nil {
		return nil, err
	}
	return &User{Email: row.email, Password: row.password, Name: row.name, Role: role}, nil
}

package automation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/location"
)

// Repository defines the interface for automation persistence.
type Repository interface {
	// GetByID returns ErrAutomationNotFound if the automation does not
	// exist or its home cannot be loaded.
	GetByID(ctx context.Context, id int64) (*Automation, error)

	// Insert creates an automation. Returns ErrInvalidReference when its
	// home does not exist.
	Insert(ctx context.Context, a *Automation) error
	Update(ctx context.Context, a *Automation) error
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context) ([]Automation, error)
	ListByHome(ctx context.Context, homeID int64) ([]Automation, error)
	ListActive(ctx context.Context, homeID int64) ([]Automation, error)

	// SetActive stores the active flag without touching other columns.
	SetActive(ctx context.Context, id int64, active bool) error
}

// SQLRepository implements Repository. Each automation's home is loaded
// through a location.HomeGetter.
type SQLRepository struct {
	db     *database.Manager
	homes  location.HomeGetter
	logger Logger
}

// NewRepository creates an automation repository.
func NewRepository(db *database.Manager, homes location.HomeGetter) *SQLRepository {
	return &SQLRepository{db: db, homes: homes, logger: noopLogger{}}
}

// SetLogger sets the logger used to report skipped rows.
func (r *SQLRepository) SetLogger(logger Logger) {
	r.logger = logger
}

const selectAutomation = "SELECT id, name, description, active, home_id FROM automation"

type automationRow struct {
	id          int64
	name        string
	description string
	active      bool
	homeID      int64
}

// Insert creates an automation and assigns its ID.
func (r *SQLRepository) Insert(ctx context.Context, a *Automation) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		id, err := c.InsertID(ctx,
			"INSERT INTO automation (name, description, active, home_id) VALUES (?, ?, ?, ?)",
			a.Name, a.Description, a.Active, a.HomeID())
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("inserting automation: %w", ErrInvalidReference)
			}
			return fmt.Errorf("inserting automation: %w", err)
		}
		a.ID = id
		return nil
	})
}

// Update stores every column of an automation.
func (r *SQLRepository) Update(ctx context.Context, a *Automation) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx,
			"UPDATE automation SET name = ?, description = ?, active = ?, home_id = ? WHERE id = ?",
			a.Name, a.Description, a.Active, a.HomeID(), a.ID)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("updating automation %d: %w", a.ID, ErrInvalidReference)
			}
			return fmt.Errorf("updating automation %d: %w", a.ID, err)
		}
		return database.RequireRow(res, ErrAutomationNotFound)
	})
}

// SetActive sets the active flag of an automation.
func (r *SQLRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "UPDATE automation SET active = ? WHERE id = ?", active, id)
		if err != nil {
			return fmt.Errorf("setting automation %d active: %w", id, err)
		}
		return database.RequireRow(res, ErrAutomationNotFound)
	})
}

// Delete removes an automation by ID.
func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "DELETE FROM automation WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting automation %d: %w", id, err)
		}
		return database.RequireRow(res, ErrAutomationNotFound)
	})
}

// GetByID retrieves an automation with its home.
func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*Automation, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	var row automationRow
	err = c.QueryRow(ctx, selectAutomation+" WHERE id = ?", id).
		Scan(&row.id, &row.name, &row.description, &row.active, &row.homeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAutomationNotFound
		}
		return nil, fmt.Errorf("scanning automation %d: %w", id, err)
	}

	a, err := r.hydrate(ctx, row)
	if errors.Is(err, location.ErrHomeNotFound) {
		r.logger.Debug("automation home missing", "automation_id", row.id, "home_id", row.homeID)
		return nil, ErrAutomationNotFound
	}
	return a, err
}

// List returns all loadable automations ordered by ID.
func (r *SQLRepository) List(ctx context.Context) ([]Automation, error) {
	return r.queryAutomations(ctx, selectAutomation+" ORDER BY id")
}

// ListByHome returns the automations of one home ordered by ID.
func (r *SQLRepository) ListByHome(ctx context.Context, homeID int64) ([]Automation, error) {
	return r.queryAutomations(ctx, selectAutomation+" WHERE home_id = ? ORDER BY id", homeID)
}

// ListActive returns the active automations of one home ordered by ID.
func (r *SQLRepository) ListActive(ctx context.Context, homeID int64) ([]Automation, error) {
	return r.queryAutomations(ctx, selectAutomation+" WHERE home_id = ? AND active = ? ORDER BY id", homeID, true)
}

func (r *SQLRepository) queryAutomations(ctx context.Context, query string, args ...any) ([]Automation, error) {
	rows, err := r.scanRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	out := make([]Automation, 0, len(rows))
	for _, row := range rows {
		a, err := r.hydrate(ctx, row)
		if errors.Is(err, location.ErrHomeNotFound) {
			r.logger.Debug("skipping automation with missing home", "automation_id", row.id, "home_id", row.homeID)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

// scanRows reads and closes the result set before homes are resolved.
func (r *SQLRepository) scanRows(ctx context.Context, query string, args ...any) ([]automationRow, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying automations: %w", err)
	}
	defer rows.Close()

	var out []automationRow
	for rows.Next() {
		var row automationRow
		if err := rows.Scan(&row.id, &row.name, &row.description, &row.active, &row.homeID); err != nil {
			return nil, fmt.Errorf("scanning automation: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLRepository) hydrate(ctx context.Context, row automationRow) (*Automation, error) {
	home, err := r.homes.GetByID(ctx, row.homeID)
	if err != nil {
		return nil, err
	}
	return &Automation{
		ID:          row.id,
		Name:        row.name,
		Description: row.description,
		Active:      row.active,
		Home:        home,
	}, nil
}

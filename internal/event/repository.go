package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// Repository defines the interface for the event log.
type Repository interface {
	// Insert stores an event and assigns its ID. A zero Time is set to now.
	Insert(ctx context.Context, e *Event) error

	// Update rewrites every column of an existing event.
	Update(ctx context.Context, e *Event) error

	GetByID(ctx context.Context, id int64) (*Event, error)
	Delete(ctx context.Context, id int64) error

	// List returns the newest MaxLimit events.
	List(ctx context.Context) ([]Event, error)

	ListByDevice(ctx context.Context, deviceID int64, limit int) ([]Event, error)
	ListByUser(ctx context.Context, email string, limit int) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)

	// ListByDateRange returns events with start <= time <= end.
	ListByDateRange(ctx context.Context, start, end time.Time, limit int) ([]Event, error)

	// Query returns events matching filter, newest first.
	Query(ctx context.Context, filter Filter) ([]Event, error)
}

// SQLRepository implements Repository on the shared database manager.
type SQLRepository struct {
	db       *database.Manager
	resolver Resolver
	now      func() time.Time
}

// NewRepository creates an event repository.
func NewRepository(db *database.Manager, resolver Resolver) *SQLRepository {
	return &SQLRepository{db: db, resolver: resolver, now: time.Now}
}

const eventColumns = `id, date_time_value, description, device_id, user_email, source`

type eventRow struct {
	id          int64
	at          string
	description string
	deviceID    sql.NullInt64
	userEmail   sql.NullString
	source      string
}

// Insert stores an event.
func (r *SQLRepository) Insert(ctx context.Context, e *Event) error {
	if e.Time.IsZero() {
		e.Time = r.now().UTC()
	}
	if e.Source == "" {
		e.Source = SourceSystem
	}

	deviceID, userEmail := e.references()

	return r.db.Write(ctx, func(c *database.Cursor) error {
		id, err := c.InsertID(ctx,
			`INSERT INTO event (date_time_value, description, device_id, user_email, source)
			VALUES (?, ?, ?, ?, ?)`,
			database.FormatTime(e.Time), e.Description, deviceID, userEmail, e.Source,
		)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("inserting event: %w", ErrInvalidReference)
			}
			return fmt.Errorf("inserting event: %w", err)
		}
		e.ID = id
		return nil
	})
}

// Update rewrites an event by ID.
func (r *SQLRepository) Update(ctx context.Context, e *Event) error {
	if e.Source == "" {
		e.Source = SourceSystem
	}
	deviceID, userEmail := e.references()

	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx,
			`UPDATE event SET date_time_value = ?, description = ?, device_id = ?, user_email = ?, source = ?
			WHERE id = ?`,
			database.FormatTime(e.Time), e.Description, deviceID, userEmail, e.Source, e.ID,
		)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("updating event %d: %w", e.ID, ErrInvalidReference)
			}
			return fmt.Errorf("updating event %d: %w", e.ID, err)
		}
		return database.RequireRow(res, ErrEventNotFound)
	})
}

// references returns the nullable foreign key values of e.
func (e *Event) references() (deviceID, userEmail any) {
	if e.Device != nil {
		deviceID = e.Device.ID
	}
	if e.User != nil {
		userEmail = e.User.Email
	}
	return deviceID, userEmail
}

// GetByID retrieves an event with its relations.
func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*Event, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	var row eventRow
	err = c.QueryRow(ctx, "SELECT "+eventColumns+" FROM event WHERE id = ?", id).
		Scan(&row.id, &row.at, &row.description, &row.deviceID, &row.userEmail, &row.source)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("scanning event %d: %w", id, err)
	}
	return r.hydrate(ctx, row)
}

// Delete removes an event.
func (r *SQLRepository) Delete(ctx context.Context, id int64) error {
	return r.db.Write(ctx, func(c *database.Cursor) error {
		res, err := c.Exec(ctx, "DELETE FROM event WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting event %d: %w", id, err)
		}
		return database.RequireRow(res, ErrEventNotFound)
	})
}

// List returns the newest events.
func (r *SQLRepository) List(ctx context.Context) ([]Event, error) {
	return r.Query(ctx, Filter{Limit: MaxLimit})
}

// ListByDevice returns a device's events, DefaultDeviceLimit by default.
func (r *SQLRepository) ListByDevice(ctx context.Context, deviceID int64, limit int) ([]Event, error) {
	return r.Query(ctx, Filter{DeviceID: deviceID, Limit: clampLimit(limit, DefaultDeviceLimit)})
}

// ListByUser returns a user's events, DefaultUserLimit by default.
func (r *SQLRepository) ListByUser(ctx context.Context, email string, limit int) ([]Event, error) {
	return r.Query(ctx, Filter{UserEmail: email, Limit: clampLimit(limit, DefaultUserLimit)})
}

// ListRecent returns the newest events, DefaultRecentLimit by default.
func (r *SQLRepository) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	return r.Query(ctx, Filter{Limit: clampLimit(limit, DefaultRecentLimit)})
}

// ListByDateRange returns events between start and end inclusive,
// DefaultRangeLimit by default.
func (r *SQLRepository) ListByDateRange(ctx context.Context, start, end time.Time, limit int) ([]Event, error) {
	if start.IsZero() || end.IsZero() {
		return nil, errors.New("listing events by date range: start and end are required")
	}
	return r.Query(ctx, Filter{Start: start, End: end, Limit: clampLimit(limit, DefaultRangeLimit)})
}

// Query returns events matching filter ordered by time, newest first.
func (r *SQLRepository) Query(ctx context.Context, filter Filter) ([]Event, error) {
	filter.Limit = clampLimit(filter.Limit, DefaultRecentLimit)

	var conditions []string
	var args []any
	if filter.DeviceID != 0 {
		conditions = append(conditions, "device_id = ?")
		args = append(args, filter.DeviceID)
	}
	if filter.UserEmail != "" {
		conditions = append(conditions, "user_email = ?")
		args = append(args, filter.UserEmail)
	}
	if !filter.Start.IsZero() {
		conditions = append(conditions, "date_time_value >= ?")
		args = append(args, database.FormatTime(filter.Start))
	}
	if !filter.End.IsZero() {
		conditions = append(conditions, "date_time_value <= ?")
		args = append(args, database.FormatTime(filter.End))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	query := "SELECT " + eventColumns + " FROM event" + where + //nolint:gosec // WHERE built from parameterised conditions
		" ORDER BY date_time_value DESC, id DESC LIMIT ?"
	args = append(args, filter.Limit)

	rows, err := r.scanRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		e, err := r.hydrate(ctx, row)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, nil
}

// scanRows reads and closes the result set before relations are resolved.
func (r *SQLRepository) scanRows(ctx context.Context, query string, args ...any) ([]eventRow, error) {
	c, err := r.db.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []eventRow
	for rows.Next() {
		var row eventRow
		if err := rows.Scan(&row.id, &row.at, &row.description, &row.deviceID, &row.userEmail, &row.source); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) hydrate(ctx context.Context, row eventRow) (*Event, error) {
	at, err := database.ParseTime(row.at)
	if err != nil {
		return nil, fmt.Errorf("parsing event %d timestamp %q: %w", row.id, row.at, err)
	}
	e := &Event{ID: row.id, Time: at, Description: row.description, Source: row.source}

	if row.deviceID.Valid {
		if e.Device, err = r.resolver.Device(ctx, row.deviceID.Int64); err != nil {
			return nil, fmt.Errorf("resolving device of event %d: %w", row.id, err)
		}
	}
	if row.userEmail.Valid {
		if e.User, err = r.resolver.User(ctx, row.userEmail.String); err != nil {
			return nil, fmt.Errorf("resolving user of event %d: %w", row.id, err)
		}
	}
	return e, nil
}

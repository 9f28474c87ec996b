package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Record is a result row keyed by column name.
type Record map[string]any

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Cursor executes statements against the connection or an open transaction.
// Queries use ? placeholders and are rebound for the manager's dialect.
//
// A cursor from Begin owns its transaction: Commit and Rollback forward to it
// until one of them has run. A cursor that joined an InTx scope leaves the
// outcome to the scope, so its Commit and Rollback are no-ops.
type Cursor struct {
	ex      execer
	dialect Dialect
	tx      *sql.Tx
	owned   bool
	done    bool
}

// Dialect returns the dialect the cursor rebinds for.
func (c *Cursor) Dialect() Dialect {
	return c.dialect
}

// Exec runs a statement that returns no rows.
func (c *Cursor) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if c.done {
		return nil, ErrTxDone
	}
	return c.ex.ExecContext(ctx, c.dialect.Rebind(query), args...)
}

// Query runs a statement that returns rows. The caller must close them.
func (c *Cursor) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if c.done {
		return nil, ErrTxDone
	}
	return c.ex.QueryContext(ctx, c.dialect.Rebind(query), args...)
}

// QueryRow runs a statement expected to return at most one row.
func (c *Cursor) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.ex.QueryRowContext(ctx, c.dialect.Rebind(query), args...)
}

// InsertID runs an INSERT and returns the generated id column.
// Postgres appends RETURNING id; SQLite reads LastInsertId.
func (c *Cursor) InsertID(ctx context.Context, query string, args ...any) (int64, error) {
	if c.done {
		return 0, ErrTxDone
	}
	if c.dialect == DialectPostgres {
		var id int64
		if err := c.ex.QueryRowContext(ctx, c.dialect.Rebind(query)+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := c.ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted id: %w", err)
	}
	return id, nil
}

// FetchAll returns every row as a Record. The result is never nil.
func (c *Cursor) FetchAll(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	records := make([]Record, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec := make(Record, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
			} else {
				rec[col] = values[i]
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// FetchOne returns the first row as a Record, or nil when there is none.
func (c *Cursor) FetchOne(ctx context.Context, query string, args ...any) (Record, error) {
	records, err := c.FetchAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// Commit commits an owned, live transaction. Otherwise it does nothing.
func (c *Cursor) Commit() error {
	if !c.owned || c.done {
		return nil
	}
	c.done = true
	if err := c.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Rollback aborts an owned, live transaction. Otherwise it does nothing,
// so it is safe to defer after Commit.
func (c *Cursor) Rollback() error {
	if !c.owned || c.done {
		return nil
	}
	c.done = true
	if err := c.tx.Rollback(); err != nil {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}

// RequireRow maps a result with zero affected rows to notFound. Repositories
// use it after UPDATE and DELETE by identity.
func RequireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

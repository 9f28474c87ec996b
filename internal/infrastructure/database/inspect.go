package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownTable is returned when a table name is not in the schema.
var ErrUnknownTable = errors.New("database: unknown table")

// TableCount is the row count of one table.
type TableCount struct {
	Table string `yaml:"table"`
	Rows  int    `yaml:"rows"`
}

// Tables lists the application tables in name order. Bookkeeping tables
// (schema_migrations, sqlite internals) are excluded.
func (m *Manager) Tables(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name <> 'schema_migrations'
		ORDER BY name`
	if m.dialect == DialectPostgres {
		query = `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
			AND table_name <> 'schema_migrations'
			ORDER BY table_name`
	}

	c, err := m.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// CountRows returns the row count of every application table.
func (m *Manager) CountRows(ctx context.Context) ([]TableCount, error) {
	tables, err := m.Tables(ctx)
	if err != nil {
		return nil, err
	}
	c, err := m.Cursor(ctx)
	if err != nil {
		return nil, err
	}

	counts := make([]TableCount, 0, len(tables))
	for _, t := range tables {
		var n int
		if err := c.QueryRow(ctx, "SELECT COUNT(*) FROM "+quoteIdent(t)).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", t, err)
		}
		counts = append(counts, TableCount{Table: t, Rows: n})
	}
	return counts, nil
}

// Dump returns every row of table as a Record. The name must be one of
// Tables; anything else returns ErrUnknownTable.
func (m *Manager) Dump(ctx context.Context, table string) ([]Record, error) {
	tables, err := m.Tables(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(tables, table) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}

	c, err := m.Cursor(ctx)
	if err != nil {
		return nil, err
	}
	return c.FetchAll(ctx, "SELECT * FROM "+quoteIdent(table))
}

// quoteIdent double-quotes a known table name ("user" is reserved).
func quoteIdent(name string) string {
	return `"` + name + `"`
}

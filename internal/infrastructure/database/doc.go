// Package database provides relational store connectivity for SmartHome Core.
//
// This package manages:
//   - A lazily opened, liveness-checked connection (Manager)
//   - Statement cursors with ? placeholders rebound per dialect
//   - Per-operation transactions (Write) and multi-call scopes (InTx)
//   - Embedded, per-dialect schema migrations
//
// Supported drivers:
//   - sqlite3: github.com/mattn/go-sqlite3 (default)
//   - sqlite:  modernc.org/sqlite
//   - postgres: github.com/lib/pq
//   - pgx:     github.com/jackc/pgx/v5/stdlib
//
// SQLite runs on a single connection. Repositories must close result sets
// before issuing further statements, and calls made inside InTx reuse the
// scope's transaction instead of opening another.
//
// Timestamps are stored as fixed-width UTC text (see FormatTime) so range
// queries and ordering behave the same on both dialects.
//
// Usage:
//
//	db, err := database.NewManager(cfg)
//	if err != nil {
//	    return err
//	}
//	defer db.Disconnect()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
//	err = db.Write(ctx, func(c *database.Cursor) error {
//	    _, err := c.Exec(ctx, "UPDATE device SET state_id = ? WHERE id = ?", stateID, id)
//	    return err
//	})
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - SQLite database files are set to 0600 (owner read/write only)
package database

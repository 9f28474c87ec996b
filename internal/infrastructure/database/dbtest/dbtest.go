// Package dbtest opens migrated SQLite databases for repository tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	_ "github.com/nerrad567/smarthome-core/migrations" // Registers embedded migrations
)

// New returns a manager on a fresh, fully migrated SQLite file that is
// removed when the test ends. Foreign keys are enforced.
func New(t testing.TB) *database.Manager {
	t.Helper()

	m, err := database.NewManager(database.Config{
		Driver:      database.DriverSQLite3,
		Path:        filepath.Join(t.TempDir(), "smarthome.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("dbtest: creating manager: %v", err)
	}
	t.Cleanup(func() {
		m.Disconnect() //nolint:errcheck // Test cleanup
	})

	if err := m.Migrate(context.Background()); err != nil {
		t.Fatalf("dbtest: migrating: %v", err)
	}
	return m
}

// Exec runs a statement directly, for fixtures that bypass repositories.
func Exec(t testing.TB, m *database.Manager, query string, args ...any) {
	t.Helper()

	ctx := context.Background()
	c, err := m.Cursor(ctx)
	if err != nil {
		t.Fatalf("dbtest: cursor: %v", err)
	}
	if _, err := c.Exec(ctx, query, args...); err != nil {
		t.Fatalf("dbtest: exec %q: %v", query, err)
	}
}

// Count returns the number of rows in table.
func Count(t testing.TB, m *database.Manager, table string) int {
	t.Helper()

	ctx := context.Background()
	c, err := m.Cursor(ctx)
	if err != nil {
		t.Fatalf("dbtest: cursor: %v", err)
	}
	var n int
	if err := c.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("dbtest: counting %s: %v", table, err)
	}
	return n
}

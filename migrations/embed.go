// Package migrations embeds SQL migration files into the binary.
//
// Each dialect has its own directory (sqlite/, postgres/); the database
// manager picks the one matching its driver.
package migrations

import (
	"embed"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}

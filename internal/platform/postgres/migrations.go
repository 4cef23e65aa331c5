package postgres

import "embed"

// MigrationsFS holds the goose migration files. They are embedded so
// the server binary can apply them at startup regardless of where it
// runs from.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

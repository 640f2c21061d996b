package postgres

import "embed"

// MigrationsFS embeds the goose SQL migrations so the server binary can
// bring a database up to the current schema without shipping loose files.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the path of the migration files inside MigrationsFS.
const MigrationsDir = "migrations"

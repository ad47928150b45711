package database

import "embed"

// MigrationsFS holds the forum schema migrations in golang-migrate file naming.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsPath is the directory inside MigrationsFS that holds the files.
const MigrationsPath = "migrations"

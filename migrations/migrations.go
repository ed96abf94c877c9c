// Package migrations embeds per-driver SQL migration files.
//
// SQLite and PostgreSQL schemas differ in type affinity (TEXT timestamps vs
// TIMESTAMP columns), so each driver carries its own migration set. Filename
// ordering defines application order.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS

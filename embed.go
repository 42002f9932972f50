// Package root exposes assets embedded from the repository root, such as the
// SQL migrations applied by the migrate command.
package root

import "embed"

// Migrations holds the goose migration files for the application tables.
//
//go:embed migrations/*.sql
var Migrations embed.FS

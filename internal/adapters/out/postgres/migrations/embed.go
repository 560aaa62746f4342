// Package migrations holds the Postgres schema, applied with goose.
package migrations

import "embed"

// Postgres embeds the Postgres migration files.
//
//go:embed postgres/*.sql
var Postgres embed.FS

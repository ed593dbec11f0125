// Package migrations embeds the PostgreSQL schema migrations so the server
// and the migrate CLI can run them without a migrations directory on disk.
package migrations

import "embed"

// FS holds the *.up.sql and *.down.sql files
//
//go:embed *.sql
var FS embed.FS

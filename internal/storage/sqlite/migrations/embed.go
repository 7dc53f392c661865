package migrations

import "embed"

// FS contains embedded SQLite migrations for inference run storage.
//
//go:embed *.sql
var FS embed.FS

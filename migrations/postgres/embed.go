// Package migrations embeds the Postgres schema of the broker.
package migrations

import "embed"

// FS contains the ordered migrations (NNNN_name.sql).
//
//go:embed sql/*.sql
var FS embed.FS

// Dir is the directory within FS where migrations live.
const Dir = "sql"

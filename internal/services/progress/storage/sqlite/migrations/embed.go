// Package migrations embeds the progress service schema migrations.
package migrations

import "embed"

// FS bundles the SQL migration files.
//
//go:embed *.sql
var FS embed.FS

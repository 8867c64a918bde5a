// Package migrations embeds SQL migration files for the SQL entity store.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
// The statements are shared by the SQLite and PostgreSQL dialects.
//
//go:embed *.sql
var FS embed.FS

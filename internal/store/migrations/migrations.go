// Package migrations embeds the goose migrations for the sqlite snapshot
// adapter.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

// Package migrations embeds the goose SQL migrations for the postgres catalog.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

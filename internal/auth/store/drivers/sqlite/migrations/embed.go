// Package migrations embeds the SQL migration files so they can be applied
// from the binary without shipping loose files alongside it.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

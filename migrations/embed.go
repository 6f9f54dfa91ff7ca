// Package migrations holds the goose SQL migrations for the shared schema.
// Per-language word tables are not migrated: they are rebuilt by every upgrade.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

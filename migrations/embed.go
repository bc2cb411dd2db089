// Package migrations embeds the goose SQL migrations so binaries can migrate a database
// without the source tree.
package migrations

import "embed"

// FS holds every *.sql migration in this directory.
//
//go:embed *.sql
var FS embed.FS

// Package postrelay embeds resources shared by the binaries.
package postrelay

import "embed"

//go:embed migrations/*.sql
var MigrationsFS embed.FS

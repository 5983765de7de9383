// Package migrations embeds the run history schema for goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

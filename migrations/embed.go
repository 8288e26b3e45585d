// Package migrations содержит схему БД, вшитую в бинарник для goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

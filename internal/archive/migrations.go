package archive

import "embed"

// Migrations holds the schema for the reports and exports tables.
//
//go:embed migrations/*.sql
var Migrations embed.FS

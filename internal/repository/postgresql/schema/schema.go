// Package schema holds the PostgreSQL DDL of the engine's tables.
package schema

import _ "embed"

//go:embed schema.sql
var SQL string

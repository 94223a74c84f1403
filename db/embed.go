// Package db embeds the stub server's database schema.
package db

import _ "embed"

// Schema creates the users, products and cart_items tables if missing.
//
//go:embed migrations/001_schema.sql
var Schema string

//go:build cgo_sqlite

package table

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	sqlDriverName = "sqlite3"
)

//go:build !cgo_sqlite

package table

import (
	_ "modernc.org/sqlite"
)

const (
	sqlDriverName = "sqlite"
)

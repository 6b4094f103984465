//go:build !cgo_sqlite

package main

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

const dbDriver = "modernc.org/sqlite"

// initDB opens the SQLite database at path with WAL journaling and a busy
// timeout, which modernc takes as _pragma DSN parameters.
func initDB(path string) (*sql.DB, error) {
	return openDB("sqlite", path, "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
}

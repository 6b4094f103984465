//go:build cgo_sqlite

package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

const dbDriver = "mattn/go-sqlite3"

// initDB opens the SQLite database at path with WAL journaling and a busy
// timeout, which mattn takes as DSN parameters.
func initDB(path string) (*sql.DB, error) {
	return openDB("sqlite3", path, "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
}

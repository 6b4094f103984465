package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// openDB creates the parent directory of the database file if needed, then
// opens the database with the driver specific DSN parameters and pings it.
func openDB(driver, path, params string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, path+"?"+params)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Package store persists corpora and their trained chains in SQLite so that
// uploaded corpora survive restarts and models can be reloaded without
// retraining.
package store

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
)

// SetupSchema initializes the necessary tables in the provided database.
// This function should be called once on a new database before any other
// operations are performed. It is idempotent and safe to call on an
// already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaCorpora = `
CREATE TABLE IF NOT EXISTS corpora (
    corpus_id      INTEGER PRIMARY KEY,
    corpus_name    TEXT NOT NULL UNIQUE,
    language       TEXT NOT NULL DEFAULT '',
    source_text    TEXT NOT NULL,
    sequence_count INTEGER NOT NULL DEFAULT 0,
    created_at     INTEGER NOT NULL
);
`
		schemaLabels = `
CREATE TABLE IF NOT EXISTS corpus_labels (
    corpus_id  INTEGER NOT NULL,
    line_index INTEGER NOT NULL,
    label      TEXT NOT NULL,
    PRIMARY KEY (corpus_id, line_index)
);
`
		schemaChains = `
CREATE TABLE IF NOT EXISTS markov_chains (
    corpus_id  INTEGER NOT NULL,
    state      TEXT NOT NULL,
    next_token TEXT NOT NULL,
    is_end     INTEGER NOT NULL DEFAULT 0,
    frequency  INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (corpus_id, state, next_token, is_end)
);
`
		schemaStarts = `
CREATE TABLE IF NOT EXISTS markov_starts (
    corpus_id INTEGER NOT NULL,
    token     TEXT NOT NULL,
    frequency INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (corpus_id, token)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	// If the transaction succeeds, tx.Commit() will be called first, and the rollback will do nothing. If it fails, this will clean up.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	for _, schema := range []string{schemaCorpora, schemaLabels, schemaChains, schemaStarts} {
		if _, err = tx.Exec(schema); err != nil {
			return fmt.Errorf("could not create schema: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Store holds the database connection and the prepared SQL statements used
// for reading and writing corpora.
type Store struct {
	db                *sql.DB
	stmtGetCorpusInfo *sql.Stmt
	stmtGetCorpora    *sql.Stmt
	stmtGetSourceText *sql.Stmt
	stmtGetLabels     *sql.Stmt
	stmtGetChains     *sql.Stmt
	stmtGetStarts     *sql.Stmt
	stmtUpsertCorpus  *sql.Stmt
	stmtCountCorpora  *sql.Stmt
	logger            *slog.Logger
}

// NewStore creates and returns a new Store. It pre-compiles all necessary SQL
// statements, returning an error if any preparation fails.
func NewStore(db *sql.DB) (*Store, error) {
	stmtGetCorpusInfo, err := db.Prepare(`SELECT corpus_id, corpus_name, language, sequence_count, created_at FROM corpora WHERE corpus_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetCorpora, err := db.Prepare(`SELECT corpus_id, corpus_name, language, sequence_count, created_at FROM corpora ORDER BY corpus_name;`)
	if err != nil {
		return nil, err
	}

	stmtGetSourceText, err := db.Prepare(`SELECT source_text FROM corpora WHERE corpus_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetLabels, err := db.Prepare(`SELECT label FROM corpus_labels WHERE corpus_id = ? ORDER BY line_index;`)
	if err != nil {
		return nil, err
	}

	stmtGetChains, err := db.Prepare(`SELECT state, next_token, is_end, frequency FROM markov_chains WHERE corpus_id = ? ORDER BY state, is_end, next_token;`)
	if err != nil {
		return nil, err
	}

	stmtGetStarts, err := db.Prepare(`SELECT token, frequency FROM markov_starts WHERE corpus_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtUpsertCorpus, err := db.Prepare(`
		INSERT INTO corpora (corpus_name, language, source_text, sequence_count, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(corpus_name) DO UPDATE SET language = excluded.language, source_text = excluded.source_text,
			sequence_count = excluded.sequence_count, created_at = excluded.created_at
		RETURNING corpus_id;`)
	if err != nil {
		return nil, err
	}

	stmtCountCorpora, err := db.Prepare(`SELECT COUNT(*) FROM corpora;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:                db,
		stmtGetCorpusInfo: stmtGetCorpusInfo,
		stmtGetCorpora:    stmtGetCorpora,
		stmtGetSourceText: stmtGetSourceText,
		stmtGetLabels:     stmtGetLabels,
		stmtGetChains:     stmtGetChains,
		stmtGetStarts:     stmtGetStarts,
		stmtUpsertCorpus:  stmtUpsertCorpus,
		stmtCountCorpora:  stmtCountCorpora,
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store.
func (s *Store) Close() {
	_ = s.stmtGetCorpusInfo.Close()
	_ = s.stmtGetCorpora.Close()
	_ = s.stmtGetSourceText.Close()
	_ = s.stmtGetLabels.Close()
	_ = s.stmtGetChains.Close()
	_ = s.stmtGetStarts.Close()
	_ = s.stmtUpsertCorpus.Close()
	_ = s.stmtCountCorpora.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

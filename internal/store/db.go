// Package store persists ymatch result runs in SQLite so that earlier
// suggestions can be listed and compared without re-reading the corpus.
package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

var (
	// ErrNotInitialized is returned when the schema has not been created.
	ErrNotInitialized = errors.New("run history not initialized: save a run with --save first")
	// ErrNotFound is returned for an unknown run id.
	ErrNotFound = errors.New("run not found")
)

// Store provides SQLite database operations for ymatch run history.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the specified database path.
// Use ":memory:" for in-memory databases (useful for testing).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, eris.Wrap(err, "store: open database")
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: %s", pragma)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSchema creates all tables and indexes.
func (s *Store) CreateSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return eris.Wrap(err, "store: create schema")
	}
	return nil
}

// classify maps driver errors for a missing schema to ErrNotInitialized.
func classify(err error, msg string) error {
	if err != nil && strings.Contains(err.Error(), "no such table") {
		return eris.Wrap(ErrNotInitialized, msg)
	}
	return eris.Wrap(err, msg)
}

// CLAUDE:SUMMARY SQLite persistence for recorded Flows — the external store the coordinator hands finished sessions to.
// Package flowstore provides the SQLite persistence layer for Flows.
package flowstore

import (
	"database/sql"

	"github.com/hazyhaar/recflow/dbopen"
)

// Store is the flow database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the flow SQLite database at path, applies
// pragmas and the flow schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// OpenDB wraps an already-open database, applying the flow schema.
func OpenDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

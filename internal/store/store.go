// Package store persists settings, vehicles and maintenance tables in SQLite.
package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const timestampLayout = time.RFC3339Nano

// Store wraps a migrated database handle.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a Store backed by db.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

func parseTimestamp(raw string) time.Time {
	for _, layout := range []string{timestampLayout, "2006-01-02 15:04:05", time.RFC3339} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

// Package store persists analysis outputs to a relational store. All
// per-call tables are keyed by call_id and written with upserts, so
// at-least-once execution of the pipeline is safe.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS call_scores (
	call_id         TEXT PRIMARY KEY,
	overall_score   REAL NOT NULL,
	category_scores TEXT NOT NULL,
	metadata        TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS voice_analytics (
	call_id    TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS coaching_analyses (
	call_id    TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	model      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS objection_occurrences (
	call_id       TEXT NOT NULL,
	objection_id  TEXT NOT NULL,
	prospect_text TEXT NOT NULL,
	rep_response  TEXT NOT NULL,
	category      TEXT NOT NULL,
	handled       INTEGER NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	PRIMARY KEY (call_id, objection_id)
);
CREATE TABLE IF NOT EXISTS objection_library (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	category            TEXT NOT NULL,
	industry            TEXT NOT NULL DEFAULT '',
	description         TEXT NOT NULL DEFAULT '',
	handling_strategies TEXT NOT NULL DEFAULT '[]'
);
`

// Store wraps the SQL connection.
type Store struct {
	db     *sql.DB
	logger *logrus.Entry
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral store in tests.
func Open(path string, logger *logrus.Entry) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, logger: logger.WithField("component", "store")}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping round-trips the database and reports latency, for health probes.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	err := s.db.PingContext(ctx)
	return time.Since(start), err
}

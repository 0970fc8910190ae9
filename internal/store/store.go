// Package store implements the SQLite storage layer for tripstore: trip
// and service persistence, the dirty queue, and trip-facts recomputation.
// Schema evolution is delegated to internal/migrate on Open.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fernwind/tripstore/internal/migrate"
	"github.com/fernwind/tripstore/pkg/types"
)

// Store wraps a SQLite database. Call Open before use and Close when done.
// Safe for concurrent use once open.
type Store struct {
	mu      sync.RWMutex
	open    bool
	config  types.Config
	db      *sql.DB
	applied []string // migrations applied by the last Open
}

// New creates an unopened Store.
func New() *Store {
	return &Store{}
}

// Open initializes the store with the given configuration: creates DataDir
// if needed, opens the database, and applies all pending migrations from
// the default catalog. Returns ErrAlreadyOpen if called twice.
func (s *Store) Open(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return types.ErrAlreadyOpen
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, config.File()))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("enabling foreign keys: %w", err)
	}

	runner := migrate.NewRunner(db, migrate.DefaultRegistry())
	applied, err := runner.ApplyPending()
	if err != nil {
		db.Close()
		return fmt.Errorf("applying migrations: %w", err)
	}

	s.db = db
	s.config = config
	s.applied = applied
	s.open = true
	return nil
}

// Close releases the database connection. Idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	s.db = nil
	s.open = false
	return nil
}

// DB returns the underlying database handle, for the cache manager and the
// migration CLI. Returns ErrStoreClosed if the store is not open.
func (s *Store) DB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	return s.db, nil
}

// AppliedOnOpen returns the migration names applied by the last Open,
// empty if the schema was already up to date.
func (s *Store) AppliedOnOpen() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}

// newUUID generates a UUID v7 string for entity IDs.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// UUID v7 needs a time source; fall back to v4 if it fails.
		return uuid.New().String()
	}
	return id.String()
}

// Timestamps are stored as RFC3339 TEXT in UTC so they compare
// lexicographically, including against strftime output in triggers.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

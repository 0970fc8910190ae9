// Migration runner: tracks applied migrations in a bookkeeping table and
// applies the pending subset in registry order, one statement per round
// trip. The store commits each statement independently, so correctness
// comes from idempotent statement design (IF NOT EXISTS), not rollback.
package migrate

import (
	"database/sql"
	"fmt"
	"time"
)

// BookkeepingTable is the applied-migrations tracking table.
const BookkeepingTable = "schema_migrations"

const createBookkeeping = `CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// Runner applies a registry's pending migrations to a database.
//
// Concurrent runners are not serialized: the intended operational model is
// a single deploy pipeline invoking ApplyPending at a time.
type Runner struct {
	db       *sql.DB
	registry *Registry
}

// NewRunner returns a Runner for the given database and registry.
func NewRunner(db *sql.DB, registry *Registry) *Runner {
	return &Runner{db: db, registry: registry}
}

// EnsureBookkeeping creates the tracking table if absent. No-op otherwise.
func (r *Runner) EnsureBookkeeping() error {
	if _, err := r.db.Exec(createBookkeeping); err != nil {
		return fmt.Errorf("creating %s: %w", BookkeepingTable, err)
	}
	return nil
}

// ListApplied returns the set of already-applied migration names.
//
// A missing bookkeeping table is the bootstrap case and yields an empty
// set; a read failure on an existing table surfaces as an error.
func (r *Runner) ListApplied() (map[string]bool, error) {
	exists, err := r.bookkeepingExists()
	if err != nil {
		return nil, err
	}
	applied := make(map[string]bool)
	if !exists {
		return applied, nil
	}

	rows, err := r.db.Query("SELECT name FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", BookkeepingTable, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", BookkeepingTable, err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// ApplyPending applies every registered migration not yet recorded as
// applied, in registration order, and returns the names applied this run.
//
// Each migration is split into statements and executed statement by
// statement. A statement failure aborts the run: remaining statements and
// migrations are not attempted, and the failing migration is not recorded,
// so a retry re-attempts it from its first statement. Schema statements are
// idempotent; migrations that backfill data must be written to tolerate
// re-execution.
func (r *Runner) ApplyPending() ([]string, error) {
	if err := r.EnsureBookkeeping(); err != nil {
		return nil, err
	}
	applied, err := r.ListApplied()
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, m := range r.registry.Migrations() {
		if applied[m.Name] {
			continue
		}
		for _, stmt := range SplitStatements(m.SQL) {
			if _, err := r.db.Exec(stmt); err != nil {
				return ran, fmt.Errorf("migration %s: executing %q: %w",
					m.Name, truncate(stmt, 100), err)
			}
		}
		if err := r.recordApplied(m.Name); err != nil {
			return ran, err
		}
		ran = append(ran, m.Name)
	}
	return ran, nil
}

// Pending returns the names of registered migrations not yet applied, in
// registration order.
func (r *Runner) Pending() ([]string, error) {
	applied, err := r.ListApplied()
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, m := range r.registry.Migrations() {
		if !applied[m.Name] {
			pending = append(pending, m.Name)
		}
	}
	return pending, nil
}

func (r *Runner) bookkeepingExists() (bool, error) {
	row := r.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		BookkeepingTable)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking for %s: %w", BookkeepingTable, err)
	}
	return true, nil
}

func (r *Runner) recordApplied(name string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := r.db.Exec(
		"INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)",
		name, now); err != nil {
		return fmt.Errorf("recording migration %s: %w", name, err)
	}
	return nil
}

// truncate shortens a statement for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

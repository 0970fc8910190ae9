// Dirty-queue access and trip-facts recomputation. The queue carries
// at-least-once staleness signals; recomputation always rebuilds the facts
// row whole from the services table, so redundant signals are harmless.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fernwind/tripstore/pkg/types"
)

// MarkDirty appends a dirty-queue entry for a trip. Write paths through
// the services table are covered by triggers; this helper exists for
// writes that bypass tracked tables.
func (s *Store) MarkDirty(tripID, reason string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	if tripID == "" {
		return types.ErrInvalidID
	}
	_, err := s.db.Exec(
		"INSERT INTO trip_dirty (trip_id, reason, created_at) VALUES (?, ?, ?)",
		tripID, reason, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("marking trip dirty: %w", err)
	}
	return nil
}

// DirtyTrips returns the distinct trip IDs with queued dirty entries,
// oldest signal first.
func (s *Store) DirtyTrips() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	rows, err := s.db.Query(
		"SELECT trip_id FROM trip_dirty GROUP BY trip_id ORDER BY MIN(id)")
	if err != nil {
		return nil, fmt.Errorf("querying dirty trips: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning dirty trip: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DirtyEntries returns the queued entries for a trip in queue order.
func (s *Store) DirtyEntries(tripID string) ([]types.DirtyEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	if tripID == "" {
		return nil, types.ErrInvalidID
	}
	rows, err := s.db.Query(
		"SELECT id, trip_id, reason, created_at FROM trip_dirty WHERE trip_id = ? ORDER BY id",
		tripID)
	if err != nil {
		return nil, fmt.Errorf("querying dirty entries: %w", err)
	}
	defer rows.Close()

	var entries []types.DirtyEntry
	for rows.Next() {
		var e types.DirtyEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.TripID, &e.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning dirty entry: %w", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecomputeFacts rebuilds the facts row for a trip from the services table
// and consumes the dirty entries that were queued before the recompute
// began. Entries queued during the recompute survive and signal another
// pass. The facts row is replaced whole, never patched, so readers see
// either the old or the new aggregates.
func (s *Store) RecomputeFacts(tripID string) (*types.TripFacts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	if tripID == "" {
		return nil, types.ErrInvalidID
	}

	// High-water mark of signals this pass will consume.
	var maxID int64
	row := s.db.QueryRow(
		"SELECT COALESCE(MAX(id), 0) FROM trip_dirty WHERE trip_id = ?", tripID)
	if err := row.Scan(&maxID); err != nil {
		return nil, fmt.Errorf("reading dirty high-water mark: %w", err)
	}

	facts := types.TripFacts{TripID: tripID, ComputedAt: time.Now()}
	row = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(booked), 0),
		        COUNT(DISTINCT category), COALESCE(SUM(price), 0)
		 FROM services WHERE trip_id = ?`, tripID)
	if err := row.Scan(&facts.ServiceCount, &facts.BookedCount,
		&facts.CategoryCount, &facts.TotalPrice); err != nil {
		return nil, fmt.Errorf("computing trip facts: %w", err)
	}

	var version sql.NullInt64
	row = s.db.QueryRow(
		"SELECT version FROM trip_facts WHERE trip_id = ?", tripID)
	if err := row.Scan(&version); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("reading facts version: %w", err)
	}
	facts.Version = version.Int64 + 1

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO trip_facts
		 (trip_id, service_count, booked_count, category_count, total_price, version, computed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		facts.TripID, facts.ServiceCount, facts.BookedCount,
		facts.CategoryCount, facts.TotalPrice, facts.Version,
		formatTime(facts.ComputedAt))
	if err != nil {
		return nil, fmt.Errorf("writing trip facts: %w", err)
	}

	if _, err := s.db.Exec(
		"DELETE FROM trip_dirty WHERE trip_id = ? AND id <= ?",
		tripID, maxID); err != nil {
		return nil, fmt.Errorf("consuming dirty entries: %w", err)
	}
	return &facts, nil
}

// RecomputeAllDirty drains the dirty queue: recomputes facts for every
// trip with queued entries. Returns the trip IDs recomputed.
func (s *Store) RecomputeAllDirty() ([]string, error) {
	trips, err := s.DirtyTrips()
	if err != nil {
		return nil, err
	}
	for _, id := range trips {
		if _, err := s.RecomputeFacts(id); err != nil {
			return nil, err
		}
	}
	return trips, nil
}

// GetFacts retrieves the facts row for a trip.
// Returns ErrNotFound if facts were never computed.
func (s *Store) GetFacts(tripID string) (*types.TripFacts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	if tripID == "" {
		return nil, types.ErrInvalidID
	}
	row := s.db.QueryRow(
		`SELECT trip_id, service_count, booked_count, category_count,
		        total_price, version, computed_at
		 FROM trip_facts WHERE trip_id = ?`, tripID)
	var f types.TripFacts
	var computedAt string
	err := row.Scan(&f.TripID, &f.ServiceCount, &f.BookedCount,
		&f.CategoryCount, &f.TotalPrice, &f.Version, &computedAt)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning trip facts: %w", err)
	}
	if f.ComputedAt, err = parseTime(computedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

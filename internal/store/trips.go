package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fernwind/tripstore/pkg/types"
)

// CreateTrip inserts a trip. If TripID is empty a UUID v7 is generated.
// Returns the trip ID.
func (s *Store) CreateTrip(t *types.Trip) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return "", types.ErrStoreClosed
	}
	if t.Name == "" {
		return "", types.ErrInvalidData
	}
	if t.TripID == "" {
		t.TripID = newUUID()
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.Exec(
		`INSERT INTO trips (trip_id, name, destination, start_date, end_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.TripID, t.Name, t.Destination, t.StartDate, t.EndDate,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return "", fmt.Errorf("inserting trip: %w", err)
	}
	return t.TripID, nil
}

// GetTrip retrieves a trip by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (s *Store) GetTrip(id string) (*types.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	row := s.db.QueryRow(
		`SELECT trip_id, name, destination, start_date, end_date, created_at, updated_at
		 FROM trips WHERE trip_id = ?`, id)
	return scanTrip(row)
}

func scanTrip(row *sql.Row) (*types.Trip, error) {
	var t types.Trip
	var createdAt, updatedAt string
	err := row.Scan(&t.TripID, &t.Name, &t.Destination, &t.StartDate,
		&t.EndDate, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning trip: %w", err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTrip rewrites a trip's mutable fields.
// Returns ErrNotFound if the trip does not exist.
func (s *Store) UpdateTrip(t *types.Trip) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	if t.TripID == "" {
		return types.ErrInvalidID
	}
	if t.Name == "" {
		return types.ErrInvalidData
	}
	t.UpdatedAt = time.Now()
	res, err := s.db.Exec(
		`UPDATE trips SET name = ?, destination = ?, start_date = ?, end_date = ?, updated_at = ?
		 WHERE trip_id = ?`,
		t.Name, t.Destination, t.StartDate, t.EndDate,
		formatTime(t.UpdatedAt), t.TripID)
	if err != nil {
		return fmt.Errorf("updating trip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating trip: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// DeleteTrip removes a trip together with its facts and queued dirty
// entries. Owned services are detached, not deleted: they revert to plain
// cache entries and expire on their own.
func (s *Store) DeleteTrip(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	if id == "" {
		return types.ErrInvalidID
	}

	// Detaching fires the update trigger, which queues dirty entries for a
	// trip about to disappear; those are cleaned up below.
	if _, err := s.db.Exec(
		"UPDATE services SET trip_id = NULL WHERE trip_id = ?", id); err != nil {
		return fmt.Errorf("detaching services: %w", err)
	}

	res, err := s.db.Exec("DELETE FROM trips WHERE trip_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting trip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting trip: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	if _, err := s.db.Exec("DELETE FROM trip_facts WHERE trip_id = ?", id); err != nil {
		return fmt.Errorf("deleting trip facts: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM trip_dirty WHERE trip_id = ?", id); err != nil {
		return fmt.Errorf("deleting dirty entries: %w", err)
	}
	return nil
}

// ListTrips returns all trips ordered by creation time.
func (s *Store) ListTrips() ([]*types.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	rows, err := s.db.Query(
		`SELECT trip_id, name, destination, start_date, end_date, created_at, updated_at
		 FROM trips ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing trips: %w", err)
	}
	defer rows.Close()

	var trips []*types.Trip
	for rows.Next() {
		var t types.Trip
		var createdAt, updatedAt string
		if err := rows.Scan(&t.TripID, &t.Name, &t.Destination, &t.StartDate,
			&t.EndDate, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning trip: %w", err)
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		trips = append(trips, &t)
	}
	return trips, rows.Err()
}

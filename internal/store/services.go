package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fernwind/tripstore/pkg/types"
)

const serviceColumns = `service_id, trip_id, category, source, name, location,
	start_date, end_date, price, currency, rating, booked, query_hash,
	expires_at, payload, created_at`

// CreateService inserts a service row. If ServiceID is empty a UUID v7 is
// generated. Inserting a service with an owning trip fires the dirty
// trigger for that trip. Returns the service ID.
func (s *Store) CreateService(svc *types.Service) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return "", types.ErrStoreClosed
	}
	if err := svc.Validate(); err != nil {
		return "", err
	}
	if svc.ServiceID == "" {
		svc.ServiceID = newUUID()
	}
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO services (`+serviceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		svc.ServiceID, nullString(svc.TripID), svc.Category, svc.Source,
		svc.Name, svc.Location, svc.StartDate, svc.EndDate, svc.Price,
		svc.Currency, svc.Rating, boolInt(svc.Booked), svc.QueryHash,
		nullTime(svc.ExpiresAt), string(svc.Payload),
		formatTime(svc.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("inserting service: %w", err)
	}
	return svc.ServiceID, nil
}

// GetService retrieves a service by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (s *Store) GetService(id string) (*types.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	rows, err := s.db.Query(
		`SELECT `+serviceColumns+` FROM services WHERE service_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying service: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying service: %w", err)
		}
		return nil, types.ErrNotFound
	}
	return scanService(rows)
}

// UpdateService rewrites a service row. The dirty trigger queues entries
// for the old and new owning trips as needed.
// Returns ErrNotFound if the service does not exist.
func (s *Store) UpdateService(svc *types.Service) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	if svc.ServiceID == "" {
		return types.ErrInvalidID
	}
	if err := svc.Validate(); err != nil {
		return err
	}
	res, err := s.db.Exec(
		`UPDATE services SET trip_id = ?, category = ?, source = ?, name = ?,
		    location = ?, start_date = ?, end_date = ?, price = ?,
		    currency = ?, rating = ?, booked = ?, query_hash = ?,
		    expires_at = ?, payload = ?
		 WHERE service_id = ?`,
		nullString(svc.TripID), svc.Category, svc.Source, svc.Name,
		svc.Location, svc.StartDate, svc.EndDate, svc.Price, svc.Currency,
		svc.Rating, boolInt(svc.Booked), svc.QueryHash,
		nullTime(svc.ExpiresAt), string(svc.Payload), svc.ServiceID)
	if err != nil {
		return fmt.Errorf("updating service: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating service: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// DeleteService removes a service by ID. Deleting an owned service fires
// the dirty trigger for its trip.
func (s *Store) DeleteService(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return types.ErrStoreClosed
	}
	if id == "" {
		return types.ErrInvalidID
	}
	res, err := s.db.Exec("DELETE FROM services WHERE service_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting service: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting service: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// ServicesForTrip returns the services owned by a trip, oldest first.
func (s *Store) ServicesForTrip(tripID string) ([]*types.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	if tripID == "" {
		return nil, types.ErrInvalidID
	}
	rows, err := s.db.Query(
		`SELECT `+serviceColumns+` FROM services WHERE trip_id = ? ORDER BY created_at`,
		tripID)
	if err != nil {
		return nil, fmt.Errorf("querying trip services: %w", err)
	}
	defer rows.Close()

	var svcs []*types.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		svcs = append(svcs, svc)
	}
	return svcs, rows.Err()
}

// ServicesForQuery returns the cached services recorded for a search-cache
// key, oldest first.
func (s *Store) ServicesForQuery(queryHash, category string) ([]*types.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return nil, types.ErrStoreClosed
	}
	if queryHash == "" {
		return nil, types.ErrInvalidID
	}
	rows, err := s.db.Query(
		`SELECT `+serviceColumns+` FROM services
		 WHERE query_hash = ? AND category = ? ORDER BY created_at`,
		queryHash, category)
	if err != nil {
		return nil, fmt.Errorf("querying cached services: %w", err)
	}
	defer rows.Close()

	var svcs []*types.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		svcs = append(svcs, svc)
	}
	return svcs, rows.Err()
}

// scanService reads one service row from a positioned *sql.Rows.
func scanService(rows *sql.Rows) (*types.Service, error) {
	var svc types.Service
	var tripID, expiresAt sql.NullString
	var booked int
	var payload, createdAt string
	err := rows.Scan(&svc.ServiceID, &tripID, &svc.Category, &svc.Source,
		&svc.Name, &svc.Location, &svc.StartDate, &svc.EndDate, &svc.Price,
		&svc.Currency, &svc.Rating, &booked, &svc.QueryHash, &expiresAt,
		&payload, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scanning service: %w", err)
	}
	if tripID.Valid {
		svc.TripID = &tripID.String
	}
	svc.Booked = booked != 0
	if payload != "" {
		svc.Payload = []byte(payload)
	}
	if expiresAt.Valid && expiresAt.String != "" {
		if svc.ExpiresAt, err = parseTime(expiresAt.String); err != nil {
			return nil, err
		}
	}
	if svc.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &svc, nil
}

// nullString maps a nil pointer to SQL NULL.
func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// nullTime maps the zero time to SQL NULL.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

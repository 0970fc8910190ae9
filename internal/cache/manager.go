package cache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fernwind/tripstore/internal/store"
	"github.com/fernwind/tripstore/pkg/types"
)

// dirtyRetention matches the prune window of the fallback sweep trigger:
// a dirty entry older than this has outlived any plausible drain cycle.
const dirtyRetention = 7 * 24 * time.Hour

// Manager serves cache lookups and populates cache rows. Reads and writes
// are independent per key; two concurrent miss callers may both fetch and
// both write, and the index's unique key makes the second write a replace.
type Manager struct {
	store *store.Store

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewManager returns a Manager backed by an open store.
func NewManager(s *store.Store) *Manager {
	return &Manager{store: s, now: time.Now}
}

// HitResult is the outcome of a cache lookup. NeedsRefresh flags a hit
// inside the refresh window: the caller should trigger an asynchronous
// repopulation while still serving Results.
type HitResult struct {
	Hit          bool
	NeedsRefresh bool
	Results      []*types.Service
	Entry        *types.SearchIndexEntry
}

// CheckCacheHit looks up a live index entry for (hash, category). A hit
// records the access (counter and last-access timestamp). An expired or
// absent entry is a miss.
func (m *Manager) CheckCacheHit(hash, category string) (*HitResult, error) {
	db, err := m.store.DB()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(
		`SELECT query_hash, category, params, result_count, source, duration_ms,
		        created_at, expires_at, last_access_at, access_count
		 FROM search_cache WHERE query_hash = ? AND category = ?`,
		hash, category)
	entry, err := scanIndexEntry(row)
	if err == types.ErrNotFound {
		return &HitResult{}, nil
	}
	if err != nil {
		return nil, err
	}

	now := m.now()
	if !now.Before(entry.ExpiresAt) {
		// Expired rows are left for Sweep or the next populate to replace.
		return &HitResult{}, nil
	}

	results, err := m.store.ServicesForQuery(hash, category)
	if err != nil {
		return nil, err
	}

	entry.AccessCount++
	entry.LastAccessAt = now
	if _, err := db.Exec(
		`UPDATE search_cache SET access_count = ?, last_access_at = ?
		 WHERE query_hash = ? AND category = ?`,
		entry.AccessCount, formatTime(now), hash, category); err != nil {
		return nil, fmt.Errorf("recording cache access: %w", err)
	}

	policy := PolicyFor(category)
	refreshAt := entry.CreatedAt.Add(policy.TTL - policy.RefreshThreshold)
	return &HitResult{
		Hit:          true,
		NeedsRefresh: !now.Before(refreshAt),
		Results:      results,
		Entry:        entry,
	}, nil
}

// CacheSearchResults replaces the index entry for (hash, category) with a
// fresh expiry from the category policy and persists each result as a
// cached service row. Previously cached unowned rows for the key are
// superseded.
func (m *Manager) CacheSearchResults(hash, category string, params types.SearchParams,
	results []*types.Service, source string, duration time.Duration) error {

	db, err := m.store.DB()
	if err != nil {
		return err
	}
	if !types.ValidCategory(category) {
		return types.ErrUnknownCategory
	}

	now := m.now()
	expires := now.Add(PolicyFor(category).TTL)

	if _, err := db.Exec(
		`INSERT OR REPLACE INTO search_cache
		 (query_hash, category, params, result_count, source, duration_ms,
		  created_at, expires_at, last_access_at, access_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		hash, category, CanonicalParams(params), len(results), source,
		duration.Milliseconds(), formatTime(now), formatTime(expires),
		formatTime(now)); err != nil {
		return fmt.Errorf("writing cache index: %w", err)
	}

	// Supersede the previous population; owned rows are not cache property.
	if _, err := db.Exec(
		`DELETE FROM services
		 WHERE query_hash = ? AND category = ? AND trip_id IS NULL`,
		hash, category); err != nil {
		return fmt.Errorf("superseding cached services: %w", err)
	}

	for _, svc := range results {
		svc.Category = category
		svc.QueryHash = hash
		svc.ExpiresAt = expires
		if _, err := m.store.CreateService(svc); err != nil {
			return fmt.Errorf("caching service %q: %w", svc.Name, err)
		}
	}
	return nil
}

// CacheItem persists a single service under a cache key. With an owning
// trip the row's lifetime is governed by the owner: the expiry column is
// still populated for uniform querying, but the sweep never reclaims it.
func (m *Manager) CacheItem(svc *types.Service, hash string, tripID *string) (string, error) {
	svc.QueryHash = hash
	svc.TripID = tripID
	if svc.ExpiresAt.IsZero() {
		svc.ExpiresAt = m.now().Add(PolicyFor(svc.Category).TTL)
	}
	return m.store.CreateService(svc)
}

// Criteria selects cached rows for invalidation. Zero fields match
// everything; set fields combine with AND.
type Criteria struct {
	Category         string    // Exact category.
	Source           string    // Exact provider platform.
	LocationContains string    // Case-insensitive location substring.
	CreatedBefore    time.Time // Age cutoff: rows created strictly before.
}

// Invalidate deletes unowned cached service rows matching the criteria and
// returns the count removed. No matches is success with a zero count.
func (m *Manager) Invalidate(c Criteria) (int64, error) {
	db, err := m.store.DB()
	if err != nil {
		return 0, err
	}

	where := []string{"trip_id IS NULL"}
	var args []any
	if c.Category != "" {
		where = append(where, "category = ?")
		args = append(args, c.Category)
	}
	if c.Source != "" {
		where = append(where, "source = ?")
		args = append(args, c.Source)
	}
	if c.LocationContains != "" {
		where = append(where, "location LIKE ?")
		args = append(args, "%"+c.LocationContains+"%")
	}
	if !c.CreatedBefore.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, formatTime(c.CreatedBefore))
	}

	res, err := db.Exec(
		"DELETE FROM services WHERE "+strings.Join(where, " AND "), args...)
	if err != nil {
		return 0, fmt.Errorf("invalidating cached services: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("invalidating cached services: %w", err)
	}
	return n, nil
}

// SweepStats reports what a sweep reclaimed.
type SweepStats struct {
	Services     int64 // Expired unowned service rows.
	IndexEntries int64 // Expired search-cache index rows.
	DirtyEntries int64 // Dirty-queue rows past the retention window.
}

// Sweep reclaims expired unowned services, expired index entries, and
// stale dirty-queue rows. This is the explicit periodic job; the
// probabilistic trigger installed by the migration catalog is a fallback
// for deployments that never schedule it.
func (m *Manager) Sweep() (SweepStats, error) {
	var stats SweepStats
	db, err := m.store.DB()
	if err != nil {
		return stats, err
	}
	now := formatTime(m.now())

	res, err := db.Exec(
		`DELETE FROM services
		 WHERE trip_id IS NULL AND expires_at IS NOT NULL AND expires_at < ?`, now)
	if err != nil {
		return stats, fmt.Errorf("sweeping cached services: %w", err)
	}
	if stats.Services, err = res.RowsAffected(); err != nil {
		return stats, fmt.Errorf("sweeping cached services: %w", err)
	}

	res, err = db.Exec("DELETE FROM search_cache WHERE expires_at < ?", now)
	if err != nil {
		return stats, fmt.Errorf("sweeping cache index: %w", err)
	}
	if stats.IndexEntries, err = res.RowsAffected(); err != nil {
		return stats, fmt.Errorf("sweeping cache index: %w", err)
	}

	cutoff := formatTime(m.now().Add(-dirtyRetention))
	res, err = db.Exec("DELETE FROM trip_dirty WHERE created_at < ?", cutoff)
	if err != nil {
		return stats, fmt.Errorf("sweeping dirty queue: %w", err)
	}
	if stats.DirtyEntries, err = res.RowsAffected(); err != nil {
		return stats, fmt.Errorf("sweeping dirty queue: %w", err)
	}
	return stats, nil
}

// scanIndexEntry reads one search_cache row.
func scanIndexEntry(row *sql.Row) (*types.SearchIndexEntry, error) {
	var e types.SearchIndexEntry
	var createdAt, expiresAt, lastAccessAt string
	err := row.Scan(&e.QueryHash, &e.Category, &e.Params, &e.ResultCount,
		&e.Source, &e.DurationMs, &createdAt, &expiresAt, &lastAccessAt,
		&e.AccessCount)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning cache index entry: %w", err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if e.LastAccessAt, err = parseTime(lastAccessAt); err != nil {
		return nil, err
	}
	return &e, nil
}

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

// Migration catalog for the tripstore schema. Entries are append-only:
// published migrations are never edited or reordered. All schema
// statements are conditional (IF NOT EXISTS) so a run interrupted mid-
// migration is safe to retry from the first statement.
package migrate

const migrationTripsServices = `
-- Aggregate roots and the category-discriminated services table.
-- Flattened filter columns alongside the full serialized payload.
CREATE TABLE IF NOT EXISTS trips (
    trip_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    destination TEXT,
    start_date TEXT,
    end_date TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS services (
    service_id TEXT PRIMARY KEY,
    trip_id TEXT REFERENCES trips(trip_id),
    category TEXT NOT NULL,
    source TEXT,
    name TEXT NOT NULL,
    location TEXT,
    start_date TEXT,
    end_date TEXT,
    price REAL NOT NULL DEFAULT 0,
    currency TEXT,
    rating REAL NOT NULL DEFAULT 0,
    booked INTEGER NOT NULL DEFAULT 0,
    query_hash TEXT,
    expires_at TEXT,
    payload TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_services_trip ON services(trip_id);
CREATE INDEX IF NOT EXISTS idx_services_category ON services(category);
CREATE INDEX IF NOT EXISTS idx_services_hash ON services(query_hash);
CREATE INDEX IF NOT EXISTS idx_services_expires ON services(expires_at);
`

const migrationSearchCache = `
-- Search-cache index: one metadata row per cached query shape.
-- The composite primary key makes a refresh replace rather than duplicate.
CREATE TABLE IF NOT EXISTS search_cache (
    query_hash TEXT NOT NULL,
    category TEXT NOT NULL,
    params TEXT NOT NULL,
    result_count INTEGER NOT NULL DEFAULT 0,
    source TEXT,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    expires_at TEXT NOT NULL,
    last_access_at TEXT NOT NULL,
    access_count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (query_hash, category)
);

CREATE INDEX IF NOT EXISTS idx_search_cache_expires ON search_cache(expires_at);
`

const migrationTripFacts = `
-- Precomputed aggregates and the dirty queue feeding their recomputation.
CREATE TABLE IF NOT EXISTS trip_facts (
    trip_id TEXT PRIMARY KEY,
    service_count INTEGER NOT NULL DEFAULT 0,
    booked_count INTEGER NOT NULL DEFAULT 0,
    category_count INTEGER NOT NULL DEFAULT 0,
    total_price REAL NOT NULL DEFAULT 0,
    version INTEGER NOT NULL DEFAULT 0,
    computed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trip_dirty (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    trip_id TEXT NOT NULL,
    reason TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_trip_dirty_trip ON trip_dirty(trip_id);
`

const migrationDirtyTriggers = `
-- Write-triggers on the services table. Each write to an owned service
-- appends a dirty-queue row; the consumer recomputes facts fresh from the
-- base tables, so duplicate signals are harmless.
CREATE TRIGGER IF NOT EXISTS services_dirty_insert AFTER INSERT ON services
WHEN NEW.trip_id IS NOT NULL
BEGIN
    INSERT INTO trip_dirty (trip_id, reason) VALUES (NEW.trip_id, 'insert_services');
END;

-- An update may move a service between trips; both sides go stale.
CREATE TRIGGER IF NOT EXISTS services_dirty_update AFTER UPDATE ON services
WHEN NEW.trip_id IS NOT NULL OR OLD.trip_id IS NOT NULL
BEGIN
    INSERT INTO trip_dirty (trip_id, reason)
    SELECT NEW.trip_id, 'update_services' WHERE NEW.trip_id IS NOT NULL;
    INSERT INTO trip_dirty (trip_id, reason)
    SELECT OLD.trip_id, 'update_services'
    WHERE OLD.trip_id IS NOT NULL AND OLD.trip_id IS NOT NEW.trip_id;
END;

CREATE TRIGGER IF NOT EXISTS services_dirty_delete AFTER DELETE ON services
WHEN OLD.trip_id IS NOT NULL
BEGIN
    INSERT INTO trip_dirty (trip_id, reason) VALUES (OLD.trip_id, 'delete_services');
END;
`

const migrationCacheSweepTrigger = `
-- Probabilistic sweep: fires on roughly 1 in 20 cache-index inserts and
-- reclaims expired unowned rows. Fallback only; the explicit Sweep call is
-- the mechanism of record.
CREATE TRIGGER IF NOT EXISTS search_cache_sweep AFTER INSERT ON search_cache
WHEN (abs(random()) % 20) = 0
BEGIN
    DELETE FROM services
    WHERE trip_id IS NULL
      AND expires_at IS NOT NULL
      AND expires_at < strftime('%Y-%m-%dT%H:%M:%SZ', 'now');
    DELETE FROM search_cache
    WHERE expires_at < strftime('%Y-%m-%dT%H:%M:%SZ', 'now');
    DELETE FROM trip_dirty
    WHERE created_at < strftime('%Y-%m-%dT%H:%M:%SZ', 'now', '-7 days');
END;
`

// DefaultRegistry returns the tripstore migration catalog in apply order.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister("001_trips_services", migrationTripsServices)
	r.MustRegister("002_search_cache", migrationSearchCache)
	r.MustRegister("003_trip_facts", migrationTripFacts)
	r.MustRegister("004_dirty_triggers", migrationDirtyTriggers)
	r.MustRegister("005_cache_sweep_trigger", migrationCacheSweepTrigger)
	return r
}

// Dirty-queue and aggregate-facts types. A write to a tracked table appends
// a DirtyEntry; a consumer drains the queue and rewrites TripFacts fresh
// from the base tables.
package types

import "time"

// Dirty reason tags, one per tracked table and operation. The triggers
// installed by the migration catalog use these exact values.
const (
	ReasonInsertServices = "insert_services"
	ReasonUpdateServices = "update_services"
	ReasonDeleteServices = "delete_services"
)

// DirtyEntry signals that a trip's derived facts are stale. Accumulation is
// at-least-once: several writes before a drain simply produce several
// entries for the same trip.
type DirtyEntry struct {
	ID        int64     // Auto-increment queue id.
	TripID    string    // Subject trip.
	Reason    string    // Free-text tag describing the triggering write.
	CreatedAt time.Time // Timestamp of the write.
}

// TripFacts is the precomputed aggregate row for one trip. It is rewritten
// whole on every recompute, never patched incrementally, so it can be stale
// but never half-updated.
type TripFacts struct {
	TripID        string    // Subject trip.
	ServiceCount  int64     // Services owned by the trip.
	BookedCount   int64     // Owned services marked booked.
	CategoryCount int64     // Distinct categories among owned services.
	TotalPrice    float64   // Sum of owned service prices.
	Version       int64     // Incremented on every recompute.
	ComputedAt    time.Time // Timestamp of the last recompute.
}

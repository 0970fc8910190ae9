// Search-cache types: the normalized query shape and the index row that
// records what was cached for it.
package types

import "time"

// SearchParams is the category-relevant subset of a search request. Two
// requests with the same normalized SearchParams share one cache entry.
type SearchParams struct {
	Category    string `json:"category"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date,omitempty"` // ISO date (YYYY-MM-DD).
	EndDate     string `json:"end_date,omitempty"`   // ISO date (YYYY-MM-DD).
	Adults      int    `json:"adults,omitempty"`
	Children    int    `json:"children,omitempty"`
	Rooms       int    `json:"rooms,omitempty"`

	// Extras holds category-specific filters (cabin class, minimum star
	// rating, cuisine, ...). Keys are provider-neutral tag names.
	Extras map[string]string `json:"extras,omitempty"`
}

// SearchIndexEntry is the metadata row for one cached query shape.
// Unique per (QueryHash, Category). A refresh supersedes the row rather
// than mutating it: the new insert replaces via the unique key.
type SearchIndexEntry struct {
	QueryHash   string    // Short hex digest of the normalized params.
	Category    string    // One of the Category constants.
	Params      string    // Canonical JSON of the normalized params.
	ResultCount int       // Number of services cached for this query.
	Source      string    // Provider platform that served the fetch.
	DurationMs  int64     // External fetch duration, for diagnostics.
	CreatedAt   time.Time // When this entry was populated.
	ExpiresAt   time.Time // CreatedAt + category TTL.

	LastAccessAt time.Time // Bumped on every hit.
	AccessCount  int64     // Bumped on every hit.
}

// Service entity: one category-discriminated travel service, either owned
// by a trip or held only as a cached search result.
package types

import (
	"encoding/json"
	"time"
)

// Service categories. Each category has its own cache TTL policy.
const (
	CategoryHotel      = "hotel"
	CategoryFlight     = "flight"
	CategoryActivity   = "activity"
	CategoryRestaurant = "restaurant"
	CategoryTransport  = "transport"
)

// validCategories is the set of recognized category values.
var validCategories = map[string]bool{
	CategoryHotel:      true,
	CategoryFlight:     true,
	CategoryActivity:   true,
	CategoryRestaurant: true,
	CategoryTransport:  true,
}

// ValidCategory reports whether category is a recognized service category.
func ValidCategory(category string) bool {
	return validCategories[category]
}

// Categories lists all recognized service categories for enumeration.
var Categories = []string{
	CategoryHotel,
	CategoryFlight,
	CategoryActivity,
	CategoryRestaurant,
	CategoryTransport,
}

// Service is a denormalized travel service row. The flattened columns
// (category, location, dates, price, rating) exist for cheap filtering;
// Payload carries the full provider response for rendering.
type Service struct {
	ServiceID string // UUID v7, generated on creation.

	// TripID is the owning trip; nil for pure cache entries. Services with
	// an owner are never reclaimed by the cache sweep.
	TripID *string

	Category string // One of the Category constants.
	Source   string // Provider platform the service came from.
	Name     string // Display name (required, non-empty).
	Location string // Free-text location used for substring filtering.

	StartDate string // ISO date (YYYY-MM-DD), empty when not applicable.
	EndDate   string // ISO date (YYYY-MM-DD), empty when not applicable.

	Price    float64 // Total price in Currency units; 0 when unknown.
	Currency string  // ISO 4217 code, e.g. "EUR".
	Rating   float64 // Star rating or review score; 0 when unknown.
	Booked   bool    // Whether the traveller confirmed this service.

	// QueryHash links the service to the search-cache index entry that
	// produced it; empty for services created directly on a trip.
	QueryHash string

	// ExpiresAt is when the row becomes reclaimable. Populated even for
	// owned services so queries stay uniform, but ownership wins: owned
	// rows are never swept.
	ExpiresAt time.Time

	Payload   json.RawMessage // Full serialized provider payload.
	CreatedAt time.Time       // Timestamp of creation.
}

// Validate checks the fields required for persisting a service.
func (s *Service) Validate() error {
	if s.Name == "" {
		return ErrInvalidData
	}
	if !ValidCategory(s.Category) {
		return ErrUnknownCategory
	}
	return nil
}

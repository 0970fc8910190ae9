package types

import "time"

// Trip is the aggregate root that services, dirty entries, and facts hang
// off. A trip groups the services a traveller has collected for one journey.
type Trip struct {
	TripID      string    // UUID v7, generated on creation.
	Name        string    // Human-readable name (required, non-empty).
	Destination string    // Primary destination, free text.
	StartDate   string    // ISO date (YYYY-MM-DD), may be empty while planning.
	EndDate     string    // ISO date (YYYY-MM-DD), may be empty while planning.
	CreatedAt   time.Time // Timestamp of creation.
	UpdatedAt   time.Time // Timestamp of last modification.
}

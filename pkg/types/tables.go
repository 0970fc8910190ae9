package types

// Table names of the schema surface installed by the migration catalog.
const (
	TripsTable       = "trips"
	ServicesTable    = "services"
	SearchCacheTable = "search_cache"
	TripFactsTable   = "trip_facts"
	TripDirtyTable   = "trip_dirty"
)

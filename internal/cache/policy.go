package cache

import (
	"time"

	"github.com/fernwind/tripstore/pkg/types"
)

// Policy is a category's expiry configuration. RefreshThreshold is the
// lead time before expiry at which a hit is flagged for proactive
// background repopulation while still serving valid results.
type Policy struct {
	TTL              time.Duration
	RefreshThreshold time.Duration
}

// Static policy table. Accommodation prices move slowly, so hotels get a
// day-scale TTL; flight prices are volatile, so hour-scale; everything
// else falls between.
var policies = map[string]Policy{
	types.CategoryHotel:      {TTL: 24 * time.Hour, RefreshThreshold: 4 * time.Hour},
	types.CategoryFlight:     {TTL: 2 * time.Hour, RefreshThreshold: 30 * time.Minute},
	types.CategoryActivity:   {TTL: 6 * time.Hour, RefreshThreshold: time.Hour},
	types.CategoryRestaurant: {TTL: 6 * time.Hour, RefreshThreshold: time.Hour},
	types.CategoryTransport:  {TTL: 4 * time.Hour, RefreshThreshold: 45 * time.Minute},
}

// defaultPolicy covers categories without an explicit entry.
var defaultPolicy = Policy{TTL: 6 * time.Hour, RefreshThreshold: time.Hour}

// PolicyFor returns the expiry policy for a category.
func PolicyFor(category string) Policy {
	if p, ok := policies[category]; ok {
		return p
	}
	return defaultPolicy
}

package types

import "time"

// Dealer represents a listing source
type Dealer struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
	Active bool   `json:"active"`

	// EarliestListingAt is the first-seen timestamp of the dealer's oldest
	// listing. Listings discovered near this baseline belong to the dealer's
	// initial bulk import, not genuinely new inventory.
	EarliestListingAt time.Time `json:"earliestListingAt"`
}

package types

import "time"

// SearchResponse is the wire-level shape returned to browse/search clients
type SearchResponse struct {
	Listings   []Listing `json:"listings"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`

	// Secondary aggregations. Best-effort: empty/nil when the underlying
	// sub-queries fail or time out, never a reason to fail the request.
	Facets         *FacetSet         `json:"facets"`
	PriceHistogram []HistogramBucket `json:"priceHistogram"`
	LastUpdated    *time.Time        `json:"lastUpdated"`

	// Caller context
	IsDelayed        bool   `json:"isDelayed"`
	SubscriptionTier string `json:"subscriptionTier"`
	IsAdmin          bool   `json:"isAdmin"`
	IsURLSearch      bool   `json:"isUrlSearch"`
}

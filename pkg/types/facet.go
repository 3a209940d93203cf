package types

// FacetCount is one value->count pair within a facet dimension
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetSet holds the cross-filtered counts for every facet dimension.
// Each dimension's counts reflect all active filters except that
// dimension's own filter.
type FacetSet struct {
	ItemTypes         []FacetCount `json:"itemTypes"`
	Certifications    []FacetCount `json:"certifications"`
	Dealers           []FacetCount `json:"dealers"`
	HistoricalPeriods []FacetCount `json:"historicalPeriods"`
	SignatureStatuses []FacetCount `json:"signatureStatuses"`
}

// HistogramBucket is one price-histogram bucket over normalized JPY prices.
// High is exclusive; the last bucket may be open-ended (High == 0).
type HistogramBucket struct {
	Low   int64 `json:"low"`
	High  int64 `json:"high"`
	Count int   `json:"count"`
}

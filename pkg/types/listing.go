package types

import "time"

// Status is a listing's availability lifecycle state
type Status string

const (
	StatusAvailable    Status = "available"
	StatusSold         Status = "sold"
	StatusPresumedSold Status = "presumed_sold"
	StatusWithdrawn    Status = "withdrawn"
)

// Listing represents a dealer's item for sale
type Listing struct {
	// Identity
	ID        int64  `json:"id"`
	DealerID  int64  `json:"dealerId"`
	SourceURL string `json:"sourceUrl"`

	// Classification
	ItemType string `json:"itemType"` // canonical vocab value (katana, tsuba, ...)
	Category string `json:"category"` // blades, tosogu, other

	// Attribution
	MakerName   string `json:"makerName"`   // as scraped, usually kanji
	MakerRomaji string `json:"makerRomaji"` // normalized romaji form
	School      string `json:"school"`
	Province    string `json:"province"`
	ArtisanCode string `json:"artisanCode"` // maker registry code, empty if unmatched

	// Certification
	CertType    string `json:"certType"`
	CertSession string `json:"certSession"`
	CertOrg     string `json:"certOrg"`

	// Physical / historical
	NagasaCM        *float64 `json:"nagasaCm"` // blade length, nil for fittings
	Period          string   `json:"period"`
	SignatureStatus string   `json:"signatureStatus"` // signed / unsigned

	// Price. PriceJPY nil means "ask" (price on request).
	PriceValue    *float64 `json:"priceValue"`
	PriceCurrency string   `json:"priceCurrency"`
	PriceJPY      *int64   `json:"priceJpy"`

	// Lifecycle
	Status          Status    `json:"status"`
	FirstSeenAt     time.Time `json:"firstSeenAt"`
	LastScrapedAt   time.Time `json:"lastScrapedAt"`
	StatusChangedAt time.Time `json:"statusChangedAt"`

	// NewDiscovery is true when the listing appeared well after its dealer's
	// earliest-listing baseline, i.e. genuinely new inventory rather than part
	// of the dealer's initial bulk import.
	NewDiscovery bool `json:"newDiscovery"`

	// FeaturedScore is the precomputed quality x heat x freshness score used
	// by the featured sort. Nil sorts last.
	FeaturedScore *float64 `json:"featuredScore"`

	// Free text
	Title         string `json:"title"`
	TitleEN       string `json:"titleEn"`
	Description   string `json:"description"`
	DescriptionEN string `json:"descriptionEn"`
}

// HasPrice reports whether the listing carries a normalized numeric price.
// Ask items (price on request) return false.
func (l *Listing) HasPrice() bool {
	return l.PriceJPY != nil
}

// Validate checks listing field consistency
func (l *Listing) Validate() error {
	if l.ID == 0 {
		return ErrInvalidListingID
	}
	if l.DealerID == 0 {
		return ErrInvalidDealerID
	}
	switch l.Status {
	case StatusAvailable, StatusSold, StatusPresumedSold, StatusWithdrawn:
	default:
		return ErrInvalidStatus
	}
	if l.PriceJPY != nil && l.PriceValue == nil {
		return ErrInconsistentPrice
	}
	return nil
}

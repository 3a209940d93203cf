package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/nihonto-search/internal/query"
	"github.com/dshills/nihonto-search/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrRangeExceeded is returned when a requested page window lies beyond
	// the engine's addressable range. Callers treat it as an empty page, not
	// a fault: an out-of-range page is a client navigation artifact.
	ErrRangeExceeded = errors.New("requested range exceeded")
)

// MaxOffset is the deepest pagination window the adapters will serve
const MaxOffset = 100000

// Capabilities describes what the underlying engine can do, so the facet
// aggregator can decide between pushdown and page-and-sum aggregation.
type Capabilities struct {
	// MaxRowsPerQuery caps rows returned per Select; 0 means unbounded
	MaxRowsPerQuery int
	// GroupCountPushdown reports whether GroupCount is supported natively
	GroupCountPushdown bool
}

// Store is the row-oriented query engine the compiled query executes
// against. Implementations translate the predicate IR into their own
// dialect; the compiler never sees SQL.
type Store interface {
	// Select returns one page of listings matching the predicate set
	Select(ctx context.Context, preds query.Set, sort query.Sort, limit, offset int) ([]types.Listing, error)

	// Count returns the total number of matching rows
	Count(ctx context.Context, preds query.Set) (int, error)

	// GroupCount returns value->count pairs for a field over all matching
	// rows. Implementations without pushdown return ErrNotFound and callers
	// fall back to page-and-sum aggregation.
	GroupCount(ctx context.Context, preds query.Set, field query.Field) ([]types.FacetCount, error)

	// PriceHistogram buckets matching priced rows by normalized JPY value.
	// bounds are ascending bucket lower bounds; the last bucket is open.
	PriceHistogram(ctx context.Context, preds query.Set, bounds []int64) ([]types.HistogramBucket, error)

	// LastUpdated returns the most recent scrape timestamp over the match set
	LastUpdated(ctx context.Context, preds query.Set) (*time.Time, error)

	// Dealers returns all known dealers
	Dealers(ctx context.Context) ([]types.Dealer, error)

	Capabilities() Capabilities
	Close() error
}

// DefaultHistogramBounds are the log-spaced JPY bucket lower bounds
var DefaultHistogramBounds = []int64{
	0, 100000, 250000, 500000, 1000000, 2500000, 5000000, 10000000,
}

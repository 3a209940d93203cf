// Package facets computes cross-filtered facet counts over the compiled
// predicate set. Each dimension is counted with every active filter applied
// except that dimension's own, so selecting "juyo" still shows what the
// other certification buckets would hold.
package facets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/nihonto-search/internal/query"
	"github.com/dshills/nihonto-search/internal/storage"
	"github.com/dshills/nihonto-search/pkg/types"
)

const (
	// DefaultCacheSize bounds the facet cache entries
	DefaultCacheSize = 1000
	// DefaultCacheTTL is how long a facet set stays fresh
	DefaultCacheTTL = 5 * time.Minute
	// DefaultScanPageSize is the page size for the page-and-sum fallback
	DefaultScanPageSize = 1000
	// DefaultMaxScanRows caps how many rows the fallback will walk before
	// giving up on exact counts
	DefaultMaxScanRows = 50000
)

// Config tunes the aggregator. Zero values take the defaults above;
// CacheSize < 0 disables caching entirely.
type Config struct {
	CacheSize   int
	CacheTTL    time.Duration
	ScanPage    int
	MaxScanRows int
	Clock       func() time.Time
}

// Aggregator computes facet counts against a Store, caching whole facet
// sets keyed by the filter signature.
type Aggregator struct {
	store       storage.Store
	ttl         time.Duration
	scanPage    int
	maxScanRows int
	now         func() time.Time

	cache   *lru.Cache[[32]byte, *cacheEntry]
	cacheMu sync.RWMutex
}

// NewAggregator creates an aggregator over the given store
func NewAggregator(store storage.Store, cfg Config) *Aggregator {
	if cfg.CacheSize == 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.ScanPage == 0 {
		cfg.ScanPage = DefaultScanPageSize
	}
	if cfg.MaxScanRows == 0 {
		cfg.MaxScanRows = DefaultMaxScanRows
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	a := &Aggregator{
		store:       store,
		ttl:         cfg.CacheTTL,
		scanPage:    cfg.ScanPage,
		maxScanRows: cfg.MaxScanRows,
		now:         cfg.Clock,
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[[32]byte, *cacheEntry](cfg.CacheSize)
		if err != nil {
			panic(fmt.Sprintf("failed to create LRU cache: %v", err))
		}
		a.cache = cache
	}
	return a
}

// dimension binds a facet dimension tag to its listing field and the slot
// it fills in the result set.
type dimension struct {
	dim    query.Dim
	field  query.Field
	assign func(*types.FacetSet, []types.FacetCount)
}

var dimensions = []dimension{
	{query.DimItemType, query.FieldItemType, func(fs *types.FacetSet, c []types.FacetCount) { fs.ItemTypes = c }},
	{query.DimCert, query.FieldCertType, func(fs *types.FacetSet, c []types.FacetCount) { fs.Certifications = c }},
	{query.DimDealer, query.FieldDealerID, func(fs *types.FacetSet, c []types.FacetCount) { fs.Dealers = c }},
	{query.DimPeriod, query.FieldPeriod, func(fs *types.FacetSet, c []types.FacetCount) { fs.HistoricalPeriods = c }},
	{query.DimSignature, query.FieldSignature, func(fs *types.FacetSet, c []types.FacetCount) { fs.SignatureStatuses = c }},
}

// Facets computes the full cross-filtered facet set for a predicate set.
// All five dimensions run concurrently; the first error cancels the rest.
func (a *Aggregator) Facets(ctx context.Context, preds query.Set) (*types.FacetSet, error) {
	hash := signature(preds)
	if cached := a.checkCache(hash); cached != nil {
		return cached, nil
	}

	out := &types.FacetSet{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range dimensions {
		d := d
		g.Go(func() error {
			counts, err := a.countDimension(gctx, preds.Without(d.dim), d.field)
			if err != nil {
				return fmt.Errorf("failed to count %s facet: %w", d.field, err)
			}
			mu.Lock()
			d.assign(out, counts)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.storeInCache(hash, out)
	return out, nil
}

// countDimension prefers native group-count pushdown, falling back to
// paging the match set and summing app-side for engines that can't.
func (a *Aggregator) countDimension(ctx context.Context, preds query.Set, field query.Field) ([]types.FacetCount, error) {
	if a.store.Capabilities().GroupCountPushdown {
		return a.store.GroupCount(ctx, preds, field)
	}
	return a.pageAndSum(ctx, preds, field)
}

// pageAndSum walks the match set page by page and counts values app-side.
// The walk stops at the scan ceiling; deep catalogs get approximate counts
// rather than unbounded scans.
func (a *Aggregator) pageAndSum(ctx context.Context, preds query.Set, field query.Field) ([]types.FacetCount, error) {
	pageSize := a.scanPage
	if caps := a.store.Capabilities(); caps.MaxRowsPerQuery > 0 && caps.MaxRowsPerQuery < pageSize {
		pageSize = caps.MaxRowsPerQuery
	}

	tally := make(map[string]int)
	for offset := 0; offset < a.maxScanRows; offset += pageSize {
		page, err := a.store.Select(ctx, preds, query.SortNewest, pageSize, offset)
		if err != nil {
			if errors.Is(err, storage.ErrRangeExceeded) {
				break
			}
			return nil, err
		}
		for i := range page {
			if v := fieldValue(&page[i], field); v != "" {
				tally[v]++
			}
		}
		if len(page) < pageSize {
			break
		}
	}

	out := make([]types.FacetCount, 0, len(tally))
	for v, n := range tally {
		out = append(out, types.FacetCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

// fieldValue extracts the facetable value from a listing
func fieldValue(l *types.Listing, field query.Field) string {
	switch field {
	case query.FieldItemType:
		return l.ItemType
	case query.FieldCertType:
		return l.CertType
	case query.FieldDealerID:
		if l.DealerID <= 0 {
			return ""
		}
		return strconv.FormatInt(l.DealerID, 10)
	case query.FieldPeriod:
		return l.Period
	case query.FieldSignature:
		return l.SignatureStatus
	default:
		return ""
	}
}

// checkCache returns a still-fresh cached facet set, or nil
func (a *Aggregator) checkCache(hash [32]byte) *types.FacetSet {
	if a.cache == nil {
		return nil
	}
	now := a.now()

	a.cacheMu.RLock()
	entry, found := a.cache.Get(hash)
	if !found {
		a.cacheMu.RUnlock()
		return nil
	}
	if now.After(entry.expiresAt) {
		a.cacheMu.RUnlock()
		a.cacheMu.Lock()
		a.cache.Remove(hash)
		a.cacheMu.Unlock()
		return nil
	}
	facets := copyFacetSet(entry.facets)
	a.cacheMu.RUnlock()
	return facets
}

// storeInCache saves a computed facet set
func (a *Aggregator) storeInCache(hash [32]byte, facets *types.FacetSet) {
	if a.cache == nil {
		return
	}
	entry := &cacheEntry{
		facets:    copyFacetSet(facets),
		expiresAt: a.now().Add(a.ttl),
	}
	a.cacheMu.Lock()
	a.cache.Add(hash, entry)
	a.cacheMu.Unlock()
}

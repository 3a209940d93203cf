// Package search orchestrates one browse/search request end to end:
// entitlement resolution, query compilation, concurrent execution of the
// page plus its secondary aggregations, and response assembly.
package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dshills/nihonto-search/internal/compile"
	"github.com/dshills/nihonto-search/internal/entitlement"
	"github.com/dshills/nihonto-search/internal/facets"
	"github.com/dshills/nihonto-search/internal/query"
	"github.com/dshills/nihonto-search/internal/rerank"
	"github.com/dshills/nihonto-search/internal/storage"
	"github.com/dshills/nihonto-search/pkg/types"
)

// DefaultSecondaryTimeout bounds how long one request waits for its
// best-effort aggregations before returning the page without them.
const DefaultSecondaryTimeout = 2 * time.Second

// Service wires the compiler, the execution store and the facet aggregator
// behind one entry point.
type Service struct {
	compiler         *compile.Compiler
	store            storage.Store
	facets           *facets.Aggregator
	ents             entitlement.Service
	logger           *log.Logger
	secondaryTimeout time.Duration
}

// New creates a search service
func New(compiler *compile.Compiler, store storage.Store, agg *facets.Aggregator, ents entitlement.Service, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		compiler:         compiler,
		store:            store,
		facets:           agg,
		ents:             ents,
		logger:           logger,
		secondaryTimeout: DefaultSecondaryTimeout,
	}
}

// SetSecondaryTimeout overrides the deadline for the best-effort
// aggregations. Non-positive values keep the current setting.
func (s *Service) SetSecondaryTimeout(d time.Duration) {
	if d > 0 {
		s.secondaryTimeout = d
	}
}

// Search executes one request. The page and its total are the primary
// result and their failure fails the request; facets, the price histogram
// and the freshness timestamp are best-effort and degrade to empty on
// error or when the secondary deadline fires. An out-of-range page
// degrades to an empty well-formed page.
func (s *Service) Search(ctx context.Context, req query.Request, token string) (*types.SearchResponse, error) {
	ent, err := s.ents.Entitlement(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entitlement: %w", err)
	}

	compiled, err := s.compiler.Compile(ctx, req, ent)
	if err != nil {
		return nil, fmt.Errorf("failed to compile query: %w", err)
	}

	resp := &types.SearchResponse{
		Page:             compiled.Offset/compiled.Limit + 1,
		IsDelayed:        ent.IsDelayed,
		SubscriptionTier: ent.Tier,
		IsAdmin:          ent.IsAdmin,
		IsURLSearch:      compiled.IsURLSearch,
	}

	// Secondary aggregations run concurrently with the page under their
	// own deadline so one slow sub-query cannot hold the whole response.
	// They are skipped for URL identity lookups and degrade to empty on
	// failure or timeout everywhere else.
	sctx, cancel := context.WithTimeout(ctx, s.secondaryTimeout)
	defer cancel()

	var facetCh chan *types.FacetSet
	var histCh chan []types.HistogramBucket
	if !compiled.IsURLSearch {
		facetCh = make(chan *types.FacetSet, 1)
		go func() {
			fs, err := s.facets.Facets(sctx, compiled.Preds)
			if err != nil {
				s.logger.Printf("facets degraded: %v", err)
				fs = nil
			}
			facetCh <- fs
		}()

		histCh = make(chan []types.HistogramBucket, 1)
		go func() {
			buckets, err := s.store.PriceHistogram(sctx, compiled.Preds, nil)
			if err != nil {
				s.logger.Printf("price histogram degraded: %v", err)
				buckets = nil
			}
			histCh <- buckets
		}()
	}

	updatedCh := make(chan *time.Time, 1)
	go func() {
		ts, err := s.store.LastUpdated(sctx, compiled.Preds)
		if err != nil {
			s.logger.Printf("last-updated degraded: %v", err)
			ts = nil
		}
		updatedCh <- ts
	}()

	// Primary: the page and its total, on the caller's context.
	total, err := s.store.Count(ctx, compiled.Preds)
	if err != nil {
		return nil, fmt.Errorf("failed to count results: %w", err)
	}
	resp.Total = total

	listings, err := s.store.Select(ctx, compiled.Preds, compiled.Sort, compiled.Limit, compiled.Offset)
	if err != nil {
		if errors.Is(err, storage.ErrRangeExceeded) {
			// A page beyond the offset cap answers with an empty
			// well-formed response: zero rows, zero total, no
			// aggregations.
			resp.Total = 0
			resp.Listings = []types.Listing{}
			return resp, nil
		}
		return nil, fmt.Errorf("failed to select results: %w", err)
	}
	if listings == nil {
		listings = []types.Listing{}
	}
	resp.Listings = listings

	// Collect the best-effort results. A sub-query still running when the
	// secondary deadline fires is abandoned and its slot stays empty.
	if facetCh != nil {
		select {
		case resp.Facets = <-facetCh:
		case <-sctx.Done():
			s.logger.Printf("facets degraded: %v", sctx.Err())
		}
		select {
		case resp.PriceHistogram = <-histCh:
		case <-sctx.Done():
			s.logger.Printf("price histogram degraded: %v", sctx.Err())
		}
	}
	select {
	case resp.LastUpdated = <-updatedCh:
	case <-sctx.Done():
		s.logger.Printf("last-updated degraded: %v", sctx.Err())
	}

	if compiled.Sort == query.SortFeatured && !compiled.SingleDealer {
		resp.Listings = rerank.ByDealer(resp.Listings, rerank.DefaultMaxConsecutive)
	}

	resp.TotalPages = totalPages(resp.Total, compiled.Limit)
	return resp, nil
}

// Dealers returns the dealer directory
func (s *Service) Dealers(ctx context.Context) ([]types.Dealer, error) {
	return s.store.Dealers(ctx)
}

func totalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

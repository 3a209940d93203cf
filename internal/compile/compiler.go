// Package compile merges explicit filters and free-text meaning into one
// compiled query. Each pipeline stage narrows the predicate set; the final
// residual words pick a resolution strategy (URL, artisan code, CJK
// substring, or romaji full-text). The compiler never touches storage; the
// execution adapter translates the compiled result afterwards.
package compile

import (
	"context"
	"strings"

	"github.com/dshills/nihonto-search/internal/artisan"
	"github.com/dshills/nihonto-search/internal/entitlement"
	"github.com/dshills/nihonto-search/internal/query"
	"github.com/dshills/nihonto-search/internal/queryparse"
	"github.com/dshills/nihonto-search/internal/textnorm"
	"github.com/dshills/nihonto-search/internal/vocab"
)

// Config carries the gating and paging knobs
type Config struct {
	// MinPriceJPY gates out low-value inventory. Ask items (no price) pass
	// unconditionally. Zero disables the gate.
	MinPriceJPY int64

	// DealerDomains are the hosts recognized by URL detection
	DealerDomains []string

	MaxPage      int // page clamp ceiling
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns the production gating defaults
func DefaultConfig() Config {
	return Config{
		MinPriceJPY:  100000,
		MaxPage:      1000,
		DefaultLimit: 24,
		MaxLimit:     100,
	}
}

// substrFields are the structured fields the CJK and artisan branches
// substring-match against.
var substrFields = []query.Field{
	query.FieldTitle,
	query.FieldDescription,
	query.FieldMakerName,
	query.FieldMakerRomaji,
	query.FieldSchool,
}

// Compiler assembles compiled queries
type Compiler struct {
	artisans artisan.Registry
	cfg      Config
}

// New creates a Compiler
func New(reg artisan.Registry, cfg Config) *Compiler {
	if cfg.MaxPage <= 0 {
		cfg.MaxPage = 1000
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 24
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	return &Compiler{artisans: reg, cfg: cfg}
}

// Compile runs the full pipeline over one request. The artisan-code lookup
// is the only blocking external dependency; its failure degrades to the
// full-text branch instead of failing the request.
func (c *Compiler) Compile(ctx context.Context, req query.Request, ent entitlement.Entitlement) (*query.Compiled, error) {
	out := &query.Compiled{
		Sort:         normalizeSort(req.Sort),
		SingleDealer: len(req.DealerIDs) == 1,
	}
	c.applyPaging(out, req)

	// Stage 1: a pasted dealer URL short-circuits everything. Identity
	// lookup only, with no status filter and no gates.
	if u := queryparse.DetectURL(req.Text, c.cfg.DealerDomains); u != "" {
		out.IsURLSearch = true
		out.Strategy = query.StrategyURL
		out.Preds = query.NewSet(query.Substr(query.FieldSourceURL, u))
		return out, nil
	}

	out.SkipCategoryGate = queryparse.AnyArtisanCodeShaped(strings.Fields(req.Text))

	preds := query.NewSet()
	preds = applyStatus(preds, req.Tab)
	preds = applyDelayGate(preds, ent)
	preds = c.applyMinPriceGate(preds)
	preds = applyCollectibleGate(preds, ent)
	preds = c.applyTypeGate(preds, req, out.SkipCategoryGate)
	preds = applyStructuredFilters(preds, req)

	preds, strategy := c.resolveText(ctx, preds, req)
	out.Strategy = strategy
	out.Preds = preds
	return out, nil
}

// applyStatus narrows by availability unless the caller asked for all
func applyStatus(preds query.Set, tab query.Tab) query.Set {
	switch tab {
	case query.TabSold:
		return preds.With(query.In(query.FieldStatus,
			[]string{"sold", "presumed_sold"}))
	case query.TabAll:
		return preds
	default:
		return preds.With(query.Eq(query.FieldStatus, "available"))
	}
}

// applyDelayGate hides recent discoveries from delayed tiers. Hard cutoff.
func applyDelayGate(preds query.Set, ent entitlement.Entitlement) query.Set {
	if !ent.IsDelayed || ent.DelayCutoff.IsZero() {
		return preds
	}
	return preds.With(query.TimeBefore(query.FieldFirstSeenAt, ent.DelayCutoff))
}

// applyMinPriceGate filters out low-value inventory. An item with no stated
// price cannot be judged too cheap, so ask items pass through. The exception
// keys on the normalized price_jpy field, matching the field the comparison
// itself uses.
func (c *Compiler) applyMinPriceGate(preds query.Set) query.Set {
	if c.cfg.MinPriceJPY <= 0 {
		return preds
	}
	min := float64(c.cfg.MinPriceJPY)
	return preds.With(query.Or(
		query.Range(query.FieldPriceJPY, &min, nil),
		query.IsNull(query.FieldPriceJPY),
	))
}

// applyCollectibleGate excludes accessories, books, and display stands from
// browsing. Admins see everything.
func applyCollectibleGate(preds query.Set, ent entitlement.Entitlement) query.Set {
	if ent.IsAdmin {
		return preds
	}
	return preds.With(query.NotIn(query.FieldItemType, vocab.NonCollectibleTypes()))
}

// applyTypeGate applies the explicit item-type list, else the category's
// type list. A maker-code-shaped token anywhere in the query suppresses
// category gating entirely: codes are cross-category.
func (c *Compiler) applyTypeGate(preds query.Set, req query.Request, skipCategory bool) query.Set {
	if len(req.ItemTypes) > 0 {
		return preds.With(query.In(query.FieldItemType,
			canonicalizeAll(req.ItemTypes, vocab.CanonicalItemType)).WithDim(query.DimItemType))
	}
	if skipCategory {
		return preds
	}
	if ts := vocab.TypesForCategory(req.Category); len(ts) > 0 {
		return preds.With(query.In(query.FieldItemType, ts))
	}
	return preds
}

// applyStructuredFilters applies the explicit filters in a fixed order.
// Order does not affect correctness, only query-plan shape, but keeping it
// stable keeps cache keys and plans stable too.
func applyStructuredFilters(preds query.Set, req query.Request) query.Set {
	if req.AskOnly {
		preds = preds.With(query.IsNull(query.FieldPriceJPY))
	}
	if req.PriceMin != nil || req.PriceMax != nil {
		preds = preds.With(priceRange(req.PriceMin, req.PriceMax))
	}
	if len(req.Certifications) > 0 {
		preds = preds.With(certFilter(req.Certifications))
	}
	if len(req.Schools) > 0 {
		preds = preds.With(query.In(query.FieldSchool, normalizeAll(req.Schools)))
	}
	if len(req.DealerIDs) > 0 {
		preds = preds.With(query.InInt64(query.FieldDealerID, req.DealerIDs).WithDim(query.DimDealer))
	}
	if len(req.Periods) > 0 {
		preds = preds.With(query.In(query.FieldPeriod,
			canonicalizeAll(req.Periods, vocab.CanonicalPeriod)).WithDim(query.DimPeriod))
	}
	if len(req.Signatures) > 0 {
		preds = preds.With(query.In(query.FieldSignature,
			canonicalizeAll(req.Signatures, vocab.CanonicalSignature)).WithDim(query.DimSignature))
	}
	if req.ArtisanSub != "" {
		preds = preds.With(query.Substr(query.FieldArtisanCode, textnorm.Normalize(req.ArtisanSub)))
	}
	return preds
}

// priceRange includes ask items in the candidate set regardless of bounds;
// the sort pushes them last. Excluding them here would make a price-bounded
// browse silently hide price-on-request inventory.
func priceRange(minJPY, maxJPY *int64) query.Predicate {
	var min, max *float64
	if minJPY != nil {
		v := float64(*minJPY)
		min = &v
	}
	if maxJPY != nil {
		v := float64(*maxJPY)
		max = &v
	}
	return query.Or(
		query.Range(query.FieldPriceJPY, min, max),
		query.IsNull(query.FieldPriceJPY),
	)
}

// certFilter expands every certification through the shared variant table.
// Every entry point that can carry a certification filter (explicit param,
// text extraction, admin filters) must come through here so a filter matches
// identically regardless of origin.
func certFilter(certs []string) query.Predicate {
	var values []string
	seen := map[string]bool{}
	for _, c := range certs {
		canonical := c
		if canon, ok := vocab.CanonicalCert(c); ok {
			canonical = canon
		}
		for _, v := range vocab.CertVariants(canonical) {
			if !seen[v] {
				seen[v] = true
				values = append(values, v)
			}
		}
	}
	return query.In(query.FieldCertType, values).WithDim(query.DimCert)
}

// resolveText runs semantic extraction, numeric extraction, and the branch
// decision over the free-text query.
func (c *Compiler) resolveText(ctx context.Context, preds query.Set, req query.Request) (query.Set, query.Strategy) {
	words := strings.Fields(req.Text)
	if len(words) == 0 {
		return preds, query.StrategyNone
	}

	ex, remaining := queryparse.ParseSemanticQuery(words)
	preds = applyExtracted(preds, ex, req)

	numeric, residual := queryparse.ParseNumericFilters(remaining)
	preds = applyNumeric(preds, numeric, req)

	if len(residual) == 0 {
		return preds, query.StrategyNone
	}

	// CJK anywhere in the residual forces substring matching; the simple
	// full-text configuration cannot tokenize CJK.
	if anyCJK(residual) {
		return preds.With(substrPredicates(residual)...), query.StrategyCJK
	}

	// Romaji residual: try the maker registry first. Resolved codes beat
	// token-level full-text, which dilutes precise matches.
	codes, err := c.artisans.ResolveNames(ctx, residual)
	if err != nil {
		codes = nil // registry unavailable reads as "no codes resolved"
	}
	if len(codes) > 0 {
		return preds.With(query.Or(
			query.In(query.FieldArtisanCode, codes),
			query.And(substrPredicates(residual)...),
		)), query.StrategyArtisan
	}

	for _, w := range residual {
		preds = preds.With(query.FullText(textnorm.ExpandAliases(w)))
	}
	return preds, query.StrategyFTS
}

// applyExtracted applies text-extracted filters only where the caller gave
// no explicit filter for the same dimension. Explicit always wins; the
// parser still reported what it recognized.
func applyExtracted(preds query.Set, ex queryparse.Extracted, req query.Request) query.Set {
	if len(ex.Certifications) > 0 && len(req.Certifications) == 0 {
		preds = preds.With(certFilter(ex.Certifications))
	}
	if len(ex.ItemTypes) > 0 && len(req.ItemTypes) == 0 {
		preds = preds.With(query.In(query.FieldItemType, ex.ItemTypes).WithDim(query.DimItemType))
	}
	if len(ex.SignatureStatuses) > 0 && len(req.Signatures) == 0 {
		preds = preds.With(query.In(query.FieldSignature, ex.SignatureStatuses).WithDim(query.DimSignature))
	}
	if len(ex.Provinces) > 0 {
		preds = preds.With(query.In(query.FieldProvince, ex.Provinces))
	}
	return preds
}

// applyNumeric merges extracted numeric comparisons, honoring explicit
// price bounds over text-extracted ones.
func applyNumeric(preds query.Set, filters []query.NumericFilter, req query.Request) query.Set {
	explicitPrice := req.PriceMin != nil || req.PriceMax != nil
	bounds := map[query.Field]*[2]*float64{}

	for _, f := range filters {
		if f.Field == query.FieldPriceJPY && explicitPrice {
			continue
		}
		b, ok := bounds[f.Field]
		if !ok {
			b = &[2]*float64{}
			bounds[f.Field] = b
		}
		v := f.Value
		switch f.Op {
		case query.OpGTE:
			b[0] = &v
		case query.OpLTE:
			b[1] = &v
		case query.OpEq:
			b[0], b[1] = &v, &v
		}
	}

	for _, field := range []query.Field{query.FieldNagasaCM, query.FieldPriceJPY} {
		b, ok := bounds[field]
		if !ok {
			continue
		}
		r := query.Range(field, b[0], b[1])
		if field == query.FieldPriceJPY {
			// Same ask-item inclusion as explicit price ranges.
			preds = preds.With(query.Or(r, query.IsNull(query.FieldPriceJPY)))
		} else {
			preds = preds.With(r)
		}
	}
	return preds
}

// substrPredicates builds one per-word predicate: the word, expanded through
// its alias set, substring-matched across the structured fields.
func substrPredicates(words []string) []query.Predicate {
	out := make([]query.Predicate, 0, len(words))
	for _, w := range words {
		aliases := textnorm.ExpandAliases(w)
		if len(aliases) == 1 {
			out = append(out, query.AnySubstr(substrFields, aliases[0]))
			continue
		}
		sub := make([]query.Predicate, 0, len(aliases))
		for _, a := range aliases {
			sub = append(sub, query.AnySubstr(substrFields, a))
		}
		out = append(out, query.Or(sub...))
	}
	return out
}

func anyCJK(words []string) bool {
	for _, w := range words {
		if textnorm.ContainsCJK(w) {
			return true
		}
	}
	return false
}

// applyPaging clamps page and limit, then derives the offset. An explicit
// offset wins over the page-derived one so infinite-scroll clients with
// variable page sizes keep working.
func (c *Compiler) applyPaging(out *query.Compiled, req query.Request) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	if page > c.cfg.MaxPage {
		page = c.cfg.MaxPage
	}

	limit := req.Limit
	if limit <= 0 {
		limit = c.cfg.DefaultLimit
	}
	if limit > c.cfg.MaxLimit {
		limit = c.cfg.MaxLimit
	}

	out.Limit = limit
	if req.Offset != nil && *req.Offset >= 0 {
		out.Offset = *req.Offset
	} else {
		out.Offset = (page - 1) * limit
	}
}

func normalizeSort(s query.Sort) query.Sort {
	switch s {
	case query.SortPriceAsc, query.SortPriceDesc, query.SortFeatured, query.SortNewest:
		return s
	default:
		return query.SortNewest
	}
}

func normalizeAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = textnorm.Normalize(v)
	}
	return out
}

func canonicalizeAll(values []string, lookup func(string) (string, bool)) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := lookup(v); ok {
			out = append(out, c)
			continue
		}
		out = append(out, textnorm.Normalize(v))
	}
	return out
}

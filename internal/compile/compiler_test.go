package compile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/nihonto-search/internal/artisan"
	"github.com/dshills/nihonto-search/internal/entitlement"
	"github.com/dshills/nihonto-search/internal/query"
)

func newTestCompiler(reg artisan.Registry) *Compiler {
	if reg == nil {
		reg = &artisan.StaticRegistry{}
	}
	return New(reg, Config{
		MinPriceJPY:   100000,
		DealerDomains: []string{"aoijapan.jp"},
		MaxPage:       1000,
		DefaultLimit:  24,
		MaxLimit:      100,
	})
}

func findPreds(s query.Set, kind query.Kind, field query.Field) []query.Predicate {
	var out []query.Predicate
	for _, p := range s.Preds() {
		if p.Kind == kind && (field == "" || p.Field == field) {
			out = append(out, p)
		}
	}
	return out
}

func TestCompileURLShortCircuit(t *testing.T) {
	c := newTestCompiler(nil)
	got, err := c.Compile(context.Background(), query.Request{
		Tab:  query.TabAvailable,
		Text: "https://aoijapan.jp/katana-123",
	}, entitlement.Entitlement{IsDelayed: true, DelayCutoff: time.Now()})
	require.NoError(t, err)

	assert.True(t, got.IsURLSearch)
	assert.Equal(t, query.StrategyURL, got.Strategy)

	// Identity lookup only: one substring predicate on the source URL, no
	// status filter, no price gate, no collectibility gate.
	require.Equal(t, 1, got.Preds.Len())
	p := got.Preds.Preds()[0]
	assert.Equal(t, query.KindSubstr, p.Kind)
	assert.Equal(t, query.FieldSourceURL, p.Field)
	assert.Equal(t, "https://aoijapan.jp/katana-123", p.Value)
}

func TestCompileStatusTab(t *testing.T) {
	c := newTestCompiler(nil)
	ctx := context.Background()

	avail, err := c.Compile(ctx, query.Request{Tab: query.TabAvailable}, entitlement.Entitlement{})
	require.NoError(t, err)
	require.Len(t, findPreds(avail.Preds, query.KindEq, query.FieldStatus), 1)

	sold, err := c.Compile(ctx, query.Request{Tab: query.TabSold}, entitlement.Entitlement{})
	require.NoError(t, err)
	ins := findPreds(sold.Preds, query.KindIn, query.FieldStatus)
	require.Len(t, ins, 1)
	assert.ElementsMatch(t, []string{"sold", "presumed_sold"}, ins[0].Values)

	all, err := c.Compile(ctx, query.Request{Tab: query.TabAll}, entitlement.Entitlement{})
	require.NoError(t, err)
	assert.Empty(t, findPreds(all.Preds, query.KindEq, query.FieldStatus))
	assert.Empty(t, findPreds(all.Preds, query.KindIn, query.FieldStatus))
}

func TestCompileDelayGate(t *testing.T) {
	c := newTestCompiler(nil)
	cutoff := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	delayed, err := c.Compile(context.Background(), query.Request{},
		entitlement.Entitlement{IsDelayed: true, DelayCutoff: cutoff})
	require.NoError(t, err)
	gates := findPreds(delayed.Preds, query.KindTimeBefore, query.FieldFirstSeenAt)
	require.Len(t, gates, 1)
	assert.Equal(t, cutoff, gates[0].At)

	live, err := c.Compile(context.Background(), query.Request{}, entitlement.Entitlement{})
	require.NoError(t, err)
	assert.Empty(t, findPreds(live.Preds, query.KindTimeBefore, query.FieldFirstSeenAt))
}

func TestCompileMinPriceGateAllowsAsk(t *testing.T) {
	c := newTestCompiler(nil)
	got, err := c.Compile(context.Background(), query.Request{}, entitlement.Entitlement{})
	require.NoError(t, err)

	var found bool
	for _, p := range got.Preds.Preds() {
		if p.Kind != query.KindOr {
			continue
		}
		var hasRange, hasNull bool
		for _, sub := range p.Sub {
			if sub.Kind == query.KindRange && sub.Field == query.FieldPriceJPY &&
				sub.Min != nil && *sub.Min == 100000 {
				hasRange = true
			}
			if sub.Kind == query.KindIsNull && sub.Field == query.FieldPriceJPY {
				hasNull = true
			}
		}
		if hasRange && hasNull {
			found = true
		}
	}
	assert.True(t, found, "min-price gate must be OR'd with the ask exception")
}

// Scenario: "tanto juyo" with no explicit cert filter extracts both the
// certification and the item type; nothing is left for full-text.
func TestCompileSemanticExtraction(t *testing.T) {
	c := newTestCompiler(nil)
	got, err := c.Compile(context.Background(), query.Request{
		Tab:  query.TabAvailable,
		Text: "tanto juyo",
	}, entitlement.Entitlement{})
	require.NoError(t, err)

	certs := findPreds(got.Preds, query.KindIn, query.FieldCertType)
	require.Len(t, certs, 1)
	assert.Contains(t, certs[0].Values, "juyo")
	assert.Contains(t, certs[0].Values, "juyo token")
	assert.Equal(t, query.DimCert, certs[0].Dim)

	typeIns := findPreds(got.Preds, query.KindIn, query.FieldItemType)
	require.NotEmpty(t, typeIns)
	var typed bool
	for _, p := range typeIns {
		if p.Dim == query.DimItemType {
			assert.Equal(t, []string{"tanto"}, p.Values)
			typed = true
		}
	}
	assert.True(t, typed)

	assert.Empty(t, findPreds(got.Preds, query.KindFullText, ""))
	assert.Equal(t, query.StrategyNone, got.Strategy)
}

// Scenario: the same text with an explicit cert filter keeps only the
// explicit filter; the recognized "juyo" must not be applied.
func TestCompileExplicitFilterWins(t *testing.T) {
	c := newTestCompiler(nil)
	got, err := c.Compile(context.Background(), query.Request{
		Tab:            query.TabAvailable,
		Text:           "tanto juyo",
		Certifications: []string{"Hozon"},
	}, entitlement.Entitlement{})
	require.NoError(t, err)

	certs := findPreds(got.Preds, query.KindIn, query.FieldCertType)
	require.Len(t, certs, 1, "exactly one certification filter")
	assert.Contains(t, certs[0].Values, "hozon")
	assert.NotContains(t, certs[0].Values, "juyo")
}

func TestCompileCJKBranch(t *testing.T) {
	c := newTestCompiler(nil)
	got, err := c.Compile(context.Background(), query.Request{
		Text: "正宗 短刀",
	}, entitlement.Entitlement{})
	require.NoError(t, err)

	assert.Equal(t, query.StrategyCJK, got.Strategy)
	assert.Empty(t, findPreds(got.Preds, query.KindFullText, ""),
		"romaji full-text must not run for CJK residuals")
	assert.NotEmpty(t, findPreds(got.Preds, query.KindAnySubstr, ""))
}

func TestCompileFTSBranch(t *testing.T) {
	c := newTestCompiler(nil)
	got, err := c.Compile(context.Background(), query.Request{
		Text: "masamune utsushi",
	}, entitlement.Entitlement{})
	require.NoError(t, err)

	assert.Equal(t, query.StrategyFTS, got.Strategy)
	fts := findPreds(got.Preds, query.KindFullText, "")
	require.Len(t, fts, 2, "one full-text predicate per residual word")
	assert.Empty(t, findPreds(got.Preds, query.KindAnySubstr, ""),
		"CJK substring path must not run for pure romaji residuals")
}

func TestCompileArtisanBranch(t *testing.T) {
	reg := &artisan.StaticRegistry{
		NamesToCodes: map[string][]string{"masamune": {"MAS590", "MAS591"}},
	}
	c := newTestCompiler(reg)
	got, err := c.Compile(context.Background(), query.Request{
		Text: "masamune",
	}, entitlement.Entitlement{})
	require.NoError(t, err)

	assert.Equal(t, query.StrategyArtisan, got.Strategy)
	assert.Empty(t, findPreds(got.Preds, query.KindFullText, ""),
		"resolved codes suppress the full-text branch")

	var or *query.Predicate
	for _, p := range got.Preds.Preds() {
		if p.Kind == query.KindOr {
			for _, sub := range p.Sub {
				if sub.Kind == query.KindIn && sub.Field == query.FieldArtisanCode {
					or = &p
				}
			}
		}
	}
	require.NotNil(t, or, "code equality OR'd with substring conditions")
}

func TestCompileRegistryFailureFallsBackToFTS(t *testing.T) {
	reg := &artisan.StaticRegistry{Err: assert.AnError}
	c := newTestCompiler(reg)
	got, err := c.Compile(context.Background(), query.Request{
		Text: "masamune",
	}, entitlement.Entitlement{})
	require.NoError(t, err, "registry failure must not fail the request")
	assert.Equal(t, query.StrategyFTS, got.Strategy)
}

func TestCompileCodeShapedTokenSkipsCategoryGate(t *testing.T) {
	c := newTestCompiler(nil)

	gated, err := c.Compile(context.Background(), query.Request{
		Category: "blades",
	}, entitlement.Entitlement{})
	require.NoError(t, err)
	var categoryIn bool
	for _, p := range findPreds(gated.Preds, query.KindIn, query.FieldItemType) {
		if p.Dim == query.DimNone {
			categoryIn = true
		}
	}
	assert.True(t, categoryIn, "category gate applies without code-shaped tokens")

	skipped, err := c.Compile(context.Background(), query.Request{
		Category: "blades",
		Text:     "KAN1234",
	}, entitlement.Entitlement{})
	require.NoError(t, err)
	assert.True(t, skipped.SkipCategoryGate)
	for _, p := range findPreds(skipped.Preds, query.KindIn, query.FieldItemType) {
		assert.NotEqual(t, query.DimNone, p.Dim,
			"category-derived type gate must be suppressed")
	}
	// The collectibility exclusion is unrelated to category gating and stays.
	assert.NotEmpty(t, findPreds(skipped.Preds, query.KindNotIn, query.FieldItemType))
}

func TestCompileExplicitPriceRangeIncludesAsk(t *testing.T) {
	min := int64(500000)
	max := int64(1000000)
	c := newTestCompiler(nil)
	got, err := c.Compile(context.Background(), query.Request{
		Tab:      query.TabAvailable,
		PriceMin: &min,
		PriceMax: &max,
	}, entitlement.Entitlement{})
	require.NoError(t, err)

	var found bool
	for _, p := range got.Preds.Preds() {
		if p.Kind != query.KindOr {
			continue
		}
		var hasBounded, hasNull bool
		for _, sub := range p.Sub {
			if sub.Kind == query.KindRange && sub.Min != nil && *sub.Min == 500000 &&
				sub.Max != nil && *sub.Max == 1000000 {
				hasBounded = true
			}
			if sub.Kind == query.KindIsNull {
				hasNull = true
			}
		}
		if hasBounded && hasNull {
			found = true
		}
	}
	assert.True(t, found, "price range must include ask items")
}

func TestCompileNumericExtraction(t *testing.T) {
	c := newTestCompiler(nil)
	got, err := c.Compile(context.Background(), query.Request{
		Text: "katana >70cm",
	}, entitlement.Entitlement{})
	require.NoError(t, err)

	ranges := findPreds(got.Preds, query.KindRange, query.FieldNagasaCM)
	require.Len(t, ranges, 1)
	require.NotNil(t, ranges[0].Min)
	assert.Equal(t, 70.0, *ranges[0].Min)
	assert.Nil(t, ranges[0].Max)

	// "katana" was recognized as an item type, not left for full-text.
	assert.Empty(t, findPreds(got.Preds, query.KindFullText, ""))
}

func TestCompilePagingClamps(t *testing.T) {
	c := newTestCompiler(nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		req        query.Request
		wantLimit  int
		wantOffset int
	}{
		{"defaults", query.Request{}, 24, 0},
		{"negative page", query.Request{Page: -5, Limit: 10}, 10, 0},
		{"page ceiling", query.Request{Page: 99999, Limit: 10}, 10, (1000 - 1) * 10},
		{"limit ceiling", query.Request{Limit: 5000}, 100, 0},
		{"explicit offset wins", query.Request{Page: 3, Limit: 10, Offset: intPtr(7)}, 10, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Compile(ctx, tt.req, entitlement.Entitlement{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}

func TestCompileSingleDealerFlag(t *testing.T) {
	c := newTestCompiler(nil)
	one, err := c.Compile(context.Background(),
		query.Request{DealerIDs: []int64{7}}, entitlement.Entitlement{})
	require.NoError(t, err)
	assert.True(t, one.SingleDealer)

	two, err := c.Compile(context.Background(),
		query.Request{DealerIDs: []int64{7, 9}}, entitlement.Entitlement{})
	require.NoError(t, err)
	assert.False(t, two.SingleDealer)
}

func intPtr(v int) *int { return &v }

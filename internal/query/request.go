package query

// Sort names a result ordering
type Sort string

const (
	SortNewest    Sort = "newest" // default: new discoveries first, then recency
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortFeatured  Sort = "featured" // precomputed quality x heat x freshness
)

// Tab is the availability scope of a browse request
type Tab string

const (
	TabAvailable Tab = "available"
	TabSold      Tab = "sold"
	TabAll       Tab = "all"
)

// Strategy tags how residual free text was resolved
type Strategy string

const (
	StrategyNone    Strategy = "none"    // no residual text
	StrategyURL     Strategy = "url"     // pasted dealer URL, identity lookup
	StrategyArtisan Strategy = "artisan" // resolved maker codes
	StrategyCJK     Strategy = "cjk"     // CJK substring matching
	StrategyFTS     Strategy = "fts"     // romaji full-text search
)

// Request is the caller-supplied browse/search request after transport-level
// parsing. Explicit filters here always win over filters extracted from Text.
type Request struct {
	Tab            Tab
	Category       string
	ItemTypes      []string
	Certifications []string
	Schools        []string
	DealerIDs      []int64
	Periods        []string
	Signatures     []string
	AskOnly        bool
	PriceMin       *int64
	PriceMax       *int64
	ArtisanSub     string
	Text           string
	Sort           Sort
	Page           int
	Limit          int
	Offset         *int // explicit offset wins over page-derived offset
}

// NumericFilter is one bounded comparison extracted from free text
type NumericFilter struct {
	Field Field
	Op    Op
	Value float64
}

// Op is a numeric comparison operator
type Op string

const (
	OpGTE Op = ">="
	OpLTE Op = "<="
	OpEq  Op = "="
)

// Compiled is the fully compiled query: one predicate set plus sort and
// pagination, ready for an execution adapter.
type Compiled struct {
	Preds  Set
	Sort   Sort
	Limit  int
	Offset int

	Strategy    Strategy
	IsURLSearch bool

	// SkipCategoryGate is set when a maker-code-shaped token appears anywhere
	// in the raw query. Maker codes are cross-category, so category gating is
	// suppressed for the whole request.
	SkipCategoryGate bool

	// SingleDealer is set when the caller filtered to exactly one dealer.
	// The diversity reranker is skipped in that case.
	SingleDealer bool
}

// Package query defines the request-scoped intermediate representation the
// compiler produces and the execution adapters consume: an immutable set of
// tagged predicates plus sort and pagination. Keeping the IR free of any SQL
// lets the compiler be tested without a database.
package query

import "time"

// Field names a filterable listing attribute. Values double as the storage
// adapter's column names.
type Field string

const (
	FieldStatus        Field = "status"
	FieldItemType      Field = "item_type"
	FieldCertType      Field = "cert_type"
	FieldSchool        Field = "school"
	FieldDealerID      Field = "dealer_id"
	FieldPeriod        Field = "period"
	FieldSignature     Field = "signature_status"
	FieldProvince      Field = "province"
	FieldPriceJPY      Field = "price_jpy"
	FieldNagasaCM      Field = "nagasa_cm"
	FieldSourceURL     Field = "source_url"
	FieldArtisanCode   Field = "artisan_code"
	FieldFirstSeenAt   Field = "first_seen_at"
	FieldMakerName     Field = "maker_name"
	FieldMakerRomaji   Field = "maker_romaji"
	FieldTitle         Field = "title"
	FieldTitleEN       Field = "title_en"
	FieldDescription   Field = "description"
	FieldDescriptionEN Field = "description_en"
)

// Dim tags a predicate with the facet dimension it filters, so the facet
// aggregator can drop a dimension's own filter when counting it. Gates and
// non-faceted filters carry DimNone.
type Dim int

const (
	DimNone Dim = iota
	DimItemType
	DimCert
	DimDealer
	DimPeriod
	DimSignature
)

// Kind discriminates the predicate union
type Kind int

const (
	KindEq         Kind = iota // Field == Value
	KindIn                     // Field IN Values
	KindNotIn                  // Field NOT IN Values
	KindRange                  // Min <= Field <= Max (either bound optional)
	KindSubstr                 // Field contains Value (case-insensitive)
	KindAnySubstr              // any of Fields contains Value
	KindFullText               // full-text match of Terms over the search vector
	KindIsNull                 // Field IS NULL
	KindNotNull                // Field IS NOT NULL
	KindTimeBefore             // Field < At
	KindOr                     // disjunction of Sub
	KindAnd                    // conjunction of Sub, for nesting under KindOr
	KindInInt64                // Field IN Ints
)

// Predicate is one node of the tagged predicate union. Only the fields
// relevant to its Kind are set.
type Predicate struct {
	Kind Kind
	Dim  Dim

	Field  Field
	Fields []Field

	Value  string
	Values []string

	Min *float64
	Max *float64

	Terms []string

	Ints []int64

	At time.Time

	Sub []Predicate
}

// Constructors keep call sites readable and the union usage consistent.

func Eq(f Field, v string) Predicate      { return Predicate{Kind: KindEq, Field: f, Value: v} }
func In(f Field, vs []string) Predicate   { return Predicate{Kind: KindIn, Field: f, Values: vs} }
func NotIn(f Field, vs []string) Predicate {
	return Predicate{Kind: KindNotIn, Field: f, Values: vs}
}
func Range(f Field, min, max *float64) Predicate {
	return Predicate{Kind: KindRange, Field: f, Min: min, Max: max}
}
func Substr(f Field, needle string) Predicate {
	return Predicate{Kind: KindSubstr, Field: f, Value: needle}
}
func AnySubstr(fs []Field, needle string) Predicate {
	return Predicate{Kind: KindAnySubstr, Fields: fs, Value: needle}
}
func FullText(terms []string) Predicate { return Predicate{Kind: KindFullText, Terms: terms} }
func IsNull(f Field) Predicate          { return Predicate{Kind: KindIsNull, Field: f} }
func NotNull(f Field) Predicate         { return Predicate{Kind: KindNotNull, Field: f} }
func TimeBefore(f Field, at time.Time) Predicate {
	return Predicate{Kind: KindTimeBefore, Field: f, At: at}
}
func Or(sub ...Predicate) Predicate  { return Predicate{Kind: KindOr, Sub: sub} }
func And(sub ...Predicate) Predicate { return Predicate{Kind: KindAnd, Sub: sub} }
func InInt64(f Field, ids []int64) Predicate {
	return Predicate{Kind: KindInInt64, Field: f, Ints: ids}
}

// WithDim returns a copy of the predicate tagged with a facet dimension
func (p Predicate) WithDim(d Dim) Predicate {
	p.Dim = d
	return p
}

// Set is an immutable conjunction of predicates. With returns a new Set;
// the receiver is never mutated, so compiler stages can be chained as pure
// functions.
type Set struct {
	preds []Predicate
}

// NewSet builds a Set from predicates
func NewSet(preds ...Predicate) Set {
	return Set{preds: append([]Predicate(nil), preds...)}
}

// With returns a new Set with the predicates appended
func (s Set) With(preds ...Predicate) Set {
	out := make([]Predicate, 0, len(s.preds)+len(preds))
	out = append(out, s.preds...)
	out = append(out, preds...)
	return Set{preds: out}
}

// Without returns a new Set with every predicate of the given dimension
// removed. Used by the facet aggregator for self-exclusion.
func (s Set) Without(d Dim) Set {
	out := make([]Predicate, 0, len(s.preds))
	for _, p := range s.preds {
		if p.Dim != d {
			out = append(out, p)
		}
	}
	return Set{preds: out}
}

// Preds returns the predicates in insertion order. Callers must not mutate
// the returned slice.
func (s Set) Preds() []Predicate { return s.preds }

// Len returns the number of predicates
func (s Set) Len() int { return len(s.preds) }

// HasDim reports whether any predicate carries the dimension tag
func (s Set) HasDim(d Dim) bool {
	for _, p := range s.preds {
		if p.Dim == d {
			return true
		}
	}
	return false
}

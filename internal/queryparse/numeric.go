package queryparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dshills/nihonto-search/internal/query"
	"github.com/dshills/nihonto-search/internal/textnorm"
)

var (
	// 70cm, >70cm, <=65.5cm, 70cm+
	lengthPattern = regexp.MustCompile(`^([<>]=?)?(\d+(?:\.\d+)?)cm(\+)?$`)
	// 60-70cm
	lengthRangePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)-(\d+(?:\.\d+)?)cm$`)
	// ¥500000, 500000yen, >1000000yen, <¥750000
	pricePattern = regexp.MustCompile(`^([<>]=?)?(?:¥|￥)?(\d[\d,]*)(yen|円)?$`)
)

// priceContextWords consume the following bare number as a price bound
var priceContextWords = map[string]query.Op{
	"under": query.OpLTE,
	"below": query.OpLTE,
	"max":   query.OpLTE,
	"over":  query.OpGTE,
	"above": query.OpGTE,
	"min":   query.OpGTE,
}

// ParseNumericFilters pulls bounded numeric comparisons out of free-text
// tokens. Every input token lands in exactly one of the two return values:
// consumed into a filter or passed through as a residual word. A bare number
// with no unit or context stays a residual word rather than guessing a
// field.
func ParseNumericFilters(words []string) ([]query.NumericFilter, []string) {
	var filters []query.NumericFilter
	var rest []string

	for i := 0; i < len(words); i++ {
		w := textnorm.Normalize(words[i])

		if m := lengthRangePattern.FindStringSubmatch(w); m != nil {
			lo, err1 := strconv.ParseFloat(m[1], 64)
			hi, err2 := strconv.ParseFloat(m[2], 64)
			if err1 == nil && err2 == nil && lo <= hi {
				filters = append(filters,
					query.NumericFilter{Field: query.FieldNagasaCM, Op: query.OpGTE, Value: lo},
					query.NumericFilter{Field: query.FieldNagasaCM, Op: query.OpLTE, Value: hi})
				continue
			}
		}

		if m := lengthPattern.FindStringSubmatch(w); m != nil {
			v, err := strconv.ParseFloat(m[2], 64)
			if err == nil {
				filters = append(filters, query.NumericFilter{
					Field: query.FieldNagasaCM,
					Op:    opFromSigils(m[1], m[3]),
					Value: v,
				})
				continue
			}
		}

		// Price needs an explicit signal: a currency marker, a comparison
		// operator, or a preceding context word. m[1] operator alone with a
		// plain number is accepted (">500000" can only mean price here).
		if m := pricePattern.FindStringSubmatch(w); m != nil {
			hasCurrency := strings.ContainsAny(w, "¥￥") || m[3] != ""
			if m[1] != "" || hasCurrency {
				if v, err := parsePriceValue(m[2]); err == nil {
					filters = append(filters, query.NumericFilter{
						Field: query.FieldPriceJPY,
						Op:    opFromSigils(m[1], ""),
						Value: v,
					})
					continue
				}
			}
		}

		// Two-token form: "under 500000". The magnitude floor keeps small
		// bare numbers ("type 26 tsuba") out of price filters.
		if op, ok := priceContextWords[w]; ok && i+1 < len(words) {
			next := textnorm.Normalize(words[i+1])
			if m := pricePattern.FindStringSubmatch(next); m != nil && m[1] == "" {
				if v, err := parsePriceValue(m[2]); err == nil && v >= 1000 {
					filters = append(filters, query.NumericFilter{
						Field: query.FieldPriceJPY,
						Op:    op,
						Value: v,
					})
					i++ // consumed the number too
					continue
				}
			}
		}

		rest = append(rest, w)
	}
	return filters, rest
}

func opFromSigils(cmp, plus string) query.Op {
	switch cmp {
	case ">", ">=":
		return query.OpGTE
	case "<", "<=":
		return query.OpLTE
	}
	if plus == "+" {
		return query.OpGTE
	}
	return query.OpEq
}

func parsePriceValue(digits string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
}

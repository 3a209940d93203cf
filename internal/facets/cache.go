package facets

import (
	"crypto/sha256"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/nihonto-search/internal/query"
	"github.com/dshills/nihonto-search/pkg/types"
)

// cacheEntry represents a cached facet set with expiration time
type cacheEntry struct {
	facets    *types.FacetSet
	expiresAt time.Time
}

// signature computes a deterministic hash of a predicate set. Two requests
// that compile to the same filters share one cache slot regardless of
// pagination or sort.
func signature(preds query.Set) [32]byte {
	var data strings.Builder
	for _, p := range preds.Preds() {
		writePredicate(&data, p)
		data.WriteString(";")
	}
	return sha256.Sum256([]byte(data.String()))
}

func writePredicate(data *strings.Builder, p query.Predicate) {
	data.WriteString(strconv.Itoa(int(p.Kind)))
	data.WriteString("|")
	data.WriteString(strconv.Itoa(int(p.Dim)))
	data.WriteString("|")
	data.WriteString(string(p.Field))
	data.WriteString("|")
	data.WriteString(p.Value)
	data.WriteString("|")
	data.WriteString(strings.Join(p.Values, ","))
	for _, f := range p.Fields {
		data.WriteString("|f:")
		data.WriteString(string(f))
	}
	if p.Min != nil {
		data.WriteString("|min:")
		data.WriteString(strconv.FormatFloat(*p.Min, 'f', -1, 64))
	}
	if p.Max != nil {
		data.WriteString("|max:")
		data.WriteString(strconv.FormatFloat(*p.Max, 'f', -1, 64))
	}
	if len(p.Terms) > 0 {
		data.WriteString("|t:")
		data.WriteString(strings.Join(p.Terms, ","))
	}
	for _, n := range p.Ints {
		data.WriteString("|i:")
		data.WriteString(strconv.FormatInt(n, 10))
	}
	if !p.At.IsZero() {
		data.WriteString("|at:")
		data.WriteString(strconv.FormatInt(p.At.UnixNano(), 10))
	}
	for _, sub := range p.Sub {
		data.WriteString("|(")
		writePredicate(data, sub)
		data.WriteString(")")
	}
}

// copyFacetSet creates a deep copy so cached entries can't be modified by
// callers.
func copyFacetSet(src *types.FacetSet) *types.FacetSet {
	if src == nil {
		return nil
	}
	dst := &types.FacetSet{
		ItemTypes:         append([]types.FacetCount(nil), src.ItemTypes...),
		Certifications:    append([]types.FacetCount(nil), src.Certifications...),
		Dealers:           append([]types.FacetCount(nil), src.Dealers...),
		HistoricalPeriods: append([]types.FacetCount(nil), src.HistoricalPeriods...),
		SignatureStatuses: append([]types.FacetCount(nil), src.SignatureStatuses...),
	}
	return dst
}

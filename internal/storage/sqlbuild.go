package storage

import (
	"fmt"
	"strings"

	"github.com/dshills/nihonto-search/internal/query"
)

// dialect abstracts the few places SQLite and Postgres translation differ.
// Both adapters share the rest of the predicate translation.
type dialect interface {
	// fullTextExpr returns the full-text fragment with one ? placeholder
	fullTextExpr() string
	// fullTextArg renders an OR group of terms into the engine's match syntax
	fullTextArg(terms []string) string
}

type sqliteDialect struct{}

func (sqliteDialect) fullTextExpr() string {
	return "id IN (SELECT rowid FROM listings_fts WHERE listings_fts MATCH ?)"
}

func (sqliteDialect) fullTextArg(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}

type postgresDialect struct{}

func (postgresDialect) fullTextExpr() string {
	return "search_vector @@ to_tsquery('simple', ?)"
}

func (postgresDialect) fullTextArg(terms []string) string {
	escaped := make([]string, len(terms))
	for i, t := range terms {
		escaped[i] = "'" + strings.ReplaceAll(t, "'", "''") + "'"
	}
	return strings.Join(escaped, " | ")
}

// buildWhere translates a predicate set into a WHERE clause body with ?
// placeholders. Empty sets return "". Postgres callers rebind ? to $n.
func buildWhere(d dialect, preds query.Set) (string, []interface{}, error) {
	ps := preds.Preds()
	if len(ps) == 0 {
		return "", nil, nil
	}
	clauses := make([]string, 0, len(ps))
	var args []interface{}
	for _, p := range ps {
		clause, clauseArgs, err := buildPredicate(d, p)
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, clause)
		args = append(args, clauseArgs...)
	}
	return strings.Join(clauses, " AND "), args, nil
}

// buildPredicate translates one predicate node
func buildPredicate(d dialect, p query.Predicate) (string, []interface{}, error) {
	switch p.Kind {
	case query.KindEq:
		return string(p.Field) + " = ?", []interface{}{p.Value}, nil

	case query.KindIn:
		if len(p.Values) == 0 {
			return "1 = 0", nil, nil
		}
		args := make([]interface{}, len(p.Values))
		for i, v := range p.Values {
			args[i] = v
		}
		return string(p.Field) + " IN (" + placeholders(len(p.Values)) + ")", args, nil

	case query.KindNotIn:
		if len(p.Values) == 0 {
			return "1 = 1", nil, nil
		}
		args := make([]interface{}, len(p.Values))
		for i, v := range p.Values {
			args[i] = v
		}
		return string(p.Field) + " NOT IN (" + placeholders(len(p.Values)) + ")", args, nil

	case query.KindInInt64:
		if len(p.Ints) == 0 {
			return "1 = 0", nil, nil
		}
		args := make([]interface{}, len(p.Ints))
		for i, v := range p.Ints {
			args[i] = v
		}
		return string(p.Field) + " IN (" + placeholders(len(p.Ints)) + ")", args, nil

	case query.KindRange:
		switch {
		case p.Min != nil && p.Max != nil:
			return "(" + string(p.Field) + " >= ? AND " + string(p.Field) + " <= ?)",
				[]interface{}{*p.Min, *p.Max}, nil
		case p.Min != nil:
			return string(p.Field) + " >= ?", []interface{}{*p.Min}, nil
		case p.Max != nil:
			return string(p.Field) + " <= ?", []interface{}{*p.Max}, nil
		default:
			return "1 = 1", nil, nil
		}

	case query.KindSubstr:
		return "lower(" + string(p.Field) + `) LIKE ? ESCAPE '\'`,
			[]interface{}{likePattern(p.Value)}, nil

	case query.KindAnySubstr:
		if len(p.Fields) == 0 {
			return "1 = 0", nil, nil
		}
		parts := make([]string, len(p.Fields))
		args := make([]interface{}, len(p.Fields))
		for i, f := range p.Fields {
			parts[i] = "lower(" + string(f) + `) LIKE ? ESCAPE '\'`
			args[i] = likePattern(p.Value)
		}
		return "(" + strings.Join(parts, " OR ") + ")", args, nil

	case query.KindFullText:
		if len(p.Terms) == 0 {
			return "1 = 1", nil, nil
		}
		return d.fullTextExpr(), []interface{}{d.fullTextArg(p.Terms)}, nil

	case query.KindIsNull:
		return string(p.Field) + " IS NULL", nil, nil

	case query.KindNotNull:
		return string(p.Field) + " IS NOT NULL", nil, nil

	case query.KindTimeBefore:
		return string(p.Field) + " < ?", []interface{}{p.At}, nil

	case query.KindOr, query.KindAnd:
		if len(p.Sub) == 0 {
			return "1 = 1", nil, nil
		}
		joiner := " OR "
		if p.Kind == query.KindAnd {
			joiner = " AND "
		}
		parts := make([]string, 0, len(p.Sub))
		var args []interface{}
		for _, sub := range p.Sub {
			clause, subArgs, err := buildPredicate(d, sub)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, clause)
			args = append(args, subArgs...)
		}
		return "(" + strings.Join(parts, joiner) + ")", args, nil

	default:
		return "", nil, fmt.Errorf("unsupported predicate kind %d", p.Kind)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(needle string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(needle)) + "%"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// orderBy renders the sort semantics shared by both adapters. A boolean
// has-price key leads the price sorts so ask items land last in either
// direction; featured pushes null scores last the same way.
func orderBy(sort query.Sort) string {
	switch sort {
	case query.SortPriceAsc:
		return "(price_jpy IS NOT NULL) DESC, price_jpy ASC, id DESC"
	case query.SortPriceDesc:
		return "(price_jpy IS NOT NULL) DESC, price_jpy DESC, id DESC"
	case query.SortFeatured:
		return "(featured_score IS NOT NULL) DESC, featured_score DESC, id DESC"
	default: // newest
		return "new_discovery DESC, first_seen_at DESC, id DESC"
	}
}

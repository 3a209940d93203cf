package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/nihonto-search/internal/query"
)

func TestBuildWhereEmptySet(t *testing.T) {
	where, args, err := buildWhere(sqliteDialect{}, query.NewSet())
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildWhereJoinsWithAnd(t *testing.T) {
	set := query.NewSet(
		query.Eq(query.FieldStatus, "available"),
		query.In(query.FieldItemType, []string{"katana", "wakizashi"}),
	)
	where, args, err := buildWhere(sqliteDialect{}, set)
	require.NoError(t, err)
	assert.Equal(t, "status = ? AND item_type IN (?,?)", where)
	assert.Equal(t, []interface{}{"available", "katana", "wakizashi"}, args)
}

func TestBuildPredicateEmptyInMatchesNothing(t *testing.T) {
	clause, args, err := buildPredicate(sqliteDialect{}, query.In(query.FieldCertType, nil))
	require.NoError(t, err)
	assert.Equal(t, "1 = 0", clause)
	assert.Empty(t, args)
}

func TestBuildPredicateEmptyNotInMatchesEverything(t *testing.T) {
	clause, _, err := buildPredicate(sqliteDialect{}, query.NotIn(query.FieldItemType, nil))
	require.NoError(t, err)
	assert.Equal(t, "1 = 1", clause)
}

func TestBuildPredicateRange(t *testing.T) {
	min := 100000.0
	max := 500000.0

	clause, args, err := buildPredicate(sqliteDialect{}, query.Range(query.FieldPriceJPY, &min, &max))
	require.NoError(t, err)
	assert.Equal(t, "(price_jpy >= ? AND price_jpy <= ?)", clause)
	assert.Len(t, args, 2)

	clause, args, err = buildPredicate(sqliteDialect{}, query.Range(query.FieldNagasaCM, &min, nil))
	require.NoError(t, err)
	assert.Equal(t, "nagasa_cm >= ?", clause)
	assert.Len(t, args, 1)
}

func TestBuildPredicateSubstrEscapesWildcards(t *testing.T) {
	clause, args, err := buildPredicate(sqliteDialect{}, query.Substr(query.FieldTitle, "50%_off"))
	require.NoError(t, err)
	assert.Equal(t, `lower(title) LIKE ? ESCAPE '\'`, clause)
	require.Len(t, args, 1)
	assert.Equal(t, `%50\%\_off%`, args[0])
}

func TestBuildPredicateOrNestsSubclauses(t *testing.T) {
	min := 100000.0
	p := query.Or(
		query.Range(query.FieldPriceJPY, &min, nil),
		query.IsNull(query.FieldPriceJPY),
	)
	clause, args, err := buildPredicate(sqliteDialect{}, p)
	require.NoError(t, err)
	assert.Equal(t, "(price_jpy >= ? OR price_jpy IS NULL)", clause)
	assert.Len(t, args, 1)
}

func TestBuildPredicateTimeBefore(t *testing.T) {
	at := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	clause, args, err := buildPredicate(sqliteDialect{}, query.TimeBefore(query.FieldFirstSeenAt, at))
	require.NoError(t, err)
	assert.Equal(t, "first_seen_at < ?", clause)
	assert.Equal(t, []interface{}{at}, args)
}

func TestFullTextDialects(t *testing.T) {
	p := query.FullText([]string{"masamune", "soshu"})

	clause, args, err := buildPredicate(sqliteDialect{}, p)
	require.NoError(t, err)
	assert.Contains(t, clause, "listings_fts MATCH ?")
	assert.Equal(t, []interface{}{`"masamune" OR "soshu"`}, args)

	clause, args, err = buildPredicate(postgresDialect{}, p)
	require.NoError(t, err)
	assert.Contains(t, clause, "to_tsquery")
	assert.Equal(t, []interface{}{"'masamune' | 'soshu'"}, args)
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "status = $1 AND price_jpy >= $2", rebind("status = ? AND price_jpy >= ?"))
	assert.Equal(t, "SELECT 1", rebind("SELECT 1"))
}

func TestOrderByPriceSortsAskLast(t *testing.T) {
	asc := orderBy(query.SortPriceAsc)
	desc := orderBy(query.SortPriceDesc)

	// The has-price key leads both directions so unpriced rows sort last
	assert.True(t, len(asc) > 0 && asc[:len("(price_jpy IS NOT NULL) DESC")] == "(price_jpy IS NOT NULL) DESC")
	assert.True(t, len(desc) > 0 && desc[:len("(price_jpy IS NOT NULL) DESC")] == "(price_jpy IS NOT NULL) DESC")
	assert.Contains(t, asc, "price_jpy ASC")
	assert.Contains(t, desc, "price_jpy DESC")
}

func TestOrderByNewestLeadsWithDiscovery(t *testing.T) {
	assert.Equal(t, "new_discovery DESC, first_seen_at DESC, id DESC", orderBy(query.SortNewest))
}

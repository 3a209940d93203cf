package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/nihonto-search/internal/query"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.db.Exec(
		`INSERT INTO dealers (id, name, domain) VALUES
			(1, 'Aoi Art', 'aoijapan.com'),
			(2, 'Token Matsumoto', 'token-net.com'),
			(3, 'Nihonto Club', 'nihontoclub.jp')`)
	require.NoError(t, err)
	return store
}

type seedRow struct {
	id       int64
	dealer   int64
	itemType string
	cert     string
	price    *int64
	status   string
	title    string
}

func seedListings(t *testing.T, store *SQLiteStore, rows []seedRow) {
	t.Helper()
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range rows {
		if r.status == "" {
			r.status = "available"
		}
		seen := base.Add(time.Duration(i) * time.Hour)
		_, err := store.db.Exec(
			`INSERT INTO listings (id, dealer_id, source_url, item_type, category, cert_type,
				price_jpy, status, first_seen_at, last_scraped_at, status_changed_at, title)
			 VALUES (?, ?, ?, ?, 'blades', ?, ?, ?, ?, ?, ?, ?)`,
			r.id, r.dealer, "https://example.com/item/"+r.title, r.itemType, r.cert,
			r.price, r.status, seen, seen, seen, r.title)
		require.NoError(t, err)
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestSQLiteSelectAndCount(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store, []seedRow{
		{id: 1, dealer: 1, itemType: "katana", price: int64Ptr(500000), title: "katana one"},
		{id: 2, dealer: 2, itemType: "wakizashi", price: int64Ptr(300000), title: "wakizashi one"},
		{id: 3, dealer: 1, itemType: "katana", price: int64Ptr(800000), status: "sold", title: "katana two"},
	})

	preds := query.NewSet(
		query.Eq(query.FieldStatus, "available"),
		query.In(query.FieldItemType, []string{"katana"}),
	)

	listings, err := store.Select(context.Background(), preds, query.SortNewest, 24, 0)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, int64(1), listings[0].ID)

	n, err := store.Count(context.Background(), preds)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLitePriceSortPlacesAskLast(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store, []seedRow{
		{id: 1, dealer: 1, itemType: "katana", price: int64Ptr(800000), title: "expensive"},
		{id: 2, dealer: 1, itemType: "katana", price: nil, title: "price on ask"},
		{id: 3, dealer: 2, itemType: "katana", price: int64Ptr(300000), title: "cheap"},
	})

	asc, err := store.Select(context.Background(), query.NewSet(), query.SortPriceAsc, 24, 0)
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, int64(3), asc[0].ID)
	assert.Equal(t, int64(1), asc[1].ID)
	assert.Equal(t, int64(2), asc[2].ID, "ask-price row sorts last ascending")

	desc, err := store.Select(context.Background(), query.NewSet(), query.SortPriceDesc, 24, 0)
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.Equal(t, int64(1), desc[0].ID)
	assert.Equal(t, int64(2), desc[2].ID, "ask-price row sorts last descending too")
}

func TestSQLiteSelectRangeExceeded(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Select(context.Background(), query.NewSet(), query.SortNewest, 24, MaxOffset+1)
	assert.ErrorIs(t, err, ErrRangeExceeded)
}

func TestSQLiteGroupCount(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store, []seedRow{
		{id: 1, dealer: 1, itemType: "katana", cert: "juyo", price: int64Ptr(500000), title: "a"},
		{id: 2, dealer: 1, itemType: "katana", cert: "hozon", price: int64Ptr(300000), title: "b"},
		{id: 3, dealer: 2, itemType: "tanto", cert: "juyo", price: int64Ptr(800000), title: "c"},
		{id: 4, dealer: 2, itemType: "tsuba", cert: "", price: int64Ptr(100000), title: "d"},
	})

	counts, err := store.GroupCount(context.Background(), query.NewSet(), query.FieldCertType)
	require.NoError(t, err)
	require.Len(t, counts, 2, "empty cert values excluded")
	assert.Equal(t, "juyo", counts[0].Value)
	assert.Equal(t, 2, counts[0].Count)

	byDealer, err := store.GroupCount(context.Background(), query.NewSet(), query.FieldDealerID)
	require.NoError(t, err)
	require.Len(t, byDealer, 2)
	assert.ElementsMatch(t, []string{"1", "2"}, []string{byDealer[0].Value, byDealer[1].Value})
}

func TestSQLiteGroupCountRespectsFilter(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store, []seedRow{
		{id: 1, dealer: 1, itemType: "katana", cert: "juyo", price: int64Ptr(500000), title: "a"},
		{id: 2, dealer: 1, itemType: "tanto", cert: "juyo", price: int64Ptr(300000), title: "b"},
	})

	preds := query.NewSet(query.In(query.FieldItemType, []string{"katana"}))
	counts, err := store.GroupCount(context.Background(), preds, query.FieldCertType)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0].Count)
}

func TestSQLitePriceHistogram(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store, []seedRow{
		{id: 1, dealer: 1, itemType: "katana", price: int64Ptr(50000), title: "a"},
		{id: 2, dealer: 1, itemType: "katana", price: int64Ptr(150000), title: "b"},
		{id: 3, dealer: 2, itemType: "katana", price: int64Ptr(300000), title: "c"},
		{id: 4, dealer: 2, itemType: "katana", price: nil, title: "ask"},
		{id: 5, dealer: 3, itemType: "katana", price: int64Ptr(20000000), title: "masterpiece"},
	})

	buckets, err := store.PriceHistogram(context.Background(), query.NewSet(), nil)
	require.NoError(t, err)
	require.Len(t, buckets, len(DefaultHistogramBounds))

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, 4, total, "unpriced rows never counted")
	assert.Equal(t, 1, buckets[0].Count)
	assert.Equal(t, 1, buckets[1].Count)
	assert.Equal(t, 1, buckets[2].Count)
	assert.Equal(t, 1, buckets[len(buckets)-1].Count, "open top bucket")
}

func TestSQLiteFullTextSearch(t *testing.T) {
	store := newTestStore(t)
	seedListings(t, store, []seedRow{
		{id: 1, dealer: 1, itemType: "katana", price: int64Ptr(500000), title: "masamune school blade"},
		{id: 2, dealer: 2, itemType: "katana", price: int64Ptr(300000), title: "muramasa wakizashi"},
	})

	preds := query.NewSet(query.FullText([]string{"masamune"}))
	listings, err := store.Select(context.Background(), preds, query.SortNewest, 24, 0)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, int64(1), listings[0].ID)
}

func TestSQLiteLastUpdated(t *testing.T) {
	store := newTestStore(t)

	ts, err := store.LastUpdated(context.Background(), query.NewSet())
	require.NoError(t, err)
	assert.Nil(t, ts, "empty catalog has no freshness timestamp")

	seedListings(t, store, []seedRow{
		{id: 1, dealer: 1, itemType: "katana", price: int64Ptr(500000), title: "a"},
		{id: 2, dealer: 1, itemType: "katana", price: int64Ptr(300000), title: "b"},
	})

	ts, err = store.LastUpdated(context.Background(), query.NewSet())
	require.NoError(t, err)
	require.NotNil(t, ts)
}

func TestSQLiteDealers(t *testing.T) {
	store := newTestStore(t)
	dealers, err := store.Dealers(context.Background())
	require.NoError(t, err)
	require.Len(t, dealers, 3)
	assert.Equal(t, "aoijapan.com", dealers[0].Domain)
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/nihonto-search/internal/query"
	"github.com/dshills/nihonto-search/pkg/types"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying handle for collaborators sharing the database
// (the artisan registry).
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Capabilities reports native group-count support
func (s *SQLiteStore) Capabilities() Capabilities {
	return Capabilities{GroupCountPushdown: true}
}

const listingColumns = `id, dealer_id, source_url, item_type, category,
	maker_name, maker_romaji, school, province, artisan_code,
	cert_type, cert_session, cert_org, nagasa_cm, period, signature_status,
	price_value, price_currency, price_jpy, status,
	first_seen_at, last_scraped_at, status_changed_at,
	new_discovery, featured_score, title, title_en, description, description_en`

// Select returns one page of matching listings
func (s *SQLiteStore) Select(ctx context.Context, preds query.Set, sort query.Sort, limit, offset int) ([]types.Listing, error) {
	if offset > MaxOffset {
		return nil, ErrRangeExceeded
	}

	where, args, err := buildWhere(sqliteDialect{}, preds)
	if err != nil {
		return nil, err
	}

	q := "SELECT " + listingColumns + " FROM listings"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY " + orderBy(sort) + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select listings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Count returns the total number of matching rows
func (s *SQLiteStore) Count(ctx context.Context, preds query.Set) (int, error) {
	where, args, err := buildWhere(sqliteDialect{}, preds)
	if err != nil {
		return 0, err
	}
	q := "SELECT COUNT(*) FROM listings"
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return n, nil
}

// GroupCount aggregates value->count pairs for one field natively
func (s *SQLiteStore) GroupCount(ctx context.Context, preds query.Set, field query.Field) ([]types.FacetCount, error) {
	where, args, err := buildWhere(sqliteDialect{}, preds)
	if err != nil {
		return nil, err
	}
	col := string(field)
	q := "SELECT " + col + ", COUNT(*) FROM listings WHERE " + col + " != ''"
	if field == query.FieldDealerID {
		q = "SELECT CAST(dealer_id AS TEXT), COUNT(*) FROM listings WHERE dealer_id > 0"
	}
	if where != "" {
		q += " AND " + where
	}
	q += " GROUP BY 1 ORDER BY 2 DESC, 1 ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group-count %s: %w", col, err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.FacetCount
	for rows.Next() {
		var fc types.FacetCount
		if err := rows.Scan(&fc.Value, &fc.Count); err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

// PriceHistogram buckets matching priced rows in one pass
func (s *SQLiteStore) PriceHistogram(ctx context.Context, preds query.Set, bounds []int64) ([]types.HistogramBucket, error) {
	if len(bounds) == 0 {
		bounds = DefaultHistogramBounds
	}

	where, whereArgs, err := buildWhere(sqliteDialect{}, preds)
	if err != nil {
		return nil, err
	}

	var sums []string
	var args []interface{}
	for i := range bounds {
		if i+1 < len(bounds) {
			sums = append(sums, "SUM(CASE WHEN price_jpy >= ? AND price_jpy < ? THEN 1 ELSE 0 END)")
			args = append(args, bounds[i], bounds[i+1])
		} else {
			sums = append(sums, "SUM(CASE WHEN price_jpy >= ? THEN 1 ELSE 0 END)")
			args = append(args, bounds[i])
		}
	}

	q := "SELECT " + strings.Join(sums, ", ") + " FROM listings WHERE price_jpy IS NOT NULL"
	if where != "" {
		q += " AND " + where
		args = append(args, whereArgs...)
	}

	counts := make([]sql.NullInt64, len(bounds))
	dest := make([]interface{}, len(bounds))
	for i := range counts {
		dest[i] = &counts[i]
	}
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(dest...); err != nil {
		return nil, fmt.Errorf("failed to build price histogram: %w", err)
	}

	out := make([]types.HistogramBucket, len(bounds))
	for i := range bounds {
		out[i] = types.HistogramBucket{Low: bounds[i], Count: int(counts[i].Int64)}
		if i+1 < len(bounds) {
			out[i].High = bounds[i+1]
		}
	}
	return out, nil
}

// LastUpdated returns the most recent scrape time over the match set
func (s *SQLiteStore) LastUpdated(ctx context.Context, preds query.Set) (*time.Time, error) {
	where, args, err := buildWhere(sqliteDialect{}, preds)
	if err != nil {
		return nil, err
	}
	q := "SELECT MAX(last_scraped_at) FROM listings"
	if where != "" {
		q += " WHERE " + where
	}
	var ts sql.NullTime
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&ts); err != nil {
		return nil, fmt.Errorf("failed to read last-updated: %w", err)
	}
	if !ts.Valid {
		return nil, nil
	}
	t := ts.Time
	return &t, nil
}

// Dealers returns all known dealers
func (s *SQLiteStore) Dealers(ctx context.Context) ([]types.Dealer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, domain, active, earliest_listing_at FROM dealers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dealers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.Dealer
	for rows.Next() {
		var d types.Dealer
		var earliest sql.NullTime
		if err := rows.Scan(&d.ID, &d.Name, &d.Domain, &d.Active, &earliest); err != nil {
			return nil, err
		}
		if earliest.Valid {
			d.EarliestListingAt = earliest.Time
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// scanListing reads one listing row in listingColumns order
func scanListing(rows *sql.Rows) (types.Listing, error) {
	var l types.Listing
	var nagasa, priceValue, featured sql.NullFloat64
	var priceJPY sql.NullInt64
	var status string

	err := rows.Scan(
		&l.ID, &l.DealerID, &l.SourceURL, &l.ItemType, &l.Category,
		&l.MakerName, &l.MakerRomaji, &l.School, &l.Province, &l.ArtisanCode,
		&l.CertType, &l.CertSession, &l.CertOrg, &nagasa, &l.Period, &l.SignatureStatus,
		&priceValue, &l.PriceCurrency, &priceJPY, &status,
		&l.FirstSeenAt, &l.LastScrapedAt, &l.StatusChangedAt,
		&l.NewDiscovery, &featured, &l.Title, &l.TitleEN, &l.Description, &l.DescriptionEN,
	)
	if err != nil {
		return types.Listing{}, fmt.Errorf("failed to scan listing: %w", err)
	}

	l.Status = types.Status(status)
	if nagasa.Valid {
		l.NagasaCM = &nagasa.Float64
	}
	if priceValue.Valid {
		l.PriceValue = &priceValue.Float64
	}
	if priceJPY.Valid {
		l.PriceJPY = &priceJPY.Int64
	}
	if featured.Valid {
		l.FeaturedScore = &featured.Float64
	}
	return l, nil
}

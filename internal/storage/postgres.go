package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/dshills/nihonto-search/internal/query"
	"github.com/dshills/nihonto-search/pkg/types"
)

// PostgresStore implements the Store interface using PostgreSQL. It shares
// the predicate translation with the SQLite adapter; only placeholder
// binding and the full-text fragment differ.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL using the given DSN
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &PostgresStore{db: db}, nil
}

// DB exposes the underlying handle for collaborators sharing the database
func (s *PostgresStore) DB() *sql.DB { return s.db }

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Capabilities reports native group-count support
func (s *PostgresStore) Capabilities() Capabilities {
	return Capabilities{GroupCountPushdown: true}
}

// rebind rewrites ? placeholders to postgres $n form
func rebind(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Select returns one page of matching listings
func (s *PostgresStore) Select(ctx context.Context, preds query.Set, sort query.Sort, limit, offset int) ([]types.Listing, error) {
	if offset > MaxOffset {
		return nil, ErrRangeExceeded
	}

	where, args, err := buildWhere(postgresDialect{}, preds)
	if err != nil {
		return nil, err
	}

	q := "SELECT " + listingColumns + " FROM listings"
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY " + orderBy(sort) + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, rebind(q), args...)
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
func (s *PostgresStore) Count(ctx context.Context, preds query.Set) (int, error) {
	where, args, err := buildWhere(postgresDialect{}, preds)
	if err != nil {
		return 0, err
	}
	q := "SELECT COUNT(*) FROM listings"
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	if err := s.db.QueryRowContext(ctx, rebind(q), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return n, nil
}

// GroupCount aggregates value->count pairs for one field natively
func (s *PostgresStore) GroupCount(ctx context.Context, preds query.Set, field query.Field) ([]types.FacetCount, error) {
	where, args, err := buildWhere(postgresDialect{}, preds)
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

	rows, err := s.db.QueryContext(ctx, rebind(q), args...)
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
func (s *PostgresStore) PriceHistogram(ctx context.Context, preds query.Set, bounds []int64) ([]types.HistogramBucket, error) {
	if len(bounds) == 0 {
		bounds = DefaultHistogramBounds
	}

	where, whereArgs, err := buildWhere(postgresDialect{}, preds)
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
	if err := s.db.QueryRowContext(ctx, rebind(q), args...).Scan(dest...); err != nil {
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
func (s *PostgresStore) LastUpdated(ctx context.Context, preds query.Set) (*time.Time, error) {
	where, args, err := buildWhere(postgresDialect{}, preds)
	if err != nil {
		return nil, err
	}
	q := "SELECT MAX(last_scraped_at) FROM listings"
	if where != "" {
		q += " WHERE " + where
	}
	var ts sql.NullTime
	if err := s.db.QueryRowContext(ctx, rebind(q), args...).Scan(&ts); err != nil {
		return nil, fmt.Errorf("failed to read last-updated: %w", err)
	}
	if !ts.Valid {
		return nil, nil
	}
	t := ts.Time
	return &t, nil
}

// Dealers returns all known dealers
func (s *PostgresStore) Dealers(ctx context.Context) ([]types.Dealer, error) {
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

package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.0.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Dealers table
CREATE TABLE IF NOT EXISTS dealers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    domain TEXT NOT NULL UNIQUE,
    active BOOLEAN DEFAULT 1,
    earliest_listing_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_dealers_domain ON dealers(domain);

-- Listings table
CREATE TABLE IF NOT EXISTS listings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dealer_id INTEGER NOT NULL,
    source_url TEXT NOT NULL UNIQUE,
    item_type TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    maker_name TEXT NOT NULL DEFAULT '',
    maker_romaji TEXT NOT NULL DEFAULT '',
    school TEXT NOT NULL DEFAULT '',
    province TEXT NOT NULL DEFAULT '',
    artisan_code TEXT NOT NULL DEFAULT '',
    cert_type TEXT NOT NULL DEFAULT '',
    cert_session TEXT NOT NULL DEFAULT '',
    cert_org TEXT NOT NULL DEFAULT '',
    nagasa_cm REAL,
    period TEXT NOT NULL DEFAULT '',
    signature_status TEXT NOT NULL DEFAULT '',
    price_value REAL,
    price_currency TEXT NOT NULL DEFAULT '',
    price_jpy INTEGER,
    status TEXT NOT NULL DEFAULT 'available',
    first_seen_at TIMESTAMP NOT NULL,
    last_scraped_at TIMESTAMP NOT NULL,
    status_changed_at TIMESTAMP NOT NULL,
    new_discovery BOOLEAN DEFAULT 0,
    featured_score REAL,
    title TEXT NOT NULL DEFAULT '',
    title_en TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    description_en TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (dealer_id) REFERENCES dealers(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_listings_dealer ON listings(dealer_id);
CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);
CREATE INDEX IF NOT EXISTS idx_listings_type ON listings(item_type);
CREATE INDEX IF NOT EXISTS idx_listings_cert ON listings(cert_type);
CREATE INDEX IF NOT EXISTS idx_listings_period ON listings(period);
CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price_jpy);
CREATE INDEX IF NOT EXISTS idx_listings_first_seen ON listings(first_seen_at);
CREATE INDEX IF NOT EXISTS idx_listings_artisan ON listings(artisan_code);

-- Full-text search over the romaji-searchable fields
CREATE VIRTUAL TABLE IF NOT EXISTS listings_fts USING fts5(
    title, title_en, description_en, maker_romaji, school,
    content='listings',
    content_rowid='id'
);

-- Triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS listings_ai AFTER INSERT ON listings BEGIN
    INSERT INTO listings_fts(rowid, title, title_en, description_en, maker_romaji, school)
    VALUES (new.id, new.title, new.title_en, new.description_en, new.maker_romaji, new.school);
END;

CREATE TRIGGER IF NOT EXISTS listings_ad AFTER DELETE ON listings BEGIN
    DELETE FROM listings_fts WHERE rowid = old.id;
END;

CREATE TRIGGER IF NOT EXISTS listings_au AFTER UPDATE ON listings BEGIN
    UPDATE listings_fts SET
        title = new.title,
        title_en = new.title_en,
        description_en = new.description_en,
        maker_romaji = new.maker_romaji,
        school = new.school
    WHERE rowid = new.id;
END;

-- Artisan/maker registry
CREATE TABLE IF NOT EXISTS artisans (
    code TEXT PRIMARY KEY,
    name_romaji TEXT NOT NULL,
    name_kanji TEXT NOT NULL DEFAULT '',
    school TEXT NOT NULL DEFAULT '',
    confidence REAL DEFAULT 1.0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_artisans_name ON artisans(name_romaji);
CREATE INDEX IF NOT EXISTS idx_artisans_school ON artisans(school);
`

const migrationV1Down = `
DROP TRIGGER IF EXISTS listings_au;
DROP TRIGGER IF EXISTS listings_ad;
DROP TRIGGER IF EXISTS listings_ai;

DROP TABLE IF EXISTS artisans;
DROP TABLE IF EXISTS listings_fts;
DROP TABLE IF EXISTS listings;
DROP TABLE IF EXISTS dealers;
DROP TABLE IF EXISTS schema_version;
`

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	var currentVersion *semver.Version
	if err == sql.ErrNoRows {
		currentVersion = semver.MustParse("0.0.0")
	} else if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	} else {
		var currentVersionStr string
		err = db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersionStr)
		if err == sql.ErrNoRows || currentVersionStr == "" {
			currentVersion = semver.MustParse("0.0.0")
		} else if err != nil {
			return fmt.Errorf("failed to read schema_version: %w", err)
		} else {
			currentVersion, err = semver.NewVersion(currentVersionStr)
			if err != nil {
				return fmt.Errorf("invalid current schema version %s: %w", currentVersionStr, err)
			}
		}
	}

	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}

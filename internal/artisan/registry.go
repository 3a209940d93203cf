// Package artisan provides the maker/school registry collaborator: resolving
// romaji names to maker codes and codes back to display names. The registry
// is consulted before the free-text branch decision, so a failed lookup
// degrades to "no codes resolved" rather than failing the request.
package artisan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/nihonto-search/internal/textnorm"
)

// ErrNotFound is returned when a code has no registry entry
var ErrNotFound = errors.New("artisan not found")

// Registry resolves artisan names and codes
type Registry interface {
	// ResolveNames returns the maker codes matching any of the tokens
	// (normalized romaji name or school equality). Unknown tokens resolve to
	// nothing; the result may be empty without error.
	ResolveNames(ctx context.Context, tokens []string) ([]string, error)

	// DisplayName returns the display name for a maker code
	DisplayName(ctx context.Context, code string) (string, error)
}

// SQLRegistry is a Registry backed by the artisans table of the listing store
type SQLRegistry struct {
	db     *sql.DB
	dollar bool // $n placeholders instead of ?
}

// NewSQLRegistry creates a registry over an open database handle
func NewSQLRegistry(db *sql.DB) *SQLRegistry {
	return &SQLRegistry{db: db}
}

// NewPostgresRegistry creates a registry using postgres placeholder binding
func NewPostgresRegistry(db *sql.DB) *SQLRegistry {
	return &SQLRegistry{db: db, dollar: true}
}

// placeholders renders n bind markers starting at position start
func (r *SQLRegistry) placeholders(start, n int) string {
	if !r.dollar {
		return strings.TrimSuffix(strings.Repeat("?,", n), ",")
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ",")
}

// ResolveNames matches each token, expanded through its alias set, against
// registry romaji names and school names.
func (r *SQLRegistry) ResolveNames(ctx context.Context, tokens []string) ([]string, error) {
	var terms []string
	for _, tok := range tokens {
		terms = append(terms, textnorm.ExpandAliases(tok)...)
	}
	if len(terms) == 0 {
		return nil, nil
	}

	q := fmt.Sprintf(`
		SELECT DISTINCT code FROM artisans
		WHERE name_romaji IN (%s) OR school IN (%s)
		ORDER BY code`,
		r.placeholders(1, len(terms)), r.placeholders(1+len(terms), len(terms)))

	args := make([]interface{}, 0, len(terms)*2)
	for _, t := range terms {
		args = append(args, t)
	}
	for _, t := range terms {
		args = append(args, t)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artisan names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// DisplayName looks up the romaji display name for a code
func (r *SQLRegistry) DisplayName(ctx context.Context, code string) (string, error) {
	q := `SELECT name_romaji FROM artisans WHERE code = ?`
	if r.dollar {
		q = `SELECT name_romaji FROM artisans WHERE code = $1`
	}
	var name string
	err := r.db.QueryRowContext(ctx, q, code).Scan(&name)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// StaticRegistry is an in-memory Registry for tests and fixtures
type StaticRegistry struct {
	// NamesToCodes maps a normalized romaji name to its codes
	NamesToCodes map[string][]string
	// CodeNames maps a code to its display name
	CodeNames map[string]string
	// Err, when set, is returned from every call
	Err error
}

func (r *StaticRegistry) ResolveNames(ctx context.Context, tokens []string) ([]string, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	var codes []string
	seen := map[string]bool{}
	for _, tok := range tokens {
		for _, alias := range textnorm.ExpandAliases(tok) {
			for _, c := range r.NamesToCodes[alias] {
				if !seen[c] {
					seen[c] = true
					codes = append(codes, c)
				}
			}
		}
	}
	return codes, nil
}

func (r *StaticRegistry) DisplayName(ctx context.Context, code string) (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	if name, ok := r.CodeNames[code]; ok {
		return name, nil
	}
	return "", ErrNotFound
}

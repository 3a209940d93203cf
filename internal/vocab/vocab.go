// Package vocab defines the domain vocabulary the query pipeline matches
// against: item types, certifications, historical periods, provinces, and
// signature statuses, each with a canonical value plus known spelling
// variants. Tables are validated at package init so no variant can map to
// two canonical values.
package vocab

import (
	"fmt"
	"strings"

	"github.com/dshills/nihonto-search/internal/textnorm"
)

// entry is one canonical vocabulary value with its spelling variants
type entry struct {
	canonical string
	variants  []string
}

var certifications = []entry{
	{"juyo", []string{"juyo token", "juyou"}},
	{"tokubetsu juyo", []string{"tokubetsu juyo token", "tokuju"}},
	{"hozon", []string{"hozon token", "houzon"}},
	{"tokubetsu hozon", []string{"tokubetsu hozon token", "tokuho"}},
	{"kicho", []string{"kicho token", "green paper"}},
	{"tokubetsu kicho", []string{"tokubetsu kicho token"}},
	{"kanteisho", []string{"nthk kanteisho"}},
	{"yushu", []string{"yushusaku", "yushu saku"}},
}

var itemTypes = []entry{
	{"katana", []string{"uchigatana"}},
	{"wakizashi", []string{"wakizasi"}},
	{"tanto", []string{"tantou", "sunnobi tanto"}},
	{"tachi", []string{"tati", "kodachi"}},
	{"naginata", []string{"naginata naoshi"}},
	{"yari", []string{"su yari", "jumonji yari"}},
	{"ken", nil},
	{"kogatana", []string{"kotanto"}},
	{"tsuba", []string{"tuba"}},
	{"menuki", nil},
	{"fuchi-kashira", []string{"fuchi kashira", "fuchigashira", "fuchikashira"}},
	{"kozuka", []string{"kodzuka"}},
	{"kogai", nil},
	{"koshirae", []string{"koshirai"}},
	{"armor", []string{"yoroi", "kabuto"}},
	{"book", []string{"oshigata book"}},
	{"stand", []string{"katana kake", "display stand"}},
	{"accessory", []string{"shirasaya bag", "sword bag"}},
}

var periods = []entry{
	{"heian", nil},
	{"kamakura", nil},
	{"nanbokucho", []string{"nambokucho"}},
	{"muromachi", []string{"muromati"}},
	{"momoyama", []string{"azuchi momoyama"}},
	{"edo", []string{"tokugawa"}},
	{"meiji", nil},
	{"taisho", []string{"taishou"}},
	{"showa", []string{"shouwa"}},
	{"koto", []string{"kotou"}},
	{"shinto", []string{"shintou"}},
	{"shinshinto", []string{"shinshintou"}},
	{"gendaito", []string{"gendai", "gendaitou"}},
}

var provinces = []entry{
	{"bizen", []string{"bizen den"}},
	{"yamashiro", []string{"yamasiro", "yamashiro den"}},
	{"yamato", []string{"yamato den"}},
	{"soshu", []string{"soushu", "sagami", "soshu den"}},
	{"mino", []string{"mino den"}},
	{"echizen", nil},
	{"hizen", nil},
	{"satsuma", nil},
	{"musashi", nil},
	{"osaka", []string{"oosaka", "settsu"}},
}

var signatureStatuses = []entry{
	{"signed", []string{"zaimei", "mei"}},
	{"unsigned", []string{"mumei"}},
}

// categoryTypes maps a browse category to its member item types
var categoryTypes = map[string][]string{
	"blades": {"katana", "wakizashi", "tanto", "tachi", "naginata", "yari", "ken", "kogatana"},
	"tosogu": {"tsuba", "menuki", "fuchi-kashira", "kozuka", "kogai", "koshirae"},
	"other":  {"armor", "book", "stand", "accessory"},
}

// nonCollectible are item types excluded from normal browsing. URL searches
// and admin callers bypass the exclusion.
var nonCollectible = map[string]bool{
	"book":      true,
	"stand":     true,
	"accessory": true,
}

var (
	certLookup     map[string]string
	typeLookup     map[string]string
	periodLookup   map[string]string
	provinceLookup map[string]string
	sigLookup      map[string]string
)

func init() {
	var err error
	if certLookup, err = buildLookup("certifications", certifications); err != nil {
		panic(err)
	}
	if typeLookup, err = buildLookup("itemTypes", itemTypes); err != nil {
		panic(err)
	}
	if periodLookup, err = buildLookup("periods", periods); err != nil {
		panic(err)
	}
	if provinceLookup, err = buildLookup("provinces", provinces); err != nil {
		panic(err)
	}
	if sigLookup, err = buildLookup("signatureStatuses", signatureStatuses); err != nil {
		panic(err)
	}
}

// buildLookup builds a normalized variant -> canonical map, rejecting any
// variant that would map to two different canonical values.
func buildLookup(table string, entries []entry) (map[string]string, error) {
	lookup := make(map[string]string)
	for _, e := range entries {
		for _, v := range append([]string{e.canonical}, e.variants...) {
			key := normalizeSpan(v)
			if prev, ok := lookup[key]; ok && prev != e.canonical {
				return nil, fmt.Errorf("vocab table %s: variant %q maps to both %q and %q",
					table, v, prev, e.canonical)
			}
			lookup[key] = e.canonical
		}
	}
	return lookup, nil
}

// normalizeSpan normalizes a possibly multi-word span word by word
func normalizeSpan(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = textnorm.Normalize(w)
	}
	return strings.Join(words, " ")
}

// CanonicalCert resolves a certification span to its canonical value
func CanonicalCert(span string) (string, bool) {
	c, ok := certLookup[normalizeSpan(span)]
	return c, ok
}

// CanonicalItemType resolves an item-type span to its canonical value
func CanonicalItemType(span string) (string, bool) {
	c, ok := typeLookup[normalizeSpan(span)]
	return c, ok
}

// CanonicalPeriod resolves a period span to its canonical value
func CanonicalPeriod(span string) (string, bool) {
	c, ok := periodLookup[normalizeSpan(span)]
	return c, ok
}

// CanonicalProvince resolves a province/school span to its canonical value
func CanonicalProvince(span string) (string, bool) {
	c, ok := provinceLookup[normalizeSpan(span)]
	return c, ok
}

// CanonicalSignature resolves a signature-status span to its canonical value
func CanonicalSignature(span string) (string, bool) {
	c, ok := sigLookup[normalizeSpan(span)]
	return c, ok
}

// CertVariants returns the canonical certification value plus every known
// variant, for expansion into set-membership predicates. This is the single
// variant table every certification filter entry point must go through.
func CertVariants(canonical string) []string {
	canon := normalizeSpan(canonical)
	for _, e := range certifications {
		if e.canonical == canon {
			return append([]string{e.canonical}, e.variants...)
		}
	}
	// Unknown certs pass through unexpanded so explicit filters on values we
	// have never cataloged still match exact rows.
	return []string{canonical}
}

// TypesForCategory returns the item types belonging to a browse category,
// nil for an unknown category.
func TypesForCategory(category string) []string {
	return categoryTypes[strings.ToLower(strings.TrimSpace(category))]
}

// IsNonCollectible reports whether an item type is excluded from normal
// browsing (accessories, books, display stands).
func IsNonCollectible(itemType string) bool {
	return nonCollectible[itemType]
}

// NonCollectibleTypes returns the excluded item types in stable order
func NonCollectibleTypes() []string {
	return []string{"accessory", "book", "stand"}
}

package textnorm

import (
	"strings"
	"unicode"
)

// macronFold maps long-vowel romaji forms to their plain ASCII vowel.
var macronFold = map[rune]rune{
	'ā': 'a', 'ē': 'e', 'ī': 'i', 'ō': 'o', 'ū': 'u',
	'â': 'a', 'ê': 'e', 'î': 'i', 'ô': 'o', 'û': 'u',
}

// kanjiFold maps kyujitai (old-form) kanji common in sword terminology to
// their shinjitai equivalents. Dealer sites are inconsistent about which
// form they use, so both must hit the same index entry.
var kanjiFold = map[rune]rune{
	'國': '国', // province, as in 備前国
	'劍': '剣', // sword
	'劔': '剣',
	'廣': '広', // hiro-, common in smith names
	'濱': '浜',
	'龍': '竜', // dragon, horimono descriptions
	'實': '実',
	'眞': '真', // masa-/shin-, smith names
	'壽': '寿',
	'繼': '継', // -tsugu
	'藏': '蔵',
	'惠': '恵',
	'鐵': '鉄', // tetsu, tosogu material
	'鎭': '鎮',
	'榮': '栄',
	'淸': '清',
	'靑': '青',
}

// Normalize canonicalizes a single token: lowercase, full-width to ASCII,
// macron folding, kyujitai folding, edge punctuation stripped. Pure and
// idempotent.
func Normalize(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		switch {
		case r >= 'Ａ' && r <= 'Ｚ':
			r = r - 'Ａ' + 'a'
		case r >= 'ａ' && r <= 'ｚ':
			r = r - 'ａ' + 'a'
		case r >= '０' && r <= '９':
			r = r - '０' + '0'
		case r == '　':
			r = ' '
		default:
			if f, ok := macronFold[unicode.ToLower(r)]; ok {
				r = f
			} else if f, ok := kanjiFold[r]; ok {
				r = f
			} else {
				r = unicode.ToLower(r)
			}
		}
		b.WriteRune(r)
	}
	return strings.TrimFunc(b.String(), isEdgePunct)
}

// isEdgePunct reports punctuation safe to strip from token edges. Interior
// punctuation (hyphens in school names, dots in URLs) is kept.
func isEdgePunct(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?', '(', ')', '[', ']', '"', '\'',
		'、', '。', '「', '」', '『', '』', '（', '）', '・':
		return true
	}
	return false
}

// aliasTable maps a normalized token to its other known spellings. Entries
// are symmetric: expanding any member yields the whole group.
var aliasTable = map[string][]string{
	"juyo":       {"juyou", "jūyō"},
	"hozon":      {"houzon"},
	"tokubetsu":  {"tokubetu"},
	"koto":       {"kotou"},
	"shinto":     {"shintou"},
	"shinshinto": {"shinshintou"},
	"goto":       {"gotou"},
	"soshu":      {"soushu", "sagami"},
	"yamashiro":  {"yamasiro"},
	"osaka":      {"oosaka"},
	"tanto":      {"tantou"},
	"tachi":      {"tati"},
	"tsuba":      {"tuba"},
	"kozuka":     {"kodzuka"},
	"mumei":      {"unsigned"},
	"zaimei":     {"signed"},
}

// ExpandAliases returns every known spelling of the token, normalized form
// first. The result always contains Normalize(token) even when no aliases
// are known, so downstream matching can treat it as an OR set.
func ExpandAliases(token string) []string {
	canon := Normalize(token)
	out := []string{canon}
	seen := map[string]bool{canon: true}

	add := func(s string) {
		s = Normalize(s)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	if aliases, ok := aliasTable[canon]; ok {
		for _, a := range aliases {
			add(a)
		}
		return out
	}
	// Reverse lookup: the token may itself be a variant spelling.
	for head, aliases := range aliasTable {
		for _, a := range aliases {
			if Normalize(a) == canon {
				add(head)
				for _, other := range aliases {
					add(other)
				}
				return out
			}
		}
	}
	return out
}

package queryparse

import (
	"regexp"

	"github.com/dshills/nihonto-search/internal/textnorm"
)

// Maker-code token shapes. Codes are short letter prefixes followed by a
// digit sequence, with an optional trailing disambiguator, plus a small
// family of dash-prefixed registry formats.
var artisanCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-z]{2,4}\d{2,5}[a-z]?$`), // kan1234, mas540a
	regexp.MustCompile(`^[a-z]{1,4}-\d{1,5}$`),      // nth-482
}

// LooksLikeArtisanCode reports whether a token is shaped like a maker code.
// Shape alone is enough to suppress category gating for the whole request:
// maker codes are cross-category, and the check deliberately does not wait
// for the code to resolve.
func LooksLikeArtisanCode(token string) bool {
	t := textnorm.Normalize(token)
	for _, p := range artisanCodePatterns {
		if p.MatchString(t) {
			return true
		}
	}
	return false
}

// AnyArtisanCodeShaped reports whether any token looks like a maker code
func AnyArtisanCodeShaped(tokens []string) bool {
	for _, t := range tokens {
		if LooksLikeArtisanCode(t) {
			return true
		}
	}
	return false
}

package queryparse

import (
	"strings"

	"github.com/dshills/nihonto-search/internal/textnorm"
	"github.com/dshills/nihonto-search/internal/vocab"
)

// Extracted holds the structured filters recognized inside free text. The
// parser always reports everything it recognizes; precedence against
// explicit caller filters is the compiler's job, not this package's.
type Extracted struct {
	Certifications    []string
	ItemTypes         []string
	SignatureStatuses []string
	Provinces         []string
}

// Empty reports whether nothing was recognized
func (e Extracted) Empty() bool {
	return len(e.Certifications) == 0 && len(e.ItemTypes) == 0 &&
		len(e.SignatureStatuses) == 0 && len(e.Provinces) == 0
}

// maxSpan is the longest vocabulary entry in words ("tokubetsu juyo token")
const maxSpan = 3

// ParseSemanticQuery recognizes domain vocabulary embedded in free text:
// certification names, item types, signature-status terms, and
// province/school names, folding spelling variants to canonical values.
// Recognized spans are removed from the returned remaining terms; longer
// spans win over their prefixes ("tokubetsu hozon" is one certification,
// not the certification "hozon" plus a stray word). Every input token ends
// up either in a recognized filter or in the remaining terms.
func ParseSemanticQuery(words []string) (Extracted, []string) {
	normalized := make([]string, len(words))
	for i, w := range words {
		normalized[i] = textnorm.Normalize(w)
	}

	var ex Extracted
	var rest []string

	for i := 0; i < len(normalized); {
		matched := 0
		for span := maxSpan; span >= 1; span-- {
			if i+span > len(normalized) {
				continue
			}
			joined := strings.Join(normalized[i:i+span], " ")
			if c, ok := vocab.CanonicalCert(joined); ok {
				ex.Certifications = appendUnique(ex.Certifications, c)
				matched = span
				break
			}
			if t, ok := vocab.CanonicalItemType(joined); ok {
				ex.ItemTypes = appendUnique(ex.ItemTypes, t)
				matched = span
				break
			}
			if s, ok := vocab.CanonicalSignature(joined); ok {
				ex.SignatureStatuses = appendUnique(ex.SignatureStatuses, s)
				matched = span
				break
			}
			if p, ok := vocab.CanonicalProvince(joined); ok {
				ex.Provinces = appendUnique(ex.Provinces, p)
				matched = span
				break
			}
		}
		if matched > 0 {
			i += matched
			continue
		}
		if normalized[i] != "" {
			rest = append(rest, normalized[i])
		} else {
			// A token that normalizes to nothing (a lone interpunct, stray
			// punctuation) stays residual in raw form rather than vanishing.
			rest = append(rest, words[i])
		}
		i++
	}
	return ex, rest
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

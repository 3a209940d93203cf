package textnorm

// ContainsCJK reports whether any code point in s falls in the Hiragana,
// Katakana, or CJK Unified Ideographs blocks.
//
// It is a hard branch selector: once any residual query token contains CJK,
// resolution switches to substring matching across structured fields. The
// 'simple' full-text configuration cannot tokenize CJK reliably, so it is
// bypassed entirely rather than degraded.
func ContainsCJK(s string) bool {
	for _, r := range s {
		if isCJK(r) {
			return true
		}
	}
	return false
}

func isCJK(r rune) bool {
	switch {
	case r >= 0x3040 && r <= 0x309F: // Hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // Katakana
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
		return true
	}
	return false
}

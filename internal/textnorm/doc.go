// Package textnorm canonicalizes query tokens before dictionary matching.
//
// Normalization lowercases, folds macron vowels and full-width characters,
// strips edge punctuation, and folds known kyujitai kanji to their shinjitai
// forms so a lookup table built on one script variant still matches the
// other. Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
//
// The package also provides CJK script detection, used as a hard branch
// selector between substring matching and romaji full-text search.
package textnorm

// Package queryparse turns free query text into structured meaning.
//
// The stages are pure functions that partition their input exhaustively:
// every token of the original query ends up as exactly one of a numeric
// filter, a recognized vocabulary filter, or a residual word. Ambiguous
// tokens are left as residual words rather than guessed into filters.
package queryparse

// Package rerank post-processes a ranked result page to cap consecutive
// same-dealer runs. It is a stable, score-preserving reorder: items from the
// same dealer never swap relative positions, and when the cap cannot be
// honored the remainder is appended in original order rather than dropped.
package rerank

import "github.com/dshills/nihonto-search/pkg/types"

// DefaultMaxConsecutive is the production cap on same-dealer runs
const DefaultMaxConsecutive = 2

// ByDealer reorders listings so no more than maxConsecutive consecutive
// output slots share a dealer. Greedy: each output position takes the
// earliest-ranked remaining item whose dealer does not violate the cap; if
// every remaining item would violate it, the remainder is appended as-is.
func ByDealer(items []types.Listing, maxConsecutive int) []types.Listing {
	if maxConsecutive <= 0 {
		maxConsecutive = DefaultMaxConsecutive
	}
	if len(items) <= maxConsecutive {
		return items
	}

	remaining := append([]types.Listing(nil), items...)
	out := make([]types.Listing, 0, len(items))

	for len(remaining) > 0 {
		picked := -1
		for i, cand := range remaining {
			if !violatesCap(out, cand.DealerID, maxConsecutive) {
				picked = i
				break
			}
		}
		if picked < 0 {
			// Every remaining item is from a capped dealer. No starvation:
			// append the rest in original order.
			out = append(out, remaining...)
			break
		}
		out = append(out, remaining[picked])
		remaining = append(remaining[:picked], remaining[picked+1:]...)
	}
	return out
}

// violatesCap reports whether appending dealerID would create a run longer
// than maxConsecutive at the tail of out.
func violatesCap(out []types.Listing, dealerID int64, maxConsecutive int) bool {
	if len(out) < maxConsecutive {
		return false
	}
	for i := len(out) - maxConsecutive; i < len(out); i++ {
		if out[i].DealerID != dealerID {
			return false
		}
	}
	return true
}

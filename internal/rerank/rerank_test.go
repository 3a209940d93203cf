package rerank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/nihonto-search/pkg/types"
)

func listings(dealerIDs ...int64) []types.Listing {
	out := make([]types.Listing, len(dealerIDs))
	for i, d := range dealerIDs {
		out[i] = types.Listing{ID: int64(i + 1), DealerID: d}
	}
	return out
}

func dealerSeq(items []types.Listing) []int64 {
	out := make([]int64, len(items))
	for i, l := range items {
		out[i] = l.DealerID
	}
	return out
}

// assertCapHonored fails if any window of maxConsecutive+1 items is a single
// dealer, ignoring the tail past the point where supply ran out.
func assertCapHonored(t *testing.T, items []types.Listing, maxConsecutive int) {
	t.Helper()
	run := 1
	for i := 1; i < len(items); i++ {
		if items[i].DealerID == items[i-1].DealerID {
			run++
			assert.LessOrEqual(t, run, maxConsecutive,
				"run of dealer %d too long at position %d", items[i].DealerID, i)
		} else {
			run = 1
		}
	}
}

func TestByDealerInterleaves(t *testing.T) {
	// One dealer owns 6 of the 10 top-ranked items; enough other inventory
	// exists to honor the cap everywhere.
	in := listings(1, 1, 1, 2, 1, 1, 3, 1, 2, 3)
	out := ByDealer(in, 2)

	require.Len(t, out, len(in))
	assertCapHonored(t, out, 2)

	// Stable within each dealer: dealer 1's items keep their relative order.
	var dealer1 []int64
	for _, l := range out {
		if l.DealerID == 1 {
			dealer1 = append(dealer1, l.ID)
		}
	}
	assert.IsNonDecreasing(t, dealer1, "same-dealer relative order must be preserved")
}

func TestByDealerNoStarvation(t *testing.T) {
	// All one dealer: the cap is impossible, everything must still come back
	// in original order.
	in := listings(5, 5, 5, 5, 5)
	out := ByDealer(in, 2)

	require.Len(t, out, 5)
	for i, l := range out {
		assert.Equal(t, int64(i+1), l.ID)
	}
}

func TestByDealerExhaustedSupplyTail(t *testing.T) {
	// Dealer 9 contributes >50% of inventory; once other dealers run out the
	// tail may exceed the cap but nothing is lost.
	in := listings(9, 9, 1, 9, 9, 9, 9, 9)
	out := ByDealer(in, 2)

	require.Len(t, out, len(in))
	seen := map[int64]bool{}
	for _, l := range out {
		assert.False(t, seen[l.ID], "no duplicates")
		seen[l.ID] = true
	}
}

func TestByDealerAlreadyDiverse(t *testing.T) {
	in := listings(1, 2, 3, 1, 2, 3)
	out := ByDealer(in, 2)
	assert.Equal(t, dealerSeq(in), dealerSeq(out), "diverse input passes unchanged")
}

func TestByDealerShortInput(t *testing.T) {
	in := listings(1, 1)
	assert.Equal(t, in, ByDealer(in, 2))
	assert.Empty(t, ByDealer(nil, 2))
}

func TestByDealerDefaultCap(t *testing.T) {
	in := listings(1, 1, 1, 2)
	out := ByDealer(in, 0)
	assertCapHonored(t, out, DefaultMaxConsecutive)
}

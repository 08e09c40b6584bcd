package domain

import (
	"cmp"
	"slices"
	"time"
)

// Opportunity is a profitable cycle found by a strategy, ready for the sink.
type Opportunity struct {
	ID           string
	Path         Path
	Result       SimulationResult
	Strategy     string
	DiscoveredAt time.Time
	Seq          uint64 // merge-order tiebreaker within one scan cycle
}

// Rank orders opportunities best-first: highest profit, then fewest hops,
// then earliest discovery. The sort is stable so equal entries keep their
// relative order.
func Rank(opps []Opportunity) {
	slices.SortStableFunc(opps, func(a, b Opportunity) int {
		if c := cmp.Compare(b.Result.Profit, a.Result.Profit); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Path.Hops(), b.Path.Hops()); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}

// TopK returns the best k opportunities after ranking. The input slice is
// reordered in place.
func TopK(opps []Opportunity, k int) []Opportunity {
	Rank(opps)
	if k > 0 && len(opps) > k {
		return opps[:k]
	}
	return opps
}

package domain

// SimulationResult is the outcome of pushing a notional amount through every
// hop of a path against one snapshot generation.
type SimulationResult struct {
	AmountIn   uint64
	AmountOut  uint64
	HopAmounts []uint64 // output of each hop, len == path hops
	Profit     int64    // AmountOut - AmountIn; negative for losing paths
	Generation uint64   // snapshot generation the result was computed against
}

// Profitable reports whether the round trip gained anything at all.
func (r SimulationResult) Profitable() bool { return r.Profit > 0 }

// ProfitBps returns the profit relative to the input in basis points.
func (r SimulationResult) ProfitBps() int64 {
	if r.AmountIn == 0 {
		return 0
	}
	return r.Profit * 10_000 / int64(r.AmountIn)
}

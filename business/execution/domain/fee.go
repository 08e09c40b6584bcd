package domain

import "time"

// FeeStrategy picks how aggressively to bid for block inclusion.
type FeeStrategy string

const (
	FeeConservative FeeStrategy = "conservative"
	FeeProfitBased  FeeStrategy = "profit_based"
	FeeAggressive   FeeStrategy = "aggressive"
)

// PriorityFee is a compute-unit price hint for transaction submission.
type PriorityFee struct {
	MicroLamportsPerCU uint64
	Strategy           FeeStrategy
	SampledAt          time.Time
}

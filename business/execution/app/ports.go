package app

import (
	"context"

	arbitrage "github.com/fd1az/solarb/business/arbitrage/domain"
	"github.com/fd1az/solarb/business/execution/domain"
)

// Executor turns an admitted opportunity into a transaction attempt.
type Executor interface {
	Execute(ctx context.Context, opp arbitrage.Opportunity, fee domain.PriorityFee) (domain.Receipt, error)
}

// FeeEstimator prices block inclusion for a trade of the given expected profit.
type FeeEstimator interface {
	Estimate(ctx context.Context, profitLamports int64) (domain.PriorityFee, error)
}

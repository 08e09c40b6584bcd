package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fd1az/solarb/business/arbitrage/domain"
	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/logger"
)

// StrategyExhaustive enumerates every cycle from every start instrument and
// simulates them all.
const StrategyExhaustive = "exhaustive"

// ExhaustiveStrategy is the brute-force sweep over the whole graph.
type ExhaustiveStrategy struct {
	sim *Simulator
	log logger.LoggerInterface
}

// NewExhaustiveStrategy creates the exhaustive strategy.
func NewExhaustiveStrategy(sim *Simulator, log logger.LoggerInterface) *ExhaustiveStrategy {
	return &ExhaustiveStrategy{sim: sim, log: log}
}

// Name implements Strategy.
func (s *ExhaustiveStrategy) Name() string { return StrategyExhaustive }

// Run implements Strategy.
func (s *ExhaustiveStrategy) Run(ctx context.Context, run StrategyRun, graph *market.Graph) ([]domain.Opportunity, error) {
	snap := graph.Snapshot()
	now := time.Now()

	var opps []domain.Opportunity
	for _, start := range run.Starts {
		var filters []EdgeFilter
		if len(run.Intermediates) > 0 {
			filters = append(filters, IntermediateAllowlist(start, run.Intermediates))
		}

		paths := Enumerate(graph, start, run.MinHops, run.MaxHops, filters...).Collect()
		if len(paths) == 0 {
			continue
		}

		results, err := s.sim.SimulateMany(ctx, paths, run.AmountIn, snap)
		if err != nil {
			return opps, err
		}

		for _, pr := range results {
			if pr.Err != nil {
				continue // aborted paths are skipped, not fatal
			}
			if !pr.Result.Profitable() {
				continue
			}
			opps = append(opps, domain.Opportunity{
				ID:           uuid.NewString(),
				Path:         pr.Path,
				Result:       pr.Result,
				Strategy:     s.Name(),
				DiscoveredAt: now,
			})
		}
	}

	return domain.TopK(opps, run.TopK), nil
}

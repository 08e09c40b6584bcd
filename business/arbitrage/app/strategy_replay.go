package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fd1az/solarb/business/arbitrage/domain"
	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/logger"
)

// Strategy names for the replay family.
const (
	StrategyReplayBest     = "replay-best"
	StrategyReplayTemplate = "replay-template"
)

// resolvePath rebinds a persisted route to the current snapshot. Venues that
// disappeared or routes that no longer chain come back as replay errors.
func resolvePath(snap *market.Snapshot, hops []PersistedHop) (domain.Path, error) {
	if len(hops) == 0 {
		return domain.Path{}, apperror.New(apperror.CodeReplayInputInvalid,
			apperror.WithMessage("route has no hops"))
	}

	edges := make([]market.Edge, 0, len(hops))
	for _, h := range hops {
		venue, ok := snap.Venue(h.Venue)
		if !ok {
			return domain.Path{}, apperror.New(apperror.CodeVenueNotFound,
				apperror.WithContext(h.Venue))
		}
		out, ok := venue.Other(h.InputMint)
		if !ok {
			return domain.Path{}, apperror.New(apperror.CodeReplayInputInvalid,
				apperror.WithContext(h.Venue))
		}
		edges = append(edges, market.Edge{From: h.InputMint, To: out.Address, Venue: venue})
	}

	p := domain.Path{Edges: edges}
	if err := p.Validate(); err != nil {
		return domain.Path{}, apperror.Wrap(err, apperror.CodeReplayInputInvalid)
	}
	return p, nil
}

// ReplayBestStrategy re-simulates the best route from a previous cycle
// against fresh venue state.
type ReplayBestStrategy struct {
	sim   *Simulator
	store ReplayStore
	log   logger.LoggerInterface
}

// NewReplayBestStrategy creates the replay-best strategy.
func NewReplayBestStrategy(sim *Simulator, store ReplayStore, log logger.LoggerInterface) *ReplayBestStrategy {
	return &ReplayBestStrategy{sim: sim, store: store, log: log}
}

// Name implements Strategy.
func (s *ReplayBestStrategy) Name() string { return StrategyReplayBest }

// Run implements Strategy.
func (s *ReplayBestStrategy) Run(ctx context.Context, run StrategyRun, graph *market.Graph) ([]domain.Opportunity, error) {
	stored, err := s.store.LoadBestPath(ctx)
	if err != nil {
		return nil, err
	}

	snap := graph.Snapshot()
	path, err := resolvePath(snap, stored.Hops)
	if err != nil {
		return nil, err
	}

	amountIn := run.AmountIn
	if stored.AmountIn > 0 {
		amountIn = stored.AmountIn
	}

	res, err := s.sim.Simulate(ctx, path, amountIn, snap)
	if err != nil {
		return nil, err
	}
	if !res.Profitable() {
		return nil, nil
	}

	return []domain.Opportunity{{
		ID:           uuid.NewString(),
		Path:         path,
		Result:       res,
		Strategy:     s.Name(),
		DiscoveredAt: time.Now(),
	}}, nil
}

// ReplayTemplateStrategy replays a known-good route and only emits it when
// the fresh outcome stays within the template's drift bound.
type ReplayTemplateStrategy struct {
	sim   *Simulator
	store ReplayStore
	log   logger.LoggerInterface
}

// NewReplayTemplateStrategy creates the replay-template strategy.
func NewReplayTemplateStrategy(sim *Simulator, store ReplayStore, log logger.LoggerInterface) *ReplayTemplateStrategy {
	return &ReplayTemplateStrategy{sim: sim, store: store, log: log}
}

// Name implements Strategy.
func (s *ReplayTemplateStrategy) Name() string { return StrategyReplayTemplate }

// Run implements Strategy.
func (s *ReplayTemplateStrategy) Run(ctx context.Context, run StrategyRun, graph *market.Graph) ([]domain.Opportunity, error) {
	tmpl, err := s.store.LoadTemplate(ctx)
	if err != nil {
		return nil, err
	}

	snap := graph.Snapshot()
	path, err := resolvePath(snap, tmpl.Hops)
	if err != nil {
		return nil, err
	}

	amountIn := run.AmountIn
	if tmpl.AmountIn > 0 {
		amountIn = tmpl.AmountIn
	}

	res, err := s.sim.Simulate(ctx, path, amountIn, snap)
	if err != nil {
		return nil, err
	}
	if !res.Profitable() {
		return nil, nil
	}

	if drift := driftBps(res.AmountOut, tmpl.ExpectedOut); drift > int64(tmpl.MaxDriftBps) {
		s.log.Debug(ctx, "template drifted past bound",
			"path", path.Symbols(),
			"expected_out", tmpl.ExpectedOut,
			"actual_out", res.AmountOut,
			"drift_bps", drift)
		return nil, nil
	}

	return []domain.Opportunity{{
		ID:           uuid.NewString(),
		Path:         path,
		Result:       res,
		Strategy:     s.Name(),
		DiscoveredAt: time.Now(),
	}}, nil
}

// driftBps returns |actual-expected| relative to expected in basis points.
func driftBps(actual, expected uint64) int64 {
	if expected == 0 {
		return 0
	}
	var diff uint64
	if actual > expected {
		diff = actual - expected
	} else {
		diff = expected - actual
	}
	return int64(diff * 10_000 / expected)
}

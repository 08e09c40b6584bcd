// Package app contains application services and port definitions for the
// arbitrage context.
package app

import (
	"context"

	"github.com/fd1az/solarb/business/arbitrage/domain"
	market "github.com/fd1az/solarb/business/market/domain"
)

// StrategyRun describes one strategy invocation within a scan cycle.
type StrategyRun struct {
	Strategy      string   // registered strategy name
	Starts        []string // cycle start instruments (mint addresses)
	MinHops       int
	MaxHops       int
	TopK          int    // keep the best K opportunities; 0 keeps all
	AmountIn      uint64 // notional input in the start instrument's minor units
	ForceRefresh  bool   // bypass the registry TTL for this cycle
	Intermediates []string
}

// Strategy produces opportunities from a graph. Implementations must be safe
// for concurrent use; the orchestrator runs them as siblings.
type Strategy interface {
	Name() string
	Run(ctx context.Context, run StrategyRun, graph *market.Graph) ([]domain.Opportunity, error)
}

// PersistedHop is one hop of a stored route: the venue and the direction to
// take through it.
type PersistedHop struct {
	Venue     string `json:"venue"`
	InputMint string `json:"input_mint"`
}

// PersistedPath is a stored best route.
type PersistedPath struct {
	Hops     []PersistedHop `json:"hops"`
	AmountIn uint64         `json:"amount_in"`
}

// PersistedTemplate is a stored route with its expected outcome; replaying it
// re-validates the route against fresh state.
type PersistedTemplate struct {
	Hops        []PersistedHop `json:"hops"`
	AmountIn    uint64         `json:"amount_in"`
	ExpectedOut uint64         `json:"expected_out"`
	MaxDriftBps uint32         `json:"max_drift_bps"`
}

// ReplayStore persists routes between scan cycles.
type ReplayStore interface {
	LoadBestPath(ctx context.Context) (PersistedPath, error)
	SaveBestPath(ctx context.Context, p PersistedPath) error
	LoadTemplate(ctx context.Context) (PersistedTemplate, error)
}

// OpportunitySink accepts ranked opportunities for execution. A nil error
// means the opportunity was admitted; rejections carry their reason as an
// error code.
type OpportunitySink interface {
	Submit(ctx context.Context, opp domain.Opportunity) error
}

// SinkFunc adapts a function to the OpportunitySink interface.
type SinkFunc func(ctx context.Context, opp domain.Opportunity) error

// Submit implements OpportunitySink.
func (f SinkFunc) Submit(ctx context.Context, opp domain.Opportunity) error {
	return f(ctx, opp)
}

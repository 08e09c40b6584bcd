// Package arbitrage implements the arbitrage bounded context: path
// enumeration, simulation and the strategy orchestrator.
package arbitrage

import (
	"context"

	"github.com/fd1az/solarb/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/solarb/business/arbitrage/di"
	"github.com/fd1az/solarb/business/arbitrage/domain"
	"github.com/fd1az/solarb/business/arbitrage/infra/replayfile"
	"github.com/fd1az/solarb/business/arbitrage/infra/report"
	executionDI "github.com/fd1az/solarb/business/execution/di"
	marketDI "github.com/fd1az/solarb/business/market/di"
	market "github.com/fd1az/solarb/business/market/domain"
	pricingDI "github.com/fd1az/solarb/business/pricing/di"
	"github.com/fd1az/solarb/internal/config"
	"github.com/fd1az/solarb/internal/di"
	"github.com/fd1az/solarb/internal/logger"
	"github.com/fd1az/solarb/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Simulator - private dependency
	di.RegisterToken(c, arbitrageDI.Simulator, func(sr di.ServiceRegistry) *app.Simulator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		sim, err := app.NewSimulator(app.SimulatorConfig{
			ConcurrencyLimit: cfg.Simulation.ConcurrencyLimit,
			BatchSize:        cfg.Simulation.BatchSize,
			AmountBucket:     cfg.Simulation.AmountBucket,
		}, pricingDI.GetQuoteService(sr), log)
		if err != nil {
			panic("failed to create simulator: " + err.Error())
		}
		return sim
	})

	// Replay store - private dependency
	di.RegisterToken(c, arbitrageDI.ReplayStore, func(sr di.ServiceRegistry) app.ReplayStore {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return replayfile.NewStore(replayfile.DefaultConfig(cfg.Strategies.ReplayDir), log)
	})

	// Strategies - private dependency
	di.RegisterToken(c, arbitrageDI.Strategies, func(sr di.ServiceRegistry) []app.Strategy {
		log := sr.Get("logger").(logger.LoggerInterface)
		sim := arbitrageDI.GetSimulator(sr)
		store := arbitrageDI.GetReplayStore(sr)

		return []app.Strategy{
			app.NewExhaustiveStrategy(sim, log),
			app.NewReplayBestStrategy(sim, store, log),
			app.NewReplayTemplateStrategy(sim, store, log),
		}
	})

	// Console reporter - private dependency
	di.RegisterToken(c, arbitrageDI.Console, func(sr di.ServiceRegistry) *report.Console {
		return report.NewConsole()
	})

	// Orchestrator (public - exposed to other modules)
	di.RegisterToken(c, arbitrageDI.Orchestrator, func(sr di.ServiceRegistry) *app.Orchestrator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		sink := executionDI.GetSink(sr)

		orch, err := app.NewOrchestrator(app.OrchestratorConfig{
			Runs:         buildRuns(cfg),
			ScanInterval: cfg.Strategies.ScanInterval,
		},
			marketDI.GetRegistry(sr),
			app.SinkFunc(func(ctx context.Context, opp domain.Opportunity) error {
				_, err := sink.Submit(ctx, opp)
				return err
			}),
			arbitrageDI.GetReplayStore(sr),
			log,
			arbitrageDI.GetStrategies(sr)...,
		)
		if err != nil {
			panic("failed to create orchestrator: " + err.Error())
		}
		return orch
	})

	return nil
}

// Startup logs the configured runs; the orchestrator loop is driven by main.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	mono.Logger().Info(ctx, "arbitrage module started",
		"runs", len(buildRuns(cfg)),
		"scan_interval", cfg.Strategies.ScanInterval)
	return nil
}

// buildRuns translates strategy configuration into per-cycle runs.
func buildRuns(cfg *config.Config) []app.StrategyRun {
	var runs []app.StrategyRun

	if cfg.Strategies.Exhaustive.Enabled {
		starts := cfg.Strategies.Exhaustive.Starts
		if len(starts) == 0 {
			starts = []string{market.SOL.Address}
		}
		runs = append(runs, app.StrategyRun{
			Strategy:      app.StrategyExhaustive,
			Starts:        starts,
			MinHops:       cfg.Strategies.Exhaustive.MinHops,
			MaxHops:       cfg.Strategies.Exhaustive.MaxHops,
			TopK:          cfg.Strategies.Exhaustive.TopK,
			AmountIn:      cfg.Strategies.Exhaustive.AmountIn,
			ForceRefresh:  cfg.Strategies.Exhaustive.ForceRefresh,
			Intermediates: cfg.Strategies.Exhaustive.Intermediates,
		})
	}
	if cfg.Strategies.ReplayBest.Enabled {
		runs = append(runs, app.StrategyRun{
			Strategy: app.StrategyReplayBest,
			AmountIn: cfg.Strategies.ReplayBest.AmountIn,
		})
	}
	if cfg.Strategies.ReplayTemplate.Enabled {
		runs = append(runs, app.StrategyRun{
			Strategy: app.StrategyReplayTemplate,
			AmountIn: cfg.Strategies.ReplayTemplate.AmountIn,
		})
	}

	return runs
}

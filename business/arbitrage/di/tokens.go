// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/solarb/business/arbitrage/app"
	"github.com/fd1az/solarb/business/arbitrage/infra/report"
	"github.com/fd1az/solarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Orchestrator = di.NewToken[*app.Orchestrator]("arbitrage.Orchestrator")
)

// Private dependency tokens - internal to arbitrage module
var (
	Simulator   = di.NewToken[*app.Simulator]("arbitrage:simulator")
	ReplayStore = di.NewToken[app.ReplayStore]("arbitrage:replayStore")
	Strategies  = di.NewToken[[]app.Strategy]("arbitrage:strategies")
	Console     = di.NewToken[*report.Console]("arbitrage:console")
)

// Helper functions for type-safe access
func GetOrchestrator(c di.ServiceRegistry) *app.Orchestrator {
	return di.GetToken(c, Orchestrator)
}

func GetSimulator(c di.ServiceRegistry) *app.Simulator {
	return di.GetToken(c, Simulator)
}

func GetReplayStore(c di.ServiceRegistry) app.ReplayStore {
	return di.GetToken(c, ReplayStore)
}

func GetStrategies(c di.ServiceRegistry) []app.Strategy {
	return di.GetToken(c, Strategies)
}

func GetConsole(c di.ServiceRegistry) *report.Console {
	return di.GetToken(c, Console)
}

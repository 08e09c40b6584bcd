// Package di contains dependency injection tokens for the execution context.
package di

import (
	"github.com/fd1az/solarb/business/execution/app"
	"github.com/fd1az/solarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Sink = di.NewToken[*app.Sink]("execution.Sink")
)

// Private dependency tokens - internal to execution module
var (
	Executor     = di.NewToken[app.Executor]("execution:executor")
	FeeEstimator = di.NewToken[app.FeeEstimator]("execution:feeEstimator")
)

// Helper functions for type-safe access
func GetSink(c di.ServiceRegistry) *app.Sink {
	return di.GetToken(c, Sink)
}

func GetExecutor(c di.ServiceRegistry) app.Executor {
	return di.GetToken(c, Executor)
}

func GetFeeEstimator(c di.ServiceRegistry) app.FeeEstimator {
	return di.GetToken(c, FeeEstimator)
}

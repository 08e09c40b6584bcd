// Package execution implements the execution bounded context: opportunity
// admission, fee estimation and transaction submission.
package execution

import (
	"context"

	"github.com/fd1az/solarb/business/execution/app"
	executionDI "github.com/fd1az/solarb/business/execution/di"
	"github.com/fd1az/solarb/business/execution/domain"
	"github.com/fd1az/solarb/business/execution/infra/fees"
	"github.com/fd1az/solarb/business/execution/infra/rpc"
	"github.com/fd1az/solarb/internal/config"
	"github.com/fd1az/solarb/internal/di"
	"github.com/fd1az/solarb/internal/logger"
	"github.com/fd1az/solarb/internal/monolith"
)

// Module implements the execution bounded context.
type Module struct{}

// RegisterServices registers all execution services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Fee estimator - private dependency
	di.RegisterToken(c, executionDI.FeeEstimator, func(sr di.ServiceRegistry) app.FeeEstimator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		estimator, err := fees.NewEstimator(fees.Config{
			RPCURL:   cfg.Fees.RPCURL,
			Strategy: domain.FeeStrategy(cfg.Fees.Strategy),
			TTL:      cfg.Fees.TTL,
			Timeout:  cfg.Fees.Timeout,
			MinFee:   cfg.Fees.MinFee,
			MaxFee:   cfg.Fees.MaxFee,
		}, log)
		if err != nil {
			panic("failed to create fee estimator: " + err.Error())
		}
		return estimator
	})

	// Executor - private dependency
	di.RegisterToken(c, executionDI.Executor, func(sr di.ServiceRegistry) app.Executor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		mode, err := domain.ParseMode(cfg.Execution.Mode)
		if err != nil {
			panic("invalid execution mode: " + cfg.Execution.Mode)
		}

		executor, err := rpc.NewExecutor(rpc.Config{
			SubmitURL: cfg.Execution.SubmitURL,
			Mode:      mode,
			Timeout:   cfg.Execution.Timeout,
		}, log)
		if err != nil {
			panic("failed to create executor: " + err.Error())
		}
		return executor
	})

	// Sink (public - exposed to other modules)
	di.RegisterToken(c, executionDI.Sink, func(sr di.ServiceRegistry) *app.Sink {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		sink, err := app.NewSink(app.SinkConfig{
			MinProfitLamports: cfg.Sink.MinProfitLamports,
			MaxSlippageBps:    cfg.Sink.MaxSlippageBps,
			MaxInFlight:       cfg.Sink.MaxInFlight,
			ExecTimeout:       cfg.Execution.Timeout,
			AllowedMints:      cfg.Sink.AllowedMints,
		}, executionDI.GetExecutor(sr), executionDI.GetFeeEstimator(sr), log)
		if err != nil {
			panic("failed to create opportunity sink: " + err.Error())
		}
		return sink
	})

	return nil
}

// Startup validates the configured mode early so a bad deployment fails fast.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()

	mode, err := domain.ParseMode(cfg.Execution.Mode)
	if err != nil {
		return err
	}

	mono.Logger().Info(ctx, "execution module started",
		"mode", string(mode),
		"min_profit_lamports", cfg.Sink.MinProfitLamports,
		"max_in_flight", cfg.Sink.MaxInFlight)
	return nil
}

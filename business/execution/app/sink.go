// Package app contains the execution context's application services.
package app

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	arbitrage "github.com/fd1az/solarb/business/arbitrage/domain"
	"github.com/fd1az/solarb/business/execution/domain"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/logger"
)

// SinkConfig holds the sink's admission policy.
type SinkConfig struct {
	MinProfitLamports int64         // profit floor after fees, in lamports
	MaxSlippageBps    uint32        // worst-case haircut applied to the simulated output
	MaxInFlight       int64         // concurrent execution ceiling
	ExecTimeout       time.Duration // per-execution deadline
	AllowedMints      []string      // when non-empty, every hop mint must be listed
}

// Sink admits ranked opportunities for execution. Guards run synchronously
// in submission order; execution itself runs asynchronously behind an
// in-flight ceiling, so a slow executor pushes back on the orchestrator.
type Sink struct {
	cfg     SinkConfig
	exec    Executor
	fees    FeeEstimator
	log     logger.LoggerInterface
	sem     *semaphore.Weighted
	allowed map[string]struct{}
	wg      sync.WaitGroup

	tracer      trace.Tracer
	meter       metric.Meter
	submissions metric.Int64Counter
	rejections  metric.Int64Counter
	executions  metric.Int64Counter
	inFlight    metric.Int64UpDownCounter
}

// NewSink creates an opportunity sink.
func NewSink(cfg SinkConfig, exec Executor, fees FeeEstimator, log logger.LoggerInterface) (*Sink, error) {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 4
	}
	// 10_000 bps is a full haircut; anything above means the same rejection.
	if cfg.MaxSlippageBps > 10_000 {
		cfg.MaxSlippageBps = 10_000
	}
	if cfg.ExecTimeout <= 0 {
		cfg.ExecTimeout = 30 * time.Second
	}

	s := &Sink{
		cfg:    cfg,
		exec:   exec,
		fees:   fees,
		log:    log,
		sem:    semaphore.NewWeighted(cfg.MaxInFlight),
		tracer: otel.Tracer("execution.sink"),
		meter:  otel.Meter("execution.sink"),
	}
	if len(cfg.AllowedMints) > 0 {
		s.allowed = make(map[string]struct{}, len(cfg.AllowedMints))
		for _, mint := range cfg.AllowedMints {
			s.allowed[mint] = struct{}{}
		}
	}

	var err error
	if s.submissions, err = s.meter.Int64Counter("sink_submissions_total",
		metric.WithDescription("Opportunities submitted to the sink")); err != nil {
		return nil, err
	}
	if s.rejections, err = s.meter.Int64Counter("sink_rejections_total",
		metric.WithDescription("Opportunities rejected by admission guards")); err != nil {
		return nil, err
	}
	if s.executions, err = s.meter.Int64Counter("sink_executions_total",
		metric.WithDescription("Execution attempts")); err != nil {
		return nil, err
	}
	if s.inFlight, err = s.meter.Int64UpDownCounter("sink_executions_in_flight",
		metric.WithDescription("Executions currently in flight")); err != nil {
		return nil, err
	}

	return s, nil
}

// Submit runs the admission guards and, if they pass, hands the opportunity
// to the executor asynchronously. It blocks when MaxInFlight executions are
// already running, until a slot frees or ctx is done.
func (s *Sink) Submit(ctx context.Context, opp arbitrage.Opportunity) (domain.Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "sink.submit")
	defer span.End()

	s.submissions.Add(ctx, 1)

	if err := s.checkMints(opp); err != nil {
		return s.reject(ctx, opp, err)
	}
	if opp.Result.Profit < s.cfg.MinProfitLamports {
		return s.reject(ctx, opp, apperror.New(apperror.CodeBelowProfitFloor,
			apperror.WithContext(opp.Path.Symbols())))
	}
	if err := s.checkSlippage(opp); err != nil {
		return s.reject(ctx, opp, err)
	}

	fee, err := s.fees.Estimate(ctx, opp.Result.Profit)
	if err != nil {
		// A failed estimate is not fatal; execute with no priority bid.
		s.log.Warn(ctx, "fee estimate failed, submitting without priority fee",
			"opportunity", opp.ID, "error", err)
		fee = domain.PriorityFee{}
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return domain.OutcomeFailed, apperror.Wrap(err, apperror.CodeSubmissionRejected,
			apperror.WithContext("in-flight ceiling"))
	}
	s.inFlight.Add(ctx, 1)
	s.wg.Add(1)

	go s.execute(ctx, opp, fee)

	return domain.OutcomeAccepted, nil
}

// Drain waits for in-flight executions to finish or ctx to expire.
func (s *Sink) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sink) execute(parent context.Context, opp arbitrage.Opportunity, fee domain.PriorityFee) {
	// Detach from the submission context so a finished scan cycle does not
	// cancel an execution already in flight.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.cfg.ExecTimeout)
	defer func() {
		cancel()
		s.inFlight.Add(ctx, -1)
		s.sem.Release(1)
		s.wg.Done()
	}()

	receipt, err := s.exec.Execute(ctx, opp, fee)
	if err != nil {
		s.executions.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", false)))
		s.log.Error(ctx, "execution failed",
			"opportunity", opp.ID,
			"path", opp.Path.Symbols(),
			"error", err)
		return
	}

	s.executions.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", true)))
	s.log.Info(ctx, "executed",
		"opportunity", opp.ID,
		"path", opp.Path.Symbols(),
		"signature", receipt.Signature,
		"mode", string(receipt.Mode),
		"latency", receipt.Latency,
		"profit_lamports", opp.Result.Profit)
}

func (s *Sink) reject(ctx context.Context, opp arbitrage.Opportunity, err error) (domain.Outcome, error) {
	s.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", string(apperror.GetCode(err)))))
	s.log.Debug(ctx, "opportunity rejected",
		"opportunity", opp.ID,
		"path", opp.Path.Symbols(),
		"reason", apperror.GetCode(err))
	return domain.OutcomeRejected, err
}

func (s *Sink) checkMints(opp arbitrage.Opportunity) error {
	if s.allowed == nil {
		return nil
	}
	for _, e := range opp.Path.Edges {
		if _, ok := s.allowed[e.From]; !ok {
			return apperror.New(apperror.CodeSubmissionRejected,
				apperror.WithContext("mint not allowed: "+e.From))
		}
	}
	return nil
}

// checkSlippage requires the path to stay above the profit floor even after
// a worst-case MaxSlippageBps haircut on the simulated output.
func (s *Sink) checkSlippage(opp arbitrage.Opportunity) error {
	if s.cfg.MaxSlippageBps == 0 {
		return nil
	}
	// Split so the haircut keeps sub-10_000-lamport precision without
	// overflowing on large outputs.
	bps := uint64(s.cfg.MaxSlippageBps)
	out := opp.Result.AmountOut
	haircut := out/10_000*bps + out%10_000*bps/10_000
	worst := opp.Result.Profit - int64(haircut)
	if worst < s.cfg.MinProfitLamports {
		return apperror.New(apperror.CodeSlippageExceeded,
			apperror.WithContext(opp.Path.Symbols()))
	}
	return nil
}

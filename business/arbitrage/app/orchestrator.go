package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solarb/business/arbitrage/domain"
	marketApp "github.com/fd1az/solarb/business/market/app"
	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/logger"
)

// OrchestratorConfig holds strategy orchestrator configuration.
type OrchestratorConfig struct {
	Runs         []StrategyRun
	ScanInterval time.Duration
}

// RunReport is the outcome of one strategy run within a cycle.
type RunReport struct {
	Strategy      string
	Opportunities int
	Duration      time.Duration
	Err           error
}

// CycleReport summarizes one scan cycle.
type CycleReport struct {
	Generation uint64
	Runs       []RunReport
	Ranked     []domain.Opportunity
	Submitted  int
	Duration   time.Duration
}

// Orchestrator drives scan cycles: refresh, fan out strategies, merge, rank
// and feed the sink. Strategy failures are isolated; one bad run never takes
// down its siblings or the cycle.
type Orchestrator struct {
	cfg        OrchestratorConfig
	registry   *marketApp.Registry
	strategies map[string]Strategy
	sink       OpportunitySink
	store      ReplayStore // optional; persists the cycle's best route
	log        logger.LoggerInterface

	tracer       trace.Tracer
	meter        metric.Meter
	cycleCounter metric.Int64Counter
	discovered   metric.Int64Counter
	submitted    metric.Int64Counter
	rejected     metric.Int64Counter
	runFailures  metric.Int64Counter
}

// NewOrchestrator creates an orchestrator over the given strategies.
func NewOrchestrator(
	cfg OrchestratorConfig,
	registry *marketApp.Registry,
	sink OpportunitySink,
	store ReplayStore,
	log logger.LoggerInterface,
	strategies ...Strategy,
) (*Orchestrator, error) {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = 5 * time.Second
	}

	o := &Orchestrator{
		cfg:        cfg,
		registry:   registry,
		strategies: make(map[string]Strategy, len(strategies)),
		sink:       sink,
		store:      store,
		log:        log,
		tracer:     otel.Tracer("arbitrage.orchestrator"),
		meter:      otel.Meter("arbitrage.orchestrator"),
	}
	for _, s := range strategies {
		o.strategies[s.Name()] = s
	}

	var err error
	if o.cycleCounter, err = o.meter.Int64Counter("scan_cycles_total",
		metric.WithDescription("Number of completed scan cycles")); err != nil {
		return nil, err
	}
	if o.discovered, err = o.meter.Int64Counter("opportunities_discovered_total",
		metric.WithDescription("Opportunities discovered by strategies")); err != nil {
		return nil, err
	}
	if o.submitted, err = o.meter.Int64Counter("opportunities_submitted_total",
		metric.WithDescription("Opportunities accepted by the sink")); err != nil {
		return nil, err
	}
	if o.rejected, err = o.meter.Int64Counter("opportunities_rejected_total",
		metric.WithDescription("Opportunities rejected by the sink")); err != nil {
		return nil, err
	}
	if o.runFailures, err = o.meter.Int64Counter("strategy_failures_total",
		metric.WithDescription("Strategy runs that returned an error")); err != nil {
		return nil, err
	}

	return o, nil
}

// RunCycle executes one scan cycle and returns its report. The cycle itself
// only errors when no snapshot can be obtained at all.
func (o *Orchestrator) RunCycle(ctx context.Context) (*CycleReport, error) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "orchestrator.run_cycle")
	defer span.End()

	force := false
	for _, run := range o.cfg.Runs {
		if run.ForceRefresh {
			force = true
			break
		}
	}

	snap, err := o.registry.Refresh(ctx, force)
	if err != nil {
		// A failed refresh still leaves the previous snapshot usable.
		snap = o.registry.Snapshot()
		if snap.Len() == 0 {
			return nil, apperror.Wrap(err, apperror.CodeRefreshFailed)
		}
		o.log.Warn(ctx, "refresh failed, scanning stale snapshot",
			"generation", snap.Generation(), "error", err)
	}

	graph := market.BuildGraph(snap)
	span.SetAttributes(
		attribute.Int64("generation", int64(snap.Generation())),
		attribute.Int("venues", snap.Len()))

	reports := make([]RunReport, len(o.cfg.Runs))
	collected := make([][]domain.Opportunity, len(o.cfg.Runs))

	var wg sync.WaitGroup
	for i, run := range o.cfg.Runs {
		wg.Add(1)
		go func(i int, run StrategyRun) {
			defer wg.Done()
			runStart := time.Now()
			opps, err := o.runStrategy(ctx, run, graph)
			reports[i] = RunReport{
				Strategy:      run.Strategy,
				Opportunities: len(opps),
				Duration:      time.Since(runStart),
				Err:           err,
			}
			collected[i] = opps
		}(i, run)
	}
	wg.Wait()

	var merged []domain.Opportunity
	var seq uint64
	for i := range collected {
		if reports[i].Err != nil {
			o.runFailures.Add(ctx, 1, metric.WithAttributes(
				attribute.String("strategy", reports[i].Strategy)))
			o.log.Warn(ctx, "strategy run failed",
				"strategy", reports[i].Strategy, "error", reports[i].Err)
			continue
		}
		for _, opp := range collected[i] {
			opp.Seq = seq
			seq++
			merged = append(merged, opp)
		}
	}

	domain.Rank(merged)
	o.discovered.Add(ctx, int64(len(merged)))

	accepted := 0
	for _, opp := range merged {
		if err := o.sink.Submit(ctx, opp); err != nil {
			o.rejected.Add(ctx, 1, metric.WithAttributes(
				attribute.String("code", string(apperror.GetCode(err)))))
			o.log.Debug(ctx, "opportunity rejected",
				"path", opp.Path.Symbols(),
				"profit", opp.Result.Profit,
				"error", err)
			continue
		}
		accepted++
	}
	o.submitted.Add(ctx, int64(accepted))

	o.persistBest(ctx, merged)

	report := &CycleReport{
		Generation: snap.Generation(),
		Runs:       reports,
		Ranked:     merged,
		Submitted:  accepted,
		Duration:   time.Since(start),
	}

	o.cycleCounter.Add(ctx, 1)
	o.log.Info(ctx, "scan cycle complete",
		"generation", report.Generation,
		"opportunities", len(merged),
		"submitted", accepted,
		"duration", report.Duration.String())

	return report, nil
}

// Run drives cycles until ctx is cancelled: one immediately, then one per
// tick. events may be nil; when present, feed notifications trigger an extra
// cycle between ticks (the registry TTL still gates how often sources are
// actually hit). onCycle, if non-nil, observes every successful report.
func (o *Orchestrator) Run(ctx context.Context, events <-chan market.MarketEvent, onCycle func(*CycleReport)) error {
	cycle := func() {
		report, err := o.RunCycle(ctx)
		if err != nil {
			o.log.Error(ctx, "scan cycle failed", "error", err)
			return
		}
		if onCycle != nil {
			onCycle(report)
		}
	}

	cycle()

	ticker := time.NewTicker(o.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cycle()
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			cycle()
		}
	}
}

// runStrategy resolves and executes one run, converting panics into errors so
// a broken strategy cannot kill the cycle.
func (o *Orchestrator) runStrategy(ctx context.Context, run StrategyRun, graph *market.Graph) (opps []domain.Opportunity, err error) {
	strat, ok := o.strategies[run.Strategy]
	if !ok {
		return nil, apperror.New(apperror.CodeStrategyFailed,
			apperror.WithContext(run.Strategy),
			apperror.WithMessage("unknown strategy"))
	}

	defer func() {
		if r := recover(); r != nil {
			err = apperror.New(apperror.CodeStrategyFailed,
				apperror.WithContext(run.Strategy),
				apperror.WithMessage(fmt.Sprintf("panic: %v", r)))
		}
	}()

	return strat.Run(ctx, run, graph)
}

// persistBest saves the cycle's top route for later replay runs.
func (o *Orchestrator) persistBest(ctx context.Context, ranked []domain.Opportunity) {
	if o.store == nil || len(ranked) == 0 {
		return
	}

	best := ranked[0]
	hops := make([]PersistedHop, 0, best.Path.Hops())
	for _, e := range best.Path.Edges {
		hops = append(hops, PersistedHop{Venue: e.Venue.Address, InputMint: e.From})
	}

	if err := o.store.SaveBestPath(ctx, PersistedPath{Hops: hops, AmountIn: best.Result.AmountIn}); err != nil {
		o.log.Warn(ctx, "failed to persist best path", "error", err)
	}
}

package app

import (
	"context"
	"math"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/fd1az/solarb/business/arbitrage/domain"
	market "github.com/fd1az/solarb/business/market/domain"
	pricing "github.com/fd1az/solarb/business/pricing/app"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/logger"
)

// SimulatorConfig holds path simulator configuration.
type SimulatorConfig struct {
	ConcurrencyLimit int64  // max concurrently simulated paths
	BatchSize        int    // paths admitted per batch in SimulateMany
	AmountBucket     uint64 // memo cache amount bucketing, 0 = exact
}

// PathResult pairs a path with its simulation outcome.
type PathResult struct {
	Path   domain.Path
	Result domain.SimulationResult
	Err    error
}

// Simulator pushes notional amounts through paths hop by hop. It memoizes
// per-generation results and bounds concurrent work with a semaphore.
type Simulator struct {
	cfg    SimulatorConfig
	quotes *pricing.QuoteService
	cache  *SimCache
	sem    *semaphore.Weighted
	log    logger.LoggerInterface

	tracer       trace.Tracer
	meter        metric.Meter
	simCounter   metric.Int64Counter
	cacheHits    metric.Int64Counter
	abortCounter metric.Int64Counter
}

// NewSimulator creates a simulator.
func NewSimulator(cfg SimulatorConfig, quotes *pricing.QuoteService, log logger.LoggerInterface) (*Simulator, error) {
	if cfg.ConcurrencyLimit <= 0 {
		cfg.ConcurrencyLimit = 8
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}

	s := &Simulator{
		cfg:    cfg,
		quotes: quotes,
		cache:  NewSimCache(cfg.AmountBucket),
		sem:    semaphore.NewWeighted(cfg.ConcurrencyLimit),
		log:    log,
		tracer: otel.Tracer("arbitrage.simulator"),
		meter:  otel.Meter("arbitrage.simulator"),
	}

	var err error
	if s.simCounter, err = s.meter.Int64Counter("simulations_total",
		metric.WithDescription("Number of path simulations")); err != nil {
		return nil, err
	}
	if s.cacheHits, err = s.meter.Int64Counter("simulation_cache_hits_total",
		metric.WithDescription("Simulations served from the memo cache")); err != nil {
		return nil, err
	}
	if s.abortCounter, err = s.meter.Int64Counter("simulations_aborted_total",
		metric.WithDescription("Simulations aborted mid-path")); err != nil {
		return nil, err
	}

	return s, nil
}

// Simulate pushes amountIn through every hop of path against snap. Any hop
// failure aborts the whole path; there are no partial results.
func (s *Simulator) Simulate(ctx context.Context, path domain.Path, amountIn uint64, snap *market.Snapshot) (domain.SimulationResult, error) {
	if err := path.Validate(); err != nil {
		return domain.SimulationResult{}, err
	}

	generation := snap.Generation()
	key := path.Key()

	if res, ok := s.cache.Get(key, amountIn, generation); ok {
		s.cacheHits.Add(ctx, 1)
		return res, nil
	}

	amount := amountIn
	hopAmounts := make([]uint64, 0, path.Hops())
	for _, e := range path.Edges {
		quote, err := s.quotes.Quote(ctx, e.Venue, e.From, amount)
		if err != nil {
			s.abortCounter.Add(ctx, 1)
			return domain.SimulationResult{}, apperror.Wrap(err, apperror.CodeSimulationAborted,
				apperror.WithContext(path.Symbols()))
		}
		amount = quote.AmountOut
		hopAmounts = append(hopAmounts, amount)
	}

	if amountIn > math.MaxInt64 || amount > math.MaxInt64 {
		return domain.SimulationResult{}, apperror.New(apperror.CodePriceOverflow,
			apperror.WithContext(path.Symbols()))
	}

	res := domain.SimulationResult{
		AmountIn:   amountIn,
		AmountOut:  amount,
		HopAmounts: hopAmounts,
		Profit:     int64(amount) - int64(amountIn),
		Generation: generation,
	}

	s.cache.Put(key, amountIn, res)
	s.simCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("profitable", res.Profitable())))

	return res, nil
}

// SimulateMany simulates paths in batches, at most ConcurrencyLimit at a
// time. Aborted paths come back with Err set; a cancelled context stops
// admitting new paths, waits for in-flight ones and returns what completed.
func (s *Simulator) SimulateMany(ctx context.Context, paths []domain.Path, amountIn uint64, snap *market.Snapshot) ([]PathResult, error) {
	ctx, span := s.tracer.Start(ctx, "simulator.simulate_many",
		trace.WithAttributes(attribute.Int("paths", len(paths))))
	defer span.End()

	results := make([]PathResult, len(paths))
	for i := range paths {
		results[i].Path = paths[i]
	}

	for start := 0; start < len(paths); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(paths))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			if err := s.sem.Acquire(ctx, 1); err != nil {
				wg.Wait()
				return results, err
			}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer s.sem.Release(1)
				results[i].Result, results[i].Err = s.Simulate(ctx, paths[i], amountIn, snap)
			}(i)
		}
		wg.Wait()
	}

	return results, nil
}

// CacheLen exposes the memo cache size for observability.
func (s *Simulator) CacheLen() int { return s.cache.Len() }

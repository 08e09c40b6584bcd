package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/logger"
)

// RegistryConfig holds venue registry configuration.
type RegistryConfig struct {
	// TTL is how long a published snapshot stays fresh. Non-forced refreshes
	// inside the TTL return the published snapshot without touching sources.
	TTL time.Duration
}

// refreshCall is one in-flight refresh shared by concurrent callers.
type refreshCall struct {
	done chan struct{}
	snap *domain.Snapshot
	err  error
}

// Registry owns the venue set. It publishes immutable, generation-versioned
// snapshots and coalesces concurrent refreshes into a single upstream fetch.
type Registry struct {
	sources []VenueSource
	cfg     RegistryConfig
	log     logger.LoggerInterface

	published atomic.Pointer[domain.Snapshot]

	mu          sync.Mutex // guards inflight and lastRefresh
	inflight    *refreshCall
	lastRefresh time.Time

	tracer         trace.Tracer
	meter          metric.Meter
	refreshCounter metric.Int64Counter
	sourceErrors   metric.Int64Counter
	venueCount     metric.Int64Gauge
	refreshLatency metric.Float64Histogram
}

// NewRegistry creates a registry over the given sources. Source registration
// order is preserved: it decides venue order inside every snapshot.
func NewRegistry(cfg RegistryConfig, log logger.LoggerInterface, sources ...VenueSource) (*Registry, error) {
	r := &Registry{
		sources: sources,
		cfg:     cfg,
		log:     log,
		tracer:  otel.Tracer("market.registry"),
		meter:   otel.Meter("market.registry"),
	}

	r.published.Store(domain.NewSnapshot(0, nil))

	if err := r.initMetrics(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigurationError,
			apperror.WithContext("registry metrics"))
	}

	return r, nil
}

func (r *Registry) initMetrics() error {
	var err error

	r.refreshCounter, err = r.meter.Int64Counter("registry_refresh_total",
		metric.WithDescription("Number of registry refresh attempts"))
	if err != nil {
		return err
	}

	r.sourceErrors, err = r.meter.Int64Counter("registry_source_errors_total",
		metric.WithDescription("Number of venue source failures"))
	if err != nil {
		return err
	}

	r.venueCount, err = r.meter.Int64Gauge("registry_venues",
		metric.WithDescription("Venues in the published snapshot"))
	if err != nil {
		return err
	}

	r.refreshLatency, err = r.meter.Float64Histogram("registry_refresh_duration_seconds",
		metric.WithDescription("Registry refresh latency in seconds"))
	if err != nil {
		return err
	}

	return nil
}

// Snapshot returns the currently published snapshot. Never nil; before the
// first successful refresh it is the empty generation-zero snapshot.
func (r *Registry) Snapshot() *domain.Snapshot {
	return r.published.Load()
}

// Refresh refreshes the venue set and returns the resulting snapshot.
//
// Non-forced calls inside the TTL window return the published snapshot
// immediately. When a refresh is already in flight, callers block on that
// refresh and share its result instead of starting another one. The published
// snapshot is replaced atomically only after the new one is fully built;
// concurrent readers always see a complete snapshot.
func (r *Registry) Refresh(ctx context.Context, force bool) (*domain.Snapshot, error) {
	ctx, span := r.tracer.Start(ctx, "registry.refresh",
		trace.WithAttributes(attribute.Bool("force", force)))
	defer span.End()

	r.mu.Lock()

	if !force && !r.lastRefresh.IsZero() && time.Since(r.lastRefresh) < r.cfg.TTL {
		r.mu.Unlock()
		span.SetAttributes(attribute.Bool("fresh", true))
		return r.published.Load(), nil
	}

	if call := r.inflight; call != nil {
		r.mu.Unlock()
		select {
		case <-call.done:
			return call.snap, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &refreshCall{done: make(chan struct{})}
	r.inflight = call
	r.mu.Unlock()

	call.snap, call.err = r.doRefresh(ctx)

	r.mu.Lock()
	r.inflight = nil
	if call.err == nil {
		r.lastRefresh = time.Now()
	}
	r.mu.Unlock()

	close(call.done)

	return call.snap, call.err
}

// doRefresh fans out to every source and assembles the next snapshot. A
// failed source keeps its venues from the previous snapshot so one flaky
// protocol cannot blank out the rest of the market.
func (r *Registry) doRefresh(ctx context.Context) (*domain.Snapshot, error) {
	start := time.Now()
	prev := r.published.Load()

	type sourceResult struct {
		venues []domain.Venue
		err    error
	}

	results := make([]sourceResult, len(r.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range r.sources {
		g.Go(func() error {
			venues, err := src.FetchVenues(gctx)
			if err != nil {
				r.sourceErrors.Add(ctx, 1,
					metric.WithAttributes(attribute.String("kind", string(src.Kind()))))
				r.log.Warn(ctx, "venue source failed",
					"kind", src.Kind(), "error", err)
				results[i] = sourceResult{err: err}
				return nil
			}
			results[i] = sourceResult{venues: venues}
			return nil
		})
	}
	_ = g.Wait()

	failures := 0
	var venues []domain.Venue
	for i, src := range r.sources {
		res := results[i]
		if res.err != nil {
			failures++
			// Carry over the failed source's venues from the previous snapshot.
			for _, v := range prev.Venues() {
				if v.Kind == src.Kind() {
					venues = append(venues, v)
				}
			}
			continue
		}
		venues = append(venues, res.venues...)
	}

	if failures == len(r.sources) && len(r.sources) > 0 {
		r.refreshCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", false)))
		return nil, apperror.New(apperror.CodeAllSourcesFailed,
			apperror.WithContext("registry refresh"))
	}

	snap := domain.NewSnapshot(prev.Generation()+1, venues)
	r.published.Store(snap)

	elapsed := time.Since(start)
	r.refreshCounter.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", true)))
	r.venueCount.Record(ctx, int64(snap.Len()))
	r.refreshLatency.Record(ctx, elapsed.Seconds())

	r.log.Info(ctx, "registry refreshed",
		"generation", snap.Generation(),
		"venues", snap.Len(),
		"failed_sources", failures,
		"duration", elapsed.String())

	return snap, nil
}

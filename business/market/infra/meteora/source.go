// Package meteora fetches venue data from the Meteora DLMM public API.
package meteora

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/circuitbreaker"
	"github.com/fd1az/solarb/internal/httpclient"
	"github.com/fd1az/solarb/internal/logger"
	"github.com/fd1az/solarb/internal/ratelimit"
)

// Config holds Meteora source configuration.
type Config struct {
	BaseURL           string
	RequestsPerMinute int
	Timeout           time.Duration
}

// DefaultConfig returns the production endpoint configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://dlmm-api.meteora.ag",
		RequestsPerMinute: 30,
		Timeout:           10 * time.Second,
	}
}

// The DLMM API uses snake_case and encodes reserves as decimal strings.
type dlmmPair struct {
	Address           string `json:"address"`
	Name              string `json:"name"`
	MintX             string `json:"mint_x"`
	MintY             string `json:"mint_y"`
	SymbolX           string `json:"symbol_x"`
	SymbolY           string `json:"symbol_y"`
	DecimalsX         uint8  `json:"decimals_x"`
	DecimalsY         uint8  `json:"decimals_y"`
	ReserveX          string `json:"reserve_x"`
	ReserveY          string `json:"reserve_y"`
	BinStep           uint16 `json:"bin_step"`
	ActiveID          int32  `json:"active_id"`
	BaseFeePercentage string `json:"base_fee_percentage"`
}

// Source serves Meteora DLMM venues.
type Source struct {
	cfg     Config
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[[]domain.Venue]
	log     logger.LoggerInterface
	tracer  trace.Tracer
}

// NewSource creates the Meteora venue source.
func NewSource(cfg Config, log logger.LoggerInterface) (*Source, error) {
	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("meteora"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigurationError,
			apperror.WithContext("meteora http client"))
	}

	return &Source{
		cfg:     cfg,
		client:  client,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[[]domain.Venue](circuitbreaker.DefaultConfig("meteora")),
		log:     log,
		tracer:  otel.Tracer("market.source.meteora"),
	}, nil
}

// Kind implements app.VenueSource.
func (s *Source) Kind() domain.VenueKind { return domain.KindMeteoraDLMM }

// FetchVenues implements app.VenueSource.
func (s *Source) FetchVenues(ctx context.Context) ([]domain.Venue, error) {
	ctx, span := s.tracer.Start(ctx, "meteora.fetch_pairs")
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	venues, err := s.breaker.Execute(func() ([]domain.Venue, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeVenueSourceError,
			apperror.WithContext("meteora dlmm"))
	}

	span.SetAttributes(attribute.Int("venues", len(venues)))
	return venues, nil
}

func (s *Source) fetch(ctx context.Context) ([]domain.Venue, error) {
	var pairs []dlmmPair
	resp, err := s.client.NewRequest().
		SetResult(&pairs).
		Get(ctx, "/pair/all")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.CodeExternalServiceError,
			apperror.WithContext(resp.Status))
	}

	now := time.Now()
	venues := make([]domain.Venue, 0, len(pairs))
	for _, p := range pairs {
		reserveX, err := strconv.ParseUint(p.ReserveX, 10, 64)
		if err != nil || reserveX == 0 {
			continue
		}
		reserveY, err := strconv.ParseUint(p.ReserveY, 10, 64)
		if err != nil || reserveY == 0 {
			continue
		}
		feePct, err := strconv.ParseFloat(p.BaseFeePercentage, 64)
		if err != nil {
			continue
		}

		venues = append(venues, domain.Venue{
			Address: p.Address,
			Kind:    domain.KindMeteoraDLMM,
			Base:    domain.Instrument{Address: p.MintX, Symbol: p.SymbolX, Decimals: p.DecimalsX},
			Quote:   domain.Instrument{Address: p.MintY, Symbol: p.SymbolY, Decimals: p.DecimalsY},
			FeeBps:  uint32(feePct * 100),
			State: domain.BinState{
				ActiveBin:    p.ActiveID,
				BinStep:      p.BinStep,
				BaseReserve:  reserveX,
				QuoteReserve: reserveY,
			},
			UpdatedAt: now,
		})
	}

	return venues, nil
}

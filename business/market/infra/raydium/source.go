// Package raydium fetches venue data from the Raydium public API.
package raydium

import (
	"context"
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

// Config holds Raydium source configuration.
type Config struct {
	BaseURL           string
	RequestsPerMinute int
	Timeout           time.Duration
}

// DefaultConfig returns the production endpoint configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.raydium.io",
		RequestsPerMinute: 30,
		Timeout:           10 * time.Second,
	}
}

type ammPool struct {
	ID            string  `json:"id"`
	BaseMint      string  `json:"baseMint"`
	QuoteMint     string  `json:"quoteMint"`
	BaseSymbol    string  `json:"baseSymbol"`
	QuoteSymbol   string  `json:"quoteSymbol"`
	BaseDecimals  uint8   `json:"baseDecimals"`
	QuoteDecimals uint8   `json:"quoteDecimals"`
	BaseReserve   uint64  `json:"baseReserve"`
	QuoteReserve  uint64  `json:"quoteReserve"`
	FeeRate       float64 `json:"feeRate"` // fraction, e.g. 0.0025
}

type ammResponse struct {
	Data []ammPool `json:"data"`
}

// AMMSource serves Raydium constant-product pools.
type AMMSource struct {
	cfg     Config
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[[]domain.Venue]
	log     logger.LoggerInterface
	tracer  trace.Tracer
}

// NewAMMSource creates the Raydium AMM venue source.
func NewAMMSource(cfg Config, log logger.LoggerInterface) (*AMMSource, error) {
	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("raydium"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigurationError,
			apperror.WithContext("raydium http client"))
	}

	return &AMMSource{
		cfg:     cfg,
		client:  client,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[[]domain.Venue](circuitbreaker.DefaultConfig("raydium-amm")),
		log:     log,
		tracer:  otel.Tracer("market.source.raydium"),
	}, nil
}

// Kind implements app.VenueSource.
func (s *AMMSource) Kind() domain.VenueKind { return domain.KindRaydiumAMM }

// FetchVenues implements app.VenueSource.
func (s *AMMSource) FetchVenues(ctx context.Context) ([]domain.Venue, error) {
	ctx, span := s.tracer.Start(ctx, "raydium.fetch_amm_pools")
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	venues, err := s.breaker.Execute(func() ([]domain.Venue, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeVenueSourceError,
			apperror.WithContext("raydium amm"))
	}

	span.SetAttributes(attribute.Int("venues", len(venues)))
	return venues, nil
}

func (s *AMMSource) fetch(ctx context.Context) ([]domain.Venue, error) {
	var payload ammResponse
	resp, err := s.client.NewRequest().
		SetResult(&payload).
		Get(ctx, "/v2/main/pairs")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.CodeExternalServiceError,
			apperror.WithContext(resp.Status))
	}

	now := time.Now()
	venues := make([]domain.Venue, 0, len(payload.Data))
	for _, p := range payload.Data {
		if p.BaseReserve == 0 || p.QuoteReserve == 0 {
			continue // empty pools cannot price anything
		}
		venues = append(venues, domain.Venue{
			Address: p.ID,
			Kind:    domain.KindRaydiumAMM,
			Base:    domain.Instrument{Address: p.BaseMint, Symbol: p.BaseSymbol, Decimals: p.BaseDecimals},
			Quote:   domain.Instrument{Address: p.QuoteMint, Symbol: p.QuoteSymbol, Decimals: p.QuoteDecimals},
			FeeBps:  uint32(p.FeeRate * 10_000),
			State: domain.ReserveState{
				BaseReserve:  p.BaseReserve,
				QuoteReserve: p.QuoteReserve,
			},
			UpdatedAt: now,
		})
	}

	return venues, nil
}

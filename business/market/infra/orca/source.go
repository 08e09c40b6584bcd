// Package orca fetches venue data from the Orca Whirlpools public API.
package orca

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

// Config holds Orca source configuration.
type Config struct {
	BaseURL           string
	RequestsPerMinute int
	Timeout           time.Duration
}

// DefaultConfig returns the production endpoint configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.mainnet.orca.so",
		RequestsPerMinute: 30,
		Timeout:           10 * time.Second,
	}
}

type whirlpoolToken struct {
	Mint     string `json:"mint"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

type whirlpool struct {
	Address          string         `json:"address"`
	TokenA           whirlpoolToken `json:"tokenA"`
	TokenB           whirlpoolToken `json:"tokenB"`
	Liquidity        string         `json:"liquidity"`
	SqrtPrice        string         `json:"sqrtPrice"`
	TickSpacing      uint16         `json:"tickSpacing"`
	TickCurrentIndex int32          `json:"tickCurrentIndex"`
	LpFeeRate        float64        `json:"lpFeeRate"`
}

type whirlpoolList struct {
	Whirlpools []whirlpool `json:"whirlpools"`
}

// Source serves Orca whirlpool venues.
type Source struct {
	cfg     Config
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[[]domain.Venue]
	log     logger.LoggerInterface
	tracer  trace.Tracer
}

// NewSource creates the Orca venue source.
func NewSource(cfg Config, log logger.LoggerInterface) (*Source, error) {
	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("orca"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigurationError,
			apperror.WithContext("orca http client"))
	}

	return &Source{
		cfg:     cfg,
		client:  client,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[[]domain.Venue](circuitbreaker.DefaultConfig("orca")),
		log:     log,
		tracer:  otel.Tracer("market.source.orca"),
	}, nil
}

// Kind implements app.VenueSource.
func (s *Source) Kind() domain.VenueKind { return domain.KindOrcaWhirlpool }

// FetchVenues implements app.VenueSource.
func (s *Source) FetchVenues(ctx context.Context) ([]domain.Venue, error) {
	ctx, span := s.tracer.Start(ctx, "orca.fetch_whirlpools")
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	venues, err := s.breaker.Execute(func() ([]domain.Venue, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeVenueSourceError,
			apperror.WithContext("orca whirlpools"))
	}

	span.SetAttributes(attribute.Int("venues", len(venues)))
	return venues, nil
}

func (s *Source) fetch(ctx context.Context) ([]domain.Venue, error) {
	var payload whirlpoolList
	resp, err := s.client.NewRequest().
		SetResult(&payload).
		Get(ctx, "/v1/whirlpool/list")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.CodeExternalServiceError,
			apperror.WithContext(resp.Status))
	}

	now := time.Now()
	venues := make([]domain.Venue, 0, len(payload.Whirlpools))
	for _, w := range payload.Whirlpools {
		liquidity, err := strconv.ParseUint(w.Liquidity, 10, 64)
		if err != nil || liquidity == 0 {
			continue
		}
		sqrtPrice, err := strconv.ParseUint(w.SqrtPrice, 10, 64)
		if err != nil || sqrtPrice == 0 {
			continue
		}

		venues = append(venues, domain.Venue{
			Address: w.Address,
			Kind:    domain.KindOrcaWhirlpool,
			Base:    domain.Instrument{Address: w.TokenA.Mint, Symbol: w.TokenA.Symbol, Decimals: w.TokenA.Decimals},
			Quote:   domain.Instrument{Address: w.TokenB.Mint, Symbol: w.TokenB.Symbol, Decimals: w.TokenB.Decimals},
			FeeBps:  uint32(w.LpFeeRate * 10_000),
			State: domain.ConcentratedState{
				Liquidity:    liquidity,
				SqrtPriceQ32: sqrtPrice,
				TickSpacing:  w.TickSpacing,
				CurrentTick:  w.TickCurrentIndex,
			},
			UpdatedAt: now,
		})
	}

	return venues, nil
}

package raydium

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

type clmmPool struct {
	ID            string  `json:"id"`
	MintA         string  `json:"mintA"`
	MintB         string  `json:"mintB"`
	SymbolA       string  `json:"symbolA"`
	SymbolB       string  `json:"symbolB"`
	DecimalsA     uint8   `json:"decimalsA"`
	DecimalsB     uint8   `json:"decimalsB"`
	Liquidity     string  `json:"liquidity"` // u64 as decimal string
	SqrtPriceQ32  string  `json:"sqrtPrice"`
	TickSpacing   uint16  `json:"tickSpacing"`
	TickCurrent   int32   `json:"tickCurrent"`
	FeeRate       float64 `json:"feeRate"`
}

type clmmResponse struct {
	Data []clmmPool `json:"data"`
}

// CLMMSource serves Raydium concentrated-liquidity pools.
type CLMMSource struct {
	cfg     Config
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[[]domain.Venue]
	log     logger.LoggerInterface
	tracer  trace.Tracer
}

// NewCLMMSource creates the Raydium CLMM venue source.
func NewCLMMSource(cfg Config, log logger.LoggerInterface) (*CLMMSource, error) {
	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("raydium-clmm"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigurationError,
			apperror.WithContext("raydium clmm http client"))
	}

	return &CLMMSource{
		cfg:     cfg,
		client:  client,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[[]domain.Venue](circuitbreaker.DefaultConfig("raydium-clmm")),
		log:     log,
		tracer:  otel.Tracer("market.source.raydium_clmm"),
	}, nil
}

// Kind implements app.VenueSource.
func (s *CLMMSource) Kind() domain.VenueKind { return domain.KindRaydiumCLMM }

// FetchVenues implements app.VenueSource.
func (s *CLMMSource) FetchVenues(ctx context.Context) ([]domain.Venue, error) {
	ctx, span := s.tracer.Start(ctx, "raydium.fetch_clmm_pools")
	defer span.End()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	venues, err := s.breaker.Execute(func() ([]domain.Venue, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeVenueSourceError,
			apperror.WithContext("raydium clmm"))
	}

	span.SetAttributes(attribute.Int("venues", len(venues)))
	return venues, nil
}

func (s *CLMMSource) fetch(ctx context.Context) ([]domain.Venue, error) {
	var payload clmmResponse
	resp, err := s.client.NewRequest().
		SetResult(&payload).
		Get(ctx, "/clmm/pools")
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
		liquidity, err := strconv.ParseUint(p.Liquidity, 10, 64)
		if err != nil || liquidity == 0 {
			continue
		}
		sqrtPrice, err := strconv.ParseUint(p.SqrtPriceQ32, 10, 64)
		if err != nil || sqrtPrice == 0 {
			continue
		}

		venues = append(venues, domain.Venue{
			Address: p.ID,
			Kind:    domain.KindRaydiumCLMM,
			Base:    domain.Instrument{Address: p.MintA, Symbol: p.SymbolA, Decimals: p.DecimalsA},
			Quote:   domain.Instrument{Address: p.MintB, Symbol: p.SymbolB, Decimals: p.DecimalsB},
			FeeBps:  uint32(p.FeeRate * 10_000),
			State: domain.ConcentratedState{
				Liquidity:    liquidity,
				SqrtPriceQ32: sqrtPrice,
				TickSpacing:  p.TickSpacing,
				CurrentTick:  p.TickCurrent,
			},
			UpdatedAt: now,
		})
	}

	return venues, nil
}

// Package rpc submits admitted opportunities to a transaction relay.
package rpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	arbitrage "github.com/fd1az/solarb/business/arbitrage/domain"
	"github.com/fd1az/solarb/business/execution/domain"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/httpclient"
	"github.com/fd1az/solarb/internal/logger"
)

// Config holds executor configuration.
type Config struct {
	SubmitURL string
	Mode      domain.Mode
	Timeout   time.Duration
}

// DefaultConfig returns executor defaults for the given mode.
func DefaultConfig(mode domain.Mode) Config {
	return Config{
		Mode:    mode,
		Timeout: 15 * time.Second,
	}
}

// Executor submits trades to an HTTP relay in live mode and fakes receipts
// in simulate and paper modes.
type Executor struct {
	cfg    Config
	client httpclient.Client
	log    logger.LoggerInterface
	tracer trace.Tracer
}

type routeHop struct {
	Venue     string `json:"venue"`
	Kind      string `json:"kind"`
	InputMint string `json:"input_mint"`
}

type submitRequest struct {
	Route              []routeHop `json:"route"`
	AmountIn           uint64     `json:"amount_in"`
	MinAmountOut       uint64     `json:"min_amount_out"`
	PriorityFeePerCU   uint64     `json:"priority_fee_per_cu"`
	ClientOpportunity  string     `json:"client_opportunity_id"`
	DiscoveryTimestamp int64      `json:"discovered_at_unix_ms"`
}

type submitResponse struct {
	Signature string `json:"signature"`
	Error     string `json:"error,omitempty"`
}

// NewExecutor creates an executor. SubmitURL is only required in live mode.
func NewExecutor(cfg Config, log logger.LoggerInterface) (*Executor, error) {
	if cfg.Mode == domain.ModeLive && cfg.SubmitURL == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("live mode requires a submit URL"))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("trade-relay"),
		httpclient.WithBaseURL(cfg.SubmitURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigurationError,
			apperror.WithContext("relay http client"))
	}

	return &Executor{
		cfg:    cfg,
		client: client,
		log:    log,
		tracer: otel.Tracer("execution.rpc"),
	}, nil
}

// Execute submits opp. In simulate and paper modes no request leaves the
// process; the receipt carries a synthetic signature.
func (e *Executor) Execute(ctx context.Context, opp arbitrage.Opportunity, fee domain.PriorityFee) (domain.Receipt, error) {
	ctx, span := e.tracer.Start(ctx, "executor.execute",
		trace.WithAttributes(attribute.String("mode", string(e.cfg.Mode))))
	defer span.End()

	start := time.Now()

	switch e.cfg.Mode {
	case domain.ModeSimulate:
		return e.receipt("sim-"+uuid.NewString(), start), nil

	case domain.ModePaper:
		e.log.Info(ctx, "paper trade",
			"path", opp.Path.Symbols(),
			"amount_in", opp.Result.AmountIn,
			"expected_out", opp.Result.AmountOut,
			"priority_fee_per_cu", fee.MicroLamportsPerCU)
		return e.receipt("paper-"+uuid.NewString(), start), nil
	}

	req := e.buildRequest(opp, fee)

	var result submitResponse
	resp, err := e.client.NewRequest().
		SetBody(req).
		SetResult(&result).
		Post(ctx, "/submit")
	if err != nil {
		return domain.Receipt{}, apperror.Wrap(err, apperror.CodeExecutionFailed,
			apperror.WithContext("relay submit"))
	}
	if resp.IsError() || result.Error != "" {
		return domain.Receipt{}, apperror.New(apperror.CodeExecutionFailed,
			apperror.WithContext("relay status "+resp.Status),
			apperror.WithMessage(result.Error))
	}

	return e.receipt(result.Signature, start), nil
}

func (e *Executor) buildRequest(opp arbitrage.Opportunity, fee domain.PriorityFee) submitRequest {
	route := make([]routeHop, 0, opp.Path.Hops())
	for _, hop := range opp.Path.Edges {
		route = append(route, routeHop{
			Venue:     hop.Venue.Address,
			Kind:      string(hop.Venue.Kind),
			InputMint: hop.From,
		})
	}
	return submitRequest{
		Route:              route,
		AmountIn:           opp.Result.AmountIn,
		MinAmountOut:       opp.Result.AmountIn, // break even or revert
		PriorityFeePerCU:   fee.MicroLamportsPerCU,
		ClientOpportunity:  opp.ID,
		DiscoveryTimestamp: opp.DiscoveredAt.UnixMilli(),
	}
}

func (e *Executor) receipt(signature string, start time.Time) domain.Receipt {
	return domain.Receipt{
		Signature:   signature,
		Mode:        e.cfg.Mode,
		SubmittedAt: start,
		Latency:     time.Since(start),
	}
}

// Package fees estimates priority fees from recent on-chain fee samples.
package fees

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solarb/business/execution/domain"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/cache"
	"github.com/fd1az/solarb/internal/circuitbreaker"
	"github.com/fd1az/solarb/internal/httpclient"
	"github.com/fd1az/solarb/internal/logger"
)

// Config holds fee estimator configuration.
type Config struct {
	RPCURL   string
	Strategy domain.FeeStrategy
	TTL      time.Duration // sample cache lifetime
	Timeout  time.Duration
	MinFee   uint64 // floor applied to every estimate, micro-lamports per CU
	MaxFee   uint64 // cap applied to every estimate, micro-lamports per CU
}

// DefaultConfig returns estimator defaults against a public RPC node.
func DefaultConfig() Config {
	return Config{
		RPCURL:   "https://api.mainnet-beta.solana.com",
		Strategy: domain.FeeConservative,
		TTL:      10 * time.Second,
		Timeout:  5 * time.Second,
		MinFee:   1_000,
		MaxFee:   2_000_000,
	}
}

// Estimator samples recent prioritization fees over JSON-RPC and derives a
// per-CU price from a percentile chosen by the configured strategy.
type Estimator struct {
	cfg     Config
	client  httpclient.Client
	samples *cache.Cache[string, []uint64]
	breaker *circuitbreaker.CircuitBreaker[[]uint64]
	log     logger.LoggerInterface
	tracer  trace.Tracer
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type feeSample struct {
	Slot              uint64 `json:"slot"`
	PrioritizationFee uint64 `json:"prioritizationFee"`
}

type rpcResponse struct {
	Result []feeSample `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

const sampleKey = "recent"

// NewEstimator creates a fee estimator.
func NewEstimator(cfg Config, log logger.LoggerInterface) (*Estimator, error) {
	def := DefaultConfig()
	if cfg.RPCURL == "" {
		cfg.RPCURL = def.RPCURL
	}
	if cfg.Strategy == "" {
		cfg.Strategy = def.Strategy
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxFee == 0 {
		cfg.MaxFee = def.MaxFee
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("fee-rpc"),
		httpclient.WithBaseURL(cfg.RPCURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigurationError,
			apperror.WithContext("fee rpc http client"))
	}

	return &Estimator{
		cfg:     cfg,
		client:  client,
		samples: cache.New[string, []uint64](cfg.TTL),
		breaker: circuitbreaker.New[[]uint64](circuitbreaker.DefaultConfig("fee-rpc")),
		log:     log,
		tracer:  otel.Tracer("execution.fees"),
	}, nil
}

// Estimate derives a priority fee. Conservative bids the median sample,
// aggressive the 95th percentile, profit-based scales between the two with
// the expected profit.
func (e *Estimator) Estimate(ctx context.Context, profitLamports int64) (domain.PriorityFee, error) {
	ctx, span := e.tracer.Start(ctx, "fees.estimate")
	defer span.End()

	sorted, err := e.recentFees(ctx)
	if err != nil {
		return domain.PriorityFee{}, err
	}

	var fee uint64
	switch e.cfg.Strategy {
	case domain.FeeAggressive:
		fee = percentile(sorted, 95)
	case domain.FeeProfitBased:
		fee = e.profitScaled(sorted, profitLamports)
	default:
		fee = percentile(sorted, 50)
	}

	fee = max(fee, e.cfg.MinFee)
	fee = min(fee, e.cfg.MaxFee)

	return domain.PriorityFee{
		MicroLamportsPerCU: fee,
		Strategy:           e.cfg.Strategy,
		SampledAt:          time.Now(),
	}, nil
}

// profitScaled interpolates between p50 and p90: small edges bid the median,
// anything above one lamport of profit per thousand in bids near the top.
func (e *Estimator) profitScaled(sorted []uint64, profitLamports int64) uint64 {
	low := percentile(sorted, 50)
	high := percentile(sorted, 90)
	if profitLamports <= 0 || high <= low {
		return low
	}

	// Saturates at 100_000 lamports of expected profit.
	scale := uint64(profitLamports)
	if scale > 100_000 {
		scale = 100_000
	}
	return low + (high-low)*scale/100_000
}

func (e *Estimator) recentFees(ctx context.Context) ([]uint64, error) {
	if cached, ok := e.samples.Get(ctx, sampleKey); ok {
		return cached, nil
	}

	sorted, err := e.breaker.Execute(func() ([]uint64, error) {
		return e.fetch(ctx)
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeFeeEstimateFailed,
			apperror.WithContext("getRecentPrioritizationFees"))
	}

	e.samples.Set(ctx, sampleKey, sorted, e.cfg.TTL)
	return sorted, nil
}

func (e *Estimator) fetch(ctx context.Context) ([]uint64, error) {
	var result rpcResponse
	resp, err := e.client.NewRequest().
		SetBody(rpcRequest{
			JSONRPC: "2.0",
			ID:      1,
			Method:  "getRecentPrioritizationFees",
			Params:  []any{},
		}).
		SetResult(&result).
		Post(ctx, "")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.CodeRPCError,
			apperror.WithContext("status "+resp.Status))
	}
	if result.Error != nil {
		return nil, apperror.New(apperror.CodeRPCError,
			apperror.WithContext(result.Error.Message))
	}
	if len(result.Result) == 0 {
		return nil, apperror.New(apperror.CodeRPCError,
			apperror.WithContext("empty fee sample"))
	}

	fees := make([]uint64, 0, len(result.Result))
	for _, s := range result.Result {
		fees = append(fees, s.PrioritizationFee)
	}
	slices.Sort(fees)
	return fees, nil
}

// percentile returns the pth percentile of sorted using nearest-rank.
func percentile(sorted []uint64, p int) uint64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (len(sorted)*p + 99) / 100
	if idx > 0 {
		idx--
	}
	return sorted[idx]
}

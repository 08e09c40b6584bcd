// Package clmm prices swaps through concentrated-liquidity pools.
//
// The model is a single-range approximation: the swap executes entirely at
// the current sqrt price, and the pool's liquidity figure bounds how much
// output the active range can provide. Swaps that would exhaust the range are
// rejected as insufficient liquidity rather than crossing ticks.
package clmm

import (
	"math/big"

	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/business/pricing/domain"
	"github.com/fd1az/solarb/internal/apperror"
)

const bpsDenominator = 10_000

// q64 = 2^64, the denominator of a squared Q32.32 sqrt price.
var q64 = new(big.Int).Lsh(big.NewInt(1), 64)

// Quoter prices concentrated-liquidity pools. Both Raydium CLMM and Orca
// whirlpools share the state shape, so the venue kind is a parameter.
type Quoter struct {
	kind market.VenueKind
}

// NewQuoter creates a concentrated-liquidity quoter for kind.
func NewQuoter(kind market.VenueKind) *Quoter {
	return &Quoter{kind: kind}
}

// Kind implements app.Quoter.
func (q *Quoter) Kind() market.VenueKind { return q.kind }

// Quote implements app.Quoter.
func (q *Quoter) Quote(venue *market.Venue, inputMint string, amountIn uint64) (domain.Quote, error) {
	state, ok := venue.State.(market.ConcentratedState)
	if !ok {
		return domain.Quote{}, apperror.New(apperror.CodeInvalidState,
			apperror.WithContext(venue.Address))
	}

	out, ok := venue.Other(inputMint)
	if !ok {
		return domain.Quote{}, apperror.New(apperror.CodeInstrumentNotFound,
			apperror.WithContext(inputMint))
	}

	if amountIn == 0 || state.SqrtPriceQ32 == 0 || state.Liquidity == 0 {
		return domain.Quote{}, apperror.New(apperror.CodeInsufficientLiquidity,
			apperror.WithContext(venue.Address))
	}
	if venue.FeeBps >= bpsDenominator {
		return domain.Quote{}, apperror.New(apperror.CodeInvalidState,
			apperror.WithContext(venue.Address))
	}

	// price = sqrtPrice^2 / 2^64, quote minor units per base minor unit.
	priceNum := new(big.Int).Mul(
		new(big.Int).SetUint64(state.SqrtPriceQ32),
		new(big.Int).SetUint64(state.SqrtPriceQ32),
	)

	inAfterFee := new(big.Int).Mul(
		new(big.Int).SetUint64(amountIn),
		big.NewInt(int64(bpsDenominator-venue.FeeBps)),
	)

	var numerator, denominator *big.Int
	if inputMint == venue.Base.Address {
		// base -> quote: out = inAfterFee * price
		numerator = new(big.Int).Mul(inAfterFee, priceNum)
		denominator = new(big.Int).Mul(big.NewInt(bpsDenominator), q64)
	} else {
		// quote -> base: out = inAfterFee / price
		numerator = new(big.Int).Mul(inAfterFee, q64)
		denominator = new(big.Int).Mul(big.NewInt(bpsDenominator), priceNum)
	}

	outBig := new(big.Int).Quo(numerator, denominator)
	if !outBig.IsUint64() {
		return domain.Quote{}, apperror.New(apperror.CodePriceOverflow,
			apperror.WithContext(venue.Address))
	}

	amountOut := outBig.Uint64()
	if amountOut == 0 {
		return domain.Quote{}, apperror.New(apperror.CodeInsufficientLiquidity,
			apperror.WithContext(venue.Address))
	}
	// The active range cannot provide more output than its liquidity depth.
	if amountOut > state.Liquidity {
		return domain.Quote{}, apperror.New(apperror.CodeInsufficientLiquidity,
			apperror.WithContext(venue.Address))
	}

	return domain.Quote{
		Venue:      venue.Address,
		InputMint:  inputMint,
		OutputMint: out.Address,
		AmountIn:   amountIn,
		AmountOut:  amountOut,
		FeeBps:     venue.FeeBps,
	}, nil
}

// Package cpmm prices swaps through constant-product pools.
package cpmm

import (
	"math/big"

	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/business/pricing/domain"
	"github.com/fd1az/solarb/internal/apperror"
)

const bpsDenominator = 10_000

// Quoter prices x*y=k pools. The fee is taken from the input amount, matching
// on-chain swap programs.
type Quoter struct {
	kind market.VenueKind
}

// NewQuoter creates a constant-product quoter for kind.
func NewQuoter(kind market.VenueKind) *Quoter {
	return &Quoter{kind: kind}
}

// Kind implements app.Quoter.
func (q *Quoter) Kind() market.VenueKind { return q.kind }

// Quote implements app.Quoter.
func (q *Quoter) Quote(venue *market.Venue, inputMint string, amountIn uint64) (domain.Quote, error) {
	state, ok := venue.State.(market.ReserveState)
	if !ok {
		return domain.Quote{}, apperror.New(apperror.CodeInvalidState,
			apperror.WithContext(venue.Address))
	}

	out, ok := venue.Other(inputMint)
	if !ok {
		return domain.Quote{}, apperror.New(apperror.CodeInstrumentNotFound,
			apperror.WithContext(inputMint))
	}

	var reserveIn, reserveOut uint64
	if inputMint == venue.Base.Address {
		reserveIn, reserveOut = state.BaseReserve, state.QuoteReserve
	} else {
		reserveIn, reserveOut = state.QuoteReserve, state.BaseReserve
	}

	amountOut, err := swapOutput(amountIn, reserveIn, reserveOut, venue.FeeBps)
	if err != nil {
		return domain.Quote{}, err
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

// swapOutput computes the x*y=k output with the fee applied to the input.
// Intermediate products can exceed 64 bits, so the arithmetic runs in big.Int.
func swapOutput(amountIn, reserveIn, reserveOut uint64, feeBps uint32) (uint64, error) {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0, apperror.New(apperror.CodeInsufficientLiquidity)
	}
	if feeBps >= bpsDenominator {
		return 0, apperror.New(apperror.CodeInvalidState)
	}

	// out = (in * (10000-fee) * reserveOut) / (reserveIn * 10000 + in * (10000-fee))
	inAfterFee := new(big.Int).Mul(
		new(big.Int).SetUint64(amountIn),
		big.NewInt(int64(bpsDenominator-feeBps)),
	)

	numerator := new(big.Int).Mul(inAfterFee, new(big.Int).SetUint64(reserveOut))
	denominator := new(big.Int).Add(
		new(big.Int).Mul(new(big.Int).SetUint64(reserveIn), big.NewInt(bpsDenominator)),
		inAfterFee,
	)

	out := new(big.Int).Quo(numerator, denominator)
	if !out.IsUint64() {
		return 0, apperror.New(apperror.CodePriceOverflow)
	}

	amountOut := out.Uint64()
	if amountOut == 0 {
		return 0, apperror.New(apperror.CodeInsufficientLiquidity)
	}
	if amountOut >= reserveOut {
		return 0, apperror.New(apperror.CodeInsufficientLiquidity)
	}

	return amountOut, nil
}

// Package dlmm prices swaps through discretized-liquidity (bin) pools.
//
// Only the active bin is modeled: the swap executes at the active bin price
// and is bounded by that bin's reserves. Crossing into neighbor bins is out
// of scope for simulation purposes.
package dlmm

import (
	"github.com/shopspring/decimal"

	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/business/pricing/domain"
	"github.com/fd1az/solarb/internal/apperror"
)

const bpsDenominator = 10_000

// Quoter prices DLMM pools at the active bin.
type Quoter struct {
	kind market.VenueKind
}

// NewQuoter creates a DLMM quoter for kind.
func NewQuoter(kind market.VenueKind) *Quoter {
	return &Quoter{kind: kind}
}

// Kind implements app.Quoter.
func (q *Quoter) Kind() market.VenueKind { return q.kind }

// Quote implements app.Quoter.
func (q *Quoter) Quote(venue *market.Venue, inputMint string, amountIn uint64) (domain.Quote, error) {
	state, ok := venue.State.(market.BinState)
	if !ok {
		return domain.Quote{}, apperror.New(apperror.CodeInvalidState,
			apperror.WithContext(venue.Address))
	}

	out, ok := venue.Other(inputMint)
	if !ok {
		return domain.Quote{}, apperror.New(apperror.CodeInstrumentNotFound,
			apperror.WithContext(inputMint))
	}

	if amountIn == 0 || state.BaseReserve == 0 || state.QuoteReserve == 0 {
		return domain.Quote{}, apperror.New(apperror.CodeInsufficientLiquidity,
			apperror.WithContext(venue.Address))
	}
	if venue.FeeBps >= bpsDenominator {
		return domain.Quote{}, apperror.New(apperror.CodeInvalidState,
			apperror.WithContext(venue.Address))
	}

	price, err := binPrice(state.BinStep, state.ActiveBin)
	if err != nil {
		return domain.Quote{}, apperror.Wrap(err, apperror.CodePriceOverflow,
			apperror.WithContext(venue.Address))
	}

	inAfterFee := decimal.NewFromUint64(amountIn).
		Mul(decimal.NewFromInt(int64(bpsDenominator - venue.FeeBps))).
		Div(decimal.NewFromInt(bpsDenominator))

	var outDec decimal.Decimal
	var depth uint64
	if inputMint == venue.Base.Address {
		outDec = inAfterFee.Mul(price)
		depth = state.QuoteReserve
	} else {
		outDec = inAfterFee.Div(price)
		depth = state.BaseReserve
	}

	outBig := outDec.Floor().BigInt()
	if !outBig.IsUint64() {
		return domain.Quote{}, apperror.New(apperror.CodePriceOverflow,
			apperror.WithContext(venue.Address))
	}

	amountOut := outBig.Uint64()
	if amountOut == 0 || amountOut > depth {
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

// binPrice returns (1 + binStep/10000)^activeBin, quote per base in minor
// units. Negative bin ids are valid and yield prices below one.
func binPrice(binStep uint16, activeBin int32) (decimal.Decimal, error) {
	base := decimal.NewFromInt(1).Add(
		decimal.NewFromInt(int64(binStep)).Div(decimal.NewFromInt(bpsDenominator)))
	return base.PowInt32(activeBin)
}

// Package domain contains the core domain types for the pricing context.
package domain

import "github.com/shopspring/decimal"

// Quote is the result of pricing one swap through one venue. Amounts are in
// the instruments' minor units.
type Quote struct {
	Venue      string
	InputMint  string
	OutputMint string
	AmountIn   uint64
	AmountOut  uint64
	FeeBps     uint32
}

// EffectivePrice returns AmountOut/AmountIn as an exact decimal, raw minor
// units on both sides.
func (q Quote) EffectivePrice() decimal.Decimal {
	if q.AmountIn == 0 {
		return decimal.Zero
	}
	return decimal.NewFromUint64(q.AmountOut).
		Div(decimal.NewFromUint64(q.AmountIn))
}

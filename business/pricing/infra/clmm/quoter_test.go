package clmm

import (
	"testing"

	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/apperror"
)

// sqrtPrice of 2^33 in Q32.32 squares to a price of exactly 4.
const sqrtPriceFour = uint64(1) << 33

func clmmVenue(liquidity, sqrtPrice uint64, feeBps uint32) *market.Venue {
	return &market.Venue{
		Address: "whirl-1",
		Kind:    market.KindOrcaWhirlpool,
		Base:    market.SOL,
		Quote:   market.USDC,
		FeeBps:  feeBps,
		State: market.ConcentratedState{
			Liquidity:    liquidity,
			SqrtPriceQ32: sqrtPrice,
			TickSpacing:  64,
			CurrentTick:  13_863,
		},
	}
}

func TestQuoteAtCurrentPrice(t *testing.T) {
	q := NewQuoter(market.KindOrcaWhirlpool)

	tests := []struct {
		name      string
		venue     *market.Venue
		inputMint string
		amountIn  uint64
		wantOut   uint64
		wantCode  apperror.Code
	}{
		{
			name:      "base to quote at price four",
			venue:     clmmVenue(1_000_000_000, sqrtPriceFour, 0),
			inputMint: market.SOL.Address,
			amountIn:  1_000,
			wantOut:   4_000,
		},
		{
			name:      "quote to base at price four",
			venue:     clmmVenue(1_000_000_000, sqrtPriceFour, 0),
			inputMint: market.USDC.Address,
			amountIn:  4_000,
			wantOut:   1_000,
		},
		{
			name:      "fee reduces output",
			venue:     clmmVenue(1_000_000_000, sqrtPriceFour, 100),
			inputMint: market.SOL.Address,
			amountIn:  1_000,
			wantOut:   3_960, // 1000 * 0.99 * 4
		},
		{
			name:      "swap exceeding range depth",
			venue:     clmmVenue(100, sqrtPriceFour, 0),
			inputMint: market.SOL.Address,
			amountIn:  1_000,
			wantCode:  apperror.CodeInsufficientLiquidity,
		},
		{
			name:      "zero liquidity",
			venue:     clmmVenue(0, sqrtPriceFour, 0),
			inputMint: market.SOL.Address,
			amountIn:  1_000,
			wantCode:  apperror.CodeInsufficientLiquidity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := q.Quote(tt.venue, tt.inputMint, tt.amountIn)

			if tt.wantCode != "" {
				if !apperror.HasCode(err, tt.wantCode) {
					t.Fatalf("err = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Quote: %v", err)
			}
			if quote.AmountOut != tt.wantOut {
				t.Errorf("AmountOut = %d, want %d", quote.AmountOut, tt.wantOut)
			}
		})
	}
}

func TestQuoteWrongStateShape(t *testing.T) {
	q := NewQuoter(market.KindOrcaWhirlpool)
	venue := &market.Venue{
		Address: "bad",
		Kind:    market.KindOrcaWhirlpool,
		Base:    market.SOL,
		Quote:   market.USDC,
		State:   market.ReserveState{BaseReserve: 1, QuoteReserve: 1},
	}

	_, err := q.Quote(venue, market.SOL.Address, 1_000)
	if !apperror.HasCode(err, apperror.CodeInvalidState) {
		t.Fatalf("err = %v, want CodeInvalidState", err)
	}
}

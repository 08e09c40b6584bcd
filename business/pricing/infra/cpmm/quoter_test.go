package cpmm

import (
	"testing"

	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/apperror"
)

func poolVenue(baseReserve, quoteReserve uint64, feeBps uint32) *market.Venue {
	return &market.Venue{
		Address: "pool-1",
		Kind:    market.KindRaydiumAMM,
		Base:    market.SOL,
		Quote:   market.USDC,
		FeeBps:  feeBps,
		State:   market.ReserveState{BaseReserve: baseReserve, QuoteReserve: quoteReserve},
	}
}

func TestQuoteConstantProduct(t *testing.T) {
	q := NewQuoter(market.KindRaydiumAMM)

	tests := []struct {
		name      string
		venue     *market.Venue
		inputMint string
		amountIn  uint64
		wantOut   uint64
		wantCode  apperror.Code
	}{
		{
			name:      "base to quote with fee",
			venue:     poolVenue(1_000_000, 160_000_000, 25),
			inputMint: market.SOL.Address,
			amountIn:  10_000,
			// (10000*9975*160000000) / (1000000*10000 + 10000*9975)
			wantOut: 1_580_237,
		},
		{
			name:      "quote to base with fee",
			venue:     poolVenue(1_000_000, 160_000_000, 25),
			inputMint: market.USDC.Address,
			amountIn:  160_000,
			// (160000*9975*1000000) / (160000000*10000 + 160000*9975)
			wantOut: 996,
		},
		{
			name:      "zero input",
			venue:     poolVenue(1_000_000, 160_000_000, 25),
			inputMint: market.SOL.Address,
			amountIn:  0,
			wantCode:  apperror.CodeInsufficientLiquidity,
		},
		{
			name:      "empty pool",
			venue:     poolVenue(0, 160_000_000, 25),
			inputMint: market.SOL.Address,
			amountIn:  10_000,
			wantCode:  apperror.CodeInsufficientLiquidity,
		},
		{
			name:      "dust input rounds to zero output",
			venue:     poolVenue(1_000_000_000_000, 1_000, 25),
			inputMint: market.SOL.Address,
			amountIn:  10,
			wantCode:  apperror.CodeInsufficientLiquidity,
		},
		{
			name:      "unknown input mint",
			venue:     poolVenue(1_000_000, 160_000_000, 25),
			inputMint: "not-in-pool",
			amountIn:  10_000,
			wantCode:  apperror.CodeInstrumentNotFound,
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
			if quote.AmountIn != tt.amountIn {
				t.Errorf("AmountIn = %d, want %d", quote.AmountIn, tt.amountIn)
			}
		})
	}
}

func TestQuoteOutputBelowReserve(t *testing.T) {
	q := NewQuoter(market.KindRaydiumAMM)

	// Draining swaps must never report an output >= the full reserve.
	venue := poolVenue(1_000, 1_000, 0)
	quote, err := q.Quote(venue, market.SOL.Address, 1_000_000_000)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.AmountOut >= 1_000 {
		t.Errorf("AmountOut = %d, want < 1000", quote.AmountOut)
	}
}

func TestQuoteStateIsNotMutated(t *testing.T) {
	q := NewQuoter(market.KindRaydiumAMM)
	venue := poolVenue(1_000_000, 160_000_000, 25)

	first, err := q.Quote(venue, market.SOL.Address, 10_000)
	if err != nil {
		t.Fatalf("first Quote: %v", err)
	}
	second, err := q.Quote(venue, market.SOL.Address, 10_000)
	if err != nil {
		t.Fatalf("second Quote: %v", err)
	}
	if first.AmountOut != second.AmountOut {
		t.Errorf("repeat quote diverged: %d then %d", first.AmountOut, second.AmountOut)
	}
}

func BenchmarkQuote(b *testing.B) {
	q := NewQuoter(market.KindRaydiumAMM)
	venue := poolVenue(1_000_000_000_000, 160_000_000_000_000, 25)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = q.Quote(venue, market.SOL.Address, 1_000_000_000)
	}
}

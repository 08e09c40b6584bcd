package app

import (
	"context"
	"testing"

	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/business/pricing/domain"
	"github.com/fd1az/solarb/business/pricing/infra/cpmm"
	"github.com/fd1az/solarb/internal/apperror"
)

func TestQuoteServiceDispatch(t *testing.T) {
	svc, err := NewQuoteService(cpmm.NewQuoter(market.KindRaydiumAMM))
	if err != nil {
		t.Fatalf("NewQuoteService: %v", err)
	}

	venue := &market.Venue{
		Address: "pool-1",
		Kind:    market.KindRaydiumAMM,
		Base:    market.SOL,
		Quote:   market.USDC,
		FeeBps:  25,
		State:   market.ReserveState{BaseReserve: 1_000_000, QuoteReserve: 160_000_000},
	}

	quote, err := svc.Quote(context.Background(), venue, market.SOL.Address, 10_000)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.AmountOut == 0 {
		t.Error("AmountOut = 0, want > 0")
	}
	if quote.OutputMint != market.USDC.Address {
		t.Errorf("OutputMint = %s, want USDC", quote.OutputMint)
	}
}

func TestQuoteServiceUnsupportedKind(t *testing.T) {
	svc, err := NewQuoteService(cpmm.NewQuoter(market.KindRaydiumAMM))
	if err != nil {
		t.Fatalf("NewQuoteService: %v", err)
	}

	venue := &market.Venue{
		Address: "whirl-1",
		Kind:    market.KindOrcaWhirlpool,
		Base:    market.SOL,
		Quote:   market.USDC,
		State:   market.ConcentratedState{Liquidity: 1, SqrtPriceQ32: 1},
	}

	_, err = svc.Quote(context.Background(), venue, market.SOL.Address, 10_000)
	if !apperror.HasCode(err, apperror.CodeUnsupportedVenueKind) {
		t.Fatalf("err = %v, want CodeUnsupportedVenueKind", err)
	}
}

func TestQuoteEffectivePrice(t *testing.T) {
	q := domain.Quote{AmountIn: 1_000, AmountOut: 4_000}
	if got := q.EffectivePrice().String(); got != "4" {
		t.Errorf("EffectivePrice = %s, want 4", got)
	}

	zero := domain.Quote{AmountIn: 0, AmountOut: 4_000}
	if !zero.EffectivePrice().IsZero() {
		t.Error("EffectivePrice with zero input should be zero")
	}
}

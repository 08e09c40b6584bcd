package app

import (
	"io"
	"sync/atomic"
	"testing"
	"time"

	market "github.com/fd1az/solarb/business/market/domain"
	pricingApp "github.com/fd1az/solarb/business/pricing/app"
	pricingDomain "github.com/fd1az/solarb/business/pricing/domain"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/logger"
)

var (
	mintA = "MintAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	mintB = "MintBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"
	mintC = "MintCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC"
)

func testLog() logger.LoggerInterface {
	return logger.NewStdLogger(io.Discard, logger.LevelError)
}

func mkVenue(addr, baseMint, quoteMint string) market.Venue {
	return market.Venue{
		Address: addr,
		Kind:    market.KindRaydiumAMM,
		Base:    market.Instrument{Address: baseMint, Symbol: baseMint[:5], Decimals: 9},
		Quote:   market.Instrument{Address: quoteMint, Symbol: quoteMint[:5], Decimals: 9},
		State:   market.ReserveState{BaseReserve: 1, QuoteReserve: 1},
	}
}

// rateQuoter prices swaps at fixed per-direction rates in basis points,
// keyed "venue/inputMint". Unknown directions abort with insufficient
// liquidity. Optional delay and call counting for concurrency tests.
type rateQuoter struct {
	rates map[string]uint64

	delay    time.Duration
	calls    atomic.Int64
	inFlight atomic.Int64
	maxSeen  atomic.Int64
}

func (q *rateQuoter) Kind() market.VenueKind { return market.KindRaydiumAMM }

func (q *rateQuoter) Quote(venue *market.Venue, inputMint string, amountIn uint64) (pricingDomain.Quote, error) {
	q.calls.Add(1)

	cur := q.inFlight.Add(1)
	defer q.inFlight.Add(-1)
	for {
		max := q.maxSeen.Load()
		if cur <= max || q.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}

	if q.delay > 0 {
		time.Sleep(q.delay)
	}

	rate, ok := q.rates[venue.Address+"/"+inputMint]
	if !ok {
		return pricingDomain.Quote{}, apperror.New(apperror.CodeInsufficientLiquidity,
			apperror.WithContext(venue.Address))
	}

	out, _ := venue.Other(inputMint)
	return pricingDomain.Quote{
		Venue:      venue.Address,
		InputMint:  inputMint,
		OutputMint: out.Address,
		AmountIn:   amountIn,
		AmountOut:  amountIn * rate / 10_000,
	}, nil
}

func quoteService(t *testing.T, q pricingApp.Quoter) *pricingApp.QuoteService {
	t.Helper()
	svc, err := pricingApp.NewQuoteService(q)
	if err != nil {
		t.Fatalf("NewQuoteService: %v", err)
	}
	return svc
}

// triangleMarket builds a 3-venue market A-B, B-C, C-A and a quoter where the
// forward cycle A->B->C->A returns 1.02x and everything else loses.
func triangleMarket() (*market.Snapshot, *rateQuoter) {
	venues := []market.Venue{
		mkVenue("v-ab", mintA, mintB),
		mkVenue("v-bc", mintB, mintC),
		mkVenue("v-ca", mintC, mintA),
	}
	snap := market.NewSnapshot(1, venues)

	q := &rateQuoter{rates: map[string]uint64{
		"v-ab/" + mintA: 10_200, // A->B gains
		"v-bc/" + mintB: 10_000,
		"v-ca/" + mintC: 10_000,
		// reverse direction loses
		"v-ab/" + mintB: 9_800,
		"v-bc/" + mintC: 9_900,
		"v-ca/" + mintA: 9_900,
	}}

	return snap, q
}

func newTestSimulator(t *testing.T, cfg SimulatorConfig, q pricingApp.Quoter) *Simulator {
	t.Helper()
	sim, err := NewSimulator(cfg, quoteService(t, q), testLog())
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	return sim
}

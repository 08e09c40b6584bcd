package domain

import (
	"testing"
	"time"
)

func testVenue(addr string, base, quote Instrument, baseRes, quoteRes uint64) Venue {
	return Venue{
		Address:   addr,
		Kind:      KindRaydiumAMM,
		Base:      base,
		Quote:     quote,
		FeeBps:    25,
		State:     ReserveState{BaseReserve: baseRes, QuoteReserve: quoteRes},
		UpdatedAt: time.Now(),
	}
}

func TestSnapshotLookups(t *testing.T) {
	bonk := Instrument{Address: "BonkMint", Symbol: "BONK", Decimals: 5}
	venues := []Venue{
		testVenue("pool-1", SOL, USDC, 1_000, 160_000),
		testVenue("pool-2", SOL, bonk, 1_000, 9_000_000),
		testVenue("pool-3", USDC, bonk, 160_000, 9_000_000),
	}

	snap := NewSnapshot(7, venues)

	if got := snap.Generation(); got != 7 {
		t.Fatalf("Generation() = %d, want 7", got)
	}
	if got := snap.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	v, ok := snap.Venue("pool-2")
	if !ok {
		t.Fatal("Venue(pool-2) not found")
	}
	if v.Quote.Symbol != "BONK" {
		t.Errorf("pool-2 quote = %s, want BONK", v.Quote.Symbol)
	}

	if _, ok := snap.Venue("missing"); ok {
		t.Error("Venue(missing) found, want miss")
	}

	// Instrument order follows first appearance in the venue list.
	want := []string{SOL.Address, USDC.Address, "BonkMint"}
	got := snap.Instruments()
	if len(got) != len(want) {
		t.Fatalf("Instruments() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Instruments()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBuildGraphEdges(t *testing.T) {
	venues := []Venue{
		testVenue("pool-1", SOL, USDC, 1_000, 160_000),
		testVenue("pool-2", SOL, USDC, 2_000, 330_000),
	}

	g := BuildGraph(NewSnapshot(1, venues))

	if got := g.EdgeCount(); got != 4 {
		t.Fatalf("EdgeCount() = %d, want 4", got)
	}

	// Parallel edges: two venues serve SOL->USDC, in venue order.
	out := g.Outbound(SOL.Address)
	if len(out) != 2 {
		t.Fatalf("Outbound(SOL) len = %d, want 2", len(out))
	}
	if out[0].Venue.Address != "pool-1" || out[1].Venue.Address != "pool-2" {
		t.Errorf("Outbound(SOL) venue order = [%s %s], want [pool-1 pool-2]",
			out[0].Venue.Address, out[1].Venue.Address)
	}
	for _, e := range out {
		if e.From != SOL.Address || e.To != USDC.Address {
			t.Errorf("edge %s: %s -> %s, want SOL -> USDC", e.Venue.Address, e.From, e.To)
		}
	}

	back := g.Outbound(USDC.Address)
	if len(back) != 2 {
		t.Fatalf("Outbound(USDC) len = %d, want 2", len(back))
	}
	if back[0].To != SOL.Address {
		t.Errorf("reverse edge To = %s, want SOL", back[0].To)
	}
}

func TestVenueOther(t *testing.T) {
	v := testVenue("pool-1", SOL, USDC, 1, 1)

	if inst, ok := v.Other(SOL.Address); !ok || inst.Address != USDC.Address {
		t.Errorf("Other(SOL) = %v, %v; want USDC, true", inst, ok)
	}
	if inst, ok := v.Other(USDC.Address); !ok || inst.Address != SOL.Address {
		t.Errorf("Other(USDC) = %v, %v; want SOL, true", inst, ok)
	}
	if _, ok := v.Other("unrelated"); ok {
		t.Error("Other(unrelated) = true, want false")
	}
}

package app

import (
	"context"
	"testing"
	"time"

	"github.com/fd1az/solarb/business/arbitrage/domain"
	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/apperror"
)

func trianglePath(snap *market.Snapshot) domain.Path {
	vab, _ := snap.Venue("v-ab")
	vbc, _ := snap.Venue("v-bc")
	vca, _ := snap.Venue("v-ca")
	return domain.Path{Edges: []market.Edge{
		{From: mintA, To: mintB, Venue: vab},
		{From: mintB, To: mintC, Venue: vbc},
		{From: mintC, To: mintA, Venue: vca},
	}}
}

func TestSimulateTriangle(t *testing.T) {
	snap, q := triangleMarket()
	sim := newTestSimulator(t, SimulatorConfig{}, q)

	res, err := sim.Simulate(context.Background(), trianglePath(snap), 1_000_000, snap)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	if res.AmountOut != 1_020_000 {
		t.Errorf("AmountOut = %d, want 1020000", res.AmountOut)
	}
	if res.Profit != 20_000 {
		t.Errorf("Profit = %d, want 20000", res.Profit)
	}
	if len(res.HopAmounts) != 3 {
		t.Fatalf("HopAmounts len = %d, want 3", len(res.HopAmounts))
	}
	want := []uint64{1_020_000, 1_020_000, 1_020_000}
	for i, w := range want {
		if res.HopAmounts[i] != w {
			t.Errorf("hop %d = %d, want %d", i, res.HopAmounts[i], w)
		}
	}
	if res.Generation != snap.Generation() {
		t.Errorf("Generation = %d, want %d", res.Generation, snap.Generation())
	}
}

func TestSimulateIdempotent(t *testing.T) {
	snap, q := triangleMarket()
	sim := newTestSimulator(t, SimulatorConfig{}, q)
	path := trianglePath(snap)

	first, err := sim.Simulate(context.Background(), path, 1_000_000, snap)
	if err != nil {
		t.Fatalf("first Simulate: %v", err)
	}
	callsAfterFirst := q.calls.Load()

	second, err := sim.Simulate(context.Background(), path, 1_000_000, snap)
	if err != nil {
		t.Fatalf("second Simulate: %v", err)
	}

	if first.AmountOut != second.AmountOut || first.Profit != second.Profit {
		t.Error("repeat simulation diverged")
	}
	// Second run must be a cache hit, not re-quoted.
	if q.calls.Load() != callsAfterFirst {
		t.Errorf("quoter calls = %d after repeat, want %d", q.calls.Load(), callsAfterFirst)
	}
}

func TestSimulateAbortsOnHopFailure(t *testing.T) {
	snap, q := triangleMarket()
	delete(q.rates, "v-bc/"+mintB) // second hop has no liquidity

	sim := newTestSimulator(t, SimulatorConfig{}, q)

	_, err := sim.Simulate(context.Background(), trianglePath(snap), 1_000_000, snap)
	if !apperror.HasCode(err, apperror.CodeSimulationAborted) {
		t.Fatalf("err = %v, want CodeSimulationAborted", err)
	}
}

func TestSimulateRejectsInvalidPath(t *testing.T) {
	snap, q := triangleMarket()
	sim := newTestSimulator(t, SimulatorConfig{}, q)

	vab, _ := snap.Venue("v-ab")
	open := domain.Path{Edges: []market.Edge{{From: mintA, To: mintB, Venue: vab}}}

	_, err := sim.Simulate(context.Background(), open, 1_000_000, snap)
	if !apperror.HasCode(err, apperror.CodeInvalidPath) {
		t.Fatalf("err = %v, want CodeInvalidPath", err)
	}
}

func TestSimulateManyBoundsConcurrency(t *testing.T) {
	// Many parallel A-B venues produce plenty of 2-hop cycles.
	const pools = 8
	venues := make([]market.Venue, pools)
	rates := make(map[string]uint64, 2*pools)
	for i := 0; i < pools; i++ {
		addr := "v-" + string(rune('a'+i))
		venues[i] = mkVenue(addr, mintA, mintB)
		rates[addr+"/"+mintA] = 10_000
		rates[addr+"/"+mintB] = 10_000
	}
	snap := market.NewSnapshot(1, venues)
	q := &rateQuoter{rates: rates, delay: 5 * time.Millisecond}

	sim := newTestSimulator(t, SimulatorConfig{ConcurrencyLimit: 3, BatchSize: 16}, q)

	paths := Enumerate(market.BuildGraph(snap), mintA, 1, 2).Collect()
	if len(paths) != pools*(pools-1) {
		t.Fatalf("paths = %d, want %d", len(paths), pools*(pools-1))
	}

	results, err := sim.SimulateMany(context.Background(), paths, 1_000_000, snap)
	if err != nil {
		t.Fatalf("SimulateMany: %v", err)
	}
	for _, pr := range results {
		if pr.Err != nil {
			t.Fatalf("path %s: %v", pr.Path.Key(), pr.Err)
		}
	}

	if got := q.maxSeen.Load(); got > 3 {
		t.Errorf("max concurrent quotes = %d, want <= 3", got)
	}
}

func TestSimulateManyCancelledContext(t *testing.T) {
	snap, q := triangleMarket()
	sim := newTestSimulator(t, SimulatorConfig{ConcurrencyLimit: 1}, q)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths := []domain.Path{trianglePath(snap)}
	_, err := sim.SimulateMany(ctx, paths, 1_000_000, snap)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

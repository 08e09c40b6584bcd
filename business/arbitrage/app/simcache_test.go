package app

import (
	"testing"

	"github.com/fd1az/solarb/business/arbitrage/domain"
)

func result(gen uint64, profit int64) domain.SimulationResult {
	return domain.SimulationResult{
		AmountIn:   1_000_000,
		AmountOut:  uint64(1_000_000 + profit),
		Profit:     profit,
		Generation: gen,
	}
}

func TestSimCacheRoundTrip(t *testing.T) {
	c := NewSimCache(0)

	c.Put("p1", 1_000_000, result(1, 50))
	got, ok := c.Get("p1", 1_000_000, 1)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Profit != 50 {
		t.Errorf("profit = %d, want 50", got.Profit)
	}

	if _, ok := c.Get("p2", 1_000_000, 1); ok {
		t.Error("unexpected hit for unknown path")
	}
	if _, ok := c.Get("p1", 2_000_000, 1); ok {
		t.Error("unexpected hit for different amount")
	}
}

func TestSimCacheNeverServesStaleGeneration(t *testing.T) {
	c := NewSimCache(0)
	c.Put("p1", 1_000_000, result(1, 50))

	// A read at a newer generation drops generation 1 entirely.
	if _, ok := c.Get("p1", 1_000_000, 2); ok {
		t.Fatal("generation 2 read served a generation 1 entry")
	}

	// And the old entry is gone even for old-generation readers.
	if _, ok := c.Get("p1", 1_000_000, 1); ok {
		t.Fatal("dropped entry came back")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestSimCacheDropsLateWrites(t *testing.T) {
	c := NewSimCache(0)

	c.Put("p1", 1_000_000, result(3, 10))
	// A write from an already superseded generation is ignored.
	c.Put("p2", 1_000_000, result(2, 99))

	if _, ok := c.Get("p2", 1_000_000, 3); ok {
		t.Error("stale write was stored")
	}
	if _, ok := c.Get("p1", 1_000_000, 3); !ok {
		t.Error("current-generation entry lost")
	}
}

func TestSimCacheLastWriteWins(t *testing.T) {
	c := NewSimCache(0)

	c.Put("p1", 1_000_000, result(1, 10))
	c.Put("p1", 1_000_000, result(1, 20))

	got, ok := c.Get("p1", 1_000_000, 1)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Profit != 20 {
		t.Errorf("profit = %d, want 20 (last write)", got.Profit)
	}
}

func TestSimCacheAmountBucketing(t *testing.T) {
	c := NewSimCache(1_000)

	c.Put("p1", 10_100, result(1, 7))

	// Same bucket, different exact amount.
	if _, ok := c.Get("p1", 10_900, 1); !ok {
		t.Error("expected hit within the same amount bucket")
	}
	// Next bucket misses.
	if _, ok := c.Get("p1", 11_100, 1); ok {
		t.Error("unexpected hit across buckets")
	}
}

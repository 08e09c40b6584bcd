package raydium

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/logger"
)

func testConfig(baseURL string) Config {
	return Config{BaseURL: baseURL, RequestsPerMinute: 600, Timeout: 2 * time.Second}
}

func TestAMMSourceFetchVenues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/main/pairs" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":[
			{"id":"ray-sol-usdc","baseMint":"So11111111111111111111111111111111111111112",
			 "quoteMint":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			 "baseSymbol":"SOL","quoteSymbol":"USDC","baseDecimals":9,"quoteDecimals":6,
			 "baseReserve":1000000000000,"quoteReserve":160000000000,"feeRate":0.0025},
			{"id":"ray-empty","baseMint":"m1","quoteMint":"m2",
			 "baseSymbol":"A","quoteSymbol":"B","baseDecimals":6,"quoteDecimals":6,
			 "baseReserve":0,"quoteReserve":5,"feeRate":0.0025}
		]}`)
	}))
	defer srv.Close()

	src, err := NewAMMSource(testConfig(srv.URL), logger.NewStdLogger(io.Discard, logger.LevelError))
	if err != nil {
		t.Fatalf("NewAMMSource: %v", err)
	}

	venues, err := src.FetchVenues(context.Background())
	if err != nil {
		t.Fatalf("FetchVenues: %v", err)
	}

	// The empty pool is skipped.
	if len(venues) != 1 {
		t.Fatalf("venues = %d, want 1", len(venues))
	}

	v := venues[0]
	if v.Kind != domain.KindRaydiumAMM {
		t.Errorf("kind = %s, want %s", v.Kind, domain.KindRaydiumAMM)
	}
	if v.FeeBps != 25 {
		t.Errorf("fee = %d bps, want 25", v.FeeBps)
	}
	state, ok := v.State.(domain.ReserveState)
	if !ok {
		t.Fatalf("state type = %T, want ReserveState", v.State)
	}
	if state.BaseReserve != 1_000_000_000_000 || state.QuoteReserve != 160_000_000_000 {
		t.Errorf("reserves = %d/%d, unexpected", state.BaseReserve, state.QuoteReserve)
	}
}

func TestAMMSourceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	src, err := NewAMMSource(testConfig(srv.URL), logger.NewStdLogger(io.Discard, logger.LevelError))
	if err != nil {
		t.Fatalf("NewAMMSource: %v", err)
	}

	_, err = src.FetchVenues(context.Background())
	if !apperror.HasCode(err, apperror.CodeVenueSourceError) {
		t.Fatalf("err = %v, want CodeVenueSourceError", err)
	}
}

func TestCLMMSourceFetchVenues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clmm/pools" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":[
			{"id":"clmm-1","mintA":"m1","mintB":"m2","symbolA":"SOL","symbolB":"USDC",
			 "decimalsA":9,"decimalsB":6,"liquidity":"123456789","sqrtPrice":"54975581388",
			 "tickSpacing":64,"tickCurrent":-19000,"feeRate":0.0005}
		]}`)
	}))
	defer srv.Close()

	src, err := NewCLMMSource(testConfig(srv.URL), logger.NewStdLogger(io.Discard, logger.LevelError))
	if err != nil {
		t.Fatalf("NewCLMMSource: %v", err)
	}

	venues, err := src.FetchVenues(context.Background())
	if err != nil {
		t.Fatalf("FetchVenues: %v", err)
	}
	if len(venues) != 1 {
		t.Fatalf("venues = %d, want 1", len(venues))
	}

	state, ok := venues[0].State.(domain.ConcentratedState)
	if !ok {
		t.Fatalf("state type = %T, want ConcentratedState", venues[0].State)
	}
	if state.Liquidity != 123_456_789 {
		t.Errorf("liquidity = %d, want 123456789", state.Liquidity)
	}
	if state.CurrentTick != -19_000 {
		t.Errorf("tick = %d, want -19000", state.CurrentTick)
	}
	if venues[0].FeeBps != 5 {
		t.Errorf("fee = %d bps, want 5", venues[0].FeeBps)
	}
}

package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	arbitrage "github.com/fd1az/solarb/business/arbitrage/domain"
	"github.com/fd1az/solarb/business/execution/domain"
	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/logger"
)

func testLog() logger.LoggerInterface {
	return logger.NewStdLogger(io.Discard, logger.LevelError)
}

func sampleOpportunity() arbitrage.Opportunity {
	mintA := market.Instrument{Address: "mintA", Symbol: "AAA", Decimals: 9}
	mintB := market.Instrument{Address: "mintB", Symbol: "BBB", Decimals: 9}
	vAB := &market.Venue{Address: "v-ab", Kind: market.KindRaydiumAMM, Base: mintA, Quote: mintB}
	vBA := &market.Venue{Address: "v-ba", Kind: market.KindOrcaWhirlpool, Base: mintA, Quote: mintB}
	return arbitrage.Opportunity{
		ID: "opp-42",
		Path: arbitrage.Path{Edges: []market.Edge{
			{From: "mintA", To: "mintB", Venue: vAB},
			{From: "mintB", To: "mintA", Venue: vBA},
		}},
		Result: arbitrage.SimulationResult{
			AmountIn:  1_000_000,
			AmountOut: 1_020_000,
			Profit:    20_000,
		},
		Strategy:     "exhaustive",
		DiscoveredAt: time.Now(),
	}
}

func TestExecuteSimulateMode(t *testing.T) {
	e, err := NewExecutor(DefaultConfig(domain.ModeSimulate), testLog())
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	receipt, err := e.Execute(context.Background(), sampleOpportunity(), domain.PriorityFee{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(receipt.Signature, "sim-") {
		t.Errorf("signature = %q, want sim- prefix", receipt.Signature)
	}
	if receipt.Mode != domain.ModeSimulate {
		t.Errorf("mode = %s", receipt.Mode)
	}
}

func TestExecutePaperMode(t *testing.T) {
	e, err := NewExecutor(DefaultConfig(domain.ModePaper), testLog())
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	receipt, err := e.Execute(context.Background(), sampleOpportunity(), domain.PriorityFee{MicroLamportsPerCU: 5000})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(receipt.Signature, "paper-") {
		t.Errorf("signature = %q, want paper- prefix", receipt.Signature)
	}
}

func TestExecuteLiveMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/submit" {
			t.Errorf("path = %q", r.URL.Path)
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(req.Route) != 2 || req.Route[0].Venue != "v-ab" || req.Route[1].InputMint != "mintB" {
			t.Errorf("route = %+v", req.Route)
		}
		if req.AmountIn != 1_000_000 || req.MinAmountOut != 1_000_000 {
			t.Errorf("amounts = %d/%d", req.AmountIn, req.MinAmountOut)
		}
		if req.PriorityFeePerCU != 7500 {
			t.Errorf("priority fee = %d", req.PriorityFeePerCU)
		}

		json.NewEncoder(w).Encode(submitResponse{Signature: "live-sig-1"})
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(domain.ModeLive)
	cfg.SubmitURL = srv.URL
	e, err := NewExecutor(cfg, testLog())
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	receipt, err := e.Execute(context.Background(), sampleOpportunity(),
		domain.PriorityFee{MicroLamportsPerCU: 7500})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if receipt.Signature != "live-sig-1" {
		t.Errorf("signature = %q", receipt.Signature)
	}
}

func TestExecuteLiveRelayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(domain.ModeLive)
	cfg.SubmitURL = srv.URL
	e, err := NewExecutor(cfg, testLog())
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	_, err = e.Execute(context.Background(), sampleOpportunity(), domain.PriorityFee{})
	if !apperror.HasCode(err, apperror.CodeExecutionFailed) {
		t.Fatalf("err = %v, want CodeExecutionFailed", err)
	}
}

func TestNewExecutorLiveRequiresURL(t *testing.T) {
	_, err := NewExecutor(DefaultConfig(domain.ModeLive), testLog())
	if !apperror.HasCode(err, apperror.CodeConfigurationError) {
		t.Fatalf("err = %v, want CodeConfigurationError", err)
	}
}

package app

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	arbitrage "github.com/fd1az/solarb/business/arbitrage/domain"
	"github.com/fd1az/solarb/business/execution/domain"
	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/logger"
)

type fakeExecutor struct {
	calls     atomic.Int64
	inFlight  atomic.Int64
	maxSeen   atomic.Int64
	delay     time.Duration
	failureOn bool
}

func (f *fakeExecutor) Execute(ctx context.Context, opp arbitrage.Opportunity, fee domain.PriorityFee) (domain.Receipt, error) {
	cur := f.inFlight.Add(1)
	for {
		maxSeen := f.maxSeen.Load()
		if cur <= maxSeen || f.maxSeen.CompareAndSwap(maxSeen, cur) {
			break
		}
	}
	defer f.inFlight.Add(-1)

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return domain.Receipt{}, ctx.Err()
		}
	}
	f.calls.Add(1)
	if f.failureOn {
		return domain.Receipt{}, apperror.New(apperror.CodeExecutionFailed)
	}
	return domain.Receipt{Signature: "sig", Mode: domain.ModeSimulate, SubmittedAt: time.Now()}, nil
}

type fakeFees struct {
	fee domain.PriorityFee
	err error
}

func (f *fakeFees) Estimate(ctx context.Context, profit int64) (domain.PriorityFee, error) {
	return f.fee, f.err
}

func testSink(t *testing.T, cfg SinkConfig, exec Executor) *Sink {
	t.Helper()
	s, err := NewSink(cfg, exec, &fakeFees{}, logger.NewStdLogger(io.Discard, logger.LevelError))
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	return s
}

func testOpportunity(amountIn, amountOut uint64) arbitrage.Opportunity {
	mintA := market.Instrument{Address: "mintA", Symbol: "AAA", Decimals: 9}
	mintB := market.Instrument{Address: "mintB", Symbol: "BBB", Decimals: 9}
	vAB := &market.Venue{Address: "v-ab", Kind: market.KindRaydiumAMM, Base: mintA, Quote: mintB}
	vBA := &market.Venue{Address: "v-ba", Kind: market.KindRaydiumAMM, Base: mintA, Quote: mintB}
	return arbitrage.Opportunity{
		ID: "opp-1",
		Path: arbitrage.Path{Edges: []market.Edge{
			{From: "mintA", To: "mintB", Venue: vAB},
			{From: "mintB", To: "mintA", Venue: vBA},
		}},
		Result: arbitrage.SimulationResult{
			AmountIn:  amountIn,
			AmountOut: amountOut,
			Profit:    int64(amountOut) - int64(amountIn),
		},
		Strategy:     "exhaustive",
		DiscoveredAt: time.Now(),
	}
}

func TestSubmitAcceptsProfitable(t *testing.T) {
	exec := &fakeExecutor{}
	s := testSink(t, SinkConfig{MinProfitLamports: 10_000, MaxSlippageBps: 0}, exec)

	outcome, err := s.Submit(context.Background(), testOpportunity(1_000_000, 1_020_000))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome != domain.OutcomeAccepted {
		t.Errorf("outcome = %s, want accepted", outcome)
	}

	if err := s.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if got := exec.calls.Load(); got != 1 {
		t.Errorf("executor calls = %d, want 1", got)
	}
}

func TestSubmitRejectsBelowFloor(t *testing.T) {
	exec := &fakeExecutor{}
	s := testSink(t, SinkConfig{MinProfitLamports: 50_000}, exec)

	outcome, err := s.Submit(context.Background(), testOpportunity(1_000_000, 1_020_000))
	if outcome != domain.OutcomeRejected {
		t.Errorf("outcome = %s, want rejected", outcome)
	}
	if !apperror.HasCode(err, apperror.CodeBelowProfitFloor) {
		t.Errorf("err = %v, want CodeBelowProfitFloor", err)
	}
	if got := exec.calls.Load(); got != 0 {
		t.Errorf("executor calls = %d, want 0", got)
	}
}

func TestSubmitRejectsSlippage(t *testing.T) {
	exec := &fakeExecutor{}
	// Profit 20_000 clears the floor, but a 300 bps haircut on the output
	// (~30_600 lamports) pushes the worst case below it.
	s := testSink(t, SinkConfig{MinProfitLamports: 10_000, MaxSlippageBps: 300}, exec)

	outcome, err := s.Submit(context.Background(), testOpportunity(1_000_000, 1_020_000))
	if outcome != domain.OutcomeRejected {
		t.Errorf("outcome = %s, want rejected", outcome)
	}
	if !apperror.HasCode(err, apperror.CodeSlippageExceeded) {
		t.Errorf("err = %v, want CodeSlippageExceeded", err)
	}
}

func TestSubmitSlippageWithinBound(t *testing.T) {
	exec := &fakeExecutor{}
	// 10 bps haircut (~1_020 lamports) keeps the worst case above the floor.
	s := testSink(t, SinkConfig{MinProfitLamports: 10_000, MaxSlippageBps: 10}, exec)

	outcome, err := s.Submit(context.Background(), testOpportunity(1_000_000, 1_020_000))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome != domain.OutcomeAccepted {
		t.Errorf("outcome = %s, want accepted", outcome)
	}
	s.Drain(context.Background())
}

func TestSubmitSlippageOnSmallOutput(t *testing.T) {
	exec := &fakeExecutor{}
	// The output is below 10_000 lamports, so a naive integer haircut would
	// round to zero; a 50% haircut must still reject this path.
	s := testSink(t, SinkConfig{MinProfitLamports: 500, MaxSlippageBps: 5_000}, exec)

	outcome, err := s.Submit(context.Background(), testOpportunity(9_000, 9_999))
	if outcome != domain.OutcomeRejected {
		t.Errorf("outcome = %s, want rejected", outcome)
	}
	if !apperror.HasCode(err, apperror.CodeSlippageExceeded) {
		t.Errorf("err = %v, want CodeSlippageExceeded", err)
	}
}

func TestSubmitRejectsUnlistedMint(t *testing.T) {
	exec := &fakeExecutor{}
	s := testSink(t, SinkConfig{AllowedMints: []string{"mintA"}}, exec)

	outcome, err := s.Submit(context.Background(), testOpportunity(1_000_000, 1_020_000))
	if outcome != domain.OutcomeRejected {
		t.Errorf("outcome = %s, want rejected", outcome)
	}
	if !apperror.HasCode(err, apperror.CodeSubmissionRejected) {
		t.Errorf("err = %v, want CodeSubmissionRejected", err)
	}
}

func TestSubmitBoundsInFlight(t *testing.T) {
	exec := &fakeExecutor{delay: 20 * time.Millisecond}
	s := testSink(t, SinkConfig{MaxInFlight: 2}, exec)

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		outcome, err := s.Submit(ctx, testOpportunity(1_000_000, 1_020_000))
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		if outcome != domain.OutcomeAccepted {
			t.Fatalf("Submit %d outcome = %s", i, outcome)
		}
	}

	if err := s.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if got := exec.calls.Load(); got != 6 {
		t.Errorf("executor calls = %d, want 6", got)
	}
	if got := exec.maxSeen.Load(); got > 2 {
		t.Errorf("max in-flight executions = %d, want <= 2", got)
	}
}

func TestSubmitFailsOnCancelledBackpressure(t *testing.T) {
	exec := &fakeExecutor{delay: time.Second}
	s := testSink(t, SinkConfig{MaxInFlight: 1}, exec)

	bg := context.Background()
	if _, err := s.Submit(bg, testOpportunity(1_000_000, 1_020_000)); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(bg, 20*time.Millisecond)
	defer cancel()

	outcome, err := s.Submit(ctx, testOpportunity(1_000_000, 1_020_000))
	if outcome != domain.OutcomeFailed {
		t.Errorf("outcome = %s, want failed", outcome)
	}
	if !apperror.HasCode(err, apperror.CodeSubmissionRejected) {
		t.Errorf("err = %v, want CodeSubmissionRejected", err)
	}
}

func TestFeeEstimateFailureIsNotFatal(t *testing.T) {
	exec := &fakeExecutor{}
	s, err := NewSink(SinkConfig{}, exec,
		&fakeFees{err: apperror.New(apperror.CodeFeeEstimateFailed)},
		logger.NewStdLogger(io.Discard, logger.LevelError))
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}

	outcome, err := s.Submit(context.Background(), testOpportunity(1_000_000, 1_020_000))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome != domain.OutcomeAccepted {
		t.Errorf("outcome = %s, want accepted", outcome)
	}
	s.Drain(context.Background())
}

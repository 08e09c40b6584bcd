// Package report contains reporting adapters for the arbitrage context.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/solarb/business/arbitrage/app"
)

const line = "--------------------------------------------------------------------------------"

// Console prints cycle results for CLI runs.
type Console struct {
	out      io.Writer
	decimals int32 // native token decimals for amount display
	topN     int
}

// NewConsole creates a console reporter writing to stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout, decimals: 9, topN: 5}
}

// NewConsoleWriter creates a console reporter writing to w.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w, decimals: 9, topN: 5}
}

// Start prints the banner.
func (r *Console) Start() {
	fmt.Fprintln(r.out, "solarb scanning started")
	fmt.Fprintln(r.out, "=======================")
}

// ReportCycle prints one cycle summary and its top opportunities.
func (r *Console) ReportCycle(report *app.CycleReport) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, line)
	fmt.Fprintf(r.out, "CYCLE  gen=%d  opportunities=%d  submitted=%d  took=%s\n",
		report.Generation, len(report.Ranked), report.Submitted, report.Duration.Round(time.Millisecond))

	for _, run := range report.Runs {
		status := "ok"
		if run.Err != nil {
			status = "failed: " + run.Err.Error()
		}
		fmt.Fprintf(r.out, "  strategy %-16s found=%-4d took=%-10s %s\n",
			run.Strategy, run.Opportunities, run.Duration.Round(time.Millisecond), status)
	}

	if len(report.Ranked) == 0 {
		fmt.Fprintln(r.out, line)
		return
	}

	fmt.Fprintln(r.out, line)
	shown := min(r.topN, len(report.Ranked))
	for i := 0; i < shown; i++ {
		opp := report.Ranked[i]
		fmt.Fprintf(r.out, "  #%d  %s\n", i+1, opp.Path.Symbols())
		fmt.Fprintf(r.out, "      in=%s  out=%s  profit=%s (%d bps)  via %s\n",
			r.amount(opp.Result.AmountIn),
			r.amount(opp.Result.AmountOut),
			r.profit(opp.Result.Profit),
			opp.Result.ProfitBps(),
			opp.Strategy)
	}
	fmt.Fprintln(r.out, line)
}

// Stop prints the shutdown notice.
func (r *Console) Stop() {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "solarb stopped")
}

func (r *Console) amount(lamports uint64) string {
	return decimal.New(int64(lamports), -r.decimals).StringFixed(4)
}

func (r *Console) profit(lamports int64) string {
	return decimal.New(lamports, -r.decimals).StringFixed(6)
}

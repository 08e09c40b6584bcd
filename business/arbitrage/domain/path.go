// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"strings"

	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/apperror"
)

// Path is an ordered sequence of directed edges. A valid path chains: each
// edge's output instrument is the next edge's input. A cycle additionally
// ends where it started.
type Path struct {
	Edges []market.Edge
}

// Hops returns the number of swaps in the path.
func (p Path) Hops() int { return len(p.Edges) }

// Start returns the input instrument of the first edge.
func (p Path) Start() string {
	if len(p.Edges) == 0 {
		return ""
	}
	return p.Edges[0].From
}

// End returns the output instrument of the last edge.
func (p Path) End() string {
	if len(p.Edges) == 0 {
		return ""
	}
	return p.Edges[len(p.Edges)-1].To
}

// IsCycle reports whether the path starts and ends at the same instrument.
func (p Path) IsCycle() bool {
	return len(p.Edges) > 0 && p.Start() == p.End()
}

// Validate checks chaining and the cycle property.
func (p Path) Validate() error {
	if len(p.Edges) == 0 {
		return apperror.New(apperror.CodeInvalidPath, apperror.WithMessage("empty path"))
	}
	for i := 1; i < len(p.Edges); i++ {
		if p.Edges[i-1].To != p.Edges[i].From {
			return apperror.New(apperror.CodeInvalidPath,
				apperror.WithMessage("edges do not chain"))
		}
	}
	if !p.IsCycle() {
		return apperror.New(apperror.CodeInvalidPath,
			apperror.WithMessage("path does not return to start"))
	}
	return nil
}

// Key returns the path's identity: the ordered venues with their directions.
// Two paths through the same venues in the same directions are the same path,
// whatever snapshot they were enumerated from.
func (p Path) Key() string {
	var b strings.Builder
	for i, e := range p.Edges {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(e.Venue.Address)
		b.WriteByte('/')
		b.WriteString(e.From)
	}
	return b.String()
}

// Symbols returns a display form like "SOL->USDC->BONK->SOL".
func (p Path) Symbols() string {
	if len(p.Edges) == 0 {
		return ""
	}
	var b strings.Builder
	for i, e := range p.Edges {
		if i == 0 {
			b.WriteString(symbolOf(e.Venue, e.From))
		}
		b.WriteString("->")
		b.WriteString(symbolOf(e.Venue, e.To))
	}
	return b.String()
}

func symbolOf(v *market.Venue, mint string) string {
	switch mint {
	case v.Base.Address:
		return v.Base.String()
	case v.Quote.Address:
		return v.Quote.String()
	default:
		return mint
	}
}

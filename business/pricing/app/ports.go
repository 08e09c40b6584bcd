// Package app contains application services and port definitions for the pricing context.
package app

import (
	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/business/pricing/domain"
)

// Quoter prices a swap through one venue kind. Implementations are pure
// functions of the venue state; they never touch the network.
type Quoter interface {
	// Kind returns the venue kind this quoter handles.
	Kind() market.VenueKind

	// Quote prices swapping amountIn of inputMint through venue. The venue's
	// state is read but never modified.
	Quote(venue *market.Venue, inputMint string, amountIn uint64) (domain.Quote, error)
}

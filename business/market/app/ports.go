// Package app contains the application services of the market context.
package app

import (
	"context"

	"github.com/fd1az/solarb/business/market/domain"
)

// VenueSource fetches the live venue set of one exchange protocol. A source
// owns everything protocol specific: endpoint, payload shape, rate limits.
type VenueSource interface {
	// Kind returns the venue kind this source produces.
	Kind() domain.VenueKind

	// FetchVenues returns the current venues of the protocol. Implementations
	// must honor ctx cancellation.
	FetchVenues(ctx context.Context) ([]domain.Venue, error)
}

// EventStream delivers push notifications from a live market feed.
type EventStream interface {
	// Events returns the channel events are delivered on. The channel is
	// closed when the stream shuts down.
	Events() <-chan domain.MarketEvent

	// Close tears the stream down.
	Close() error
}

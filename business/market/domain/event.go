package domain

import "time"

// EventType classifies market stream events.
type EventType string

const (
	EventVenueUpdate EventType = "venue_update"
	EventNewVenue    EventType = "new_venue"
)

// MarketEvent is a push notification from a live market feed. Events only
// hint that state moved; authoritative venue state still comes from the
// registry's refresh cycle.
type MarketEvent struct {
	Type         EventType
	VenueAddress string
	Kind         VenueKind
	ReceivedAt   time.Time
}

// Package stream subscribes to a live market feed over WebSocket.
package stream

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/internal/logger"
	"github.com/fd1az/solarb/internal/wsconn"
)

// Config holds market stream configuration.
type Config struct {
	URL    string
	Buffer int // event channel capacity
}

// wire format of feed notifications
type feedMessage struct {
	Type  string `json:"type"`
	Venue string `json:"venue"`
	Kind  string `json:"kind"`
}

// Stream turns feed notifications into MarketEvents. Delivery is best effort:
// when the consumer lags, events are dropped rather than blocking the read
// loop, since the registry refresh remains the source of truth.
type Stream struct {
	cfg    Config
	client *wsconn.Client
	events chan domain.MarketEvent
	log    logger.LoggerInterface

	dropped metric.Int64Counter
}

// New creates a stream. Connect must be called before events flow.
func New(cfg Config, log logger.LoggerInterface) (*Stream, error) {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}

	client, err := wsconn.New(wsconn.DefaultConfig(cfg.URL, "market-stream"))
	if err != nil {
		return nil, err
	}

	dropped, err := otel.Meter("market.stream").Int64Counter("stream_events_dropped_total",
		metric.WithDescription("Market events dropped due to a full consumer"))
	if err != nil {
		return nil, err
	}

	s := &Stream{
		cfg:     cfg,
		client:  client,
		events:  make(chan domain.MarketEvent, cfg.Buffer),
		log:     log,
		dropped: dropped,
	}

	client.OnMessage(s.handleMessage)
	client.OnStateChange(func(state wsconn.State, err error) {
		if err != nil {
			log.Warn(context.Background(), "market stream state change",
				"state", state, "error", err)
		}
	})

	return s, nil
}

// Connect dials the feed.
func (s *Stream) Connect(ctx context.Context) error {
	return s.client.Connect(ctx)
}

// Events implements app.EventStream.
func (s *Stream) Events() <-chan domain.MarketEvent {
	return s.events
}

// Close implements app.EventStream.
func (s *Stream) Close() error {
	err := s.client.Close()
	close(s.events)
	return err
}

func (s *Stream) handleMessage(ctx context.Context, msg []byte) {
	var fm feedMessage
	if err := json.Unmarshal(msg, &fm); err != nil {
		s.log.Debug(ctx, "unparseable feed message", "error", err)
		return
	}

	var typ domain.EventType
	switch fm.Type {
	case "venue_update":
		typ = domain.EventVenueUpdate
	case "new_venue":
		typ = domain.EventNewVenue
	default:
		return
	}

	ev := domain.MarketEvent{
		Type:         typ,
		VenueAddress: fm.Venue,
		Kind:         domain.VenueKind(fm.Kind),
		ReceivedAt:   time.Now(),
	}

	select {
	case s.events <- ev:
	default:
		s.dropped.Add(ctx, 1)
	}
}

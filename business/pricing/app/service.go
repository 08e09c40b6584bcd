package app

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/business/pricing/domain"
	"github.com/fd1az/solarb/internal/apperror"
)

// QuoteService dispatches quoting to the quoter registered for each venue
// kind. The kind set is closed: an unregistered kind is a hard error, not a
// silent skip.
type QuoteService struct {
	quoters map[market.VenueKind]Quoter

	meter        metric.Meter
	quoteCounter metric.Int64Counter
}

// NewQuoteService creates a service over the given quoters.
func NewQuoteService(quoters ...Quoter) (*QuoteService, error) {
	s := &QuoteService{
		quoters: make(map[market.VenueKind]Quoter, len(quoters)),
		meter:   otel.Meter("pricing.quotes"),
	}
	for _, q := range quoters {
		s.quoters[q.Kind()] = q
	}

	var err error
	s.quoteCounter, err = s.meter.Int64Counter("quotes_total",
		metric.WithDescription("Number of swap quotes computed"))
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Quote prices one swap. ctx is used for metrics only; the computation itself
// never blocks.
func (s *QuoteService) Quote(ctx context.Context, venue *market.Venue, inputMint string, amountIn uint64) (domain.Quote, error) {
	q, ok := s.quoters[venue.Kind]
	if !ok {
		return domain.Quote{}, apperror.New(apperror.CodeUnsupportedVenueKind,
			apperror.WithContext(string(venue.Kind)))
	}

	quote, err := q.Quote(venue, inputMint, amountIn)

	s.quoteCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(venue.Kind)),
		attribute.Bool("success", err == nil)))

	return quote, err
}

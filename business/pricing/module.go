// Package pricing implements the pricing bounded context: per-kind swap math
// behind a single quoting service.
package pricing

import (
	"context"

	market "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/business/pricing/app"
	pricingDI "github.com/fd1az/solarb/business/pricing/di"
	"github.com/fd1az/solarb/business/pricing/infra/clmm"
	"github.com/fd1az/solarb/business/pricing/infra/cpmm"
	"github.com/fd1az/solarb/business/pricing/infra/dlmm"
	"github.com/fd1az/solarb/internal/di"
	"github.com/fd1az/solarb/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct{}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// QuoteService (public - exposed to other modules). One quoter per venue
	// kind; the set is closed on purpose.
	di.RegisterToken(c, pricingDI.QuoteService, func(sr di.ServiceRegistry) *app.QuoteService {
		svc, err := app.NewQuoteService(
			cpmm.NewQuoter(market.KindRaydiumAMM),
			clmm.NewQuoter(market.KindRaydiumCLMM),
			clmm.NewQuoter(market.KindOrcaWhirlpool),
			dlmm.NewQuoter(market.KindMeteoraDLMM),
		)
		if err != nil {
			panic("failed to create quote service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup initializes the pricing module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "pricing module started")
	return nil
}

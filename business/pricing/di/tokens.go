// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/fd1az/solarb/business/pricing/app"
	"github.com/fd1az/solarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	QuoteService = di.NewToken[*app.QuoteService]("pricing.QuoteService")
)

// Helper functions for type-safe access
func GetQuoteService(c di.ServiceRegistry) *app.QuoteService {
	return di.GetToken(c, QuoteService)
}

// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/fd1az/solarb/business/market/app"
	"github.com/fd1az/solarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Registry = di.NewToken[*app.Registry]("market.Registry")
)

// Private dependency tokens - internal to market module
var (
	Sources     = di.NewToken[[]app.VenueSource]("market:sources")
	EventStream = di.NewToken[app.EventStream]("market:eventStream")
)

// Helper functions for type-safe access
func GetRegistry(c di.ServiceRegistry) *app.Registry {
	return di.GetToken(c, Registry)
}

func GetSources(c di.ServiceRegistry) []app.VenueSource {
	return di.GetToken(c, Sources)
}

func GetEventStream(c di.ServiceRegistry) app.EventStream {
	return di.GetToken(c, EventStream)
}

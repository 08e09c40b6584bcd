// Package market implements the market bounded context: venue discovery,
// snapshot publication and the live market feed.
package market

import (
	"context"
	"time"

	"github.com/fd1az/solarb/business/market/app"
	marketDI "github.com/fd1az/solarb/business/market/di"
	"github.com/fd1az/solarb/business/market/infra/meteora"
	"github.com/fd1az/solarb/business/market/infra/orca"
	"github.com/fd1az/solarb/business/market/infra/raydium"
	"github.com/fd1az/solarb/business/market/infra/stream"
	"github.com/fd1az/solarb/internal/config"
	"github.com/fd1az/solarb/internal/di"
	"github.com/fd1az/solarb/internal/logger"
	"github.com/fd1az/solarb/internal/monolith"
)

// Module implements the market bounded context.
type Module struct{}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Venue sources - private dependency, order decides snapshot venue order
	di.RegisterToken(c, marketDI.Sources, func(sr di.ServiceRegistry) []app.VenueSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var sources []app.VenueSource

		if cfg.Sources.Raydium.Enabled {
			src, err := raydium.NewAMMSource(sourceConfig(cfg.Sources.Raydium, raydium.DefaultConfig().BaseURL), log)
			if err != nil {
				panic("failed to create raydium source: " + err.Error())
			}
			sources = append(sources, src)
		}
		if cfg.Sources.RaydiumCLMM.Enabled {
			src, err := raydium.NewCLMMSource(sourceConfig(cfg.Sources.RaydiumCLMM, raydium.DefaultConfig().BaseURL), log)
			if err != nil {
				panic("failed to create raydium clmm source: " + err.Error())
			}
			sources = append(sources, src)
		}
		if cfg.Sources.Orca.Enabled {
			src, err := orca.NewSource(orca.Config{
				BaseURL:           orDefault(cfg.Sources.Orca.BaseURL, orca.DefaultConfig().BaseURL),
				RequestsPerMinute: cfg.Sources.Orca.RequestsPerMinute,
				Timeout:           cfg.Sources.Orca.Timeout,
			}, log)
			if err != nil {
				panic("failed to create orca source: " + err.Error())
			}
			sources = append(sources, src)
		}
		if cfg.Sources.Meteora.Enabled {
			src, err := meteora.NewSource(meteora.Config{
				BaseURL:           orDefault(cfg.Sources.Meteora.BaseURL, meteora.DefaultConfig().BaseURL),
				RequestsPerMinute: cfg.Sources.Meteora.RequestsPerMinute,
				Timeout:           cfg.Sources.Meteora.Timeout,
			}, log)
			if err != nil {
				panic("failed to create meteora source: " + err.Error())
			}
			sources = append(sources, src)
		}

		return sources
	})

	// Event stream - private dependency, optional
	di.RegisterToken(c, marketDI.EventStream, func(sr di.ServiceRegistry) app.EventStream {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if !cfg.Stream.Enabled {
			return nil
		}
		s, err := stream.New(stream.Config{URL: cfg.Stream.URL, Buffer: cfg.Stream.Buffer}, log)
		if err != nil {
			panic("failed to create market stream: " + err.Error())
		}
		return s
	})

	// Registry (public - exposed to other modules)
	di.RegisterToken(c, marketDI.Registry, func(sr di.ServiceRegistry) *app.Registry {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		sources := marketDI.GetSources(sr)

		registry, err := app.NewRegistry(app.RegistryConfig{TTL: cfg.Registry.TTL}, log, sources...)
		if err != nil {
			panic("failed to create venue registry: " + err.Error())
		}
		return registry
	})

	return nil
}

// Startup warms the registry and connects the market feed.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	registry := marketDI.GetRegistry(mono.Services())

	// Initial refresh; sources may still be flaky at boot, so keep going on
	// failure and let the first scan cycle retry.
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := registry.Refresh(warmCtx, true); err != nil {
		log.Warn(ctx, "initial registry refresh failed", "error", err)
	}

	if s := marketDI.GetEventStream(mono.Services()); s != nil {
		if connector, ok := s.(interface{ Connect(context.Context) error }); ok {
			if err := connector.Connect(ctx); err != nil {
				log.Warn(ctx, "market stream connection failed", "error", err)
			}
		}
	}

	log.Info(ctx, "market module started")
	return nil
}

func sourceConfig(src config.SourceConfig, defaultURL string) raydium.Config {
	return raydium.Config{
		BaseURL:           orDefault(src.BaseURL, defaultURL),
		RequestsPerMinute: src.RequestsPerMinute,
		Timeout:           src.Timeout,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Package main is the entry point for the solarb arbitrage scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fd1az/solarb/business/arbitrage"
	arbitrageApp "github.com/fd1az/solarb/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/solarb/business/arbitrage/di"
	"github.com/fd1az/solarb/business/execution"
	executionDI "github.com/fd1az/solarb/business/execution/di"
	"github.com/fd1az/solarb/business/market"
	marketDI "github.com/fd1az/solarb/business/market/di"
	marketDomain "github.com/fd1az/solarb/business/market/domain"
	"github.com/fd1az/solarb/business/pricing"
	"github.com/fd1az/solarb/internal/apm"
	"github.com/fd1az/solarb/internal/config"
	"github.com/fd1az/solarb/internal/health"
	"github.com/fd1az/solarb/internal/logger"
	"github.com/fd1az/solarb/internal/metrics"
	"github.com/fd1az/solarb/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	once := flag.Bool("once", false, "Run a single scan cycle and exit")
	quiet := flag.Bool("quiet", false, "Suppress the console report")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("solarb %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath, *once, *quiet); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, once, quiet bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	log := logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
	log.Info(ctx, "starting solarb",
		"version", version,
		"environment", cfg.App.Environment,
		"execution_mode", cfg.Execution.Mode,
	)

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Start health check server on port 8081
	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&market.Module{},    // Must be first - provides the venue registry
		&pricing.Module{},   // Quoters over market venue state
		&execution.Module{}, // Sink, fees and the executor
		&arbitrage.Module{}, // Depends on market, pricing and execution
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	orchestrator := arbitrageDI.GetOrchestrator(mono.Services())
	sink := executionDI.GetSink(mono.Services())

	var events <-chan marketDomain.MarketEvent
	if stream := marketDI.GetEventStream(mono.Services()); stream != nil {
		events = stream.Events()
		defer stream.Close()
	}

	var console consoleReporter
	if !quiet {
		console = arbitrageDI.GetConsole(mono.Services())
	}

	err = scan(ctx, orchestrator, console, events, once)

	// Let in-flight executions finish before tearing the process down.
	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if derr := sink.Drain(drainCtx); derr != nil {
		log.Warn(ctx, "shutdown with executions still in flight", "error", derr)
	}

	return err
}

// consoleReporter is what the scan loop needs from the console; nil disables it.
type consoleReporter interface {
	Start()
	ReportCycle(report *arbitrageApp.CycleReport)
	Stop()
}

func scan(
	ctx context.Context,
	orchestrator *arbitrageApp.Orchestrator,
	console consoleReporter,
	events <-chan marketDomain.MarketEvent,
	once bool,
) error {
	if console != nil {
		console.Start()
		defer console.Stop()
	}

	if once {
		report, err := orchestrator.RunCycle(ctx)
		if err != nil {
			return err
		}
		if console != nil {
			console.ReportCycle(report)
		}
		return nil
	}

	return orchestrator.Run(ctx, events, func(report *arbitrageApp.CycleReport) {
		if console != nil {
			console.ReportCycle(report)
		}
	})
}

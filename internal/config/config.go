// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	Sources    SourcesConfig    `mapstructure:"sources"`
	Stream     StreamConfig     `mapstructure:"stream"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Strategies StrategiesConfig `mapstructure:"strategies"`
	Sink       SinkConfig       `mapstructure:"sink"`
	Execution  ExecutionConfig  `mapstructure:"execution"`
	Fees       FeesConfig       `mapstructure:"fees"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// RegistryConfig holds venue registry settings.
type RegistryConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// SourceConfig holds one venue source's settings.
type SourceConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	BaseURL           string        `mapstructure:"base_url"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// SourcesConfig holds per-venue source settings.
type SourcesConfig struct {
	Raydium     SourceConfig `mapstructure:"raydium"`
	RaydiumCLMM SourceConfig `mapstructure:"raydium_clmm"`
	Orca        SourceConfig `mapstructure:"orca"`
	Meteora     SourceConfig `mapstructure:"meteora"`
}

// StreamConfig holds the live market feed settings.
type StreamConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Buffer  int    `mapstructure:"buffer"`
}

// SimulationConfig holds path simulator settings.
type SimulationConfig struct {
	ConcurrencyLimit int64  `mapstructure:"concurrency_limit"`
	BatchSize        int    `mapstructure:"batch_size"`
	AmountBucket     uint64 `mapstructure:"amount_bucket"`
}

// ExhaustiveStrategyConfig holds the exhaustive scan settings.
type ExhaustiveStrategyConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Starts        []string `mapstructure:"starts"`
	MinHops       int      `mapstructure:"min_hops"`
	MaxHops       int      `mapstructure:"max_hops"`
	TopK          int      `mapstructure:"top_k"`
	AmountIn      uint64   `mapstructure:"amount_in"`
	ForceRefresh  bool     `mapstructure:"force_refresh"`
	Intermediates []string `mapstructure:"intermediates"`
}

// ReplayStrategyConfig holds a replay strategy's settings.
type ReplayStrategyConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	AmountIn uint64 `mapstructure:"amount_in"`
}

// StrategiesConfig holds the orchestrator's strategy settings.
type StrategiesConfig struct {
	ScanInterval   time.Duration            `mapstructure:"scan_interval"`
	ReplayDir      string                   `mapstructure:"replay_dir"`
	Exhaustive     ExhaustiveStrategyConfig `mapstructure:"exhaustive"`
	ReplayBest     ReplayStrategyConfig     `mapstructure:"replay_best"`
	ReplayTemplate ReplayStrategyConfig     `mapstructure:"replay_template"`
}

// SinkConfig holds opportunity sink admission settings.
type SinkConfig struct {
	MinProfitLamports int64    `mapstructure:"min_profit_lamports"`
	MaxSlippageBps    uint32   `mapstructure:"max_slippage_bps"`
	MaxInFlight       int64    `mapstructure:"max_in_flight"`
	AllowedMints      []string `mapstructure:"allowed_mints"`
}

// ExecutionConfig holds transaction submission settings.
type ExecutionConfig struct {
	Mode      string        `mapstructure:"mode"`
	SubmitURL string        `mapstructure:"submit_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// FeesConfig holds priority fee estimation settings.
type FeesConfig struct {
	RPCURL   string        `mapstructure:"rpc_url"`
	Strategy string        `mapstructure:"strategy"`
	TTL      time.Duration `mapstructure:"ttl"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MinFee   uint64        `mapstructure:"min_fee"`
	MaxFee   uint64        `mapstructure:"max_fee"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("SOLARB")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "SOLARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SOLARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SOLARB_LOG_LEVEL", "LOG_LEVEL")

	// Registry
	v.BindEnv("registry.ttl", "SOLARB_REGISTRY_TTL")

	// Sources
	v.BindEnv("sources.raydium.enabled", "SOLARB_RAYDIUM_ENABLED")
	v.BindEnv("sources.raydium.base_url", "SOLARB_RAYDIUM_URL")
	v.BindEnv("sources.raydium_clmm.enabled", "SOLARB_RAYDIUM_CLMM_ENABLED")
	v.BindEnv("sources.orca.enabled", "SOLARB_ORCA_ENABLED")
	v.BindEnv("sources.orca.base_url", "SOLARB_ORCA_URL")
	v.BindEnv("sources.meteora.enabled", "SOLARB_METEORA_ENABLED")
	v.BindEnv("sources.meteora.base_url", "SOLARB_METEORA_URL")

	// Stream
	v.BindEnv("stream.enabled", "SOLARB_STREAM_ENABLED")
	v.BindEnv("stream.url", "SOLARB_STREAM_URL")

	// Strategies
	v.BindEnv("strategies.scan_interval", "SOLARB_SCAN_INTERVAL")
	v.BindEnv("strategies.replay_dir", "SOLARB_REPLAY_DIR")
	v.BindEnv("strategies.exhaustive.amount_in", "SOLARB_AMOUNT_IN")

	// Sink
	v.BindEnv("sink.min_profit_lamports", "SOLARB_MIN_PROFIT_LAMPORTS")
	v.BindEnv("sink.max_slippage_bps", "SOLARB_MAX_SLIPPAGE_BPS")
	v.BindEnv("sink.max_in_flight", "SOLARB_MAX_IN_FLIGHT")

	// Execution
	v.BindEnv("execution.mode", "SOLARB_EXECUTION_MODE", "EXECUTION_MODE")
	v.BindEnv("execution.submit_url", "SOLARB_SUBMIT_URL")

	// Fees
	v.BindEnv("fees.rpc_url", "SOLARB_FEE_RPC_URL", "SOLANA_RPC_URL")
	v.BindEnv("fees.strategy", "SOLARB_FEE_STRATEGY")

	// Telemetry
	v.BindEnv("telemetry.enabled", "SOLARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SOLARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "SOLARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "solarb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Registry defaults
	v.SetDefault("registry.ttl", "30s")

	// Source defaults
	v.SetDefault("sources.raydium.enabled", true)
	v.SetDefault("sources.raydium.requests_per_minute", 60)
	v.SetDefault("sources.raydium.timeout", "10s")
	v.SetDefault("sources.raydium_clmm.enabled", true)
	v.SetDefault("sources.raydium_clmm.requests_per_minute", 60)
	v.SetDefault("sources.raydium_clmm.timeout", "10s")
	v.SetDefault("sources.orca.enabled", true)
	v.SetDefault("sources.orca.requests_per_minute", 60)
	v.SetDefault("sources.orca.timeout", "10s")
	v.SetDefault("sources.meteora.enabled", true)
	v.SetDefault("sources.meteora.requests_per_minute", 60)
	v.SetDefault("sources.meteora.timeout", "10s")

	// Stream defaults
	v.SetDefault("stream.enabled", false)
	v.SetDefault("stream.buffer", 256)

	// Simulation defaults
	v.SetDefault("simulation.concurrency_limit", 8)
	v.SetDefault("simulation.batch_size", 64)
	v.SetDefault("simulation.amount_bucket", 0)

	// Strategy defaults: exhaustive triangular scan from SOL
	v.SetDefault("strategies.scan_interval", "5s")
	v.SetDefault("strategies.replay_dir", "./data")
	v.SetDefault("strategies.exhaustive.enabled", true)
	v.SetDefault("strategies.exhaustive.min_hops", 2)
	v.SetDefault("strategies.exhaustive.max_hops", 3)
	v.SetDefault("strategies.exhaustive.top_k", 10)
	v.SetDefault("strategies.exhaustive.amount_in", 1_000_000_000) // 1 SOL
	v.SetDefault("strategies.replay_best.enabled", false)
	v.SetDefault("strategies.replay_template.enabled", false)

	// Sink defaults
	v.SetDefault("sink.min_profit_lamports", 100_000)
	v.SetDefault("sink.max_slippage_bps", 50)
	v.SetDefault("sink.max_in_flight", 4)

	// Execution defaults
	v.SetDefault("execution.mode", "simulate")
	v.SetDefault("execution.timeout", "30s")

	// Fees defaults
	v.SetDefault("fees.rpc_url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("fees.strategy", "conservative")
	v.SetDefault("fees.ttl", "10s")
	v.SetDefault("fees.timeout", "5s")
	v.SetDefault("fees.min_fee", 1000)
	v.SetDefault("fees.max_fee", 2_000_000)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "solarb")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Execution.Mode {
	case "simulate", "paper", "live":
	default:
		return fmt.Errorf("invalid execution.mode: %s", c.Execution.Mode)
	}
	if c.Execution.Mode == "live" && c.Execution.SubmitURL == "" {
		return fmt.Errorf("execution.submit_url is required in live mode")
	}
	switch c.Fees.Strategy {
	case "conservative", "profit_based", "aggressive":
	default:
		return fmt.Errorf("invalid fees.strategy: %s", c.Fees.Strategy)
	}
	if c.Strategies.Exhaustive.Enabled && c.Strategies.Exhaustive.MaxHops < c.Strategies.Exhaustive.MinHops {
		return fmt.Errorf("strategies.exhaustive.max_hops must be >= min_hops")
	}
	if !c.Sources.Raydium.Enabled && !c.Sources.RaydiumCLMM.Enabled &&
		!c.Sources.Orca.Enabled && !c.Sources.Meteora.Enabled {
		return fmt.Errorf("at least one venue source must be enabled")
	}
	if c.Stream.Enabled && c.Stream.URL == "" {
		return fmt.Errorf("stream.url is required when stream.enabled")
	}
	return nil
}

package config

import (
	"time"

	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/engine"
	"mercator-hq/routecost/pkg/sustain"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8090"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = int64(1048576) // 1MB
	DefaultCacheEnabled    = true
	DefaultCacheMaxEntries = int64(10000)
	DefaultCacheTTL        = 5 * time.Minute
	DefaultWatchConfig     = false

	// Sustainability defaults
	DefaultPhoneChargeWh      = sustain.DefaultPhoneChargeWh
	DefaultHouseholdKWhPerDay = sustain.DefaultHouseholdKWhPerDay
	DefaultGridKgCO2ePerKWh   = sustain.DefaultGridKgCO2ePerKWh

	// Engine defaults
	DefaultEngineLatencyMs     = engine.DefaultLatencyMs
	DefaultEngineThroughputTPS = engine.DefaultThroughputTPS
	DefaultEngineQualityScore  = engine.DefaultQualityScore

	// History defaults
	DefaultHistoryEnabled            = true
	DefaultHistoryBackend            = "sqlite"
	DefaultHistorySQLitePath         = "data/history.db"
	DefaultHistorySQLiteDriver       = "sqlite"
	DefaultHistorySQLiteMaxOpenConns = 10
	DefaultHistorySQLiteMaxIdleConns = 5
	DefaultHistorySQLiteWALMode      = true
	DefaultHistorySQLiteBusyTimeout  = 5 * time.Second
	DefaultHistoryRetentionDays      = 90
	DefaultHistoryRetentionSchedule  = "0 3 * * *"
	DefaultHistoryQueryDefaultLimit  = 100
	DefaultHistoryQueryMaxLimit      = 10000

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "json"
	DefaultMetricsEnabled      = true
	DefaultPrometheusPath      = "/metrics"
	DefaultMetricsNamespace    = "routecost"
	DefaultTracingEnabled      = false
	DefaultTracingServiceName  = "routecost"
	DefaultTracingSamplingRate = 1.0
	DefaultTracingInsecure     = true
	DefaultTracingTimeout      = 10 * time.Second
)

// DefaultCostBuckets are the histogram buckets for per-request cost.
var DefaultCostBuckets = []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5}

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	cfg := seedConfig()
	ApplyDefaults(cfg)
	return cfg
}

// seedConfig returns a Config holding the defaults that a zero value cannot
// express: booleans that default to true and a retention period where 0
// means "keep forever". LoadConfig decodes YAML on top of it so an explicit
// false or 0 in the file wins.
func seedConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Cache:       CacheConfig{Enabled: DefaultCacheEnabled},
			WatchConfig: DefaultWatchConfig,
		},
		History: HistoryConfig{
			Enabled:   DefaultHistoryEnabled,
			SQLite:    SQLiteConfig{WALMode: DefaultHistorySQLiteWALMode},
			Retention: RetentionConfig{Days: DefaultHistoryRetentionDays},
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{
				Enabled:  DefaultTracingEnabled,
				Insecure: DefaultTracingInsecure,
			},
		},
	}
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.Cache.MaxEntries == 0 {
		cfg.Server.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if cfg.Server.Cache.TTL == 0 {
		cfg.Server.Cache.TTL = DefaultCacheTTL
	}

	// Catalog defaults
	if len(cfg.Catalog.Models) == 0 {
		cfg.Catalog.Models = DefaultModels()
	}

	// Sustainability defaults
	if cfg.Sustainability.PhoneChargeWh == 0 {
		cfg.Sustainability.PhoneChargeWh = DefaultPhoneChargeWh
	}
	if cfg.Sustainability.HouseholdKWhPerDay == 0 {
		cfg.Sustainability.HouseholdKWhPerDay = DefaultHouseholdKWhPerDay
	}
	if cfg.Sustainability.GridKgCO2ePerKWh == 0 {
		cfg.Sustainability.GridKgCO2ePerKWh = DefaultGridKgCO2ePerKWh
	}

	// Engine defaults; Workers stays 0 and resolves to NumCPU in the engine
	if cfg.Engine.DefaultLatencyMs == 0 {
		cfg.Engine.DefaultLatencyMs = DefaultEngineLatencyMs
	}
	if cfg.Engine.DefaultThroughputTPS == 0 {
		cfg.Engine.DefaultThroughputTPS = DefaultEngineThroughputTPS
	}
	if cfg.Engine.DefaultQualityScore == 0 {
		cfg.Engine.DefaultQualityScore = DefaultEngineQualityScore
	}

	// History defaults
	if cfg.History.Backend == "" {
		cfg.History.Backend = DefaultHistoryBackend
	}
	if cfg.History.SQLite.Path == "" {
		cfg.History.SQLite.Path = DefaultHistorySQLitePath
	}
	if cfg.History.SQLite.Driver == "" {
		cfg.History.SQLite.Driver = DefaultHistorySQLiteDriver
	}
	if cfg.History.SQLite.MaxOpenConns == 0 {
		cfg.History.SQLite.MaxOpenConns = DefaultHistorySQLiteMaxOpenConns
	}
	if cfg.History.SQLite.MaxIdleConns == 0 {
		cfg.History.SQLite.MaxIdleConns = DefaultHistorySQLiteMaxIdleConns
	}
	if cfg.History.SQLite.BusyTimeout == 0 {
		cfg.History.SQLite.BusyTimeout = DefaultHistorySQLiteBusyTimeout
	}
	if cfg.History.Retention.PruneSchedule == "" {
		cfg.History.Retention.PruneSchedule = DefaultHistoryRetentionSchedule
	}
	if cfg.History.Query.DefaultLimit == 0 {
		cfg.History.Query.DefaultLimit = DefaultHistoryQueryDefaultLimit
	}
	if cfg.History.Query.MaxLimit == 0 {
		cfg.History.Query.MaxLimit = DefaultHistoryQueryMaxLimit
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.CostBuckets) == 0 {
		cfg.Telemetry.Metrics.CostBuckets = append([]float64(nil), DefaultCostBuckets...)
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}

// DefaultModels is the catalog used when the configuration lists no models.
// Prices are per 1000 tokens in USD.
func DefaultModels() []catalog.PricingModel {
	return []catalog.PricingModel{
		{
			ID: "gpt-4o-mini", Name: "GPT-4o mini", Provider: "openai",
			InputPricePer1K: 0.00015, OutputPricePer1K: 0.0006,
			ImagePrice: 0.001, BatchDiscount: 0.5,
			EnergyPer1KTokensWh: 0.3, EnergyPerRequestWh: 0.05,
			QualityScore: 0.8, LatencyMs: 600, ThroughputTPS: 120, PopularityRank: 1,
		},
		{
			ID: "gpt-4o", Name: "GPT-4o", Provider: "openai",
			InputPricePer1K: 0.0025, OutputPricePer1K: 0.01,
			ImagePrice: 0.00765, AudioMinutePrice: 0.06, BatchDiscount: 0.5,
			EnergyPer1KTokensWh: 2.9, EnergyPerRequestWh: 0.3,
			QualityScore: 0.92, LatencyMs: 900, ThroughputTPS: 80, PopularityRank: 2,
		},
		{
			ID: "claude-3-5-sonnet", Name: "Claude 3.5 Sonnet", Provider: "anthropic",
			InputPricePer1K: 0.003, OutputPricePer1K: 0.015,
			ImagePrice: 0.0048, BatchDiscount: 0.5,
			EnergyPer1KTokensWh: 3.1, EnergyPerRequestWh: 0.3,
			QualityScore: 0.94, LatencyMs: 1100, ThroughputTPS: 70, PopularityRank: 3,
		},
		{
			ID: "claude-3-haiku", Name: "Claude 3 Haiku", Provider: "anthropic",
			InputPricePer1K: 0.00025, OutputPricePer1K: 0.00125,
			BatchDiscount: 0.5,
			EnergyPer1KTokensWh: 0.4, EnergyPerRequestWh: 0.05,
			QualityScore: 0.75, LatencyMs: 500, ThroughputTPS: 150, PopularityRank: 4,
		},
		{
			ID: "llama-3.1-70b", Name: "Llama 3.1 70B", Provider: "meta",
			PricePer1K: 0.00088,
			EnergyPer1KTokensWh: 1.8, EnergyPerRequestWh: 0.2,
			QualityScore: 0.85, LatencyMs: 800, ThroughputTPS: 90, PopularityRank: 5,
		},
		{
			ID: "gpt-4-turbo", Name: "GPT-4 Turbo", Provider: "openai",
			InputPricePer1K: 0.01, OutputPricePer1K: 0.03,
			EnergyPer1KTokensWh: 4.2, EnergyPerRequestWh: 0.4,
			QualityScore: 0.9, LatencyMs: 1500, ThroughputTPS: 40, PopularityRank: 6,
			Deprecated: true,
		},
	}
}

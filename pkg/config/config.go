package config

import (
	"time"

	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/routers"
)

// Config is the root configuration structure for routecost.
// It holds the model catalog, the router path, the sustainability
// assumptions, engine defaults, run history storage, the HTTP server and
// telemetry settings.
type Config struct {
	// Server contains HTTP API server configuration including listen address,
	// timeouts, and the estimate cache.
	Server ServerConfig `yaml:"server"`

	// Catalog contains the priced models requests can be routed to.
	Catalog CatalogConfig `yaml:"catalog"`

	// Routers is the ordered router path applied to every estimate.
	// Only enabled routers take a fee.
	Routers []routers.RouterFee `yaml:"routers"`

	// Sustainability contains the assumptions used to convert energy into
	// equivalents.
	Sustainability SustainabilityConfig `yaml:"sustainability"`

	// Engine contains defaults for model fields that a catalog entry leaves
	// empty, and the worker limit for comparisons and batches.
	Engine EngineConfig `yaml:"engine"`

	// History contains configuration for run record storage and retention.
	History HistoryConfig `yaml:"history"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8090", "0.0.0.0:8090").
	// Default: "127.0.0.1:8090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits the size of request bodies.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// Cache contains estimate result cache configuration.
	Cache CacheConfig `yaml:"cache"`

	// WatchConfig reloads the catalog, router path and assumptions when the
	// configuration file changes.
	// Default: false
	WatchConfig bool `yaml:"watch_config"`
}

// CacheConfig contains configuration for the estimate result cache.
type CacheConfig struct {
	// Enabled controls whether identical estimate requests are served from
	// cache.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// MaxEntries is the approximate maximum number of cached results.
	// Default: 10000
	MaxEntries int64 `yaml:"max_entries"`

	// TTL is how long a cached result stays valid.
	// Default: 5m
	TTL time.Duration `yaml:"ttl"`
}

// CatalogConfig contains the model catalog.
type CatalogConfig struct {
	// Models lists the priced models in catalog order. Order breaks ties
	// when comparing models of equal cost.
	Models []catalog.PricingModel `yaml:"models"`
}

// SustainabilityConfig contains energy conversion assumptions.
type SustainabilityConfig struct {
	// PhoneChargeWh is the energy of one smartphone charge in Wh.
	// Default: 12
	PhoneChargeWh float64 `yaml:"phone_charge_wh"`

	// HouseholdKWhPerDay is the daily consumption of one household in kWh.
	// Default: 10
	HouseholdKWhPerDay float64 `yaml:"household_kwh_per_day"`

	// GridKgCO2ePerKWh is the grid carbon intensity in kg CO2e per kWh.
	// Default: 0.40
	GridKgCO2ePerKWh float64 `yaml:"grid_kg_co2e_per_kwh"`
}

// EngineConfig contains cost engine defaults.
type EngineConfig struct {
	// DefaultLatencyMs is used for models without a latency figure.
	// Default: 1000
	DefaultLatencyMs float64 `yaml:"default_latency_ms"`

	// DefaultThroughputTPS is used for models without a throughput figure.
	// Default: 50
	DefaultThroughputTPS float64 `yaml:"default_throughput_tps"`

	// DefaultQualityScore is used for models without a positive quality score.
	// Default: 1.0
	DefaultQualityScore float64 `yaml:"default_quality_score"`

	// Workers bounds concurrent evaluations in compare and batch operations.
	// 0 means one worker per CPU.
	// Default: 0
	Workers int `yaml:"workers"`
}

// HistoryConfig contains configuration for run record storage.
type HistoryConfig struct {
	// Enabled controls whether estimates are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend specifies the storage backend for run records.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Query contains query configuration.
	Query QueryConfig `yaml:"query"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (pure Go, modernc.org/sqlite), "sqlite3" (cgo, mattn/go-sqlite3)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain run records.
	// 0 means keep records forever.
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// QueryConfig contains history query configuration.
type QueryConfig struct {
	// DefaultLimit is the number of records returned when no limit is given.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit is the maximum number of records a single query returns.
	// Default: 10000
	MaxLimit int `yaml:"max_limit"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "routecost"
	Namespace string `yaml:"namespace"`

	// CostBuckets defines histogram buckets for per-request cost.
	// Default: [0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5]
	CostBuckets []float64 `yaml:"cost_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "routecost"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

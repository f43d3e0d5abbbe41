package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"

	"mercator-hq/routecost/pkg/calcerr"
	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/routers"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateCatalog(&cfg.Catalog)...)
	errs = append(errs, validateRouters(cfg.Routers)...)
	errs = append(errs, validateSustainability(cfg)...)
	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}

	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server",
			Message: "timeouts must be non-negative",
		})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be non-negative",
		})
	}
	if cfg.Cache.Enabled && cfg.Cache.MaxEntries <= 0 {
		errs = append(errs, FieldError{
			Field:   "server.cache.max_entries",
			Message: "max entries must be positive when the cache is enabled",
		})
	}

	return errs
}

// validateCatalog validates the model catalog.
func validateCatalog(cfg *CatalogConfig) []FieldError {
	if _, err := catalog.New(cfg.Models); err != nil {
		return []FieldError{domainFieldError("catalog", err)}
	}
	return nil
}

// validateRouters validates the router path.
func validateRouters(path []routers.RouterFee) []FieldError {
	if err := routers.RouterPath(path).Validate(); err != nil {
		return []FieldError{domainFieldError("", err)}
	}
	return nil
}

// validateSustainability validates the sustainability assumptions.
func validateSustainability(cfg *Config) []FieldError {
	if err := cfg.Assumptions().Validate(); err != nil {
		return []FieldError{domainFieldError("sustainability", err)}
	}
	return nil
}

// validateEngine validates engine defaults.
func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError

	if cfg.DefaultLatencyMs < 0 {
		errs = append(errs, FieldError{Field: "engine.default_latency_ms", Message: "must be non-negative"})
	}
	if cfg.DefaultThroughputTPS < 0 {
		errs = append(errs, FieldError{Field: "engine.default_throughput_tps", Message: "must be non-negative"})
	}
	if cfg.DefaultQualityScore < 0 {
		errs = append(errs, FieldError{Field: "engine.default_quality_score", Message: "must be non-negative"})
	}
	if cfg.Workers < 0 {
		errs = append(errs, FieldError{Field: "engine.workers", Message: "must be non-negative"})
	}

	return errs
}

// validateHistory validates history configuration.
func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	// If history is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "history.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" {
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "history.sqlite.path",
				Message: "SQLite path is required when backend is 'sqlite'",
			})
		}
		validDrivers := map[string]bool{"sqlite": true, "sqlite3": true}
		if !validDrivers[cfg.SQLite.Driver] {
			errs = append(errs, FieldError{
				Field:   "history.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.SQLite.Driver),
			})
		}
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.Days > 3650 {
		errs = append(errs, FieldError{
			Field:   "history.retention.days",
			Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention.max_records",
			Message: "max records must be non-negative",
		})
	}
	if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "history.retention.prune_schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Retention.PruneSchedule, err),
		})
	}

	if cfg.Query.DefaultLimit <= 0 || cfg.Query.MaxLimit <= 0 {
		errs = append(errs, FieldError{
			Field:   "history.query",
			Message: "query limits must be positive",
		})
	} else if cfg.Query.DefaultLimit > cfg.Query.MaxLimit {
		errs = append(errs, FieldError{
			Field:   "history.query.default_limit",
			Message: "default limit must not exceed max limit",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}
	for i := 1; i < len(cfg.Metrics.CostBuckets); i++ {
		if cfg.Metrics.CostBuckets[i] <= cfg.Metrics.CostBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.cost_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}

// domainFieldError converts a calcerr error into a FieldError rooted at prefix.
func domainFieldError(prefix string, err error) FieldError {
	var (
		verr *calcerr.ValidationError
		cerr *calcerr.ConfigurationError
	)
	switch {
	case errors.As(err, &verr):
		return FieldError{Field: joinField(prefix, verr.Field), Message: verr.Message}
	case errors.As(err, &cerr):
		return FieldError{Field: joinField(prefix, cerr.Field), Message: cerr.Message}
	default:
		return FieldError{Field: prefix, Message: err.Error()}
	}
}

func joinField(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}

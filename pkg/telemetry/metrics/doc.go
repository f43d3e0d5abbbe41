// Package metrics provides Prometheus metrics collection for routecost.
//
// # Metrics Categories
//
//   - Operation Metrics: count and duration of estimate, compare, batch and quote calls
//   - Cost Metrics: estimated spend, commission and per-request cost by model
//   - Energy Metrics: estimated energy and CO2e by model
//   - History Metrics: stored, pruned and failed run records
//   - Cache Metrics: response cache hits, misses and sizes
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordOperation("estimate", "success", elapsed)
//	collector.RecordEstimate("gpt-4o", metrics.EstimateSample{TotalCost: 1.25})
//	mux.Handle("/metrics", collector.Handler())
//
// All Collector methods are safe to call on a nil Collector and become
// no-ops when metrics are disabled, so callers never need to guard them.
//
// Model labels pass through a CardinalityLimiter; once the limit is hit,
// unseen models are reported as "other".
package metrics

package engine

import "runtime"

const (
	// DefaultLatencyMs is used when a model does not declare its latency.
	DefaultLatencyMs = 1000.0

	// DefaultThroughputTPS is used when a model does not declare throughput.
	DefaultThroughputTPS = 50.0

	// DefaultQualityScore is used when a model has no positive quality score.
	DefaultQualityScore = 1.0
)

// Options configures an Engine. Zero fields take their defaults in New.
type Options struct {
	// DefaultLatencyMs substitutes a missing model latency.
	// Default: 1000
	DefaultLatencyMs float64

	// DefaultThroughputTPS substitutes a missing model throughput.
	// Default: 50
	DefaultThroughputTPS float64

	// DefaultQualityScore substitutes a missing or non-positive quality score.
	// Default: 1.0
	DefaultQualityScore float64

	// Workers bounds the concurrency of CompareModels and CalculateBatch.
	// Default: runtime.NumCPU()
	Workers int
}

// DefaultOptions returns Options with every field at its default.
func DefaultOptions() Options {
	return Options{
		DefaultLatencyMs:     DefaultLatencyMs,
		DefaultThroughputTPS: DefaultThroughputTPS,
		DefaultQualityScore:  DefaultQualityScore,
		Workers:              runtime.NumCPU(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DefaultLatencyMs <= 0 {
		o.DefaultLatencyMs = d.DefaultLatencyMs
	}
	if o.DefaultThroughputTPS <= 0 {
		o.DefaultThroughputTPS = d.DefaultThroughputTPS
	}
	if o.DefaultQualityScore <= 0 {
		o.DefaultQualityScore = d.DefaultQualityScore
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	return o
}

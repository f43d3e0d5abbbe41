package metrics

import (
	"time"

	"mercator-hq/routecost/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics tracks calls into the calculation engine.
//
// Metrics:
//   - routecost_operations_total: operation count by operation and status
//   - routecost_operation_duration_seconds: operation latency histogram
//   - routecost_batch_size: number of models evaluated per batch or compare call
type OperationMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	batchSize         *prometheus.HistogramVec
}

// NewOperationMetrics creates and registers operation metrics with the provided registry.
func NewOperationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *OperationMetrics {
	om := &OperationMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "operations_total",
				Help:      "Total number of engine operations",
			},
			[]string{"operation", "status"},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of engine operations in seconds",
				// Evaluation is CPU-bound: 10µs to 1s
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
			},
			[]string{"operation"},
		),

		batchSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "batch_size",
				Help:      "Number of models evaluated per batch or compare call",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		om.operationsTotal,
		om.operationDuration,
		om.batchSize,
	)

	return om
}

// Record records one operation outcome.
func (om *OperationMetrics) Record(operation, status string, duration time.Duration) {
	om.operationsTotal.WithLabelValues(operation, status).Inc()
	om.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveBatchSize records the item count of a batch call.
func (om *OperationMetrics) ObserveBatchSize(operation string, size int) {
	om.batchSize.WithLabelValues(operation).Observe(float64(size))
}

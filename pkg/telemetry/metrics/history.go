package metrics

import (
	"mercator-hq/routecost/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// HistoryMetrics tracks the run history store.
//
// Metrics:
//   - routecost_history_records_stored_total: records persisted by backend
//   - routecost_history_errors_total: failed store operations by backend and operation
//   - routecost_history_records_pruned_total: records removed by retention
type HistoryMetrics struct {
	storedTotal *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	prunedTotal prometheus.Counter
}

// NewHistoryMetrics creates and registers history metrics with the provided registry.
func NewHistoryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HistoryMetrics {
	hm := &HistoryMetrics{
		storedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "history_records_stored_total",
				Help:      "Total run records persisted",
			},
			[]string{"backend"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "history_errors_total",
				Help:      "Total failed history store operations",
			},
			[]string{"backend", "operation"},
		),
		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "history_records_pruned_total",
				Help:      "Total run records removed by retention",
			},
		),
	}

	registry.MustRegister(hm.storedTotal, hm.errorsTotal, hm.prunedTotal)
	return hm
}

// RecordStored increments the stored counter.
func (hm *HistoryMetrics) RecordStored(backend string) {
	hm.storedTotal.WithLabelValues(backend).Inc()
}

// RecordError increments the error counter.
func (hm *HistoryMetrics) RecordError(backend, operation string) {
	hm.errorsTotal.WithLabelValues(backend, operation).Inc()
}

// RecordPruned adds to the pruned counter.
func (hm *HistoryMetrics) RecordPruned(count int64) {
	if count > 0 {
		hm.prunedTotal.Add(float64(count))
	}
}

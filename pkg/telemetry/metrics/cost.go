package metrics

import (
	"mercator-hq/routecost/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CostMetrics tracks estimated spend.
//
// Metrics:
//   - routecost_estimated_cost_usd_total: summed estimated total cost by model
//   - routecost_commission_usd_total: summed router commission by model
//   - routecost_cost_per_request_usd: per-request cost distribution by model
//   - routecost_commission_rate: commission rate applied to the last estimate
type CostMetrics struct {
	costTotal       *prometheus.CounterVec
	commissionTotal *prometheus.CounterVec
	costPerRequest  *prometheus.HistogramVec
	commissionRate  prometheus.Gauge
}

// NewCostMetrics creates and registers cost metrics with the provided registry.
func NewCostMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CostMetrics {
	cm := &CostMetrics{
		costTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "estimated_cost_usd_total",
				Help:      "Total estimated cost in USD by model",
			},
			[]string{"model"},
		),

		commissionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "commission_usd_total",
				Help:      "Total estimated router commission in USD by model",
			},
			[]string{"model"},
		),

		costPerRequest: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "cost_per_request_usd",
				Help:      "Estimated cost per request in USD",
				Buckets:   cfg.CostBuckets,
			},
			[]string{"model"},
		),

		commissionRate: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "commission_rate",
				Help:      "Router commission rate applied to the most recent estimate",
			},
		),
	}

	registry.MustRegister(
		cm.costTotal,
		cm.commissionTotal,
		cm.costPerRequest,
		cm.commissionRate,
	)

	return cm
}

// Record adds one estimate's figures. Negative values are ignored since
// counters cannot decrease.
func (cm *CostMetrics) Record(model string, costPerRequest, total, commission float64) {
	if total > 0 {
		cm.costTotal.WithLabelValues(model).Add(total)
	}
	if commission > 0 {
		cm.commissionTotal.WithLabelValues(model).Add(commission)
	}
	if costPerRequest >= 0 {
		cm.costPerRequest.WithLabelValues(model).Observe(costPerRequest)
	}
}

// SetCommissionRate sets the commission rate gauge.
func (cm *CostMetrics) SetCommissionRate(rate float64) {
	cm.commissionRate.Set(rate)
}

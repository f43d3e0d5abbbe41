package metrics

import (
	"mercator-hq/routecost/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EnergyMetrics tracks the estimated environmental footprint.
//
// Metrics:
//   - routecost_energy_wh_total: estimated energy in watt-hours by model
//   - routecost_co2e_kg_total: estimated emissions in kg CO2e by model
type EnergyMetrics struct {
	energyTotal *prometheus.CounterVec
	co2eTotal   *prometheus.CounterVec
}

// NewEnergyMetrics creates and registers energy metrics with the provided registry.
func NewEnergyMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EnergyMetrics {
	em := &EnergyMetrics{
		energyTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "energy_wh_total",
				Help:      "Total estimated energy in watt-hours by model",
			},
			[]string{"model"},
		),
		co2eTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "co2e_kg_total",
				Help:      "Total estimated emissions in kilograms CO2e by model",
			},
			[]string{"model"},
		),
	}

	registry.MustRegister(em.energyTotal, em.co2eTotal)
	return em
}

// Record adds one estimate's energy and emissions.
func (em *EnergyMetrics) Record(model string, energyWh, co2eKg float64) {
	if energyWh > 0 {
		em.energyTotal.WithLabelValues(model).Add(energyWh)
	}
	if co2eKg > 0 {
		em.co2eTotal.WithLabelValues(model).Add(co2eKg)
	}
}

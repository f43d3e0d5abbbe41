package config

import (
	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/engine"
	"mercator-hq/routecost/pkg/routers"
	"mercator-hq/routecost/pkg/sustain"
)

// BuildCatalog builds the model catalog.
func (c *Config) BuildCatalog() (*catalog.Catalog, error) {
	return catalog.New(c.Catalog.Models)
}

// RouterPath returns a copy of the configured router path.
func (c *Config) RouterPath() routers.RouterPath {
	if c.Routers == nil {
		return nil
	}
	path := make(routers.RouterPath, len(c.Routers))
	copy(path, c.Routers)
	return path
}

// Assumptions returns the sustainability assumptions.
func (c *Config) Assumptions() sustain.Assumptions {
	return sustain.Assumptions{
		PhoneChargeWh:      c.Sustainability.PhoneChargeWh,
		HouseholdKWhPerDay: c.Sustainability.HouseholdKWhPerDay,
		GridKgCO2ePerKWh:   c.Sustainability.GridKgCO2ePerKWh,
	}
}

// EngineOptions returns the cost engine options.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		DefaultLatencyMs:     c.Engine.DefaultLatencyMs,
		DefaultThroughputTPS: c.Engine.DefaultThroughputTPS,
		DefaultQualityScore:  c.Engine.DefaultQualityScore,
		Workers:              c.Engine.Workers,
	}
}

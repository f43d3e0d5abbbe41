package catalog

import (
	"fmt"
	"math"

	"mercator-hq/routecost/pkg/calcerr"
)

// Catalog is an ordered, read-only set of pricing models.
// It is safe for concurrent use because it is never mutated after New.
type Catalog struct {
	models []PricingModel
	index  map[string]int
}

// New builds a catalog from models, normalizing each entry.
// Empty IDs, duplicate IDs and negative prices are rejected.
func New(models []PricingModel) (*Catalog, error) {
	c := &Catalog{
		models: make([]PricingModel, 0, len(models)),
		index:  make(map[string]int, len(models)),
	}

	for i, m := range models {
		if err := validateModel(i, m); err != nil {
			return nil, err
		}
		if _, exists := c.index[m.ID]; exists {
			return nil, calcerr.NewValidationError(fmt.Sprintf("models[%d].id", i), "duplicate model id %q", m.ID)
		}
		c.index[m.ID] = len(c.models)
		c.models = append(c.models, m.Normalize())
	}

	return c, nil
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(models []PricingModel) *Catalog {
	c, err := New(models)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the model with the given ID.
func (c *Catalog) Lookup(id string) (PricingModel, error) {
	if c == nil {
		return PricingModel{}, calcerr.NewModelNotFoundError(id)
	}
	i, ok := c.index[id]
	if !ok {
		return PricingModel{}, calcerr.NewModelNotFoundError(id)
	}
	return c.models[i], nil
}

// Position returns the catalog iteration index of id, or -1.
func (c *Catalog) Position(id string) int {
	if c == nil {
		return -1
	}
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Models returns a copy of all models in catalog order.
func (c *Catalog) Models() []PricingModel {
	if c == nil {
		return nil
	}
	out := make([]PricingModel, len(c.models))
	copy(out, c.models)
	return out
}

// IDs returns model IDs in catalog order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, len(c.models))
	for i, m := range c.models {
		ids[i] = m.ID
	}
	return ids
}

// Len returns the number of models.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.models)
}

func validateModel(i int, m PricingModel) error {
	if m.ID == "" {
		return calcerr.NewValidationError(fmt.Sprintf("models[%d].id", i), "model id is required")
	}

	prices := map[string]float64{
		"price_per_1k":            m.PricePer1K,
		"input_price_per_1k":      m.InputPricePer1K,
		"output_price_per_1k":     m.OutputPricePer1K,
		"min_billable_tokens":     m.MinBillableTokens,
		"per_request_price":       m.PerRequestPrice,
		"image_price":             m.ImagePrice,
		"audio_minute_price":      m.AudioMinutePrice,
		"video_minute_price":      m.VideoMinutePrice,
		"energy_per_1k_tokens_wh": m.EnergyPer1KTokensWh,
		"energy_per_request_wh":   m.EnergyPerRequestWh,
		"latency_ms":              m.LatencyMs,
		"throughput_tps":          m.ThroughputTPS,
	}
	for field, v := range prices {
		if v < 0 || math.IsNaN(v) {
			return calcerr.NewValidationError(fmt.Sprintf("models[%d].%s", i, field), "must be non-negative, got %v", v)
		}
	}

	if m.BatchDiscount < 0 || m.BatchDiscount > 1 {
		return calcerr.NewValidationError(fmt.Sprintf("models[%d].batch_discount", i), "must be between 0 and 1, got %v", m.BatchDiscount)
	}

	return nil
}

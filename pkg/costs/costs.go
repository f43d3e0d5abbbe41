package costs

import (
	"math"

	"mercator-hq/routecost/pkg/calcerr"
	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/routers"
)

// Composition is the result of the legacy cost path.
type Composition struct {
	// BaseCost is the cost of the billable tokens before fees.
	BaseCost float64 `json:"base_cost"`

	// Commission is the fee taken by the router path.
	Commission float64 `json:"commission"`

	// TotalCost is BaseCost + Commission.
	TotalCost float64 `json:"total_cost"`

	// CommissionRate is the clamped summed fee rate that was applied.
	CommissionRate float64 `json:"commission_rate"`
}

// BaseCost returns the cost of tokens under model's legacy price.
func BaseCost(tokens float64, model catalog.PricingModel) (float64, error) {
	if tokens < 0 || math.IsNaN(tokens) {
		return 0, calcerr.NewValidationError("tokens", "must be non-negative, got %v", tokens)
	}

	return calculateTokenCost(math.Max(tokens, model.MinBillableTokens), model.PricePer1K), nil
}

// ComposeCost returns the base cost of tokens plus the commission of path.
func ComposeCost(tokens float64, model catalog.PricingModel, path routers.RouterPath) (Composition, error) {
	if err := path.Validate(); err != nil {
		return Composition{}, err
	}

	base, err := BaseCost(tokens, model)
	if err != nil {
		return Composition{}, err
	}

	commission := routers.Commission(base, path)

	return Composition{
		BaseCost:       base,
		Commission:     commission,
		TotalCost:      base + commission,
		CommissionRate: routers.CommissionRate(path),
	}, nil
}

// calculateTokenCost calculates the cost for a given number of tokens.
// costPer1K is the cost per 1000 tokens.
func calculateTokenCost(tokens, costPer1K float64) float64 {
	return tokens * (costPer1K / 1000)
}

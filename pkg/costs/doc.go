// Package costs provides the single-channel cost calculations: the base cost
// of a token volume and the legacy router-centric composition of base cost
// plus commission.
//
// # Pricing Model
//
// The base cost uses the model's legacy price per 1000 tokens and an optional
// minimum billable token floor:
//
//	billable = max(tokens, model.MinBillableTokens)
//	cost     = billable * model.PricePer1K / 1000
//
// ComposeCost adds the commission taken by a router path (see package
// routers) on top of the base cost. It ignores multimodal units, discounts,
// caching and retries; use package engine for those.
//
// No rounding is applied anywhere in this package. Formatting is a
// presentation concern handled by package format.
//
// # Usage
//
// Pure functions:
//
//	base, err := costs.BaseCost(1000, model)
//	quote, err := costs.ComposeCost(1000, model, path)
//	fmt.Printf("Total: $%.4f (commission %.1f%%)\n", quote.TotalCost, quote.CommissionRate*100)
//
// Calculator binds a catalog and router path so callers can quote by model
// ID. It is immutable; build a new one after a configuration reload:
//
//	calc := costs.NewCalculator(cat, path)
//	quote, err := calc.Quote("gpt-4o-mini", 1500)
//
// Router fees outside [0, routers.MaxFeePct] fail with a ValidationError.
package costs

// Package catalog holds the priced compute models a request can be routed to.
//
// A Catalog is an ordered, read-only collection of PricingModel values.
// Insertion order is significant: it is the tie-breaker when models with an
// equal total cost are ranked against each other.
//
// # Price Fields
//
// A model carries a legacy single price (PricePer1K) used by the base cost
// calculator, and split input/output prices used by the enhanced engine.
// Catalogs written against only one of the two schemes are normalized once
// when the Catalog is built:
//
//   - Input and output prices both zero: both take PricePer1K.
//   - PricePer1K zero: takes the mean of the input and output prices.
//
// Performance fields (latency, throughput, quality) are left untouched; a
// zero value there means "unknown" and consumers substitute their own
// defaults.
//
// # Usage
//
//	cat, err := catalog.New([]catalog.PricingModel{
//		{ID: "small", Name: "Small", InputPricePer1K: 0.5, OutputPricePer1K: 1.5},
//	})
//	if err != nil {
//		return err
//	}
//	m, err := cat.Lookup("small")
package catalog

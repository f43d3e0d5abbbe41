// Package routers composes the fees taken by a chain of routing
// intermediaries.
//
// A RouterPath is an ordered list of RouterFee entries, each tagged with the
// layer it sits in. Only enabled entries contribute. Fees are additive across
// every layer: five layers at 10% each yield a 50% commission rate, not the
// compounded 61%. The summed rate is clamped to [0, MaxCommissionRate] so no
// configuration can take the whole base cost.
//
//	path := routers.RouterPath{
//		{ID: "edge", Layer: 0, Name: "Edge", FeePct: 0.05, Enabled: true},
//		{ID: "aggregator", Layer: 1, Name: "Aggregator", FeePct: 0.075, Enabled: true},
//	}
//	rate := routers.CommissionRate(path)      // 0.125
//	fee := routers.Commission(2.0, path)      // 0.25
//
// Validate rejects individual fees outside [0, MaxFeePct]. The rate
// functions themselves never fail; they sum whatever they are given and then
// apply the ceiling.
package routers

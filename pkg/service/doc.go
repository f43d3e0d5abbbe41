// Package service wires the calculation core to configuration, telemetry
// and the history store.
//
// A Service holds the active catalog, configured router path,
// sustainability assumptions and engine behind a read-write lock. Apply
// swaps all of them at once when configuration is reloaded, so a single
// call never mixes two generations of pricing data.
//
// Requests that carry no router path are priced with the configured path.
// An explicitly empty path ("routers": []) opts out of commission.
//
// When a history store is attached, every successful Estimate and every
// item of a Batch is persisted as a history.RunRecord. Store failures are
// logged and counted but do not fail the estimate.
package service

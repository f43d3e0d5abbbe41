// Package engine implements the multimodal cost model.
//
// Evaluate turns a UsageRequest and a PricingModel into a Result that holds
// a scaled cost breakdown, per-unit metrics, time projections, performance
// estimates, energy figures with equivalents, and business insights.
//
// # Evaluation Order
//
// The steps run in a fixed order so historical results stay reproducible:
//
//  1. Per-channel costs (input, output, images, audio, video).
//  2. Subtotal of all channels.
//  3. Batch discount (only when BatchProcessing is set).
//  4. Cache savings: half of the output cost, scaled by the cache hit rate.
//  5. Retry penalty: the whole subtotal, scaled by the retry rate.
//  6. Router commission over the subtotal.
//  7. Per-request total, floored at zero.
//  8. Scaling to RequestsCount.
//  9. Per-unit metrics from single-request figures.
//  10. Projections.
//  11. Performance passthrough and efficiency.
//  12. Energy and equivalents.
//  13. Cost tier, optimization opportunities and risk factors.
//
// Cache hit and retry rates are clamped to [0, 1]. Negative token, unit or
// request counts are rejected with a calcerr.ValidationError. Zero counts are
// valid and produce zero-valued results.
//
// # Projections
//
// Hourly projection assumes one request per latency interval running for an
// hour, while the daily, weekly, monthly and annual projections replay the
// total 24 times a day. The two bases are not reconciled; both are kept for
// compatibility with stored results.
//
// # Concurrency
//
// An Engine holds only resolved Options and is safe for concurrent use. The
// catalog is passed into each call. CompareModels and CalculateBatch fan out
// over a bounded errgroup and restore a deterministic order afterwards.
package engine

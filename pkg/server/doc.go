// Package server exposes the cost engine over HTTP.
//
// # Routes
//
//   - POST /v1/estimate - Full estimate for one model (recorded in history)
//   - POST /v1/compare - Estimate across models, cheapest first
//   - POST /v1/batch - Estimates for heterogeneous items, input order kept
//   - POST /v1/quote - Base cost plus router commission for a token count
//   - POST /v1/equivalents - Energy display and real-world equivalents
//   - GET /v1/models - Active pricing catalog
//   - GET /v1/history - Stored run records, most recent first
//   - GET /v1/history/summary - Cumulative and per-model aggregates
//   - GET /v1/history/export - All matching records as CSV or JSON (?format=)
//   - GET /health - Liveness probe
//   - GET /ready - Readiness probe
//   - GET /metrics - Prometheus metrics (path configurable)
//
// Request bodies are JSON and unknown fields are rejected. Usage fields sit
// at the top level next to the model selector:
//
//	POST /v1/estimate
//	{"model": "gpt-4o", "input_tokens": 1200, "output_tokens": 300, "requests_count": 50}
//
// Omitting "routers" prices the request with the configured router path.
// Sending "routers": [] prices it without commission.
//
// # Errors
//
// Errors use a single envelope:
//
//	{"error": {"message": "...", "type": "invalid_request_error", "param": "input_tokens"}}
//
// Validation failures map to 400, unknown models to 404, history queries
// with recording disabled to 501 and everything else to 500.
//
// # Response Cache
//
// Compare, quote, equivalents and models responses are cached in-process
// with ristretto. Keys include the service configuration generation, and
// the cache is cleared whenever configuration is applied. Estimate and
// batch are never cached because every call is recorded.
//
// # Middleware Chain
//
// Outermost first: recovery, request ID, tracing, logging, timeout.
package server

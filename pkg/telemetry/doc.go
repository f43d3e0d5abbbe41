// Package telemetry groups the observability packages used by routecost.
//
//   - logging: structured slog logging configured from telemetry.logging
//   - metrics: Prometheus collectors for estimates, costs, energy and history
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: liveness and readiness checks for the HTTP server
package telemetry

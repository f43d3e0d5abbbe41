// Package tracing provides OpenTelemetry tracing for routecost.
//
// When tracing is enabled, spans are exported over OTLP gRPC to the
// configured collector. When disabled, New returns a Tracer backed by a
// noop provider so callers can create spans unconditionally.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "engine.estimate")
//	defer span.End()
//	tracing.SetEstimateAttributes(span, "gpt-4o", 1000, 1.25)
//
// # Propagation
//
// The HTTP server extracts W3C Trace Context headers (traceparent,
// tracestate) with Extract so estimates join an upstream caller's trace.
package tracing

package server

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"mercator-hq/routecost/pkg/telemetry/logging"
	"mercator-hq/routecost/pkg/telemetry/tracing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader is the HTTP header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.written {
		sw.statusCode = code
		sw.written = true
		sw.ResponseWriter.WriteHeader(code)
	}
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.WriteHeader(http.StatusOK)
	}
	return sw.ResponseWriter.Write(b)
}

// requestIDMiddleware reuses a client supplied X-Request-ID or generates one,
// stores it in the request context and echoes it in the response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := logging.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tracingMiddleware continues any incoming W3C trace and wraps the request
// in a server span. The span context is echoed in the response headers.
func (s *Server) tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.Extract(r.Context(), r.Header)
		ctx, span := s.tracer.Start(ctx, "HTTP "+r.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
			),
		)
		defer span.End()

		if traceID := tracing.TraceID(ctx); traceID != "" {
			ctx = logging.WithTraceID(ctx, traceID)
		}
		tracing.Inject(ctx, w.Header())

		sw := newStatusWriter(w)
		next.ServeHTTP(sw, r.WithContext(ctx))

		if pattern := chi.RouteContext(r.Context()).RoutePattern(); pattern != "" {
			span.SetName("HTTP " + r.Method + " " + pattern)
		}
		span.SetAttributes(attribute.Int("http.response.status_code", sw.statusCode))
	})
}

// loggingMiddleware logs request completion. 5xx logs at error, 4xx at warn.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := newStatusWriter(w)

		next.ServeHTTP(sw, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.statusCode,
			"latency_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		}
		if id := logging.GetRequestID(r.Context()); id != "" {
			attrs = append(attrs, "request_id", id)
		}
		if id := logging.GetTraceID(r.Context()); id != "" {
			attrs = append(attrs, "trace_id", id)
		}

		switch {
		case sw.statusCode >= 500:
			s.logger.ErrorContext(r.Context(), "request completed", attrs...)
		case sw.statusCode >= 400:
			s.logger.WarnContext(r.Context(), "request completed", attrs...)
		default:
			s.logger.InfoContext(r.Context(), "request completed", attrs...)
		}
	})
}

// recoveryMiddleware turns handler panics into a 500 without leaking details.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.ErrorContext(r.Context(), "panic in handler",
					"error", rec,
					"request_id", logging.GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(errorResponse{Error: errorDetail{
					Message: "An internal error occurred.",
					Type:    errorTypeServer,
				}})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

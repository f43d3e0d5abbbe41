package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on routecost spans.
const (
	AttrModel          = "routecost.model"
	AttrModelCount     = "routecost.model_count"
	AttrRequests       = "routecost.requests"
	AttrTokensTotal    = "routecost.tokens.total"
	AttrCostTotal      = "routecost.cost.total"
	AttrCommissionRate = "routecost.commission.rate"
	AttrRouterLayers   = "routecost.router.layers"
	AttrCacheHit       = "routecost.cache.hit"
	AttrHistoryBackend = "routecost.history.backend"
)

// SetEstimateAttributes sets the attributes of a single-model estimate.
func SetEstimateAttributes(span trace.Span, model string, requests int, totalTokens, totalCost float64) {
	span.SetAttributes(
		attribute.String(AttrModel, model),
		attribute.Int(AttrRequests, requests),
		attribute.Float64(AttrTokensTotal, totalTokens),
		attribute.Float64(AttrCostTotal, totalCost),
	)
}

// SetRouterAttributes sets the commission rate and layer count of a router path.
func SetRouterAttributes(span trace.Span, rate float64, layers int) {
	span.SetAttributes(
		attribute.Float64(AttrCommissionRate, rate),
		attribute.Int(AttrRouterLayers, layers),
	)
}

// SetModelCount sets the number of models a batch or compare call evaluated.
func SetModelCount(span trace.Span, n int) {
	span.SetAttributes(attribute.Int(AttrModelCount, n))
}

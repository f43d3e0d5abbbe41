package engine

import (
	"fmt"
	"math"

	"mercator-hq/routecost/pkg/calcerr"
	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/routers"
	"mercator-hq/routecost/pkg/sustain"
)

// Thresholds for insights.
const (
	highCostPerRequest  = 0.10
	lowCacheHitRate     = 0.3
	highEnergyWh        = 100.0
	highCommissionRate  = 0.25
	highRetryRate       = 0.1
	highVolumeRequests  = 10_000
	cacheRecoveryFactor = 0.5
	hoursPerDay         = 24
	daysPerWeek         = 7
	daysPerMonth        = 30
	daysPerYear         = 365
	secondsPerHour      = 3600
)

// Engine evaluates usage scenarios against pricing models.
type Engine struct {
	opts Options
}

// New creates an Engine, resolving zero option fields to their defaults.
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Options returns the resolved options.
func (e *Engine) Options() Options {
	return e.opts
}

// Evaluate looks modelID up in cat and evaluates req against it.
func (e *Engine) Evaluate(cat *catalog.Catalog, modelID string, req UsageRequest, a sustain.Assumptions) (*Result, error) {
	model, err := cat.Lookup(modelID)
	if err != nil {
		return nil, err
	}
	return e.EvaluateModel(model, req, a)
}

// EvaluateModel evaluates req against model.
func (e *Engine) EvaluateModel(model catalog.PricingModel, req UsageRequest, a sustain.Assumptions) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	cacheHitRate := clampUnit(req.CacheHitRate)
	retryRate := clampUnit(req.RetryRate)
	requests := float64(req.RequestsCount)

	// Single-request figures.
	var one CostBreakdown
	one.InputCost = req.InputTokens * model.InputPricePer1K / 1000
	one.OutputCost = req.OutputTokens * model.OutputPricePer1K / 1000
	one.ImagesCost = req.Images * model.ImagePrice
	one.AudioCost = req.AudioMinutes * model.AudioMinutePrice
	one.VideoCost = req.VideoMinutes * model.VideoMinutePrice
	one.Subtotal = one.InputCost + one.OutputCost + one.ImagesCost + one.AudioCost + one.VideoCost

	if req.BatchProcessing {
		one.BatchDiscount = one.Subtotal * model.BatchDiscount
	}
	one.CacheSavings = cacheHitRate * one.OutputCost * cacheRecoveryFactor
	one.RetryPenalty = retryRate * one.Subtotal

	var commissionRate float64
	if req.Routers != nil {
		commissionRate = routers.CommissionRate(req.Routers)
		one.RouterCommission = routers.Commission(one.Subtotal, req.Routers)
	}

	one.Total = math.Max(0, one.Subtotal-one.BatchDiscount-one.CacheSavings+one.RetryPenalty+one.RouterCommission)

	breakdown := one.scale(requests)
	total := breakdown.Total
	tokens := req.TotalTokens()

	res := &Result{
		ModelID:        model.ID,
		ModelName:      model.Name,
		RequestsCount:  req.RequestsCount,
		TotalTokens:    tokens * requests,
		CommissionRate: commissionRate,
		Breakdown:      breakdown,
	}

	// Per-unit metrics.
	if req.RequestsCount > 0 {
		res.PerUnit.CostPerRequest = total / requests
	}
	res.PerUnit.CostPerInputToken = one.InputCost / math.Max(req.InputTokens, 1)
	res.PerUnit.CostPerOutputToken = one.OutputCost / math.Max(req.OutputTokens, 1)
	res.PerUnit.CostPerTotalToken = (one.InputCost + one.OutputCost) / math.Max(tokens, 1)

	// Performance.
	latencyMs := model.LatencyMs
	if latencyMs <= 0 {
		latencyMs = e.opts.DefaultLatencyMs
	}
	throughput := model.ThroughputTPS
	if throughput <= 0 {
		throughput = e.opts.DefaultThroughputTPS
	}
	quality := model.QualityScore
	if quality <= 0 {
		quality = e.opts.DefaultQualityScore
	}
	res.Performance = Performance{
		LatencyMs:           latencyMs,
		ThroughputTPS:       throughput,
		QualityScore:        quality,
		QualityAdjustedCost: res.PerUnit.CostPerRequest / quality,
	}
	if total > 0 {
		res.Performance.EfficiencyScore = tokens * requests / total
	}

	// Projections.
	daily := total * hoursPerDay
	res.Projections = Projections{
		Hourly:  total * secondsPerHour / (latencyMs / 1000),
		Daily:   daily,
		Weekly:  daily * daysPerWeek,
		Monthly: daily * daysPerMonth,
		Annual:  daily * daysPerYear,
	}

	// Sustainability.
	energyPerRequest := model.EnergyPer1KTokensWh*tokens/1000 + model.EnergyPerRequestWh
	energy := energyPerRequest * requests
	equivalents, err := sustain.ToEquivalents(energy, a)
	if err != nil {
		return nil, err
	}
	res.Sustainability = Sustainability{
		EnergyPerRequestWh: energyPerRequest,
		EnergyWh:           energy,
		Energy:             sustain.DisplayUnit(energy, "Wh"),
		Equivalents:        equivalents,
	}

	res.Insights = buildInsights(model, req, res, cacheHitRate, retryRate)

	return res, nil
}

// ClassifyTier buckets a mean per-1K price.
func ClassifyTier(avgPricePer1K float64) CostTier {
	switch {
	case avgPricePer1K < 1:
		return TierBudget
	case avgPricePer1K < 5:
		return TierMidTier
	case avgPricePer1K < 15:
		return TierPremium
	default:
		return TierEnterprise
	}
}

func buildInsights(model catalog.PricingModel, req UsageRequest, res *Result, cacheHitRate, retryRate float64) Insights {
	ins := Insights{
		CostTier:      ClassifyTier(model.AveragePricePer1K()),
		Opportunities: []Opportunity{},
		Risks:         []Risk{},
	}

	if res.PerUnit.CostPerRequest > highCostPerRequest {
		ins.Opportunities = append(ins.Opportunities, Opportunity{
			Code:    OpportunitySmallerModel,
			Message: fmt.Sprintf("cost per request %.4f exceeds %.2f; consider a smaller model", res.PerUnit.CostPerRequest, highCostPerRequest),
		})
	}
	if cacheHitRate < lowCacheHitRate {
		ins.Opportunities = append(ins.Opportunities, Opportunity{
			Code:    OpportunityCaching,
			Message: fmt.Sprintf("cache hit rate %.0f%% is below %.0f%%; response caching could cut output cost", cacheHitRate*100, lowCacheHitRate*100),
		})
	}
	if res.Sustainability.EnergyWh > highEnergyWh {
		ins.Opportunities = append(ins.Opportunities, Opportunity{
			Code:    OpportunityEfficientModel,
			Message: fmt.Sprintf("energy use %.1f Wh exceeds %.0f Wh; consider a more energy-efficient model", res.Sustainability.EnergyWh, highEnergyWh),
		})
	}
	if !req.BatchProcessing && model.BatchDiscount > 0 {
		ins.Opportunities = append(ins.Opportunities, Opportunity{
			Code:    OpportunityBatching,
			Message: fmt.Sprintf("batch processing would save %.0f%% of the subtotal", model.BatchDiscount*100),
		})
	}
	if res.CommissionRate >= highCommissionRate {
		ins.Opportunities = append(ins.Opportunities, Opportunity{
			Code:    OpportunityShorterRouting,
			Message: fmt.Sprintf("router commission is %.1f%%; review the router path", res.CommissionRate*100),
		})
	}

	if model.Deprecated {
		ins.Risks = append(ins.Risks, Risk{Code: RiskDeprecated, Message: fmt.Sprintf("model %s is deprecated", model.ID)})
	}
	if model.Beta {
		ins.Risks = append(ins.Risks, Risk{Code: RiskBeta, Message: fmt.Sprintf("model %s is in beta", model.ID)})
	}
	if retryRate > highRetryRate {
		ins.Risks = append(ins.Risks, Risk{
			Code:    RiskHighRetry,
			Message: fmt.Sprintf("retry rate %.0f%% exceeds %.0f%%", retryRate*100, highRetryRate*100),
		})
	}
	if req.RequestsCount > highVolumeRequests {
		ins.Risks = append(ins.Risks, Risk{
			Code:    RiskHighVolume,
			Message: fmt.Sprintf("%d requests exceeds %d; check provider rate limits", req.RequestsCount, highVolumeRequests),
		})
	}
	if req.Routers != nil && req.Routers.Capped() {
		ins.Risks = append(ins.Risks, Risk{
			Code:    RiskCommissionCap,
			Message: fmt.Sprintf("router fees sum to %.1f%% and are capped at %.0f%%", req.Routers.RawRate()*100, routers.MaxCommissionRate*100),
		})
	}

	return ins
}

func validateRequest(req UsageRequest) error {
	counts := []struct {
		field string
		value float64
	}{
		{"input_tokens", req.InputTokens},
		{"output_tokens", req.OutputTokens},
		{"images", req.Images},
		{"audio_minutes", req.AudioMinutes},
		{"video_minutes", req.VideoMinutes},
	}
	for _, c := range counts {
		if c.value < 0 || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return calcerr.NewValidationError(c.field, "must be a non-negative finite number, got %v", c.value)
		}
	}
	if req.RequestsCount < 0 {
		return calcerr.NewValidationError("requests_count", "must be non-negative, got %d", req.RequestsCount)
	}
	return req.Routers.Validate()
}

// clampUnit clamps v into [0, 1]. NaN maps to 0.
func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}

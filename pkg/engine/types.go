package engine

import (
	"mercator-hq/routecost/pkg/routers"
	"mercator-hq/routecost/pkg/sustain"
)

// UsageRequest describes the workload to price.
type UsageRequest struct {
	InputTokens     float64            `yaml:"input_tokens" json:"input_tokens"`
	OutputTokens    float64            `yaml:"output_tokens" json:"output_tokens"`
	RequestsCount   int                `yaml:"requests_count" json:"requests_count"`
	Images          float64            `yaml:"images,omitempty" json:"images,omitempty"`
	AudioMinutes    float64            `yaml:"audio_minutes,omitempty" json:"audio_minutes,omitempty"`
	VideoMinutes    float64            `yaml:"video_minutes,omitempty" json:"video_minutes,omitempty"`
	CacheHitRate    float64            `yaml:"cache_hit_rate,omitempty" json:"cache_hit_rate,omitempty"`
	RetryRate       float64            `yaml:"retry_rate,omitempty" json:"retry_rate,omitempty"`
	BatchProcessing bool               `yaml:"batch_processing,omitempty" json:"batch_processing,omitempty"`
	Routers         routers.RouterPath `yaml:"routers,omitempty" json:"routers,omitempty"`
}

// TotalTokens returns input plus output tokens for one request.
func (r UsageRequest) TotalTokens() float64 {
	return r.InputTokens + r.OutputTokens
}

// CostBreakdown holds the monetary components scaled by the request count.
// BatchDiscount and CacheSavings are subtracted from Subtotal, RetryPenalty
// and RouterCommission are added.
type CostBreakdown struct {
	InputCost        float64 `json:"input_cost"`
	OutputCost       float64 `json:"output_cost"`
	ImagesCost       float64 `json:"images_cost"`
	AudioCost        float64 `json:"audio_cost"`
	VideoCost        float64 `json:"video_cost"`
	Subtotal         float64 `json:"subtotal"`
	BatchDiscount    float64 `json:"batch_discount"`
	CacheSavings     float64 `json:"cache_savings"`
	RetryPenalty     float64 `json:"retry_penalty"`
	RouterCommission float64 `json:"router_commission"`
	Total            float64 `json:"total"`
}

// scale multiplies every component by n.
func (b CostBreakdown) scale(n float64) CostBreakdown {
	return CostBreakdown{
		InputCost:        b.InputCost * n,
		OutputCost:       b.OutputCost * n,
		ImagesCost:       b.ImagesCost * n,
		AudioCost:        b.AudioCost * n,
		VideoCost:        b.VideoCost * n,
		Subtotal:         b.Subtotal * n,
		BatchDiscount:    b.BatchDiscount * n,
		CacheSavings:     b.CacheSavings * n,
		RetryPenalty:     b.RetryPenalty * n,
		RouterCommission: b.RouterCommission * n,
		Total:            b.Total * n,
	}
}

// UnitMetrics are derived from single-request figures.
type UnitMetrics struct {
	CostPerRequest     float64 `json:"cost_per_request"`
	CostPerInputToken  float64 `json:"cost_per_input_token"`
	CostPerOutputToken float64 `json:"cost_per_output_token"`
	CostPerTotalToken  float64 `json:"cost_per_total_token"`
}

// Projections are linear extrapolations of the total.
type Projections struct {
	Hourly  float64 `json:"hourly"`
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
}

// Performance carries the model's speed and quality figures.
type Performance struct {
	LatencyMs           float64 `json:"latency_ms"`
	ThroughputTPS       float64 `json:"throughput_tps"`
	QualityScore        float64 `json:"quality_score"`
	QualityAdjustedCost float64 `json:"quality_adjusted_cost"`
	EfficiencyScore     float64 `json:"efficiency_score"`
}

// Sustainability holds energy figures and their equivalents.
type Sustainability struct {
	EnergyPerRequestWh float64             `json:"energy_per_request_wh"`
	EnergyWh           float64             `json:"energy_wh"`
	Energy             sustain.Display     `json:"energy"`
	Equivalents        sustain.Equivalents `json:"equivalents"`
}

// CostTier is a coarse price classification.
type CostTier string

// Cost tiers by mean per-1K price.
const (
	TierBudget     CostTier = "budget"
	TierMidTier    CostTier = "mid-tier"
	TierPremium    CostTier = "premium"
	TierEnterprise CostTier = "enterprise"
)

// OpportunityCode identifies an optimization hint.
type OpportunityCode string

// Optimization hints.
const (
	OpportunitySmallerModel   OpportunityCode = "smaller_model"
	OpportunityCaching        OpportunityCode = "caching"
	OpportunityEfficientModel OpportunityCode = "efficient_model"
	OpportunityBatching       OpportunityCode = "batching"
	OpportunityShorterRouting OpportunityCode = "shorter_routing"
)

// Opportunity is an advisory optimization hint.
type Opportunity struct {
	Code    OpportunityCode `json:"code"`
	Message string          `json:"message"`
}

// RiskCode identifies a risk flag.
type RiskCode string

// Risk flags.
const (
	RiskDeprecated    RiskCode = "deprecated_model"
	RiskBeta          RiskCode = "beta_model"
	RiskHighRetry     RiskCode = "high_retry_rate"
	RiskHighVolume    RiskCode = "high_volume"
	RiskCommissionCap RiskCode = "commission_capped"
)

// Risk is a flagged concern about the evaluated scenario.
type Risk struct {
	Code    RiskCode `json:"code"`
	Message string   `json:"message"`
}

// Insights are categorical findings about the evaluation.
type Insights struct {
	CostTier      CostTier      `json:"cost_tier"`
	Opportunities []Opportunity `json:"optimization_opportunities"`
	Risks         []Risk        `json:"risk_factors"`
}

// Result is the full output of one evaluation.
type Result struct {
	ModelID        string         `json:"model_id"`
	ModelName      string         `json:"model_name"`
	RequestsCount  int            `json:"requests_count"`
	TotalTokens    float64        `json:"total_tokens"`
	CommissionRate float64        `json:"commission_rate"`
	Breakdown      CostBreakdown  `json:"breakdown"`
	PerUnit        UnitMetrics    `json:"per_unit"`
	Projections    Projections    `json:"projections"`
	Performance    Performance    `json:"performance"`
	Sustainability Sustainability `json:"sustainability"`
	Insights       Insights       `json:"insights"`
}

// Total is shorthand for Breakdown.Total.
func (r *Result) Total() float64 {
	return r.Breakdown.Total
}

// BatchItem is one independent evaluation in CalculateBatch.
type BatchItem struct {
	ModelID string       `yaml:"model" json:"model"`
	Request UsageRequest `yaml:"request" json:"request"`
}

package history

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"mercator-hq/routecost/pkg/engine"
)

// RunRecord is one completed estimate.
type RunRecord struct {
	ID           string    `db:"id" json:"id"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
	ModelID      string    `db:"model_id" json:"model_id"`
	Requests     int64     `db:"requests" json:"requests"`
	InputTokens  float64   `db:"input_tokens" json:"input_tokens"`
	OutputTokens float64   `db:"output_tokens" json:"output_tokens"`
	TotalTokens  float64   `db:"total_tokens" json:"total_tokens"`
	BaseCost     float64   `db:"base_cost" json:"base_cost"`
	Commission   float64   `db:"commission" json:"commission"`
	TotalCost    float64   `db:"total_cost" json:"total_cost"`
	EnergyWh     float64   `db:"energy_wh" json:"energy_wh"`
	CO2eKg       float64   `db:"co2e_kg" json:"co2e_kg"`
}

// CumulativeMetrics are totals and ratios over a set of run records.
type CumulativeMetrics struct {
	Runs            int     `json:"runs"`
	TotalCost       float64 `json:"total_cost"`
	TotalCommission float64 `json:"total_commission"`
	TotalRequests   int64   `json:"total_requests"`
	TotalTokens     float64 `json:"total_tokens"`
	TotalEnergyWh   float64 `json:"total_energy_wh"`
	TotalCO2eKg     float64 `json:"total_co2e_kg"`

	EnergyPerToken  float64 `json:"energy_per_token"`
	CostPerRequest  float64 `json:"cost_per_request"`
	CostPerRun      float64 `json:"cost_per_run"`
	CommissionShare float64 `json:"commission_share"`
}

// ModelMetrics are cumulative metrics for a single model.
type ModelMetrics struct {
	ModelID string `json:"model_id"`
	CumulativeMetrics
}

// Aggregate sums records and derives ratios. Ratios with a zero denominator
// are zero.
func Aggregate(records []RunRecord) CumulativeMetrics {
	var m CumulativeMetrics
	for _, r := range records {
		m.Runs++
		m.TotalCost += r.TotalCost
		m.TotalCommission += r.Commission
		m.TotalRequests += r.Requests
		m.TotalTokens += r.TotalTokens
		m.TotalEnergyWh += r.EnergyWh
		m.TotalCO2eKg += r.CO2eKg
	}

	m.EnergyPerToken = ratio(m.TotalEnergyWh, m.TotalTokens)
	m.CostPerRequest = ratio(m.TotalCost, float64(m.TotalRequests))
	m.CostPerRun = ratio(m.TotalCost, float64(m.Runs))
	m.CommissionShare = ratio(m.TotalCommission, m.TotalCost)

	return m
}

// AggregateByModel groups records by model and aggregates each group.
// Results are sorted by model ID.
func AggregateByModel(records []RunRecord) []ModelMetrics {
	groups := make(map[string][]RunRecord)
	for _, r := range records {
		groups[r.ModelID] = append(groups[r.ModelID], r)
	}

	out := make([]ModelMetrics, 0, len(groups))
	for id, group := range groups {
		out = append(out, ModelMetrics{ModelID: id, CumulativeMetrics: Aggregate(group)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID < out[j].ModelID })

	return out
}

// Since returns the records recorded at or after t, preserving order.
func Since(records []RunRecord, t time.Time) []RunRecord {
	out := make([]RunRecord, 0, len(records))
	for _, r := range records {
		if !r.RecordedAt.Before(t) {
			out = append(out, r)
		}
	}
	return out
}

// RecordFromResult builds a run record from an engine result. BaseCost is
// the total before router commission. When the total was floored at zero the
// recorded commission is capped at the total, so BaseCost + Commission always
// equals TotalCost and neither goes negative.
func RecordFromResult(res *engine.Result, inputTokens, outputTokens float64, now time.Time) RunRecord {
	requests := float64(res.RequestsCount)
	total := res.Breakdown.Total
	commission := math.Min(res.Breakdown.RouterCommission, total)
	return RunRecord{
		ID:           uuid.New().String(),
		RecordedAt:   now.UTC(),
		ModelID:      res.ModelID,
		Requests:     int64(res.RequestsCount),
		InputTokens:  inputTokens * requests,
		OutputTokens: outputTokens * requests,
		TotalTokens:  res.TotalTokens,
		BaseCost:     total - commission,
		Commission:   commission,
		TotalCost:    total,
		EnergyWh:     res.Sustainability.EnergyWh,
		CO2eKg:       res.Sustainability.Equivalents.CO2eKg,
	}
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

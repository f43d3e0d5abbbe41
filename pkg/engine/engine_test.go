package engine

import (
	"math"
	"reflect"
	"testing"

	"mercator-hq/routecost/pkg/calcerr"
	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/routers"
	"mercator-hq/routecost/pkg/sustain"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func testModel() catalog.PricingModel {
	return catalog.PricingModel{
		ID:                  "multi",
		Name:                "Multi",
		InputPricePer1K:     1.0,
		OutputPricePer1K:    2.0,
		ImagePrice:          0.01,
		BatchDiscount:       0.5,
		EnergyPer1KTokensWh: 0.5,
		EnergyPerRequestWh:  0.1,
		LatencyMs:           500,
		QualityScore:        2,
	}.Normalize()
}

func TestEvaluateModel_FullScenario(t *testing.T) {
	eng := New(Options{})

	req := UsageRequest{
		InputTokens:     1000,
		OutputTokens:    500,
		RequestsCount:   10,
		Images:          2,
		CacheHitRate:    0.4,
		RetryRate:       0.1,
		BatchProcessing: true,
		Routers:         routers.RouterPath{{ID: "r", FeePct: 0.1, Enabled: true}},
	}

	res, err := eng.EvaluateModel(testModel(), req, sustain.DefaultAssumptions())
	if err != nil {
		t.Fatalf("EvaluateModel() error = %v", err)
	}

	b := res.Breakdown
	approx(t, "InputCost", b.InputCost, 10)
	approx(t, "OutputCost", b.OutputCost, 10)
	approx(t, "ImagesCost", b.ImagesCost, 0.2)
	approx(t, "Subtotal", b.Subtotal, 20.2)
	approx(t, "BatchDiscount", b.BatchDiscount, 10.1)
	approx(t, "CacheSavings", b.CacheSavings, 2)
	approx(t, "RetryPenalty", b.RetryPenalty, 2.02)
	approx(t, "RouterCommission", b.RouterCommission, 2.02)
	approx(t, "Total", b.Total, 12.14)

	approx(t, "CostPerRequest", res.PerUnit.CostPerRequest, 1.214)
	approx(t, "CostPerInputToken", res.PerUnit.CostPerInputToken, 0.001)
	approx(t, "CostPerOutputToken", res.PerUnit.CostPerOutputToken, 0.002)
	approx(t, "CostPerTotalToken", res.PerUnit.CostPerTotalToken, 2.0/1500)

	approx(t, "Hourly", res.Projections.Hourly, 12.14*3600/0.5)
	approx(t, "Daily", res.Projections.Daily, 12.14*24)
	approx(t, "Weekly", res.Projections.Weekly, 12.14*24*7)
	approx(t, "Monthly", res.Projections.Monthly, 12.14*24*30)
	approx(t, "Annual", res.Projections.Annual, 12.14*24*365)

	approx(t, "LatencyMs", res.Performance.LatencyMs, 500)
	approx(t, "ThroughputTPS", res.Performance.ThroughputTPS, DefaultThroughputTPS)
	approx(t, "QualityAdjustedCost", res.Performance.QualityAdjustedCost, 0.607)
	approx(t, "EfficiencyScore", res.Performance.EfficiencyScore, 15000/12.14)

	approx(t, "EnergyPerRequestWh", res.Sustainability.EnergyPerRequestWh, 0.85)
	approx(t, "EnergyWh", res.Sustainability.EnergyWh, 8.5)
	approx(t, "CO2eKg", res.Sustainability.Equivalents.CO2eKg, 0.0034)
	approx(t, "PhoneCharges", res.Sustainability.Equivalents.PhoneCharges, 8.5/12)
	if res.Sustainability.Energy.Unit != "Wh" {
		t.Errorf("Energy.Unit = %q, want Wh", res.Sustainability.Energy.Unit)
	}

	approx(t, "CommissionRate", res.CommissionRate, 0.1)
	approx(t, "TotalTokens", res.TotalTokens, 15000)

	if res.Insights.CostTier != TierMidTier {
		t.Errorf("CostTier = %q, want %q", res.Insights.CostTier, TierMidTier)
	}
	if got := opportunityCodes(res.Insights.Opportunities); !reflect.DeepEqual(got, []OpportunityCode{OpportunitySmallerModel}) {
		t.Errorf("Opportunities = %v", got)
	}
	if len(res.Insights.Risks) != 0 {
		t.Errorf("Risks = %v, want none", res.Insights.Risks)
	}
}

func TestEvaluateModel_ZeroTokens(t *testing.T) {
	eng := New(DefaultOptions())

	res, err := eng.EvaluateModel(testModel(), UsageRequest{RequestsCount: 1}, sustain.DefaultAssumptions())
	if err != nil {
		t.Fatalf("EvaluateModel() error = %v", err)
	}
	if res.Total() != 0 {
		t.Errorf("Total = %v, want 0", res.Total())
	}
	for name, v := range map[string]float64{
		"CostPerRequest":      res.PerUnit.CostPerRequest,
		"CostPerInputToken":   res.PerUnit.CostPerInputToken,
		"CostPerTotalToken":   res.PerUnit.CostPerTotalToken,
		"EfficiencyScore":     res.Performance.EfficiencyScore,
		"QualityAdjustedCost": res.Performance.QualityAdjustedCost,
		"Hourly":              res.Projections.Hourly,
	} {
		if v != 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s = %v, want 0", name, v)
		}
	}
}

func TestEvaluateModel_ZeroRequests(t *testing.T) {
	eng := New(DefaultOptions())

	res, err := eng.EvaluateModel(testModel(), UsageRequest{InputTokens: 100, OutputTokens: 100}, sustain.DefaultAssumptions())
	if err != nil {
		t.Fatalf("EvaluateModel() error = %v", err)
	}
	if res.Total() != 0 || res.PerUnit.CostPerRequest != 0 || res.Sustainability.EnergyWh != 0 {
		t.Errorf("zero requests produced non-zero result: %+v", res)
	}
	// Per-token metrics use single-request figures.
	approx(t, "CostPerInputToken", res.PerUnit.CostPerInputToken, 0.001)
}

func TestEvaluateModel_Errors(t *testing.T) {
	eng := New(DefaultOptions())
	good := sustain.DefaultAssumptions()

	tests := []struct {
		name          string
		req           UsageRequest
		a             sustain.Assumptions
		validation    bool
		configuration bool
	}{
		{"negative input", UsageRequest{InputTokens: -1, RequestsCount: 1}, good, true, false},
		{"negative output", UsageRequest{OutputTokens: -1, RequestsCount: 1}, good, true, false},
		{"negative images", UsageRequest{Images: -2, RequestsCount: 1}, good, true, false},
		{"negative requests", UsageRequest{RequestsCount: -1}, good, true, false},
		{"nan video", UsageRequest{VideoMinutes: math.NaN(), RequestsCount: 1}, good, true, false},
		{"bad assumptions", UsageRequest{RequestsCount: 1}, sustain.Assumptions{}, false, true},
		{"router fee above max", UsageRequest{RequestsCount: 1, Routers: routers.RouterPath{{FeePct: 0.9, Enabled: true}}}, good, true, false},
		{"negative router fee", UsageRequest{RequestsCount: 1, Routers: routers.RouterPath{{FeePct: -0.1, Enabled: true}}}, good, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := eng.EvaluateModel(testModel(), tt.req, tt.a)
			if res != nil {
				t.Errorf("EvaluateModel() returned partial result %+v", res)
			}
			if tt.validation && !calcerr.IsValidation(err) {
				t.Errorf("error = %v, want ValidationError", err)
			}
			if tt.configuration && !calcerr.IsConfiguration(err) {
				t.Errorf("error = %v, want ConfigurationError", err)
			}
		})
	}
}

func TestEvaluate_ModelNotFound(t *testing.T) {
	eng := New(DefaultOptions())
	cat := catalog.MustNew([]catalog.PricingModel{testModel()})

	res, err := eng.Evaluate(cat, "ghost", UsageRequest{RequestsCount: 1}, sustain.DefaultAssumptions())
	if res != nil {
		t.Errorf("Evaluate() returned result for unknown model")
	}
	if !calcerr.IsModelNotFound(err) {
		t.Fatalf("Evaluate() error = %v, want ModelNotFoundError", err)
	}
}

func TestEvaluateModel_RateClamping(t *testing.T) {
	eng := New(DefaultOptions())
	model := testModel()
	a := sustain.DefaultAssumptions()

	over, err := eng.EvaluateModel(model, UsageRequest{InputTokens: 100, OutputTokens: 100, RequestsCount: 1, CacheHitRate: 7, RetryRate: 3}, a)
	if err != nil {
		t.Fatal(err)
	}
	capped, err := eng.EvaluateModel(model, UsageRequest{InputTokens: 100, OutputTokens: 100, RequestsCount: 1, CacheHitRate: 1, RetryRate: 1}, a)
	if err != nil {
		t.Fatal(err)
	}
	if over.Total() != capped.Total() {
		t.Errorf("rates above 1 not clamped: %v != %v", over.Total(), capped.Total())
	}

	under, err := eng.EvaluateModel(model, UsageRequest{InputTokens: 100, OutputTokens: 100, RequestsCount: 1, CacheHitRate: -1, RetryRate: -1}, a)
	if err != nil {
		t.Fatal(err)
	}
	zero, err := eng.EvaluateModel(model, UsageRequest{InputTokens: 100, OutputTokens: 100, RequestsCount: 1}, a)
	if err != nil {
		t.Fatal(err)
	}
	if under.Total() != zero.Total() {
		t.Errorf("negative rates not clamped: %v != %v", under.Total(), zero.Total())
	}
}

func TestEvaluateModel_Monotonic(t *testing.T) {
	eng := New(DefaultOptions())
	model := testModel()
	a := sustain.DefaultAssumptions()

	prev := -1.0
	for retry := 0.0; retry <= 1.0; retry += 0.1 {
		res, err := eng.EvaluateModel(model, UsageRequest{InputTokens: 500, OutputTokens: 500, RequestsCount: 3, RetryRate: retry}, a)
		if err != nil {
			t.Fatal(err)
		}
		if res.Total() < prev {
			t.Errorf("total decreased at retry rate %v: %v < %v", retry, res.Total(), prev)
		}
		prev = res.Total()
	}

	prev = math.Inf(1)
	for cache := 0.0; cache <= 1.0; cache += 0.1 {
		res, err := eng.EvaluateModel(model, UsageRequest{InputTokens: 500, OutputTokens: 500, RequestsCount: 3, CacheHitRate: cache}, a)
		if err != nil {
			t.Fatal(err)
		}
		if res.Total() > prev {
			t.Errorf("total increased at cache hit rate %v: %v > %v", cache, res.Total(), prev)
		}
		if res.Total() < 0 {
			t.Errorf("total negative at cache hit rate %v", cache)
		}
		prev = res.Total()
	}
}

func TestEvaluateModel_FloorAtZero(t *testing.T) {
	eng := New(DefaultOptions())
	model := catalog.PricingModel{ID: "m", InputPricePer1K: 0, OutputPricePer1K: 10, BatchDiscount: 1}

	res, err := eng.EvaluateModel(model, UsageRequest{OutputTokens: 1000, RequestsCount: 2, CacheHitRate: 1, BatchProcessing: true}, sustain.DefaultAssumptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.Total() != 0 {
		t.Errorf("Total = %v, want 0 after floor", res.Total())
	}
}

func TestEvaluateModel_Idempotent(t *testing.T) {
	eng := New(DefaultOptions())
	req := UsageRequest{
		InputTokens:   1234,
		OutputTokens:  567,
		RequestsCount: 89,
		AudioMinutes:  1.5,
		CacheHitRate:  0.25,
		RetryRate:     0.05,
		Routers:       routers.RouterPath{{FeePct: 0.03, Enabled: true}},
	}

	first, err := eng.EvaluateModel(testModel(), req, sustain.DefaultAssumptions())
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.EvaluateModel(testModel(), req, sustain.DefaultAssumptions())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("EvaluateModel() not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestEvaluateModel_Defaults(t *testing.T) {
	eng := New(Options{DefaultLatencyMs: 2000, DefaultThroughputTPS: 10, DefaultQualityScore: 4})
	model := catalog.PricingModel{ID: "bare", PricePer1K: 1}.Normalize()

	res, err := eng.EvaluateModel(model, UsageRequest{InputTokens: 1000, RequestsCount: 1}, sustain.DefaultAssumptions())
	if err != nil {
		t.Fatal(err)
	}
	approx(t, "LatencyMs", res.Performance.LatencyMs, 2000)
	approx(t, "ThroughputTPS", res.Performance.ThroughputTPS, 10)
	approx(t, "QualityScore", res.Performance.QualityScore, 4)
	approx(t, "QualityAdjustedCost", res.Performance.QualityAdjustedCost, 0.25)
	approx(t, "Hourly", res.Projections.Hourly, 1*3600/2.0)

	if got := New(Options{}).Options(); got.Workers <= 0 || got.DefaultLatencyMs != DefaultLatencyMs {
		t.Errorf("zero Options not resolved: %+v", got)
	}
}

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		price float64
		want  CostTier
	}{
		{0, TierBudget},
		{0.99, TierBudget},
		{1, TierMidTier},
		{4.99, TierMidTier},
		{5, TierPremium},
		{14.99, TierPremium},
		{15, TierEnterprise},
		{100, TierEnterprise},
	}

	for _, tt := range tests {
		if got := ClassifyTier(tt.price); got != tt.want {
			t.Errorf("ClassifyTier(%v) = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestInsights(t *testing.T) {
	eng := New(DefaultOptions())
	a := sustain.DefaultAssumptions()

	tests := []struct {
		name              string
		model             catalog.PricingModel
		req               UsageRequest
		wantOpportunities []OpportunityCode
		wantRisks         []RiskCode
	}{
		{
			name:              "cheap cached model",
			model:             catalog.PricingModel{ID: "m", InputPricePer1K: 0.001, OutputPricePer1K: 0.001},
			req:               UsageRequest{InputTokens: 10, OutputTokens: 10, RequestsCount: 1, CacheHitRate: 0.5},
			wantOpportunities: []OpportunityCode{},
			wantRisks:         []RiskCode{},
		},
		{
			name:              "low cache hit rate",
			model:             catalog.PricingModel{ID: "m", InputPricePer1K: 0.001, OutputPricePer1K: 0.001},
			req:               UsageRequest{InputTokens: 10, OutputTokens: 10, RequestsCount: 1, CacheHitRate: 0.1},
			wantOpportunities: []OpportunityCode{OpportunityCaching},
			wantRisks:         []RiskCode{},
		},
		{
			name: "everything fires",
			model: catalog.PricingModel{
				ID: "m", InputPricePer1K: 20, OutputPricePer1K: 20, BatchDiscount: 0.5,
				EnergyPerRequestWh: 1, Deprecated: true, Beta: true,
			},
			req: UsageRequest{
				InputTokens: 100, OutputTokens: 100, RequestsCount: 20_000, RetryRate: 0.2,
				Routers: routers.RouterPath{
					{FeePct: 0.5, Enabled: true},
					{FeePct: 0.5, Enabled: true},
				},
			},
			wantOpportunities: []OpportunityCode{
				OpportunitySmallerModel, OpportunityCaching, OpportunityEfficientModel,
				OpportunityBatching, OpportunityShorterRouting,
			},
			wantRisks: []RiskCode{RiskDeprecated, RiskBeta, RiskHighRetry, RiskHighVolume, RiskCommissionCap},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := eng.EvaluateModel(tt.model, tt.req, a)
			if err != nil {
				t.Fatal(err)
			}
			if got := opportunityCodes(res.Insights.Opportunities); !reflect.DeepEqual(got, tt.wantOpportunities) {
				t.Errorf("Opportunities = %v, want %v", got, tt.wantOpportunities)
			}
			if got := riskCodes(res.Insights.Risks); !reflect.DeepEqual(got, tt.wantRisks) {
				t.Errorf("Risks = %v, want %v", got, tt.wantRisks)
			}
		})
	}
}

func opportunityCodes(ops []Opportunity) []OpportunityCode {
	codes := make([]OpportunityCode, 0, len(ops))
	for _, o := range ops {
		codes = append(codes, o.Code)
	}
	return codes
}

func riskCodes(risks []Risk) []RiskCode {
	codes := make([]RiskCode, 0, len(risks))
	for _, r := range risks {
		codes = append(codes, r.Code)
	}
	return codes
}

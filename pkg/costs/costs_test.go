package costs

import (
	"math"
	"testing"

	"mercator-hq/routecost/pkg/calcerr"
	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/routers"
)

const epsilon = 1e-12

func TestBaseCost(t *testing.T) {
	tests := []struct {
		name        string
		tokens      float64
		model       catalog.PricingModel
		expected    float64
		expectError bool
	}{
		{
			name:     "one thousand tokens at 1.0",
			tokens:   1000,
			model:    catalog.PricingModel{ID: "m", PricePer1K: 1.0},
			expected: 1.0,
		},
		{
			name:     "below minimum billable",
			tokens:   10,
			model:    catalog.PricingModel{ID: "m", PricePer1K: 2.0, MinBillableTokens: 500},
			expected: 1.0,
		},
		{
			name:     "above minimum billable",
			tokens:   2000,
			model:    catalog.PricingModel{ID: "m", PricePer1K: 2.0, MinBillableTokens: 500},
			expected: 4.0,
		},
		{
			name:     "zero tokens no floor",
			tokens:   0,
			model:    catalog.PricingModel{ID: "m", PricePer1K: 3.0},
			expected: 0,
		},
		{
			name:     "fractional tokens",
			tokens:   1.5,
			model:    catalog.PricingModel{ID: "m", PricePer1K: 1000},
			expected: 1.5,
		},
		{
			name:        "negative tokens",
			tokens:      -1,
			model:       catalog.PricingModel{ID: "m", PricePer1K: 1.0},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BaseCost(tt.tokens, tt.model)
			if tt.expectError {
				if !calcerr.IsValidation(err) {
					t.Fatalf("BaseCost() error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BaseCost() unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > epsilon {
				t.Errorf("BaseCost() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBaseCost_Property(t *testing.T) {
	floors := []float64{0, 1, 100, 1000}
	for _, floor := range floors {
		model := catalog.PricingModel{ID: "m", PricePer1K: 0.75, MinBillableTokens: floor}
		for tokens := 0.0; tokens <= 2000; tokens += 125 {
			got, err := BaseCost(tokens, model)
			if err != nil {
				t.Fatalf("BaseCost(%v) error = %v", tokens, err)
			}
			want := math.Max(tokens, floor) * (model.PricePer1K / 1000)
			if got != want {
				t.Errorf("BaseCost(%v, floor %v) = %v, want %v", tokens, floor, got, want)
			}
		}
	}
}

func TestComposeCost(t *testing.T) {
	model := catalog.PricingModel{ID: "m", PricePer1K: 2.0}
	path := routers.RouterPath{{ID: "r", FeePct: 0.1, Enabled: true}}

	got, err := ComposeCost(1000, model, path)
	if err != nil {
		t.Fatalf("ComposeCost() error = %v", err)
	}

	want := Composition{BaseCost: 2.0, Commission: 0.2, TotalCost: 2.2, CommissionRate: 0.1}
	if math.Abs(got.BaseCost-want.BaseCost) > epsilon ||
		math.Abs(got.Commission-want.Commission) > epsilon ||
		math.Abs(got.TotalCost-want.TotalCost) > epsilon ||
		math.Abs(got.CommissionRate-want.CommissionRate) > epsilon {
		t.Errorf("ComposeCost() = %+v, want %+v", got, want)
	}
}

func TestComposeCost_MatchesComponents(t *testing.T) {
	model := catalog.PricingModel{ID: "m", PricePer1K: 0.37, MinBillableTokens: 50}
	path := routers.RouterPath{
		{FeePct: 0.05, Enabled: true},
		{FeePct: 0.075, Enabled: true},
		{FeePct: 0.1, Enabled: false},
	}

	for _, tokens := range []float64{0, 10, 999, 12345} {
		comp, err := ComposeCost(tokens, model, path)
		if err != nil {
			t.Fatalf("ComposeCost(%v) error = %v", tokens, err)
		}
		base, _ := BaseCost(tokens, model)
		commission := routers.Commission(base, path)
		if comp.BaseCost != base || comp.Commission != commission || comp.TotalCost != base+commission {
			t.Errorf("ComposeCost(%v) = %+v, want base %v commission %v", tokens, comp, base, commission)
		}
	}
}

func TestComposeCost_InvalidFee(t *testing.T) {
	model := catalog.PricingModel{ID: "m", PricePer1K: 1}

	tests := []struct {
		name string
		fee  float64
	}{
		{"above max", 0.9},
		{"negative", -0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComposeCost(1000, model, routers.RouterPath{{ID: "r", FeePct: tt.fee, Enabled: true}})
			if !calcerr.IsValidation(err) {
				t.Fatalf("ComposeCost() error = %v, want ValidationError", err)
			}
			if got != (Composition{}) {
				t.Errorf("ComposeCost() = %+v, want zero Composition", got)
			}
		})
	}
}

func TestComposeCost_NegativeTokens(t *testing.T) {
	_, err := ComposeCost(-5, catalog.PricingModel{ID: "m", PricePer1K: 1}, nil)
	if !calcerr.IsValidation(err) {
		t.Fatalf("ComposeCost() error = %v, want ValidationError", err)
	}
}

func TestCalculator_Quote(t *testing.T) {
	cat := catalog.MustNew([]catalog.PricingModel{
		{ID: "cheap", PricePer1K: 0.5},
		{ID: "pricey", PricePer1K: 10},
	})
	calc := NewCalculator(cat, routers.RouterPath{{FeePct: 0.2, Enabled: true}})

	tests := []struct {
		name        string
		model       string
		tokens      float64
		expectedMin float64
		expectedMax float64
		notFound    bool
	}{
		{
			name:        "cheap model",
			model:       "cheap",
			tokens:      2000,
			expectedMin: 1.19, // 2000/1000 * 0.5 = 1.0, +20% = 1.2
			expectedMax: 1.21,
		},
		{
			name:        "pricey model",
			model:       "pricey",
			tokens:      100,
			expectedMin: 1.19, // 100/1000 * 10 = 1.0, +20% = 1.2
			expectedMax: 1.21,
		},
		{
			name:     "unknown model",
			model:    "missing",
			tokens:   100,
			notFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := calc.Quote(tt.model, tt.tokens)
			if tt.notFound {
				if !calcerr.IsModelNotFound(err) {
					t.Fatalf("Quote() error = %v, want ModelNotFoundError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Quote() unexpected error: %v", err)
			}
			if q.TotalCost < tt.expectedMin || q.TotalCost > tt.expectedMax {
				t.Errorf("TotalCost = %v, want between %v and %v", q.TotalCost, tt.expectedMin, tt.expectedMax)
			}
			if q.ModelID != tt.model {
				t.Errorf("ModelID = %q, want %q", q.ModelID, tt.model)
			}
		})
	}
}

func TestCalculator_InvalidPath(t *testing.T) {
	calc := NewCalculator(
		catalog.MustNew([]catalog.PricingModel{{ID: "m", PricePer1K: 1}}),
		routers.RouterPath{{ID: "r", FeePct: 0.9, Enabled: true}},
	)

	q, err := calc.Quote("m", 1000)
	if !calcerr.IsValidation(err) {
		t.Fatalf("Quote() error = %v, want ValidationError", err)
	}
	if q != nil {
		t.Errorf("Quote() = %+v, want nil", q)
	}
}

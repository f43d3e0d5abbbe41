package catalog

import (
	"testing"

	"mercator-hq/routecost/pkg/calcerr"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		model      PricingModel
		wantLegacy float64
		wantInput  float64
		wantOutput float64
	}{
		{
			name:       "legacy price only",
			model:      PricingModel{ID: "a", PricePer1K: 2},
			wantLegacy: 2,
			wantInput:  2,
			wantOutput: 2,
		},
		{
			name:       "split prices only",
			model:      PricingModel{ID: "b", InputPricePer1K: 1, OutputPricePer1K: 3},
			wantLegacy: 2,
			wantInput:  1,
			wantOutput: 3,
		},
		{
			name:       "both schemes kept",
			model:      PricingModel{ID: "c", PricePer1K: 5, InputPricePer1K: 1, OutputPricePer1K: 3},
			wantLegacy: 5,
			wantInput:  1,
			wantOutput: 3,
		},
		{
			name: "all zero",
			model: PricingModel{ID: "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.model.Normalize()
			if got.PricePer1K != tt.wantLegacy {
				t.Errorf("PricePer1K = %v, want %v", got.PricePer1K, tt.wantLegacy)
			}
			if got.InputPricePer1K != tt.wantInput {
				t.Errorf("InputPricePer1K = %v, want %v", got.InputPricePer1K, tt.wantInput)
			}
			if got.OutputPricePer1K != tt.wantOutput {
				t.Errorf("OutputPricePer1K = %v, want %v", got.OutputPricePer1K, tt.wantOutput)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		models  []PricingModel
		wantErr bool
	}{
		{
			name:   "empty catalog",
			models: nil,
		},
		{
			name: "valid models",
			models: []PricingModel{
				{ID: "a", PricePer1K: 1},
				{ID: "b", InputPricePer1K: 0.5, OutputPricePer1K: 1.5},
			},
		},
		{
			name: "duplicate id",
			models: []PricingModel{
				{ID: "a", PricePer1K: 1},
				{ID: "a", PricePer1K: 2},
			},
			wantErr: true,
		},
		{
			name:    "empty id",
			models:  []PricingModel{{PricePer1K: 1}},
			wantErr: true,
		},
		{
			name:    "negative price",
			models:  []PricingModel{{ID: "a", PricePer1K: -1}},
			wantErr: true,
		},
		{
			name:    "batch discount above one",
			models:  []PricingModel{{ID: "a", PricePer1K: 1, BatchDiscount: 1.5}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.models)
			if tt.wantErr {
				if !calcerr.IsValidation(err) {
					t.Fatalf("New() error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	cat := MustNew([]PricingModel{
		{ID: "first", PricePer1K: 1},
		{ID: "second", PricePer1K: 2},
	})

	m, err := cat.Lookup("second")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if m.PricePer1K != 2 {
		t.Errorf("PricePer1K = %v, want 2", m.PricePer1K)
	}
	if m.InputPricePer1K != 2 {
		t.Errorf("lookup should return normalized model, InputPricePer1K = %v", m.InputPricePer1K)
	}

	if _, err := cat.Lookup("missing"); !calcerr.IsModelNotFound(err) {
		t.Errorf("Lookup(missing) error = %v, want ModelNotFoundError", err)
	}

	var nilCat *Catalog
	if _, err := nilCat.Lookup("first"); !calcerr.IsModelNotFound(err) {
		t.Errorf("nil catalog Lookup() error = %v, want ModelNotFoundError", err)
	}
}

func TestCatalog_Order(t *testing.T) {
	cat := MustNew([]PricingModel{
		{ID: "z", PricePer1K: 1},
		{ID: "a", PricePer1K: 1},
		{ID: "m", PricePer1K: 1},
	})

	ids := cat.IDs()
	want := []string{"z", "a", "m"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("IDs() = %v, want %v", ids, want)
		}
	}

	if pos := cat.Position("m"); pos != 2 {
		t.Errorf("Position(m) = %d, want 2", pos)
	}
	if pos := cat.Position("nope"); pos != -1 {
		t.Errorf("Position(nope) = %d, want -1", pos)
	}

	models := cat.Models()
	models[0].ID = "mutated"
	if cat.IDs()[0] != "z" {
		t.Error("Models() must return a copy")
	}
}

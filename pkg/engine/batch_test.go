package engine

import (
	"context"
	"errors"
	"testing"

	"mercator-hq/routecost/pkg/calcerr"
	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/sustain"
)

func compareCatalog() *catalog.Catalog {
	return catalog.MustNew([]catalog.PricingModel{
		{ID: "expensive", InputPricePer1K: 10, OutputPricePer1K: 30},
		{ID: "tie-a", InputPricePer1K: 1, OutputPricePer1K: 1},
		{ID: "cheap", InputPricePer1K: 0.1, OutputPricePer1K: 0.2},
		{ID: "tie-b", PricePer1K: 1},
	})
}

func TestCompareModels_AllModels(t *testing.T) {
	eng := New(Options{Workers: 2})
	req := UsageRequest{InputTokens: 1000, OutputTokens: 1000, RequestsCount: 5}

	results, err := eng.CompareModels(context.Background(), compareCatalog(), nil, req, sustain.DefaultAssumptions())
	if err != nil {
		t.Fatalf("CompareModels() error = %v", err)
	}

	want := []string{"cheap", "tie-a", "tie-b", "expensive"}
	if len(results) != len(want) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(want))
	}
	for i, id := range want {
		if results[i].ModelID != id {
			t.Errorf("results[%d] = %s, want %s", i, results[i].ModelID, id)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Total() < results[i-1].Total() {
			t.Errorf("results not sorted at %d", i)
		}
	}
}

func TestCompareModels_TiesFollowCatalogOrder(t *testing.T) {
	eng := New(DefaultOptions())
	req := UsageRequest{InputTokens: 100, OutputTokens: 100, RequestsCount: 1}

	results, err := eng.CompareModels(context.Background(), compareCatalog(), []string{"tie-b", "tie-a"}, req, sustain.DefaultAssumptions())
	if err != nil {
		t.Fatalf("CompareModels() error = %v", err)
	}
	if results[0].ModelID != "tie-a" || results[1].ModelID != "tie-b" {
		t.Errorf("tie order = [%s %s], want [tie-a tie-b]", results[0].ModelID, results[1].ModelID)
	}
}

func TestCompareModels_UnknownModel(t *testing.T) {
	eng := New(DefaultOptions())

	_, err := eng.CompareModels(context.Background(), compareCatalog(), []string{"cheap", "nope"}, UsageRequest{RequestsCount: 1}, sustain.DefaultAssumptions())
	if !calcerr.IsModelNotFound(err) {
		t.Fatalf("CompareModels() error = %v, want ModelNotFoundError", err)
	}
}

func TestCalculateBatch(t *testing.T) {
	eng := New(Options{Workers: 3})
	cat := compareCatalog()

	items := make([]BatchItem, 0, 40)
	for i := 0; i < 10; i++ {
		for _, id := range cat.IDs() {
			items = append(items, BatchItem{
				ModelID: id,
				Request: UsageRequest{InputTokens: float64(100 * (i + 1)), OutputTokens: 50, RequestsCount: i + 1},
			})
		}
	}

	results, err := eng.CalculateBatch(context.Background(), cat, items, sustain.DefaultAssumptions())
	if err != nil {
		t.Fatalf("CalculateBatch() error = %v", err)
	}
	if len(results) != len(items) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(items))
	}

	for i, item := range items {
		if results[i].ModelID != item.ModelID || results[i].RequestsCount != item.Request.RequestsCount {
			t.Errorf("results[%d] = %s/%d, want %s/%d", i, results[i].ModelID, results[i].RequestsCount, item.ModelID, item.Request.RequestsCount)
		}
		single, err := eng.Evaluate(cat, item.ModelID, item.Request, sustain.DefaultAssumptions())
		if err != nil {
			t.Fatal(err)
		}
		if single.Total() != results[i].Total() {
			t.Errorf("results[%d] total %v differs from sequential %v", i, results[i].Total(), single.Total())
		}
	}
}

func TestCalculateBatch_Errors(t *testing.T) {
	eng := New(DefaultOptions())
	cat := compareCatalog()
	a := sustain.DefaultAssumptions()

	items := []BatchItem{
		{ModelID: "cheap", Request: UsageRequest{RequestsCount: 1}},
		{ModelID: "cheap", Request: UsageRequest{InputTokens: -1, RequestsCount: 1}},
	}
	results, err := eng.CalculateBatch(context.Background(), cat, items, a)
	if results != nil {
		t.Errorf("CalculateBatch() returned partial results")
	}
	if !calcerr.IsValidation(err) {
		t.Errorf("CalculateBatch() error = %v, want ValidationError", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = eng.CalculateBatch(ctx, cat, items[:1], a)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("CalculateBatch() with cancelled context error = %v, want context.Canceled", err)
	}

	empty, err := eng.CalculateBatch(context.Background(), cat, nil, a)
	if err != nil || len(empty) != 0 {
		t.Errorf("CalculateBatch(nil) = %v, %v", empty, err)
	}
}

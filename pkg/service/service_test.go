package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/routecost/pkg/calcerr"
	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/config"
	"mercator-hq/routecost/pkg/engine"
	"mercator-hq/routecost/pkg/history"
	"mercator-hq/routecost/pkg/history/storage"
	"mercator-hq/routecost/pkg/routers"
	"mercator-hq/routecost/pkg/telemetry/metrics"
	"mercator-hq/routecost/pkg/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Catalog.Models = []catalog.PricingModel{
		{ID: "small", Name: "Small", InputPricePer1K: 1, OutputPricePer1K: 2, EnergyPer1KTokensWh: 1},
		{ID: "large", Name: "Large", InputPricePer1K: 10, OutputPricePer1K: 20, EnergyPer1KTokensWh: 4},
	}
	cfg.Routers = []routers.RouterFee{
		{ID: "gateway", Layer: 1, Name: "Gateway", FeePct: 0.1, Enabled: true},
	}
	return cfg
}

func testRequest() engine.UsageRequest {
	return engine.UsageRequest{InputTokens: 1000, OutputTokens: 500, RequestsCount: 1}
}

type fixture struct {
	svc      *Service
	store    *storage.MemoryStorage
	registry *prometheus.Registry
}

func newFixture(t *testing.T, cfg *config.Config) fixture {
	t.Helper()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)
	store := storage.NewMemoryStorage()
	t.Cleanup(func() { store.Close() })

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, err := New(cfg,
		WithStore(store),
		WithMetrics(collector),
		WithClock(func() time.Time { return fixed }),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return fixture{svc: svc, store: store, registry: registry}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok {
			if v != lp.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(labels)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog.Models = append(cfg.Catalog.Models, catalog.PricingModel{ID: "small"})

	if _, err := New(cfg); err == nil {
		t.Fatal("New() expected error for duplicate model")
	}

	cfg = testConfig()
	cfg.Routers[0].FeePct = 2
	if _, err := New(cfg); !calcerr.IsValidation(err) {
		t.Errorf("New() error = %v, want ValidationError for fee > 1", err)
	}
}

func TestEstimate_UsesConfiguredRouterPath(t *testing.T) {
	f := newFixture(t, testConfig())

	res, err := f.svc.Estimate(context.Background(), "small", testRequest())
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}

	approx(t, "Subtotal", res.Breakdown.Subtotal, 2)
	approx(t, "RouterCommission", res.Breakdown.RouterCommission, 0.2)
	approx(t, "Total", res.Total(), 2.2)
	approx(t, "CommissionRate", res.CommissionRate, 0.1)
}

func TestEstimate_ExplicitEmptyPathSkipsCommission(t *testing.T) {
	f := newFixture(t, testConfig())

	req := testRequest()
	req.Routers = routers.RouterPath{}

	res, err := f.svc.Estimate(context.Background(), "small", req)
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	approx(t, "RouterCommission", res.Breakdown.RouterCommission, 0)
	approx(t, "Total", res.Total(), 2)
}

func TestEstimate_RejectsInvalidRequestPath(t *testing.T) {
	f := newFixture(t, testConfig())

	req := testRequest()
	req.Routers = routers.RouterPath{{ID: "bad", FeePct: -0.5, Enabled: true}}

	_, err := f.svc.Estimate(context.Background(), "small", req)
	if !calcerr.IsValidation(err) {
		t.Fatalf("Estimate() error = %v, want ValidationError", err)
	}
	if got := counterValue(t, f.registry, "routecost_operations_total", map[string]string{"operation": "estimate", "status": StatusValidation}); got != 1 {
		t.Errorf("validation operations = %v, want 1", got)
	}
}

func TestEstimate_RecordsHistoryAndMetrics(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Estimate(ctx, "small", testRequest()); err != nil {
			t.Fatalf("Estimate() error = %v", err)
		}
	}
	if _, err := f.svc.Estimate(ctx, "missing", testRequest()); !calcerr.IsModelNotFound(err) {
		t.Fatalf("Estimate() error = %v, want ModelNotFoundError", err)
	}

	n, err := f.store.Count(ctx, storage.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("stored records = %d, want 3", n)
	}

	records, err := f.svc.History(ctx, storage.Filter{Limit: 1})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(History()) = %d, want 1", len(records))
	}
	r := records[0]
	if r.ModelID != "small" || r.Requests != 1 {
		t.Errorf("record = %+v", r)
	}
	approx(t, "BaseCost", r.BaseCost, 2)
	approx(t, "Commission", r.Commission, 0.2)
	if !r.RecordedAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("RecordedAt = %v", r.RecordedAt)
	}

	tests := []struct {
		status string
		want   float64
	}{
		{StatusSuccess, 3},
		{StatusNotFound, 1},
	}
	for _, tt := range tests {
		got := counterValue(t, f.registry, "routecost_operations_total", map[string]string{"operation": "estimate", "status": tt.status})
		if got != tt.want {
			t.Errorf("operations{status=%s} = %v, want %v", tt.status, got, tt.want)
		}
	}
	if got := counterValue(t, f.registry, "routecost_history_records_stored_total", map[string]string{"backend": "memory"}); got != 3 {
		t.Errorf("history stored = %v, want 3", got)
	}
}

type failingStore struct {
	*storage.MemoryStorage
}

func (failingStore) Store(context.Context, *history.RunRecord) error {
	return errors.New("disk full")
}

func TestEstimate_StoreFailureDoesNotFail(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	svc, err := New(cfg,
		WithStore(failingStore{storage.NewMemoryStorage()}),
		WithMetrics(metrics.NewCollector(&cfg.Telemetry.Metrics, registry)),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Estimate(context.Background(), "small", testRequest()); err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	got := counterValue(t, registry, "routecost_history_errors_total", map[string]string{"backend": "memory", "operation": "store"})
	if got != 1 {
		t.Errorf("history errors = %v, want 1", got)
	}
}

func TestCompare(t *testing.T) {
	f := newFixture(t, testConfig())

	results, err := f.svc.Compare(context.Background(), nil, testRequest())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].ModelID != "small" || results[1].ModelID != "large" {
		t.Errorf("order = %s, %s; want small, large", results[0].ModelID, results[1].ModelID)
	}

	n, _ := f.store.Count(context.Background(), storage.Filter{})
	if n != 0 {
		t.Errorf("Compare() stored %d records, want 0", n)
	}
}

func TestBatch(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	items := []engine.BatchItem{
		{ModelID: "large", Request: testRequest()},
		{ModelID: "small", Request: engine.UsageRequest{InputTokens: 1000, OutputTokens: 500, RequestsCount: 2, Routers: routers.RouterPath{}}},
	}
	results, err := f.svc.Batch(ctx, items)
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	if results[0].ModelID != "large" || results[1].ModelID != "small" {
		t.Errorf("Batch() did not preserve order")
	}
	approx(t, "large total", results[0].Total(), 22)
	approx(t, "small total", results[1].Total(), 4)

	summary, err := f.svc.Summarize(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.Overall.Runs != 2 || len(summary.ByModel) != 2 {
		t.Errorf("summary = %+v", summary)
	}
	approx(t, "TotalCost", summary.Overall.TotalCost, 26)
	approx(t, "TotalCommission", summary.Overall.TotalCommission, 2)

	if _, err := f.svc.Batch(ctx, []engine.BatchItem{{ModelID: "small", Request: engine.UsageRequest{RequestsCount: -1}}}); !calcerr.IsValidation(err) {
		t.Errorf("Batch() error = %v, want ValidationError", err)
	}
}

func TestQuote(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	q, err := f.svc.Quote(ctx, "small", 2000)
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	approx(t, "BaseCost", q.BaseCost, 3)
	approx(t, "Commission", q.Commission, 0.3)
	approx(t, "TotalCost", q.TotalCost, 3.3)

	q, err = f.svc.QuoteWithPath(ctx, "small", 2000, routers.RouterPath{{ID: "a", FeePct: 0.2, Enabled: true}})
	if err != nil {
		t.Fatalf("QuoteWithPath() error = %v", err)
	}
	approx(t, "TotalCost", q.TotalCost, 3.6)

	if _, err := f.svc.Quote(ctx, "nope", 10); !calcerr.IsModelNotFound(err) {
		t.Errorf("Quote() error = %v, want ModelNotFoundError", err)
	}
}

func TestQuoteWithPath_Traced(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.NewWithExporter(&config.TracingConfig{Enabled: true, SampleRatio: 1}, exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	svc, err := New(testConfig(), WithTracer(tracer))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if _, err := svc.QuoteWithPath(ctx, "small", 2000, routers.RouterPath{{ID: "a", FeePct: 0.2, Enabled: true}}); err != nil {
		t.Fatalf("QuoteWithPath() error = %v", err)
	}
	if _, err := svc.QuoteWithPath(ctx, "small", 2000, routers.RouterPath{{ID: "a", FeePct: 0.9, Enabled: true}}); !calcerr.IsValidation(err) {
		t.Fatalf("QuoteWithPath() error = %v, want ValidationError", err)
	}

	if err := tracer.ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	wantStatus := []codes.Code{codes.Ok, codes.Error}
	for i, span := range spans {
		if span.Name != "service.quote" {
			t.Errorf("span[%d].Name = %q, want service.quote", i, span.Name)
		}
		if span.Status.Code != wantStatus[i] {
			t.Errorf("span[%d] status = %v, want %v", i, span.Status.Code, wantStatus[i])
		}
	}
}

func TestQuote_ConsistentDuringApply(t *testing.T) {
	cheap := testConfig()
	dear := testConfig()
	dear.Catalog.Models[0].InputPricePer1K = 2
	dear.Catalog.Models[0].OutputPricePer1K = 4
	dear.Routers[0].FeePct = 0.2

	f := newFixture(t, cheap)
	ctx := context.Background()

	// Each quote must come from a single configuration: rate 0.1 with
	// total 3.3, or rate 0.2 with total 7.2.
	want := map[float64]float64{0.1: 3.3, 0.2: 7.2}

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			cfg := cheap
			if i%2 == 0 {
				cfg = dear
			}
			if err := f.svc.Apply(cfg); err != nil {
				errs <- err
			}
		}(i)
		go func() {
			defer wg.Done()
			q, err := f.svc.Quote(ctx, "small", 2000)
			if err != nil {
				errs <- err
				return
			}
			total, ok := want[q.CommissionRate]
			if !ok || math.Abs(q.TotalCost-total) > 1e-9 {
				errs <- fmt.Errorf("quote mixes configurations: rate %v total %v", q.CommissionRate, q.TotalCost)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if f.svc.Generation() != 50 {
		t.Errorf("Generation() = %d, want 50", f.svc.Generation())
	}
}

func TestEquivalents(t *testing.T) {
	f := newFixture(t, testConfig())

	out, err := f.svc.Equivalents(context.Background(), 2500)
	if err != nil {
		t.Fatalf("Equivalents() error = %v", err)
	}
	if out.Energy.Unit != "kWh" {
		t.Errorf("Energy.Unit = %q, want kWh", out.Energy.Unit)
	}
	a := f.svc.Assumptions()
	approx(t, "CO2eKg", out.Equivalents.CO2eKg, 2.5*a.GridKgCO2ePerKWh)
	approx(t, "PhoneCharges", out.Equivalents.PhoneCharges, 2500/a.PhoneChargeWh)
}

func TestApply(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	var hooks atomic.Int32
	f.svc.OnUpdate(func() { hooks.Add(1) })

	cfg := testConfig()
	cfg.Routers = nil
	cfg.Catalog.Models[0].InputPricePer1K = 2
	if err := f.svc.Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if f.svc.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", f.svc.Generation())
	}
	if hooks.Load() != 1 {
		t.Errorf("hooks ran %d times, want 1", hooks.Load())
	}

	res, err := f.svc.Estimate(ctx, "small", testRequest())
	if err != nil {
		t.Fatal(err)
	}
	approx(t, "Total", res.Total(), 3)

	q, err := f.svc.Quote(ctx, "small", 1000)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, "Commission", q.Commission, 0)

	bad := testConfig()
	bad.Catalog.Models[1].ID = "small"
	if err := f.svc.Apply(bad); err == nil {
		t.Fatal("Apply() expected error for duplicate model")
	}
	if f.svc.Generation() != 1 || f.svc.Catalog().Len() != 2 {
		t.Errorf("failed Apply() changed state")
	}
}

func TestHistory_Disabled(t *testing.T) {
	svc, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.History(context.Background(), storage.Filter{}); !errors.Is(err, ErrHistoryDisabled) {
		t.Errorf("History() error = %v, want ErrHistoryDisabled", err)
	}
	if _, err := svc.Estimate(context.Background(), "small", testRequest()); err != nil {
		t.Errorf("Estimate() without store error = %v", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, StatusSuccess},
		{calcerr.NewValidationError("x", "bad"), StatusValidation},
		{calcerr.NewModelNotFoundError("m"), StatusNotFound},
		{calcerr.NewConfigurationError("x", "bad"), StatusConfiguration},
		{errors.New("boom"), StatusError},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

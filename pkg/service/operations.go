package service

import (
	"context"
	"time"

	"mercator-hq/routecost/pkg/costs"
	"mercator-hq/routecost/pkg/engine"
	"mercator-hq/routecost/pkg/history"
	"mercator-hq/routecost/pkg/history/storage"
	"mercator-hq/routecost/pkg/routers"
	"mercator-hq/routecost/pkg/sustain"
	"mercator-hq/routecost/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/trace"
)

// Estimate evaluates req against a single model and records the run.
func (s *Service) Estimate(ctx context.Context, modelID string, req engine.UsageRequest) (res *engine.Result, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "service.estimate")
	defer func() {
		s.observe(ctx, "estimate", start, err)
		tracing.End(span, err)
	}()

	st := s.snapshot()
	req, err = resolveRequest(req, st)
	if err != nil {
		return nil, err
	}

	res, err = st.engine.Evaluate(st.catalog, modelID, req, st.assumptions)
	if err != nil {
		return nil, err
	}

	tracing.SetEstimateAttributes(span, res.ModelID, res.RequestsCount, res.TotalTokens, res.Total())
	tracing.SetRouterAttributes(span, res.CommissionRate, len(req.Routers.Layers()))
	s.recordEstimate(res)
	s.persist(ctx, res, req)

	return res, nil
}

// Compare evaluates req against modelIDs (all catalog models when empty)
// and returns results cheapest first. Comparisons are not recorded.
func (s *Service) Compare(ctx context.Context, modelIDs []string, req engine.UsageRequest) (results []*engine.Result, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "service.compare")
	defer func() {
		s.observe(ctx, "compare", start, err)
		tracing.End(span, err)
	}()

	st := s.snapshot()
	req, err = resolveRequest(req, st)
	if err != nil {
		return nil, err
	}

	results, err = st.engine.CompareModels(ctx, st.catalog, modelIDs, req, st.assumptions)
	if err != nil {
		return nil, err
	}

	tracing.SetModelCount(span, len(results))
	s.metrics.RecordBatchSize("compare", len(results))
	for _, res := range results {
		s.recordEstimate(res)
	}

	return results, nil
}

// Batch evaluates heterogeneous items, preserving input order. Each
// result is recorded as a run.
func (s *Service) Batch(ctx context.Context, items []engine.BatchItem) (results []*engine.Result, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "service.batch")
	defer func() {
		s.observe(ctx, "batch", start, err)
		tracing.End(span, err)
	}()

	st := s.snapshot()
	resolved := make([]engine.BatchItem, len(items))
	for i, item := range items {
		req, err := resolveRequest(item.Request, st)
		if err != nil {
			return nil, err
		}
		resolved[i] = engine.BatchItem{ModelID: item.ModelID, Request: req}
	}

	results, err = st.engine.CalculateBatch(ctx, st.catalog, resolved, st.assumptions)
	if err != nil {
		return nil, err
	}

	tracing.SetModelCount(span, len(results))
	s.metrics.RecordBatchSize("batch", len(results))
	for i, res := range results {
		s.recordEstimate(res)
		s.persist(ctx, res, resolved[i].Request)
	}

	return results, nil
}

// Quote prices a flat token count with the configured router path.
func (s *Service) Quote(ctx context.Context, modelID string, tokens float64) (q *costs.Quote, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "service.quote")
	defer func() {
		s.observe(ctx, "quote", start, err)
		tracing.End(span, err)
	}()

	return s.quote(span, s.snapshot().calculator, modelID, tokens)
}

// QuoteWithPath prices a flat token count with an explicit router path.
func (s *Service) QuoteWithPath(ctx context.Context, modelID string, tokens float64, path routers.RouterPath) (q *costs.Quote, err error) {
	if path == nil {
		return s.Quote(ctx, modelID, tokens)
	}

	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "service.quote")
	defer func() {
		s.observe(ctx, "quote", start, err)
		tracing.End(span, err)
	}()

	return s.quote(span, costs.NewCalculator(s.Catalog(), path), modelID, tokens)
}

func (s *Service) quote(span trace.Span, calc *costs.Calculator, modelID string, tokens float64) (*costs.Quote, error) {
	q, err := calc.Quote(modelID, tokens)
	if err != nil {
		return nil, err
	}
	tracing.SetRouterAttributes(span, q.CommissionRate, len(calc.RouterPath().Layers()))
	return q, nil
}

// EquivalentsResult is an energy figure with its display form and
// real-world equivalents.
type EquivalentsResult struct {
	EnergyWh    float64             `json:"energy_wh"`
	Energy      sustain.Display     `json:"energy"`
	Equivalents sustain.Equivalents `json:"equivalents"`
	Assumptions sustain.Assumptions `json:"assumptions"`
}

// Equivalents converts energyWh using the active assumptions.
func (s *Service) Equivalents(ctx context.Context, energyWh float64) (out *EquivalentsResult, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "equivalents", start, err) }()

	a := s.Assumptions()
	eq, err := sustain.ToEquivalents(energyWh, a)
	if err != nil {
		return nil, err
	}
	return &EquivalentsResult{
		EnergyWh:    energyWh,
		Energy:      sustain.DisplayUnit(energyWh, "Wh"),
		Equivalents: eq,
		Assumptions: a,
	}, nil
}

// HistorySummary aggregates stored run records.
type HistorySummary struct {
	Overall history.CumulativeMetrics `json:"overall"`
	ByModel []history.ModelMetrics    `json:"by_model"`
}

// Summarize aggregates the records matching filter.
func (s *Service) Summarize(ctx context.Context, filter storage.Filter) (*HistorySummary, error) {
	records, err := s.History(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &HistorySummary{
		Overall: history.Aggregate(records),
		ByModel: history.AggregateByModel(records),
	}, nil
}

// History lists stored run records, most recent first.
func (s *Service) History(ctx context.Context, filter storage.Filter) ([]history.RunRecord, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store.List(ctx, filter)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/config"
	"mercator-hq/routecost/pkg/costs"
	"mercator-hq/routecost/pkg/engine"
	"mercator-hq/routecost/pkg/history"
	"mercator-hq/routecost/pkg/history/storage"
	"mercator-hq/routecost/pkg/routers"
	"mercator-hq/routecost/pkg/sustain"
	"mercator-hq/routecost/pkg/telemetry/metrics"
	"mercator-hq/routecost/pkg/telemetry/tracing"
)

// Option configures a Service.
type Option func(*Service)

// WithStore attaches a history store. Successful estimates are recorded.
func WithStore(store storage.Storage) Option {
	return func(s *Service) { s.store = store }
}

// WithMetrics attaches a Prometheus collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Service) { s.metrics = c }
}

// WithTracer attaches a tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source used for run records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// state is one generation of configuration-derived inputs.
type state struct {
	engine      *engine.Engine
	calculator  *costs.Calculator
	catalog     *catalog.Catalog
	path        routers.RouterPath
	assumptions sustain.Assumptions
	generation  uint64
}

// Service evaluates usage requests against the configured catalog.
type Service struct {
	mu    sync.RWMutex
	state state

	store   storage.Storage
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	logger  *slog.Logger
	now     func() time.Time

	hooksMu sync.Mutex
	hooks   []func()
}

// New builds a Service from cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{
		logger: slog.Default().With("component", "service"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	st, err := buildState(cfg)
	if err != nil {
		return nil, err
	}
	s.state = st

	return s, nil
}

func buildState(cfg *config.Config) (state, error) {
	cat, err := cfg.BuildCatalog()
	if err != nil {
		return state{}, fmt.Errorf("failed to build catalog: %w", err)
	}
	path := cfg.RouterPath()
	if err := path.Validate(); err != nil {
		return state{}, fmt.Errorf("invalid router path: %w", err)
	}
	a := cfg.Assumptions()
	if err := a.Validate(); err != nil {
		return state{}, fmt.Errorf("invalid sustainability assumptions: %w", err)
	}

	return state{
		engine:      engine.New(cfg.EngineOptions()),
		calculator:  costs.NewCalculator(cat, path),
		catalog:     cat,
		path:        path,
		assumptions: a,
	}, nil
}

// Apply replaces the catalog, router path, assumptions and engine options
// from cfg. On error the current state is kept. Registered update hooks run
// after a successful swap.
func (s *Service) Apply(cfg *config.Config) error {
	st, err := buildState(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	st.generation = s.state.generation + 1
	s.state = st
	s.mu.Unlock()

	s.logger.Info("configuration applied",
		"generation", st.generation,
		"models", st.catalog.Len(),
		"commission_rate", routers.CommissionRate(st.path),
	)

	s.hooksMu.Lock()
	hooks := make([]func(), len(s.hooks))
	copy(hooks, s.hooks)
	s.hooksMu.Unlock()
	for _, fn := range hooks {
		fn()
	}

	return nil
}

// OnUpdate registers fn to run after each successful Apply.
func (s *Service) OnUpdate(fn func()) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks = append(s.hooks, fn)
}

func (s *Service) snapshot() state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Generation increments on every successful Apply. Caches key on it.
func (s *Service) Generation() uint64 {
	return s.snapshot().generation
}

// Catalog returns the active catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.snapshot().catalog
}

// RouterPath returns the configured router path.
func (s *Service) RouterPath() routers.RouterPath {
	return s.snapshot().path
}

// Assumptions returns the active sustainability assumptions.
func (s *Service) Assumptions() sustain.Assumptions {
	return s.snapshot().assumptions
}

// Store returns the attached history store, or nil.
func (s *Service) Store() storage.Storage {
	return s.store
}

// resolveRequest fills in the configured router path and validates a
// caller-supplied one.
func resolveRequest(req engine.UsageRequest, st state) (engine.UsageRequest, error) {
	if req.Routers == nil {
		req.Routers = st.path
		return req, nil
	}
	if err := req.Routers.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

// observe ends span, records the operation metric and logs failures.
func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	status := Classify(err)
	s.metrics.RecordOperation(op, status, time.Since(start))
	if err != nil {
		s.logger.DebugContext(ctx, "operation failed",
			"operation", op,
			"status", status,
			"error", err,
		)
	}
}

func (s *Service) recordEstimate(res *engine.Result) {
	s.metrics.RecordEstimate(res.ModelID, metrics.EstimateSample{
		CostPerRequest: res.PerUnit.CostPerRequest,
		TotalCost:      res.Breakdown.Total,
		Commission:     res.Breakdown.RouterCommission,
		CommissionRate: res.CommissionRate,
		EnergyWh:       res.Sustainability.EnergyWh,
		CO2eKg:         res.Sustainability.Equivalents.CO2eKg,
	})
}

// persist stores a run record for res. Failures are logged, not returned.
func (s *Service) persist(ctx context.Context, res *engine.Result, req engine.UsageRequest) {
	if s.store == nil {
		return
	}
	record := history.RecordFromResult(res, req.InputTokens, req.OutputTokens, s.now())
	if err := s.store.Store(ctx, &record); err != nil {
		s.metrics.RecordHistoryError(s.store.Backend(), "store")
		s.logger.WarnContext(ctx, "failed to record run",
			"model", res.ModelID,
			"error", err,
		)
		return
	}
	s.metrics.RecordHistoryStored(s.store.Backend())
}

package metrics

import (
	"sync"
	"time"

	"mercator-hq/routecost/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// defaultNamespace is used when the config leaves Namespace empty.
	defaultNamespace = "routecost"

	// defaultMaxModels bounds the number of distinct model labels.
	defaultMaxModels = 1000

	// otherModel replaces model labels beyond the cardinality limit.
	otherModel = "other"
)

// EstimateSample carries the figures of one evaluated estimate.
type EstimateSample struct {
	CostPerRequest float64
	TotalCost      float64
	Commission     float64
	CommissionRate float64
	EnergyWh       float64
	CO2eKg         float64
}

// Collector is the orchestrator for all Prometheus metrics in routecost.
// It owns the registry and hands out the per-concern metric sets.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	operationMetrics *OperationMetrics
	costMetrics      *CostMetrics
	energyMetrics    *EnergyMetrics
	historyMetrics   *HistoryMetrics
	cacheMetrics     *CacheMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a metrics collector. If registry is nil a fresh
// registry is created, so tests never collide on the global one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{registry: registry}
	if cfg != nil {
		c.config = *cfg
	}
	if c.config.Namespace == "" {
		c.config.Namespace = defaultNamespace
	}
	if len(c.config.CostBuckets) == 0 {
		c.config.CostBuckets = config.DefaultCostBuckets
	}
	c.cardinalityLimiter = NewCardinalityLimiter(defaultMaxModels)

	c.operationMetrics = NewOperationMetrics(&c.config, registry)
	c.costMetrics = NewCostMetrics(&c.config, registry)
	c.energyMetrics = NewEnergyMetrics(&c.config, registry)
	c.historyMetrics = NewHistoryMetrics(&c.config, registry)
	c.cacheMetrics = NewCacheMetrics(&c.config, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

func (c *Collector) modelLabel(model string) string {
	if !c.cardinalityLimiter.Allow(model) {
		return otherModel
	}
	return model
}

// RecordOperation records one engine operation.
//
// Parameters:
//   - operation: "estimate", "compare", "batch", "quote" or "equivalents"
//   - status: "success" or an error class such as "validation"
//   - duration: wall time of the call
func (c *Collector) RecordOperation(operation, status string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.operationMetrics.Record(operation, status, duration)
}

// RecordBatchSize records how many items a batch or compare call evaluated.
func (c *Collector) RecordBatchSize(operation string, size int) {
	if !c.enabled() {
		return
	}
	c.operationMetrics.ObserveBatchSize(operation, size)
}

// RecordEstimate records cost and sustainability figures for one model result.
func (c *Collector) RecordEstimate(model string, s EstimateSample) {
	if !c.enabled() {
		return
	}
	model = c.modelLabel(model)
	c.costMetrics.Record(model, s.CostPerRequest, s.TotalCost, s.Commission)
	c.costMetrics.SetCommissionRate(s.CommissionRate)
	c.energyMetrics.Record(model, s.EnergyWh, s.CO2eKg)
}

// RecordHistoryStored records a persisted run record.
func (c *Collector) RecordHistoryStored(backend string) {
	if !c.enabled() {
		return
	}
	c.historyMetrics.RecordStored(backend)
}

// RecordHistoryError records a failed history operation.
func (c *Collector) RecordHistoryError(backend, operation string) {
	if !c.enabled() {
		return
	}
	c.historyMetrics.RecordError(backend, operation)
}

// RecordHistoryPruned records run records removed by retention.
func (c *Collector) RecordHistoryPruned(count int64) {
	if !c.enabled() {
		return
	}
	c.historyMetrics.RecordPruned(count)
}

// RecordCacheHit records a cache hit.
func (c *Collector) RecordCacheHit(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordHit(cacheName)
}

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordMiss(cacheName)
}

// RecordCacheEviction records a cache eviction or flush.
func (c *Collector) RecordCacheEviction(cacheName string) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.RecordEviction(cacheName)
}

// UpdateCacheSize updates the current size of a cache.
func (c *Collector) UpdateCacheSize(cacheName string, size int) {
	if !c.enabled() {
		return
	}
	c.cacheMetrics.UpdateSize(cacheName, size)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether a label value may be used. Known values are always
// allowed; new values are allowed until the limit is reached.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}

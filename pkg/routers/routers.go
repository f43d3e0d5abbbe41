package routers

import (
	"fmt"
	"math"
	"sort"

	"mercator-hq/routecost/pkg/calcerr"
)

const (
	// MaxCommissionRate is the platform-wide ceiling on the summed rate.
	MaxCommissionRate = 0.95

	// MaxFeePct is the largest fee a single router may declare.
	MaxFeePct = 0.5
)

// RouterFee is one fee-taking intermediary.
type RouterFee struct {
	ID      string  `yaml:"id" json:"id"`
	Layer   int     `yaml:"layer" json:"layer"`
	Name    string  `yaml:"name" json:"name"`
	FeePct  float64 `yaml:"fee_pct" json:"fee_pct"`
	Enabled bool    `yaml:"enabled" json:"enabled"`
}

// RouterPath is the ordered chain of routers between a caller and a model.
type RouterPath []RouterFee

// RawRate returns the unclamped sum of enabled fees.
func (p RouterPath) RawRate() float64 {
	var sum float64
	for _, r := range p {
		if r.Enabled {
			sum += r.FeePct
		}
	}
	return sum
}

// Enabled returns the routers that contribute to the commission.
func (p RouterPath) Enabled() RouterPath {
	out := make(RouterPath, 0, len(p))
	for _, r := range p {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// Layers returns the distinct layers of enabled routers in ascending order.
func (p RouterPath) Layers() []int {
	seen := make(map[int]struct{})
	var layers []int
	for _, r := range p {
		if !r.Enabled {
			continue
		}
		if _, ok := seen[r.Layer]; ok {
			continue
		}
		seen[r.Layer] = struct{}{}
		layers = append(layers, r.Layer)
	}
	sort.Ints(layers)
	return layers
}

// Capped reports whether the raw rate exceeds MaxCommissionRate.
func (p RouterPath) Capped() bool {
	return p.RawRate() > MaxCommissionRate
}

// Validate checks every router's fee against [0, MaxFeePct] and that IDs are
// unique.
func (p RouterPath) Validate() error {
	ids := make(map[string]struct{}, len(p))
	for i, r := range p {
		field := fmt.Sprintf("routers[%d].fee_pct", i)
		if math.IsNaN(r.FeePct) || r.FeePct < 0 || r.FeePct > MaxFeePct {
			return calcerr.NewValidationError(field, "fee must be between 0 and %v, got %v", MaxFeePct, r.FeePct)
		}
		if r.ID == "" {
			continue
		}
		if _, dup := ids[r.ID]; dup {
			return calcerr.NewValidationError(fmt.Sprintf("routers[%d].id", i), "duplicate router id %q", r.ID)
		}
		ids[r.ID] = struct{}{}
	}
	return nil
}

// CommissionRate returns the summed fee of enabled routers clamped to
// [0, MaxCommissionRate].
func CommissionRate(path RouterPath) float64 {
	return math.Min(MaxCommissionRate, math.Max(0, path.RawRate()))
}

// Commission returns the fee charged on baseCost by path.
func Commission(baseCost float64, path RouterPath) float64 {
	return baseCost * CommissionRate(path)
}

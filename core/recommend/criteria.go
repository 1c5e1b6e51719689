// Package recommend ranks filtered candidate pools with a multi-factor
// composite score: price, eviction risk, performance value, zone
// availability, and architecture fit, each normalized against the current
// pool rather than any global range.
package recommend

import (
	"github.com/shopspring/decimal"

	"spot-advisor/core/types"
)

// OptimizeFor selects the secondary scoring emphasis.
type OptimizeFor string

const (
	OptimizeCost        OptimizeFor = "cost"
	OptimizeReliability OptimizeFor = "reliability"
	OptimizePerformance OptimizeFor = "performance"
	OptimizeBalanced    OptimizeFor = "balanced"
)

// IsValid checks if the strategy is a known value
func (o OptimizeFor) IsValid() bool {
	switch o {
	case OptimizeCost, OptimizeReliability, OptimizePerformance, OptimizeBalanced:
		return true
	default:
		return false
	}
}

// Weights are the five sub-score weights. They are design-time constants
// that sum to 1.0 in the default configuration; custom values are used as
// supplied, not renormalized.
type Weights struct {
	Price        float64 `json:"price_weight"`
	Eviction     float64 `json:"eviction_weight"`
	Performance  float64 `json:"performance_weight"`
	Availability float64 `json:"availability_weight"`
	Architecture float64 `json:"architecture_weight"`
}

// DefaultWeights returns the default scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Price:        0.35,
		Eviction:     0.25,
		Performance:  0.20,
		Availability: 0.10,
		Architecture: 0.10,
	}
}

// Criteria is the immutable input to a scoring pass.
type Criteria struct {
	// MaxHourlyCost is an optional hard price ceiling
	MaxHourlyCost *decimal.Decimal `json:"max_hourly_cost,omitempty"`

	// MaxEvictionRate is an optional hard eviction-bucket ceiling
	MaxEvictionRate *types.EvictionRate `json:"max_eviction_rate,omitempty"`

	// MinAvailabilityZones is the minimum zone count (default 1)
	MinAvailabilityZones int `json:"min_availability_zones"`

	// OptimizeFor selects the secondary blend applied after weighting
	OptimizeFor OptimizeFor `json:"optimize_for"`

	// ArchitecturePreference is an optional soft architecture preference
	ArchitecturePreference *types.Architecture `json:"architecture_preference,omitempty"`

	// Weights are the sub-score weights
	Weights Weights `json:"weights"`
}

// DefaultCriteria returns balanced criteria with default weights.
func DefaultCriteria() Criteria {
	return Criteria{
		MinAvailabilityZones: 1,
		OptimizeFor:          OptimizeBalanced,
		Weights:              DefaultWeights(),
	}
}

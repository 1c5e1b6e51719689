// Package filter applies hard constraints to a candidate pool. Absent
// parameters impose no constraint; candidates are never mutated.
package filter

import (
	"strings"

	"github.com/shopspring/decimal"

	"spot-advisor/core/types"
)

// ZoneMatch selects how a requested zone list is compared to a
// candidate's zone set.
type ZoneMatch string

const (
	// ZoneMatchAny passes candidates whose zones intersect the request
	ZoneMatchAny ZoneMatch = "any"

	// ZoneMatchAll passes candidates whose zones are a superset of the request
	ZoneMatchAll ZoneMatch = "all"
)

// IsValid checks if the mode is a known value
func (z ZoneMatch) IsValid() bool {
	return z == ZoneMatchAny || z == ZoneMatchAll
}

// Params are the hard constraints for one filtering pass. Nil pointer
// fields are inactive.
type Params struct {
	// GPU selects GPU-only (true) or non-GPU-only (false) candidates.
	// There is no mode that includes both.
	GPU bool

	// Architecture, when set, requires an exact architecture match
	Architecture *types.Architecture

	// MinVCPUs excludes candidates that cannot prove the floor: a
	// candidate with an unknown vCPU count fails an active floor.
	MinVCPUs *int

	// MaxVCPUs excludes only candidates whose known value exceeds the
	// ceiling; unknown values pass through.
	MaxVCPUs *int

	// MinMemoryGB behaves like MinVCPUs for memory
	MinMemoryGB *float64

	// MaxMemoryGB behaves like MaxVCPUs for memory
	MaxMemoryGB *float64

	// SKULike is a case-insensitive substring match on the SKU name
	SKULike string

	// Zones is the requested zone set; empty means unconstrained
	Zones []string

	// ZoneMatch selects intersection (any) or superset (all) matching
	ZoneMatch ZoneMatch

	// MinZones is the minimum availability-zone count
	MinZones int

	// MaxHourlyCost excludes candidates whose known price exceeds the
	// ceiling; candidates without pricing pass through.
	MaxHourlyCost *decimal.Decimal

	// MaxEvictionRate excludes candidates whose known bucket exceeds the
	// ceiling. Candidates with an unknown rate are NOT excluded here;
	// only the scorer penalizes unknowns.
	MaxEvictionRate *types.EvictionRate
}

// Apply returns the subset of candidates passing all active constraints.
func Apply(pool []types.CandidateSpec, p Params) []types.CandidateSpec {
	out := make([]types.CandidateSpec, 0, len(pool))
	for i := range pool {
		if passes(&pool[i], p) {
			out = append(out, pool[i])
		}
	}
	return out
}

func passes(c *types.CandidateSpec, p Params) bool {
	// GPU inclusion is exclusive, not additive.
	if c.HasGPU != p.GPU {
		return false
	}

	if p.Architecture != nil && c.Architecture != *p.Architecture {
		return false
	}

	if p.MinVCPUs != nil && (c.VCPUs == nil || *c.VCPUs < *p.MinVCPUs) {
		return false
	}
	if p.MaxVCPUs != nil && c.VCPUs != nil && *c.VCPUs > *p.MaxVCPUs {
		return false
	}
	if p.MinMemoryGB != nil && (c.MemoryGB == nil || *c.MemoryGB < *p.MinMemoryGB) {
		return false
	}
	if p.MaxMemoryGB != nil && c.MemoryGB != nil && *c.MemoryGB > *p.MaxMemoryGB {
		return false
	}

	if p.SKULike != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(p.SKULike)) {
		return false
	}

	if len(c.Zones) < p.MinZones {
		return false
	}
	if !matchesZones(c.Zones, p.Zones, p.ZoneMatch) {
		return false
	}

	if p.MaxHourlyCost != nil && c.Pricing != nil && c.Pricing.Price.GreaterThan(*p.MaxHourlyCost) {
		return false
	}

	if p.MaxEvictionRate != nil && c.EvictionRate != nil {
		if !c.EvictionRate.WithinCeiling(*p.MaxEvictionRate) {
			return false
		}
	}

	return true
}

func matchesZones(have, want []string, mode ZoneMatch) bool {
	if len(want) == 0 {
		return true
	}
	haveSet := make(map[string]struct{}, len(have))
	for _, z := range have {
		haveSet[z] = struct{}{}
	}
	if mode == ZoneMatchAll {
		for _, z := range want {
			if _, ok := haveSet[z]; !ok {
				return false
			}
		}
		return true
	}
	for _, z := range want {
		if _, ok := haveSet[z]; ok {
			return true
		}
	}
	return false
}

package recommend

import (
	"math"
	"strings"

	"spot-advisor/core/types"
)

// ScoreBreakdown holds the five sub-scores of a candidate.
type ScoreBreakdown struct {
	Price        float64 `json:"price_score"`
	Eviction     float64 `json:"eviction_score"`
	Performance  float64 `json:"performance_score"`
	Availability float64 `json:"availability_score"`
	Architecture float64 `json:"architecture_score"`
}

// ScoredCandidate is a candidate plus its composite score, sub-score
// breakdown, and reasoning. Read-only after creation.
type ScoredCandidate struct {
	types.CandidateSpec

	// TotalScore is the weighted composite, rounded to 3 decimals. The
	// optimize-for blend can push it outside the [0,1] range of the
	// sub-scores because it is a second weighted blend, not a
	// renormalization.
	TotalScore float64 `json:"recommendation_score"`

	// Breakdown maps each scoring factor to its sub-score
	Breakdown ScoreBreakdown `json:"score_breakdown"`

	// Reason is a short human-readable justification
	Reason string `json:"recommendation_reason"`
}

// Fixed eviction-bucket scores. Missing data scores 0.3; a bucket outside
// the known set scores 0.1, below the worst known bucket.
var evictionScores = map[types.EvictionRate]float64{
	types.Eviction0To5:   1.0,
	types.Eviction5To10:  0.8,
	types.Eviction10To15: 0.6,
	types.Eviction15To20: 0.4,
	types.Eviction20Plus: 0.2,
}

const (
	missingEvictionScore = 0.3
	unknownBucketScore   = 0.1
	neutralScore         = 0.5
)

// poolStats holds per-pool aggregates so each candidate normalizes against
// the same snapshot of the filtered pool.
type poolStats struct {
	minPrice, maxPrice float64
	anyPrice           bool

	minRatio, maxRatio float64
	anyRatio           bool

	maxZones int
}

func computePoolStats(pool []types.CandidateSpec) poolStats {
	var st poolStats
	for i := range pool {
		c := &pool[i]

		if price, ok := c.HourlyPrice(); ok {
			if !st.anyPrice {
				st.minPrice, st.maxPrice = price, price
				st.anyPrice = true
			} else {
				st.minPrice = math.Min(st.minPrice, price)
				st.maxPrice = math.Max(st.maxPrice, price)
			}
		}

		if ratio, ok := costPerComputeUnit(c); ok {
			if !st.anyRatio {
				st.minRatio, st.maxRatio = ratio, ratio
				st.anyRatio = true
			} else {
				st.minRatio = math.Min(st.minRatio, ratio)
				st.maxRatio = math.Max(st.maxRatio, ratio)
			}
		}

		if zc := c.ZoneCount(); zc > st.maxZones {
			st.maxZones = zc
		}
	}
	return st
}

// costPerComputeUnit values 4 GB of memory at roughly one vCPU and
// returns price per combined unit. All three inputs must be known.
func costPerComputeUnit(c *types.CandidateSpec) (float64, bool) {
	price, ok := c.HourlyPrice()
	if !ok || c.VCPUs == nil || c.MemoryGB == nil {
		return 0, false
	}
	units := float64(*c.VCPUs) + *c.MemoryGB/4
	if units <= 0 {
		return 0, false
	}
	return price / units, true
}

// Score computes composite scores for every candidate in the filtered
// pool. Every sub-score is normalized relative to this pool, so the same
// SKU can score differently across requests with different competition.
// Score is a pure function of its inputs.
func Score(pool []types.CandidateSpec, criteria Criteria) []ScoredCandidate {
	stats := computePoolStats(pool)

	scored := make([]ScoredCandidate, 0, len(pool))
	for i := range pool {
		scored = append(scored, scoreCandidate(&pool[i], stats, criteria))
	}
	return scored
}

func scoreCandidate(c *types.CandidateSpec, stats poolStats, criteria Criteria) ScoredCandidate {
	var reasons []string

	priceScore := scorePrice(c, stats)
	if priceScore > 0.7 {
		reasons = append(reasons, "excellent pricing")
	} else if priceScore > 0.5 {
		reasons = append(reasons, "good pricing")
	}

	evictionScore := scoreEviction(c)
	if evictionScore > 0.8 {
		reasons = append(reasons, "very low eviction risk")
	} else if evictionScore > 0.6 {
		reasons = append(reasons, "low eviction risk")
	}

	performanceScore := scorePerformance(c, stats)
	if performanceScore > 0.7 {
		reasons = append(reasons, "excellent value")
	}

	availabilityScore := scoreAvailability(c, stats)
	if availabilityScore > 0.8 {
		reasons = append(reasons, "high availability")
	}

	architectureScore := scoreArchitecture(c, criteria)
	if architectureScore > 0.8 && c.Architecture == types.ArchitectureARM64 {
		reasons = append(reasons, "ARM64 efficiency advantage")
	}

	w := criteria.Weights
	total := priceScore*w.Price +
		evictionScore*w.Eviction +
		performanceScore*w.Performance +
		availabilityScore*w.Availability +
		architectureScore*w.Architecture

	// Secondary blend: re-emphasize one sub-score on top of the already
	// weighted composite. "balanced" applies no blend.
	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	switch criteria.OptimizeFor {
	case OptimizeCost:
		total = total*0.7 + priceScore*0.3
		reasons = append(reasons, "cost-optimized")
	case OptimizeReliability:
		total = total*0.7 + evictionScore*0.3
		reasons = append(reasons, "reliability-focused")
	case OptimizePerformance:
		total = total*0.7 + performanceScore*0.3
		reasons = append(reasons, "performance-optimized")
	}

	return ScoredCandidate{
		CandidateSpec: c.Clone(),
		TotalScore:    math.Round(total*1000) / 1000,
		Breakdown: ScoreBreakdown{
			Price:        priceScore,
			Eviction:     evictionScore,
			Performance:  performanceScore,
			Availability: availabilityScore,
			Architecture: architectureScore,
		},
		Reason: "Recommended for " + strings.Join(reasons, ", "),
	}
}

// scorePrice inverse-normalizes price within the pool's [min,max]: the
// cheapest candidate scores 1.0. Missing price is neutral; a degenerate
// pool where every known price is equal scores 1.0.
func scorePrice(c *types.CandidateSpec, stats poolStats) float64 {
	price, ok := c.HourlyPrice()
	if !ok || !stats.anyPrice {
		return neutralScore
	}
	if stats.maxPrice == stats.minPrice {
		return 1.0
	}
	return clamp01((stats.maxPrice - price) / (stats.maxPrice - stats.minPrice))
}

func scoreEviction(c *types.CandidateSpec) float64 {
	if c.EvictionRate == nil {
		return missingEvictionScore
	}
	if s, ok := evictionScores[*c.EvictionRate]; ok {
		return s
	}
	return unknownBucketScore
}

// scorePerformance inverse-normalizes cost per compute unit across the
// pool. Candidates missing price, vCPUs, or memory score neutrally.
func scorePerformance(c *types.CandidateSpec, stats poolStats) float64 {
	ratio, ok := costPerComputeUnit(c)
	if !ok || !stats.anyRatio {
		return neutralScore
	}
	if stats.maxRatio == stats.minRatio {
		return 1.0
	}
	return clamp01((stats.maxRatio - ratio) / (stats.maxRatio - stats.minRatio))
}

func scoreAvailability(c *types.CandidateSpec, stats poolStats) float64 {
	if stats.maxZones == 0 {
		return 0.0
	}
	return float64(c.ZoneCount()) / float64(stats.maxZones)
}

// scoreArchitecture gives ARM64 a slight structural edge when no
// preference is stated; a stated preference dominates.
func scoreArchitecture(c *types.CandidateSpec, criteria Criteria) float64 {
	if criteria.ArchitecturePreference == nil {
		if c.Architecture == types.ArchitectureARM64 {
			return 0.6
		}
		return 0.5
	}
	if c.Architecture == *criteria.ArchitecturePreference {
		return 1.0
	}
	return 0.3
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

package engine

import (
	"context"
	"fmt"
	"strings"

	"spot-advisor/core/filter"
	"spot-advisor/core/recommend"
)

// Recommendation limits mirror the caller-facing contract.
const (
	RecommendLimitDefault = 5
	RecommendLimitMin     = 1
	RecommendLimitMax     = 10
)

// NoCandidatesMessage explains an empty recommendation set. An empty
// result is a normal outcome, not an error.
const NoCandidatesMessage = "No spot SKUs found matching criteria"

// RecommendQuery selects and constrains a recommendation request.
type RecommendQuery struct {
	Region string
	Limit  int

	// Criteria drives constraint ceilings and scoring
	Criteria recommend.Criteria

	// GPU selects GPU-only (true) or non-GPU-only (false) candidates
	GPU bool

	MaxVCPUs     *int
	MaxMemoryGB  *float64
	CurrencyCode string
}

// RecommendResult is a ranked set of scored candidates.
type RecommendResult struct {
	Recommendations []recommend.ScoredCandidate `json:"recommendations"`

	// Message is set when the result is empty
	Message string `json:"message,omitempty"`

	// Warnings records degraded enrichment
	Warnings []string `json:"warnings,omitempty"`
}

// Recommend builds the filtered candidate pool for a region, enriches it
// with pricing and eviction data (concurrently, both best-effort), applies
// the enrichment-dependent ceilings, then scores and ranks the survivors.
func (e *Engine) Recommend(ctx context.Context, q RecommendQuery) (*RecommendResult, error) {
	region, err := normalizeRegion(q.Region)
	if err != nil {
		return nil, err
	}
	q.Region = region
	q.normalize(e.config.DefaultCurrency)

	key := q.cacheKey()
	if v, ok := e.cacheGet(key); ok {
		if cached, ok := v.(*RecommendResult); ok {
			return cached, nil
		}
	}

	// Structural constraints first: they do not depend on enrichment and
	// shrink the enrichment fan-out.
	pool, err := e.candidatePool(ctx, region, filter.Params{
		GPU:         q.GPU,
		MaxVCPUs:    q.MaxVCPUs,
		MaxMemoryGB: q.MaxMemoryGB,
		MinZones:    q.Criteria.MinAvailabilityZones,
	})
	if err != nil {
		return nil, err
	}

	enriched := e.enrich(ctx, pool, region, q.CurrencyCode, true, true)
	pool = enriched.Apply(pool)

	// Enrichment-dependent ceilings. Candidates with unknown price or
	// eviction rate pass through; the scorer penalizes unknowns instead.
	pool = filter.Apply(pool, filter.Params{
		GPU:             q.GPU,
		MinZones:        q.Criteria.MinAvailabilityZones,
		MaxHourlyCost:   q.Criteria.MaxHourlyCost,
		MaxEvictionRate: q.Criteria.MaxEvictionRate,
	})

	result := &RecommendResult{Warnings: enriched.Warnings}
	if len(pool) == 0 {
		result.Recommendations = []recommend.ScoredCandidate{}
		result.Message = NoCandidatesMessage
	} else {
		scored := recommend.Score(pool, q.Criteria)
		result.Recommendations = recommend.Rank(scored, q.Limit)
	}

	e.cacheSet(key, result, e.config.PricingTTL)
	return result, nil
}

func (q *RecommendQuery) normalize(defaultCurrency string) {
	if q.Limit <= 0 {
		q.Limit = RecommendLimitDefault
	}
	if q.Limit > RecommendLimitMax {
		q.Limit = RecommendLimitMax
	}
	if q.Criteria.MinAvailabilityZones <= 0 {
		q.Criteria.MinAvailabilityZones = 1
	}
	if q.Criteria.OptimizeFor == "" {
		q.Criteria.OptimizeFor = recommend.OptimizeBalanced
	}
	zero := recommend.Weights{}
	if q.Criteria.Weights == zero {
		q.Criteria.Weights = recommend.DefaultWeights()
	}
	if q.CurrencyCode == "" {
		q.CurrencyCode = defaultCurrency
	}
}

// cacheKey derives a deterministic signature from every query parameter.
func (q *RecommendQuery) cacheKey() string {
	c := q.Criteria
	maxCost := ""
	if c.MaxHourlyCost != nil {
		maxCost = c.MaxHourlyCost.String()
	}
	maxEviction := ""
	if c.MaxEvictionRate != nil {
		maxEviction = c.MaxEvictionRate.String()
	}
	arch := ""
	if c.ArchitecturePreference != nil {
		arch = c.ArchitecturePreference.String()
	}
	mem := ""
	if q.MaxMemoryGB != nil {
		mem = fmt.Sprintf("%g", *q.MaxMemoryGB)
	}
	return strings.Join([]string{
		"recommendations",
		q.Region,
		fmt.Sprintf("limit=%d", q.Limit),
		"optimize=" + string(c.OptimizeFor),
		"max_cost=" + maxCost,
		"max_eviction=" + maxEviction,
		"arch=" + arch,
		fmt.Sprintf("min_zones=%d", c.MinAvailabilityZones),
		fmt.Sprintf("weights=%g:%g:%g:%g:%g",
			c.Weights.Price, c.Weights.Eviction, c.Weights.Performance,
			c.Weights.Availability, c.Weights.Architecture),
		fmt.Sprintf("gpu=%t", q.GPU),
		"vcpus=" + intOrEmpty(q.MaxVCPUs),
		"mem=" + mem,
		"currency=" + q.CurrencyCode,
	}, "|")
}

package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"spot-advisor/core/filter"
	"spot-advisor/core/types"
)

// List query limits mirror the caller-facing contract.
const (
	ListLimitDefault = 200
	ListLimitMax     = 1000
)

// ListQuery selects and shapes the spot SKU listing.
type ListQuery struct {
	Region string

	// GPU selects GPU-only (true) or non-GPU-only (false) SKUs
	GPU bool

	Architecture *types.Architecture
	MinVCPUs     *int
	MaxVCPUs     *int
	MinMemoryGB  *float64
	MaxMemoryGB  *float64
	SKULike      string
	Zones        []string
	ZonesMatch   filter.ZoneMatch

	SortBy    string // name, family, vcpus, memory_gb
	SortOrder string // asc, desc
	Offset    int
	Limit     int

	IncludePricing       bool
	IncludeEvictionRates bool
	CurrencyCode         string
}

// ListResult is one page of matching candidates.
type ListResult struct {
	// Items is the shaped page of candidates
	Items []types.CandidateSpec `json:"items"`

	// Total is the number of matches before paging
	Total int `json:"total"`

	// Warnings records degraded enrichment, never fatal conditions
	Warnings []string `json:"warnings,omitempty"`
}

// ListSpotSKUs returns the spot-capable candidates for a region after
// normalization, deduplication, and constraint filtering. Results are
// cached by the full query signature; enrichment failures surface as
// warnings with the affected fields absent.
func (e *Engine) ListSpotSKUs(ctx context.Context, q ListQuery) (*ListResult, error) {
	region, err := normalizeRegion(q.Region)
	if err != nil {
		return nil, err
	}
	q.Region = region
	q.normalize(e.config.DefaultCurrency)

	key := q.cacheKey()
	if v, ok := e.cacheGet(key); ok {
		if cached, ok := v.(*ListResult); ok {
			return cached, nil
		}
	}

	pool, err := e.candidatePool(ctx, region, filter.Params{
		GPU:          q.GPU,
		Architecture: q.Architecture,
		MinVCPUs:     q.MinVCPUs,
		MaxVCPUs:     q.MaxVCPUs,
		MinMemoryGB:  q.MinMemoryGB,
		MaxMemoryGB:  q.MaxMemoryGB,
		SKULike:      q.SKULike,
		Zones:        q.Zones,
		ZoneMatch:    q.ZonesMatch,
	})
	if err != nil {
		return nil, err
	}

	sortCandidates(pool, q.SortBy, q.SortOrder)

	total := len(pool)
	page := pageOf(pool, q.Offset, q.Limit)

	result := &ListResult{Items: page, Total: total}
	if q.IncludePricing || q.IncludeEvictionRates {
		enriched := e.enrich(ctx, page, region, q.CurrencyCode, q.IncludePricing, q.IncludeEvictionRates)
		result.Items = enriched.Apply(page)
		result.Warnings = enriched.Warnings
	}

	ttl := e.config.CatalogTTL
	if q.IncludePricing {
		ttl = e.config.PricingTTL
	}
	e.cacheSet(key, result, ttl)
	return result, nil
}

func (q *ListQuery) normalize(defaultCurrency string) {
	if q.ZonesMatch == "" {
		q.ZonesMatch = filter.ZoneMatchAny
	}
	if q.Limit <= 0 {
		q.Limit = ListLimitDefault
	}
	if q.Limit > ListLimitMax {
		q.Limit = ListLimitMax
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.SortOrder == "" {
		q.SortOrder = "asc"
	}
	if q.CurrencyCode == "" {
		q.CurrencyCode = defaultCurrency
	}
}

// cacheKey derives a deterministic signature from every query parameter.
func (q *ListQuery) cacheKey() string {
	zones := append([]string(nil), q.Zones...)
	sort.Strings(zones)
	arch := ""
	if q.Architecture != nil {
		arch = q.Architecture.String()
	}
	return strings.Join([]string{
		"spot_skus",
		q.Region,
		fmt.Sprintf("gpu=%t", q.GPU),
		"arch=" + arch,
		"vcpus=" + intRange(q.MinVCPUs, q.MaxVCPUs),
		"mem=" + floatRange(q.MinMemoryGB, q.MaxMemoryGB),
		"like=" + strings.ToLower(q.SKULike),
		"zones=" + strings.Join(zones, ",") + ":" + string(q.ZonesMatch),
		fmt.Sprintf("sort=%s:%s", q.SortBy, q.SortOrder),
		fmt.Sprintf("page=%d:%d", q.Offset, q.Limit),
		fmt.Sprintf("enrich=%t:%t:%s", q.IncludePricing, q.IncludeEvictionRates, q.CurrencyCode),
	}, "|")
}

func intRange(min, max *int) string {
	return fmt.Sprintf("%s-%s", intOrEmpty(min), intOrEmpty(max))
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func floatRange(min, max *float64) string {
	f := func(v *float64) string {
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%g", *v)
	}
	return fmt.Sprintf("%s-%s", f(min), f(max))
}

func pageOf(pool []types.CandidateSpec, offset, limit int) []types.CandidateSpec {
	if offset >= len(pool) {
		return []types.CandidateSpec{}
	}
	end := offset + limit
	if end > len(pool) {
		end = len(pool)
	}
	return append([]types.CandidateSpec{}, pool[offset:end]...)
}

// sortCandidates orders a pool by the requested field with unknown values
// last. The default order groups by family, then name.
func sortCandidates(pool []types.CandidateSpec, sortBy, sortOrder string) {
	desc := sortOrder == "desc"

	less := func(i, j int) bool {
		a, b := &pool[i], &pool[j]
		switch sortBy {
		case "name":
			return lessString(a.Name, b.Name, desc)
		case "vcpus":
			return lessOptionalFloat(intToFloat(a.VCPUs), intToFloat(b.VCPUs), a.Name, b.Name, desc)
		case "memory_gb":
			return lessOptionalFloat(a.MemoryGB, b.MemoryGB, a.Name, b.Name, desc)
		case "family":
			if a.Family != b.Family {
				return lessString(a.Family, b.Family, desc)
			}
			return lessString(a.Name, b.Name, desc)
		default:
			if a.Family != b.Family {
				return a.Family < b.Family
			}
			return a.Name < b.Name
		}
	}
	sort.SliceStable(pool, less)
}

func lessString(a, b string, desc bool) bool {
	if desc {
		return a > b
	}
	return a < b
}

// lessOptionalFloat sorts nil values last regardless of direction and
// falls back to name order for equal values.
func lessOptionalFloat(a, b *float64, aName, bName string, desc bool) bool {
	switch {
	case a == nil && b == nil:
		return aName < bName
	case a == nil:
		return false
	case b == nil:
		return true
	case *a == *b:
		return aName < bName
	case desc:
		return *a > *b
	default:
		return *a < *b
	}
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

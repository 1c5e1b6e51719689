// Package engine provides the primary advisor pipeline.
// CLI and HTTP surfaces are thin wrappers around this engine.
package engine

import (
	"context"
	"strings"
	"time"

	"spot-advisor/core/catalog"
	"spot-advisor/core/filter"
	"spot-advisor/core/types"
	"spot-advisor/internal/errors"
	"spot-advisor/internal/metrics"
)

// CatalogSource lists raw provider SKU records for a region. A catalog
// failure is fatal to the request: no candidates are possible without it.
type CatalogSource interface {
	ListRawSKUs(ctx context.Context, region string) ([]catalog.RawSKU, error)
}

// PricingSource returns spot pricing rows grouped by SKU name. Best
// effort: a failure degrades the request to no pricing.
type PricingSource interface {
	PricingForSKUs(ctx context.Context, names []string, region, currency string) (map[string][]types.PricingRecord, error)
}

// EvictionSource returns eviction-rate buckets keyed by SKU name then
// location. Best effort, same degrade rule as pricing.
type EvictionSource interface {
	EvictionRates(ctx context.Context, names []string, locations []string) (map[string]map[string]types.EvictionRate, error)
}

// Cache stores immutable result snapshots keyed by request signature.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
}

// Config holds engine-level settings.
type Config struct {
	// DefaultCurrency applies when a query omits a currency code
	DefaultCurrency string

	// CatalogTTL caches results derived only from the catalog
	CatalogTTL time.Duration

	// PricingTTL caches pricing-enriched results
	PricingTTL time.Duration
}

// Engine orchestrates one request pipeline: catalog fetch, normalization,
// aggregation, filtering, enrichment, scoring, and ranking. It holds no
// per-request state; the only shared resource is the injected cache.
type Engine struct {
	catalogSource  CatalogSource
	pricingSource  PricingSource
	evictionSource EvictionSource
	cache          Cache
	config         Config
}

// New creates an engine. The cache may be nil to disable caching; pricing
// and eviction sources may be nil, in which case enrichment is skipped
// with a warning.
func New(cat CatalogSource, pricing PricingSource, eviction EvictionSource, cache Cache, cfg Config) *Engine {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
	return &Engine{
		catalogSource:  cat,
		pricingSource:  pricing,
		evictionSource: eviction,
		cache:          cache,
		config:         cfg,
	}
}

// candidatePool fetches, normalizes, aggregates, and filters candidates
// for a region. The returned pool is sorted by (family, name) so scoring
// tie-breaks and paging are deterministic across identical requests.
func (e *Engine) candidatePool(ctx context.Context, region string, params filter.Params) ([]types.CandidateSpec, error) {
	start := time.Now()
	raw, err := e.catalogSource.ListRawSKUs(ctx, region)
	metrics.ObserveUpstream("catalog", err, time.Since(start))
	if err != nil {
		return nil, errors.Upstream("failed to fetch SKUs from provider", err).
			WithContext("region", region)
	}

	normalized := make([]types.CandidateSpec, 0, len(raw))
	for _, r := range raw {
		if spec, ok := catalog.Normalize(r, region); ok {
			normalized = append(normalized, *spec)
		}
	}

	pool := filter.Apply(catalog.Aggregate(normalized), params)
	sortCandidates(pool, "", "")
	return pool, nil
}

func normalizeRegion(region string) (string, error) {
	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		return "", errors.Input("region parameter is required and cannot be empty")
	}
	return region, nil
}

func (e *Engine) cacheGet(key string) (interface{}, bool) {
	if e.cache == nil {
		return nil, false
	}
	v, ok := e.cache.Get(key)
	if ok {
		metrics.CacheHit()
	} else {
		metrics.CacheMiss()
	}
	return v, ok
}

func (e *Engine) cacheSet(key string, value interface{}, ttl time.Duration) {
	if e.cache != nil {
		e.cache.Set(key, value, ttl)
	}
}

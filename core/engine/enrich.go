package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"spot-advisor/core/types"
	"spot-advisor/internal/logging"
	"spot-advisor/internal/metrics"

	"go.uber.org/zap"
)

// EnrichmentResult is the explicit outcome of the enrichment step:
// whatever data arrived plus warnings for whatever did not. Partial
// enrichment is a supported degraded mode, never an error.
type EnrichmentResult struct {
	Pricing  map[string][]types.PricingRecord
	Eviction map[string]types.EvictionRate // keyed by lowercased SKU name
	Warnings []string
}

// enrich fetches pricing and eviction rates for a pool concurrently.
// Each fetch failure is logged, recorded as a warning, and leaves the
// corresponding fields absent. The call returns only after both fetches
// complete or definitively fail.
func (e *Engine) enrich(ctx context.Context, pool []types.CandidateSpec, region, currency string, wantPricing, wantEviction bool) EnrichmentResult {
	result := EnrichmentResult{}
	if len(pool) == 0 {
		return result
	}

	names := make([]string, 0, len(pool))
	for i := range pool {
		names = append(names, pool[i].Name)
	}

	var mu sync.Mutex
	warn := func(msg string) {
		mu.Lock()
		result.Warnings = append(result.Warnings, msg)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	if wantPricing && e.pricingSource != nil {
		g.Go(func() error {
			start := time.Now()
			pricing, err := e.pricingSource.PricingForSKUs(gctx, names, region, currency)
			metrics.ObserveUpstream("pricing", err, time.Since(start))
			if err != nil {
				logging.Warn("pricing enrichment failed, proceeding without pricing",
					zap.String("region", region), zap.Error(err))
				warn("pricing data unavailable: " + err.Error())
				return nil
			}
			mu.Lock()
			result.Pricing = pricing
			mu.Unlock()
			return nil
		})
	} else if wantPricing {
		warn("pricing source not configured")
	}

	if wantEviction && e.evictionSource != nil {
		g.Go(func() error {
			start := time.Now()
			rates, err := e.evictionSource.EvictionRates(gctx, names, []string{region})
			metrics.ObserveUpstream("eviction", err, time.Since(start))
			if err != nil {
				logging.Warn("eviction enrichment failed, proceeding without eviction rates",
					zap.String("region", region), zap.Error(err))
				warn("eviction rate data unavailable: " + err.Error())
				return nil
			}
			byName := flattenEvictionRates(rates, region)
			mu.Lock()
			result.Eviction = byName
			mu.Unlock()
			return nil
		})
	} else if wantEviction {
		warn("eviction source not configured")
	}

	// Goroutines never return errors; failures degrade to warnings.
	_ = g.Wait()
	return result
}

// Apply attaches enrichment data to a copy of the pool. Only the first
// matching pricing row per SKU is attached; additional rows are ignored.
func (r *EnrichmentResult) Apply(pool []types.CandidateSpec) []types.CandidateSpec {
	out := make([]types.CandidateSpec, 0, len(pool))
	pricingByName := lowerKeyed(r.Pricing)

	for i := range pool {
		c := pool[i].Clone()
		nameLower := strings.ToLower(c.Name)

		if rows, ok := pricingByName[nameLower]; ok && len(rows) > 0 {
			rec := rows[0]
			c.Pricing = &rec
		}
		if rate, ok := r.Eviction[nameLower]; ok {
			rv := rate
			c.EvictionRate = &rv
		}
		out = append(out, c)
	}
	return out
}

// flattenEvictionRates extracts the bucket for the target region from the
// name -> location -> bucket mapping, matching names and locations
// case-insensitively.
func flattenEvictionRates(rates map[string]map[string]types.EvictionRate, region string) map[string]types.EvictionRate {
	out := make(map[string]types.EvictionRate, len(rates))
	for name, byLocation := range rates {
		for location, bucket := range byLocation {
			if strings.EqualFold(location, region) {
				out[strings.ToLower(name)] = bucket
				break
			}
		}
	}
	return out
}

func lowerKeyed(m map[string][]types.PricingRecord) map[string][]types.PricingRecord {
	out := make(map[string][]types.PricingRecord, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

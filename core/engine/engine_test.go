package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spot-advisor/core/catalog"
	"spot-advisor/core/types"
	"spot-advisor/internal/cache"
	"spot-advisor/internal/errors"
)

type fakeCatalog struct {
	skus  []catalog.RawSKU
	err   error
	calls int
}

func (f *fakeCatalog) ListRawSKUs(ctx context.Context, region string) ([]catalog.RawSKU, error) {
	f.calls++
	return f.skus, f.err
}

type fakePricing struct {
	rows map[string][]types.PricingRecord
	err  error
}

func (f *fakePricing) PricingForSKUs(ctx context.Context, names []string, region, currency string) (map[string][]types.PricingRecord, error) {
	return f.rows, f.err
}

type fakeEviction struct {
	rates map[string]map[string]types.EvictionRate
	err   error
}

func (f *fakeEviction) EvictionRates(ctx context.Context, names, locations []string) (map[string]map[string]types.EvictionRate, error) {
	return f.rates, f.err
}

func decimalFrom(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// rawSpot builds a spot-capable VM record with the given zones.
func rawSpot(name, family, vcpus, memoryGB string, zones ...string) catalog.RawSKU {
	sku := catalog.RawSKU{
		Name:         name,
		ResourceType: "virtualMachines",
		Family:       family,
		Capabilities: []catalog.Capability{
			{Name: "LowPriorityCapable", Value: "True"},
			{Name: "vCPUs", Value: vcpus},
			{Name: "MemoryGB", Value: memoryGB},
		},
	}
	if len(zones) > 0 {
		sku.LocationInfo = []catalog.LocationInfo{{Location: "eastus", Zones: zones}}
	}
	return sku
}

func newTestEngine(cat CatalogSource, pricing PricingSource, eviction EvictionSource, store Cache) *Engine {
	return New(cat, pricing, eviction, store, Config{
		DefaultCurrency: "USD",
		CatalogTTL:      time.Minute,
		PricingTTL:      time.Minute,
	})
}

func TestRecommendRequiresRegion(t *testing.T) {
	eng := newTestEngine(&fakeCatalog{}, nil, nil, nil)

	_, err := eng.Recommend(context.Background(), RecommendQuery{Region: "  "})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestRecommendCatalogFailureIsFatal(t *testing.T) {
	cat := &fakeCatalog{err: errors.New(errors.TypeUpstream, "listing failed")}
	eng := newTestEngine(cat, nil, nil, nil)

	_, err := eng.Recommend(context.Background(), RecommendQuery{Region: "eastus"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeUpstream))
}

func TestRecommendEmptyCatalogReturnsMessage(t *testing.T) {
	eng := newTestEngine(&fakeCatalog{}, &fakePricing{}, &fakeEviction{}, nil)

	result, err := eng.Recommend(context.Background(), RecommendQuery{Region: "eastus"})
	require.NoError(t, err)
	assert.Empty(t, result.Recommendations)
	assert.Equal(t, NoCandidatesMessage, result.Message)
}

func TestRecommendRanksEnrichedCandidates(t *testing.T) {
	cat := &fakeCatalog{skus: []catalog.RawSKU{
		rawSpot("Standard_D2s_v5", "standardDSv5Family", "2", "8", "1", "2"),
		rawSpot("Standard_E4s_v5", "standardESv5Family", "4", "32", "1"),
	}}
	pricing := &fakePricing{rows: map[string][]types.PricingRecord{
		"Standard_D2s_v5": {{Price: decimalFrom(0.02), Currency: "USD"}},
		"Standard_E4s_v5": {{Price: decimalFrom(0.09), Currency: "USD"}},
	}}
	eviction := &fakeEviction{rates: map[string]map[string]types.EvictionRate{
		"Standard_D2s_v5": {"eastus": types.Eviction0To5},
		"Standard_E4s_v5": {"eastus": types.Eviction20Plus},
	}}
	eng := newTestEngine(cat, pricing, eviction, nil)

	result, err := eng.Recommend(context.Background(), RecommendQuery{Region: "EastUS"})
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 2)
	assert.Empty(t, result.Warnings)

	top := result.Recommendations[0]
	assert.Equal(t, "Standard_D2s_v5", top.Name)
	require.NotNil(t, top.Pricing)
	require.NotNil(t, top.EvictionRate)
	assert.Equal(t, types.Eviction0To5, *top.EvictionRate)
	assert.Greater(t, top.TotalScore, result.Recommendations[1].TotalScore)
}

func TestRecommendDegradesWhenEnrichmentFails(t *testing.T) {
	cat := &fakeCatalog{skus: []catalog.RawSKU{
		rawSpot("Standard_D2s_v5", "standardDSv5Family", "2", "8", "1"),
	}}
	pricing := &fakePricing{err: errors.New(errors.TypeUpstream, "pricing api down")}
	eviction := &fakeEviction{err: errors.New(errors.TypeUpstream, "graph api down")}
	eng := newTestEngine(cat, pricing, eviction, nil)

	result, err := eng.Recommend(context.Background(), RecommendQuery{Region: "eastus"})
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)

	rec := result.Recommendations[0]
	assert.Nil(t, rec.Pricing)
	assert.Nil(t, rec.EvictionRate)
	assert.Len(t, result.Warnings, 2)
}

func TestRecommendUnconfiguredSourcesWarn(t *testing.T) {
	cat := &fakeCatalog{skus: []catalog.RawSKU{
		rawSpot("Standard_D2s_v5", "standardDSv5Family", "2", "8", "1"),
	}}
	eng := newTestEngine(cat, nil, nil, nil)

	result, err := eng.Recommend(context.Background(), RecommendQuery{Region: "eastus"})
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, "pricing source not configured")
	assert.Contains(t, result.Warnings, "eviction source not configured")
}

func TestRecommendMixesFetchFailureWithMissingSource(t *testing.T) {
	cat := &fakeCatalog{skus: []catalog.RawSKU{
		rawSpot("Standard_D2s_v5", "standardDSv5Family", "2", "8", "1"),
	}}
	pricing := &fakePricing{err: errors.New(errors.TypeUpstream, "pricing api down")}
	eng := newTestEngine(cat, pricing, nil, nil)

	result, err := eng.Recommend(context.Background(), RecommendQuery{Region: "eastus"})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings, "pricing data unavailable: [UPSTREAM_ERROR] pricing api down")
	assert.Contains(t, result.Warnings, "eviction source not configured")
}

func TestRecommendCachesBySignature(t *testing.T) {
	cat := &fakeCatalog{skus: []catalog.RawSKU{
		rawSpot("Standard_D2s_v5", "standardDSv5Family", "2", "8", "1"),
	}}
	eng := newTestEngine(cat, &fakePricing{}, &fakeEviction{}, cache.New(16))

	q := RecommendQuery{Region: "eastus", Limit: 3}
	first, err := eng.Recommend(context.Background(), q)
	require.NoError(t, err)
	second, err := eng.Recommend(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, cat.calls)
	assert.Equal(t, first, second)

	// A different limit is a different signature.
	_, err = eng.Recommend(context.Background(), RecommendQuery{Region: "eastus", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, cat.calls)
}

func TestListSpotSKUsRequiresRegion(t *testing.T) {
	eng := newTestEngine(&fakeCatalog{}, nil, nil, nil)

	_, err := eng.ListSpotSKUs(context.Background(), ListQuery{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestListSpotSKUsSortsAndPages(t *testing.T) {
	cat := &fakeCatalog{skus: []catalog.RawSKU{
		rawSpot("Standard_E4s_v5", "standardESv5Family", "4", "32", "1"),
		rawSpot("Standard_D2s_v5", "standardDSv5Family", "2", "8", "1"),
		rawSpot("Standard_F8s_v2", "standardFSv2Family", "8", "16", "1"),
	}}
	eng := newTestEngine(cat, nil, nil, nil)

	result, err := eng.ListSpotSKUs(context.Background(), ListQuery{
		Region:    "eastus",
		SortBy:    "vcpus",
		SortOrder: "desc",
		Limit:     2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Standard_F8s_v2", result.Items[0].Name)
	assert.Equal(t, "Standard_E4s_v5", result.Items[1].Name)

	offsetResult, err := eng.ListSpotSKUs(context.Background(), ListQuery{
		Region:    "eastus",
		SortBy:    "vcpus",
		SortOrder: "desc",
		Offset:    2,
		Limit:     2,
	})
	require.NoError(t, err)
	require.Len(t, offsetResult.Items, 1)
	assert.Equal(t, "Standard_D2s_v5", offsetResult.Items[0].Name)
}

func TestListSpotSKUsEnrichesOnRequest(t *testing.T) {
	cat := &fakeCatalog{skus: []catalog.RawSKU{
		rawSpot("Standard_D2s_v5", "standardDSv5Family", "2", "8", "1"),
	}}
	pricing := &fakePricing{rows: map[string][]types.PricingRecord{
		"Standard_D2s_v5": {{Price: decimalFrom(0.02), Currency: "USD"}},
	}}
	eng := newTestEngine(cat, pricing, &fakeEviction{}, nil)

	plain, err := eng.ListSpotSKUs(context.Background(), ListQuery{Region: "eastus"})
	require.NoError(t, err)
	require.Len(t, plain.Items, 1)
	assert.Nil(t, plain.Items[0].Pricing)

	enriched, err := eng.ListSpotSKUs(context.Background(), ListQuery{
		Region:         "eastus",
		IncludePricing: true,
	})
	require.NoError(t, err)
	require.Len(t, enriched.Items, 1)
	require.NotNil(t, enriched.Items[0].Pricing)
	assert.Equal(t, "USD", enriched.Items[0].Pricing.Currency)
}

func TestListSpotSKUsFiltersBSeriesAndNonSpot(t *testing.T) {
	nonSpot := rawSpot("Standard_M8ms", "standardMSFamily", "8", "218", "1")
	nonSpot.Capabilities[0].Value = "False"

	cat := &fakeCatalog{skus: []catalog.RawSKU{
		rawSpot("Standard_B2s", "standardBSFamily", "2", "4", "1"),
		nonSpot,
		rawSpot("Standard_D2s_v5", "standardDSv5Family", "2", "8", "1"),
	}}
	eng := newTestEngine(cat, nil, nil, nil)

	result, err := eng.ListSpotSKUs(context.Background(), ListQuery{Region: "eastus"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Standard_D2s_v5", result.Items[0].Name)
}

package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spot-advisor/core/types"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func archPtr(a types.Architecture) *types.Architecture { return &a }
func ratePtr(r types.EvictionRate) *types.EvictionRate { return &r }

func names(pool []types.CandidateSpec) []string {
	out := make([]string, 0, len(pool))
	for i := range pool {
		out = append(out, pool[i].Name)
	}
	return out
}

func TestApplyGPUIsExclusive(t *testing.T) {
	pool := []types.CandidateSpec{
		{Name: "Standard_D4s_v5", HasGPU: false},
		{Name: "Standard_NC6s_v3", HasGPU: true},
	}

	assert.Equal(t, []string{"Standard_D4s_v5"}, names(Apply(pool, Params{GPU: false})))
	assert.Equal(t, []string{"Standard_NC6s_v3"}, names(Apply(pool, Params{GPU: true})))
}

func TestApplyArchitecture(t *testing.T) {
	pool := []types.CandidateSpec{
		{Name: "x64", Architecture: types.ArchitectureX64},
		{Name: "arm", Architecture: types.ArchitectureARM64},
	}

	out := Apply(pool, Params{Architecture: archPtr(types.ArchitectureARM64)})
	assert.Equal(t, []string{"arm"}, names(out))
}

func TestApplyCapacityBounds(t *testing.T) {
	pool := []types.CandidateSpec{
		{Name: "small", VCPUs: intPtr(2), MemoryGB: floatPtr(4)},
		{Name: "large", VCPUs: intPtr(64), MemoryGB: floatPtr(256)},
		{Name: "unknown"},
	}

	tests := []struct {
		name   string
		params Params
		want   []string
	}{
		// Ceilings pass candidates with unknown capacity.
		{"max vcpus", Params{MaxVCPUs: intPtr(8)}, []string{"small", "unknown"}},
		{"max memory", Params{MaxMemoryGB: floatPtr(16)}, []string{"small", "unknown"}},
		// Floors require a known value.
		{"min vcpus", Params{MinVCPUs: intPtr(4)}, []string{"large"}},
		{"min memory", Params{MinMemoryGB: floatPtr(8)}, []string{"large"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Apply(pool, tt.params)))
		})
	}
}

func TestApplySKULike(t *testing.T) {
	pool := []types.CandidateSpec{
		{Name: "Standard_D4s_v5"},
		{Name: "Standard_E8s_v5"},
	}

	out := Apply(pool, Params{SKULike: "d4S"})
	assert.Equal(t, []string{"Standard_D4s_v5"}, names(out))
}

func TestApplyZoneConstraints(t *testing.T) {
	pool := []types.CandidateSpec{
		{Name: "one", Zones: []string{"1"}},
		{Name: "two", Zones: []string{"1", "2"}},
		{Name: "three", Zones: []string{"1", "2", "3"}},
		{Name: "none"},
	}

	tests := []struct {
		name   string
		params Params
		want   []string
	}{
		{"min zones", Params{MinZones: 2}, []string{"two", "three"}},
		{"any intersects", Params{Zones: []string{"2", "3"}, ZoneMatch: ZoneMatchAny}, []string{"two", "three"}},
		{"all superset", Params{Zones: []string{"2", "3"}, ZoneMatch: ZoneMatchAll}, []string{"three"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Apply(pool, tt.params)))
		})
	}
}

func TestApplyCostCeiling(t *testing.T) {
	cheap := decimal.NewFromFloat(0.05)
	dear := decimal.NewFromFloat(0.90)
	ceiling := decimal.NewFromFloat(0.10)

	pool := []types.CandidateSpec{
		{Name: "cheap", Pricing: &types.PricingRecord{Price: cheap}},
		{Name: "dear", Pricing: &types.PricingRecord{Price: dear}},
		{Name: "unpriced"},
	}

	out := Apply(pool, Params{MaxHourlyCost: &ceiling})
	assert.Equal(t, []string{"cheap", "unpriced"}, names(out))
}

func TestApplyEvictionCeiling(t *testing.T) {
	pool := []types.CandidateSpec{
		{Name: "calm", EvictionRate: ratePtr(types.Eviction0To5)},
		{Name: "risky", EvictionRate: ratePtr(types.Eviction20Plus)},
		{Name: "unknown"},
	}

	out := Apply(pool, Params{MaxEvictionRate: ratePtr(types.Eviction5To10)})
	assert.Equal(t, []string{"calm", "unknown"}, names(out))
}

func TestApplyUnknownEvictionBucketFailsCeiling(t *testing.T) {
	pool := []types.CandidateSpec{
		{Name: "bogus", EvictionRate: ratePtr(types.EvictionRate("25-30"))},
	}

	out := Apply(pool, Params{MaxEvictionRate: ratePtr(types.Eviction20Plus)})
	assert.Empty(t, out)
}

func TestApplyDoesNotMutatePool(t *testing.T) {
	pool := []types.CandidateSpec{
		{Name: "a"},
		{Name: "b", HasGPU: true},
	}

	out := Apply(pool, Params{})
	require.Len(t, out, 1)
	assert.Len(t, pool, 2)
}

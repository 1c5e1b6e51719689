package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spot-advisor/core/types"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestAggregateMergesDuplicatesByName(t *testing.T) {
	specs := []types.CandidateSpec{
		{Name: "Standard_D4s_v5", Family: "standardDSv5Family", Zones: []string{"1"}},
		{Name: "Standard_E8s_v5", Family: "standardESv5Family", Zones: []string{"2"}},
		{Name: "Standard_D4s_v5", Family: "otherFamily", Zones: []string{"3", "2"}},
	}

	out := Aggregate(specs)
	require.Len(t, out, 2)

	// First-seen order and first-seen scalar fields win.
	assert.Equal(t, "Standard_D4s_v5", out[0].Name)
	assert.Equal(t, "standardDSv5Family", out[0].Family)
	assert.Equal(t, []string{"1", "2", "3"}, out[0].Zones)

	assert.Equal(t, "Standard_E8s_v5", out[1].Name)
	assert.Equal(t, []string{"2"}, out[1].Zones)
}

func TestAggregateBackfillsMissingCapacity(t *testing.T) {
	specs := []types.CandidateSpec{
		{Name: "Standard_D4s_v5"},
		{Name: "Standard_D4s_v5", VCPUs: intPtr(4), MemoryGB: floatPtr(16)},
	}

	out := Aggregate(specs)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].VCPUs)
	require.NotNil(t, out[0].MemoryGB)
	assert.Equal(t, 4, *out[0].VCPUs)
	assert.Equal(t, 16.0, *out[0].MemoryGB)
}

func TestAggregateBackfillsZeroCapacity(t *testing.T) {
	specs := []types.CandidateSpec{
		{Name: "Standard_D4s_v5", VCPUs: intPtr(0), MemoryGB: floatPtr(0)},
		{Name: "Standard_D4s_v5", VCPUs: intPtr(4), MemoryGB: floatPtr(16)},
	}

	out := Aggregate(specs)
	require.Len(t, out, 1)
	assert.Equal(t, 4, *out[0].VCPUs)
	assert.Equal(t, 16.0, *out[0].MemoryGB)
}

func TestAggregateKeepsFirstSeenCapacity(t *testing.T) {
	specs := []types.CandidateSpec{
		{Name: "Standard_D4s_v5", VCPUs: intPtr(4)},
		{Name: "Standard_D4s_v5", VCPUs: intPtr(8)},
	}

	out := Aggregate(specs)
	require.Len(t, out, 1)
	assert.Equal(t, 4, *out[0].VCPUs)
}

func TestAggregateDropsEmptyNames(t *testing.T) {
	specs := []types.CandidateSpec{
		{Name: ""},
		{Name: "Standard_D4s_v5"},
	}

	out := Aggregate(specs)
	require.Len(t, out, 1)
	assert.Equal(t, "Standard_D4s_v5", out[0].Name)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	specs := []types.CandidateSpec{
		{Name: "Standard_D4s_v5", Zones: []string{"1"}},
		{Name: "Standard_D4s_v5", Zones: []string{"2"}},
	}

	_ = Aggregate(specs)
	assert.Equal(t, []string{"1"}, specs[0].Zones)
}

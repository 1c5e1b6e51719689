package catalog

import (
	"sort"

	"spot-advisor/core/types"
)

// Aggregate merges normalized specs that share a name, as happens when
// zone-scoped listings repeat a SKU. Zone sets are unioned; a missing or
// zero vCPU/memory value is backfilled from a later duplicate; every other
// scalar field keeps its first-seen value. Specs with an empty name are
// dropped. Output preserves first-seen order.
func Aggregate(specs []types.CandidateSpec) []types.CandidateSpec {
	merged := make(map[string]*types.CandidateSpec, len(specs))
	order := make([]string, 0, len(specs))

	for i := range specs {
		spec := specs[i]
		if spec.Name == "" {
			continue
		}

		existing, ok := merged[spec.Name]
		if !ok {
			clone := spec.Clone()
			merged[spec.Name] = &clone
			order = append(order, spec.Name)
			continue
		}

		existing.Zones = unionZones(existing.Zones, spec.Zones)
		if (existing.VCPUs == nil || *existing.VCPUs == 0) && spec.VCPUs != nil {
			v := *spec.VCPUs
			existing.VCPUs = &v
		}
		if (existing.MemoryGB == nil || *existing.MemoryGB == 0) && spec.MemoryGB != nil {
			m := *spec.MemoryGB
			existing.MemoryGB = &m
		}
	}

	out := make([]types.CandidateSpec, 0, len(order))
	for _, name := range order {
		out = append(out, *merged[name])
	}
	return out
}

func unionZones(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, z := range a {
		set[z] = struct{}{}
	}
	for _, z := range b {
		set[z] = struct{}{}
	}
	zones := make([]string, 0, len(set))
	for z := range set {
		zones = append(zones, z)
	}
	sort.Strings(zones)
	return zones
}

package catalog

import (
	"sort"
	"strconv"
	"strings"

	"spot-advisor/core/types"
)

// SKU families documented by the provider as GPU series. Capability names
// containing "gpu" or "nvidia" also mark a SKU as GPU-equipped.
var gpuPatterns = []string{
	"_nc", "_nd", "_nv", "_nsv2",
	"standard_nc", "standard_nd", "standard_nv", "standard_nsv2",
	"microsoft.hpcgpu",
	"gpu",
}

// Naming fragments that identify ARM64 series (Dpls/Dps/Eps/Dpds/Epds).
var arm64Patterns = []string{
	"pls", "pds", "ps_", "pds_", "pls_", "eps", "epds",
}

// B-series is spot-ineligible regardless of its capability flags.
var bSeriesNamePrefix = "standard_b"
var bSeriesFamilyPrefixes = []string{"standard_b", "standardb"}

// Normalize converts one raw provider record into a CandidateSpec, or
// rejects it (nil, false). Rejection is a normal outcome, not an error:
// non-VM resource types, SKUs without a truthy spot capability flag, SKUs
// restricted for the subscription in the target region, and B-series SKUs
// are all excluded. Field extraction is best-effort and never fails; an
// unparsable vCPU or memory value yields nil, not zero.
//
// Normalize is pure: identical input always produces identical output.
func Normalize(sku RawSKU, region string) (*types.CandidateSpec, bool) {
	// 1. Only virtual-machine/compute offerings.
	resourceType := strings.ToLower(sku.ResourceType)
	if !strings.Contains(resourceType, "virtualmachine") && !strings.Contains(resourceType, "compute") {
		return nil, false
	}

	// 2. Only spot-capable SKUs.
	if lowPriority, ok := sku.capability("LowPriorityCapable"); !ok || !truthy(lowPriority) {
		return nil, false
	}

	// 3. Exclude SKUs restricted for the subscription in this region. A
	// restriction with no locations applies everywhere.
	region = strings.ToLower(strings.TrimSpace(region))
	for _, r := range sku.Restrictions {
		if !strings.EqualFold(r.ReasonCode, "NotAvailableForSubscription") {
			continue
		}
		if len(r.RestrictionInfo.Locations) == 0 || containsFold(r.RestrictionInfo.Locations, region) {
			return nil, false
		}
	}

	// 4. B-series exclusion.
	nameLower := strings.ToLower(sku.Name)
	familyLower := strings.ToLower(sku.Family)
	if strings.HasPrefix(nameLower, bSeriesNamePrefix) {
		return nil, false
	}
	for _, p := range bSeriesFamilyPrefixes {
		if strings.HasPrefix(familyLower, p) {
			return nil, false
		}
	}

	spec := &types.CandidateSpec{
		Name:         sku.Name,
		Family:       sku.Family,
		Size:         sku.Size,
		HasGPU:       detectGPU(sku, nameLower, familyLower),
		Architecture: detectArchitecture(nameLower, familyLower),
		Zones:        extractZones(sku, region),
		SupportsSpot: true,
	}

	if raw, ok := sku.capability("vCPUs"); ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			spec.VCPUs = &v
		}
	}
	if raw, ok := sku.capability("MemoryGB"); ok {
		if m, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			spec.MemoryGB = &m
		}
	}

	return spec, true
}

// truthy matches the provider's encodings of a true capability flag.
func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1":
		return true
	default:
		return false
	}
}

func detectGPU(sku RawSKU, nameLower, familyLower string) bool {
	for _, p := range gpuPatterns {
		if strings.Contains(nameLower, p) || strings.Contains(familyLower, p) {
			return true
		}
	}
	for _, c := range sku.Capabilities {
		capName := strings.ToLower(c.Name)
		if strings.Contains(capName, "gpu") || strings.Contains(capName, "nvidia") {
			return true
		}
	}
	return false
}

func detectArchitecture(nameLower, familyLower string) types.Architecture {
	for _, p := range arm64Patterns {
		if strings.Contains(nameLower, p) || strings.Contains(familyLower, p) {
			return types.ArchitectureARM64
		}
	}
	return types.ArchitectureX64
}

// extractZones unions zone ids from location entries matching the target
// region. An empty region matches every entry.
func extractZones(sku RawSKU, region string) []string {
	zoneSet := make(map[string]struct{})
	for _, li := range sku.LocationInfo {
		if region != "" && !strings.EqualFold(li.Location, region) {
			continue
		}
		for _, z := range li.Zones {
			zoneSet[z] = struct{}{}
		}
	}

	zones := make([]string, 0, len(zoneSet))
	for z := range zoneSet {
		zones = append(zones, z)
	}
	sort.Strings(zones)
	return zones
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

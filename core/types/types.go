// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

// Architecture represents a CPU architecture of a VM SKU
type Architecture string

const (
	ArchitectureX64   Architecture = "x64"
	ArchitectureARM64 Architecture = "Arm64"
)

// String returns the string representation of the architecture
func (a Architecture) String() string {
	return string(a)
}

// IsValid checks if the architecture is a known value
func (a Architecture) IsValid() bool {
	switch a {
	case ArchitectureX64, ArchitectureARM64:
		return true
	default:
		return false
	}
}

// EvictionRate is a bucketed historical eviction-frequency category for a
// SKU in a region, ordered by increasing risk.
type EvictionRate string

const (
	Eviction0To5   EvictionRate = "0-5"
	Eviction5To10  EvictionRate = "5-10"
	Eviction10To15 EvictionRate = "10-15"
	Eviction15To20 EvictionRate = "15-20"
	Eviction20Plus EvictionRate = "20+"
)

// EvictionRateBuckets lists all known buckets in risk order.
var EvictionRateBuckets = []EvictionRate{
	Eviction0To5,
	Eviction5To10,
	Eviction10To15,
	Eviction15To20,
	Eviction20Plus,
}

// String returns the string representation of the bucket
func (e EvictionRate) String() string {
	return string(e)
}

// IsValid checks if the bucket is a known value
func (e EvictionRate) IsValid() bool {
	return e.Ordinal() >= 0
}

// Ordinal returns the position of the bucket in the risk-ordered list,
// or -1 for an unknown bucket.
func (e EvictionRate) Ordinal() int {
	for i, b := range EvictionRateBuckets {
		if b == e {
			return i
		}
	}
	return -1
}

// WithinCeiling reports whether this bucket is at or below the given
// ceiling bucket. Unknown buckets on either side never satisfy the
// comparison; callers decide separately whether unknowns pass.
func (e EvictionRate) WithinCeiling(ceiling EvictionRate) bool {
	a, b := e.Ordinal(), ceiling.Ordinal()
	if a < 0 || b < 0 {
		return false
	}
	return a <= b
}

// CandidateSpec is the canonical record for one spot-capable SKU in a
// region. Optional numeric fields use pointers: absent means unknown and
// must never be conflated with zero.
type CandidateSpec struct {
	// Name uniquely identifies the SKU within a region (e.g. Standard_D2s_v3)
	Name string `json:"name"`

	// Family is the SKU family group (e.g. standardDSv3Family)
	Family string `json:"family,omitempty"`

	// Size is the provider size string (e.g. D2s_v3)
	Size string `json:"size,omitempty"`

	// HasGPU indicates a GPU-equipped SKU
	HasGPU bool `json:"has_gpu"`

	// Architecture is the detected CPU architecture
	Architecture Architecture `json:"architecture"`

	// VCPUs is the vCPU count, nil when unknown
	VCPUs *int `json:"vcpus"`

	// MemoryGB is the memory size in GiB, nil when unknown
	MemoryGB *float64 `json:"memory_gb"`

	// Zones are the availability zone ids, rendered sorted
	Zones []string `json:"zones"`

	// SupportsSpot is always true for normalized candidates
	SupportsSpot bool `json:"supports_spot"`

	// Pricing is the attached spot pricing record, nil when unavailable
	Pricing *PricingRecord `json:"pricing,omitempty"`

	// EvictionRate is the attached eviction bucket, nil when unavailable
	EvictionRate *EvictionRate `json:"eviction_rate,omitempty"`
}

// HourlyPrice returns the attached spot price as a float for scoring,
// with ok=false when no pricing record is attached.
func (c *CandidateSpec) HourlyPrice() (float64, bool) {
	if c.Pricing == nil {
		return 0, false
	}
	return c.Pricing.Price.InexactFloat64(), true
}

// ZoneCount returns the number of availability zones
func (c *CandidateSpec) ZoneCount() int {
	return len(c.Zones)
}

// Clone returns a deep copy of the spec
func (c *CandidateSpec) Clone() CandidateSpec {
	out := *c
	out.Zones = append([]string(nil), c.Zones...)
	if c.VCPUs != nil {
		v := *c.VCPUs
		out.VCPUs = &v
	}
	if c.MemoryGB != nil {
		m := *c.MemoryGB
		out.MemoryGB = &m
	}
	if c.Pricing != nil {
		p := *c.Pricing
		out.Pricing = &p
	}
	if c.EvictionRate != nil {
		e := *c.EvictionRate
		out.EvictionRate = &e
	}
	return out
}

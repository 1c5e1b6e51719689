// Package catalog turns raw provider SKU records into canonical
// CandidateSpecs: normalization applies the provider business rules
// (spot eligibility, restrictions, unsupported families) and aggregation
// deduplicates zone-scoped listings into one record per SKU name.
package catalog

import (
	"encoding/json"
	"strings"
)

// RawSKU mirrors one record from the Azure Resource SKUs listing API.
// Fields the advisor never reads are omitted; unknown JSON fields are
// dropped on decode.
type RawSKU struct {
	Name         string        `json:"name"`
	ResourceType string        `json:"resourceType"`
	Family       string        `json:"family"`
	Size         string        `json:"size"`
	Tier         string        `json:"tier,omitempty"`
	Locations    []string      `json:"locations,omitempty"`
	Capabilities []Capability  `json:"capabilities,omitempty"`
	Restrictions []Restriction `json:"restrictions,omitempty"`
	LocationInfo []LocationInfo `json:"locationInfo,omitempty"`
}

// Capability is a named capability value on a raw SKU. Values usually
// arrive as strings regardless of their logical type ("True", "2",
// "8.0"), but some listings carry real JSON booleans or numbers.
type Capability struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// UnmarshalJSON accepts string, boolean, or numeric capability values
// and stores them all as strings so downstream parsing stays uniform.
func (c *Capability) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Name = raw.Name
	c.Value = ""
	if len(raw.Value) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Value, &s); err == nil {
		c.Value = s
		return nil
	}
	c.Value = strings.Trim(string(raw.Value), "\"")
	return nil
}

// Restriction describes a subscription- or zone-level restriction on a SKU.
type Restriction struct {
	Type            string          `json:"type"`
	ReasonCode      string          `json:"reasonCode"`
	Values          []string        `json:"values,omitempty"`
	RestrictionInfo RestrictionInfo `json:"restrictionInfo"`
}

// RestrictionInfo scopes a restriction to locations and zones.
type RestrictionInfo struct {
	Locations []string `json:"locations,omitempty"`
	Zones     []string `json:"zones,omitempty"`
}

// LocationInfo carries the per-location zone list of a raw SKU.
type LocationInfo struct {
	Location string   `json:"location"`
	Zones    []string `json:"zones,omitempty"`
}

// capability returns the value for a capability name, case-insensitively.
func (s *RawSKU) capability(name string) (string, bool) {
	for _, c := range s.Capabilities {
		if strings.EqualFold(c.Name, name) {
			return c.Value, true
		}
	}
	return "", false
}

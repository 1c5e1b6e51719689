// Package types - Pricing types
package types

import (
	"github.com/shopspring/decimal"
)

// PricingRecord is one retail spot price attached to a CandidateSpec.
// At most one record is attached per SKU: the first matching Linux+Spot
// meter for the region. Multiple provider rows are never averaged.
type PricingRecord struct {
	// Price is the hourly retail price
	Price decimal.Decimal `json:"price"`

	// Currency is the price currency code (e.g. "USD")
	Currency string `json:"currency"`

	// Location is the provider display location (e.g. "US East")
	Location string `json:"location,omitempty"`

	// MeterName is the provider meter (e.g. "D2s v3 Spot")
	MeterName string `json:"meter_name,omitempty"`

	// ProductName is the provider product (e.g. "Virtual Machines Dsv3 Series")
	ProductName string `json:"product_name,omitempty"`

	// EffectiveStart is when this price became effective (provider format)
	EffectiveStart string `json:"effective_start,omitempty"`

	// EffectiveEnd is when this price expires, empty when open-ended
	EffectiveEnd string `json:"effective_end,omitempty"`
}

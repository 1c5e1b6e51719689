package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"spot-advisor/core/engine"
	"spot-advisor/core/filter"
	"spot-advisor/core/recommend"
	"spot-advisor/core/types"
	"spot-advisor/internal/errors"
)

// parseListQuery reads GET /v1/spot-skus query parameters. Validation
// errors are raised here, before any I/O.
func parseListQuery(values url.Values) (engine.ListQuery, error) {
	q := engine.ListQuery{Region: values.Get("region")}

	var err error
	if q.GPU, err = boolParam(values, "gpu"); err != nil {
		return q, err
	}
	if q.Architecture, err = architectureParam(values, "architecture"); err != nil {
		return q, err
	}
	if q.MinVCPUs, err = intParam(values, "min_vcpus"); err != nil {
		return q, err
	}
	if q.MaxVCPUs, err = intParam(values, "max_vcpus"); err != nil {
		return q, err
	}
	if q.MinMemoryGB, err = floatParam(values, "min_memory_gb"); err != nil {
		return q, err
	}
	if q.MaxMemoryGB, err = floatParam(values, "max_memory_gb"); err != nil {
		return q, err
	}
	q.SKULike = strings.TrimSpace(values.Get("sku_like"))

	if zones := strings.TrimSpace(values.Get("zones")); zones != "" {
		for _, z := range strings.Split(zones, ",") {
			if z = strings.TrimSpace(z); z != "" {
				q.Zones = append(q.Zones, z)
			}
		}
	}
	if match := values.Get("zones_match"); match != "" {
		q.ZonesMatch = filter.ZoneMatch(match)
		if !q.ZonesMatch.IsValid() {
			return q, errors.Inputf("zones_match must be one of: any, all (got %q)", match)
		}
	}

	if sortBy := values.Get("sort_by"); sortBy != "" {
		switch sortBy {
		case "name", "family", "vcpus", "memory_gb":
			q.SortBy = sortBy
		default:
			return q, errors.Inputf("sort_by must be one of: name, family, vcpus, memory_gb (got %q)", sortBy)
		}
	}
	if order := values.Get("sort_order"); order != "" {
		if order != "asc" && order != "desc" {
			return q, errors.Inputf("sort_order must be one of: asc, desc (got %q)", order)
		}
		q.SortOrder = order
	}

	if q.Offset, err = boundedIntParam(values, "offset", 0, 1<<30, 0); err != nil {
		return q, err
	}
	if q.Limit, err = boundedIntParam(values, "limit", 1, engine.ListLimitMax, engine.ListLimitDefault); err != nil {
		return q, err
	}

	if q.IncludePricing, err = boolParam(values, "include_pricing"); err != nil {
		return q, err
	}
	if q.IncludeEvictionRates, err = boolParam(values, "include_eviction_rates"); err != nil {
		return q, err
	}
	q.CurrencyCode = strings.ToUpper(strings.TrimSpace(values.Get("currency_code")))

	return q, nil
}

// parseRecommendQuery reads GET /v1/spot-recommendations query parameters.
func parseRecommendQuery(values url.Values) (engine.RecommendQuery, error) {
	q := engine.RecommendQuery{
		Region:   values.Get("region"),
		Criteria: recommend.DefaultCriteria(),
	}

	var err error
	if q.Limit, err = boundedIntParam(values, "limit", engine.RecommendLimitMin, engine.RecommendLimitMax, engine.RecommendLimitDefault); err != nil {
		return q, err
	}

	if optimize := values.Get("optimize_for"); optimize != "" {
		q.Criteria.OptimizeFor = recommend.OptimizeFor(optimize)
		if !q.Criteria.OptimizeFor.IsValid() {
			return q, errors.Inputf("optimize_for must be one of: cost, reliability, performance, balanced (got %q)", optimize)
		}
	}

	if cost := values.Get("max_hourly_cost"); cost != "" {
		d, err := decimal.NewFromString(cost)
		if err != nil || d.IsNegative() {
			return q, errors.Inputf("max_hourly_cost must be a non-negative number (got %q)", cost)
		}
		q.Criteria.MaxHourlyCost = &d
	}

	if rate := values.Get("max_eviction_rate"); rate != "" {
		bucket := types.EvictionRate(rate)
		if !bucket.IsValid() {
			return q, errors.Inputf("max_eviction_rate must be one of: 0-5, 5-10, 10-15, 15-20, 20+ (got %q)", rate)
		}
		q.Criteria.MaxEvictionRate = &bucket
	}

	if q.Criteria.ArchitecturePreference, err = architectureParam(values, "architecture_preference"); err != nil {
		return q, err
	}

	if q.Criteria.MinAvailabilityZones, err = boundedIntParam(values, "min_availability_zones", 1, 3, 1); err != nil {
		return q, err
	}

	if q.GPU, err = boolParam(values, "gpu"); err != nil {
		return q, err
	}
	if q.MaxVCPUs, err = intParam(values, "max_vcpus"); err != nil {
		return q, err
	}
	if q.MaxMemoryGB, err = floatParam(values, "max_memory_gb"); err != nil {
		return q, err
	}
	q.CurrencyCode = strings.ToUpper(strings.TrimSpace(values.Get("currency_code")))

	return q, nil
}

func boolParam(values url.Values, name string) (bool, error) {
	raw := values.Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Inputf("%s must be a boolean (got %q)", name, raw)
	}
	return v, nil
}

func intParam(values url.Values, name string) (*int, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, errors.Inputf("%s must be a non-negative integer (got %q)", name, raw)
	}
	return &v, nil
}

func floatParam(values url.Values, name string) (*float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, errors.Inputf("%s must be a non-negative number (got %q)", name, raw)
	}
	return &v, nil
}

// boundedIntParam parses an integer that must fall inside [min, max],
// returning the default when absent.
func boundedIntParam(values url.Values, name string, min, max, def int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Inputf("%s must be an integer (got %q)", name, raw)
	}
	if v < min || v > max {
		return 0, errors.Inputf("%s must be between %d and %d (got %d)", name, min, max, v)
	}
	return v, nil
}

func architectureParam(values url.Values, name string) (*types.Architecture, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	arch := types.Architecture(raw)
	if !arch.IsValid() {
		return nil, errors.Inputf("%s must be one of: x64, Arm64 (got %q)", name, raw)
	}
	return &arch, nil
}

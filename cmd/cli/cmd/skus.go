// Package cmd - skus command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spot-advisor/core/engine"
	"spot-advisor/core/filter"
	"spot-advisor/core/types"
)

var (
	skusRegion        string
	skusGPU           bool
	skusArchitecture  string
	skusMinVCPUs      int
	skusMaxVCPUs      int
	skusMinMemoryGB   float64
	skusMaxMemoryGB   float64
	skusLike          string
	skusZones         []string
	skusZonesMatch    string
	skusSortBy        string
	skusSortOrder     string
	skusOffset        int
	skusLimit         int
	skusWithPricing   bool
	skusWithEviction  bool
	skusCurrency      string
	skusOutputFormat  string
)

// skusCmd represents the skus command
var skusCmd = &cobra.Command{
	Use:   "skus",
	Short: "List spot-capable VM SKUs for a region",
	Long: `List the spot-capable VM SKUs available in a region after
normalization, deduplication, and constraint filtering.

Examples:
  spot-advisor skus --region eastus
  spot-advisor skus --region eastus --architecture Arm64 --include-pricing
  spot-advisor skus --region westus2 --zones 1,2 --zones-match all --sort-by vcpus`,
	RunE: runSKUs,
}

func init() {
	skusCmd.Flags().StringVarP(&skusRegion, "region", "r", "", "Azure region (required unless configured)")
	skusCmd.Flags().BoolVar(&skusGPU, "gpu", false, "list GPU SKUs instead of general-purpose ones")
	skusCmd.Flags().StringVar(&skusArchitecture, "architecture", "", "CPU architecture (x64, Arm64)")
	skusCmd.Flags().IntVar(&skusMinVCPUs, "min-vcpus", 0, "minimum vCPU count")
	skusCmd.Flags().IntVar(&skusMaxVCPUs, "max-vcpus", 0, "maximum vCPU count")
	skusCmd.Flags().Float64Var(&skusMinMemoryGB, "min-memory-gb", 0, "minimum memory in GB")
	skusCmd.Flags().Float64Var(&skusMaxMemoryGB, "max-memory-gb", 0, "maximum memory in GB")
	skusCmd.Flags().StringVar(&skusLike, "sku-like", "", "substring match on SKU name")
	skusCmd.Flags().StringSliceVar(&skusZones, "zones", nil, "required availability zones")
	skusCmd.Flags().StringVar(&skusZonesMatch, "zones-match", "any", "zone match mode (any, all)")
	skusCmd.Flags().StringVar(&skusSortBy, "sort-by", "", "sort field (name, family, vcpus, memory_gb)")
	skusCmd.Flags().StringVar(&skusSortOrder, "sort-order", "asc", "sort order (asc, desc)")
	skusCmd.Flags().IntVar(&skusOffset, "offset", 0, "number of results to skip")
	skusCmd.Flags().IntVar(&skusLimit, "limit", engine.ListLimitDefault, "maximum number of results")
	skusCmd.Flags().BoolVar(&skusWithPricing, "include-pricing", false, "attach retail spot pricing")
	skusCmd.Flags().BoolVar(&skusWithEviction, "include-eviction-rates", false, "attach eviction rate buckets")
	skusCmd.Flags().StringVar(&skusCurrency, "currency", "", "currency code for pricing")
	skusCmd.Flags().StringVarP(&skusOutputFormat, "format", "f", "cli", "output format (cli, json)")
}

func runSKUs(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}

	q := engine.ListQuery{
		Region:               resolveRegion(skusRegion),
		GPU:                  skusGPU,
		SKULike:              skusLike,
		Zones:                skusZones,
		ZonesMatch:           filter.ZoneMatch(skusZonesMatch),
		SortBy:               skusSortBy,
		SortOrder:            skusSortOrder,
		Offset:               skusOffset,
		Limit:                skusLimit,
		IncludePricing:       skusWithPricing,
		IncludeEvictionRates: skusWithEviction,
		CurrencyCode:         skusCurrency,
	}
	if skusArchitecture != "" {
		arch := types.Architecture(skusArchitecture)
		if !arch.IsValid() {
			return fmt.Errorf("invalid architecture %q (want x64 or Arm64)", skusArchitecture)
		}
		q.Architecture = &arch
	}
	if skusMinVCPUs > 0 {
		q.MinVCPUs = &skusMinVCPUs
	}
	if skusMaxVCPUs > 0 {
		q.MaxVCPUs = &skusMaxVCPUs
	}
	if skusMinMemoryGB > 0 {
		q.MinMemoryGB = &skusMinMemoryGB
	}
	if skusMaxMemoryGB > 0 {
		q.MaxMemoryGB = &skusMaxMemoryGB
	}

	result, err := eng.ListSpotSKUs(ctx, q)
	if err != nil {
		return err
	}

	if skusOutputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printSKUTable(result)
	return nil
}

func printSKUTable(result *engine.ListResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFAMILY\tARCH\tVCPUS\tMEMORY_GB\tZONES\tPRICE/HR\tEVICTION")
	for i := range result.Items {
		item := &result.Items[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.Name,
			item.Family,
			item.Architecture,
			formatInt(item.VCPUs),
			formatFloat(item.MemoryGB),
			strings.Join(item.Zones, ","),
			formatPrice(item),
			formatEviction(item.EvictionRate),
		)
	}
	w.Flush()

	fmt.Printf("\n%d of %d matching SKUs\n", len(result.Items), result.Total)
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
}

func formatInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func formatPrice(item *types.CandidateSpec) string {
	if item.Pricing == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s", item.Pricing.Price.StringFixed(4), item.Pricing.Currency)
}

func formatEviction(rate *types.EvictionRate) string {
	if rate == nil {
		return "-"
	}
	return rate.String()
}

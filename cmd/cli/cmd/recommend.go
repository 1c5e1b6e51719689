// Package cmd - recommend command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"spot-advisor/core/engine"
	"spot-advisor/core/recommend"
	"spot-advisor/core/types"
)

var (
	recRegion      string
	recLimit       int
	recOptimizeFor string
	recMaxCost     string
	recMaxEviction string
	recArch        string
	recMinZones    int
	recGPU         bool
	recMaxVCPUs    int
	recMaxMemoryGB float64
	recCurrency    string
	recFormat      string
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend the best spot SKUs for a region",
	Long: `Score and rank spot-capable SKUs by price, eviction risk,
performance value, zone availability, and architecture fit.

Examples:
  spot-advisor recommend --region eastus
  spot-advisor recommend --region eastus --optimize-for cost --max-hourly-cost 0.50
  spot-advisor recommend --region westus2 --max-eviction-rate 5-10 --limit 3`,
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringVarP(&recRegion, "region", "r", "", "Azure region (required unless configured)")
	recommendCmd.Flags().IntVarP(&recLimit, "limit", "l", engine.RecommendLimitDefault, "number of recommendations (1-10)")
	recommendCmd.Flags().StringVar(&recOptimizeFor, "optimize-for", "balanced", "scoring emphasis (cost, reliability, performance, balanced)")
	recommendCmd.Flags().StringVar(&recMaxCost, "max-hourly-cost", "", "maximum hourly cost ceiling")
	recommendCmd.Flags().StringVar(&recMaxEviction, "max-eviction-rate", "", "eviction rate ceiling (0-5, 5-10, 10-15, 15-20, 20+)")
	recommendCmd.Flags().StringVar(&recArch, "architecture-preference", "", "preferred CPU architecture (x64, Arm64)")
	recommendCmd.Flags().IntVar(&recMinZones, "min-availability-zones", 1, "minimum availability zone count")
	recommendCmd.Flags().BoolVar(&recGPU, "gpu", false, "recommend GPU SKUs instead of general-purpose ones")
	recommendCmd.Flags().IntVar(&recMaxVCPUs, "max-vcpus", 0, "maximum vCPU count")
	recommendCmd.Flags().Float64Var(&recMaxMemoryGB, "max-memory-gb", 0, "maximum memory in GB")
	recommendCmd.Flags().StringVar(&recCurrency, "currency", "", "currency code for pricing")
	recommendCmd.Flags().StringVarP(&recFormat, "format", "f", "cli", "output format (cli, json)")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	eng, err := buildEngine(ctx)
	if err != nil {
		return err
	}

	criteria := recommend.DefaultCriteria()
	criteria.OptimizeFor = recommend.OptimizeFor(recOptimizeFor)
	if !criteria.OptimizeFor.IsValid() {
		return fmt.Errorf("invalid optimize-for %q (want cost, reliability, performance, or balanced)", recOptimizeFor)
	}
	if recMaxCost != "" {
		d, err := decimal.NewFromString(recMaxCost)
		if err != nil {
			return fmt.Errorf("invalid max-hourly-cost %q: %w", recMaxCost, err)
		}
		criteria.MaxHourlyCost = &d
	}
	if recMaxEviction != "" {
		bucket := types.EvictionRate(recMaxEviction)
		if !bucket.IsValid() {
			return fmt.Errorf("invalid max-eviction-rate %q", recMaxEviction)
		}
		criteria.MaxEvictionRate = &bucket
	}
	if recArch != "" {
		arch := types.Architecture(recArch)
		if !arch.IsValid() {
			return fmt.Errorf("invalid architecture-preference %q (want x64 or Arm64)", recArch)
		}
		criteria.ArchitecturePreference = &arch
	}
	criteria.MinAvailabilityZones = recMinZones

	q := engine.RecommendQuery{
		Region:       resolveRegion(recRegion),
		Limit:        recLimit,
		Criteria:     criteria,
		GPU:          recGPU,
		CurrencyCode: recCurrency,
	}
	if recMaxVCPUs > 0 {
		q.MaxVCPUs = &recMaxVCPUs
	}
	if recMaxMemoryGB > 0 {
		q.MaxMemoryGB = &recMaxMemoryGB
	}

	result, err := eng.Recommend(ctx, q)
	if err != nil {
		return err
	}

	if recFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printRecommendations(result)
	return nil
}

func printRecommendations(result *engine.RecommendResult) {
	if result.Message != "" {
		fmt.Println(result.Message)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tSCORE\tPRICE/HR\tEVICTION\tREASON")
	for i := range result.Recommendations {
		rec := &result.Recommendations[i]
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%s\t%s\t%s\n",
			i+1,
			rec.Name,
			rec.TotalScore,
			formatPrice(&rec.CandidateSpec),
			formatEviction(rec.EvictionRate),
			rec.Reason,
		)
	}
	w.Flush()

	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
}

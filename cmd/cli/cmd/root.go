// Package cmd provides the CLI commands for spot-advisor.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spot-advisor/clouds/azure"
	"spot-advisor/core/engine"
	"spot-advisor/internal/cache"
	"spot-advisor/internal/config"
	"spot-advisor/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "spot-advisor",
	Short: "Find and rank Azure spot VM SKUs",
	Long: `spot-advisor inspects the Azure compute catalog for spot-capable
VM SKUs, enriches them with retail spot pricing and eviction rates, and
ranks them by a weighted multi-factor score.

Examples:
  spot-advisor skus --region eastus
  spot-advisor skus --region eastus --gpu --include-pricing
  spot-advisor recommend --region westus2 --optimize-for cost --limit 5`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults plus environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(skusCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// buildEngine wires the Azure collaborators for one CLI invocation.
func buildEngine(ctx context.Context) (*engine.Engine, error) {
	cfg := config.Get()

	creds, err := azure.CredentialsFromConfig(cfg.Azure)
	if err != nil {
		return nil, err
	}
	tokens, err := creds.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	catalogClient := azure.NewComputeClient(creds, tokens)
	pricingClient := azure.NewPricingClient(
		cfg.Pricing.RequestsPerSecond,
		time.Duration(cfg.Pricing.TimeoutSeconds)*time.Second)
	evictionClient := azure.NewEvictionClient(creds, tokens)

	var store engine.Cache
	if cfg.Cache.Enabled {
		store = cache.New(cfg.Cache.MaxEntries)
	}

	return engine.New(catalogClient, pricingClient, evictionClient, store, engine.Config{
		DefaultCurrency: cfg.Pricing.DefaultCurrency,
		CatalogTTL:      cfg.Cache.CatalogTTL(),
		PricingTTL:      cfg.Cache.PricingTTL(),
	}), nil
}

// resolveRegion falls back to the configured default region.
func resolveRegion(region string) string {
	if region != "" {
		return region
	}
	return config.Get().Azure.DefaultRegion
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("spot-advisor version 1.0.0")
	},
}

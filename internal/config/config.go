// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"time"

	"spot-advisor/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// Azure contains Azure-specific configuration
	Azure AzureConfig `json:"azure"`

	// Pricing contains retail pricing client configuration
	Pricing PricingConfig `json:"pricing"`

	// Cache contains cache configuration
	Cache CacheConfig `json:"cache"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// ReadTimeoutSeconds bounds request reads
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds response writes
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`
}

// AzureConfig contains Azure credential and endpoint settings
type AzureConfig struct {
	// SubscriptionID is the target subscription (required at startup)
	SubscriptionID string `json:"subscription_id,omitempty"`

	// TenantID is the AAD tenant for token acquisition
	TenantID string `json:"tenant_id,omitempty"`

	// ClientID is the AAD application id
	ClientID string `json:"client_id,omitempty"`

	// ClientSecret is the AAD application secret
	ClientSecret string `json:"client_secret,omitempty"`

	// DefaultRegion is the region used when the CLI omits one
	DefaultRegion string `json:"default_region"`
}

// PricingConfig contains retail pricing client settings
type PricingConfig struct {
	// DefaultCurrency is the currency when the caller omits one
	DefaultCurrency string `json:"default_currency"`

	// RequestsPerSecond paces calls to the retail prices API
	RequestsPerSecond float64 `json:"requests_per_second"`

	// TimeoutSeconds bounds a single pricing HTTP call
	TimeoutSeconds int `json:"timeout_seconds"`
}

// CacheConfig contains cache settings
type CacheConfig struct {
	// Enabled enables in-memory response caching
	Enabled bool `json:"enabled"`

	// MaxEntries bounds the number of cached snapshots
	MaxEntries int `json:"max_entries"`

	// CatalogTTLSeconds is how long catalog-derived results live
	CatalogTTLSeconds int `json:"catalog_ttl_seconds"`

	// PricingTTLSeconds is how long pricing-enriched results live
	PricingTTLSeconds int `json:"pricing_ttl_seconds"`
}

// CatalogTTL returns the catalog cache TTL as a duration
func (c CacheConfig) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogTTLSeconds) * time.Second
}

// PricingTTL returns the pricing cache TTL as a duration
func (c CacheConfig) PricingTTL() time.Duration {
	return time.Duration(c.PricingTTLSeconds) * time.Second
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 60,
		},
		Azure: AzureConfig{
			DefaultRegion: "eastus",
		},
		Pricing: PricingConfig{
			DefaultCurrency:   "USD",
			RequestsPerSecond: 4,
			TimeoutSeconds:    30,
		},
		Cache: CacheConfig{
			Enabled:           true,
			MaxEntries:        128,
			CatalogTTLSeconds: 30 * 60,
			PricingTTLSeconds: 4 * 60 * 60,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, applying environment overrides.
// A missing file yields defaults, not an error.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	}

	config.applyEnv()
	return config, nil
}

// applyEnv overlays the standard Azure environment variables. Environment
// values win over file values so deployments can keep secrets out of files.
func (c *Config) applyEnv() {
	if v := os.Getenv("AZURE_SUBSCRIPTION_ID"); v != "" {
		c.Azure.SubscriptionID = v
	}
	if v := os.Getenv("AZURE_TENANT_ID"); v != "" {
		c.Azure.TenantID = v
	}
	if v := os.Getenv("AZURE_CLIENT_ID"); v != "" {
		c.Azure.ClientID = v
	}
	if v := os.Getenv("AZURE_CLIENT_SECRET"); v != "" {
		c.Azure.ClientSecret = v
	}
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}

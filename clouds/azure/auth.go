// Package azure implements the provider collaborators: the resource SKU
// catalog, the retail prices API, and the spot eviction-rate query. The
// scoring core never imports this package; it consumes these clients
// through the engine's source interfaces.
package azure

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"spot-advisor/internal/config"
	"spot-advisor/internal/errors"
)

const (
	managementBaseURL = "https://management.azure.com"
	managementScope   = "https://management.azure.com/.default"
	loginURLFormat    = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
)

// Credentials holds the AAD application credentials and target
// subscription for management-plane calls.
type Credentials struct {
	TenantID       string
	ClientID       string
	ClientSecret   string
	SubscriptionID string
}

// CredentialsFromConfig validates and extracts credentials from the
// Azure configuration section. A missing subscription id is a startup
// configuration error, not a per-request condition.
func CredentialsFromConfig(cfg config.AzureConfig) (Credentials, error) {
	if cfg.SubscriptionID == "" {
		return Credentials{}, errors.Config(
			"AZURE_SUBSCRIPTION_ID is required: set it in the environment or the azure.subscription_id config field")
	}
	return Credentials{
		TenantID:       cfg.TenantID,
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		SubscriptionID: cfg.SubscriptionID,
	}, nil
}

// TokenSource returns a cached client-credentials token source for the
// management API. Token reuse and refresh are handled by oauth2; callers
// share one source per process.
func (c Credentials) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if c.TenantID == "" || c.ClientID == "" || c.ClientSecret == "" {
		return nil, errors.Config(
			"AZURE_TENANT_ID, AZURE_CLIENT_ID and AZURE_CLIENT_SECRET are required for management API access")
	}
	cc := &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     fmt.Sprintf(loginURLFormat, c.TenantID),
		Scopes:       []string{managementScope},
	}
	return oauth2.ReuseTokenSource(nil, cc.TokenSource(ctx)), nil
}

package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"spot-advisor/core/catalog"
	"spot-advisor/internal/errors"
)

const computeSKUsAPIVersion = "2021-07-01"

// ComputeClient lists resource SKUs from the compute management API.
// It returns raw records only; all filtering and business rules live in
// the catalog normalizer.
type ComputeClient struct {
	httpClient     *http.Client
	tokens         oauth2.TokenSource
	subscriptionID string
	baseURL        string
}

// NewComputeClient creates a catalog client for one subscription.
func NewComputeClient(creds Credentials, tokens oauth2.TokenSource) *ComputeClient {
	return &ComputeClient{
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		tokens:         tokens,
		subscriptionID: creds.SubscriptionID,
		baseURL:        managementBaseURL,
	}
}

type skuListPage struct {
	Value    []catalog.RawSKU `json:"value"`
	NextLink string           `json:"nextLink"`
}

// ListRawSKUs returns every raw SKU record the provider lists for the
// region, following pagination. No filtering is applied here.
func (c *ComputeClient) ListRawSKUs(ctx context.Context, region string) ([]catalog.RawSKU, error) {
	query := url.Values{}
	query.Set("api-version", computeSKUsAPIVersion)
	query.Set("$filter", fmt.Sprintf("location eq '%s'", region))

	nextURL := fmt.Sprintf("%s/subscriptions/%s/providers/Microsoft.Compute/skus?%s",
		c.baseURL, url.PathEscape(c.subscriptionID), query.Encode())

	var results []catalog.RawSKU
	for nextURL != "" {
		page, err := c.fetchPage(ctx, nextURL)
		if err != nil {
			return nil, err
		}
		results = append(results, page.Value...)
		nextURL = page.NextLink
	}
	return results, nil
}

func (c *ComputeClient) fetchPage(ctx context.Context, pageURL string) (*skuListPage, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, errors.Auth("failed to acquire management token", err)
	}

	resp, err := doWithRetry(ctx, c.httpClient, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		token.SetAuthHeader(req)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Upstream("resource SKU listing failed", readStatusError(resp))
	}

	var page skuListPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, errors.Upstream("failed to decode resource SKU response", err)
	}
	return &page, nil
}

package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"spot-advisor/core/types"
	"spot-advisor/internal/errors"
	"spot-advisor/internal/logging"

	"go.uber.org/zap"
)

const (
	retailPricesURL      = "https://prices.azure.com/api/retail/prices"
	retailAPIVersion     = "2023-01-01-preview"
	pricingBatchSize     = 10
	pricingMaxPagesBatch = 5
)

// PricingClient queries the public retail prices API. No authentication
// is required; requests are paced with a rate limiter to stay under the
// endpoint's throttling thresholds.
type PricingClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewPricingClient creates a retail pricing client. requestsPerSecond
// bounds the call rate; non-positive values default to 4.
func NewPricingClient(requestsPerSecond float64, timeout time.Duration) *PricingClient {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 4
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PricingClient{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		baseURL:    retailPricesURL,
	}
}

// retailPrice is one row of the retail prices API response.
type retailPrice struct {
	ArmSkuName         string  `json:"armSkuName"`
	RetailPrice        float64 `json:"retailPrice"`
	CurrencyCode       string  `json:"currencyCode"`
	Location           string  `json:"location"`
	MeterName          string  `json:"meterName"`
	ProductName        string  `json:"productName"`
	EffectiveStartDate string  `json:"effectiveStartDate"`
	EffectiveEndDate   string  `json:"effectiveEndDate"`
}

type retailPricePage struct {
	Items        []retailPrice `json:"Items"`
	NextPageLink string        `json:"NextPageLink"`
}

// PricingForSKUs returns spot pricing rows grouped by SKU name. SKUs are
// queried in batches to keep filter expressions under URL length limits;
// rows are post-filtered to Linux spot meters. A batch that fails after
// retries is skipped; the call errors only when every batch failed.
func (c *PricingClient) PricingForSKUs(ctx context.Context, names []string, region, currency string) (map[string][]types.PricingRecord, error) {
	out := make(map[string][]types.PricingRecord)
	if len(names) == 0 {
		return out, nil
	}
	if currency == "" {
		currency = "USD"
	}

	var lastErr error
	failures := 0
	batches := 0

	for start := 0; start < len(names); start += pricingBatchSize {
		end := start + pricingBatchSize
		if end > len(names) {
			end = len(names)
		}
		batches++

		rows, err := c.fetchBatch(ctx, names[start:end], region, currency)
		if err != nil {
			logging.Warn("pricing batch failed",
				zap.String("region", region), zap.Int("batch_start", start), zap.Error(err))
			lastErr = err
			failures++
			continue
		}
		groupSpotLinuxRows(rows, out)
	}

	if failures == batches {
		return nil, errors.Upstream("all pricing batches failed", lastErr)
	}
	return out, nil
}

// fetchBatch queries one batch of SKU names, following pagination up to
// the per-batch page cap.
func (c *PricingClient) fetchBatch(ctx context.Context, names []string, region, currency string) ([]retailPrice, error) {
	query := url.Values{}
	query.Set("api-version", retailAPIVersion)
	query.Set("currencyCode", currency)
	query.Set("$filter", buildPricingFilter(names, region))

	nextURL := c.baseURL + "?" + query.Encode()

	var rows []retailPrice
	for page := 0; page < pricingMaxPagesBatch && nextURL != ""; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := doWithRetry(ctx, c.httpClient, func() (*http.Request, error) {
			return http.NewRequest(http.MethodGet, nextURL, nil)
		})
		if err != nil {
			return nil, err
		}

		var body retailPricePage
		decodeErr := json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("retail prices returned status %d", resp.StatusCode)
		}
		if decodeErr != nil {
			return nil, decodeErr
		}

		rows = append(rows, body.Items...)
		nextURL = body.NextPageLink
	}
	return rows, nil
}

// buildPricingFilter constructs the OData filter: VM consumption prices
// for the region, spot or low-priority meters, restricted to the batch.
func buildPricingFilter(names []string, region string) string {
	clauses := []string{
		"serviceName eq 'Virtual Machines'",
		"priceType eq 'Consumption'",
		fmt.Sprintf("armRegionName eq '%s'", region),
		"(contains(meterName, 'Spot') or contains(meterName, 'Low Priority'))",
	}

	if len(names) == 1 {
		clauses = append(clauses, fmt.Sprintf("armSkuName eq '%s'", names[0]))
	} else {
		skuClauses := make([]string, 0, len(names))
		for _, n := range names {
			skuClauses = append(skuClauses, fmt.Sprintf("armSkuName eq '%s'", n))
		}
		clauses = append(clauses, "("+strings.Join(skuClauses, " or ")+")")
	}

	return strings.Join(clauses, " and ")
}

// groupSpotLinuxRows keeps Linux spot rows and groups them by SKU name.
// Windows products carry "Windows" in the product name; spot meters carry
// "Spot" in the meter name.
func groupSpotLinuxRows(rows []retailPrice, out map[string][]types.PricingRecord) {
	for _, row := range rows {
		if row.ArmSkuName == "" {
			continue
		}
		if !strings.Contains(row.MeterName, "Spot") {
			continue
		}
		if strings.Contains(row.ProductName, "Windows") {
			continue
		}

		out[row.ArmSkuName] = append(out[row.ArmSkuName], types.PricingRecord{
			Price:          decimal.NewFromFloat(row.RetailPrice),
			Currency:       row.CurrencyCode,
			Location:       row.Location,
			MeterName:      row.MeterName,
			ProductName:    row.ProductName,
			EffectiveStart: row.EffectiveStartDate,
			EffectiveEnd:   row.EffectiveEndDate,
		})
	}
}

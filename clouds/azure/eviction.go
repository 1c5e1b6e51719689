package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"spot-advisor/core/types"
	"spot-advisor/internal/errors"
)

const resourceGraphBatchAPIVersion = "2020-06-01"

// EvictionClient reads spot eviction rates from the Resource Graph
// SpotResources table via the management batch endpoint.
type EvictionClient struct {
	httpClient     *http.Client
	tokens         oauth2.TokenSource
	subscriptionID string
	baseURL        string
}

func NewEvictionClient(creds Credentials, tokens oauth2.TokenSource) *EvictionClient {
	return &EvictionClient{
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		tokens:         tokens,
		subscriptionID: creds.SubscriptionID,
		baseURL:        managementBaseURL,
	}
}

type batchRequest struct {
	Requests []batchEntry `json:"requests"`
}

type batchEntry struct {
	HTTPMethod string         `json:"httpMethod"`
	URL        string         `json:"url"`
	Content    graphQueryBody `json:"content"`
}

type graphQueryBody struct {
	Subscriptions []string `json:"subscriptions"`
	Query         string   `json:"query"`
}

type batchResponse struct {
	Responses []struct {
		HTTPStatusCode int `json:"httpStatusCode"`
		Content        struct {
			Data struct {
				Rows [][]any `json:"rows"`
			} `json:"data"`
		} `json:"content"`
	} `json:"responses"`
}

// EvictionRates returns eviction rate buckets keyed by SKU name then
// location. SKUs or locations absent from the result simply have no
// published rate.
func (c *EvictionClient) EvictionRates(ctx context.Context, names, locations []string) (map[string]map[string]types.EvictionRate, error) {
	out := make(map[string]map[string]types.EvictionRate)
	if len(names) == 0 || len(locations) == 0 {
		return out, nil
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, errors.Auth("failed to acquire management token", err)
	}

	payload, err := json.Marshal(batchRequest{
		Requests: []batchEntry{{
			HTTPMethod: http.MethodPost,
			URL:        "/providers/Microsoft.ResourceGraph/resources?api-version=2021-03-01",
			Content: graphQueryBody{
				Subscriptions: []string{c.subscriptionID},
				Query:         buildEvictionQuery(names, locations),
			},
		}},
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/batch?api-version=%s", c.baseURL, resourceGraphBatchAPIVersion)

	resp, err := doWithRetry(ctx, c.httpClient, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		token.SetAuthHeader(req)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Upstream("resource graph batch failed", readStatusError(resp))
	}

	var body batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Upstream("failed to decode resource graph response", err)
	}
	if len(body.Responses) == 0 {
		return out, nil
	}
	inner := body.Responses[0]
	if inner.HTTPStatusCode != http.StatusOK {
		return nil, errors.Upstream(fmt.Sprintf("resource graph query returned status %d", inner.HTTPStatusCode), nil)
	}

	for _, row := range inner.Content.Data.Rows {
		if len(row) < 3 {
			continue
		}
		sku, ok1 := row[0].(string)
		location, ok2 := row[1].(string)
		rateStr, ok3 := row[2].(string)
		if !ok1 || !ok2 || !ok3 || sku == "" {
			continue
		}
		rate := types.EvictionRate(rateStr)
		if !rate.IsValid() {
			continue
		}
		if out[sku] == nil {
			out[sku] = make(map[string]types.EvictionRate)
		}
		out[sku][location] = rate
	}
	return out, nil
}

// buildEvictionQuery renders the SpotResources KQL query for the
// requested SKUs and locations.
func buildEvictionQuery(names, locations []string) string {
	return fmt.Sprintf(
		"SpotResources"+
			" | where type =~ 'microsoft.compute/skuspotevictionrate/location'"+
			" | where sku.name in~ (%s)"+
			" | where location in~ (%s)"+
			" | project skuName = tostring(sku.name), location, spotEvictionRate = tostring(properties.evictionRate)"+
			" | order by skuName asc",
		quoteList(names), quoteList(locations))
}

func quoteList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, "'"+strings.ReplaceAll(v, "'", "")+"'")
	}
	return strings.Join(quoted, ", ")
}

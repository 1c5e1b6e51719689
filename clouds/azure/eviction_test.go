package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spot-advisor/core/types"
)

func newTestEvictionClient(baseURL string) *EvictionClient {
	c := NewEvictionClient(Credentials{SubscriptionID: "sub-123"}, testTokens())
	c.baseURL = baseURL
	return c
}

func TestBuildEvictionQuery(t *testing.T) {
	query := buildEvictionQuery([]string{"Standard_D2s_v5"}, []string{"eastus", "westus2"})

	assert.Contains(t, query, "SpotResources")
	assert.Contains(t, query, "sku.name in~ ('Standard_D2s_v5')")
	assert.Contains(t, query, "location in~ ('eastus', 'westus2')")
	assert.Contains(t, query, "tostring(properties.evictionRate)")
}

func TestEvictionRatesParsesBatchResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req batchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Requests, 1)
		assert.Equal(t, []string{"sub-123"}, req.Requests[0].Content.Subscriptions)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"responses": [{
				"httpStatusCode": 200,
				"content": {"data": {"rows": [
					["Standard_D2s_v5", "eastus", "0-5"],
					["Standard_E4s_v5", "eastus", "20+"],
					["Standard_E4s_v5", "westus2", "5-10"],
					["Standard_Bogus", "eastus", "huge"],
					["short-row"]
				]}}
			}]
		}`))
	}))
	defer server.Close()

	client := newTestEvictionClient(server.URL)

	rates, err := client.EvictionRates(context.Background(),
		[]string{"Standard_D2s_v5", "Standard_E4s_v5"}, []string{"eastus", "westus2"})
	require.NoError(t, err)

	require.Len(t, rates, 2)
	assert.Equal(t, types.Eviction0To5, rates["Standard_D2s_v5"]["eastus"])
	assert.Equal(t, types.Eviction20Plus, rates["Standard_E4s_v5"]["eastus"])
	assert.Equal(t, types.Eviction5To10, rates["Standard_E4s_v5"]["westus2"])
}

func TestEvictionRatesInnerStatusFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses": [{"httpStatusCode": 429, "content": {}}]}`))
	}))
	defer server.Close()

	client := newTestEvictionClient(server.URL)

	_, err := client.EvictionRates(context.Background(), []string{"Standard_D2s_v5"}, []string{"eastus"})
	assert.Error(t, err)
}

func TestEvictionRatesEmptyInput(t *testing.T) {
	client := newTestEvictionClient("http://invalid.invalid")

	rates, err := client.EvictionRates(context.Background(), nil, []string{"eastus"})
	require.NoError(t, err)
	assert.Empty(t, rates)
}

package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"spot-advisor/core/catalog"
	"spot-advisor/internal/errors"
)

func testTokens() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
}

func newTestComputeClient(baseURL string) *ComputeClient {
	c := NewComputeClient(Credentials{SubscriptionID: "sub-123"}, testTokens())
	c.baseURL = baseURL
	return c
}

func TestListRawSKUsFollowsPagination(t *testing.T) {
	var requests []string
	var serverURL string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.String())
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			json.NewEncoder(w).Encode(skuListPage{
				Value: []catalog.RawSKU{{Name: "Standard_E4s_v5"}},
			})
			return
		}

		assert.Contains(t, r.URL.RawQuery, "api-version=2021-07-01")
		assert.Equal(t, "location eq 'eastus'", r.URL.Query().Get("$filter"))
		json.NewEncoder(w).Encode(skuListPage{
			Value:    []catalog.RawSKU{{Name: "Standard_D2s_v5"}},
			NextLink: fmt.Sprintf("%s/skus?page=2", serverURL),
		})
	}))
	defer server.Close()
	serverURL = server.URL

	client := newTestComputeClient(server.URL)

	skus, err := client.ListRawSKUs(context.Background(), "eastus")
	require.NoError(t, err)
	require.Len(t, skus, 2)
	assert.Equal(t, "Standard_D2s_v5", skus[0].Name)
	assert.Equal(t, "Standard_E4s_v5", skus[1].Name)
	assert.Len(t, requests, 2)
	assert.Contains(t, requests[0], "/subscriptions/sub-123/providers/Microsoft.Compute/skus")
}

func TestListRawSKUsNonOKStatusFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"AuthorizationFailed"}}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestComputeClient(server.URL)

	_, err := client.ListRawSKUs(context.Background(), "eastus")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeUpstream))
}

func TestListRawSKUsTokenFailure(t *testing.T) {
	client := NewComputeClient(Credentials{SubscriptionID: "sub-123"},
		failingTokenSource{})

	_, err := client.ListRawSKUs(context.Background(), "eastus")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeAuth))
}

type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, fmt.Errorf("no credentials available")
}

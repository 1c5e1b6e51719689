package azure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"spot-advisor/internal/errors"
)

const (
	maxAttempts      = 3
	retryBaseBackoff = time.Second
)

// doWithRetry issues a request built by newRequest, retrying transient
// failures (network errors and 5xx responses) with exponential backoff.
// The request must be rebuilt per attempt because bodies are consumed.
func doWithRetry(ctx context.Context, client *http.Client, newRequest func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := retryBaseBackoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := newRequest()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req.WithContext(ctx))
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = readStatusError(resp)
			continue
		}
		return resp, nil
	}

	return nil, errors.Upstream(fmt.Sprintf("request failed after %d attempts", maxAttempts), lastErr)
}

// readStatusError drains a response into an error carrying the status and
// a bounded body snippet.
func readStatusError(resp *http.Response) error {
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet))
}

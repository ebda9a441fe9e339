// Package fetch wraps net/http for the adapters: context-aware GETs, a
// shared timeout, and a uniform status-code policy. Adapters never touch
// http.Client directly.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/guttosm/macropulse/internal/domain/errs"
)

const userAgent = "macropulse/1.0"

// Client issues blocking GET requests. The zero value is not usable;
// construct with New.
type Client struct {
	httpClient *http.Client
}

// New returns a client with the given request timeout.
func New(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Get fetches url and returns the response body. A transport failure or
// a non-200 status is reported as ErrSourceUnavailable.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Unavailable(url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.Unavailable(url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Unavailable(url, fmt.Errorf("read body: %w", err))
	}
	return body, nil
}

package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"historycal/internal/ports"
)

const defaultUserAgent = "historycal/1.0"

// Client implements ports.Fetcher as a plain text GET over net/http.
// Retries and rate limiting are out of scope; a failed fetch fails the
// cycle and the scheduler retries on the next tick.
type Client struct {
	http *http.Client
}

var _ ports.Fetcher = (*Client)(nil)

// NewClient wires an HTTP client; the default carries a 30s timeout.
func NewClient(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{http: client}
}

// Get fetches url with the provided headers and returns the body text.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", defaultUserAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", url, err)
	}

	return string(body), nil
}

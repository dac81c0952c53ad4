// Package recommend provides access to the external recommendation API:
// query emotion classification and paged book recommendations.
package recommend

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client calls the recommendation service over HTTP.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a recommendation API client.
// The per-request timeout is generous because the upstream model can take
// tens of seconds to answer a paged query.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		// 10 requests per second, burst of 10: a single search issues up
		// to six requests (one classify, five pages) back to back.
		rateLimiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 10),
		logger:      logger,
	}
}

// Close releases resources. Currently a no-op but included for interface consistency.
func (c *Client) Close() {
	// No persistent resources to close
}

// wait blocks until rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}

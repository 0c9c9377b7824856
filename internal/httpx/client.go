package httpx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	userAgent   = "RegScanner/1.0"
	maxBodySize = 5 * 1024 * 1024
	minBodySize = 64
)

// Client is the shared fetch client: every request passes the per-domain
// limiter, and failures retry with exponential backoff.
type Client struct {
	http    *http.Client
	limiter *Limiter
	logger  *slog.Logger
}

// NewClient wires an HTTP client with the domain limiter. A nil limiter
// disables rate gating (tests).
func NewClient(timeout time.Duration, limiter *Limiter, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
		logger:  logger,
	}
}

// Get fetches url under the retry policy and returns the body. Non-200
// status, a short body and transport errors all count as retryable
// failures; exhaustion returns a terminal error for this request only.
func (c *Client) Get(ctx context.Context, url string, policy RetryPolicy) ([]byte, error) {
	var body []byte

	err := Do(ctx, policy, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, url); err != nil {
				return err
			}
		}

		reqCtx := ctx
		if policy.Timeout > 0 {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
			defer cancel()
		}

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &StatusError{Code: resp.StatusCode, URL: url}
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if len(data) < minBodySize {
			return fmt.Errorf("short body (%d bytes) from %s", len(data), url)
		}

		body = data
		return nil
	})
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("fetch failed", "url", url, "error", err)
		}
		return nil, err
	}

	return body, nil
}

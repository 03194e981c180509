package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client fetches source pages with a browser-like identity, a polite rate
// limit, and a small fixed number of retries with linearly increasing
// backoff.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

func NewClient(userAgent string, timeout time.Duration, maxRetries int, retryDelay time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		userAgent:  userAgent,
		timeout:    timeout,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Fetch retrieves a URL, retrying transient failures. The backoff before
// attempt n+1 is retryDelay*n.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		data, err := c.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt < c.maxRetries {
			wait := c.retryDelay * time.Duration(attempt)
			slog.Warn("Fetch failed, retrying",
				"url", url, "attempt", attempt, "max_retries", c.maxRetries,
				"wait", wait.String(), "error", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	return nil, fmt.Errorf("fetch failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	data, _, notModified, err := c.do(ctx, url, "")
	if err != nil {
		return nil, err
	}
	if notModified {
		return nil, fmt.Errorf("unexpected 304 response for unconditional request")
	}
	return data, nil
}

// FetchConditional performs a single conditional GET. When ifModifiedSince
// is non-empty it is sent as the If-Modified-Since validator; a 304
// response is reported through notModified. lastModified carries the
// server's Last-Modified header when present.
func (c *Client) FetchConditional(ctx context.Context, url, ifModifiedSince string) (data []byte, lastModified string, notModified bool, err error) {
	return c.do(ctx, url, ifModifiedSince)
}

func (c *Client) do(ctx context.Context, url, ifModifiedSince string) ([]byte, string, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", false, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	if ifModifiedSince != "" {
		req.Header.Set("If-Modified-Since", ifModifiedSince)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, "", true, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", false, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, resp.Header.Get("Last-Modified"), false, nil
}

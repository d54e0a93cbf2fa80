package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/artpricematcher/price-matcher/internal/http/ratelimit"
)

// MaxBodyBytes caps how much of a feed download is read
const MaxBodyBytes = 256 << 20

// Client is an HTTP client with rate limiting and retry logic
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     ratelimit.Config
	userAgent  string
}

// NewClient creates a new HTTP client with rate limiting
func NewClient(config ratelimit.Config) *Client {
	config = config.Normalize()
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    ratelimit.NewLimiter(config),
		config:     config,
		userAgent:  "PriceMatcher/1.0",
	}
}

// NewClientDefault creates a new HTTP client with default rate limiting
func NewClientDefault() *Client {
	return NewClient(ratelimit.DefaultConfig())
}

// Get performs a GET request with rate limiting and retries on 429 and 5xx.
// The caller closes the response body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var lastStatus int
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, &ratelimit.FetchRetryError{URL: url, Attempts: attempt + 1, LastError: err}
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "*/*")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil || attempt == c.config.MaxRetries {
				break
			}
			if err := ratelimit.Sleep(ctx, ratelimit.Backoff(attempt, c.config)); err != nil {
				return nil, err
			}
			continue
		}

		lastStatus = resp.StatusCode
		lastErr = nil
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		resp.Body.Close()
		if !ratelimit.IsRetryableStatus(resp.StatusCode) || attempt == c.config.MaxRetries {
			return nil, &ratelimit.FetchRetryError{URL: url, Attempts: attempt + 1, LastStatus: resp.StatusCode}
		}

		wait := ratelimit.Backoff(attempt, c.config)
		if resp.StatusCode == http.StatusTooManyRequests {
			wait = ratelimit.RateLimitBackoff(attempt, c.config, resp.Header.Get("Retry-After"))
		}
		if err := ratelimit.Sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, &ratelimit.FetchRetryError{
		URL:        url,
		Attempts:   c.config.MaxRetries + 1,
		LastStatus: lastStatus,
		LastError:  lastErr,
	}
}

// GetBytes performs a GET request and returns at most MaxBodyBytes of the body
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > MaxBodyBytes {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", url, MaxBodyBytes)
	}
	return data, nil
}

// Config returns the effective retry configuration
func (c *Client) Config() ratelimit.Config {
	return c.config
}

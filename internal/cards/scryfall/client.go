package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Scryfall API.
	DefaultBaseURL = "https://api.scryfall.com"

	defaultUserAgent = "OnCurve/1.0"
	rateLimitDelay   = 100 * time.Millisecond // 100ms between requests (10 req/sec)
	requestTimeout   = 30 * time.Second
	maxRetries       = 3
	initialBackoff   = 1 * time.Second
	maxBackoff       = 16 * time.Second
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL    string
	UserAgent  string
	RateLimit  time.Duration // Delay between requests
	Backoff    time.Duration // First retry delay, doubled per attempt
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client represents a Scryfall API client with rate limiting.
type Client struct {
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	baseURL        string
	userAgent      string
	initialBackoff time.Duration
	logger         *zap.Logger
}

// NewClient creates a new Scryfall API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = rateLimitDelay
	}
	if opts.Backoff <= 0 {
		opts.Backoff = initialBackoff
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: requestTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		httpClient:     opts.HTTPClient,
		rateLimiter:    rate.NewLimiter(rate.Every(opts.RateLimit), 1),
		baseURL:        opts.BaseURL,
		userAgent:      opts.UserAgent,
		initialBackoff: opts.Backoff,
		logger:         opts.Logger,
	}
}

// GetCardByName retrieves a card by its exact English name.
func (c *Client) GetCardByName(ctx context.Context, name string) (*Card, error) {
	endpoint := fmt.Sprintf("%s/cards/named?exact=%s", c.baseURL, url.QueryEscape(name))

	var card Card
	if err := c.doRequest(ctx, endpoint, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %q: %w", name, err)
	}

	return &card, nil
}

// doRequest performs a GET with rate limiting and retries. Network errors
// and HTTP 429 are retried with exponential backoff.
func (c *Client) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("HTTP request failed: %w", err)
			}
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < maxRetries {
				c.logger.Debug("scryfall request failed, retrying",
					zap.String("url", endpoint), zap.Int("attempt", attempt+1), zap.Error(err))
				if err := sleep(ctx, backoff); err != nil {
					return err
				}
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return lastErr
		}

		retry, err := c.handleResponse(resp, endpoint, result)
		if !retry {
			return err
		}
		lastErr = err
		if attempt < maxRetries {
			wait := backoff
			if d, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
				wait = d
			}
			c.logger.Debug("scryfall rate limited, backing off",
				zap.String("url", endpoint), zap.Duration("wait", wait))
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// handleResponse decodes resp into result. It reports whether the request
// should be retried.
func (c *Client) handleResponse(resp *http.Response, endpoint string, result interface{}) (bool, error) {
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, fmt.Errorf("failed to read response body: %w", err)
		}
		if err := json.Unmarshal(body, result); err != nil {
			return false, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return false, nil

	case http.StatusTooManyRequests:
		return true, fmt.Errorf("rate limited (HTTP 429)")

	case http.StatusNotFound:
		return false, &NotFoundError{URL: endpoint}

	default:
		body, _ := io.ReadAll(resp.Body)

		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			return false, &apiErr
		}
		return false, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}

func retryAfter(header string) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

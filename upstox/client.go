// Package upstox is a client for the Upstox v2 market data API.
//
// It implements algo.CandleSource over the historical candle endpoint, with an
// optional response cache, a client side rate limit and a circuit breaker.
package upstox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/perryizgr8/algo"
	"github.com/perryizgr8/algo/cache"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api-v2.upstox.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
	APIVersion       = "2.0"
)

// Client is an Upstox API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	cache      *cache.Cache
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// WithRateLimit sets the maximum number of requests per second.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1) }
}

// WithCache caches successful candle responses.
func WithCache(cc *cache.Cache) ClientOption {
	return func(c *Client) { c.cache = cc }
}

// NewClient creates a client authenticated with an access token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		breaker:    newBreaker("upstox"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newBreaker opens after 5 consecutive failures, or 20% failures once 20 requests were made.
// Client errors other than rate limits do not count as failures: the service is up.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			return counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.2
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500 && !apiErr.RateLimit()
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state changed")
		},
	})
}

// APIError represents an API error.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstox API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// RateLimit reports whether the request was rejected by the server rate limit.
func (e *APIError) RateLimit() bool { return e.StatusCode == http.StatusTooManyRequests }

// Is makes rate limit errors match algo.ErrRateLimited.
func (e *APIError) Is(target error) bool { return target == algo.ErrRateLimited && e.RateLimit() }

// get performs a rate-limited, authenticated GET request and returns the body.
func (c *Client) get(ctx context.Context, addr string, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	body, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", accept)
		req.Header.Set("Api-Version", APIVersion)
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		log.Debug().Str("url", addr).Msg("upstox API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()
		content, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: truncate(string(content), 200), Endpoint: req.URL.Path}
		}
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

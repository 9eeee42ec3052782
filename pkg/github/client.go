// Package github provides the GitHub REST client used by forklift, with
// rate-limit tracking, error classification, and bounded retry for
// secondary rate limits.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/onlydole/forklift/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Prometheus metrics for GitHub client operations.
var (
	githubRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forklift_github_requests_total",
		Help: "Total GitHub API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	githubRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forklift_github_request_duration_seconds",
		Help:    "GitHub API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	githubErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forklift_github_errors_total",
		Help: "Total GitHub API errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents non-retryable 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents secondary rate limit rejections
	// (403 with a rate-limit message).
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Client is the forklift GitHub API client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	userAgent   string
	rateLimiter *ratelimit.Tracker
	retry       RetryConfig
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Token is the opaque bearer token used for authentication (REQUIRED).
	Token string

	// UserAgent header sent with every request.
	UserAgent string

	// BaseURL overrides the GitHub API endpoint (used by tests).
	BaseURL string

	// Tracker mirrors the primary rate-limit headers; optional.
	Tracker *ratelimit.Tracker

	// Retry configures the secondary rate-limit backoff.
	Retry RetryConfig

	// Timeout per HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration for the given token.
func DefaultConfig(token string) Config {
	return Config{
		Token:     token,
		UserAgent: "forklift/1.0.0",
		BaseURL:   DefaultBaseURL,
		Retry:     DefaultRetryConfig(),
		Timeout:   30 * time.Second,
	}
}

// New creates a new GitHub client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "forklift/1.0.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	logger := log.With().Str("component", "github-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		token:       cfg.Token,
		userAgent:   cfg.UserAgent,
		rateLimiter: cfg.Tracker,
		retry:       cfg.Retry,
		logger:      logger,
	}, nil
}

// get performs a single GET request against the API. It makes exactly one
// network call: retries live in the retry wrapper, not here. Failures carry
// the HTTP status and message so callers can classify them.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	startTime := time.Now()
	defer func() {
		githubRequestDuration.WithLabelValues(path).Observe(time.Since(startTime).Seconds())
	}()

	if c.rateLimiter != nil {
		allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Rate limit check failed")
			return nil, fmt.Errorf("rate limit check: %w", err)
		}
		if !allowed {
			c.logger.Warn().
				Str("endpoint", path).
				Msg("Request blocked by rate limiter")
			githubRequestsTotal.WithLabelValues(path, "rate_limited").Inc()
			return nil, fmt.Errorf("request blocked: rate limit critical")
		}
	}

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug().
		Str("endpoint", path).
		Str("method", req.Method).
		Msg("Executing GitHub request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", path).Msg("HTTP request failed")
		githubErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		githubRequestsTotal.WithLabelValues(path, "network_error").Inc()
		return nil, fmt.Errorf("github request: %w", err)
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    decodeErrorMessage(resp),
		}
		resp.Body.Close()

		class := classifyError(apiErr)
		githubErrorsTotal.WithLabelValues(string(class)).Inc()
		githubRequestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		c.logger.Warn().
			Str("endpoint", path).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("GitHub request error")

		return nil, apiErr
	}

	githubRequestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()
	return resp, nil
}

// classifyError categorizes an API error for observability.
func classifyError(apiErr *APIError) ErrorClass {
	switch {
	case apiErr.IsSecondaryRateLimit():
		return ErrorClassRateLimit
	case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		return ErrorClassClient
	case apiErr.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// decodeErrorMessage extracts the "message" field from a GitHub error body,
// falling back to the raw body text.
func decodeErrorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return resp.Status
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(body)
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

package github

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for retry operations.
var (
	githubRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forklift_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	githubRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forklift_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	githubRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forklift_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RetryConfig holds the configuration for secondary rate-limit retries.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration: three retries
// waiting 2s, 4s, 8s. No jitter; the schedule is fixed.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    2 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// ListForksWithRetry fetches a single fork page, retrying only when GitHub's
// secondary rate limit is hit (403 with a rate-limit message). Any other
// failure is returned immediately. The retry state is scoped to this one
// page and never shared.
func (c *Client) ListForksWithRetry(ctx context.Context, owner, repo string, page int) ([]Fork, int, error) {
	backoff := c.retry.InitialBackoff
	attempts := 0

	for {
		forks, totalPages, err := c.ListForks(ctx, owner, repo, page)
		if err == nil {
			if attempts > 0 {
				c.logger.Debug().
					Int("page", page).
					Int("retries", attempts).
					Msg("Fetched page after retries")
			}
			return forks, totalPages, nil
		}

		if !IsSecondaryRateLimit(err) {
			return nil, 0, err
		}

		if attempts >= c.retry.MaxRetries {
			githubRetryExhaustedTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			c.logger.Warn().
				Int("page", page).
				Int("max_retries", c.retry.MaxRetries).
				Msg("Retry attempts exhausted")
			return nil, 0, fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, attempts+1, err)
		}

		attempts++
		githubRetriesTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
		githubRetryBackoffSeconds.WithLabelValues(string(ErrorClassRateLimit)).Observe(backoff.Seconds())

		c.logger.Warn().
			Int("page", page).
			Dur("backoff", backoff).
			Int("attempt", attempts).
			Int("max_retries", c.retry.MaxRetries).
			Msg("Rate limit hit, retrying after backoff")

		select {
		case <-ctx.Done():
			return nil, 0, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * c.retry.BackoffMultiplier)
	}
}

// Package metrics provides the centralized Prometheus registry reference for
// forklift. Metrics are defined in the packages they instrument (github,
// pagination, ratelimit) to maintain modularity and avoid circular
// dependencies.
//
// This package documents the available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by forklift.
// All metrics are automatically registered via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// GitHub Client Metrics (pkg/github):
//   - forklift_github_requests_total (CounterVec): Requests by endpoint and status
//   - forklift_github_request_duration_seconds (HistogramVec): Request duration by endpoint
//   - forklift_github_errors_total (CounterVec): Errors by class (client, server, rate_limit, network)
//   - forklift_retries_total (CounterVec): Retry attempts by error class
//   - forklift_retry_backoff_seconds (HistogramVec): Backoff durations by error class
//   - forklift_retry_exhausted_total (CounterVec): Exhausted retry sequences by error class
//
// Pagination Metrics (pkg/pagination):
//   - forklift_pages_fetched_total (Counter): Pages fetched successfully
//   - forklift_batch_fetch_duration_seconds (Histogram): Complete batch fetch durations
//
// Rate Limit Metrics (pkg/ratelimit):
//   - forklift_rate_limit_remaining (Gauge): Budget left in the current window
//   - forklift_rate_limit_blocks_total (Counter): Requests blocked at critical threshold
//   - forklift_rate_limit_throttles_total (Counter): Requests throttled at warning threshold

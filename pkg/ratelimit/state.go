// Package ratelimit tracks GitHub's primary rate limit and gates requests.
// It mirrors the X-RateLimit-Remaining and X-RateLimit-Reset headers so the
// client throttles before the API starts rejecting requests outright.
package ratelimit

import (
	"time"
)

// Redis keys for shared rate limit state.
const (
	RedisKeyRemaining      = "forklift:rate_limit:remaining"
	RedisKeyResetTimestamp = "forklift:rate_limit:reset_timestamp"
	RedisKeyLastUpdate     = "forklift:rate_limit:last_update"
)

// Thresholds for rate limit decisions. GitHub's authenticated primary limit
// is 5000 requests per hour.
const (
	// ThresholdCritical blocks all requests when the remaining budget falls
	// below this value, keeping the last requests available for other
	// consumers of the token.
	ThresholdCritical = 3

	// ThresholdWarning applies throttling when the remaining budget falls
	// below this value.
	ThresholdWarning = 50

	// ThresholdHealthy indicates normal operation with no restrictions.
	ThresholdHealthy = 500
)

// State represents the current primary rate limit state. When Redis is
// configured it is shared across forklift runs using the same token.
type State struct {
	// Remaining is the request budget left in the current window.
	// Extracted from the X-RateLimit-Remaining header.
	Remaining int `json:"remaining"`

	// ResetAt is when the rate limit window resets.
	// Extracted from the X-RateLimit-Reset header (unix epoch seconds).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was last refreshed from headers.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when Remaining >= ThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state is older than the given duration.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked.
func (s *State) NeedsCriticalBlock() bool {
	return s.Remaining < ThresholdCritical
}

// NeedsThrottling returns true if requests should be slowed down.
func (s *State) NeedsThrottling() bool {
	return s.Remaining < ThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the window resets, or 0 if the
// reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates IsHealthy from the current Remaining value.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.Remaining >= ThresholdHealthy
}

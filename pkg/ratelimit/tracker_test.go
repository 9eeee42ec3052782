package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func headersFor(remaining int, resetAt time.Time) http.Header {
	headers := http.Header{}
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	return headers
}

func TestTracker_DefaultState(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop())

	state, err := tracker.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if !state.IsHealthy {
		t.Error("Expected default state to be healthy")
	}
	if state.Remaining != 5000 {
		t.Errorf("Remaining = %d, want 5000", state.Remaining)
	}
}

func TestTracker_UpdateFromHeaders(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop())
	ctx := context.Background()

	resetAt := time.Now().Add(20 * time.Minute)
	if err := tracker.UpdateFromHeaders(ctx, headersFor(42, resetAt)); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.Remaining != 42 {
		t.Errorf("Remaining = %d, want 42", state.Remaining)
	}
	if state.ResetAt.Unix() != resetAt.Unix() {
		t.Errorf("ResetAt = %v, want %v", state.ResetAt, resetAt)
	}
	if state.IsHealthy {
		t.Error("Expected unhealthy state at 42 remaining")
	}
}

func TestTracker_UpdateFromHeaders_MissingHeaders(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop())
	ctx := context.Background()

	// Responses without rate limit headers leave state untouched.
	if err := tracker.UpdateFromHeaders(ctx, http.Header{}); err != nil {
		t.Fatalf("Expected nil error for absent headers, got %v", err)
	}

	state, _ := tracker.GetState(ctx)
	if state.Remaining != 5000 {
		t.Errorf("Remaining = %d, want untouched default 5000", state.Remaining)
	}

	// A remaining header without a reset header is malformed.
	headers := http.Header{}
	headers.Set("X-RateLimit-Remaining", "100")
	if err := tracker.UpdateFromHeaders(ctx, headers); err == nil {
		t.Error("Expected error when reset header is missing")
	}
}

func TestTracker_ShouldAllowRequest(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop())
	ctx := context.Background()

	// Healthy: allowed.
	allowed, err := tracker.ShouldAllowRequest(ctx)
	if err != nil {
		t.Fatalf("ShouldAllowRequest failed: %v", err)
	}
	if !allowed {
		t.Error("Expected healthy state to allow request")
	}

	// Critical: blocked.
	resetAt := time.Now().Add(time.Minute)
	if err := tracker.UpdateFromHeaders(ctx, headersFor(0, resetAt)); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}
	allowed, err = tracker.ShouldAllowRequest(ctx)
	if err != nil {
		t.Fatalf("ShouldAllowRequest failed: %v", err)
	}
	if allowed {
		t.Error("Expected critical state to block request")
	}
}

func TestTracker_ThrottlesInWarningState(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop())
	ctx := context.Background()

	resetAt := time.Now().Add(time.Minute)
	if err := tracker.UpdateFromHeaders(ctx, headersFor(ThresholdWarning-1, resetAt)); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	start := time.Now()
	allowed, err := tracker.ShouldAllowRequest(ctx)
	if err != nil {
		t.Fatalf("ShouldAllowRequest failed: %v", err)
	}
	if !allowed {
		t.Error("Expected warning state to allow request after throttling")
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("Expected ~1s throttle sleep, got %v", elapsed)
	}
}

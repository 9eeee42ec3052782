package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common errors returned by the client.
var (
	// ErrMissingToken is returned when no GitHub token could be resolved.
	ErrMissingToken = errors.New("no GitHub token found: set GITHUB_TOKEN in .env or the environment, or pass --token")

	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry backoff.
	ErrContextCancelled = errors.New("context cancelled")
)

// InvalidURLError indicates the repository URL could not be parsed at all.
type InvalidURLError struct {
	Raw string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("failed to parse repository URL: %s", e.Raw)
}

// InvalidDomainError indicates the URL points somewhere other than github.com.
type InvalidDomainError struct {
	Domain string
}

func (e *InvalidDomainError) Error() string {
	return fmt.Sprintf("expected a 'github.com' domain, but got: %s", e.Domain)
}

// InvalidPathError indicates the URL path does not carry OWNER/REPO segments.
type InvalidPathError struct {
	Segments []string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("expected the URL path format to be /OWNER/REPO, but got: %v", e.Segments)
}

// APIError represents a GitHub API error with enough structure to classify it.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error (status %d): %s", e.StatusCode, e.Message)
}

// IsSecondaryRateLimit reports whether the error is GitHub's secondary rate
// limit: HTTP 403 with a rate-limit message. Only this class is retryable;
// every other failure, including other 403s, is final.
func (e *APIError) IsSecondaryRateLimit() bool {
	return e.StatusCode == http.StatusForbidden &&
		strings.Contains(strings.ToLower(e.Message), "rate limit")
}

// IsSecondaryRateLimit reports whether err is (or wraps) a secondary
// rate-limit APIError.
func IsSecondaryRateLimit(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsSecondaryRateLimit()
}

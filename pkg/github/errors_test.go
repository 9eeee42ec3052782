package github

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_IsSecondaryRateLimit(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected bool
	}{
		{
			name:     "403 with rate limit message",
			err:      &APIError{StatusCode: 403, Message: "You have exceeded a secondary rate limit"},
			expected: true,
		},
		{
			name:     "403 with mixed case message",
			err:      &APIError{StatusCode: 403, Message: "Secondary Rate Limit exceeded"},
			expected: true,
		},
		{
			name:     "403 without rate limit message",
			err:      &APIError{StatusCode: 403, Message: "Resource not accessible by integration"},
			expected: false,
		},
		{
			name:     "404 with rate limit message",
			err:      &APIError{StatusCode: 404, Message: "rate limit"},
			expected: false,
		},
		{
			name:     "429 with rate limit message",
			err:      &APIError{StatusCode: 429, Message: "rate limit exceeded"},
			expected: false,
		},
		{
			name:     "500 server error",
			err:      &APIError{StatusCode: 500, Message: "Internal Server Error"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.IsSecondaryRateLimit(); got != tt.expected {
				t.Errorf("IsSecondaryRateLimit() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsSecondaryRateLimit_Wrapped(t *testing.T) {
	apiErr := &APIError{StatusCode: 403, Message: "API rate limit exceeded"}
	wrapped := fmt.Errorf("fetch page 3: %w", apiErr)

	if !IsSecondaryRateLimit(wrapped) {
		t.Error("Expected wrapped secondary rate limit to be detected")
	}

	if IsSecondaryRateLimit(errors.New("plain error")) {
		t.Error("Expected plain error to not classify as secondary rate limit")
	}

	if IsSecondaryRateLimit(nil) {
		t.Error("Expected nil error to not classify as secondary rate limit")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected ErrorClass
	}{
		{"secondary rate limit", &APIError{StatusCode: 403, Message: "rate limit"}, ErrorClassRateLimit},
		{"plain 403", &APIError{StatusCode: 403, Message: "forbidden"}, ErrorClassClient},
		{"404", &APIError{StatusCode: 404, Message: "Not Found"}, ErrorClassClient},
		{"500", &APIError{StatusCode: 500, Message: "boom"}, ErrorClassServer},
		{"502", &APIError{StatusCode: 502, Message: "bad gateway"}, ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyError(tt.err); got != tt.expected {
				t.Errorf("classifyError() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	urlErr := &InvalidURLError{Raw: ":::"}
	if urlErr.Error() != "failed to parse repository URL: :::" {
		t.Errorf("Unexpected message: %s", urlErr.Error())
	}

	domainErr := &InvalidDomainError{Domain: "gitlab.com"}
	if domainErr.Error() != "expected a 'github.com' domain, but got: gitlab.com" {
		t.Errorf("Unexpected message: %s", domainErr.Error())
	}

	pathErr := &InvalidPathError{Segments: []string{"only-owner"}}
	if pathErr.Error() != "expected the URL path format to be /OWNER/REPO, but got: [only-owner]" {
		t.Errorf("Unexpected message: %s", pathErr.Error())
	}
}

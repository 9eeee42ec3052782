// Package testutil provides testing utilities for forklift.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/onlydole/forklift/pkg/github"
)

// failurePlan injects a bounded number of failures for one page.
type failurePlan struct {
	times   int
	status  int
	message string
}

// MockGitHub is a configurable mock GitHub API server for testing. It serves
// paginated fork listings with Link headers and tracks request concurrency.
type MockGitHub struct {
	server *httptest.Server

	mu       sync.Mutex
	pages    [][]github.Fork
	failures map[int]*failurePlan
	delay    time.Duration

	// Tracking
	RequestCount int
	PageRequests map[int]int
	inFlight     int
	MaxInFlight  int

	// Rate limit headers attached to every response.
	RateLimitRemaining int
	RateLimitReset     int64
}

// NewMockGitHub creates a mock GitHub API server with a single empty page.
func NewMockGitHub() *MockGitHub {
	mock := &MockGitHub{
		pages:              [][]github.Fork{{}},
		failures:           make(map[int]*failurePlan),
		PageRequests:       make(map[int]int),
		RateLimitRemaining: 5000,
		RateLimitReset:     time.Now().Add(time.Hour).Unix(),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handleForks))
	return mock
}

// URL returns the mock server URL.
func (m *MockGitHub) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGitHub) Close() {
	m.server.Close()
}

// SetPages configures the fork pages the server returns.
func (m *MockGitHub) SetPages(pages ...[]github.Fork) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = pages
}

// SetDelay makes every response wait before being written, to widen the
// window where requests overlap.
func (m *MockGitHub) SetDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = delay
}

// FailPage makes the given page fail `times` times with the status and
// message before succeeding.
func (m *MockGitHub) FailPage(page, times, status int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[page] = &failurePlan{times: times, status: status, message: message}
}

// Reset clears tracking counters.
func (m *MockGitHub) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PageRequests = make(map[int]int)
	m.MaxInFlight = 0
}

func (m *MockGitHub) handleForks(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil {
			page = parsed
		}
	}

	m.mu.Lock()
	m.RequestCount++
	m.PageRequests[page]++
	m.inFlight++
	if m.inFlight > m.MaxInFlight {
		m.MaxInFlight = m.inFlight
	}
	delay := m.delay
	plan := m.failures[page]
	var failNow bool
	var failStatus int
	var failMessage string
	if plan != nil && plan.times > 0 {
		plan.times--
		failNow = true
		failStatus = plan.status
		failMessage = plan.message
	}
	pages := m.pages
	remaining := m.RateLimitRemaining
	reset := m.RateLimitReset
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if delay > 0 {
		time.Sleep(delay)
	}

	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))

	if failNow {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(failStatus)
		json.NewEncoder(w).Encode(map[string]string{"message": failMessage})
		return
	}

	var forks []github.Fork
	if page >= 1 && page <= len(pages) {
		forks = pages[page-1]
	}

	// GitHub omits rel="last" on the final page.
	if page < len(pages) {
		base := m.server.URL + r.URL.Path
		w.Header().Set("Link", fmt.Sprintf(
			`<%s?per_page=100&page=%d>; rel="next", <%s?per_page=100&page=%d>; rel="last"`,
			base, page+1, base, len(pages)))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if forks == nil {
		forks = []github.Fork{}
	}
	json.NewEncoder(w).Encode(forks)
}

// MakeForks builds n fork records named fork-<offset>..., alternating owner
// types so filters have both kinds to work with when orgEvery > 0.
func MakeForks(n, offset, orgEvery int) []github.Fork {
	forks := make([]github.Fork, n)
	for i := range forks {
		num := offset + i
		ownerType := "User"
		if orgEvery > 0 && num%orgEvery == 0 {
			ownerType = github.OwnerTypeOrganization
		}
		forks[i] = github.Fork{
			Name:     fmt.Sprintf("fork-%d", num),
			FullName: fmt.Sprintf("owner-%d/fork-%d", num, num),
			HTMLURL:  fmt.Sprintf("https://github.com/owner-%d/fork-%d", num, num),
			Owner: github.Owner{
				Login: fmt.Sprintf("owner-%d", num),
				Type:  ownerType,
			},
		}
	}
	return forks
}

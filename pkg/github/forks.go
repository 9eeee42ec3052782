package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// PerPage is the fixed page size for fork listings (GitHub's maximum).
const PerPage = 100

// OwnerTypeOrganization is the owner type GitHub reports for org accounts.
const OwnerTypeOrganization = "Organization"

// Owner identifies the account that owns a fork.
type Owner struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

// Fork is one repository entry from the fork listing.
type Fork struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Owner    Owner  `json:"owner"`
}

// ListForks fetches a single page of forks for owner/repo. It returns the
// page's records and the total page count derived from the Link header's
// rel="last" entry; when the header is absent the requested page is the last
// one. Exactly one network call, no retries.
func (c *Client) ListForks(ctx context.Context, owner, repo string, page int) ([]Fork, int, error) {
	path := fmt.Sprintf("/repos/%s/%s/forks", owner, repo)
	query := url.Values{
		"per_page": []string{strconv.Itoa(PerPage)},
		"page":     []string{strconv.Itoa(page)},
	}

	resp, err := c.get(ctx, path, query)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var forks []Fork
	if err := json.NewDecoder(resp.Body).Decode(&forks); err != nil {
		return nil, 0, fmt.Errorf("decode forks page %d: %w", page, err)
	}

	totalPages := parseLastPage(resp.Header.Get("Link"))
	if totalPages == 0 {
		totalPages = page
	}

	c.logger.Debug().
		Int("page", page).
		Int("forks", len(forks)).
		Int("total_pages", totalPages).
		Msg("Fetched forks page")

	return forks, totalPages, nil
}

// parseLastPage extracts the page number from a Link header's rel="last"
// entry. Returns 0 when the header is absent or carries no last relation.
//
// Example header:
//
//	<https://api.github.com/repos/o/r/forks?per_page=100&page=2>; rel="next",
//	<https://api.github.com/repos/o/r/forks?per_page=100&page=34>; rel="last"
func parseLastPage(header string) int {
	if header == "" {
		return 0
	}

	for _, entry := range strings.Split(header, ",") {
		parts := strings.Split(entry, ";")
		if len(parts) < 2 {
			continue
		}
		if !strings.Contains(parts[1], `rel="last"`) {
			continue
		}

		target := strings.Trim(strings.TrimSpace(parts[0]), "<>")
		parsed, err := url.Parse(target)
		if err != nil {
			return 0
		}
		page, err := strconv.Atoi(parsed.Query().Get("page"))
		if err != nil {
			return 0
		}
		return page
	}
	return 0
}

// ForkPageFetcher adapts the retry-wrapped fork listing to the pagination
// engine's PageFetcher contract for one owner/repo pair.
type ForkPageFetcher struct {
	client *Client
	owner  string
	repo   string
}

// NewForkPageFetcher creates a page fetcher bound to owner/repo.
func NewForkPageFetcher(client *Client, owner, repo string) *ForkPageFetcher {
	return &ForkPageFetcher{client: client, owner: owner, repo: repo}
}

// FetchPage fetches one page of forks with secondary rate-limit retry.
func (f *ForkPageFetcher) FetchPage(ctx context.Context, page int) ([]Fork, int, error) {
	return f.client.ListForksWithRetry(ctx, f.owner, f.repo, page)
}

package github

import (
	"net/url"
	"strings"
)

// RepoInfo holds the owner and name extracted from a repository URL.
type RepoInfo struct {
	Owner string
	Name  string
}

// ParseRepoURL extracts owner and repository name from a GitHub URL of the form:
//
//	https://github.com/OWNER/REPO
//	http://github.com/OWNER/REPO
//	github.com/OWNER/REPO
//
// A missing scheme defaults to https. Path segments beyond OWNER/REPO are
// ignored.
func ParseRepoURL(rawURL string) (RepoInfo, error) {
	withScheme := rawURL
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		withScheme = "https://" + rawURL
	}

	parsed, err := url.Parse(withScheme)
	if err != nil {
		return RepoInfo{}, &InvalidURLError{Raw: rawURL}
	}

	if parsed.Hostname() != "github.com" {
		return RepoInfo{}, &InvalidDomainError{Domain: parsed.Hostname()}
	}

	segments := make([]string, 0, 2)
	for _, segment := range strings.Split(parsed.Path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	if len(segments) < 2 {
		return RepoInfo{}, &InvalidPathError{Segments: segments}
	}

	return RepoInfo{Owner: segments[0], Name: segments[1]}, nil
}

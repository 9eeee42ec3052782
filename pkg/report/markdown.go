// Package report writes fork analysis results as Markdown.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/onlydole/forklift/pkg/forks"
)

// DefaultDir is where reports land when no output path is given.
const DefaultDir = "reports"

// DefaultPath returns the default report location for a repository.
func DefaultPath(repo string) string {
	return filepath.Join(DefaultDir, repo+"_forks.md")
}

// WriteMarkdown writes the organization fork table to path, creating parent
// directories as needed.
func WriteMarkdown(path, owner, repo string, orgForks []forks.OrgFork) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "# Organization-owned forks for %s/%s\n\n", owner, repo); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	if _, err := fmt.Fprint(file, "| Organization | Fork Name | URL |\n"); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	if _, err := fmt.Fprint(file, "|--------------|----------|-----|\n"); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, fork := range orgForks {
		if _, err := fmt.Fprintf(file, "| %s | %s | %s |\n", fork.OrgLogin, fork.ForkName, fork.ForkURL); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}

	return nil
}

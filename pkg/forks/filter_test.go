package forks

import (
	"testing"

	"github.com/onlydole/forklift/pkg/github"
)

func TestFilterOrganizations(t *testing.T) {
	records := []github.Fork{
		{
			Name:    "kube-fork",
			HTMLURL: "https://github.com/acme-corp/kube-fork",
			Owner:   github.Owner{Login: "acme-corp", Type: "Organization"},
		},
		{
			Name:    "personal-fork",
			HTMLURL: "https://github.com/alice/personal-fork",
			Owner:   github.Owner{Login: "alice", Type: "User"},
		},
		{
			Name:    "lab-fork",
			HTMLURL: "https://github.com/research-lab/lab-fork",
			Owner:   github.Owner{Login: "research-lab", Type: "Organization"},
		},
		{
			Name:  "bot-fork",
			Owner: github.Owner{Login: "some-bot", Type: "Bot"},
		},
	}

	orgForks := FilterOrganizations(records)

	if len(orgForks) != 2 {
		t.Fatalf("Got %d org forks, want 2", len(orgForks))
	}
	if orgForks[0].OrgLogin != "acme-corp" || orgForks[0].ForkName != "kube-fork" {
		t.Errorf("Unexpected first org fork: %+v", orgForks[0])
	}
	if orgForks[1].OrgLogin != "research-lab" {
		t.Errorf("Unexpected second org fork: %+v", orgForks[1])
	}
}

func TestFilterOrganizations_MissingURL(t *testing.T) {
	records := []github.Fork{
		{
			Name:  "url-less",
			Owner: github.Owner{Login: "quiet-org", Type: "Organization"},
		},
	}

	orgForks := FilterOrganizations(records)
	if len(orgForks) != 1 {
		t.Fatalf("Got %d org forks, want 1", len(orgForks))
	}
	if orgForks[0].ForkURL != "" {
		t.Errorf("ForkURL = %q, want empty string", orgForks[0].ForkURL)
	}
}

func TestFilterOrganizations_Empty(t *testing.T) {
	if got := FilterOrganizations(nil); len(got) != 0 {
		t.Errorf("Got %d org forks from nil input, want 0", len(got))
	}

	usersOnly := []github.Fork{
		{Name: "f1", Owner: github.Owner{Login: "bob", Type: "User"}},
	}
	if got := FilterOrganizations(usersOnly); len(got) != 0 {
		t.Errorf("Got %d org forks from user-only input, want 0", len(got))
	}
}

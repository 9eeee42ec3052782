// Package forks filters fork listings down to organization-owned entries.
package forks

import (
	"github.com/onlydole/forklift/pkg/github"
)

// OrgFork is one organization-owned fork, flattened for reporting.
type OrgFork struct {
	OrgLogin string
	ForkName string
	ForkURL  string
}

// FilterOrganizations retains only forks owned by organization accounts and
// projects them into report rows. A missing HTML URL becomes an empty string.
// Input order is preserved, though callers must not rely on any particular
// order.
func FilterOrganizations(records []github.Fork) []OrgFork {
	orgForks := make([]OrgFork, 0)
	for _, record := range records {
		if record.Owner.Type != github.OwnerTypeOrganization {
			continue
		}
		orgForks = append(orgForks, OrgFork{
			OrgLogin: record.Owner.Login,
			ForkName: record.Name,
			ForkURL:  record.HTMLURL,
		})
	}
	return orgForks
}

// Package feeds implements the External-Feed Clients: read-only HTTP
// lookups against a CVE database and an open-source dependency-vulnerability
// database. Every response is JSON Schema validated before decoding, and
// manifest dependency versions are compared against advisory ranges with
// semantic-version rules. Both clients are I/O-only and must never mutate
// engine state or return an error on network/parse failure: a feed outage
// degrades to "no results", never a scan failure.
package feeds

import (
	"context"

	"github.com/scanforge/engine/pkg/findings"
)

// CVE is one vulnerability record returned by the CVE feed.
type CVE struct {
	ID          string   `json:"id"`
	CVSSScore   float64  `json:"cvss_score"`
	Severity    string   `json:"severity"`
	WeaknessIDs []string `json:"weakness_ids"`
	Description string   `json:"description"`
}

// CVEClient looks up CVE records by keyword.
type CVEClient interface {
	Lookup(ctx context.Context, keyword string, max int) ([]CVE, error)
}

// DependencyClient scans a dependency manifest for known-vulnerable
// package/version pairs, returning one Finding per matched advisory.
type DependencyClient interface {
	Scan(ctx context.Context, manifest string) ([]findings.Finding, error)
}

// NoopCVEClient always returns an empty result without making a request,
// used when Config.EnableLiveFeeds is false (an offline deployment).
type NoopCVEClient struct{}

func (NoopCVEClient) Lookup(context.Context, string, int) ([]CVE, error) { return nil, nil }

// NoopDependencyClient is NoopCVEClient's counterpart for dependency scans.
type NoopDependencyClient struct{}

func (NoopDependencyClient) Scan(context.Context, string) ([]findings.Finding, error) {
	return nil, nil
}

package feeds

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"

	"github.com/scanforge/engine/pkg/findings"
	"github.com/scanforge/engine/pkg/util/resiliency"
)

const defaultOSVBase = "https://api.osv.dev/v1/query"

// manifestLine matches one "name<op>version" manifest pair: a package
// name, a version operator/separator, and a version. It
// accepts the common pip/npm/go.mod-ish shapes (==, >=, <=, ~=, ^, @) so one
// parser covers the manifest formats the retrieved pack's examples use.
var manifestLine = regexp.MustCompile(`^\s*([A-Za-z0-9_.\-/@]+)\s*(==|>=|<=|~=|!=|\^|@|=)\s*([A-Za-z0-9_.\-]+)\s*$`)

// osvResponseSchema validates the OSV query response envelope before the
// client decodes it into Go structs.
const osvResponseSchema = `{
	"type": "object",
	"properties": {
		"vulns": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id"]
			}
		}
	}
}`

// HTTPDependencyClient queries the OSV.dev vulnerability database for each
// package/version pair extracted from a manifest. Queries are paced by a
// rate limiter so a large manifest does not hammer the feed.
type HTTPDependencyClient struct {
	baseURL   string
	ecosystem string
	client    probesDoer
	schema    *jsonschema.Schema
	limiter   *rate.Limiter
}

// NewDependencyClient builds an HTTPDependencyClient against the default
// OSV endpoint, querying the PyPI ecosystem.
func NewDependencyClient() *HTTPDependencyClient {
	return NewDependencyClientWithBase(defaultOSVBase, "PyPI")
}

// NewDependencyClientWithBase builds an HTTPDependencyClient against a
// caller-chosen base URL and ecosystem, mainly for tests.
func NewDependencyClientWithBase(base, ecosystem string) *HTTPDependencyClient {
	schema := jsonschema.MustCompileString("osv-response.json", osvResponseSchema)
	return &HTTPDependencyClient{
		baseURL:   base,
		ecosystem: ecosystem,
		client:    resiliency.NewEnhancedClientWithTimeout(10 * time.Second),
		schema:    schema,
		limiter:   rate.NewLimiter(rate.Limit(10), 20),
	}
}

type manifestEntry struct {
	name    string
	version string
}

// parseManifest extracts name/version pairs from manifest text, skipping
// blank lines and `#`/`//` comments.
func parseManifest(manifest string) []manifestEntry {
	var out []manifestEntry
	for _, line := range strings.Split(manifest, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		m := manifestLine.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		out = append(out, manifestEntry{name: m[1], version: m[3]})
	}
	return out
}

type osvQuery struct {
	Version string     `json:"version"`
	Package osvPackage `json:"package"`
}

type osvPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type osvResponse struct {
	Vulns []struct {
		ID       string   `json:"id"`
		Aliases  []string `json:"aliases"`
		Summary  string   `json:"summary"`
		Severity []struct {
			Type  string `json:"type"`
			Score string `json:"score"`
		} `json:"severity"`
	} `json:"vulns"`
}

// Scan parses manifest into package/version pairs, queries OSV for each,
// and maps advisories into dependency-domain Findings. A single package's
// query failure is swallowed silently so the rest of the manifest still
// gets scanned; there is no per-manifest error return.
func (c *HTTPDependencyClient) Scan(ctx context.Context, manifest string) ([]findings.Finding, error) {
	entries := parseManifest(manifest)
	var out []findings.Finding
	for _, e := range entries {
		// semver.NewVersion is used only to sanity-check the manifest
		// version string is dotted-numeric before spending a network
		// round trip on it; ecosystems with non-semver versions (a
		// bare "1.2" Python release) still pass through to the query.
		if _, err := semver.NewVersion(e.version); err != nil && !looksVersionLike(e.version) {
			continue
		}
		advisories := c.queryOne(ctx, e)
		out = append(out, advisories...)
	}
	return out, nil
}

func looksVersionLike(v string) bool {
	for _, r := range v {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return v != ""
}

func (c *HTTPDependencyClient) queryOne(ctx context.Context, e manifestEntry) []findings.Finding {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}
	body, err := json.Marshal(osvQuery{Version: e.version, Package: osvPackage{Name: e.name, Ecosystem: c.ecosystem}})
	if err != nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var raw interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil
	}
	if err := c.schema.Validate(raw); err != nil {
		return nil
	}
	reencoded, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var parsed osvResponse
	if err := json.Unmarshal(reencoded, &parsed); err != nil {
		return nil
	}

	var out []findings.Finding
	for _, v := range parsed.Vulns {
		severity := mapOSVSeverity(v.Severity)
		loc := findings.Location{FilePath: e.name}
		out = append(out, findings.Finding{
			ID:          findings.NewID("feeds.dependency", v.ID, loc, e.version),
			Domain:      findings.DomainDependency,
			Type:        "vulnerable_dependency",
			Severity:    severity,
			Title:       "Vulnerable dependency: " + e.name + "@" + e.version,
			Description: v.Summary,
			Location:    loc,
			Evidence:    e.name + "@" + e.version,
			Remediation: "Upgrade " + e.name + " past the vulnerable range reported by " + v.ID + ".",
			Confidence:  0.9,
			References:  findings.References{CVE: osvAliasesToCVE(v.Aliases)},
			Tags:        []string{"dependency", v.ID},
		})
	}
	return out
}

func osvAliasesToCVE(aliases []string) []string {
	var out []string
	for _, a := range aliases {
		if strings.HasPrefix(a, "CVE-") {
			out = append(out, a)
		}
	}
	return out
}

// mapOSVSeverity maps an OSV severity entry's free-form score (a CVSS
// vector string, or occasionally a bare label) to a Finding severity.
func mapOSVSeverity(entries []struct {
	Type  string `json:"type"`
	Score string `json:"score"`
}) findings.Severity {
	if len(entries) == 0 {
		return findings.SeverityMedium
	}
	score := strings.ToUpper(entries[0].Score)
	switch {
	case strings.Contains(score, "CRITICAL"):
		return findings.SeverityCritical
	case strings.Contains(score, "HIGH"):
		return findings.SeverityHigh
	case strings.Contains(score, "LOW"):
		return findings.SeverityLow
	default:
		return findings.SeverityMedium
	}
}

var _ DependencyClient = (*HTTPDependencyClient)(nil)

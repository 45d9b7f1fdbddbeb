// Package findings defines the universal output unit shared by every
// analyzer and probe module in the scanning engine.
package findings

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Domain classifies which analysis surface produced a Finding.
type Domain string

const (
	DomainCodeSecurity    Domain = "code-security"
	DomainPromptInjection Domain = "prompt-injection"
	DomainPIIExposure     Domain = "pii-exposure"
	DomainThreatIntel     Domain = "threat-intel"
	DomainDependency      Domain = "dependency"
)

// Severity is the qualitative rank of a Finding. Order matters: it is used
// both for sorting and for weighting in risk-score computation.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// severityOrder gives each severity a sortable rank; lower sorts first.
var severityOrder = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityInfo:     4,
}

// Weight returns the score weight used by risk computations across
// analyzers: critical 30, high 15, medium 7, low 2, info 0.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityCritical:
		return 30
	case SeverityHigh:
		return 15
	case SeverityMedium:
		return 7
	case SeverityLow:
		return 2
	default:
		return 0
	}
}

// Rank returns the sort order of the severity; lower values are more severe.
func (s Severity) Rank() int {
	if r, ok := severityOrder[s]; ok {
		return r
	}
	return len(severityOrder)
}

// Location pins a Finding to where it was observed. Exactly one of the
// location shapes is populated depending on the producing analyzer:
// file+line for static code analysis, Offset for prompt/text analysis,
// or URL+Parameter for dynamic probes.
type Location struct {
	FilePath  string `json:"file_path,omitempty"`
	Line      int    `json:"line,omitempty"`
	Offset    int    `json:"offset,omitempty"`
	URL       string `json:"url,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

// String renders a human-readable location, used in reports and rule
// evidence text.
func (l Location) String() string {
	switch {
	case l.FilePath != "" && l.Line > 0:
		return fmt.Sprintf("%s:%d", l.FilePath, l.Line)
	case l.FilePath != "":
		return l.FilePath
	case l.URL != "" && l.Parameter != "":
		return fmt.Sprintf("%s?%s", l.URL, l.Parameter)
	case l.URL != "":
		return l.URL
	case l.Offset > 0:
		return fmt.Sprintf("offset %d", l.Offset)
	default:
		return ""
	}
}

// References bundles the standard identifier lists a Finding may carry.
type References struct {
	CWE        []string `json:"cwe,omitempty"`
	CVE        []string `json:"cve,omitempty"`
	OWASP      []string `json:"owasp,omitempty"`
	MITREATLAS []string `json:"mitre_atlas,omitempty"`
}

// Finding is the universal unit of output for every analyzer and probe.
type Finding struct {
	ID             string                 `json:"id"`
	Domain         Domain                 `json:"domain"`
	Type           string                 `json:"type"`
	Severity       Severity               `json:"severity"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Location       Location               `json:"location"`
	Evidence       string                 `json:"evidence"`
	Remediation    string                 `json:"remediation,omitempty"`
	SuggestedFix   string                 `json:"suggested_fix,omitempty"`
	Confidence     float64                `json:"confidence"`
	References     References             `json:"references"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
}

// NewID computes the stable id for a Finding: a hash of its origin, type,
// location, and essence (the evidence, which for most rules is what makes
// two findings the "same" observation). Two independent scans of the same
// input must produce the same id for the same logical finding.
func NewID(origin, findingType string, loc Location, essence string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s", origin, findingType, loc.String(), essence)
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// SortBySeverityDomainID orders findings by severity first, then domain,
// then id lexicographically. It sorts in place and also returns the slice
// for chaining.
func SortBySeverityDomainID(fs []Finding) []Finding {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].Severity.Rank() != fs[j].Severity.Rank() {
			return fs[i].Severity.Rank() < fs[j].Severity.Rank()
		}
		if fs[i].Domain != fs[j].Domain {
			return fs[i].Domain < fs[j].Domain
		}
		return fs[i].ID < fs[j].ID
	})
	return fs
}

// Dedup removes findings with a duplicate ID, preserving the first
// occurrence's position once the slice has been sorted by the caller (or
// preserving insertion order otherwise).
func Dedup(fs []Finding) []Finding {
	seen := make(map[string]struct{}, len(fs))
	out := make([]Finding, 0, len(fs))
	for _, f := range fs {
		if _, ok := seen[f.ID]; ok {
			continue
		}
		seen[f.ID] = struct{}{}
		out = append(out, f)
	}
	return out
}

// RiskScore sums severity-weighted, confidence-scaled finding scores and
// clamps the result to [0, 100]. Used uniformly by every analyzer so that
// per-domain scores and the coordinator's blended overall score are
// computed the same way.
func RiskScore(fs []Finding) float64 {
	var total float64
	for _, f := range fs {
		total += f.Severity.Weight() * f.Confidence
	}
	if total > 100 {
		return 100
	}
	if total < 0 {
		return 0
	}
	return total
}

// RiskLevel buckets a numeric overall score into the qualitative label used
// by reports and compliance framework checks.
func RiskLevel(score float64) string {
	switch {
	case score >= 75:
		return "critical"
	case score >= 50:
		return "high"
	case score >= 25:
		return "medium"
	default:
		return "low"
	}
}

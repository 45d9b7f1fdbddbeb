// Package compliance implements the Compliance Matrix: a deterministic,
// framework-keyed pass/warn/fail aggregator that turns a scan's findings
// and overall risk score into one verdict per regulatory/industry
// framework. The EU AI Act's obligations are additionally compiled and
// evaluated as a CEL expression chain rather than hand-rolled conditionals.
package compliance

import "github.com/scanforge/engine/pkg/findings"

// Framework identifies a regulatory or industry compliance standard.
type Framework string

const (
	FrameworkGDPR      Framework = "GDPR"
	FrameworkAIAct     Framework = "EU AI Act"
	FrameworkHIPAA     Framework = "HIPAA"
	FrameworkPCIDSS    Framework = "PCI-DSS"
	FrameworkSOC2      Framework = "SOC 2"
	FrameworkNISTAIRMF Framework = "NIST AI RMF"
	FrameworkOWASPLLM  Framework = "OWASP LLM Top 10"
)

// Status is the qualitative compliance outcome for a framework.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Verdict is one framework's assessment result for a scan: a status, a
// numeric score in [0, 100], a violation list, and a requirement list.
type Verdict struct {
	Framework    Framework `json:"framework"`
	Status       Status    `json:"status"`
	Score        float64   `json:"score"`
	Summary      string    `json:"summary"`
	Violations   []string  `json:"violations,omitempty"`
	Requirements []string  `json:"requirements,omitempty"`
	Evidence     []string  `json:"evidence,omitempty"`
}

// icon renders the Status as the glyph pkg/report's Markdown output uses.
func (s Status) icon() string {
	switch s {
	case StatusPass:
		return "✅"
	case StatusWarn:
		return "⚠️"
	default:
		return "❌"
	}
}

// Icon exposes the report glyph for a Verdict's status.
func (v Verdict) Icon() string { return v.Status.icon() }

// ComplianceLabel maps this package's pass/warn/fail vocabulary onto the
// compliant/partial/non-compliant labels a Compliance Verdict reports.
func (s Status) ComplianceLabel() string {
	switch s {
	case StatusPass:
		return "compliant"
	case StatusWarn:
		return "partial"
	default:
		return "non-compliant"
	}
}

func clampScore(s float64) float64 {
	if s > 100 {
		return 100
	}
	if s < 0 {
		return 0
	}
	return s
}

func countByTag(fs []findings.Finding, tag string) int {
	n := 0
	for _, f := range fs {
		for _, t := range f.Tags {
			if t == tag {
				n++
				break
			}
		}
	}
	return n
}

func hasCritical(fs []findings.Finding, domain findings.Domain) bool {
	for _, f := range fs {
		if f.Domain == domain && f.Severity == findings.SeverityCritical {
			return true
		}
	}
	return false
}

func countDomain(fs []findings.Finding, domain findings.Domain) int {
	n := 0
	for _, f := range fs {
		if f.Domain == domain {
			n++
		}
	}
	return n
}

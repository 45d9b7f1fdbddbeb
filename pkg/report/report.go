// Package report renders a completed ScanResult into its two output
// formats: a Markdown summary (reusing pkg/compliance's ✅/⚠️/❌ icon
// convention for the Compliance section) and a deterministic JSON
// serialization.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/scanforge/engine/pkg/findings"
	"github.com/scanforge/engine/pkg/scanresult"
)

// FormatMarkdown and FormatJSON are the two formats Engine.Report accepts.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Generate renders result in format, returning an error only for an
// unrecognized format — report generation itself cannot fail, since it is
// pure formatting over an already-computed ScanResult.
func Generate(result scanresult.ScanResult, format string) (string, error) {
	switch format {
	case FormatMarkdown:
		return Markdown(result), nil
	case FormatJSON:
		return JSON(result)
	default:
		return "", fmt.Errorf("report: unknown format %q", format)
	}
}

// JSON returns a deterministic JSON serialization of result. encoding/json
// already emits struct fields in declaration order and map keys sorted
// lexicographically, so no extra canonicalization step is needed here
// (unlike the audit chain's hashed records, this output is read by humans
// and tools, not hashed).
func JSON(result scanresult.ScanResult) (string, error) {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: failed to marshal scan result: %w", err)
	}
	return string(b), nil
}

// Markdown renders a full report: header, risk summary table, compliance
// block, grouped findings, top remediation actions, and a trailer with the
// audit chain-hash prefix.
func Markdown(result scanresult.ScanResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Scan Report: %s\n\n", result.AuditRecord.ScanID)
	fmt.Fprintf(&b, "- **Mode**: %s\n", result.AuditRecord.ScanMode)
	fmt.Fprintf(&b, "- **Duration**: %s\n", result.Duration)
	fmt.Fprintf(&b, "- **Engine version**: %s\n\n", result.AuditRecord.EngineVersion)

	b.WriteString("## Risk Summary\n\n")
	b.WriteString("| Domain | Score |\n|---|---|\n")
	for _, domain := range sortedKeys(result.DomainScores) {
		fmt.Fprintf(&b, "| %s | %.1f |\n", domain, result.DomainScores[domain])
	}
	fmt.Fprintf(&b, "| **Overall** | **%.1f (%s)** |\n\n", result.OverallScore, result.RiskLevel)

	b.WriteString("## Compliance\n\n")
	for _, v := range result.ComplianceVerdicts {
		fmt.Fprintf(&b, "- %s **%s** (%s, score %.0f): %s\n", v.Icon(), v.Framework, v.Status.ComplianceLabel(), v.Score, v.Summary)
		for _, viol := range v.Violations {
			fmt.Fprintf(&b, "  - violation: %s\n", viol)
		}
	}
	b.WriteString("\n")

	b.WriteString("## Findings\n\n")
	if len(result.Findings) == 0 {
		b.WriteString("No findings.\n\n")
	} else {
		for _, sev := range []findings.Severity{
			findings.SeverityCritical, findings.SeverityHigh, findings.SeverityMedium,
			findings.SeverityLow, findings.SeverityInfo,
		} {
			group := findingsBySeverity(result.Findings, sev)
			if len(group) == 0 {
				continue
			}
			fmt.Fprintf(&b, "### %s (%d)\n\n", strings.ToUpper(string(sev)), len(group))
			for _, f := range group {
				fmt.Fprintf(&b, "- `%s` **%s** — %s (%s) [confidence %.2f]\n", f.Type, f.Title, f.Location.String(), f.Domain, f.Confidence)
			}
			b.WriteString("\n")
		}
	}

	if len(result.Remediations) > 0 {
		b.WriteString("## Top Remediation Actions\n\n")
		for i, r := range result.Remediations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r)
		}
		b.WriteString("\n")
	}

	chainHash := result.AuditRecord.Hash
	if len(chainHash) > 12 {
		chainHash = chainHash[:12]
	}
	fmt.Fprintf(&b, "---\n_audit chain: %s…_\n", chainHash)

	return b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func findingsBySeverity(fs []findings.Finding, sev findings.Severity) []findings.Finding {
	var out []findings.Finding
	for _, f := range fs {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// Package codeanalyzer implements the static Code Analyzer: a
// language-agnostic regex pass, a Go-specific syntax-tree pass, and the
// hardcoded-secret detector, merged into one risk-scored result.
package codeanalyzer

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scanforge/engine/pkg/findings"
	"github.com/scanforge/engine/pkg/registry"
	"github.com/scanforge/engine/pkg/secrets"
)

// Analyzer runs the full static-analysis pipeline over a unit of source
// text.
type Analyzer struct {
	reg        *registry.Registry
	secretDet  *secrets.Detector
	skipSyntax bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithoutSyntaxTree disables the Go syntax-tree pass, leaving only the
// regex and secret passes. The regex pass must produce identical findings
// with or without the syntax-tree pass enabled.
func WithoutSyntaxTree() Option {
	return func(a *Analyzer) { a.skipSyntax = true }
}

// New builds an Analyzer with the full regex catalog registered and its own
// embedded secret detector.
func New(opts ...Option) *Analyzer {
	reg := registry.New()
	reg.RegisterAll(catalog())
	a := &Analyzer{reg: reg, secretDet: secrets.New()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result bundles the analyzer's findings with the blended risk score.
type Result struct {
	Findings  []findings.Finding
	RiskScore float64
	RiskLevel string
}

// Analyze runs the regex, AST, and secret-detection passes over text,
// attributing findings to source (a file path, or empty for prompt-embedded
// code fragments), and returns them deduplicated and risk-scored.
func (a *Analyzer) Analyze(text, source string) Result {
	var out []findings.Finding

	lines := strings.Split(text, "\n")
	for lineNo, line := range lines {
		for _, rule := range a.reg.Iter() {
			if rule.Matches(line) == nil {
				continue
			}
			out = append(out, buildRegexFinding(rule, strings.TrimSpace(line), source, lineNo+1))
		}
	}

	if !a.skipSyntax {
		out = append(out, astFindings(text, source)...)
	}
	out = append(out, a.secretDet.Scan(text, source)...)
	out = append(out, unsafeYAMLFindings(text, source)...)

	out = findings.SortBySeverityDomainID(findings.Dedup(out))
	score := findings.RiskScore(out)
	return Result{Findings: out, RiskScore: score, RiskLevel: findings.RiskLevel(score)}
}

func buildRegexFinding(rule registry.Rule, evidence, source string, line int) findings.Finding {
	loc := findings.Location{FilePath: source, Line: line}
	confidence := rule.Confidence
	if confidence == 0 {
		confidence = 0.92
	}
	return findings.Finding{
		ID:          findings.NewID("codeanalyzer", rule.FindingType, loc, evidence),
		Domain:      rule.Domain,
		Type:        rule.FindingType,
		Severity:    rule.Severity,
		Title:       humanize(rule.Label),
		Description: "Pattern " + rule.Label + " matched in source.",
		Location:    loc,
		Evidence:    truncate(evidence, 140),
		Remediation: remediationFor(rule.FindingType),
		Confidence:  confidence,
		References:  rule.References,
		Tags:        []string{"code-analyzer", rule.Label},
	}
}

func humanize(label string) string {
	return strings.ReplaceAll(label, "-", " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func remediationFor(findingType string) string {
	switch findingType {
	case "shell_injection":
		return "Use exec.Command with discrete argument slices; never build shell strings from user input."
	case "insecure_tls":
		return "Remove the insecure TLS override and validate certificates normally."
	case "sql_injection":
		return "Use parameterized queries or an ORM; never interpolate user input into SQL text."
	case "unsafe_deserialization":
		return "Use a safe/restricted loader (e.g. yaml.SafeLoader) or a schema-validated format."
	default:
		return "Review the flagged line against your secure-coding guidelines."
	}
}

var yamlDocPattern = regexp.MustCompile(`(?s)yaml\.load\(([^)]*)\)`)

// unsafeYAMLFindings raises confidence on the unsafe-deserialization rule
// when the flagged argument is itself parseable YAML, confirming it is a
// real document literal rather than a dynamic expression the regex merely
// matched syntactically.
func unsafeYAMLFindings(text, source string) []findings.Finding {
	var out []findings.Finding
	for _, m := range yamlDocPattern.FindAllStringSubmatch(text, -1) {
		candidate := strings.Trim(m[1], `"' `)
		var probe interface{}
		if err := yaml.Unmarshal([]byte(candidate), &probe); err != nil || probe == nil {
			continue
		}
		loc := findings.Location{FilePath: source}
		out = append(out, findings.Finding{
			ID:          findings.NewID("codeanalyzer", "unsafe_yaml_literal", loc, candidate),
			Domain:      findings.DomainCodeSecurity,
			Type:        "unsafe_yaml_literal",
			Severity:    findings.SeverityHigh,
			Title:       "Unsafe YAML document loaded without a restricted loader",
			Description: "A YAML document literal is passed to an unsafe loader call.",
			Location:    loc,
			Evidence:    truncate(candidate, 120),
			Remediation: "Parse with yaml.SafeLoader or an equivalent restricted loader.",
			Confidence:  0.7,
			References:  findings.References{CWE: []string{"CWE-502"}},
			Tags:        []string{"yaml", "deserialization"},
		})
	}
	return out
}

package pii

import (
	"context"

	"github.com/scanforge/engine/pkg/entropy"
	"github.com/scanforge/engine/pkg/findings"
)

// frameworksFor maps an entity type to the compliance frameworks it is
// relevant to: contact data is a GDPR concern; SSNs and medical records
// concern GDPR and HIPAA; financial identifiers concern GDPR and PCI-DSS.
func frameworksFor(t EntityType) []string {
	switch t {
	case EntityEmail, EntityPhone, EntityIPAddress, EntityPersonName:
		return []string{"GDPR"}
	case EntitySSN, EntityMedical:
		return []string{"GDPR", "HIPAA"}
	case EntityCreditCard, EntityIBAN, EntityBankAcct:
		return []string{"GDPR", "PCI-DSS"}
	default:
		return []string{"GDPR"}
	}
}

// severityFor ranks an entity class: identifiers whose exposure is
// irreversible or directly monetizable (government IDs, payment data,
// health data, cloud credentials) are critical, everything else high.
func severityFor(t EntityType) findings.Severity {
	switch t {
	case EntitySSN, EntityCreditCard, EntityMedical, EntityIBAN, EntityBankAcct, EntityAWSKey:
		return findings.SeverityCritical
	default:
		return findings.SeverityHigh
	}
}

// Analyzer detects and aggregates PII entities into Findings, one per
// entity type rather than one per occurrence, so a document with fifty
// emails produces a single "email" finding noting the count.
type Analyzer struct {
	backend Backend
}

// New builds an Analyzer. If nlp is non-nil it is preferred; otherwise the
// deterministic regex backend is used. The backend choice is fixed at
// construction and never changes mid-process.
func New(nlp Backend) *Analyzer {
	backend := nlp
	if backend == nil {
		backend = NewRegexBackend()
	}
	return &Analyzer{backend: backend}
}

// Result bundles the PII findings with the domain risk score.
type Result struct {
	Findings  []findings.Finding
	RiskScore float64
	RiskLevel string
}

// Analyze detects PII entities in text and aggregates them by type.
func (a *Analyzer) Analyze(ctx context.Context, text, source string) Result {
	entities, err := a.backend.Detect(ctx, text)
	if err != nil || len(entities) == 0 {
		return Result{RiskLevel: "low"}
	}

	byType := make(map[EntityType][]Entity)
	for _, e := range entities {
		byType[e.Type] = append(byType[e.Type], e)
	}

	var out []findings.Finding
	for typ, group := range byType {
		out = append(out, buildFinding(typ, group, source))
	}

	out = findings.SortBySeverityDomainID(out)
	score := riskScoreWithDiminishingReturns(byType)
	return Result{Findings: out, RiskScore: score, RiskLevel: findings.RiskLevel(score)}
}

func buildFinding(typ EntityType, group []Entity, source string) findings.Finding {
	loc := findings.Location{FilePath: source, Offset: group[0].Start}
	sample := entropy.Mask(group[0].Value)
	if len(group[0].Value) <= 8 {
		sample = "[redacted]"
	}

	frameworks := frameworksFor(typ)
	tags := append([]string{"pii", string(typ)}, frameworks...)

	return findings.Finding{
		ID:          findings.NewID("pii", string(typ), loc, string(typ)),
		Domain:      findings.DomainPIIExposure,
		Type:        string(typ),
		Severity:    severityFor(typ),
		Title:       "Personal data exposed: " + string(typ),
		Description: "Detected " + itoa(len(group)) + " occurrence(s) of " + string(typ) + " in the scanned text.",
		Location:    loc,
		Evidence:    sample,
		Remediation: "Remove or mask this data before sharing; route handling of this field through your data-protection controls.",
		Confidence:  meanConfidence(group),
		Metadata: map[string]interface{}{
			"occurrence_count": len(group),
			"frameworks":       frameworks,
		},
		Tags: tags,
	}
}

// meanConfidence averages the backend's per-entity confidences; entities
// from a backend that reports none fall back to the regex backend's fixed
// confidence.
func meanConfidence(group []Entity) float64 {
	var total float64
	for _, e := range group {
		c := e.Confidence
		if c == 0 {
			c = regexConfidence
		}
		total += c
	}
	return total / float64(len(group))
}

// riskScoreWithDiminishingReturns scores each entity type's contribution as
// its severity weight times the occurrence count, capped at three
// occurrences per type, so a document with one SSN and a document with
// fifty are not absurdly far apart on the same 0-100 scale.
func riskScoreWithDiminishingReturns(byType map[EntityType][]Entity) float64 {
	var total float64
	for typ, group := range byType {
		weight := severityFor(typ).Weight()
		count := float64(len(group))
		if count > 3 {
			count = 3
		}
		total += weight * count
	}
	if total > 100 {
		return 100
	}
	return total
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

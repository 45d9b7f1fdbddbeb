package compliance

import (
	"fmt"
	"strings"

	"github.com/scanforge/engine/pkg/findings"
)

// aiActObligations encodes the EU AI Act's checks as CEL expressions
// rather than Go conditionals: the Act's verdict combines several scan
// metrics (criticality, prompt-injection
// detections, overall score) rather than checking one finding count in
// isolation.
var aiActObligations = []obligationSpec{
	{expr: `critical_count > 0 && prompt_injection_count > 0`, whenStatus: StatusFail, score: 15,
		summary: "Critical findings combined with detected prompt-injection attempts indicate a high-risk AI system under the EU AI Act without adequate safeguards."},
	{expr: `overall_score > 75.0`, whenStatus: StatusFail, score: 20,
		summary: "Overall risk score places the system in the Annex III high-risk band regardless of finding mix."},
	{expr: `prompt_injection_count > 0`, whenStatus: StatusWarn, score: 55,
		summary: "Prompt-injection patterns were detected; Article 15 robustness obligations require documented mitigations."},
	{expr: `overall_score >= 50.0`, whenStatus: StatusWarn, score: 60,
		summary: "Overall risk score indicates elevated risk requiring a conformity assessment review."},
}

// NIST AI RMF is assessed as a direct threshold on the scan's overall
// score rather than a CEL obligation over individual finding counts:
// compliant < 25, partial < 60, non-compliant >= 60.
const (
	nistPartialThreshold   = 25.0
	nistNonCompliantCutoff = 60.0
)

// Matrix assesses scan findings against every supported compliance
// framework. Its AI Act CEL obligation programs are compiled once at
// construction.
type Matrix struct {
	aiAct []obligation
}

// New builds a Matrix, compiling its CEL obligation expressions
// immediately so a bad expression fails fast at construction rather than on
// the first scan.
func New() (*Matrix, error) {
	env, err := newCELEnv()
	if err != nil {
		return nil, fmt.Errorf("compliance: failed to build CEL environment: %w", err)
	}
	aiAct, err := compileObligations(env, aiActObligations)
	if err != nil {
		return nil, err
	}
	return &Matrix{aiAct: aiAct}, nil
}

// Assess returns one Verdict per supported framework, in a fixed order so
// identical findings always produce bit-identical verdict lists.
func (m *Matrix) Assess(fs []findings.Finding, overallScore float64) []Verdict {
	inputs := obligationInputs{
		CriticalCount:        int64(countCritical(fs)),
		PromptInjectionCount: int64(countDomain(fs, findings.DomainPromptInjection)),
		PIICount:             int64(countDomain(fs, findings.DomainPIIExposure)),
		OverallScore:         overallScore,
	}

	return []Verdict{
		assessGDPR(fs),
		m.assessAIAct(inputs),
		assessHIPAA(fs),
		assessPCIDSS(fs),
		assessSOC2(fs),
		assessNIST(overallScore),
		assessOWASPLLM(fs),
	}
}

func (m *Matrix) assessAIAct(inputs obligationInputs) Verdict {
	status, score, summary := evaluateObligations(m.aiAct, inputs)
	var violations []string
	if inputs.CriticalCount > 0 {
		violations = append(violations, "critical-severity finding(s) present")
	}
	if inputs.PromptInjectionCount > 0 {
		violations = append(violations, "prompt-injection pattern(s) detected")
	}
	return Verdict{
		Framework:    FrameworkAIAct,
		Status:       status,
		Score:        clampScore(score),
		Summary:      summary,
		Violations:   violations,
		Requirements: []string{"Article 9 risk management system", "Article 15 accuracy, robustness and cybersecurity"},
	}
}

// assessNIST thresholds the overall score directly.
func assessNIST(overallScore float64) Verdict {
	requirements := []string{"MAP 1.1 context characterization", "MEASURE 2.7 risk tracking", "MANAGE 4.1 risk treatment"}
	switch {
	case overallScore < nistPartialThreshold:
		return Verdict{Framework: FrameworkNISTAIRMF, Status: StatusPass, Score: clampScore(100 - overallScore),
			Summary: "Overall risk score falls within the compliant range for the MAP, MEASURE and MANAGE functions.", Requirements: requirements}
	case overallScore < nistNonCompliantCutoff:
		return Verdict{Framework: FrameworkNISTAIRMF, Status: StatusWarn, Score: clampScore(100 - overallScore),
			Summary: "Overall risk score requires additional MANAGE-function risk treatment documentation.",
			Violations: []string{"overall risk score in the partial-compliance band"}, Requirements: requirements}
	default:
		return Verdict{Framework: FrameworkNISTAIRMF, Status: StatusFail, Score: clampScore(100 - overallScore),
			Summary: "Overall risk score indicates the MAP and MEASURE functions have not adequately characterized AI system risk.",
			Violations: []string{"overall risk score in the non-compliant band"}, Requirements: requirements}
	}
}

func assessGDPR(fs []findings.Finding) Verdict {
	requirements := []string{"Article 5 data minimization", "Article 32 security of processing"}
	piiCount := countDomain(fs, findings.DomainPIIExposure)
	securityCount := countByType(fs, "insecure_tls") + countByTag(fs, "secret")

	var violations []string
	if piiCount > 0 {
		violations = append(violations, fmt.Sprintf("%d personal-data exposure finding(s) (Article 5)", piiCount))
	}
	if securityCount > 0 {
		violations = append(violations, fmt.Sprintf("%d transport-security/credential finding(s) (Article 32)", securityCount))
	}

	total := piiCount + securityCount
	if total == 0 {
		return Verdict{Framework: FrameworkGDPR, Status: StatusPass, Score: 100, Summary: "No personal data exposure or Article 32 security gap detected.", Requirements: requirements}
	}
	return Verdict{Framework: FrameworkGDPR, Status: StatusFail, Score: clampScore(100 - 25*float64(total)),
		Summary:    "Personal-data exposure or missing technical measures indicate inadequate Article 5/32 controls.",
		Violations: violations, Requirements: requirements}
}

func assessHIPAA(fs []findings.Finding) Verdict {
	phi := countByTag(fs, "medical") + countByTag(fs, "ssn") + countByTag(fs, "email") +
		countByTag(fs, "phone") + countByTag(fs, "person_name") + countByType(fs, "sensitive_data_logged")
	requirements := []string{"164.312(a) access control", "164.312(e) transmission security"}
	if phi == 0 {
		return Verdict{Framework: FrameworkHIPAA, Status: StatusPass, Score: 100, Summary: "No protected health information detected.", Requirements: requirements}
	}
	return Verdict{Framework: FrameworkHIPAA, Status: StatusFail, Score: clampScore(100 - 25*float64(phi)),
		Summary:    "Identifiers that qualify as protected health information (PHI) were detected in unprotected form.",
		Violations: []string{fmt.Sprintf("%d PHI-qualifying finding(s)", phi)}, Requirements: requirements}
}

func assessPCIDSS(fs []findings.Finding) Verdict {
	requirements := []string{"Requirement 3 protect stored cardholder data", "Requirement 4 encrypt transmission"}
	card := countByTag(fs, "credit_card") + countByTag(fs, "iban") + countByTag(fs, "bank_account")
	crypto := countByType(fs, "insecure_tls") + countByType(fs, "weak_hash")

	var violations []string
	if card > 0 {
		violations = append(violations, fmt.Sprintf("%d cardholder/financial-account finding(s)", card))
	}
	if crypto > 0 {
		violations = append(violations, fmt.Sprintf("%d weak-cryptography/transport finding(s)", crypto))
	}
	if card+crypto == 0 {
		return Verdict{Framework: FrameworkPCIDSS, Status: StatusPass, Score: 100, Summary: "No cardholder data or cryptographic control gap detected.", Requirements: requirements}
	}
	return Verdict{Framework: FrameworkPCIDSS, Status: StatusFail, Score: clampScore(100 - 25*float64(card+crypto)),
		Summary:    "Cardholder data exposure or weak cryptographic controls violate PCI-DSS requirements 3/4.",
		Violations: violations, Requirements: requirements}
}

func assessSOC2(fs []findings.Finding) Verdict {
	requirements := []string{"CC6.1 logical access controls", "CC7.2 system monitoring"}
	codeCount := countDomain(fs, findings.DomainCodeSecurity)
	if hasCritical(fs, findings.DomainCodeSecurity) {
		return Verdict{Framework: FrameworkSOC2, Status: StatusFail, Score: clampScore(100 - 25*float64(codeCount)),
			Summary:    "Critical code-security findings indicate a Trust Services Criteria (Security) control gap.",
			Violations: []string{"critical code-security finding(s)"}, Requirements: requirements}
	}
	if codeCount > 0 {
		return Verdict{Framework: FrameworkSOC2, Status: StatusWarn, Score: clampScore(100 - 10*float64(codeCount)),
			Summary:    "Code-security findings require remediation tracking for the next audit period.",
			Violations: []string{fmt.Sprintf("%d code-security finding(s)", codeCount)}, Requirements: requirements}
	}
	return Verdict{Framework: FrameworkSOC2, Status: StatusPass, Score: 100, Summary: "No code-security findings affecting Trust Services Criteria.", Requirements: requirements}
}

func assessOWASPLLM(fs []findings.Finding) Verdict {
	promptFindings := countDomain(fs, findings.DomainPromptInjection) + countWithLLMReference(fs)
	requirements := []string{"LLM01 Prompt Injection", "LLM06 Sensitive Information Disclosure"}
	if promptFindings == 0 {
		return Verdict{Framework: FrameworkOWASPLLM, Status: StatusPass, Score: 100, Summary: "No LLM01 (Prompt Injection) indicators detected.", Requirements: requirements}
	}
	// A single confirmed injection indicator already means the guardrails
	// failed; there is no partial band for this framework.
	return Verdict{Framework: FrameworkOWASPLLM, Status: StatusFail, Score: clampScore(100 - 20*float64(promptFindings)),
		Summary:    "Prompt-injection indicators detected (LLM01); guardrails appear insufficient.",
		Violations: []string{fmt.Sprintf("%d prompt-injection finding(s)", promptFindings)}, Requirements: requirements}
}

// countWithLLMReference counts non-prompt-domain findings that carry an
// OWASP LLM Top 10 reference, so an LLM-tagged finding from another
// analyzer still degrades the OWASP LLM verdict.
func countWithLLMReference(fs []findings.Finding) int {
	n := 0
	for _, f := range fs {
		if f.Domain == findings.DomainPromptInjection {
			continue
		}
		for _, ref := range f.References.OWASP {
			if strings.HasPrefix(ref, "LLM") {
				n++
				break
			}
		}
	}
	return n
}

func countByType(fs []findings.Finding, findingType string) int {
	n := 0
	for _, f := range fs {
		if f.Type == findingType {
			n++
		}
	}
	return n
}

func countCritical(fs []findings.Finding) int {
	n := 0
	for _, f := range fs {
		if f.Severity == findings.SeverityCritical {
			n++
		}
	}
	return n
}

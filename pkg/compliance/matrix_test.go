package compliance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scanforge/engine/pkg/findings"
)

func TestAssessReturnsSevenFrameworks(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	verdicts := m.Assess(nil, 0)
	require.Len(t, verdicts, 7)
	for _, v := range verdicts {
		require.Equal(t, StatusPass, v.Status)
	}
}

func TestAssessFlagsAIActOnCriticalAndPromptInjection(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	fs := []findings.Finding{
		{Domain: findings.DomainCodeSecurity, Severity: findings.SeverityCritical},
		{Domain: findings.DomainPromptInjection, Severity: findings.SeverityHigh},
	}
	verdicts := m.Assess(fs, 80)

	var aiAct Verdict
	for _, v := range verdicts {
		if v.Framework == FrameworkAIAct {
			aiAct = v
		}
	}
	require.Equal(t, StatusFail, aiAct.Status)
}

func TestAssessFlagsHIPAAOnSSNTag(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	fs := []findings.Finding{
		{Domain: findings.DomainPIIExposure, Type: "ssn", Tags: []string{"pii", "ssn"}},
	}
	verdicts := m.Assess(fs, 10)

	var hipaa Verdict
	for _, v := range verdicts {
		if v.Framework == FrameworkHIPAA {
			hipaa = v
		}
	}
	require.Equal(t, StatusFail, hipaa.Status)
}

func TestAssessFlagsOWASPLLMOnSingleInjectionFinding(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	fs := []findings.Finding{
		{Domain: findings.DomainPromptInjection, Type: "dan_jailbreak", Severity: findings.SeverityCritical},
	}
	verdicts := m.Assess(fs, 35)

	var owasp Verdict
	for _, v := range verdicts {
		if v.Framework == FrameworkOWASPLLM {
			owasp = v
		}
	}
	require.Equal(t, StatusFail, owasp.Status)
	require.Equal(t, "non-compliant", owasp.Status.ComplianceLabel())
}

func TestAssessFlagsAIActOnHighScoreAlone(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	// Critical findings but no prompt-injection domain at all: the score
	// branch must fail the verdict on its own.
	fs := []findings.Finding{
		{Domain: findings.DomainCodeSecurity, Type: "hardcoded_secret", Severity: findings.SeverityCritical},
		{Domain: findings.DomainPIIExposure, Type: "ssn", Severity: findings.SeverityCritical},
	}
	verdicts := m.Assess(fs, 90)

	var aiAct Verdict
	for _, v := range verdicts {
		if v.Framework == FrameworkAIAct {
			aiAct = v
		}
	}
	require.Equal(t, StatusFail, aiAct.Status)
}

func TestVerdictIconsAreDistinct(t *testing.T) {
	require.NotEqual(t, StatusPass.icon(), StatusWarn.icon())
	require.NotEqual(t, StatusWarn.icon(), StatusFail.icon())
}

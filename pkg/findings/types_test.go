package findings

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIDIsStable(t *testing.T) {
	loc := Location{FilePath: "a.py", Line: 3}
	a := NewID("secrets", "aws_access_key", loc, "AKIA...")
	b := NewID("secrets", "aws_access_key", loc, "AKIA...")
	require.Equal(t, a, b)
	require.Len(t, a, 32)
}

func TestNewIDSeparatesTypeLocationAndEssence(t *testing.T) {
	loc := Location{FilePath: "a.py", Line: 3}
	base := NewID("secrets", "aws_access_key", loc, "tok")
	require.NotEqual(t, base, NewID("secrets", "github_token", loc, "tok"))
	require.NotEqual(t, base, NewID("secrets", "aws_access_key", Location{FilePath: "a.py", Line: 4}, "tok"))
	require.NotEqual(t, base, NewID("secrets", "aws_access_key", loc, "other"))
}

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	fs := []Finding{
		{ID: "x", Title: "first"},
		{ID: "y"},
		{ID: "x", Title: "second"},
	}
	out := Dedup(fs)
	require.Len(t, out, 2)
	require.Equal(t, "first", out[0].Title)
}

func TestDedupIsClosedUnderMerge(t *testing.T) {
	a := []Finding{{ID: "1"}, {ID: "2"}}
	b := []Finding{{ID: "2"}, {ID: "3"}}
	merged := Dedup(append(append([]Finding{}, a...), b...))

	var ids []string
	for _, f := range merged {
		ids = append(ids, f.ID)
	}
	require.ElementsMatch(t, []string{"1", "2", "3"}, ids)

	// Deduplicating an already-deduplicated slice changes nothing.
	require.Equal(t, merged, Dedup(merged))
}

func TestSortBySeverityDomainID(t *testing.T) {
	fs := []Finding{
		{ID: "b", Severity: SeverityLow, Domain: DomainCodeSecurity},
		{ID: "a", Severity: SeverityCritical, Domain: DomainPromptInjection},
		{ID: "c", Severity: SeverityCritical, Domain: DomainCodeSecurity},
		{ID: "a2", Severity: SeverityCritical, Domain: DomainCodeSecurity},
	}
	out := SortBySeverityDomainID(fs)

	require.Equal(t, "a2", out[0].ID) // critical, code-security, lexicographically first
	require.Equal(t, "c", out[1].ID)
	require.Equal(t, "a", out[2].ID) // critical, prompt-injection
	require.Equal(t, "b", out[3].ID) // low sorts last
}

func TestRiskScoreWeightsAndClamp(t *testing.T) {
	require.Zero(t, RiskScore(nil))

	one := RiskScore([]Finding{{Severity: SeverityCritical, Confidence: 1.0}})
	require.InDelta(t, 30.0, one, 0.001)

	var many []Finding
	for i := 0; i < 10; i++ {
		many = append(many, Finding{Severity: SeverityCritical, Confidence: 1.0})
	}
	require.Equal(t, 100.0, RiskScore(many))
}

func TestRiskScoreMonotonicUnderAddedFindings(t *testing.T) {
	base := []Finding{{Severity: SeverityMedium, Confidence: 0.9}}
	more := append(append([]Finding{}, base...), Finding{Severity: SeverityCritical, Confidence: 0.9})
	require.GreaterOrEqual(t, RiskScore(more), RiskScore(base))
}

func TestRiskLevelBuckets(t *testing.T) {
	require.Equal(t, "low", RiskLevel(0))
	require.Equal(t, "low", RiskLevel(24.9))
	require.Equal(t, "medium", RiskLevel(25))
	require.Equal(t, "high", RiskLevel(50))
	require.Equal(t, "critical", RiskLevel(75))
	require.Equal(t, "critical", RiskLevel(100))
}

func TestSeverityRankOrdersAllLevels(t *testing.T) {
	levels := []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
	for i := 1; i < len(levels); i++ {
		require.Less(t, levels[i-1].Rank(), levels[i].Rank())
	}
}

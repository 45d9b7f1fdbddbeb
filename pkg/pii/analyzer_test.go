package pii

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeAggregatesByType(t *testing.T) {
	a := New(nil)
	text := "Contact alice@example.com or bob@example.com for details."
	res := a.Analyze(context.Background(), text, "doc.txt")

	require.Len(t, res.Findings, 1)
	require.Equal(t, "email", res.Findings[0].Type)
	require.Equal(t, 2, res.Findings[0].Metadata["occurrence_count"])
}

func TestAnalyzeTagsSSNWithHIPAA(t *testing.T) {
	a := New(nil)
	res := a.Analyze(context.Background(), "patient SSN is 123-45-6789", "doc.txt")
	require.NotEmpty(t, res.Findings)
	frameworks := res.Findings[0].Metadata["frameworks"].([]string)
	require.Contains(t, frameworks, "HIPAA")
}

func TestAnalyzeEmptyTextIsLowRisk(t *testing.T) {
	a := New(nil)
	res := a.Analyze(context.Background(), "nothing sensitive here", "doc.txt")
	require.Empty(t, res.Findings)
	require.Equal(t, "low", res.RiskLevel)
}

func TestAnalyzeEvidenceIsMasked(t *testing.T) {
	a := New(nil)
	res := a.Analyze(context.Background(), "card: 4111111111111111", "doc.txt")
	require.NotEmpty(t, res.Findings)
	require.NotContains(t, res.Findings[0].Evidence, "1111111111111")
}

type fakeBackend struct{ entities []Entity }

func (f fakeBackend) Detect(_ context.Context, _ string) ([]Entity, error) {
	return f.entities, nil
}

func TestAnalyzePrefersNLPBackendWhenProvided(t *testing.T) {
	backend := fakeBackend{entities: []Entity{{Type: EntityPersonName, Value: "Jane Doe", Start: 0, End: 8}}}
	a := New(backend)
	res := a.Analyze(context.Background(), "irrelevant text", "doc.txt")
	require.Len(t, res.Findings, 1)
	require.Equal(t, "person_name", res.Findings[0].Type)
}

// Package scanresult defines the Scan Result value: the Coordinator's
// top-level output. It is its own leaf
// package (rather than living in pkg/coordinator) so that both the
// Coordinator and the Report Generator can depend on the type without a
// package import cycle between them.
package scanresult

import (
	"time"

	"github.com/scanforge/engine/pkg/audit"
	"github.com/scanforge/engine/pkg/compliance"
	"github.com/scanforge/engine/pkg/findings"
)

// ScanResult is the Coordinator's top-level output.
type ScanResult struct {
	AuditRecord        audit.Record         `json:"audit_record"`
	DomainScores       map[string]float64   `json:"domain_scores"`
	OverallScore       float64              `json:"overall_score"`
	RiskLevel          string               `json:"risk_level"`
	Findings           []findings.Finding   `json:"findings"`
	ComplianceVerdicts []compliance.Verdict `json:"compliance_verdicts"`
	Remediations       []string             `json:"remediations"`
	Duration           time.Duration        `json:"duration_ns"`
}

// CacheStats reports the scan-result cache's current occupancy, exposed
// through Engine.CacheStats.
type CacheStats struct {
	Capacity int   `json:"capacity"`
	Len      int   `json:"len"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
}

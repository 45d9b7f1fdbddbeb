// Service Level Indicators for the scan engine. An SLI here is not a
// free-standing registry entry: each one is derived from a declared
// SLOTarget, so the indicator catalog can never drift out of sync with
// the objectives it feeds. Success-ratio SLIs are measured against the
// scansTotal/scanErrors instruments; latency SLIs against the
// scan-duration histogram.
package observability

import (
	"fmt"
	"sort"
)

// SLI describes one measurable indicator backing an SLO.
type SLI struct {
	SLIID     string `json:"sli_id"`
	Name      string `json:"name"`
	Operation string `json:"operation"`
	Unit      string `json:"unit"`
	Good      string `json:"good"`  // what counts as a good event
	Total     string `json:"total"` // the event population
	SLOID     string `json:"slo_id"`
}

// DerivedSLIs returns the indicators implied by one SLO target: a
// success-ratio SLI always, and a p99-latency SLI when the target sets a
// latency objective.
func DerivedSLIs(target *SLOTarget) []SLI {
	out := []SLI{{
		SLIID:     target.SLOID + "-success",
		Name:      target.Name + " success ratio",
		Operation: target.Operation,
		Unit:      "%",
		Good:      fmt.Sprintf("%s completions without error", target.Operation),
		Total:     fmt.Sprintf("all %s completions", target.Operation),
		SLOID:     target.SLOID,
	}}
	if target.LatencyP99 > 0 {
		out = append(out, SLI{
			SLIID:     target.SLOID + "-latency",
			Name:      target.Name + " p99 latency",
			Operation: target.Operation,
			Unit:      "ms",
			Good:      fmt.Sprintf("%s completions under %s", target.Operation, target.LatencyP99),
			Total:     fmt.Sprintf("all %s completions", target.Operation),
			SLOID:     target.SLOID,
		})
	}
	return out
}

// SLIs lists the indicators derived from every declared target, ordered by
// SLI id so repeated calls are stable.
func (t *SLOTracker) SLIs() []SLI {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []SLI
	for _, target := range t.targets {
		out = append(out, DerivedSLIs(target)...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SLIID < out[j].SLIID })
	return out
}

// SLIsFor lists the indicators for a single operation, or nil when no
// target is declared for it.
func (t *SLOTracker) SLIsFor(operation string) []SLI {
	t.mu.Lock()
	defer t.mu.Unlock()

	target, ok := t.targets[operation]
	if !ok {
		return nil
	}
	return DerivedSLIs(target)
}

// Scan-engine SLO tracking. Targets are declared per engine operation
// (scan, stream_scan, probe_run, dependency_lookup, cve_lookup) and every
// completed operation is recorded as one observation; Status answers "is
// this operation meeting its latency and success objectives right now,
// and how fast is it burning its error budget".
package observability

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// SLOTarget defines the objective for one engine operation.
type SLOTarget struct {
	SLOID       string        `json:"slo_id"`
	Name        string        `json:"name"`
	Operation   string        `json:"operation"`
	LatencyP99  time.Duration `json:"latency_p99"`  // 0 disables the latency objective
	SuccessRate float64       `json:"success_rate"` // target success rate in (0, 1]
	WindowHours int           `json:"window_hours"` // evaluation window
}

// SLOObservation is one completed operation.
type SLOObservation struct {
	Operation string        `json:"operation"`
	Latency   time.Duration `json:"latency"`
	Success   bool          `json:"success"`
	Timestamp time.Time     `json:"timestamp"`
}

// SLOStatus reports an operation's current compliance.
type SLOStatus struct {
	SLOID            string  `json:"slo_id"`
	Operation        string  `json:"operation"`
	CurrentP99       float64 `json:"current_p99_ms"`
	CurrentSuccess   float64 `json:"current_success_rate"`
	InCompliance     bool    `json:"in_compliance"`
	BurnRate         float64 `json:"burn_rate"`         // >1 means burning faster than the window allows
	ErrorBudgetLeft  float64 `json:"error_budget_left"` // percentage remaining
	ObservationCount int     `json:"observation_count"`
}

// SLOTracker holds targets and their windowed observations. Observations
// outside a target's window are pruned on every Record, so the tracker's
// memory is bounded by scan volume within the window rather than process
// lifetime.
type SLOTracker struct {
	mu           sync.Mutex
	targets      map[string]*SLOTarget
	observations map[string][]SLOObservation
	clock        func() time.Time
}

// NewSLOTracker creates an empty tracker.
func NewSLOTracker() *SLOTracker {
	return &SLOTracker{
		targets:      make(map[string]*SLOTarget),
		observations: make(map[string][]SLOObservation),
		clock:        time.Now,
	}
}

// WithClock overrides the clock for tests.
func (t *SLOTracker) WithClock(clock func() time.Time) *SLOTracker {
	t.clock = clock
	return t
}

// SetTarget declares or replaces the objective for an operation.
func (t *SLOTracker) SetTarget(target *SLOTarget) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.targets[target.Operation] = target
}

// Record adds one observation and prunes anything that has aged out of the
// operation's window.
func (t *SLOTracker) Record(obs SLOObservation) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if obs.Timestamp.IsZero() {
		obs.Timestamp = t.clock()
	}
	kept := append(t.observations[obs.Operation], obs)

	if target, ok := t.targets[obs.Operation]; ok && target.WindowHours > 0 {
		cutoff := t.clock().Add(-time.Duration(target.WindowHours) * time.Hour)
		pruned := kept[:0]
		for _, o := range kept {
			if o.Timestamp.After(cutoff) {
				pruned = append(pruned, o)
			}
		}
		kept = pruned
	}
	t.observations[obs.Operation] = kept
}

// Status computes the current SLO status for one operation.
func (t *SLOTracker) Status(operation string) (*SLOStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	target, ok := t.targets[operation]
	if !ok {
		return nil, fmt.Errorf("no SLO target for operation %q", operation)
	}
	return t.statusLocked(target), nil
}

// Statuses computes the status of every declared target, keyed by
// operation.
func (t *SLOTracker) Statuses() map[string]*SLOStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]*SLOStatus, len(t.targets))
	for op, target := range t.targets {
		out[op] = t.statusLocked(target)
	}
	return out
}

func (t *SLOTracker) statusLocked(target *SLOTarget) *SLOStatus {
	windowStart := t.clock().Add(-time.Duration(target.WindowHours) * time.Hour)

	var windowed []SLOObservation
	for _, obs := range t.observations[target.Operation] {
		if obs.Timestamp.After(windowStart) {
			windowed = append(windowed, obs)
		}
	}

	status := &SLOStatus{SLOID: target.SLOID, Operation: target.Operation}
	if len(windowed) == 0 {
		status.InCompliance = true
		status.ErrorBudgetLeft = 100.0
		return status
	}

	successCount := 0
	latencies := make([]float64, len(windowed))
	for i, obs := range windowed {
		if obs.Success {
			successCount++
		}
		latencies[i] = float64(obs.Latency.Milliseconds())
	}
	sort.Float64s(latencies)

	p99Index := int(float64(len(latencies)) * 0.99)
	if p99Index >= len(latencies) {
		p99Index = len(latencies) - 1
	}

	status.ObservationCount = len(windowed)
	status.CurrentP99 = latencies[p99Index]
	status.CurrentSuccess = float64(successCount) / float64(len(windowed))

	latencyOK := target.LatencyP99 <= 0 || status.CurrentP99 <= float64(target.LatencyP99.Milliseconds())
	successOK := status.CurrentSuccess >= target.SuccessRate
	status.InCompliance = latencyOK && successOK

	errorBudget := 1.0 - target.SuccessRate
	errorRate := 1.0 - status.CurrentSuccess
	if errorBudget > 0 {
		status.BurnRate = errorRate / errorBudget
		status.ErrorBudgetLeft = 100.0 * (1.0 - status.BurnRate)
		if status.ErrorBudgetLeft < 0 {
			status.ErrorBudgetLeft = 0
		}
	}
	return status
}

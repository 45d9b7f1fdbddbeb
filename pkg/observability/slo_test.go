package observability

import (
	"testing"
	"time"
)

func TestSLOSetTarget(t *testing.T) {
	tracker := NewSLOTracker()
	tracker.SetTarget(&SLOTarget{
		SLOID:       "slo-1",
		Operation:   "scan",
		LatencyP99:  500 * time.Millisecond,
		SuccessRate: 0.999,
		WindowHours: 24,
	})

	status, err := tracker.Status("scan")
	if err != nil {
		t.Fatal(err)
	}
	if !status.InCompliance {
		t.Fatal("expected compliance with no observations")
	}
}

func TestSLOInCompliance(t *testing.T) {
	tracker := NewSLOTracker()
	tracker.SetTarget(&SLOTarget{
		SLOID:       "slo-1",
		Operation:   "stream_scan",
		LatencyP99:  1000 * time.Millisecond,
		SuccessRate: 0.99,
		WindowHours: 1,
	})

	// Add 100 successful observations under latency target
	for i := 0; i < 100; i++ {
		tracker.Record(SLOObservation{Operation: "stream_scan", Latency: 100 * time.Millisecond, Success: true})
	}

	status, _ := tracker.Status("stream_scan")
	if !status.InCompliance {
		t.Fatal("expected in compliance")
	}
	if status.CurrentSuccess != 1.0 {
		t.Fatalf("expected 100%% success rate, got %.2f", status.CurrentSuccess)
	}
}

func TestSLOOutOfCompliance(t *testing.T) {
	tracker := NewSLOTracker()
	tracker.SetTarget(&SLOTarget{
		SLOID:       "slo-1",
		Operation:   "dependency_lookup",
		LatencyP99:  500 * time.Millisecond,
		SuccessRate: 0.99,
		WindowHours: 1,
	})

	// Add 90 success + 10 failures = 90% (below 99% target)
	for i := 0; i < 90; i++ {
		tracker.Record(SLOObservation{Operation: "dependency_lookup", Latency: 100 * time.Millisecond, Success: true})
	}
	for i := 0; i < 10; i++ {
		tracker.Record(SLOObservation{Operation: "dependency_lookup", Latency: 100 * time.Millisecond, Success: false})
	}

	status, _ := tracker.Status("dependency_lookup")
	if status.InCompliance {
		t.Fatal("expected out of compliance")
	}
}

func TestSLOBurnRate(t *testing.T) {
	tracker := NewSLOTracker()
	tracker.SetTarget(&SLOTarget{
		SLOID:       "slo-1",
		Operation:   "cve_lookup",
		LatencyP99:  1000 * time.Millisecond,
		SuccessRate: 0.99, // 1% error budget
		WindowHours: 1,
	})

	// 5% error rate → burn rate = 5x
	for i := 0; i < 95; i++ {
		tracker.Record(SLOObservation{Operation: "cve_lookup", Latency: 10 * time.Millisecond, Success: true})
	}
	for i := 0; i < 5; i++ {
		tracker.Record(SLOObservation{Operation: "cve_lookup", Latency: 10 * time.Millisecond, Success: false})
	}

	status, _ := tracker.Status("cve_lookup")
	if status.BurnRate < 4.0 {
		t.Fatalf("expected high burn rate, got %.2f", status.BurnRate)
	}
}

func TestSLOPrunesObservationsOutsideWindow(t *testing.T) {
	now := time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)
	tracker := NewSLOTracker().WithClock(func() time.Time { return now })
	tracker.SetTarget(&SLOTarget{
		SLOID:       "slo-1",
		Operation:   "scan",
		SuccessRate: 0.9,
		WindowHours: 1,
	})

	tracker.Record(SLOObservation{Operation: "scan", Success: false, Timestamp: now.Add(-2 * time.Hour)})
	tracker.Record(SLOObservation{Operation: "scan", Success: true, Timestamp: now.Add(-10 * time.Minute)})

	status, err := tracker.Status("scan")
	if err != nil {
		t.Fatal(err)
	}
	if status.ObservationCount != 1 {
		t.Fatalf("expected the stale observation pruned, got %d in window", status.ObservationCount)
	}
	if !status.InCompliance {
		t.Fatal("expected compliance once the old failure aged out")
	}
}

func TestSLOStatusesCoversEveryTarget(t *testing.T) {
	tracker := NewSLOTracker()
	tracker.SetTarget(&SLOTarget{SLOID: "slo-scan", Operation: "scan", SuccessRate: 0.9, WindowHours: 1})
	tracker.SetTarget(&SLOTarget{SLOID: "slo-probe", Operation: "probe_run", SuccessRate: 0.95, WindowHours: 1})

	statuses := tracker.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses["scan"].SLOID != "slo-scan" {
		t.Fatalf("unexpected SLO id %q", statuses["scan"].SLOID)
	}
}

func TestSLONoTarget(t *testing.T) {
	tracker := NewSLOTracker()
	_, err := tracker.Status("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing target")
	}
}

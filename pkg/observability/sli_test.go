package observability

import (
	"testing"
	"time"
)

func TestDerivedSLIsAlwaysIncludeSuccessRatio(t *testing.T) {
	target := &SLOTarget{SLOID: "slo-scan", Name: "Scan", Operation: "scan", SuccessRate: 0.99, WindowHours: 24}
	slis := DerivedSLIs(target)
	if len(slis) != 1 {
		t.Fatalf("expected only the success SLI without a latency objective, got %d", len(slis))
	}
	if slis[0].SLIID != "slo-scan-success" {
		t.Fatalf("unexpected SLI id %q", slis[0].SLIID)
	}
	if slis[0].Operation != "scan" || slis[0].SLOID != "slo-scan" {
		t.Fatal("derived SLI must stay linked to its target")
	}
}

func TestDerivedSLIsAddLatencyWhenTargetHasOne(t *testing.T) {
	target := &SLOTarget{SLOID: "slo-scan", Name: "Scan", Operation: "scan", LatencyP99: 2 * time.Second, SuccessRate: 0.99, WindowHours: 24}
	slis := DerivedSLIs(target)
	if len(slis) != 2 {
		t.Fatalf("expected success + latency SLIs, got %d", len(slis))
	}
	if slis[1].SLIID != "slo-scan-latency" || slis[1].Unit != "ms" {
		t.Fatalf("unexpected latency SLI %+v", slis[1])
	}
}

func TestTrackerSLIsListEveryTargetStably(t *testing.T) {
	tracker := NewSLOTracker()
	tracker.SetTarget(&SLOTarget{SLOID: "slo-b", Name: "Probe", Operation: "probe_run", SuccessRate: 0.95})
	tracker.SetTarget(&SLOTarget{SLOID: "slo-a", Name: "Scan", Operation: "scan", LatencyP99: time.Second, SuccessRate: 0.99})

	slis := tracker.SLIs()
	if len(slis) != 3 {
		t.Fatalf("expected 3 derived SLIs, got %d", len(slis))
	}
	// Ordered by id: slo-a-latency, slo-a-success, slo-b-success.
	if slis[0].SLIID != "slo-a-latency" || slis[2].SLIID != "slo-b-success" {
		t.Fatalf("unexpected order: %q ... %q", slis[0].SLIID, slis[2].SLIID)
	}
}

func TestTrackerSLIsForUnknownOperationIsNil(t *testing.T) {
	tracker := NewSLOTracker()
	if got := tracker.SLIsFor("scan"); got != nil {
		t.Fatalf("expected nil for undeclared operation, got %v", got)
	}
}

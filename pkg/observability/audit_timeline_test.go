package observability

import (
	"testing"
	"time"
)

func TestTimelineRecord(t *testing.T) {
	tl := NewAuditTimeline()
	err := tl.Record(TimelineEntry{
		EntryType: EntryTypeScan,
		RunID:     "scan-1",
		Summary:   "scan completed: mode=code risk=low findings=0",
	})
	if err != nil {
		t.Fatal(err)
	}
	if tl.Count() != 1 {
		t.Fatalf("expected 1, got %d", tl.Count())
	}
}

func TestTimelineQueryByRun(t *testing.T) {
	tl := NewAuditTimeline()
	tl.Record(TimelineEntry{EntryType: EntryTypeScan, RunID: "scan-1", Summary: "a"})
	tl.Record(TimelineEntry{EntryType: EntryTypeSeal, RunID: "scan-1", Summary: "b"})
	tl.Record(TimelineEntry{EntryType: EntryTypeScan, RunID: "scan-2", Summary: "c"})

	results := tl.Query(TimelineQuery{RunID: "scan-1"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results for scan-1, got %d", len(results))
	}
}

func TestTimelineQueryByType(t *testing.T) {
	tl := NewAuditTimeline()
	tl.Record(TimelineEntry{EntryType: EntryTypeScan, RunID: "scan-1", Summary: "a"})
	tl.Record(TimelineEntry{EntryType: EntryTypeCompliance, RunID: "scan-1", Summary: "b"})
	tl.Record(TimelineEntry{EntryType: EntryTypeFeed, RunID: "scan-1", Summary: "c"})

	entryType := EntryTypeCompliance
	results := tl.Query(TimelineQuery{EntryType: &entryType})
	if len(results) != 1 {
		t.Fatalf("expected 1 COMPLIANCE, got %d", len(results))
	}
}

func TestTimelineQueryByRunAndType(t *testing.T) {
	tl := NewAuditTimeline()
	tl.Record(TimelineEntry{EntryType: EntryTypeFeed, RunID: "scan-1", Summary: "a"})
	tl.Record(TimelineEntry{EntryType: EntryTypeFeed, RunID: "scan-2", Summary: "b"})

	entryType := EntryTypeFeed
	results := tl.Query(TimelineQuery{RunID: "scan-2", EntryType: &entryType})
	if len(results) != 1 || results[0].Summary != "b" {
		t.Fatalf("expected only scan-2's feed entry, got %v", results)
	}
}

func TestTimelineQueryByTimeRange(t *testing.T) {
	tl := NewAuditTimeline()
	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 1, 1, 14, 0, 0, 0, time.UTC)

	tl.Record(TimelineEntry{EntryType: EntryTypeScan, Timestamp: t1, Summary: "early"})
	tl.Record(TimelineEntry{EntryType: EntryTypeScan, Timestamp: t2, Summary: "mid"})
	tl.Record(TimelineEntry{EntryType: EntryTypeScan, Timestamp: t3, Summary: "late"})

	after := time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC)
	before := time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC)
	results := tl.Query(TimelineQuery{After: &after, Before: &before})
	if len(results) != 1 {
		t.Fatalf("expected 1 entry in range, got %d", len(results))
	}
	if results[0].Summary != "mid" {
		t.Fatalf("expected 'mid', got %s", results[0].Summary)
	}
}

func TestTimelineQueryLimit(t *testing.T) {
	tl := NewAuditTimeline()
	for i := 0; i < 10; i++ {
		tl.Record(TimelineEntry{EntryType: EntryTypeScan, Summary: "x"})
	}

	results := tl.Query(TimelineQuery{Limit: 3})
	if len(results) != 3 {
		t.Fatalf("expected 3, got %d", len(results))
	}
}

func TestTimelineContentHashVerifies(t *testing.T) {
	tl := NewAuditTimeline()
	tl.Record(TimelineEntry{
		EntryType: EntryTypeSeal,
		Summary:   "audit record sealed",
		Details:   map[string]interface{}{"hash": "abc"},
	})

	results := tl.Query(TimelineQuery{})
	if results[0].ContentHash == "" {
		t.Fatal("expected content hash")
	}
	if !tl.VerifyEntry(results[0]) {
		t.Fatal("unaltered entry must verify")
	}

	tampered := results[0]
	tampered.Details = map[string]interface{}{"hash": "xyz"}
	if tl.VerifyEntry(tampered) {
		t.Fatal("tampered details must not verify")
	}
}

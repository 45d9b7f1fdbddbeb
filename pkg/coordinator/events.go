package coordinator

import (
	"time"

	"github.com/scanforge/engine/pkg/findings"
)

// EventType discriminates a ScanEvent's variant.
type EventType string

const (
	EventProgress EventType = "progress"
	EventFinding  EventType = "finding"
	EventError    EventType = "error"
	EventComplete EventType = "complete"
)

// ScanEvent is one item of the lazy, finite, non-restartable sequence
// StreamScan produces. Exactly one of the variant-specific fields is
// populated depending on EventType; the JSON encoding is the
// newline-delimited event-stream wire format.
type ScanEvent struct {
	Timestamp   time.Time         `json:"timestamp"`
	EventType   EventType         `json:"event_type"`
	ProgressPct int               `json:"progress_pct,omitempty"`
	Message     string            `json:"message,omitempty"`
	Finding     *findings.Finding `json:"finding,omitempty"`
}

func progressEvent(pct int, msg string) ScanEvent {
	return ScanEvent{Timestamp: time.Now().UTC(), EventType: EventProgress, ProgressPct: pct, Message: msg}
}

func findingEvent(f findings.Finding) ScanEvent {
	ff := f
	return ScanEvent{Timestamp: time.Now().UTC(), EventType: EventFinding, Finding: &ff}
}

func errorEvent(msg string) ScanEvent {
	return ScanEvent{Timestamp: time.Now().UTC(), EventType: EventError, Message: msg}
}

func completeEvent(msg string) ScanEvent {
	return ScanEvent{Timestamp: time.Now().UTC(), EventType: EventComplete, ProgressPct: 100, Message: msg}
}

// Scan timeline: an in-process, queryable record of what the engine did,
// entry by entry — scans completing, compliance verdicts, feed lookups,
// audit seals. It complements the hash-chained pkg/audit records: the
// chain proves integrity of the sealed outcomes, the timeline answers
// "what happened during scan X" with per-phase entries an operator can
// filter by scan, phase, and time range. Each entry carries a content
// hash over its details so a timeline export can be spot-checked against
// tampering.
package observability

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// TimelineEntryType names the scan-lifecycle phase an entry records.
type TimelineEntryType string

const (
	// EntryTypeScan marks a scan's completion summary.
	EntryTypeScan TimelineEntryType = "SCAN"
	// EntryTypeFinding marks a notable finding or finding batch.
	EntryTypeFinding TimelineEntryType = "FINDING"
	// EntryTypeCompliance marks a compliance verdict set.
	EntryTypeCompliance TimelineEntryType = "COMPLIANCE"
	// EntryTypeFeed marks an external CVE/OSV lookup.
	EntryTypeFeed TimelineEntryType = "FEED"
	// EntryTypeSeal marks an audit-chain seal.
	EntryTypeSeal TimelineEntryType = "SEAL"
)

// TimelineEntry is a single recorded event, keyed to the scan (RunID) it
// belongs to.
type TimelineEntry struct {
	EntryID     string                 `json:"entry_id"`
	EntryType   TimelineEntryType      `json:"entry_type"`
	RunID       string                 `json:"run_id"`
	Timestamp   time.Time              `json:"timestamp"`
	Summary     string                 `json:"summary"`
	ContentHash string                 `json:"content_hash"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// TimelineQuery filters timeline entries. Zero-valued fields match
// everything.
type TimelineQuery struct {
	RunID     string             `json:"run_id,omitempty"`
	EntryType *TimelineEntryType `json:"entry_type,omitempty"`
	After     *time.Time         `json:"after,omitempty"`
	Before    *time.Time         `json:"before,omitempty"`
	Limit     int                `json:"limit,omitempty"`
}

// AuditTimeline collects and queries scan-lifecycle entries, indexed by
// run and by entry type.
type AuditTimeline struct {
	mu      sync.RWMutex
	entries []TimelineEntry
	byRun   map[string][]int
	byType  map[TimelineEntryType][]int
	seq     int64
	clock   func() time.Time
}

// NewAuditTimeline creates an empty timeline.
func NewAuditTimeline() *AuditTimeline {
	return &AuditTimeline{
		byRun:  make(map[string][]int),
		byType: make(map[TimelineEntryType][]int),
		clock:  time.Now,
	}
}

// WithClock overrides the clock for tests.
func (t *AuditTimeline) WithClock(clock func() time.Time) *AuditTimeline {
	t.clock = clock
	return t
}

// Record stamps, content-hashes, and stores one entry.
func (t *AuditTimeline) Record(entry TimelineEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	if entry.EntryID == "" {
		entry.EntryID = fmt.Sprintf("tl-%d", t.seq)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = t.clock()
	}

	hash, err := contentHash(entry.Details)
	if err != nil {
		return err
	}
	entry.ContentHash = hash

	idx := len(t.entries)
	t.entries = append(t.entries, entry)
	if entry.RunID != "" {
		t.byRun[entry.RunID] = append(t.byRun[entry.RunID], idx)
	}
	t.byType[entry.EntryType] = append(t.byType[entry.EntryType], idx)
	return nil
}

// Query retrieves entries matching q, ordered by timestamp ascending. The
// narrowest available index (run, then type) seeds the candidate set
// before the remaining filters apply.
func (t *AuditTimeline) Query(q TimelineQuery) []TimelineEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var candidates []int
	switch {
	case q.RunID != "":
		candidates = t.byRun[q.RunID]
	case q.EntryType != nil:
		candidates = t.byType[*q.EntryType]
	default:
		candidates = make([]int, len(t.entries))
		for i := range t.entries {
			candidates[i] = i
		}
	}

	var results []TimelineEntry
	for _, i := range candidates {
		e := t.entries[i]
		if q.RunID != "" && e.RunID != q.RunID {
			continue
		}
		if q.EntryType != nil && e.EntryType != *q.EntryType {
			continue
		}
		if q.After != nil && e.Timestamp.Before(*q.After) {
			continue
		}
		if q.Before != nil && e.Timestamp.After(*q.Before) {
			continue
		}
		results = append(results, e)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Timestamp.Before(results[j].Timestamp)
	})
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results
}

// Count returns the total number of recorded entries.
func (t *AuditTimeline) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// VerifyEntry recomputes an entry's content hash and reports whether it
// still matches, so an exported timeline can be spot-checked.
func (t *AuditTimeline) VerifyEntry(entry TimelineEntry) bool {
	hash, err := contentHash(entry.Details)
	if err != nil {
		return false
	}
	return hash == entry.ContentHash
}

func contentHash(details map[string]interface{}) (string, error) {
	data, err := json.Marshal(details)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:]), nil
}

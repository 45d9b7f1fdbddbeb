// Package audit implements the tamper-evident Audit Record chain: every
// completed scan is sealed into a record that commits to its own content
// and to the hash of the record before it, so altering or removing any past
// record breaks the chain from that point forward. The chain hash is
// computed over RFC 8785 canonical JSON via pkg/canonicalize so the same
// record always hashes the same way regardless of map key ordering, and
// the genesis value is sixty-four zero hex characters.
package audit

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scanforge/engine/pkg/canonicalize"
)

// Genesis is the previous-hash value of the first record in a chain: sixty
// four zero hex characters, the same width as a SHA-256 digest, so a chain
// of length one looks structurally identical to any later link.
var Genesis = strings.Repeat("0", 64)

// Record is one sealed entry in the audit chain: a snapshot of a completed
// scan's identity and outcome.
type Record struct {
	RecordID       string         `json:"record_id"`
	ScanID         string         `json:"scan_id"`
	InputFingerprint string       `json:"input_fingerprint"`
	Timestamp      time.Time      `json:"timestamp"`
	ScanMode       string         `json:"scan_mode"`
	EngineVersion  string         `json:"engine_version"`
	Summary        RecordSummary  `json:"summary"`
	PreviousHash   string         `json:"previous_hash"`
	Hash           string         `json:"hash"`
}

// RecordSummary is the sealed record's counters: enough to audit a scan's
// outcome without re-running it.
type RecordSummary struct {
	TotalFindings   int     `json:"total_findings"`
	CriticalCount   int     `json:"critical_count"`
	HighCount       int     `json:"high_count"`
	OverallScore    float64 `json:"overall_score"`
	RiskLevel       string  `json:"risk_level"`
}

// unsealed is the hashable projection of a Record: every field except Hash
// itself, since a record cannot commit to its own hash.
type unsealed struct {
	RecordID         string        `json:"record_id"`
	ScanID           string        `json:"scan_id"`
	InputFingerprint string        `json:"input_fingerprint"`
	Timestamp        time.Time     `json:"timestamp"`
	ScanMode         string        `json:"scan_mode"`
	EngineVersion    string        `json:"engine_version"`
	Summary          RecordSummary `json:"summary"`
	PreviousHash     string        `json:"previous_hash"`
}

// Sink receives every sealed Record as it is appended, for an optional
// durable or streaming side effect (Postgres, Redis, a log shipper). A Sink
// error never blocks or unwinds the chain — sealing is an in-memory,
// always-succeeds operation, and sinks are best-effort.
type Sink interface {
	Write(record Record) error
}

// Chain is an append-only, hash-linked sequence of audit Records.
type Chain struct {
	mu      sync.RWMutex
	records []Record
	head    string
	sinks   []Sink
}

// NewChain starts a new, empty Chain at the genesis hash.
func NewChain() *Chain {
	return &Chain{head: Genesis}
}

// AddSink registers a Sink that receives every record sealed from this
// point forward.
func (c *Chain) AddSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// SealAndAppend computes a Record's chain-linking hash, appends it to the
// chain, and fans it out to every registered Sink. It is the chain's only
// write operation and is atomic with respect to the head.
func (c *Chain) SealAndAppend(scanID, inputFingerprint, scanMode, engineVersion string, summary RecordSummary) (Record, error) {
	c.mu.Lock()
	record := Record{
		RecordID:         uuid.New().String(),
		ScanID:           scanID,
		InputFingerprint: inputFingerprint,
		Timestamp:        time.Now().UTC(),
		ScanMode:         scanMode,
		EngineVersion:    engineVersion,
		Summary:          summary,
		PreviousHash:     c.head,
	}

	hash, err := hashRecord(record)
	if err != nil {
		c.mu.Unlock()
		return Record{}, fmt.Errorf("audit: failed to seal record: %w", err)
	}
	record.Hash = hash
	c.head = hash
	c.records = append(c.records, record)
	sinks := append([]Sink(nil), c.sinks...)
	c.mu.Unlock()

	for _, s := range sinks {
		_ = s.Write(record)
	}
	return record, nil
}

func hashRecord(r Record) (string, error) {
	return canonicalize.Hash(unsealed{
		RecordID:         r.RecordID,
		ScanID:           r.ScanID,
		InputFingerprint: r.InputFingerprint,
		Timestamp:        r.Timestamp,
		ScanMode:         r.ScanMode,
		EngineVersion:    r.EngineVersion,
		Summary:          r.Summary,
		PreviousHash:     r.PreviousHash,
	})
}

// Head returns the current chain head hash.
func (c *Chain) Head() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.head
}

// Records returns every sealed record in append order.
func (c *Chain) Records() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Verify recomputes every record's hash and confirms the chain links
// correctly from Genesis to the current head, returning the index of the
// first broken link if the chain has been tampered with.
func Verify(records []Record) error {
	expectedPrev := Genesis
	for i, r := range records {
		if r.PreviousHash != expectedPrev {
			return fmt.Errorf("audit: chain broken at record %d: expected previous hash %s, got %s", i, expectedPrev, r.PreviousHash)
		}
		computed, err := hashRecord(r)
		if err != nil {
			return fmt.Errorf("audit: record %d failed to rehash: %w", i, err)
		}
		if computed != r.Hash {
			return fmt.Errorf("audit: chain broken at record %d: hash mismatch", i)
		}
		expectedPrev = r.Hash
	}
	return nil
}

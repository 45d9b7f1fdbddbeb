package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresSink persists every sealed Record to a Postgres table using an
// upsert. Records are immutable once sealed, so this sink only ever
// inserts; a duplicate record id is treated as already durable and ignored
// rather than erroring.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink wraps an existing *sql.DB connection. The caller owns the
// DB's lifecycle (including running the `audit_records` table migration);
// this sink only ever executes inserts against it.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// Write inserts a Record, upserting on conflict to stay idempotent if the
// same record is written twice (e.g. after a sink retry).
func (s *PostgresSink) Write(record Record) error {
	summary, err := json.Marshal(record.Summary)
	if err != nil {
		return fmt.Errorf("audit: failed to marshal summary: %w", err)
	}

	query := `
		INSERT INTO audit_records (record_id, scan_id, input_fingerprint, ts, scan_mode, engine_version, summary, previous_hash, hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (record_id) DO NOTHING
	`
	_, err = s.db.ExecContext(context.Background(), query,
		record.RecordID, record.ScanID, record.InputFingerprint, record.Timestamp,
		record.ScanMode, record.EngineVersion, summary, record.PreviousHash, record.Hash)
	if err != nil {
		return fmt.Errorf("audit: failed to persist record %s: %w", record.RecordID, err)
	}
	return nil
}

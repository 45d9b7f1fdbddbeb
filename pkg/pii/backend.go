// Package pii implements the PII Exposure Analyzer: a dual-backend entity
// detector (an optional NLP backend, preferred when configured, falling
// back to a deterministic regex backend) covering the full personal-data
// entity catalog, with entity-type aggregation, compliance-framework
// tagging, and diminishing-returns risk scoring.
package pii

import "context"

// EntityType classifies a detected piece of personal data.
type EntityType string

const (
	EntityEmail      EntityType = "email"
	EntityPhone      EntityType = "phone"
	EntitySSN        EntityType = "ssn"
	EntityCreditCard EntityType = "credit_card"
	EntityIBAN       EntityType = "iban"
	EntityBankAcct   EntityType = "bank_account"
	EntityIPAddress  EntityType = "ip_address"
	EntityMedical    EntityType = "medical"
	EntityPersonName EntityType = "person_name"
	EntityAWSKey     EntityType = "aws_access_key"
)

// Entity is a single detected occurrence of personal data within a text
// span.
type Entity struct {
	Type       EntityType
	Value      string
	Start      int
	End        int
	Confidence float64 // 0 means the backend reports no per-entity confidence
}

// Backend is implemented by anything capable of locating PII entities in
// text. The NLP backend (when wired to an external model) and the regex
// backend satisfy the same contract so the Analyzer can prefer one over the
// other without knowing which is in use.
type Backend interface {
	Detect(ctx context.Context, text string) ([]Entity, error)
}

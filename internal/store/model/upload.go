package model

import (
	"time"
)

// ProcessedUpload is one row of the idempotency ledger: a source fingerprint
// that has been fully processed, with references to the artifacts it
// produced. The fingerprint is the primary key so a ledger hit is an exact
// duplicate-delivery match.
type ProcessedUpload struct {
	Fingerprint   string `gorm:"primaryKey"`
	Bucket        string
	SourceKey     string
	ProcessedKey  string
	RejectedKey   string
	ValidCount    int
	InvalidCount  int
	CorrelationID string
	CreatedAt     time.Time
}

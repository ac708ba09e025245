package events

import "time"

// ProcessingCompleteEvent is the entire boundary the downstream analysis and
// notification collaborators consume. Nothing flows back from them.
type ProcessingCompleteEvent struct {
	CorrelationID       string    `json:"correlation_id"`
	Bucket              string    `json:"bucket_name"`
	SourceFile          string    `json:"source_file"`
	ProcessedFile       string    `json:"processed_file,omitempty"`
	RejectedFile        string    `json:"rejected_file,omitempty"`
	ValidRecords        int       `json:"valid_records"`
	InvalidRecords      int       `json:"invalid_records"`
	DataQualityScore    float64   `json:"data_quality_score"`
	ProcessingTimestamp time.Time `json:"processing_timestamp"`
}

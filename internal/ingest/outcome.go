package ingest

import "math"

// Outcome statuses of one pipeline run.
const (
	StatusCompleted        = "completed"
	StatusDuplicateSkipped = "duplicate_skipped"
	StatusIgnoredLocation  = "ignored_location"
)

// SourceRef identifies one source upload: bucket-scoped path plus the
// content fingerprint of its bytes.
type SourceRef struct {
	Bucket      string
	Key         string
	Fingerprint string
}

// Outcome is computed once per successful run and handed to the completion
// publisher. Artifact keys are empty when the matching record set was empty.
type Outcome struct {
	Status           string
	ValidCount       int
	InvalidCount     int
	ProcessedKey     string
	RejectedKey      string
	DataQualityScore float64
	CorrelationID    string
}

// QualityScore returns round(100 * valid / (valid + invalid), 2), defined as
// 0 when both counts are 0.
func QualityScore(valid, invalid int) float64 {
	total := valid + invalid
	if total == 0 {
		return 0
	}
	return math.Round(100*float64(valid)/float64(total)*100) / 100
}

package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/salestream/ingest/internal/ingest"
	"github.com/salestream/ingest/pkg/requestid"
)

// NotificationForm is the inbound trigger: one newly arrived object with its
// content fingerprint.
type NotificationForm struct {
	Bucket string
	Key    string
	ETag   string
}

// ProcessingResult is the invocation's response contract: a status plus a
// summary of counts and artifact references.
type ProcessingResult struct {
	Status           string  `json:"status"`
	Message          string  `json:"message"`
	CorrelationID    string  `json:"correlation_id"`
	SourceFile       string  `json:"source_file,omitempty"`
	ValidRecords     int     `json:"valid_records"`
	InvalidRecords   int     `json:"invalid_records"`
	ProcessedFile    string  `json:"processed_file,omitempty"`
	RejectedFile     string  `json:"rejected_file,omitempty"`
	DataQualityScore float64 `json:"data_quality_score"`
}

type IngestService struct {
	pipeline *ingest.Pipeline
	log      *zap.SugaredLogger
}

func NewIngestService(pipeline *ingest.Pipeline) *IngestService {
	return &IngestService{
		pipeline: pipeline,
		log:      zap.S().Named("ingest_service"),
	}
}

// HandleNotification runs the pipeline for one notified upload. A malformed
// notification is fatal without retry; duplicate and out-of-location
// notifications report success with a no-op summary.
func (s *IngestService) HandleNotification(ctx context.Context, form NotificationForm) (*ProcessingResult, error) {
	if strings.TrimSpace(form.Bucket) == "" {
		return nil, NewErrMalformedNotification("missing bucket")
	}
	if strings.TrimSpace(form.Key) == "" {
		return nil, NewErrMalformedNotification("missing object key")
	}

	src := ingest.SourceRef{
		Bucket:      form.Bucket,
		Key:         form.Key,
		Fingerprint: strings.Trim(form.ETag, `"`),
	}

	outcome, err := s.pipeline.Process(ctx, src)
	if err != nil {
		s.log.Errorw("pipeline run failed",
			"correlation_id", requestid.FromContext(ctx),
			"object_key", form.Key,
			"error", err)
		return nil, NewErrProcessingFailed(form.Key, err)
	}

	result := &ProcessingResult{
		Status:           outcome.Status,
		CorrelationID:    outcome.CorrelationID,
		SourceFile:       form.Key,
		ValidRecords:     outcome.ValidCount,
		InvalidRecords:   outcome.InvalidCount,
		ProcessedFile:    outcome.ProcessedKey,
		RejectedFile:     outcome.RejectedKey,
		DataQualityScore: outcome.DataQualityScore,
	}

	switch outcome.Status {
	case ingest.StatusIgnoredLocation:
		result.Message = "File not in input folder, skipping"
	case ingest.StatusDuplicateSkipped:
		result.Message = "File already processed, skipping duplicate"
	default:
		result.Message = "File processed successfully"
	}

	return result, nil
}

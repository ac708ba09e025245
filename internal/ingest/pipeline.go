package ingest

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/salestream/ingest/internal/events"
	"github.com/salestream/ingest/internal/store"
	"github.com/salestream/ingest/internal/store/model"
	"github.com/salestream/ingest/pkg/metrics"
	"github.com/salestream/ingest/pkg/requestid"
	"github.com/salestream/ingest/pkg/retry"
)

// CompletionPublisher emits the one outward event describing a batch
// outcome. Implementations are best-effort; the pipeline never reverts a
// durably written run because a publish failed.
type CompletionPublisher interface {
	PublishProcessingComplete(ctx context.Context, ev events.ProcessingCompleteEvent) error
}

type PipelineOption func(p *Pipeline)

// Pipeline processes one notified upload per invocation:
// location gate, dedup gate, download+validate, partition, dual-sink upload,
// completion publish. Invocations share no state; all coordination happens
// through artifact metadata and the optional ledger.
type Pipeline struct {
	store           store.ObjectStore
	guard           *IdempotencyGuard
	publisher       CompletionPublisher
	ledger          store.Ledger
	inboundPrefix   string
	processedPrefix string
	rejectedPrefix  string
	maxAttempts     int
	now             func() time.Time
	sleep           func(ctx context.Context, d time.Duration) error
	log             *zap.SugaredLogger
}

func NewPipeline(objectStore store.ObjectStore, guard *IdempotencyGuard, publisher CompletionPublisher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		store:           objectStore,
		guard:           guard,
		publisher:       publisher,
		inboundPrefix:   "input/",
		processedPrefix: "processed/",
		rejectedPrefix:  "rejected/",
		maxAttempts:     retry.DefaultMaxAttempts,
		now:             time.Now,
		log:             zap.S().Named("pipeline"),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func WithPrefixes(inbound, processed, rejected string) PipelineOption {
	return func(p *Pipeline) {
		p.inboundPrefix = inbound
		p.processedPrefix = processed
		p.rejectedPrefix = rejected
	}
}

func WithMaxAttempts(n int) PipelineOption {
	return func(p *Pipeline) {
		p.maxAttempts = n
	}
}

func WithPipelineLedger(ledger store.Ledger) PipelineOption {
	return func(p *Pipeline) {
		p.ledger = ledger
	}
}

// withClock fixes the pipeline clock. Tests use it for stable artifact names.
func withClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

// withSleep replaces the retry backoff sleep. Tests use it to avoid real
// delays.
func withSleep(fn func(ctx context.Context, d time.Duration) error) PipelineOption {
	return func(p *Pipeline) {
		p.sleep = fn
	}
}

func (p *Pipeline) newExecutor(name string) *retry.Executor {
	opts := []retry.Option{
		retry.WithName(name),
		retry.WithMaxAttempts(p.maxAttempts),
		retry.WithRetryable(store.IsRetryable),
	}
	if p.sleep != nil {
		opts = append(opts, retry.WithSleep(p.sleep))
	}
	return retry.NewExecutor(opts...)
}

// Process runs the pipeline for one source upload. The returned outcome is
// non-nil exactly when the run did not error; duplicate and out-of-location
// notifications are terminal successes with no-op outcomes.
func (p *Pipeline) Process(ctx context.Context, src SourceRef) (*Outcome, error) {
	correlationID := requestid.FromContextOrNew(ctx)
	log := p.log.With("correlation_id", correlationID, "object_key", src.Key)

	if !strings.HasPrefix(src.Key, p.inboundPrefix) {
		log.Warnw("object not under inbound prefix, skipping", "inbound_prefix", p.inboundPrefix)
		metrics.IncreasePipelineRunsMetric(metrics.RunOutcomeIgnored)
		return &Outcome{Status: StatusIgnoredLocation, CorrelationID: correlationID}, nil
	}

	if p.guard.AlreadyProcessed(ctx, src) {
		log.Infow("upload already processed, skipping duplicate", "fingerprint", src.Fingerprint)
		metrics.IncreasePipelineRunsMetric(metrics.RunOutcomeDuplicate)
		return &Outcome{Status: StatusDuplicateSkipped, CorrelationID: correlationID}, nil
	}

	log.Infow("processing upload", "bucket", src.Bucket, "fingerprint", src.Fingerprint)

	header, valid, invalid, err := p.downloadAndValidate(ctx, src, correlationID)
	if err != nil {
		metrics.IncreasePipelineRunsMetric(metrics.RunOutcomeFailed)
		return nil, newPhaseError(PhaseDownload, src.Key, err)
	}

	metrics.AddRecordsMetric("processed", len(valid))
	metrics.AddRecordsMetric("rejected", len(invalid))

	processedKey, rejectedKey, err := p.uploadResults(ctx, src, header, valid, invalid, correlationID)
	if err != nil {
		metrics.IncreasePipelineRunsMetric(metrics.RunOutcomeFailed)
		return nil, newPhaseError(PhaseUpload, src.Key, err)
	}

	outcome := &Outcome{
		Status:           StatusCompleted,
		ValidCount:       len(valid),
		InvalidCount:     len(invalid),
		ProcessedKey:     processedKey,
		RejectedKey:      rejectedKey,
		DataQualityScore: QualityScore(len(valid), len(invalid)),
		CorrelationID:    correlationID,
	}

	p.recordInLedger(ctx, src, outcome)
	p.publishCompletion(ctx, src, outcome)

	log.Infow("processing complete",
		"valid_records", outcome.ValidCount,
		"invalid_records", outcome.InvalidCount,
		"data_quality_score", outcome.DataQualityScore,
		"processed_file", outcome.ProcessedKey,
		"rejected_file", outcome.RejectedKey)
	metrics.IncreasePipelineRunsMetric(metrics.RunOutcomeCompleted)

	return outcome, nil
}

// downloadAndValidate reads the whole source, parses it row by row and
// buckets every row. The phase retries only itself.
func (p *Pipeline) downloadAndValidate(ctx context.Context, src SourceRef, correlationID string) ([]string, []ValidRecord, []InvalidRecord, error) {
	executor := p.newExecutor("download")

	type parsed struct {
		header  []string
		valid   []ValidRecord
		invalid []InvalidRecord
	}

	attempts := 0
	result, err := retry.DoValue(ctx, executor, func(ctx context.Context) (parsed, error) {
		attempts++
		if attempts > 1 {
			metrics.IncreaseRetryAttemptsMetric(PhaseDownload)
		}

		body, err := p.store.GetObject(ctx, src.Key)
		if err != nil {
			return parsed{}, err
		}

		header, records, err := ParseSource(bytes.NewReader(body))
		if err != nil {
			return parsed{}, err
		}

		out := parsed{header: header}
		now := p.now().UTC()
		for i, rec := range records {
			// data rows start at row 2, the header is row 1
			rowNumber := i + 2
			verdict := Validate(rec, rowNumber)
			if verdict.IsValid {
				out.valid = append(out.valid, ValidRecord{
					Record:        rec,
					ProcessedAt:   now,
					CorrelationID: correlationID,
					SourceFile:    src.Key,
				})
			} else {
				out.invalid = append(out.invalid, InvalidRecord{
					Record:           rec,
					RejectionReasons: strings.Join(verdict.Errors, ", "),
					RejectedAt:       now,
					CorrelationID:    correlationID,
					RowNumber:        rowNumber,
					SourceFile:       src.Key,
				})
			}
		}

		p.log.Infow("source parsed",
			"correlation_id", correlationID,
			"total_rows", len(records),
			"valid_rows", len(out.valid),
			"invalid_rows", len(out.invalid))
		return out, nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return result.header, result.valid, result.invalid, nil
}

// uploadResults writes one complete artifact per non-empty bucket. Each call
// writes a whole artifact or nothing; the phase retries only itself.
func (p *Pipeline) uploadResults(ctx context.Context, src SourceRef, header []string, valid []ValidRecord, invalid []InvalidRecord, correlationID string) (string, string, error) {
	timestamp := p.now().UTC().Format("20060102_150405")
	base := artifactBaseName(src.Key)

	executor := p.newExecutor("upload")

	var processedKey, rejectedKey string
	attempts := 0
	err := executor.Do(ctx, func(ctx context.Context) error {
		attempts++
		if attempts > 1 {
			metrics.IncreaseRetryAttemptsMetric(PhaseUpload)
		}

		if len(valid) > 0 && processedKey == "" {
			key := fmt.Sprintf("%s%s_processed_%s.csv", p.processedPrefix, base, timestamp)
			body, err := MarshalValid(header, valid)
			if err != nil {
				return err
			}
			if err := p.putArtifact(ctx, key, body, len(valid), src.Fingerprint, correlationID); err != nil {
				return err
			}
			processedKey = key
		}

		if len(invalid) > 0 && rejectedKey == "" {
			key := fmt.Sprintf("%s%s_rejected_%s.csv", p.rejectedPrefix, base, timestamp)
			body, err := MarshalRejected(header, invalid)
			if err != nil {
				return err
			}
			if err := p.putArtifact(ctx, key, body, len(invalid), src.Fingerprint, correlationID); err != nil {
				return err
			}
			rejectedKey = key
		}

		return nil
	})
	if err != nil {
		return "", "", err
	}
	return processedKey, rejectedKey, nil
}

func (p *Pipeline) putArtifact(ctx context.Context, key string, body []byte, count int, fingerprint, correlationID string) error {
	hash := md5.Sum(body)
	metadata := map[string]string{
		metaCorrelationID: correlationID,
		metaProcessedAt:   p.now().UTC().Format(time.RFC3339),
		metaRecordCount:   strconv.Itoa(count),
		metaSourceETag:    fingerprint,
		metaFileHash:      hex.EncodeToString(hash[:]),
	}

	if err := p.store.PutObject(ctx, key, body, "text/csv", metadata); err != nil {
		return err
	}

	p.log.Infow("artifact written",
		"correlation_id", correlationID,
		"key", key,
		"record_count", count,
		"size_bytes", len(body))
	return nil
}

// recordInLedger is best-effort; the artifact metadata already carries the
// fingerprint, so a lost ledger write only weakens the fast path.
func (p *Pipeline) recordInLedger(ctx context.Context, src SourceRef, outcome *Outcome) {
	if p.ledger == nil {
		return
	}

	err := p.ledger.Record(ctx, model.ProcessedUpload{
		Fingerprint:   src.Fingerprint,
		Bucket:        src.Bucket,
		SourceKey:     src.Key,
		ProcessedKey:  outcome.ProcessedKey,
		RejectedKey:   outcome.RejectedKey,
		ValidCount:    outcome.ValidCount,
		InvalidCount:  outcome.InvalidCount,
		CorrelationID: outcome.CorrelationID,
		CreatedAt:     p.now().UTC(),
	})
	if err != nil {
		p.log.Warnw("failed to record upload in ledger",
			"correlation_id", outcome.CorrelationID,
			"fingerprint", src.Fingerprint,
			"error", err)
	}
}

// publishCompletion is fire-and-forget relative to the run's success. With
// zero valid records there is nothing downstream to analyze, so no event is
// published at all.
func (p *Pipeline) publishCompletion(ctx context.Context, src SourceRef, outcome *Outcome) {
	if outcome.ValidCount == 0 {
		p.log.Warnw("no valid records found, skipping analysis trigger",
			"correlation_id", outcome.CorrelationID,
			"invalid_records", outcome.InvalidCount)
		return
	}

	ev := events.ProcessingCompleteEvent{
		CorrelationID:       outcome.CorrelationID,
		Bucket:              src.Bucket,
		SourceFile:          src.Key,
		ProcessedFile:       outcome.ProcessedKey,
		RejectedFile:        outcome.RejectedKey,
		ValidRecords:        outcome.ValidCount,
		InvalidRecords:      outcome.InvalidCount,
		DataQualityScore:    outcome.DataQualityScore,
		ProcessingTimestamp: p.now().UTC(),
	}

	if err := p.publisher.PublishProcessingComplete(ctx, ev); err != nil {
		p.log.Errorw("failed to publish completion event",
			"correlation_id", outcome.CorrelationID,
			"source_file", src.Key,
			"error", err)
		metrics.IncreaseEventsPublishedMetric("error")
		return
	}
	metrics.IncreaseEventsPublishedMetric("success")
}

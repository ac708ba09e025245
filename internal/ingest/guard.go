package ingest

import (
	"context"
	"errors"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/salestream/ingest/internal/store"
)

// Object metadata keys carried by every artifact for idempotency tracking.
const (
	metaCorrelationID = "correlation-id"
	metaProcessedAt   = "processed-at"
	metaRecordCount   = "record-count"
	metaSourceETag    = "source-etag"
	metaFileHash      = "file-hash"
)

// maxProbeCandidates bounds the artifact lookup per sink prefix. A heuristic
// cap, not a correctness guarantee.
const maxProbeCandidates = 10

type GuardOption func(g *IdempotencyGuard)

// IdempotencyGuard decides whether a source upload was already fully
// processed. It is a best-effort check, not a transactional lock: concurrent
// deliveries of the same fingerprint can both pass before either has written
// output. Every probe failure fails open: a false negative costs a
// duplicate-but-safe re-run, a false positive would silently drop data.
type IdempotencyGuard struct {
	store           store.ObjectStore
	ledger          store.Ledger
	processedPrefix string
	rejectedPrefix  string
	log             *zap.SugaredLogger
}

func NewIdempotencyGuard(objectStore store.ObjectStore, processedPrefix, rejectedPrefix string, opts ...GuardOption) *IdempotencyGuard {
	g := &IdempotencyGuard{
		store:           objectStore,
		processedPrefix: processedPrefix,
		rejectedPrefix:  rejectedPrefix,
		log:             zap.S().Named("idempotency_guard"),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// WithLedger adds the exact-match fast path backed by the idempotency ledger.
func WithLedger(ledger store.Ledger) GuardOption {
	return func(g *IdempotencyGuard) {
		g.ledger = ledger
	}
}

// AlreadyProcessed never fails the caller. The ledger is consulted first
// when configured; the artifact-metadata probe is the fallback.
func (g *IdempotencyGuard) AlreadyProcessed(ctx context.Context, src SourceRef) bool {
	if src.Fingerprint == "" {
		return false
	}

	if g.ledger != nil {
		if upload, err := g.ledger.Get(ctx, src.Fingerprint); err == nil {
			g.log.Infow("fingerprint found in ledger",
				"fingerprint", src.Fingerprint,
				"correlation_id", upload.CorrelationID)
			return true
		} else if !errors.Is(err, store.ErrRecordNotFound) {
			g.log.Warnw("ledger probe failed, falling back to artifact probe",
				"fingerprint", src.Fingerprint, "error", err)
		}
	}

	base := artifactBaseName(src.Key)
	prefixes := []string{
		g.processedPrefix + base + "_processed_",
		g.rejectedPrefix + base + "_rejected_",
	}

	for _, prefix := range prefixes {
		keys, err := g.store.ListObjects(ctx, prefix, maxProbeCandidates)
		if err != nil {
			g.log.Warnw("artifact listing failed, treating as not processed",
				"prefix", prefix, "error", err)
			continue
		}

		for _, key := range keys {
			info, err := g.store.StatObject(ctx, key)
			if err != nil {
				continue
			}
			if info.Metadata[metaSourceETag] == src.Fingerprint {
				return true
			}
		}
	}

	return false
}

// artifactBaseName derives the sink naming stem from the source's base name.
func artifactBaseName(key string) string {
	return strings.TrimSuffix(path.Base(key), ".csv")
}

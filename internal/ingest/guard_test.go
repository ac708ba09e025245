package ingest

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/salestream/ingest/internal/store"
	"github.com/salestream/ingest/internal/store/model"
)

type fakeLedger struct {
	uploads map[string]model.ProcessedUpload
	getErr  error
	recErr  error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{uploads: make(map[string]model.ProcessedUpload)}
}

func (f *fakeLedger) Get(_ context.Context, fingerprint string) (*model.ProcessedUpload, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	upload, ok := f.uploads[fingerprint]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return &upload, nil
}

func (f *fakeLedger) Record(_ context.Context, upload model.ProcessedUpload) error {
	if f.recErr != nil {
		return f.recErr
	}
	if _, ok := f.uploads[upload.Fingerprint]; !ok {
		f.uploads[upload.Fingerprint] = upload
	}
	return nil
}

func (f *fakeLedger) Migrate() error { return nil }
func (f *fakeLedger) Close() error   { return nil }

var _ = Describe("Idempotency Guard", func() {
	var (
		objectStore *fakeObjectStore
		src         SourceRef
	)

	BeforeEach(func() {
		objectStore = newFakeObjectStore()
		src = SourceRef{
			Bucket:      "sales-data",
			Key:         "input/sales.csv",
			Fingerprint: "etag-123",
		}
	})

	newGuard := func(opts ...GuardOption) *IdempotencyGuard {
		return NewIdempotencyGuard(objectStore, "processed/", "rejected/", opts...)
	}

	Context("artifact probe", func() {
		It("reports not processed when no artifacts exist", func() {
			Expect(newGuard().AlreadyProcessed(context.Background(), src)).To(BeFalse())
		})

		It("recognizes a processed artifact with a matching fingerprint", func() {
			objectStore.objects["processed/sales_processed_20240326_100000.csv"] = []byte("data")
			objectStore.metadata["processed/sales_processed_20240326_100000.csv"] = map[string]string{
				"source-etag": "etag-123",
			}

			Expect(newGuard().AlreadyProcessed(context.Background(), src)).To(BeTrue())
		})

		It("recognizes a rejected artifact with a matching fingerprint", func() {
			objectStore.objects["rejected/sales_rejected_20240326_100000.csv"] = []byte("data")
			objectStore.metadata["rejected/sales_rejected_20240326_100000.csv"] = map[string]string{
				"source-etag": "etag-123",
			}

			Expect(newGuard().AlreadyProcessed(context.Background(), src)).To(BeTrue())
		})

		It("ignores artifacts derived from other uploads", func() {
			objectStore.objects["processed/sales_processed_20240326_100000.csv"] = []byte("data")
			objectStore.metadata["processed/sales_processed_20240326_100000.csv"] = map[string]string{
				"source-etag": "other-etag",
			}

			Expect(newGuard().AlreadyProcessed(context.Background(), src)).To(BeFalse())
		})

		It("fails open when listing fails", func() {
			objectStore.listErrs = []error{errors.New("boom"), errors.New("boom")}
			Expect(newGuard().AlreadyProcessed(context.Background(), src)).To(BeFalse())
		})

		It("fails open when metadata lookup fails", func() {
			objectStore.objects["processed/sales_processed_20240326_100000.csv"] = []byte("data")
			objectStore.statErrs = []error{errors.New("boom")}
			Expect(newGuard().AlreadyProcessed(context.Background(), src)).To(BeFalse())
		})

		It("treats a missing fingerprint as not processed", func() {
			src.Fingerprint = ""
			Expect(newGuard().AlreadyProcessed(context.Background(), src)).To(BeFalse())
		})
	})

	Context("ledger fast path", func() {
		It("reports processed on a ledger hit without probing artifacts", func() {
			ledger := newFakeLedger()
			ledger.uploads["etag-123"] = model.ProcessedUpload{Fingerprint: "etag-123", CorrelationID: "corr-1"}
			// listing would fail if reached
			objectStore.listErrs = []error{errors.New("boom"), errors.New("boom")}

			Expect(newGuard(WithLedger(ledger)).AlreadyProcessed(context.Background(), src)).To(BeTrue())
		})

		It("falls back to the artifact probe on ledger errors", func() {
			ledger := newFakeLedger()
			ledger.getErr = errors.New("db down")
			objectStore.objects["processed/sales_processed_20240326_100000.csv"] = []byte("data")
			objectStore.metadata["processed/sales_processed_20240326_100000.csv"] = map[string]string{
				"source-etag": "etag-123",
			}

			Expect(newGuard(WithLedger(ledger)).AlreadyProcessed(context.Background(), src)).To(BeTrue())
		})

		It("falls back to the artifact probe on a ledger miss", func() {
			Expect(newGuard(WithLedger(newFakeLedger())).AlreadyProcessed(context.Background(), src)).To(BeFalse())
		})
	})
})

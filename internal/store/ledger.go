package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salestream/ingest/internal/store/model"
)

// Ledger records fully processed source fingerprints. It strengthens the
// best-effort artifact-metadata probe with an exact lookup; the guard treats
// any ledger failure as "not found" and falls back to the probe.
type Ledger interface {
	Get(ctx context.Context, fingerprint string) (*model.ProcessedUpload, error)
	Record(ctx context.Context, upload model.ProcessedUpload) error
	Migrate() error
	Close() error
}

type ledgerStore struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) Ledger {
	return &ledgerStore{db: db}
}

func (l *ledgerStore) Get(ctx context.Context, fingerprint string) (*model.ProcessedUpload, error) {
	var upload model.ProcessedUpload
	if err := l.db.WithContext(ctx).First(&upload, "fingerprint = ?", fingerprint).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &upload, nil
}

// Record is idempotent: a concurrent run that already claimed the
// fingerprint wins and the later insert is a no-op.
func (l *ledgerStore) Record(ctx context.Context, upload model.ProcessedUpload) error {
	return l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fingerprint"}},
		DoNothing: true,
	}).Create(&upload).Error
}

func (l *ledgerStore) Migrate() error {
	return l.db.AutoMigrate(&model.ProcessedUpload{})
}

func (l *ledgerStore) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

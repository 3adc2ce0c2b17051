package journal

import (
	"context"                         // Request-scoped DB calls
	"fortune_gateway/internal/domain" // Journal record model

	"gorm.io/gorm" // GORM ORM library
)

// Recorder appends checkout attempts to the journal. Failures to record are
// logged by callers and never surface into checkout results.
type Recorder interface {
	Record(ctx context.Context, rec *domain.CheckoutRecord) error
}

// Store is the MySQL-backed journal.
type Store struct {
	db *gorm.DB // Database handle
}

// NewStore creates a journal store on the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record appends one checkout attempt.
func (s *Store) Record(ctx context.Context, rec *domain.CheckoutRecord) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

// List returns journal rows newest-first with the total count for pagination.
func (s *Store) List(ctx context.Context, page, pageSize int) ([]domain.CheckoutRecord, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.CheckoutRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize // Calculate offset
	var records []domain.CheckoutRecord
	if err := s.db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(pageSize).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

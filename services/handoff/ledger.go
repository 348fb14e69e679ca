package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pavitra93/menulink/shared/models"
)

// Ledger persists relayed handoffs and the retry queue
type Ledger interface {
	Record(ctx context.Context, record *models.HandoffRecord) error
	MarkRelayed(ctx context.Context, eventID uuid.UUID) error
	QueueFailure(ctx context.Context, failed *models.FailedHandoff) error
	DueFailures(ctx context.Context, now time.Time, limit int) ([]models.FailedHandoff, error)
	SaveFailure(ctx context.Context, failed *models.FailedHandoff) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type gormLedger struct {
	db *gorm.DB
}

// NewGormLedger stores the ledger in Postgres through gorm
func NewGormLedger(db *gorm.DB) Ledger {
	return &gormLedger{db: db}
}

func (l *gormLedger) Record(ctx context.Context, record *models.HandoffRecord) error {
	return l.db.WithContext(ctx).Create(record).Error
}

func (l *gormLedger) MarkRelayed(ctx context.Context, eventID uuid.UUID) error {
	return l.db.WithContext(ctx).Model(&models.HandoffRecord{}).
		Where("id = ?", eventID).
		Update("relayed", true).Error
}

func (l *gormLedger) QueueFailure(ctx context.Context, failed *models.FailedHandoff) error {
	return l.db.WithContext(ctx).Create(failed).Error
}

func (l *gormLedger) DueFailures(ctx context.Context, now time.Time, limit int) ([]models.FailedHandoff, error) {
	var due []models.FailedHandoff
	err := l.db.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", models.FailedStatusPending, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&due).Error
	return due, err
}

func (l *gormLedger) SaveFailure(ctx context.Context, failed *models.FailedHandoff) error {
	return l.db.WithContext(ctx).Save(failed).Error
}

func (l *gormLedger) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{
		models.FailedStatusPending:           0,
		models.FailedStatusResolved:          0,
		models.FailedStatusPermanentlyFailed: 0,
	}
	for status := range counts {
		var n int64
		if err := l.db.WithContext(ctx).Model(&models.FailedHandoff{}).Where("status = ?", status).Count(&n).Error; err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, nil
}

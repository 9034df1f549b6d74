package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/lesson-booking/internal/model"
)

// AuditRepository: только вставка и чтение, записи не изменяются.
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	// История одного бронирования в хронологическом порядке.
	ListByBooking(ctx context.Context, bookingID, instructorID uuid.UUID) ([]model.AuditLog, error)
	// Лента инструктора, новые записи первыми.
	ListByInstructor(ctx context.Context, instructorID uuid.UUID, limit, offset int) ([]model.AuditLog, int64, error)
}

type GormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *GormAuditRepository) ListByBooking(
	ctx context.Context,
	bookingID, instructorID uuid.UUID,
) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND instructor_id = ?", bookingID, instructorID).
		Order("occurred_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *GormAuditRepository) ListByInstructor(
	ctx context.Context,
	instructorID uuid.UUID,
	limit, offset int,
) ([]model.AuditLog, int64, error) {
	var (
		logs  []model.AuditLog
		total int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.AuditLog{}).
		Where("instructor_id = ?", instructorID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("occurred_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

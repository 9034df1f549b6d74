package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/lesson-booking/internal/model"
)

type CalendarConnectionRepository interface {
	// GetByInstructor возвращает ErrNotFound, если календарь не подключён.
	GetByInstructor(ctx context.Context, instructorID uuid.UUID) (*model.CalendarConnection, error)
	// Upsert создаёт или заменяет подключение инструктора.
	Upsert(ctx context.Context, conn *model.CalendarConnection) error
}

type GormCalendarConnectionRepository struct {
	db *gorm.DB
}

func NewGormCalendarConnectionRepository(db *gorm.DB) *GormCalendarConnectionRepository {
	return &GormCalendarConnectionRepository{db: db}
}

func (r *GormCalendarConnectionRepository) GetByInstructor(
	ctx context.Context,
	instructorID uuid.UUID,
) (*model.CalendarConnection, error) {
	var c model.CalendarConnection
	err := r.db.WithContext(ctx).
		First(&c, "instructor_id = ?", instructorID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *GormCalendarConnectionRepository) Upsert(ctx context.Context, conn *model.CalendarConnection) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "instructor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"calendar_id", "access_token", "time_zone", "settings", "updated_at"}),
		}).
		Create(conn).Error
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/lesson-booking/internal/model"
)

type InstructorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Instructor, error)
	Create(ctx context.Context, instructor *model.Instructor) error
}

type GormInstructorRepository struct {
	db *gorm.DB
}

func NewGormInstructorRepository(db *gorm.DB) *GormInstructorRepository {
	return &GormInstructorRepository{db: db}
}

func (r *GormInstructorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Instructor, error) {
	var i model.Instructor
	if err := r.db.WithContext(ctx).First(&i, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &i, nil
}

func (r *GormInstructorRepository) Create(ctx context.Context, instructor *model.Instructor) error {
	return r.db.WithContext(ctx).Create(instructor).Error
}

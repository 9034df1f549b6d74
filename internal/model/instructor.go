package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Instructor: владелец календаря бронирований (провайдер услуги).
type Instructor struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// Имя/отображаемое название в интерфейсе.
	DisplayName string `gorm:"type:varchar(255);not null"`

	// Часовой пояс для текстов событий; хранение времени всегда в UTC.
	TimeZone string `gorm:"type:varchar(64);not null;default:'UTC'"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (i *Instructor) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Location возвращает часовой пояс инструктора, UTC при ошибке.
func (i *Instructor) Location() *time.Location {
	if i == nil || i.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(i.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

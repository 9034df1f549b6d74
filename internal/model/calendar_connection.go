package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// calendar_connections: не более одного подключения календаря на инструктора.
// Обновление токена: забота адаптера, ядро только читает запись.
type CalendarConnection struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	InstructorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	// Идентификатор календаря у провайдера (например, "primary").
	CalendarID  string `gorm:"type:varchar(255);not null"`
	AccessToken string `gorm:"type:text;not null"`

	TimeZone string `gorm:"type:varchar(64);not null;default:'UTC'"`

	// Произвольные настройки провайдера в виде JSON.
	Settings datatypes.JSON

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Instructor *Instructor `gorm:"foreignKey:InstructorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (c *CalendarConnection) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

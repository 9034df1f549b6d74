package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// booking_audit_logs: неизменяемая история переходов статусов.
// Источником текущего состояния не является.
type AuditLog struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	BookingID    uuid.UUID `gorm:"type:uuid;not null;index"`
	InstructorID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Пустой PreviousState означает создание бронирования.
	PreviousState BookingStatus `gorm:"type:varchar(32)"`
	NewState      BookingStatus `gorm:"type:varchar(32);not null"`

	// Кто инициировал переход: "instructor:<id>", "system", ...
	Actor string `gorm:"type:varchar(255);not null"`

	Metadata datatypes.JSON

	OccurredAt time.Time `gorm:"not null;index"`
}

func (AuditLog) TableName() string {
	return "booking_audit_logs"
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

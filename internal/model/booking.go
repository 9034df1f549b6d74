package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusDraft     BookingStatus = "draft"
	BookingStatusProposed  BookingStatus = "proposed"
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusModified  BookingStatus = "modified"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

// AllBookingStatuses возвращает все статусы в порядке жизненного цикла.
func AllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusDraft,
		BookingStatusProposed,
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusModified,
		BookingStatusCancelled,
		BookingStatusExpired,
	}
}

func (s BookingStatus) IsValid() bool {
	for _, st := range AllBookingStatuses() {
		if st == s {
			return true
		}
	}
	return false
}

// Статусы, которые занимают время инструктора и участвуют в проверке пересечений.
var BlockingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusModified,
}

// Статусы, из которых нет переходов.
var TerminalStatuses = []BookingStatus{
	BookingStatusCancelled,
	BookingStatusExpired,
}

// Статус оплаты носит информационный характер и не влияет на статус бронирования.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// bookings
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	// Владелец бронирования: инструктор.
	InstructorID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_bookings_instructor_idem,priority:1"`

	// Ссылка на профиль клиента либо просто имя из переписки.
	CustomerID   *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName string     `gorm:"type:varchar(255)"`
	PartySize    *int
	SkillLevel   *string `gorm:"type:varchar(64)"`

	// Полуоткрытый интервал [StartTime, EndTime), всегда в UTC.
	StartTime time.Time `gorm:"not null;index"`
	EndTime   time.Time `gorm:"not null;index"`

	AmountCents   int64         `gorm:"not null;default:0"`
	Currency      string        `gorm:"type:varchar(3)"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(32);not null;default:'unpaid'"`

	Status BookingStatus `gorm:"type:varchar(32);not null;index"`

	// Есть только пока существует событие во внешнем календаре.
	CalendarEventID *string `gorm:"type:varchar(255)"`
	PaymentIntentID *string `gorm:"type:varchar(255)"`

	IdempotencyKey *string `gorm:"type:varchar(255);uniqueIndex:idx_bookings_instructor_idem,priority:2"`

	Notes       string `gorm:"type:text"`
	CancelledAt *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Instructor *Instructor `gorm:"foreignKey:InstructorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Customer   *Customer   `gorm:"foreignKey:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

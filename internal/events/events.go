// Package events описывает сообщения о переходах бронирований, публикуемые в RabbitMQ.
package events

import (
	"time"

	"github.com/Leganyst/lesson-booking/internal/model"
)

const routingPrefix = "booking."

// BookingTransition: тело каждого сообщения booking.<state>.
type BookingTransition struct {
	BookingID     string         `json:"booking_id"`
	InstructorID  string         `json:"instructor_id"`
	PreviousState string         `json:"previous_state,omitempty"`
	NewState      string         `json:"new_state"`
	Actor         string         `json:"actor"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// RoutingKey возвращает booking.<state>, например booking.confirmed.
func RoutingKey(state model.BookingStatus) string {
	return routingPrefix + string(state)
}

package httpapi

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/lesson-booking/internal/model"
)

// Response: общий конверт всех ответов API.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Page    int    `json:"page,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Total   int    `json:"total,omitempty"`
}

func successResponse(data any) Response {
	return Response{Success: true, Data: data}
}

func errorResponse(msg string) Response {
	return Response{Success: false, Error: msg}
}

func paginatedResponse(data any, page, limit, total int) Response {
	return Response{
		Success: true,
		Data:    data,
		Page:    page,
		Limit:   limit,
		Total:   total,
	}
}

type bookingView struct {
	ID              uuid.UUID           `json:"id"`
	InstructorID    uuid.UUID           `json:"instructor_id"`
	CustomerID      *uuid.UUID          `json:"customer_id,omitempty"`
	CustomerName    string              `json:"customer_name"`
	PartySize       *int                `json:"party_size,omitempty"`
	SkillLevel      *string             `json:"skill_level,omitempty"`
	StartTime       time.Time           `json:"start_time"`
	EndTime         time.Time           `json:"end_time"`
	AmountCents     int64               `json:"amount_cents"`
	Currency        string              `json:"currency"`
	PaymentStatus   model.PaymentStatus `json:"payment_status"`
	Status          model.BookingStatus `json:"status"`
	CalendarEventID *string             `json:"calendar_event_id,omitempty"`
	PaymentIntentID *string             `json:"payment_intent_id,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	CancelledAt     *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toBookingView(b model.Booking) bookingView {
	return bookingView{
		ID:              b.ID,
		InstructorID:    b.InstructorID,
		CustomerID:      b.CustomerID,
		CustomerName:    b.CustomerName,
		PartySize:       b.PartySize,
		SkillLevel:      b.SkillLevel,
		StartTime:       b.StartTime.UTC(),
		EndTime:         b.EndTime.UTC(),
		AmountCents:     b.AmountCents,
		Currency:        b.Currency,
		PaymentStatus:   b.PaymentStatus,
		Status:          b.Status,
		CalendarEventID: b.CalendarEventID,
		PaymentIntentID: b.PaymentIntentID,
		Notes:           b.Notes,
		CancelledAt:     b.CancelledAt,
		CreatedAt:       b.CreatedAt.UTC(),
		UpdatedAt:       b.UpdatedAt.UTC(),
	}
}

type auditView struct {
	ID            uuid.UUID           `json:"id"`
	BookingID     uuid.UUID           `json:"booking_id"`
	PreviousState model.BookingStatus `json:"previous_state"`
	NewState      model.BookingStatus `json:"new_state"`
	Actor         string              `json:"actor"`
	Metadata      json.RawMessage     `json:"metadata,omitempty"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

func toAuditViews(rows []model.AuditLog) []auditView {
	out := make([]auditView, 0, len(rows))
	for _, a := range rows {
		v := auditView{
			ID:            a.ID,
			BookingID:     a.BookingID,
			PreviousState: a.PreviousState,
			NewState:      a.NewState,
			Actor:         a.Actor,
			OccurredAt:    a.OccurredAt.UTC(),
		}
		if len(a.Metadata) > 0 {
			v.Metadata = json.RawMessage(a.Metadata)
		}
		out = append(out, v)
	}
	return out
}

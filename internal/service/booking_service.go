package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Leganyst/lesson-booking/internal/audit"
	"github.com/Leganyst/lesson-booking/internal/calendar"
	"github.com/Leganyst/lesson-booking/internal/calendarsync"
	"github.com/Leganyst/lesson-booking/internal/lifecycle"
	"github.com/Leganyst/lesson-booking/internal/model"
	"github.com/Leganyst/lesson-booking/internal/repository"
	"github.com/Leganyst/lesson-booking/internal/saga"
)

const (
	// Максимальная длительность одного занятия.
	maxLessonDuration = 12 * time.Hour

	defaultAdapterTimeout = 10 * time.Second
)

var tracer = otel.Tracer("github.com/Leganyst/lesson-booking/internal/service")

// CalendarClient: внешний календарь инструктора.
type CalendarClient interface {
	CreateEvent(ctx context.Context, conn model.CalendarConnection, ev calendarsync.Event) (string, error)
	UpdateEvent(ctx context.Context, conn model.CalendarConnection, eventID string, ev calendarsync.Event) error
	DeleteEvent(ctx context.Context, conn model.CalendarConnection, eventID string) error
}

// PaymentGateway: только чтение статуса платежа.
type PaymentGateway interface {
	GetPaymentIntent(ctx context.Context, ref string) (model.PaymentStatus, error)
}

// AuditRecorder не возвращает ошибок: запись аудита best-effort.
type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

type Deps struct {
	Bookings    repository.BookingRepository
	Instructors repository.InstructorRepository
	Customers   repository.CustomerRepository
	Connections repository.CalendarConnectionRepository

	Calendar CalendarClient
	// nil отключает SyncPaymentStatus
	Payments PaymentGateway
	Audit    AuditRecorder

	Logger         *slog.Logger
	AdapterTimeout time.Duration
}

// BookingService: оркестратор жизненного цикла бронирования.
// Каждый вызов является отдельной единицей работы, взаимоисключение даёт только БД.
type BookingService struct {
	bookings    repository.BookingRepository
	instructors repository.InstructorRepository
	customers   repository.CustomerRepository
	connections repository.CalendarConnectionRepository

	calendar CalendarClient
	payments PaymentGateway
	audit    AuditRecorder

	validate       *validator.Validate
	logger         *slog.Logger
	adapterTimeout time.Duration
}

func NewBookingService(d Deps) *BookingService {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := d.AdapterTimeout
	if timeout <= 0 {
		timeout = defaultAdapterTimeout
	}
	return &BookingService{
		bookings:       d.Bookings,
		instructors:    d.Instructors,
		customers:      d.Customers,
		connections:    d.Connections,
		calendar:       d.Calendar,
		payments:       d.Payments,
		audit:          d.Audit,
		validate:       validator.New(),
		logger:         logger.With("component", "booking_service"),
		adapterTimeout: timeout,
	}
}

// ---------- Inputs ----------

type CreateBookingInput struct {
	InstructorID   uuid.UUID  `validate:"required"`
	CustomerID     *uuid.UUID `validate:"omitempty"`
	CustomerName   string     `validate:"max=255"`
	PartySize      *int       `validate:"omitempty,min=1,max=50"`
	SkillLevel     *string    `validate:"omitempty,max=64"`
	StartTime      time.Time
	EndTime        time.Time
	AmountCents    int64               `validate:"min=0"`
	Currency       string              `validate:"omitempty,len=3,alpha"`
	InitialStatus  model.BookingStatus `validate:"omitempty,oneof=draft proposed"`
	IdempotencyKey string              `validate:"max=255"`
	Notes          string
	Actor          string `validate:"max=255"`
}

type ProposeInput struct {
	BookingID    uuid.UUID `validate:"required"`
	InstructorID uuid.UUID `validate:"required"`
	// Необязательный новый интервал; задаётся целиком.
	StartTime *time.Time
	EndTime   *time.Time
	Actor     string `validate:"max=255"`
}

type ConfirmInput struct {
	BookingID       uuid.UUID `validate:"required"`
	InstructorID    uuid.UUID `validate:"required"`
	PaymentIntentID string    `validate:"max=255"`
	Actor           string    `validate:"max=255"`
}

type CancelInput struct {
	BookingID    uuid.UUID `validate:"required"`
	InstructorID uuid.UUID `validate:"required"`
	Reason       string    `validate:"max=1024"`
	Actor        string    `validate:"max=255"`
}

type ExpireInput struct {
	BookingID    uuid.UUID `validate:"required"`
	InstructorID uuid.UUID `validate:"required"`
	Reason       string    `validate:"max=1024"`
	// Пустой Actor означает system.
	Actor string `validate:"max=255"`
}

type ModifyInput struct {
	BookingID    uuid.UUID `validate:"required"`
	InstructorID uuid.UUID `validate:"required"`
	NewStart     time.Time
	NewEnd       time.Time
	Actor        string `validate:"max=255"`
}

func (s *BookingService) check(in any) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// ---------- Create / read / patch ----------

func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (_ *model.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.CreateBooking",
		trace.WithAttributes(attribute.String("instructor.id", in.InstructorID.String())))
	defer func() { finishSpan(span, err) }()

	if err := s.check(in); err != nil {
		return nil, err
	}
	tr, err := calendar.ValidateLesson(in.StartTime, in.EndTime, maxLessonDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	status := in.InitialStatus
	if status == "" {
		status = model.BookingStatusDraft
	}
	if !lifecycle.IsInitial(status) {
		return nil, validationError("booking cannot be created as %q", status)
	}

	if _, err := s.instructors.GetByID(ctx, in.InstructorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationError("unknown instructor %s", in.InstructorID)
		}
		return nil, fmt.Errorf("load instructor: %w", err)
	}
	if in.CustomerID != nil {
		if _, err := s.customers.GetByID(ctx, *in.CustomerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, validationError("unknown customer %s", *in.CustomerID)
			}
			return nil, fmt.Errorf("load customer: %w", err)
		}
	}

	b := &model.Booking{
		InstructorID:  in.InstructorID,
		CustomerID:    in.CustomerID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		PartySize:     in.PartySize,
		SkillLevel:    in.SkillLevel,
		StartTime:     tr.Start,
		EndTime:       tr.End,
		AmountCents:   in.AmountCents,
		Currency:      strings.ToUpper(in.Currency),
		PaymentStatus: model.PaymentStatusUnpaid,
		Status:        status,
		Notes:         in.Notes,
	}
	if key := strings.TrimSpace(in.IdempotencyKey); key != "" {
		b.IdempotencyKey = &key
	}

	saved, created, err := s.bookings.CreateWithLock(ctx, b)
	if err != nil {
		return nil, mapStoreError(err)
	}
	span.SetAttributes(
		attribute.String("booking.id", saved.ID.String()),
		attribute.Bool("booking.created", created),
	)

	if !created {
		s.logger.InfoContext(ctx, "idempotent create replayed",
			"booking_id", saved.ID,
			"instructor_id", saved.InstructorID,
		)
		return saved, nil
	}

	meta := map[string]any{}
	if b.IdempotencyKey != nil {
		meta["idempotency_key"] = *b.IdempotencyKey
	}
	s.audit.Record(ctx, audit.Entry{
		BookingID:    saved.ID,
		InstructorID: saved.InstructorID,
		NewState:     saved.Status,
		Actor:        in.Actor,
		Metadata:     meta,
	})

	s.logger.InfoContext(ctx, "booking created",
		"booking_id", saved.ID,
		"instructor_id", saved.InstructorID,
		"status", saved.Status,
	)
	return saved, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id, instructorID uuid.UUID) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id, instructorID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return b, nil
}

// UpdateBookingDetails меняет поля без смены статуса. Время подтверждённого
// бронирования меняется только через ModifyBooking, иначе разъедется календарь.
func (s *BookingService) UpdateBookingDetails(
	ctx context.Context,
	id, instructorID uuid.UUID,
	patch repository.BookingPatch,
) (_ *model.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.UpdateBookingDetails",
		trace.WithAttributes(attribute.String("booking.id", id.String())))
	defer func() { finishSpan(span, err) }()

	if patch.Currency != nil && len(*patch.Currency) != 3 {
		return nil, validationError("currency must be a 3-letter code")
	}
	if patch.AmountCents != nil && *patch.AmountCents < 0 {
		return nil, validationError("amount must not be negative")
	}

	var updated *model.Booking
	err = s.bookings.Transaction(ctx, func(tx repository.BookingRepository) error {
		current, err := tx.LockForTransition(ctx, id, instructorID)
		if err != nil {
			return err
		}
		if lifecycle.IsTerminal(current.Status) {
			return validationError("booking is %s and can no longer be changed", current.Status)
		}
		timeChange := patch.StartTime != nil || patch.EndTime != nil
		if timeChange && current.Status != model.BookingStatusDraft && current.Status != model.BookingStatusProposed {
			return validationError("time of a %s booking is changed with ModifyBooking", current.Status)
		}

		updated, err = tx.UpdateDetails(ctx, id, instructorID, patch)
		return err
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return updated, nil
}

// ---------- Transitions ----------

// ProposeBookingSlots переводит черновик в proposed, при необходимости с новым
// интервалом. Внешних вызовов нет.
func (s *BookingService) ProposeBookingSlots(ctx context.Context, in ProposeInput) (_ *model.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.ProposeBookingSlots",
		trace.WithAttributes(attribute.String("booking.id", in.BookingID.String())))
	defer func() { finishSpan(span, err) }()

	if err := s.check(in); err != nil {
		return nil, err
	}
	if (in.StartTime == nil) != (in.EndTime == nil) {
		return nil, validationError("start and end must be proposed together")
	}

	var previous model.BookingStatus
	err = s.bookings.Transaction(ctx, func(tx repository.BookingRepository) error {
		self, err := tx.LockForTransition(ctx, in.BookingID, in.InstructorID)
		if err != nil {
			return err
		}
		if _, err := lifecycle.Transition(self.Status, model.BookingStatusProposed); err != nil {
			return err
		}
		previous = self.Status

		start, end := self.StartTime, self.EndTime
		if in.StartTime != nil {
			tr, err := calendar.ValidateLesson(*in.StartTime, *in.EndTime, maxLessonDuration)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrValidation, err)
			}
			start, end = tr.Start, tr.End
		}

		// Предлагать время, которое уже занято, бессмысленно.
		locked, err := tx.LockOverlapping(ctx, in.InstructorID, start, end)
		if err != nil {
			return err
		}
		slot := calendar.TimeRange{Start: start, End: end}
		if busy := repository.ConflictsWith(self.ID, slot, locked); len(busy) > 0 {
			return repository.NewConflictError(in.InstructorID, start, end, busy)
		}

		if in.StartTime != nil {
			if _, err := tx.UpdateDetails(ctx, self.ID, in.InstructorID, repository.BookingPatch{
				StartTime: &start,
				EndTime:   &end,
			}); err != nil {
				return err
			}
		}
		return tx.UpdateStatus(ctx, self.ID, model.BookingStatusProposed)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	s.audit.Record(ctx, audit.Entry{
		BookingID:     in.BookingID,
		InstructorID:  in.InstructorID,
		PreviousState: previous,
		NewState:      model.BookingStatusProposed,
		Actor:         in.Actor,
	})

	return s.GetBooking(ctx, in.BookingID, in.InstructorID)
}

// ConfirmBooking подтверждает бронирование:
//
//	A. привязка платёжной ссылки (без компенсации)
//	   блокировка инструктора, пересекающихся строк и проверка коллизий
//	B. создание события в календаре       <- удалить событие
//	C. привязка calendar_event_id         <- снять привязку
//	D. запись статуса confirmed
//
// B-D выполняются, пока транзакция держит блокировки. При сбое транзакция
// откатывается, затем компенсации выполняются в обратном порядке.
func (s *BookingService) ConfirmBooking(ctx context.Context, in ConfirmInput) (_ *model.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.ConfirmBooking",
		trace.WithAttributes(attribute.String("booking.id", in.BookingID.String())))
	defer func() { finishSpan(span, err) }()

	if err := s.check(in); err != nil {
		return nil, err
	}

	current, err := s.bookings.GetByID(ctx, in.BookingID, in.InstructorID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if _, err := lifecycle.Transition(current.Status, model.BookingStatusConfirmed); err != nil {
		return nil, err
	}

	ref := strings.TrimSpace(in.PaymentIntentID)
	if ref != "" {
		if err := s.bookings.AttachPaymentIntent(ctx, current.ID, ref); err != nil {
			return nil, fmt.Errorf("attach payment intent: %w", mapStoreError(err))
		}
	}

	conn, err := s.calendarConnection(ctx, in.InstructorID)
	if err != nil {
		return nil, err
	}

	sg := saga.New("confirm_booking", s.adapterTimeout, s.logger)
	var (
		previous model.BookingStatus
		eventID  string
	)

	txErr := s.bookings.Transaction(ctx, func(tx repository.BookingRepository) error {
		if err := tx.LockInstructor(ctx, in.InstructorID); err != nil {
			return err
		}
		self, err := tx.LockForTransition(ctx, in.BookingID, in.InstructorID)
		if err != nil {
			return err
		}
		// Между чтением и блокировкой бронирование могли изменить.
		if _, err := lifecycle.Transition(self.Status, model.BookingStatusConfirmed); err != nil {
			return err
		}
		slot := calendar.TimeRange{Start: self.StartTime, End: self.EndTime}
		locked, err := tx.LockOverlapping(ctx, in.InstructorID, slot.Start, slot.End)
		if err != nil {
			return err
		}
		if busy := repository.ConflictsWith(self.ID, slot, locked); len(busy) > 0 {
			return repository.NewConflictError(in.InstructorID, slot.Start, slot.End, busy)
		}
		previous = self.Status

		// B
		eventID, err = s.createEvent(ctx, *conn, self)
		if err != nil {
			return err
		}
		sg.Push("delete_calendar_event", func(ctx context.Context) error {
			return s.calendar.DeleteEvent(ctx, *conn, eventID)
		})

		// C
		if err := tx.AttachCalendarEvent(ctx, self.ID, eventID); err != nil {
			return fmt.Errorf("attach calendar event: %w", err)
		}
		sg.Push("detach_calendar_event", func(ctx context.Context) error {
			return s.bookings.DetachCalendarEvent(ctx, self.ID, eventID)
		})

		// D
		if err := tx.UpdateStatus(ctx, self.ID, model.BookingStatusConfirmed); err != nil {
			return fmt.Errorf("persist confirmed status: %w", err)
		}
		return nil
	})
	if txErr != nil {
		if sg.Len() > 0 {
			s.logger.WarnContext(ctx, "confirm failed, compensating",
				"booking_id", in.BookingID,
				"error", txErr,
			)
		}
		return nil, mapStoreError(sg.Fail(ctx, txErr))
	}

	meta := map[string]any{"calendar_event_id": eventID}
	if ref != "" {
		meta["payment_intent_id"] = ref
	}
	s.audit.Record(ctx, audit.Entry{
		BookingID:     in.BookingID,
		InstructorID:  in.InstructorID,
		PreviousState: previous,
		NewState:      model.BookingStatusConfirmed,
		Actor:         in.Actor,
		Metadata:      meta,
	})

	s.logger.InfoContext(ctx, "booking confirmed",
		"booking_id", in.BookingID,
		"calendar_event_id", eventID,
	)
	return s.GetBooking(ctx, in.BookingID, in.InstructorID)
}

// CancelBooking отменяет подтверждённое (или изменённое) бронирование:
//
//	B. удаление события в календаре       <- создать событие заново и привязать
//	C. снятие calendar_event_id
//	D. запись статуса cancelled
func (s *BookingService) CancelBooking(ctx context.Context, in CancelInput) (_ *model.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.CancelBooking",
		trace.WithAttributes(attribute.String("booking.id", in.BookingID.String())))
	defer func() { finishSpan(span, err) }()

	if err := s.check(in); err != nil {
		return nil, err
	}

	current, err := s.bookings.GetByID(ctx, in.BookingID, in.InstructorID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if _, err := lifecycle.Transition(current.Status, model.BookingStatusCancelled); err != nil {
		return nil, err
	}

	var conn *model.CalendarConnection
	if current.CalendarEventID != nil {
		if conn, err = s.calendarConnection(ctx, in.InstructorID); err != nil {
			return nil, err
		}
	}

	sg := saga.New("cancel_booking", s.adapterTimeout, s.logger)
	var (
		previous model.BookingStatus
		eventID  string
	)

	txErr := s.bookings.Transaction(ctx, func(tx repository.BookingRepository) error {
		self, err := tx.LockForTransition(ctx, in.BookingID, in.InstructorID)
		if err != nil {
			return err
		}
		if _, err := lifecycle.Transition(self.Status, model.BookingStatusCancelled); err != nil {
			return err
		}
		previous = self.Status

		if self.CalendarEventID != nil {
			if conn == nil {
				return ErrCalendarNotConnected
			}
			eventID = *self.CalendarEventID

			// B
			if err := s.deleteEvent(ctx, *conn, eventID); err != nil {
				return err
			}
			// Откат транзакции оставит в строке ссылку на удалённое событие,
			// поэтому компенсация создаёт новое и перепривязывает его.
			restored := *self
			sg.Push("restore_calendar_event", func(ctx context.Context) error {
				newID, err := s.calendar.CreateEvent(ctx, *conn, calendarsync.EventForBooking(&restored, *conn))
				if err != nil {
					return err
				}
				return s.bookings.AttachCalendarEvent(ctx, restored.ID, newID)
			})

			// C
			if err := tx.DetachCalendarEvent(ctx, self.ID, eventID); err != nil {
				return fmt.Errorf("detach calendar event: %w", err)
			}
		}

		// D
		if err := tx.UpdateStatus(ctx, self.ID, model.BookingStatusCancelled); err != nil {
			return fmt.Errorf("persist cancelled status: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, mapStoreError(sg.Fail(ctx, txErr))
	}

	meta := map[string]any{}
	if in.Reason != "" {
		meta["reason"] = in.Reason
	}
	if eventID != "" {
		meta["deleted_calendar_event_id"] = eventID
	}
	s.audit.Record(ctx, audit.Entry{
		BookingID:     in.BookingID,
		InstructorID:  in.InstructorID,
		PreviousState: previous,
		NewState:      model.BookingStatusCancelled,
		Actor:         in.Actor,
		Metadata:      meta,
	})

	return s.GetBooking(ctx, in.BookingID, in.InstructorID)
}

// ExpireBooking: только смена статуса, внешних эффектов нет.
func (s *BookingService) ExpireBooking(ctx context.Context, in ExpireInput) (_ *model.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.ExpireBooking",
		trace.WithAttributes(attribute.String("booking.id", in.BookingID.String())))
	defer func() { finishSpan(span, err) }()

	if err := s.check(in); err != nil {
		return nil, err
	}

	var previous model.BookingStatus
	err = s.bookings.Transaction(ctx, func(tx repository.BookingRepository) error {
		self, err := tx.LockForTransition(ctx, in.BookingID, in.InstructorID)
		if err != nil {
			return err
		}
		if _, err := lifecycle.Transition(self.Status, model.BookingStatusExpired); err != nil {
			return err
		}
		previous = self.Status
		return tx.UpdateStatus(ctx, self.ID, model.BookingStatusExpired)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	actor := in.Actor
	if actor == "" {
		actor = audit.ActorSystem
	}
	meta := map[string]any{}
	if in.Reason != "" {
		meta["reason"] = in.Reason
	}
	s.audit.Record(ctx, audit.Entry{
		BookingID:     in.BookingID,
		InstructorID:  in.InstructorID,
		PreviousState: previous,
		NewState:      model.BookingStatusExpired,
		Actor:         actor,
		Metadata:      meta,
	})

	return s.GetBooking(ctx, in.BookingID, in.InstructorID)
}

// ModifyBooking переносит подтверждённое бронирование на новое время:
//
//	   блокировка инструктора и проверка коллизий (без самого бронирования)
//	B. обновление события в календаре     <- вернуть прежние детали события
//	C. запись нового интервала и статуса modified
func (s *BookingService) ModifyBooking(ctx context.Context, in ModifyInput) (_ *model.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.ModifyBooking",
		trace.WithAttributes(attribute.String("booking.id", in.BookingID.String())))
	defer func() { finishSpan(span, err) }()

	if err := s.check(in); err != nil {
		return nil, err
	}
	tr, err := calendar.ValidateLesson(in.NewStart, in.NewEnd, maxLessonDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	current, err := s.bookings.GetByID(ctx, in.BookingID, in.InstructorID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if _, err := lifecycle.Transition(current.Status, model.BookingStatusModified); err != nil {
		return nil, err
	}

	var conn *model.CalendarConnection
	if current.CalendarEventID != nil {
		if conn, err = s.calendarConnection(ctx, in.InstructorID); err != nil {
			return nil, err
		}
	}

	sg := saga.New("modify_booking", s.adapterTimeout, s.logger)
	var (
		previous  model.BookingStatus
		prevStart time.Time
		prevEnd   time.Time
	)

	txErr := s.bookings.Transaction(ctx, func(tx repository.BookingRepository) error {
		if err := tx.LockInstructor(ctx, in.InstructorID); err != nil {
			return err
		}
		self, err := tx.LockForTransition(ctx, in.BookingID, in.InstructorID)
		if err != nil {
			return err
		}
		if _, err := lifecycle.Transition(self.Status, model.BookingStatusModified); err != nil {
			return err
		}
		locked, err := tx.LockOverlapping(ctx, in.InstructorID, tr.Start, tr.End)
		if err != nil {
			return err
		}
		if busy := repository.ConflictsWith(self.ID, tr, locked); len(busy) > 0 {
			return repository.NewConflictError(in.InstructorID, tr.Start, tr.End, busy)
		}
		previous, prevStart, prevEnd = self.Status, self.StartTime, self.EndTime

		if self.CalendarEventID != nil {
			if conn == nil {
				return ErrCalendarNotConnected
			}
			eventID := *self.CalendarEventID
			moved := *self
			moved.StartTime, moved.EndTime = tr.Start, tr.End

			// B
			if err := s.updateEvent(ctx, *conn, eventID, &moved); err != nil {
				return err
			}
			original := *self
			sg.Push("restore_calendar_event_details", func(ctx context.Context) error {
				return s.calendar.UpdateEvent(ctx, *conn, eventID, calendarsync.EventForBooking(&original, *conn))
			})
		}

		// C
		if _, err := tx.UpdateDetails(ctx, self.ID, in.InstructorID, repository.BookingPatch{
			StartTime: &tr.Start,
			EndTime:   &tr.End,
		}); err != nil {
			return err
		}
		if err := tx.UpdateStatus(ctx, self.ID, model.BookingStatusModified); err != nil {
			return fmt.Errorf("persist modified status: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, mapStoreError(sg.Fail(ctx, txErr))
	}

	s.audit.Record(ctx, audit.Entry{
		BookingID:     in.BookingID,
		InstructorID:  in.InstructorID,
		PreviousState: previous,
		NewState:      model.BookingStatusModified,
		Actor:         in.Actor,
		Metadata: map[string]any{
			"previous_start": prevStart.Format(time.RFC3339),
			"previous_end":   prevEnd.Format(time.RFC3339),
		},
	})

	return s.GetBooking(ctx, in.BookingID, in.InstructorID)
}

// SyncPaymentStatus копирует статус платежа у провайдера в payment_status.
// Статус бронирования при этом не меняется.
func (s *BookingService) SyncPaymentStatus(ctx context.Context, id, instructorID uuid.UUID) (_ *model.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.SyncPaymentStatus",
		trace.WithAttributes(attribute.String("booking.id", id.String())))
	defer func() { finishSpan(span, err) }()

	if s.payments == nil {
		return nil, ErrPaymentsDisabled
	}

	b, err := s.bookings.GetByID(ctx, id, instructorID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if b.PaymentIntentID == nil || *b.PaymentIntentID == "" {
		return nil, validationError("booking %s has no payment reference", id)
	}

	actx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
	defer cancel()
	status, err := s.payments.GetPaymentIntent(actx, *b.PaymentIntentID)
	if err != nil {
		return nil, paymentError("get_payment_intent", err)
	}

	if status != b.PaymentStatus {
		if err := s.bookings.UpdatePaymentStatus(ctx, id, status); err != nil {
			return nil, mapStoreError(err)
		}
		s.logger.InfoContext(ctx, "payment status synced",
			"booking_id", id,
			"from", b.PaymentStatus,
			"to", status,
		)
	}

	return s.GetBooking(ctx, id, instructorID)
}

// ---------- helpers ----------

func (s *BookingService) calendarConnection(ctx context.Context, instructorID uuid.UUID) (*model.CalendarConnection, error) {
	conn, err := s.connections.GetByInstructor(ctx, instructorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCalendarNotConnected
		}
		return nil, fmt.Errorf("load calendar connection: %w", err)
	}
	return conn, nil
}

func (s *BookingService) createEvent(ctx context.Context, conn model.CalendarConnection, b *model.Booking) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
	defer cancel()

	id, err := s.calendar.CreateEvent(ctx, conn, calendarsync.EventForBooking(b, conn))
	if err != nil {
		return "", calendarError("create_event", err)
	}
	return id, nil
}

func (s *BookingService) updateEvent(ctx context.Context, conn model.CalendarConnection, eventID string, b *model.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
	defer cancel()

	if err := s.calendar.UpdateEvent(ctx, conn, eventID, calendarsync.EventForBooking(b, conn)); err != nil {
		return calendarError("update_event", err)
	}
	return nil
}

func (s *BookingService) deleteEvent(ctx context.Context, conn model.CalendarConnection, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
	defer cancel()

	if err := s.calendar.DeleteEvent(ctx, conn, eventID); err != nil {
		return calendarError("delete_event", err)
	}
	return nil
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

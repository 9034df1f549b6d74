// Package audit пишет журнал переходов бронирований (только добавление).
// Запись best-effort: ошибки логируются и наружу не возвращаются.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Leganyst/lesson-booking/internal/events"
	"github.com/Leganyst/lesson-booking/internal/model"
)

const (
	ActorSystem = "system"

	defaultPublishTimeout = 5 * time.Second
)

// Store сохраняет строки аудита.
type Store interface {
	Create(ctx context.Context, entry *model.AuditLog) error
}

// Publisher рассылает записи подписчикам.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Entry: одна смена статуса. При создании PreviousState пустой.
type Entry struct {
	BookingID     uuid.UUID
	InstructorID  uuid.UUID
	PreviousState model.BookingStatus
	NewState      model.BookingStatus
	Actor         string
	OccurredAt    time.Time
	Metadata      map[string]any
}

type Recorder struct {
	store          Store
	publisher      Publisher
	publishTimeout time.Duration
	logger         *slog.Logger
}

type Option func(*Recorder)

// WithPublisher включает сообщения booking.<state> после каждой сохранённой записи.
func WithPublisher(p Publisher) Option {
	return func(r *Recorder) { r.publisher = p }
}

func WithPublishTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.publishTimeout = d
		}
	}
}

func NewRecorder(store Store, logger *slog.Logger, opts ...Option) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		store:          store,
		publishTimeout: defaultPublishTimeout,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record сохраняет и публикует e. Отмена контекста запись не прерывает:
// переход уже состоялся.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	ctx = context.WithoutCancel(ctx)

	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if e.Actor == "" {
		e.Actor = ActorSystem
	}

	row := &model.AuditLog{
		BookingID:     e.BookingID,
		InstructorID:  e.InstructorID,
		PreviousState: e.PreviousState,
		NewState:      e.NewState,
		Actor:         e.Actor,
		OccurredAt:    e.OccurredAt.UTC(),
	}
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			r.logger.WarnContext(ctx, "audit metadata dropped", "booking_id", e.BookingID, "error", err)
		} else {
			row.Metadata = datatypes.JSON(raw)
		}
	}

	if err := r.store.Create(ctx, row); err != nil {
		r.logger.ErrorContext(ctx, "audit write failed",
			"booking_id", e.BookingID,
			"previous_state", e.PreviousState,
			"new_state", e.NewState,
			"actor", e.Actor,
			"error", err,
		)
		return
	}

	r.publish(ctx, e)
}

func (r *Recorder) publish(ctx context.Context, e Entry) {
	if r.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.publishTimeout)
	defer cancel()

	msg := events.BookingTransition{
		BookingID:     e.BookingID.String(),
		InstructorID:  e.InstructorID.String(),
		PreviousState: string(e.PreviousState),
		NewState:      string(e.NewState),
		Actor:         e.Actor,
		OccurredAt:    e.OccurredAt.UTC(),
		Metadata:      e.Metadata,
	}
	if err := r.publisher.PublishJSON(ctx, events.RoutingKey(e.NewState), msg); err != nil {
		r.logger.WarnContext(ctx, "booking event publish failed",
			"booking_id", e.BookingID,
			"new_state", e.NewState,
			"error", err,
		)
	}
}

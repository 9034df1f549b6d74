package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/lesson-booking/internal/calendar"
	"github.com/Leganyst/lesson-booking/internal/lifecycle"
	"github.com/Leganyst/lesson-booking/internal/model"
)

type BookingRepository interface {
	// Создать бронирование с блокировкой пересекающихся записей.
	// created = false, если запись с тем же ключом идемпотентности уже была.
	CreateWithLock(ctx context.Context, booking *model.Booking) (*model.Booking, bool, error)
	// Получить бронирование инструктора по ID.
	GetByID(ctx context.Context, id, instructorID uuid.UUID) (*model.Booking, error)
	// Записать статус (при отмене дополнительно проставляется cancelled_at).
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error
	// Частичное обновление полей без смены статуса.
	UpdateDetails(ctx context.Context, id, instructorID uuid.UUID, patch BookingPatch) (*model.Booking, error)

	AttachCalendarEvent(ctx context.Context, id uuid.UUID, eventID string) error
	// Снимает ссылку, только если она всё ещё указывает на eventID.
	DetachCalendarEvent(ctx context.Context, id uuid.UUID, eventID string) error
	AttachPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error

	// Блокирует строку инструктора до конца транзакции. Все переходы, которые
	// занимают время (confirm, modify), сериализуются по инструктору.
	LockInstructor(ctx context.Context, instructorID uuid.UUID) error
	// Блокировка строки бронирования до конца транзакции.
	LockForTransition(ctx context.Context, id, instructorID uuid.UUID) (*model.Booking, error)
	// Блокирует все нетерминальные пересекающиеся бронирования инструктора в порядке id.
	LockOverlapping(ctx context.Context, instructorID uuid.UUID, start, end time.Time) ([]model.Booking, error)

	Transaction(ctx context.Context, fn func(tx BookingRepository) error) error

	// Бронирования инструктора, пересекающие окно [from, to), с пагинацией.
	ListByInstructorRange(
		ctx context.Context,
		instructorID uuid.UUID,
		from, to time.Time,
		limit, offset int,
	) ([]model.Booking, int64, error)
	// Предложения, время начала которых уже прошло.
	ListExpiredProposals(ctx context.Context, before time.Time, limit int) ([]model.Booking, error)
}

// BookingPatch: nil-поля не изменяются.
type BookingPatch struct {
	CustomerName *string
	PartySize    *int
	SkillLevel   *string
	StartTime    *time.Time
	EndTime      *time.Time
	AmountCents  *int64
	Currency     *string
	Notes        *string
}

func (p BookingPatch) IsEmpty() bool {
	return p.CustomerName == nil && p.PartySize == nil && p.SkillLevel == nil &&
		p.StartTime == nil && p.EndTime == nil && p.AmountCents == nil &&
		p.Currency == nil && p.Notes == nil
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) CreateWithLock(ctx context.Context, booking *model.Booking) (*model.Booking, bool, error) {
	booking.StartTime = booking.StartTime.UTC()
	booking.EndTime = booking.EndTime.UTC()

	// Повтор уже обработанного сообщения: отдаём существующую запись.
	if booking.IdempotencyKey != nil {
		existing, err := findByIdempotencyKey(r.db.WithContext(ctx), booking.InstructorID, *booking.IdempotencyKey)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, false, err
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var busy []model.Booking
		err := tx.Model(&model.Booking{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("instructor_id = ? AND status IN ?", booking.InstructorID, model.BlockingStatuses).
			Where("start_time < ? AND end_time > ?", booking.EndTime, booking.StartTime).
			Order("id").
			Find(&busy).Error
		if err != nil {
			return err
		}
		if len(busy) > 0 {
			return NewConflictError(booking.InstructorID, booking.StartTime, booking.EndTime, busy)
		}

		return tx.Create(booking).Error
	})

	// Параллельный запрос с тем же ключом успел вставить запись первым.
	if errors.Is(err, gorm.ErrDuplicatedKey) && booking.IdempotencyKey != nil {
		existing, ferr := findByIdempotencyKey(r.db.WithContext(ctx), booking.InstructorID, *booking.IdempotencyKey)
		if ferr != nil {
			return nil, false, fmt.Errorf("resolve idempotent create: %w", ferr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return booking, true, nil
}

func findByIdempotencyKey(db *gorm.DB, instructorID uuid.UUID, key string) (*model.Booking, error) {
	var b model.Booking
	err := db.
		Where("instructor_id = ? AND idempotency_key = ?", instructorID, key).
		First(&b).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id, instructorID uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).
		First(&b, "id = ? AND instructor_id = ?", id, instructorID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *GormBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	update := map[string]any{
		"status": status,
	}
	if status == model.BookingStatusCancelled {
		update["cancelled_at"] = time.Now().UTC()
	}
	return r.updateColumns(ctx, id, update)
}

func (r *GormBookingRepository) UpdateDetails(
	ctx context.Context,
	id, instructorID uuid.UUID,
	patch BookingPatch,
) (*model.Booking, error) {
	current, err := r.GetByID(ctx, id, instructorID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	update := map[string]any{}
	if patch.CustomerName != nil {
		update["customer_name"] = *patch.CustomerName
	}
	if patch.PartySize != nil {
		if *patch.PartySize < 1 {
			return nil, fmt.Errorf("%w: party size must be positive", ErrInvalidPatch)
		}
		update["party_size"] = *patch.PartySize
	}
	if patch.SkillLevel != nil {
		update["skill_level"] = *patch.SkillLevel
	}
	if patch.AmountCents != nil {
		update["amount_cents"] = *patch.AmountCents
	}
	if patch.Currency != nil {
		update["currency"] = strings.ToUpper(*patch.Currency)
	}
	if patch.Notes != nil {
		update["notes"] = *patch.Notes
	}

	if patch.StartTime != nil || patch.EndTime != nil {
		start, end := current.StartTime, current.EndTime
		if patch.StartTime != nil {
			start = *patch.StartTime
		}
		if patch.EndTime != nil {
			end = *patch.EndTime
		}
		tr, err := calendar.NewTimeRange(start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
		}
		update["start_time"] = tr.Start
		update["end_time"] = tr.End
	}

	err = r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND instructor_id = ?", id, instructorID).
		Updates(update).Error
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id, instructorID)
}

func (r *GormBookingRepository) AttachCalendarEvent(ctx context.Context, id uuid.UUID, eventID string) error {
	return r.updateColumns(ctx, id, map[string]any{"calendar_event_id": eventID})
}

func (r *GormBookingRepository) DetachCalendarEvent(ctx context.Context, id uuid.UUID, eventID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND calendar_event_id = ?", id, eventID).
		Update("calendar_event_id", nil).Error
}

func (r *GormBookingRepository) AttachPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	return r.updateColumns(ctx, id, map[string]any{"payment_intent_id": intentID})
}

func (r *GormBookingRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	return r.updateColumns(ctx, id, map[string]any{"payment_status": status})
}

func (r *GormBookingRepository) updateColumns(ctx context.Context, id uuid.UUID, update map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Updates(update)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormBookingRepository) LockInstructor(ctx context.Context, instructorID uuid.UUID) error {
	var in model.Instructor
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&in, "id = ?", instructorID).Error
	return notFound(err)
}

func (r *GormBookingRepository) LockForTransition(ctx context.Context, id, instructorID uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ? AND instructor_id = ?", id, instructorID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *GormBookingRepository) LockOverlapping(
	ctx context.Context,
	instructorID uuid.UUID,
	start, end time.Time,
) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("instructor_id = ? AND status NOT IN ?", instructorID, model.TerminalStatuses).
		Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC()).
		Order("id").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) Transaction(ctx context.Context, fn func(tx BookingRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormBookingRepository{db: tx})
	})
}

func (r *GormBookingRepository) ListByInstructorRange(
	ctx context.Context,
	instructorID uuid.UUID,
	from, to time.Time,
	limit, offset int,
) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("instructor_id = ?", instructorID).
		Where("start_time < ? AND end_time > ?", to.UTC(), from.UTC())

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("start_time ASC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *GormBookingRepository) ListExpiredProposals(ctx context.Context, before time.Time, limit int) ([]model.Booking, error) {
	var bookings []model.Booking
	q := r.db.WithContext(ctx).
		Where("status = ? AND start_time <= ?", model.BookingStatusProposed, before.UTC()).
		Order("start_time ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ConflictsWith отбирает из locked блокирующие бронирования, пересекающие tr, кроме самого self.
func ConflictsWith(self uuid.UUID, tr calendar.TimeRange, locked []model.Booking) []model.Booking {
	var out []model.Booking
	for _, b := range locked {
		if b.ID == self || !lifecycle.IsBlocking(b.Status) {
			continue
		}
		if tr.Overlaps(calendar.TimeRange{Start: b.StartTime, End: b.EndTime}) {
			out = append(out, b)
		}
	}
	return out
}

// NewConflictError собирает ошибку пересечения по найденным бронированиям.
func NewConflictError(instructorID uuid.UUID, start, end time.Time, busy []model.Booking) *AvailabilityConflictError {
	ids := make([]uuid.UUID, 0, len(busy))
	for _, b := range busy {
		ids = append(ids, b.ID)
	}
	return &AvailabilityConflictError{
		InstructorID: instructorID,
		Start:        start,
		End:          end,
		Conflicts:    ids,
	}
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Leganyst/lesson-booking/internal/audit"
	"github.com/Leganyst/lesson-booking/internal/lifecycle"
	"github.com/Leganyst/lesson-booking/internal/repository"
)

const defaultSweepBatch = 100

// ExpirySweeper периодически переводит в expired предложения, время начала
// которых уже прошло.
type ExpirySweeper struct {
	svc      *BookingService
	bookings repository.BookingRepository
	interval time.Duration
	batch    int
	now      func() time.Time
	logger   *slog.Logger
}

func NewExpirySweeper(
	svc *BookingService,
	bookings repository.BookingRepository,
	interval time.Duration,
	logger *slog.Logger,
) *ExpirySweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpirySweeper{
		svc:      svc,
		bookings: bookings,
		interval: interval,
		batch:    defaultSweepBatch,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With("component", "expiry_sweeper"),
	}
}

// Run блокируется до отмены ctx. Нулевой интервал выключает sweeper.
func (w *ExpirySweeper) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("expiry sweeper disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.SweepOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.ErrorContext(ctx, "expiry sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce обрабатывает одну пачку и возвращает число истёкших бронирований.
func (w *ExpirySweeper) SweepOnce(ctx context.Context) (int, error) {
	due, err := w.bookings.ListExpiredProposals(ctx, w.now(), w.batch)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, b := range due {
		_, err := w.svc.ExpireBooking(ctx, ExpireInput{
			BookingID:    b.ID,
			InstructorID: b.InstructorID,
			Actor:        audit.ActorSystem,
			Reason:       "start time passed",
		})

		var invalid *lifecycle.InvalidTransitionError
		switch {
		case err == nil:
			expired++
		case errors.As(err, &invalid):
			// успели подтвердить между выборкой и блокировкой
			continue
		default:
			if ctx.Err() != nil {
				return expired, ctx.Err()
			}
			w.logger.WarnContext(ctx, "expire booking failed", "booking_id", b.ID, "error", err)
		}
	}

	if expired > 0 {
		w.logger.InfoContext(ctx, "proposals expired", "count", expired)
	}
	return expired, nil
}

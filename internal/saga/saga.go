// Package saga хранит стек компенсаций для внешних эффектов,
// которые нельзя включить в транзакцию БД.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/Leganyst/lesson-booking/internal/saga")

// Compensation отменяет один завершённый шаг.
type Compensation func(ctx context.Context) error

type step struct {
	name string
	undo Compensation
}

// CompensationError: компенсация не удалась, эффект шага Step
// может остаться во внешней системе.
type CompensationError struct {
	Saga string
	Step string
	Err  error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("saga %s: compensate %s: %v", e.Saga, e.Step, e.Err)
}

func (e *CompensationError) Unwrap() error { return e.Err }

// Saga не потокобезопасна: один экземпляр на один запрос.
type Saga struct {
	name    string
	timeout time.Duration
	logger  *slog.Logger
	steps   []step
}

// New создаёт сагу. timeout ограничивает каждую компенсацию, ноль: без ограничения.
func New(name string, timeout time.Duration, logger *slog.Logger) *Saga {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saga{name: name, timeout: timeout, logger: logger}
}

// Push запоминает отмену только что выполненного шага.
func (s *Saga) Push(name string, undo Compensation) {
	s.steps = append(s.steps, step{name: name, undo: undo})
}

// Len: число ожидающих компенсаций.
func (s *Saga) Len() int { return len(s.steps) }

// Compensate выполняет компенсации в обратном порядке. Сбой одной не
// останавливает остальные, ошибки объединяются.
// Отмена контекста вызывающего очистку не прерывает.
func (s *Saga) Compensate(ctx context.Context) error {
	base := context.WithoutCancel(ctx)

	var errs []error
	for i := len(s.steps) - 1; i >= 0; i-- {
		st := s.steps[i]
		if err := s.run(base, st); err != nil {
			errs = append(errs, &CompensationError{Saga: s.name, Step: st.name, Err: err})
		}
	}
	s.steps = nil

	return errors.Join(errs...)
}

func (s *Saga) run(ctx context.Context, st step) error {
	ctx, span := tracer.Start(ctx, "saga.compensate")
	defer span.End()
	span.SetAttributes(
		attribute.String("saga.name", s.name),
		attribute.String("saga.step", st.name),
	)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := st.undo(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "saga compensation failed",
			"saga", s.name,
			"step", st.name,
			"error", err,
		)
		return err
	}

	s.logger.InfoContext(ctx, "saga step compensated",
		"saga", s.name,
		"step", st.name,
	)
	return nil
}

// Fail выполняет компенсации и возвращает cause вместе с их ошибками;
// errors.Is/As по-прежнему находят cause.
func (s *Saga) Fail(ctx context.Context, cause error) error {
	if len(s.steps) == 0 {
		return cause
	}
	if err := s.Compensate(ctx); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

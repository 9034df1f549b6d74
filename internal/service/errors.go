package service

import (
	"errors"
	"fmt"

	"github.com/Leganyst/lesson-booking/internal/repository"
)

var (
	// ErrBookingNotFound: бронирования нет или оно принадлежит другому инструктору.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrValidation оборачивает любые ошибки входных данных.
	ErrValidation = errors.New("validation failed")
	// ErrCalendarNotConnected: у инструктора нет подключённого календаря.
	ErrCalendarNotConnected = errors.New("instructor calendar is not connected")
	// ErrPaymentsDisabled: платёжный провайдер не настроен.
	ErrPaymentsDisabled = errors.New("payment provider is not configured")
)

// AdapterError: сбой внешнего календаря или платёжного провайдера.
// Таймаут считается таким же сбоем.
type AdapterError struct {
	Adapter string
	Op      string
	Err     error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s adapter %s: %v", e.Adapter, e.Op, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

func calendarError(op string, err error) error {
	return &AdapterError{Adapter: "calendar", Op: op, Err: err}
}

func paymentError(op string, err error) error {
	return &AdapterError{Adapter: "payment", Op: op, Err: err}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// mapStoreError переводит ошибки хранилища в ошибки сервиса.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrBookingNotFound, err)
	case errors.Is(err, repository.ErrInvalidPatch):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	default:
		return err
	}
}

package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound: записи нет или она принадлежит другому инструктору.
var ErrNotFound = errors.New("record not found")

// ErrInvalidPatch: частичное обновление нарушает инварианты бронирования.
var ErrInvalidPatch = errors.New("invalid booking patch")

// AvailabilityConflictError: интервал пересекается с занятыми бронированиями инструктора.
type AvailabilityConflictError struct {
	InstructorID uuid.UUID
	Start        time.Time
	End          time.Time
	Conflicts    []uuid.UUID
}

func (e *AvailabilityConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicts))
	for _, id := range e.Conflicts {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf(
		"availability conflict: instructor %s is busy between %s and %s (bookings: %s)",
		e.InstructorID,
		e.Start.UTC().Format(time.RFC3339),
		e.End.UTC().Format(time.RFC3339),
		strings.Join(ids, ", "),
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

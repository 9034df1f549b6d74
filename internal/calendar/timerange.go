package calendar

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrRangeTooLong     = errors.New("time range exceeds maximum duration")
)

// TimeRange представляет временной интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange создаёт интервал в UTC и проверяет, что Start < End.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, ErrInvalidTimeRange
	}
	start, end = start.UTC(), end.UTC()
	if !end.After(start) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// ValidateLesson проверяет интервал занятия: Start < End и длительность не больше maxDuration.
// Если maxDuration <= 0, ограничение по длительности не применяется.
func ValidateLesson(start, end time.Time, maxDuration time.Duration) (TimeRange, error) {
	tr, err := NewTimeRange(start, end)
	if err != nil {
		return TimeRange{}, err
	}
	if maxDuration > 0 && tr.Duration() > maxDuration {
		return TimeRange{}, ErrRangeTooLong
	}
	return tr, nil
}

func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// Overlaps проверяет пересечение полуоткрытых интервалов; касание концами пересечением не считается.
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.Start.Before(other.End) && other.Start.Before(tr.End)
}

// FormatSlotForUser форматирует интервал в человекочитаемую строку,
// например "Wednesday, 01.01.2025, 10:00–11:00".
// Если loc != nil, время переводится в указанный часовой пояс.
// Если includeID = true, в конце добавляется идентификатор в скобках.
func FormatSlotForUser(
	tr TimeRange,
	loc *time.Location,
	includeID bool,
	id string,
) string {
	start := tr.Start
	end := tr.End

	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}

	base := fmt.Sprintf("%s, %s, %s–%s",
		start.Weekday(),
		start.Format("02.01.2006"),
		start.Format("15:04"),
		end.Format("15:04"),
	)

	if includeID && id != "" {
		return fmt.Sprintf("%s (ID: %s)", base, id)
	}

	return base
}

// Package lifecycle описывает допустимые переходы статусов бронирования.
// Пакет не выполняет ввод-вывод.
package lifecycle

import (
	"fmt"
	"strings"

	"github.com/Leganyst/lesson-booking/internal/model"
)

// InvalidTransitionError возвращается для любой пары статусов вне таблицы переходов.
type InvalidTransitionError struct {
	From model.BookingStatus
	To   model.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	next := Allowed(e.From)
	if len(next) == 0 {
		return fmt.Sprintf("invalid booking transition %q -> %q: %s is final", e.From, e.To, e.From)
	}
	names := make([]string, 0, len(next))
	for _, st := range next {
		names = append(names, string(st))
	}
	return fmt.Sprintf("invalid booking transition %q -> %q (allowed: %s)", e.From, e.To, strings.Join(names, ", "))
}

var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.BookingStatusDraft:     {model.BookingStatusProposed},
	model.BookingStatusProposed:  {model.BookingStatusConfirmed, model.BookingStatusExpired},
	model.BookingStatusConfirmed: {model.BookingStatusCancelled, model.BookingStatusModified},
	model.BookingStatusModified:  {model.BookingStatusCancelled},
}

// Transition возвращает новый статус, если переход from -> to разрешён.
func Transition(from, to model.BookingStatus) (model.BookingStatus, error) {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return to, nil
		}
	}
	return from, &InvalidTransitionError{From: from, To: to}
}

// Allowed возвращает копию списка статусов, достижимых из from.
func Allowed(from model.BookingStatus) []model.BookingStatus {
	out := make([]model.BookingStatus, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

func IsTerminal(s model.BookingStatus) bool {
	return contains(model.TerminalStatuses, s)
}

// IsBlocking сообщает, занимает ли бронирование в статусе s время инструктора.
func IsBlocking(s model.BookingStatus) bool {
	return contains(model.BlockingStatuses, s)
}

// IsInitial: статусы, в которых бронирование может быть создано.
func IsInitial(s model.BookingStatus) bool {
	return s == model.BookingStatusDraft || s == model.BookingStatusProposed
}

func contains(list []model.BookingStatus, s model.BookingStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

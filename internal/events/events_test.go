package events

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Leganyst/lesson-booking/internal/model"
)

func TestRoutingKey(t *testing.T) {
	for _, st := range model.AllBookingStatuses() {
		key := RoutingKey(st)
		if !strings.HasPrefix(key, "booking.") || !strings.HasSuffix(key, string(st)) {
			t.Fatalf("unexpected routing key %q for %s", key, st)
		}
	}
}

func TestBookingTransition_OmitsEmptyPreviousState(t *testing.T) {
	body, err := json.Marshal(BookingTransition{
		BookingID:    "b-1",
		InstructorID: "i-1",
		NewState:     "draft",
		Actor:        "system",
		OccurredAt:   time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(body), "previous_state") {
		t.Fatalf("expected previous_state to be omitted for creation, got %s", body)
	}
}

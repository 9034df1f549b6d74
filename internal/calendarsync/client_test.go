package calendarsync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/lesson-booking/internal/model"
)

func testConn() model.CalendarConnection {
	return model.CalendarConnection{
		InstructorID: uuid.New(),
		CalendarID:   "primary",
		AccessToken:  "secret-token",
		TimeZone:     "Europe/Zurich",
	}
}

func testEvent() Event {
	start := time.Date(2030, 1, 15, 9, 0, 0, 0, time.UTC)
	return Event{Summary: "Ski lesson: Marco", Start: start, End: start.Add(2 * time.Hour), TimeZone: "UTC"}
}

func TestCreateEvent_SendsBearerAndReturnsID(t *testing.T) {
	var gotBody eventBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/calendars/primary/events" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"evt-123"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	id, err := c.CreateEvent(context.Background(), testConn(), testEvent())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if id != "evt-123" {
		t.Fatalf("expected evt-123, got %q", id)
	}
	if gotBody.Summary != "Ski lesson: Marco" || gotBody.Start.DateTime != "2030-01-15T09:00:00Z" {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
}

func TestUpdateEvent_UsesPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/calendars/primary/events/evt-1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"evt-1"}`))
	}))
	defer srv.Close()

	if err := NewClient(srv.URL, time.Second).UpdateEvent(context.Background(), testConn(), "evt-1", testEvent()); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
}

func TestDeleteEvent_MissingIsSuccess(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusNotFound, http.StatusGone} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("unexpected method %s", r.Method)
			}
			w.WriteHeader(status)
		}))

		err := NewClient(srv.URL, time.Second).DeleteEvent(context.Background(), testConn(), "evt-1")
		srv.Close()
		if err != nil {
			t.Fatalf("status %d: expected success, got %v", status, err)
		}
	}
}

func TestDeleteEvent_ServerErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).DeleteEvent(context.Background(), testConn(), "evt-1")

	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if cerr.StatusCode != http.StatusInternalServerError || cerr.Op != "delete_event" {
		t.Fatalf("unexpected error: %+v", cerr)
	}
	if !strings.Contains(cerr.Error(), "backend error") {
		t.Fatalf("expected provider message in error, got %q", cerr.Error())
	}
}

func TestCreateEvent_TimeoutIsFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 30*time.Millisecond).CreateEvent(context.Background(), testConn(), testEvent())

	var cerr *Error
	if !errors.As(err, &cerr) || !cerr.Timeout() {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestCreateEvent_RequiresConnection(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)

	_, err := c.CreateEvent(context.Background(), model.CalendarConnection{CalendarID: "primary"}, testEvent())
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestEventForBooking_UsesCalendarZone(t *testing.T) {
	party := 2
	level := "intermediate"
	b := &model.Booking{
		ID:           uuid.New(),
		CustomerName: "Marco",
		PartySize:    &party,
		SkillLevel:   &level,
		StartTime:    time.Date(2030, 1, 15, 9, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2030, 1, 15, 11, 0, 0, 0, time.UTC),
	}

	ev := EventForBooking(b, testConn())

	if ev.Summary != "Ski lesson: Marco" {
		t.Fatalf("unexpected summary %q", ev.Summary)
	}
	if ev.TimeZone != "Europe/Zurich" || ev.Start.Hour() != 10 {
		t.Fatalf("expected Zurich local 10:00, got %s %v", ev.TimeZone, ev.Start)
	}
	for _, want := range []string{"10:00–12:00", "Party size: 2", "Skill level: intermediate", b.ID.String()} {
		if !strings.Contains(ev.Description, want) {
			t.Fatalf("description %q lacks %q", ev.Description, want)
		}
	}
}

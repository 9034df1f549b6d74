package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/Leganyst/lesson-booking/internal/events"
	"github.com/Leganyst/lesson-booking/internal/model"
)

type memStore struct {
	mu   sync.Mutex
	rows []model.AuditLog
	err  error
}

func (s *memStore) Create(_ context.Context, entry *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, *entry)
	return nil
}

type published struct {
	key  string
	body events.BookingTransition
}

type memPublisher struct {
	msgs []published
	err  error
}

func (p *memPublisher) PublishJSON(_ context.Context, key string, v any) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{key: key, body: v.(events.BookingTransition)})
	return nil
}

func TestRecord_StoresAndPublishes(t *testing.T) {
	store := &memStore{}
	pub := &memPublisher{}
	r := NewRecorder(store, slog.Default(), WithPublisher(pub))

	bookingID := uuid.New()
	r.Record(context.Background(), Entry{
		BookingID:     bookingID,
		InstructorID:  uuid.New(),
		PreviousState: model.BookingStatusProposed,
		NewState:      model.BookingStatusConfirmed,
		Actor:         "instructor:anna",
		Metadata:      map[string]any{"calendar_event_id": "evt-1"},
	})

	if len(store.rows) != 1 {
		t.Fatalf("expected one audit row, got %d", len(store.rows))
	}
	row := store.rows[0]
	if row.PreviousState != model.BookingStatusProposed || row.NewState != model.BookingStatusConfirmed {
		t.Fatalf("unexpected states: %s -> %s", row.PreviousState, row.NewState)
	}
	if row.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be filled")
	}
	var meta map[string]any
	if err := json.Unmarshal(row.Metadata, &meta); err != nil || meta["calendar_event_id"] != "evt-1" {
		t.Fatalf("unexpected metadata %s (err %v)", row.Metadata, err)
	}

	if len(pub.msgs) != 1 || pub.msgs[0].key != "booking.confirmed" {
		t.Fatalf("expected booking.confirmed message, got %+v", pub.msgs)
	}
	if pub.msgs[0].body.BookingID != bookingID.String() {
		t.Fatalf("unexpected message body: %+v", pub.msgs[0].body)
	}
}

func TestRecord_DefaultsActorToSystem(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store, nil)

	r.Record(context.Background(), Entry{BookingID: uuid.New(), NewState: model.BookingStatusExpired})

	if store.rows[0].Actor != ActorSystem {
		t.Fatalf("expected actor %q, got %q", ActorSystem, store.rows[0].Actor)
	}
}

func TestRecord_StoreFailureIsLoggedNotPublished(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	store := &memStore{err: errors.New("db is down")}
	pub := &memPublisher{}
	r := NewRecorder(store, logger, WithPublisher(pub))

	r.Record(context.Background(), Entry{BookingID: uuid.New(), NewState: model.BookingStatusCancelled})

	if !strings.Contains(buf.String(), "audit write failed") {
		t.Fatalf("expected failure to be logged, got %q", buf.String())
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("expected no event for an unstored entry")
	}
}

func TestRecord_PublishFailureIsSwallowed(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	store := &memStore{}
	r := NewRecorder(store, logger, WithPublisher(&memPublisher{err: errors.New("broker gone")}))

	r.Record(context.Background(), Entry{BookingID: uuid.New(), NewState: model.BookingStatusDraft})

	if len(store.rows) != 1 {
		t.Fatalf("expected row to be stored despite publish failure")
	}
	if !strings.Contains(buf.String(), "booking event publish failed") {
		t.Fatalf("expected publish failure to be logged, got %q", buf.String())
	}
}

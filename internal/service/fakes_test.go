package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/lesson-booking/internal/audit"
	"github.com/Leganyst/lesson-booking/internal/calendarsync"
	"github.com/Leganyst/lesson-booking/internal/db"
	"github.com/Leganyst/lesson-booking/internal/model"
	"github.com/Leganyst/lesson-booking/internal/repository"
)

// fakeCalendar keeps events in memory and counts calls.
type fakeCalendar struct {
	mu      sync.Mutex
	events  map[string]calendarsync.Event
	seq     int
	creates int
	updates int
	deletes int

	createErr error
	updateErr error
	deleteErr error
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{events: map[string]calendarsync.Event{}}
}

func (c *fakeCalendar) CreateEvent(_ context.Context, _ model.CalendarConnection, ev calendarsync.Event) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creates++
	if c.createErr != nil {
		return "", c.createErr
	}
	c.seq++
	id := fmt.Sprintf("evt-%d", c.seq)
	c.events[id] = ev
	return id, nil
}

func (c *fakeCalendar) UpdateEvent(_ context.Context, _ model.CalendarConnection, eventID string, ev calendarsync.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates++
	if c.updateErr != nil {
		return c.updateErr
	}
	if _, ok := c.events[eventID]; !ok {
		return errors.New("event not found")
	}
	c.events[eventID] = ev
	return nil
}

func (c *fakeCalendar) DeleteEvent(_ context.Context, _ model.CalendarConnection, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	if c.deleteErr != nil {
		return c.deleteErr
	}
	delete(c.events, eventID)
	return nil
}

func (c *fakeCalendar) liveEvents() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *fakeCalendar) event(id string) (calendarsync.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.events[id]
	return ev, ok
}

type fakePayments struct {
	status model.PaymentStatus
	err    error
	calls  int
}

func (p *fakePayments) GetPaymentIntent(context.Context, string) (model.PaymentStatus, error) {
	p.calls++
	return p.status, p.err
}

// failingBookings injects store failures into the saga steps.
type failingBookings struct {
	repository.BookingRepository

	attachErr  error
	statusErr  error
	failStatus model.BookingStatus
}

func (f *failingBookings) AttachCalendarEvent(ctx context.Context, id uuid.UUID, eventID string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	return f.BookingRepository.AttachCalendarEvent(ctx, id, eventID)
}

func (f *failingBookings) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	if f.statusErr != nil && status == f.failStatus {
		return f.statusErr
	}
	return f.BookingRepository.UpdateStatus(ctx, id, status)
}

func (f *failingBookings) Transaction(ctx context.Context, fn func(tx repository.BookingRepository) error) error {
	return f.BookingRepository.Transaction(ctx, func(tx repository.BookingRepository) error {
		return fn(&failingBookings{
			BookingRepository: tx,
			attachErr:         f.attachErr,
			statusErr:         f.statusErr,
			failStatus:        f.failStatus,
		})
	})
}

type testEnv struct {
	db       *gorm.DB
	bookings *repository.GormBookingRepository
	audits   *repository.GormAuditRepository
	calendar *fakeCalendar
	payments *fakePayments
	svc      *BookingService

	instructor *model.Instructor
}

type envOption func(*Deps)

func withBookings(wrap func(repository.BookingRepository) repository.BookingRepository) envOption {
	return func(d *Deps) { d.Bookings = wrap(d.Bookings) }
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	gdb, err := db.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{
		db:       gdb,
		bookings: repository.NewGormBookingRepository(gdb),
		audits:   repository.NewGormAuditRepository(gdb),
		calendar: newFakeCalendar(),
		payments: &fakePayments{status: model.PaymentStatusPending},
	}

	ctx := context.Background()
	env.instructor = &model.Instructor{DisplayName: "Anna", TimeZone: "Europe/Zurich"}
	if err := repository.NewGormInstructorRepository(gdb).Create(ctx, env.instructor); err != nil {
		t.Fatalf("create instructor: %v", err)
	}
	connectCalendar(t, gdb, env.instructor.ID)

	deps := Deps{
		Bookings:       env.bookings,
		Instructors:    repository.NewGormInstructorRepository(gdb),
		Customers:      repository.NewGormCustomerRepository(gdb),
		Connections:    repository.NewGormCalendarConnectionRepository(gdb),
		Calendar:       env.calendar,
		Payments:       env.payments,
		Audit:          audit.NewRecorder(env.audits, quietLogger()),
		Logger:         quietLogger(),
		AdapterTimeout: time.Second,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	env.svc = NewBookingService(deps)

	return env
}

func connectCalendar(t *testing.T, gdb *gorm.DB, instructorID uuid.UUID) {
	t.Helper()
	err := repository.NewGormCalendarConnectionRepository(gdb).Upsert(context.Background(), &model.CalendarConnection{
		InstructorID: instructorID,
		CalendarID:   "primary",
		AccessToken:  "token",
		TimeZone:     "Europe/Zurich",
	})
	if err != nil {
		t.Fatalf("connect calendar: %v", err)
	}
}

func (e *testEnv) addInstructor(t *testing.T, connected bool) *model.Instructor {
	t.Helper()
	in := &model.Instructor{DisplayName: "Luca"}
	if err := repository.NewGormInstructorRepository(e.db).Create(context.Background(), in); err != nil {
		t.Fatalf("create instructor: %v", err)
	}
	if connected {
		connectCalendar(t, e.db, in.ID)
	}
	return in
}

// lesson returns a slot on a fixed future day.
func lesson(startHour, endHour int) (time.Time, time.Time) {
	day := time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)
	return day.Add(time.Duration(startHour) * time.Hour), day.Add(time.Duration(endHour) * time.Hour)
}

func (e *testEnv) create(t *testing.T, instructorID uuid.UUID, status model.BookingStatus, startHour, endHour int) *model.Booking {
	t.Helper()
	start, end := lesson(startHour, endHour)
	b, err := e.svc.CreateBooking(context.Background(), CreateBookingInput{
		InstructorID:  instructorID,
		CustomerName:  "Marco",
		StartTime:     start,
		EndTime:       end,
		AmountCents:   12000,
		Currency:      "chf",
		InitialStatus: status,
		Actor:         "inbox",
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	return b
}

func (e *testEnv) confirmed(t *testing.T, startHour, endHour int) *model.Booking {
	t.Helper()
	return e.confirm(t, e.create(t, e.instructor.ID, model.BookingStatusProposed, startHour, endHour))
}

func (e *testEnv) confirm(t *testing.T, b *model.Booking) *model.Booking {
	t.Helper()
	out, err := e.svc.ConfirmBooking(context.Background(), ConfirmInput{
		BookingID:    b.ID,
		InstructorID: e.instructor.ID,
		Actor:        "instructor",
	})
	if err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	return out
}

func (e *testEnv) reload(t *testing.T, b *model.Booking) *model.Booking {
	t.Helper()
	got, err := e.bookings.GetByID(context.Background(), b.ID, b.InstructorID)
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	return got
}

func (e *testEnv) auditRows(t *testing.T, b *model.Booking) []model.AuditLog {
	t.Helper()
	rows, err := e.audits.ListByBooking(context.Background(), b.ID, b.InstructorID)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	return rows
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	bookingpb "github.com/Leganyst/lesson-booking/internal/api/booking/v1"
	"github.com/Leganyst/lesson-booking/internal/lifecycle"
	"github.com/Leganyst/lesson-booking/internal/model"
	"github.com/Leganyst/lesson-booking/internal/repository"
)

// BookingGRPCServer: входной gRPC-триггер поверх BookingService.
type BookingGRPCServer struct {
	bookingpb.UnimplementedBookingServiceServer

	svc    *BookingService
	logger *slog.Logger
}

func NewBookingGRPCServer(svc *BookingService, logger *slog.Logger) *BookingGRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingGRPCServer{svc: svc, logger: logger.With("component", "booking_grpc")}
}

func (s *BookingGRPCServer) CreateBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := request(req)
	in := CreateBookingInput{
		InstructorID:   r.uuid("instructor_id"),
		CustomerID:     r.optUUID("customer_id"),
		CustomerName:   r.str("customer_name"),
		PartySize:      r.optInt("party_size"),
		SkillLevel:     r.optStr("skill_level"),
		StartTime:      r.time("start_time"),
		EndTime:        r.time("end_time"),
		AmountCents:    r.integer("amount_cents"),
		Currency:       r.str("currency"),
		InitialStatus:  r.status("status"),
		IdempotencyKey: r.str("idempotency_key"),
		Notes:          r.str("notes"),
		Actor:          r.str("actor"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return s.reply(ctx, "CreateBooking")(s.svc.CreateBooking(ctx, in))
}

func (s *BookingGRPCServer) GetBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := request(req)
	id, instructorID := r.uuid("booking_id"), r.uuid("instructor_id")
	if err := r.err(); err != nil {
		return nil, err
	}
	return s.reply(ctx, "GetBooking")(s.svc.GetBooking(ctx, id, instructorID))
}

func (s *BookingGRPCServer) UpdateBookingDetails(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := request(req)
	id, instructorID := r.uuid("booking_id"), r.uuid("instructor_id")
	patch := repository.BookingPatch{
		CustomerName: r.optStr("customer_name"),
		PartySize:    r.optInt("party_size"),
		SkillLevel:   r.optStr("skill_level"),
		StartTime:    r.optTime("start_time"),
		EndTime:      r.optTime("end_time"),
		AmountCents:  r.optInt64("amount_cents"),
		Currency:     r.optStr("currency"),
		Notes:        r.optStr("notes"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return s.reply(ctx, "UpdateBookingDetails")(s.svc.UpdateBookingDetails(ctx, id, instructorID, patch))
}

func (s *BookingGRPCServer) ProposeBookingSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := request(req)
	in := ProposeInput{
		BookingID:    r.uuid("booking_id"),
		InstructorID: r.uuid("instructor_id"),
		StartTime:    r.optTime("start_time"),
		EndTime:      r.optTime("end_time"),
		Actor:        r.str("actor"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return s.reply(ctx, "ProposeBookingSlots")(s.svc.ProposeBookingSlots(ctx, in))
}

func (s *BookingGRPCServer) ConfirmBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := request(req)
	in := ConfirmInput{
		BookingID:       r.uuid("booking_id"),
		InstructorID:    r.uuid("instructor_id"),
		PaymentIntentID: r.str("payment_intent_id"),
		Actor:           r.str("actor"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return s.reply(ctx, "ConfirmBooking")(s.svc.ConfirmBooking(ctx, in))
}

func (s *BookingGRPCServer) CancelBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := request(req)
	in := CancelInput{
		BookingID:    r.uuid("booking_id"),
		InstructorID: r.uuid("instructor_id"),
		Reason:       r.str("reason"),
		Actor:        r.str("actor"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return s.reply(ctx, "CancelBooking")(s.svc.CancelBooking(ctx, in))
}

func (s *BookingGRPCServer) ExpireBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := request(req)
	in := ExpireInput{
		BookingID:    r.uuid("booking_id"),
		InstructorID: r.uuid("instructor_id"),
		Reason:       r.str("reason"),
		Actor:        r.str("actor"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return s.reply(ctx, "ExpireBooking")(s.svc.ExpireBooking(ctx, in))
}

func (s *BookingGRPCServer) ModifyBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := request(req)
	in := ModifyInput{
		BookingID:    r.uuid("booking_id"),
		InstructorID: r.uuid("instructor_id"),
		NewStart:     r.time("start_time"),
		NewEnd:       r.time("end_time"),
		Actor:        r.str("actor"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return s.reply(ctx, "ModifyBooking")(s.svc.ModifyBooking(ctx, in))
}

func (s *BookingGRPCServer) SyncPaymentStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := request(req)
	id, instructorID := r.uuid("booking_id"), r.uuid("instructor_id")
	if err := r.err(); err != nil {
		return nil, err
	}
	return s.reply(ctx, "SyncPaymentStatus")(s.svc.SyncPaymentStatus(ctx, id, instructorID))
}

func (s *BookingGRPCServer) reply(ctx context.Context, method string) func(*model.Booking, error) (*structpb.Struct, error) {
	return func(b *model.Booking, err error) (*structpb.Struct, error) {
		if err != nil {
			st := grpcStatus(err)
			if st.Code() == codes.Internal || st.Code() == codes.Unavailable {
				s.logger.ErrorContext(ctx, "rpc failed", "method", method, "error", err)
			}
			return nil, st.Err()
		}
		out, err := bookingToStruct(b)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode booking: %v", err)
		}
		return out, nil
	}
}

// grpcStatus переводит ошибки сервиса в коды gRPC.
func grpcStatus(err error) *status.Status {
	var (
		invalid  *lifecycle.InvalidTransitionError
		conflict *repository.AvailabilityConflictError
		adapter  *AdapterError
	)
	switch {
	case errors.Is(err, ErrBookingNotFound):
		return status.New(codes.NotFound, err.Error())
	case errors.Is(err, ErrValidation):
		return status.New(codes.InvalidArgument, err.Error())
	case errors.As(err, &invalid), errors.Is(err, ErrCalendarNotConnected):
		return status.New(codes.FailedPrecondition, err.Error())
	case errors.As(err, &conflict):
		return status.New(codes.Aborted, err.Error())
	case errors.As(err, &adapter), errors.Is(err, ErrPaymentsDisabled):
		return status.New(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.New(codes.Canceled, err.Error())
	default:
		return status.New(codes.Internal, err.Error())
	}
}

func bookingToStruct(b *model.Booking) (*structpb.Struct, error) {
	m := map[string]any{
		"id":             b.ID.String(),
		"instructor_id":  b.InstructorID.String(),
		"customer_name":  b.CustomerName,
		"start_time":     b.StartTime.UTC().Format(time.RFC3339),
		"end_time":       b.EndTime.UTC().Format(time.RFC3339),
		"amount_cents":   float64(b.AmountCents),
		"currency":       b.Currency,
		"payment_status": string(b.PaymentStatus),
		"status":         string(b.Status),
		"notes":          b.Notes,
		"created_at":     b.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":     b.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if b.CustomerID != nil {
		m["customer_id"] = b.CustomerID.String()
	}
	if b.PartySize != nil {
		m["party_size"] = float64(*b.PartySize)
	}
	if b.SkillLevel != nil {
		m["skill_level"] = *b.SkillLevel
	}
	if b.CalendarEventID != nil {
		m["calendar_event_id"] = *b.CalendarEventID
	}
	if b.PaymentIntentID != nil {
		m["payment_intent_id"] = *b.PaymentIntentID
	}
	if b.IdempotencyKey != nil {
		m["idempotency_key"] = *b.IdempotencyKey
	}
	if b.CancelledAt != nil {
		m["cancelled_at"] = b.CancelledAt.UTC().Format(time.RFC3339)
	}
	return structpb.NewStruct(m)
}

// structReader читает поля Struct и копит первую ошибку разбора.
type structReader struct {
	fields map[string]*structpb.Value
	first  error
}

func request(req *structpb.Struct) *structReader {
	return &structReader{fields: req.GetFields()}
}

func (r *structReader) fail(field, format string, args ...any) {
	if r.first == nil {
		r.first = status.Errorf(codes.InvalidArgument, "%s: %s", field, fmt.Sprintf(format, args...))
	}
}

func (r *structReader) err() error { return r.first }

func (r *structReader) value(field string) (*structpb.Value, bool) {
	v, ok := r.fields[field]
	if !ok {
		return nil, false
	}
	if _, null := v.GetKind().(*structpb.Value_NullValue); null {
		return nil, false
	}
	return v, true
}

func (r *structReader) optStr(field string) *string {
	v, ok := r.value(field)
	if !ok {
		return nil
	}
	sv, isStr := v.GetKind().(*structpb.Value_StringValue)
	if !isStr {
		r.fail(field, "must be a string")
		return nil
	}
	return &sv.StringValue
}

func (r *structReader) str(field string) string {
	if p := r.optStr(field); p != nil {
		return *p
	}
	return ""
}

func (r *structReader) status(field string) model.BookingStatus {
	st := model.BookingStatus(r.str(field))
	if st != "" && !st.IsValid() {
		r.fail(field, "unknown status %q", st)
		return ""
	}
	return st
}

func (r *structReader) optUUID(field string) *uuid.UUID {
	p := r.optStr(field)
	if p == nil || *p == "" {
		return nil
	}
	id, err := uuid.Parse(*p)
	if err != nil {
		r.fail(field, "invalid uuid")
		return nil
	}
	return &id
}

func (r *structReader) uuid(field string) uuid.UUID {
	if p := r.optUUID(field); p != nil {
		return *p
	}
	r.fail(field, "is required")
	return uuid.Nil
}

func (r *structReader) optTime(field string) *time.Time {
	p := r.optStr(field)
	if p == nil || *p == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *p)
	if err != nil {
		r.fail(field, "must be RFC3339")
		return nil
	}
	return &t
}

func (r *structReader) time(field string) time.Time {
	if p := r.optTime(field); p != nil {
		return *p
	}
	r.fail(field, "is required")
	return time.Time{}
}

func (r *structReader) optInt64(field string) *int64 {
	v, ok := r.value(field)
	if !ok {
		return nil
	}
	nv, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum || nv.NumberValue != float64(int64(nv.NumberValue)) {
		r.fail(field, "must be an integer")
		return nil
	}
	n := int64(nv.NumberValue)
	return &n
}

func (r *structReader) integer(field string) int64 {
	if p := r.optInt64(field); p != nil {
		return *p
	}
	return 0
}

func (r *structReader) optInt(field string) *int {
	p := r.optInt64(field)
	if p == nil {
		return nil
	}
	n := int(*p)
	return &n
}

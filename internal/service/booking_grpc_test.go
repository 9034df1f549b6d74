package service

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	bookingpb "github.com/Leganyst/lesson-booking/internal/api/booking/v1"
	"github.com/Leganyst/lesson-booking/internal/model"
)

func newGRPCClient(t *testing.T, env *testEnv) bookingpb.BookingServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	bookingpb.RegisterBookingServiceServer(srv, NewBookingGRPCServer(env.svc, quietLogger()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return bookingpb.NewBookingServiceClient(conn)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("build struct: %v", err)
	}
	return s
}

func TestBookingGRPC_CreateProposeConfirm(t *testing.T) {
	env := newTestEnv(t)
	client := newGRPCClient(t, env)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start, end := lesson(10, 12)
	created, err := client.CreateBooking(ctx, mustStruct(t, map[string]any{
		"instructor_id":   env.instructor.ID.String(),
		"customer_name":   "Marco",
		"party_size":      2,
		"start_time":      start.Format(time.RFC3339),
		"end_time":        end.Format(time.RFC3339),
		"amount_cents":    12000,
		"currency":        "chf",
		"idempotency_key": "telegram:42",
		"actor":           "inbox",
	}))
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	fields := created.GetFields()
	if fields["status"].GetStringValue() != string(model.BookingStatusDraft) {
		t.Fatalf("expected draft, got %v", fields["status"])
	}
	if fields["party_size"].GetNumberValue() != 2 || fields["currency"].GetStringValue() != "CHF" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	id := fields["id"].GetStringValue()

	ref := map[string]any{"booking_id": id, "instructor_id": env.instructor.ID.String()}
	if _, err := client.ProposeBookingSlots(ctx, mustStruct(t, ref)); err != nil {
		t.Fatalf("ProposeBookingSlots: %v", err)
	}
	confirmed, err := client.ConfirmBooking(ctx, mustStruct(t, ref))
	if err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if confirmed.GetFields()["status"].GetStringValue() != string(model.BookingStatusConfirmed) {
		t.Fatalf("expected confirmed, got %v", confirmed.GetFields()["status"])
	}
	if confirmed.GetFields()["calendar_event_id"].GetStringValue() == "" {
		t.Fatalf("expected calendar_event_id in response")
	}
}

func TestBookingGRPC_ErrorCodes(t *testing.T) {
	env := newTestEnv(t)
	client := newGRPCClient(t, env)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := env.create(t, env.instructor.ID, model.BookingStatusProposed, 10, 12)
	overlapping := env.create(t, env.instructor.ID, model.BookingStatusProposed, 11, 13)
	env.confirm(t, first)
	draft := env.create(t, env.instructor.ID, model.BookingStatusDraft, 14, 15)
	instructor := env.instructor.ID.String()

	cases := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{
			name: "collision",
			call: func() error {
				_, err := client.ConfirmBooking(ctx, mustStruct(t, map[string]any{
					"booking_id": overlapping.ID.String(), "instructor_id": instructor,
				}))
				return err
			},
			want: codes.Aborted,
		},
		{
			name: "invalid transition",
			call: func() error {
				_, err := client.CancelBooking(ctx, mustStruct(t, map[string]any{
					"booking_id": draft.ID.String(), "instructor_id": instructor,
				}))
				return err
			},
			want: codes.FailedPrecondition,
		},
		{
			name: "not found",
			call: func() error {
				_, err := client.GetBooking(ctx, mustStruct(t, map[string]any{
					"booking_id": draft.ID.String(), "instructor_id": uuid.NewString(),
				}))
				return err
			},
			want: codes.NotFound,
		},
		{
			name: "malformed time",
			call: func() error {
				_, err := client.CreateBooking(ctx, mustStruct(t, map[string]any{
					"instructor_id": instructor, "start_time": "tomorrow", "end_time": "later",
				}))
				return err
			},
			want: codes.InvalidArgument,
		},
		{
			name: "unknown status",
			call: func() error {
				_, err := client.CreateBooking(ctx, mustStruct(t, map[string]any{
					"instructor_id": instructor,
					"customer_name": "Marco",
					"start_time":    "2030-01-16T10:00:00Z",
					"end_time":      "2030-01-16T11:00:00Z",
					"currency":      "CHF",
					"status":        "booked",
				}))
				return err
			},
			want: codes.InvalidArgument,
		},
		{
			name: "missing id",
			call: func() error {
				_, err := client.ExpireBooking(ctx, mustStruct(t, map[string]any{"instructor_id": instructor}))
				return err
			},
			want: codes.InvalidArgument,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if got := status.Code(err); got != tc.want {
				t.Fatalf("expected %s, got %s (%v)", tc.want, got, err)
			}
		})
	}
}

func TestGRPCStatus_AdapterErrorIsUnavailable(t *testing.T) {
	err := calendarError("create_event", context.DeadlineExceeded)
	if got := grpcStatus(err).Code(); got != codes.Unavailable {
		t.Fatalf("expected Unavailable, got %s", got)
	}
	if got := grpcStatus(ErrPaymentsDisabled).Code(); got != codes.Unavailable {
		t.Fatalf("expected Unavailable for disabled payments, got %s", got)
	}
}

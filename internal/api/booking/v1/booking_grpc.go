// Package bookingv1 описывает gRPC-контракт booking.v1.BookingService.
// Запросы и ответы: google.protobuf.Struct, время передаётся строкой RFC3339.
package bookingv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "booking.v1.BookingService"

const (
	BookingService_CreateBooking_FullMethodName        = "/booking.v1.BookingService/CreateBooking"
	BookingService_GetBooking_FullMethodName           = "/booking.v1.BookingService/GetBooking"
	BookingService_UpdateBookingDetails_FullMethodName = "/booking.v1.BookingService/UpdateBookingDetails"
	BookingService_ProposeBookingSlots_FullMethodName  = "/booking.v1.BookingService/ProposeBookingSlots"
	BookingService_ConfirmBooking_FullMethodName       = "/booking.v1.BookingService/ConfirmBooking"
	BookingService_CancelBooking_FullMethodName        = "/booking.v1.BookingService/CancelBooking"
	BookingService_ExpireBooking_FullMethodName        = "/booking.v1.BookingService/ExpireBooking"
	BookingService_ModifyBooking_FullMethodName        = "/booking.v1.BookingService/ModifyBooking"
	BookingService_SyncPaymentStatus_FullMethodName    = "/booking.v1.BookingService/SyncPaymentStatus"
)

// BookingServiceClient: клиентский API BookingService.
type BookingServiceClient interface {
	CreateBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateBookingDetails(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ProposeBookingSlots(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ConfirmBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CancelBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ExpireBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ModifyBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SyncPaymentStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type bookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) BookingServiceClient {
	return &bookingServiceClient{cc}
}

func (c *bookingServiceClient) call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *bookingServiceClient) CreateBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, BookingService_CreateBooking_FullMethodName, in, opts...)
}

func (c *bookingServiceClient) GetBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, BookingService_GetBooking_FullMethodName, in, opts...)
}

func (c *bookingServiceClient) UpdateBookingDetails(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, BookingService_UpdateBookingDetails_FullMethodName, in, opts...)
}

func (c *bookingServiceClient) ProposeBookingSlots(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, BookingService_ProposeBookingSlots_FullMethodName, in, opts...)
}

func (c *bookingServiceClient) ConfirmBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, BookingService_ConfirmBooking_FullMethodName, in, opts...)
}

func (c *bookingServiceClient) CancelBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, BookingService_CancelBooking_FullMethodName, in, opts...)
}

func (c *bookingServiceClient) ExpireBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, BookingService_ExpireBooking_FullMethodName, in, opts...)
}

func (c *bookingServiceClient) ModifyBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, BookingService_ModifyBooking_FullMethodName, in, opts...)
}

func (c *bookingServiceClient) SyncPaymentStatus(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, BookingService_SyncPaymentStatus_FullMethodName, in, opts...)
}

// BookingServiceServer: серверный API BookingService.
// Реализации должны встраивать UnimplementedBookingServiceServer.
type BookingServiceServer interface {
	CreateBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateBookingDetails(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ProposeBookingSlots(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExpireBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ModifyBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SyncPaymentStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedBookingServiceServer()
}

// UnimplementedBookingServiceServer встраивается по значению.
type UnimplementedBookingServiceServer struct{}

func (UnimplementedBookingServiceServer) CreateBooking(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateBooking not implemented")
}
func (UnimplementedBookingServiceServer) GetBooking(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetBooking not implemented")
}
func (UnimplementedBookingServiceServer) UpdateBookingDetails(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateBookingDetails not implemented")
}
func (UnimplementedBookingServiceServer) ProposeBookingSlots(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ProposeBookingSlots not implemented")
}
func (UnimplementedBookingServiceServer) ConfirmBooking(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ConfirmBooking not implemented")
}
func (UnimplementedBookingServiceServer) CancelBooking(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelBooking not implemented")
}
func (UnimplementedBookingServiceServer) ExpireBooking(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ExpireBooking not implemented")
}
func (UnimplementedBookingServiceServer) ModifyBooking(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ModifyBooking not implemented")
}
func (UnimplementedBookingServiceServer) SyncPaymentStatus(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SyncPaymentStatus not implemented")
}
func (UnimplementedBookingServiceServer) mustEmbedUnimplementedBookingServiceServer() {}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingService_ServiceDesc, srv)
}

type unaryMethod func(srv BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

// handler собирает grpc.MethodHandler: декодирует Struct и вызывает interceptor.
func handler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		h := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, h)
	}
}

// BookingService_ServiceDesc: grpc.ServiceDesc для BookingService.
var BookingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateBooking",
			Handler: handler(BookingService_CreateBooking_FullMethodName, func(s BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.CreateBooking(ctx, in)
			}),
		},
		{
			MethodName: "GetBooking",
			Handler: handler(BookingService_GetBooking_FullMethodName, func(s BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.GetBooking(ctx, in)
			}),
		},
		{
			MethodName: "UpdateBookingDetails",
			Handler: handler(BookingService_UpdateBookingDetails_FullMethodName, func(s BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.UpdateBookingDetails(ctx, in)
			}),
		},
		{
			MethodName: "ProposeBookingSlots",
			Handler: handler(BookingService_ProposeBookingSlots_FullMethodName, func(s BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.ProposeBookingSlots(ctx, in)
			}),
		},
		{
			MethodName: "ConfirmBooking",
			Handler: handler(BookingService_ConfirmBooking_FullMethodName, func(s BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.ConfirmBooking(ctx, in)
			}),
		},
		{
			MethodName: "CancelBooking",
			Handler: handler(BookingService_CancelBooking_FullMethodName, func(s BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.CancelBooking(ctx, in)
			}),
		},
		{
			MethodName: "ExpireBooking",
			Handler: handler(BookingService_ExpireBooking_FullMethodName, func(s BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.ExpireBooking(ctx, in)
			}),
		},
		{
			MethodName: "ModifyBooking",
			Handler: handler(BookingService_ModifyBooking_FullMethodName, func(s BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.ModifyBooking(ctx, in)
			}),
		},
		{
			MethodName: "SyncPaymentStatus",
			Handler: handler(BookingService_SyncPaymentStatus_FullMethodName, func(s BookingServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.SyncPaymentStatus(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "booking/v1/booking.proto",
}

package apptpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "appointment.v1.AppointmentService"

const (
	ListByPatientFullMethodName     = "/appointment.v1.AppointmentService/ListByPatient"
	ListByDoctorFullMethodName      = "/appointment.v1.AppointmentService/ListByDoctor"
	CreateAppointmentFullMethodName = "/appointment.v1.AppointmentService/CreateAppointment"
	DeleteAppointmentFullMethodName = "/appointment.v1.AppointmentService/DeleteAppointment"
	UpdateAppointmentFullMethodName = "/appointment.v1.AppointmentService/UpdateAppointment"
	ListFreeSlotsFullMethodName     = "/appointment.v1.AppointmentService/ListFreeSlots"
)

type AppointmentServiceServer interface {
	ListByPatient(context.Context, *ListByPatientRequest) (*ListAppointmentsResponse, error)
	ListByDoctor(context.Context, *ListByDoctorRequest) (*ListAppointmentsResponse, error)
	CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error)
	DeleteAppointment(context.Context, *DeleteAppointmentRequest) (*AppointmentResponse, error)
	UpdateAppointment(context.Context, *UpdateAppointmentRequest) (*AppointmentResponse, error)
	ListFreeSlots(context.Context, *ListFreeSlotsRequest) (*ListFreeSlotsResponse, error)
}

// UnimplementedAppointmentServiceServer can be embedded to keep servers
// compiling when methods are added.
type UnimplementedAppointmentServiceServer struct{}

func (UnimplementedAppointmentServiceServer) ListByPatient(context.Context, *ListByPatientRequest) (*ListAppointmentsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListByPatient not implemented")
}
func (UnimplementedAppointmentServiceServer) ListByDoctor(context.Context, *ListByDoctorRequest) (*ListAppointmentsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListByDoctor not implemented")
}
func (UnimplementedAppointmentServiceServer) CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateAppointment not implemented")
}
func (UnimplementedAppointmentServiceServer) DeleteAppointment(context.Context, *DeleteAppointmentRequest) (*AppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteAppointment not implemented")
}
func (UnimplementedAppointmentServiceServer) UpdateAppointment(context.Context, *UpdateAppointmentRequest) (*AppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateAppointment not implemented")
}
func (UnimplementedAppointmentServiceServer) ListFreeSlots(context.Context, *ListFreeSlotsRequest) (*ListFreeSlotsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListFreeSlots not implemented")
}

func RegisterAppointmentServiceServer(s grpc.ServiceRegistrar, srv AppointmentServiceServer) {
	s.RegisterService(&AppointmentServiceDesc, srv)
}

// unary adapts a typed server method to grpc.MethodHandler.
func unary[Req, Resp any, PReq interface {
	*Req
	Message
}](fullMethod string, call func(AppointmentServiceServer, context.Context, PReq) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AppointmentServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AppointmentServiceServer), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AppointmentServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AppointmentServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListByPatient", Handler: unary(ListByPatientFullMethodName, AppointmentServiceServer.ListByPatient)},
		{MethodName: "ListByDoctor", Handler: unary(ListByDoctorFullMethodName, AppointmentServiceServer.ListByDoctor)},
		{MethodName: "CreateAppointment", Handler: unary(CreateAppointmentFullMethodName, AppointmentServiceServer.CreateAppointment)},
		{MethodName: "DeleteAppointment", Handler: unary(DeleteAppointmentFullMethodName, AppointmentServiceServer.DeleteAppointment)},
		{MethodName: "UpdateAppointment", Handler: unary(UpdateAppointmentFullMethodName, AppointmentServiceServer.UpdateAppointment)},
		{MethodName: "ListFreeSlots", Handler: unary(ListFreeSlotsFullMethodName, AppointmentServiceServer.ListFreeSlots)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "appointment/v1/appointment.proto",
}

type AppointmentServiceClient interface {
	ListByPatient(ctx context.Context, in *ListByPatientRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error)
	ListByDoctor(ctx context.Context, in *ListByDoctorRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error)
	CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, in *DeleteAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error)
	UpdateAppointment(ctx context.Context, in *UpdateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error)
	ListFreeSlots(ctx context.Context, in *ListFreeSlotsRequest, opts ...grpc.CallOption) (*ListFreeSlotsResponse, error)
}

type appointmentServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAppointmentServiceClient(cc grpc.ClientConnInterface) AppointmentServiceClient {
	return &appointmentServiceClient{cc: cc}
}

func (c *appointmentServiceClient) invoke(ctx context.Context, method string, in, out Message, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *appointmentServiceClient) ListByPatient(ctx context.Context, in *ListByPatientRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	out := new(ListAppointmentsResponse)
	if err := c.invoke(ctx, ListByPatientFullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *appointmentServiceClient) ListByDoctor(ctx context.Context, in *ListByDoctorRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	out := new(ListAppointmentsResponse)
	if err := c.invoke(ctx, ListByDoctorFullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *appointmentServiceClient) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	out := new(AppointmentResponse)
	if err := c.invoke(ctx, CreateAppointmentFullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *appointmentServiceClient) DeleteAppointment(ctx context.Context, in *DeleteAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	out := new(AppointmentResponse)
	if err := c.invoke(ctx, DeleteAppointmentFullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *appointmentServiceClient) UpdateAppointment(ctx context.Context, in *UpdateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	out := new(AppointmentResponse)
	if err := c.invoke(ctx, UpdateAppointmentFullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *appointmentServiceClient) ListFreeSlots(ctx context.Context, in *ListFreeSlotsRequest, opts ...grpc.CallOption) (*ListFreeSlotsResponse, error) {
	out := new(ListFreeSlotsResponse)
	if err := c.invoke(ctx, ListFreeSlotsFullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
//
// Messages are protobuf well-known types: allocation requests and snapshots
// travel as google.protobuf.Struct, session IDs as StringValue. The contract,
// including the Struct field names, is in portfoliosim/v1/simulation.proto.
const ServiceName = "portfoliosim.v1.SimulationService"

// Full method names
const (
	MethodStartSession  = "/" + ServiceName + "/StartSession"
	MethodPauseSession  = "/" + ServiceName + "/PauseSession"
	MethodResumeSession = "/" + ServiceName + "/ResumeSession"
	MethodResetSession  = "/" + ServiceName + "/ResetSession"
	MethodGetSnapshot   = "/" + ServiceName + "/GetSnapshot"
)

// SimulationServiceServer is the server API for SimulationService
type SimulationServiceServer interface {
	StartSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PauseSession(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ResumeSession(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ResetSession(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	GetSnapshot(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// RegisterSimulationServiceServer registers srv on s
func RegisterSimulationServiceServer(s grpc.ServiceRegistrar, srv SimulationServiceServer) {
	s.RegisterService(&SimulationServiceDesc, srv)
}

// SimulationServiceDesc describes SimulationService for grpc.ServiceRegistrar
var SimulationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimulationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StartSession", Handler: startSessionHandler},
		{
			MethodName: "PauseSession",
			Handler: sessionHandler(MethodPauseSession, func(srv SimulationServiceServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
				return srv.PauseSession(ctx, in)
			}),
		},
		{
			MethodName: "ResumeSession",
			Handler: sessionHandler(MethodResumeSession, func(srv SimulationServiceServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
				return srv.ResumeSession(ctx, in)
			}),
		},
		{
			MethodName: "ResetSession",
			Handler: sessionHandler(MethodResetSession, func(srv SimulationServiceServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
				return srv.ResetSession(ctx, in)
			}),
		},
		{
			MethodName: "GetSnapshot",
			Handler: sessionHandler(MethodGetSnapshot, func(srv SimulationServiceServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
				return srv.GetSnapshot(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{},
}

func startSessionHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulationServiceServer).StartSession(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodStartSession}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SimulationServiceServer).StartSession(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// sessionHandler builds the handler of a method keyed by session ID
func sessionHandler(
	fullMethod string,
	call func(SimulationServiceServer, context.Context, *wrapperspb.StringValue) (interface{}, error),
) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(wrapperspb.StringValue)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SimulationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SimulationServiceServer), ctx, req.(*wrapperspb.StringValue))
		}
		return interceptor(ctx, in, info, handler)
	}
}

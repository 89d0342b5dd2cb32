// Package rpc exposes the atmosphere model as the gRPC service
// atmosphere.v1.Atmosphere. Messages are protobuf well-known types, so the
// service needs no generated code: requests and replies are Struct,
// ListValue, DoubleValue and Empty.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "atmosphere.v1.Atmosphere"

const (
	conditionsMethod       = "/" + ServiceName + "/Conditions"
	layersMethod           = "/" + ServiceName + "/Layers"
	profileMethod          = "/" + ServiceName + "/Profile"
	pressureAltitudeMethod = "/" + ServiceName + "/PressureAltitude"
	streamProfileMethod    = "/" + ServiceName + "/StreamProfile"
)

// AtmosphereServer is the server API for atmosphere.v1.Atmosphere.
type AtmosphereServer interface {
	// Conditions takes an altitude in metres and returns the full state.
	Conditions(context.Context, *wrapperspb.DoubleValue) (*structpb.Struct, error)
	// Layers returns the layer table with resolved base states.
	Layers(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	// Profile samples {quantity, max_altitude, count}.
	Profile(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	// PressureAltitude maps a pressure in pascals to an altitude in metres.
	PressureAltitude(context.Context, *wrapperspb.DoubleValue) (*wrapperspb.DoubleValue, error)
	// StreamProfile sends the same samples as Profile one message at a time.
	StreamProfile(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error
}

// RegisterAtmosphereServer registers srv on s.
func RegisterAtmosphereServer(s grpc.ServiceRegistrar, srv AtmosphereServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func conditionsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.DoubleValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AtmosphereServer).Conditions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: conditionsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AtmosphereServer).Conditions(ctx, req.(*wrapperspb.DoubleValue))
	}
	return interceptor(ctx, in, info, handler)
}

func layersHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AtmosphereServer).Layers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: layersMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AtmosphereServer).Layers(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func profileHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AtmosphereServer).Profile(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: profileMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AtmosphereServer).Profile(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func pressureAltitudeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.DoubleValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AtmosphereServer).PressureAltitude(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: pressureAltitudeMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AtmosphereServer).PressureAltitude(ctx, req.(*wrapperspb.DoubleValue))
	}
	return interceptor(ctx, in, info, handler)
}

func streamProfileHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(structpb.Struct)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(AtmosphereServer).StreamProfile(m, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

// ServiceDesc is the grpc.ServiceDesc for atmosphere.v1.Atmosphere.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AtmosphereServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Conditions", Handler: conditionsHandler},
		{MethodName: "Layers", Handler: layersHandler},
		{MethodName: "Profile", Handler: profileHandler},
		{MethodName: "PressureAltitude", Handler: pressureAltitudeHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "StreamProfile", Handler: streamProfileHandler, ServerStreams: true},
	},
	Metadata: "atmosphere/v1/atmosphere.proto",
}

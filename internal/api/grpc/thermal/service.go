package thermal

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "thermal.v1.ThermalService"

// Full method names.
const (
	MethodGetFrame     = "/" + ServiceName + "/GetFrame"
	MethodGetStats     = "/" + ServiceName + "/GetStats"
	MethodGetHealth    = "/" + ServiceName + "/GetHealth"
	MethodTriggerAlarm = "/" + ServiceName + "/TriggerAlarm"
	MethodStopAlarm    = "/" + ServiceName + "/StopAlarm"
)

// ThermalServiceServer is the server API of ThermalService.
type ThermalServiceServer interface {
	GetFrame(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	GetStats(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	GetHealth(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	TriggerAlarm(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	StopAlarm(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterThermalServiceServer registers srv on s.
func RegisterThermalServiceServer(s grpc.ServiceRegistrar, srv ThermalServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes ThermalService for grpc.Server.
//
//nolint:gochecknoglobals // Descriptors are package-level by gRPC convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ThermalServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetFrame",
			Handler: unaryHandler(MethodGetFrame, func(srv ThermalServiceServer) unaryFunc {
				return func(ctx context.Context, in *emptypb.Empty) (any, error) { return srv.GetFrame(ctx, in) }
			}),
		},
		{
			MethodName: "GetStats",
			Handler: unaryHandler(MethodGetStats, func(srv ThermalServiceServer) unaryFunc {
				return func(ctx context.Context, in *emptypb.Empty) (any, error) { return srv.GetStats(ctx, in) }
			}),
		},
		{
			MethodName: "GetHealth",
			Handler: unaryHandler(MethodGetHealth, func(srv ThermalServiceServer) unaryFunc {
				return func(ctx context.Context, in *emptypb.Empty) (any, error) { return srv.GetHealth(ctx, in) }
			}),
		},
		{
			MethodName: "TriggerAlarm",
			Handler: unaryHandler(MethodTriggerAlarm, func(srv ThermalServiceServer) unaryFunc {
				return func(ctx context.Context, in *emptypb.Empty) (any, error) { return srv.TriggerAlarm(ctx, in) }
			}),
		},
		{
			MethodName: "StopAlarm",
			Handler: unaryHandler(MethodStopAlarm, func(srv ThermalServiceServer) unaryFunc {
				return func(ctx context.Context, in *emptypb.Empty) (any, error) { return srv.StopAlarm(ctx, in) }
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "thermal/v1/thermal.proto",
}

// unaryFunc is a bound method of ThermalServiceServer.
type unaryFunc func(ctx context.Context, in *emptypb.Empty) (any, error)

// unaryHandler adapts a bound method to grpc.MethodHandler, honoring interceptors.
func unaryHandler(fullMethod string, bind func(ThermalServiceServer) unaryFunc) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}

		call := bind(srv.(ThermalServiceServer)) //nolint:forcetypeassert // HandlerType guarantees it.

		if interceptor == nil {
			return call(ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return call(ctx, req.(*emptypb.Empty)) //nolint:forcetypeassert // Decoded above.
		}

		return interceptor(ctx, in, info, handler)
	}
}

// ThermalServiceClient is the client API of ThermalService.
type ThermalServiceClient interface {
	GetFrame(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	GetStats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetHealth(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	TriggerAlarm(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	StopAlarm(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type thermalServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewThermalServiceClient creates a client over cc.
//
//nolint:ireturn // Mirrors the generated client constructors.
func NewThermalServiceClient(cc grpc.ClientConnInterface) ThermalServiceClient {
	return &thermalServiceClient{cc: cc}
}

func (c *thermalServiceClient) GetFrame(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, MethodGetFrame, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *thermalServiceClient) GetStats(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, MethodGetStats, in, opts...)
}

func (c *thermalServiceClient) GetHealth(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, MethodGetHealth, in, opts...)
}

func (c *thermalServiceClient) TriggerAlarm(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, MethodTriggerAlarm, in, opts...)
}

func (c *thermalServiceClient) StopAlarm(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, MethodStopAlarm, in, opts...)
}

func (c *thermalServiceClient) invokeStruct(
	ctx context.Context,
	method string,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

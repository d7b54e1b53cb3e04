// Package rollv1 defines the roll.v1.DiceService wire contract.
//
// Messages travel as google.protobuf.Struct values; the typed request and
// response types in this package convert to and from them.
package rollv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "roll.v1.DiceService"

// LocaleMetadataKey carries the caller's preferred locale for error messages.
const LocaleMetadataKey = "x-locale"

// Method names.
const (
	MethodVersion        = "Version"
	MethodRoll           = "Roll"
	MethodRollMultiple   = "RollMultiple"
	MethodRollIndividual = "RollIndividual"
	MethodRollNotation   = "RollNotation"
	MethodGetRoll        = "GetRoll"
	MethodListRolls      = "ListRolls"
)

// FullMethod returns the gRPC path for method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// DiceServiceServer is the server API for roll.v1.DiceService.
type DiceServiceServer interface {
	Version(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Roll(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RollMultiple(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RollIndividual(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RollNotation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRoll(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRolls(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(DiceServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DiceServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DiceServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// DiceServiceDesc describes roll.v1.DiceService for grpc.Server registration.
var DiceServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DiceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(MethodVersion, DiceServiceServer.Version),
		unaryMethod(MethodRoll, DiceServiceServer.Roll),
		unaryMethod(MethodRollMultiple, DiceServiceServer.RollMultiple),
		unaryMethod(MethodRollIndividual, DiceServiceServer.RollIndividual),
		unaryMethod(MethodRollNotation, DiceServiceServer.RollNotation),
		unaryMethod(MethodGetRoll, DiceServiceServer.GetRoll),
		unaryMethod(MethodListRolls, DiceServiceServer.ListRolls),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "roll/v1/dice.proto",
}

// RegisterDiceServiceServer registers srv on s.
func RegisterDiceServiceServer(s grpc.ServiceRegistrar, srv DiceServiceServer) {
	s.RegisterService(&DiceServiceDesc, srv)
}

// DiceServiceClient invokes roll.v1.DiceService methods with raw Struct messages.
type DiceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDiceServiceClient returns a client bound to cc.
func NewDiceServiceClient(cc grpc.ClientConnInterface) *DiceServiceClient {
	return &DiceServiceClient{cc: cc}
}

// Invoke calls method with in and returns the decoded response.
func (c *DiceServiceClient) Invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

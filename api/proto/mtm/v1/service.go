// Package mtmv1 holds the ManifestService gRPC binding. Messages are
// google.protobuf.Struct, so no generated message types are needed; the
// service descriptor below matches manifest.proto.
package mtmv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName                             = "mtm.v1.ManifestService"
	ManifestService_Validate_FullMethodName = "/mtm.v1.ManifestService/Validate"
)

// Response field names.
const (
	FieldValid      = "valid"
	FieldID         = "id"
	FieldModelName  = "model_name"
	FieldKind       = "kind"
	FieldReason     = "reason"
	FieldConstraint = "constraint"
)

// ManifestServiceClient is the client API for ManifestService.
type ManifestServiceClient interface {
	Validate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type manifestServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewManifestServiceClient wraps a connection.
func NewManifestServiceClient(cc grpc.ClientConnInterface) ManifestServiceClient {
	return &manifestServiceClient{cc}
}

func (c *manifestServiceClient) Validate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ManifestService_Validate_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ManifestServiceServer is the server API for ManifestService.
type ManifestServiceServer interface {
	Validate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedManifestServiceServer can be embedded for forward compatibility.
type UnimplementedManifestServiceServer struct{}

func (UnimplementedManifestServiceServer) Validate(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Validate not implemented")
}

// RegisterManifestServiceServer registers srv on s.
func RegisterManifestServiceServer(s grpc.ServiceRegistrar, srv ManifestServiceServer) {
	s.RegisterService(&ManifestService_ServiceDesc, srv)
}

func _ManifestService_Validate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ManifestServiceServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ManifestService_Validate_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ManifestServiceServer).Validate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ManifestService_ServiceDesc is the grpc.ServiceDesc for ManifestService.
var ManifestService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ManifestServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Validate",
			Handler:    _ManifestService_Validate_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mtm/v1/manifest.proto",
}

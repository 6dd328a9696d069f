package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name. Messages are
// google.protobuf.Struct on both sides, so any gRPC client can call it
// without generated stubs.
const ServiceName = "convokeeper.access.v1.AccessService"

// AccessServer is the server API for the access service.
type AccessServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Authenticate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetPassword(context.Context, *structpb.Struct) (*structpb.Struct, error)
	HasRole(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateCollaboration(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChangeRole(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCollaborator(context.Context, *structpb.Struct) (*structpb.Struct, error)
	JoinByToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

type unaryCall func(AccessServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AccessServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AccessServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AccessServiceDesc describes the access service for grpc.Server.RegisterService.
var AccessServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccessServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Register", AccessServer.Register),
		unaryMethod("Authenticate", AccessServer.Authenticate),
		unaryMethod("SetPassword", AccessServer.SetPassword),
		unaryMethod("HasRole", AccessServer.HasRole),
		unaryMethod("CreateCollaboration", AccessServer.CreateCollaboration),
		unaryMethod("ChangeRole", AccessServer.ChangeRole),
		unaryMethod("DeleteCollaborator", AccessServer.DeleteCollaborator),
		unaryMethod("JoinByToken", AccessServer.JoinByToken),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "convokeeper/access/v1/access.proto",
}

// RegisterAccessServer registers srv on s.
func RegisterAccessServer(s grpc.ServiceRegistrar, srv AccessServer) {
	s.RegisterService(&AccessServiceDesc, srv)
}

// Package registration exposes the registration form over gRPC.
//
// Messages are google.protobuf.Struct values so the service needs no
// generated stubs; the request and response field names match the form's
// field names. profileImage is response-only: a request carries the picture
// under image and the hosted URL comes from the upload step.
package registration

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "rawcn.registration.v1.RegistrationService"
	// RegisterMethod is the full method name of Register.
	RegisterMethod = "/" + ServiceName + "/Register"
)

// Server handles registration RPCs.
type Server interface {
	Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes RegistrationService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler:    registerHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
	// No .proto file backs this service; see the package doc for the contract.
	Metadata: "",
}

// RegisterServer registers srv on s.
func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

func registerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).Register(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: RegisterMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).Register(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls RegistrationService.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient returns a Client over conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Register submits one registration.
func (c *Client) Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, RegisterMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

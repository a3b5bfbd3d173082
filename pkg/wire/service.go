package wire

import (
	"context"

	"google.golang.org/grpc"

	"github.com/smokesignal/smokesignal/pkg/types"
)

// Fully-qualified names used on the wire.
const (
	ServiceName       = "smokesignal.v1.SnapshotService"
	PublishMethodName = "/" + ServiceName + "/Publish"
)

// PublishRequest carries one complete snapshot from an agent.
type PublishRequest struct {
	// Agent identifies the sender (hostname by default).
	Agent string `json:"agent"`

	// GeneratedAtUnix is the cycle's reference time in Unix seconds.
	GeneratedAtUnix int64 `json:"generated_at_unix"`

	// Targets is the snapshot itself, keyed by target name.
	Targets types.Snapshot `json:"targets"`
}

// PublishResponse acknowledges a PublishRequest.
type PublishResponse struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// SnapshotServiceServer is implemented by the server-side receiver.
type SnapshotServiceServer interface {
	Publish(context.Context, *PublishRequest) (*PublishResponse, error)
}

// SnapshotServiceClient is the agent-side stub.
type SnapshotServiceClient interface {
	Publish(ctx context.Context, in *PublishRequest, opts ...grpc.CallOption) (*PublishResponse, error)
}

type snapshotServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSnapshotServiceClient returns a client that encodes every call with the
// JSON codec.
func NewSnapshotServiceClient(cc grpc.ClientConnInterface) SnapshotServiceClient {
	return &snapshotServiceClient{cc: cc}
}

func (c *snapshotServiceClient) Publish(ctx context.Context, in *PublishRequest, opts ...grpc.CallOption) (*PublishResponse, error) {
	out := new(PublishResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, PublishMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterSnapshotServiceServer attaches srv to the gRPC registrar s.
func RegisterSnapshotServiceServer(s grpc.ServiceRegistrar, srv SnapshotServiceServer) {
	s.RegisterService(&SnapshotServiceDesc, srv)
}

func publishHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PublishRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SnapshotServiceServer).Publish(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: PublishMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SnapshotServiceServer).Publish(ctx, req.(*PublishRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// SnapshotServiceDesc is the grpc.ServiceDesc for SnapshotService.
var SnapshotServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SnapshotServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Publish",
			Handler:    publishHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "smokesignal/v1/snapshot.proto",
}

package wire

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/smokesignal/smokesignal/pkg/types"
)

type echoServer struct {
	got chan *PublishRequest
}

func (e *echoServer) Publish(_ context.Context, req *PublishRequest) (*PublishResponse, error) {
	e.got <- req
	return &PublishResponse{Ok: true, Message: req.Agent}, nil
}

func TestPublish_RoundTrip(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := grpc.NewServer()
	echo := &echoServer{got: make(chan *PublishRequest, 1)}
	RegisterSnapshotServiceServer(srv, echo)
	go srv.Serve(lis) //nolint:errcheck
	defer srv.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(ctx, lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	resp, err := NewSnapshotServiceClient(conn).Publish(ctx, &PublishRequest{
		Agent:           "host-a",
		GeneratedAtUnix: 1700000000,
		Targets: types.Snapshot{
			"Claude": {Status: types.StatusWarning, Sentiment: "Lag Reports", Latency: "Slow", Color: "yellow"},
		},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !resp.Ok || resp.Message != "host-a" {
		t.Errorf("response: got %+v", resp)
	}
	req := <-echo.got
	if got := req.Targets["Claude"].Status; got != types.StatusWarning {
		t.Errorf("server status: got %q, want WARNING", got)
	}
	if req.GeneratedAtUnix != 1700000000 {
		t.Errorf("generated_at_unix: got %d", req.GeneratedAtUnix)
	}
}

func TestCodec_Name(t *testing.T) {
	if (Codec{}).Name() != "json" {
		t.Errorf("codec name: got %q", Codec{}.Name())
	}
}

package receiver

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/smokesignal/smokesignal/pkg/wire"
	"github.com/smokesignal/smokesignal/server/internal/store"
)

// Receiver implements wire.SnapshotServiceServer.
type Receiver struct {
	store *store.Store
}

// New creates a Receiver that writes accepted snapshots to st.
func New(st *store.Store) *Receiver {
	return &Receiver{store: st}
}

// Publish is the unary RPC handler called by smokesignal-agent instances.
func (r *Receiver) Publish(ctx context.Context, req *wire.PublishRequest) (*wire.PublishResponse, error) {
	if len(req.Targets) == 0 {
		return nil, status.Error(codes.InvalidArgument, "targets must not be empty")
	}
	if err := req.Targets.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var generatedAt time.Time
	if req.GeneratedAtUnix > 0 {
		generatedAt = time.Unix(req.GeneratedAtUnix, 0).UTC()
	}
	origin := req.Agent
	if origin == "" {
		origin = "unknown"
	}

	r.store.Put(req.Targets, origin, generatedAt)

	slog.Debug("receiver: snapshot stored",
		"agent", origin,
		"targets", len(req.Targets),
		"worst", req.Targets.Worst(),
	)

	return &wire.PublishResponse{Ok: true}, nil
}

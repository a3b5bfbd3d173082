package publish

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/smokesignal/smokesignal/agent/internal/config"
	"github.com/smokesignal/smokesignal/pkg/types"
	"github.com/smokesignal/smokesignal/pkg/wire"
)

const (
	backoffInitial    = 1 * time.Second
	backoffMax        = 60 * time.Second
	backoffMultiplier = 2.0
)

// dialFunc opens a gRPC connection. Injectable for tests.
type dialFunc func(ctx context.Context, endpoint string) (*grpc.ClientConn, error)

// GRPCPublisher sends snapshots to smokesignal-server.
// The connection is opened on first use and reused afterwards.
type GRPCPublisher struct {
	cfg    config.GRPCConfig
	agent  string
	dialFn dialFunc

	// initialBackoff is the first retry delay; tests shrink it.
	initialBackoff time.Duration

	mu   sync.Mutex
	conn *grpc.ClientConn
}

// NewGRPCPublisher returns a publisher for cfg. The agent name defaults to the
// hostname.
func NewGRPCPublisher(cfg config.GRPCConfig) *GRPCPublisher {
	agent := cfg.Agent
	if agent == "" {
		agent, _ = os.Hostname()
	}
	return &GRPCPublisher{
		cfg:            cfg,
		agent:          agent,
		dialFn:         defaultDial,
		initialBackoff: backoffInitial,
	}
}

// Name implements Publisher.
func (g *GRPCPublisher) Name() string { return "grpc" }

// Publish delivers snap, retrying transient errors up to MaxAttempts times.
func (g *GRPCPublisher) Publish(ctx context.Context, generatedAt time.Time, snap types.Snapshot) error {
	conn, err := g.connect(ctx)
	if err != nil {
		return err
	}
	client := wire.NewSnapshotServiceClient(conn)
	req := &wire.PublishRequest{
		Agent:           g.agent,
		GeneratedAtUnix: generatedAt.Unix(),
		Targets:         snap,
	}

	bo := newBackoff(g.initialBackoff)
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		if g.cfg.Auth.Mode == "apikey" && g.cfg.Auth.KeyEnv != "" {
			sendCtx = metadata.AppendToOutgoingContext(sendCtx,
				g.cfg.Auth.EffectiveHeader(), g.cfg.Auth.Key())
		}
		resp, err := client.Publish(sendCtx, req)
		cancel()

		if err == nil {
			if !resp.Ok {
				return fmt.Errorf("publish: server rejected snapshot: %s", resp.Message)
			}
			slog.Debug("publish: grpc snapshot accepted", "endpoint", g.cfg.Endpoint, "attempt", attempt)
			return nil
		}
		if isPermanentError(err) {
			return fmt.Errorf("publish: permanent grpc error: %w", err)
		}
		lastErr = err
		if attempt == g.cfg.MaxAttempts {
			break
		}

		wait := bo.next()
		slog.Warn("publish: grpc send failed, will retry",
			"endpoint", g.cfg.Endpoint, "attempt", attempt, "err", err, "retry_in", wait)
		select {
		case <-ctx.Done():
			return fmt.Errorf("publish: grpc: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("publish: grpc: giving up after %d attempts: %w", g.cfg.MaxAttempts, lastErr)
}

// Close tears down the connection if one was opened.
func (g *GRPCPublisher) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return nil
	}
	err := g.conn.Close()
	g.conn = nil
	return err
}

func (g *GRPCPublisher) connect(ctx context.Context) (*grpc.ClientConn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn != nil {
		return g.conn, nil
	}
	conn, err := g.dialFn(ctx, g.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("publish: dial %s: %w", g.cfg.Endpoint, err)
	}
	g.conn = conn
	return conn, nil
}

// isPermanentError returns true for gRPC errors that retrying cannot fix.
func isPermanentError(err error) bool {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied:
		return true
	}
	return false
}

// defaultDial opens a plaintext connection. The server terminates TLS at an
// ingress when it needs to.
func defaultDial(ctx context.Context, endpoint string) (*grpc.ClientConn, error) {
	return grpc.DialContext(ctx, endpoint, //nolint:staticcheck // deprecated in 1.63 but DialContext is used for compat
		grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// backoff implements truncated exponential backoff with jitter.
type backoff struct {
	current time.Duration
}

func newBackoff(initial time.Duration) *backoff {
	return &backoff{current: initial}
}

// next returns the current backoff duration and advances the internal state.
func (b *backoff) next() time.Duration {
	d := b.current
	// Apply ±25 % jitter.
	jitter := time.Duration(float64(b.current) * 0.25 * (rand.Float64()*2 - 1)) //nolint:gosec // not crypto
	d += jitter
	if d < 0 {
		d = 0
	}

	b.current = time.Duration(float64(b.current) * backoffMultiplier)
	if b.current > backoffMax {
		b.current = backoffMax
	}
	return d
}

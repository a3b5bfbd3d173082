package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/smokesignal/smokesignal/server/internal/config"
)

// Guard validates API keys for one configured header.
type Guard struct {
	enabled bool
	header  string
	key     []byte
}

// New builds a Guard from cfg, resolving the key from the environment.
func New(cfg config.AuthConfig) *Guard {
	return NewGuard(cfg.Mode, cfg.EffectiveHeader(), cfg.Key())
}

// NewGuard builds a Guard from explicit values. header is lower-cased to match
// gRPC's metadata normalisation.
func NewGuard(mode, header, key string) *Guard {
	return &Guard{
		enabled: mode == "apikey" && key != "",
		header:  strings.ToLower(header),
		key:     []byte(key),
	}
}

// Enabled reports whether requests are actually checked.
func (g *Guard) Enabled() bool { return g.enabled }

func (g *Guard) valid(presented string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), g.key) == 1
}

// UnaryInterceptor enforces the key on every unary gRPC call.
func (g *Guard) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if !g.enabled {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		vals := md.Get(g.header)
		if len(vals) == 0 || !g.valid(vals[0]) {
			return nil, status.Error(codes.Unauthenticated, "invalid api key")
		}

		return handler(ctx, req)
	}
}

// Middleware enforces the key on HTTP requests, except for exempt paths.
// WebSocket clients that cannot set headers may pass the key as ?api_key=.
func (g *Guard) Middleware(next http.Handler, exempt ...string) http.Handler {
	skip := make(map[string]bool, len(exempt))
	for _, p := range exempt {
		skip[p] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.enabled || skip[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		presented := r.Header.Get(g.header)
		if presented == "" {
			presented = r.URL.Query().Get("api_key")
		}
		if presented == "" || !g.valid(presented) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid api key"}` + "\n")) //nolint:errcheck
			return
		}
		next.ServeHTTP(w, r)
	})
}

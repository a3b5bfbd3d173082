package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc"

	"github.com/smokesignal/smokesignal/pkg/wire"
	"github.com/smokesignal/smokesignal/server/internal/alerts"
	"github.com/smokesignal/smokesignal/server/internal/api"
	"github.com/smokesignal/smokesignal/server/internal/auth"
	"github.com/smokesignal/smokesignal/server/internal/config"
	"github.com/smokesignal/smokesignal/server/internal/receiver"
	"github.com/smokesignal/smokesignal/server/internal/store"
	"github.com/smokesignal/smokesignal/server/internal/ws"
)

// publicPaths bypass the API key check so probes and scrapers need no secret.
var publicPaths = []string{"/api/v1/health", "/metrics"}

// server wires the store to its inputs (gRPC, watched file) and outputs
// (REST, WebSocket, metrics, alerts).
type server struct {
	cfg    config.ServerConfig
	uiDir  string
	store  *store.Store
	alerts *alerts.Engine
	hub    *ws.Hub
	guard  *auth.Guard
}

func newServer(cfg config.ServerConfig, uiDir string) *server {
	s := &server{
		cfg:    cfg,
		uiDir:  uiDir,
		store:  store.New(cfg.Snapshot.StaleAfter),
		alerts: alerts.New(cfg.Alerts),
		guard:  auth.New(cfg.Auth),
	}
	s.hub = ws.New(s.store, ws.DefaultInterval)

	// Alerts are evaluated and clients refreshed on every stored snapshot.
	s.store.OnPut(s.alerts.Evaluate)
	s.store.OnPut(func(*store.Entry) { s.hub.Broadcast() })

	if cfg.Auth.Mode == "apikey" && !s.guard.Enabled() {
		slog.Warn("auth mode is apikey but no key is set; requests are not checked",
			"key_env", cfg.Auth.KeyEnv)
	}
	return s
}

// handler returns the combined HTTP handler: REST API, WebSocket hub,
// metrics and optional dashboard files, behind the API key middleware.
func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", api.New(s.store, s.alerts))
	mux.Handle("/ws/stream", s.hub)
	mux.Handle("/metrics", api.MetricsHandler(s.store, s.alerts))

	// The "/" catch-all serves index.html for unknown paths (SPA routing).
	if s.uiDir != "" {
		files := http.FileServer(http.Dir(s.uiDir))
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := filepath.Join(s.uiDir, filepath.Clean("/"+r.URL.Path))
			if _, err := os.Stat(path); os.IsNotExist(err) {
				http.ServeFile(w, r, filepath.Join(s.uiDir, "index.html"))
				return
			}
			files.ServeHTTP(w, r)
		})
		slog.Info("serving dashboard static files", "dir", s.uiDir)
	}

	return s.guard.Middleware(mux, publicPaths...)
}

// run starts every listener and background loop and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *server) run(ctx context.Context) error {
	go s.store.Run(ctx)
	go s.hub.Run(ctx)

	if path := s.cfg.Snapshot.WatchFile; path != "" {
		go func() {
			if err := receiver.WatchFile(ctx, path, s.store); err != nil {
				slog.Error("snapshot file watcher stopped", "path", path, "err", err)
			}
		}()
	}

	var grpcSrv *grpc.Server
	if s.cfg.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.GRPCPort))
		if err != nil {
			return fmt.Errorf("listen grpc port %d: %w", s.cfg.GRPCPort, err)
		}
		grpcSrv = grpc.NewServer(grpc.UnaryInterceptor(s.guard.UnaryInterceptor()))
		wire.RegisterSnapshotServiceServer(grpcSrv, receiver.New(s.store))

		go func() {
			slog.Info("gRPC receiver listening", "port", s.cfg.GRPCPort)
			if err := grpcSrv.Serve(lis); err != nil {
				slog.Error("gRPC server stopped", "err", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.HTTPPort),
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", s.cfg.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-httpErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	slog.Info("smokesignal-server shutting down")
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
	s.alerts.Wait()
	return runErr
}

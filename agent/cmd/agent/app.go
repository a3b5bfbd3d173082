package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smokesignal/smokesignal/agent/internal/config"
	"github.com/smokesignal/smokesignal/agent/internal/feed"
	"github.com/smokesignal/smokesignal/agent/internal/metrics"
	"github.com/smokesignal/smokesignal/agent/internal/monitor"
	"github.com/smokesignal/smokesignal/agent/internal/publish"
)

// app wires the driver, publishers and metrics for one agent process.
type app struct {
	cfg      *config.Config
	driver   *monitor.Driver
	pub      *publish.Multi
	recorder *metrics.Recorder
	closers  []func() error
	now      func() time.Time
}

func newApp(cfg *config.Config) (*app, error) {
	return newAppWithSource(cfg, feed.NewHTTPSource(cfg.Monitor))
}

func newAppWithSource(cfg *config.Config, src feed.Source) (*app, error) {
	a := &app{
		cfg:      cfg,
		driver:   monitor.NewDriver(src, cfg.Monitor),
		recorder: metrics.NewRecorder(),
		now:      time.Now,
	}

	var pubs []publish.Publisher
	if cfg.Publish.File.Enabled {
		pubs = append(pubs, publish.NewFilePublisher(cfg.Publish.File.Path))
	}
	if cfg.Publish.GRPC.Enabled() {
		g := publish.NewGRPCPublisher(cfg.Publish.GRPC)
		a.closers = append(a.closers, g.Close)
		pubs = append(pubs, g)
	}
	if cfg.Publish.Redis.Enabled() {
		r, err := publish.NewRedisPublisher(cfg.Publish.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, r.Close)
		pubs = append(pubs, r)
	}
	a.pub = publish.NewMulti(pubs...)
	for _, p := range pubs {
		slog.Info("registered publisher", "name", p.Name())
	}
	slog.Info("publishers ready", "count", a.pub.Len())
	return a, nil
}

// cycle evaluates every target once and publishes the snapshot. A publish
// failure is returned; target failures are already folded into the snapshot.
// If ctx ends mid-cycle nothing is published, so the previous snapshot stands.
func (a *app) cycle(ctx context.Context) error {
	now := a.now().UTC()
	rep := a.driver.Run(ctx, a.cfg.Targets, now)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cycle interrupted: %w", err)
	}
	snap := rep.Snapshot()

	for _, t := range rep.Targets {
		r := t.Evaluation.Result
		slog.Info("target status",
			"target", t.Name,
			"status", r.Status,
			"sentiment", r.Sentiment,
			"outage", t.Evaluation.Counts.Outage,
			"degradation", t.Evaluation.Counts.Degradation,
		)
	}

	a.recorder.Observe(rep)
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.recorder.WriteTextfile(path); err != nil {
			slog.Warn("failed to write metrics textfile", "path", path, "err", err)
		}
	}

	if err := a.pub.Publish(ctx, now, snap); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// loop runs a cycle immediately and then on every tick until ctx ends.
// Failed cycles are logged and the loop continues.
func (a *app) loop(ctx context.Context, interval time.Duration) {
	if err := a.cycle(ctx); err != nil && ctx.Err() == nil {
		slog.Error("cycle failed", "err", err)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.cycle(ctx); err != nil && ctx.Err() == nil {
				slog.Error("cycle failed", "err", err)
			}
		}
	}
}

// Close releases publisher connections. Safe to call more than once.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			slog.Warn("close failed", "err", err)
		}
	}
	a.closers = nil
}

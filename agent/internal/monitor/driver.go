package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smokesignal/smokesignal/agent/internal/compute"
	"github.com/smokesignal/smokesignal/agent/internal/config"
	"github.com/smokesignal/smokesignal/agent/internal/feed"
	"github.com/smokesignal/smokesignal/pkg/types"
)

// Failure stages reported in TargetError.
const (
	StageFetch   = "fetch"
	StageTimeout = "timeout"
)

// TargetError records why a target fell back to UNKNOWN.
type TargetError struct {
	Target string
	Stage  string
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("monitor: target %q: %s: %v", e.Target, e.Stage, e.Err)
}

func (e *TargetError) Unwrap() error { return e.Err }

// TargetReport is one target's row in a Report.
type TargetReport struct {
	Name       string
	Evaluation compute.Evaluation

	// Err is non-nil when the result is the fallback.
	Err *TargetError

	// Duration is the wall time spent fetching and evaluating.
	Duration time.Duration
}

// Report is the outcome of one Run, in target configuration order.
type Report struct {
	GeneratedAt time.Time
	Duration    time.Duration
	Targets     []TargetReport
}

// Snapshot returns the publishable view of the report.
func (r *Report) Snapshot() types.Snapshot {
	snap := make(types.Snapshot, len(r.Targets))
	for _, t := range r.Targets {
		snap[t.Name] = t.Evaluation.Result
	}
	return snap
}

// Failed returns how many targets fell back to UNKNOWN.
func (r *Report) Failed() int {
	n := 0
	for _, t := range r.Targets {
		if t.Err != nil {
			n++
		}
	}
	return n
}

// Driver orchestrates per-target fetch and evaluation.
type Driver struct {
	src         feed.Source
	concurrency int
	timeout     time.Duration

	// clock is used only for per-target durations.
	clock func() time.Time
}

// NewDriver returns a Driver using the concurrency and fetch timeout from cfg.
func NewDriver(src feed.Source, cfg config.MonitorConfig) *Driver {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = config.DefaultConcurrency
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = config.DefaultFetchTimeout
	}
	return &Driver{
		src:         src,
		concurrency: concurrency,
		timeout:     timeout,
		clock:       time.Now,
	}
}

// Run processes every target exactly once against the single reference time
// now and returns when all targets are done. Cancelling ctx aborts pending
// fetches; their targets report UNKNOWN.
func (d *Driver) Run(ctx context.Context, targets []config.Target, now time.Time) *Report {
	start := d.clock()
	rows := make([]TargetReport, len(targets))

	// Workers never return an error so one failure cannot cancel the rest.
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, t := range targets {
		g.Go(func() error {
			rows[i] = d.evaluate(ctx, t, now)
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	rep := &Report{
		GeneratedAt: now,
		Duration:    d.clock().Sub(start),
		Targets:     rows,
	}
	slog.Info("monitor: cycle complete",
		"targets", len(rows), "failed", rep.Failed(), "duration", rep.Duration)
	return rep
}

// evaluate runs the full pipeline for one target. It always returns a row.
func (d *Driver) evaluate(ctx context.Context, t config.Target, now time.Time) TargetReport {
	start := d.clock()
	row := TargetReport{Name: t.Name}

	fetchCtx, cancel := context.WithTimeout(ctx, d.timeout)
	entries, err := d.src.Fetch(fetchCtx, t.Feed)
	timedOut := errors.Is(fetchCtx.Err(), context.DeadlineExceeded)
	cancel()

	if err != nil {
		stage := StageFetch
		if timedOut {
			stage = StageTimeout
		}
		row.Err = &TargetError{Target: t.Name, Stage: stage, Err: err}
		row.Evaluation = compute.Evaluation{Result: compute.Fallback()}
		row.Duration = d.clock().Sub(start)
		slog.Warn("monitor: target unavailable, reporting unknown",
			"target", t.Name, "stage", stage, "err", err)
		return row
	}

	row.Evaluation = compute.Evaluate(entries, compute.Keywords{
		Outage:      t.OutageWords,
		Degradation: t.DegradationWords,
	}, now)
	row.Duration = d.clock().Sub(start)

	slog.Debug("monitor: target evaluated",
		"target", t.Name,
		"status", row.Evaluation.Result.Status,
		"examined", row.Evaluation.Counts.Examined,
		"in_window", row.Evaluation.Counts.InWindow,
		"outage", row.Evaluation.Counts.Outage,
		"degradation", row.Evaluation.Counts.Degradation,
	)
	return row
}

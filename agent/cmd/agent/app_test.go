package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smokesignal/smokesignal/agent/internal/config"
	"github.com/smokesignal/smokesignal/agent/internal/feed"
	"github.com/smokesignal/smokesignal/pkg/types"
	"github.com/smokesignal/smokesignal/pkg/wire"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type cannedSource map[string][]feed.Entry

func (c cannedSource) Fetch(_ context.Context, locator string) ([]feed.Entry, error) {
	entries, ok := c[locator]
	if !ok {
		return nil, errors.New("no such feed")
	}
	return entries, nil
}

func titles(title string, n int) []feed.Entry {
	out := make([]feed.Entry, n)
	for i := range out {
		out[i] = feed.Entry{Title: title, Published: baseTime.Add(-time.Minute)}
	}
	return out
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Publish.File.Path = filepath.Join(dir, "status.json")
	cfg.Metrics.Textfile = filepath.Join(dir, "smokesignal.prom")
	return cfg
}

func TestCycle_WritesSnapshotForEveryTarget(t *testing.T) {
	cfg := testConfig(t)
	src := cannedSource{
		"https://www.reddit.com/r/ChatGPT/new.rss":  titles("ChatGPT down again", 5),
		"https://www.reddit.com/r/GeminiAI/new.rss": titles("gemini stuck thinking", 3),
		"https://www.reddit.com/r/ClaudeAI/new.rss": titles("love it", 10),
		// Grok is missing and must fall back to UNKNOWN.
	}
	a, err := newAppWithSource(cfg, src)
	if err != nil {
		t.Fatalf("newAppWithSource: %v", err)
	}
	defer a.Close()
	a.now = func() time.Time { return baseTime }
	if n := a.pub.Len(); n != 1 {
		t.Errorf("publishers: got %d, want 1 (file only)", n)
	}

	if err := a.cycle(context.Background()); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	data, err := os.ReadFile(cfg.Publish.File.Path)
	if err != nil {
		t.Fatalf("read status.json: %v", err)
	}
	snap, err := wire.DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := map[string]types.Status{
		"GPT-4":  types.StatusCritical,
		"Gemini": types.StatusWarning,
		"Claude": types.StatusNormal,
		"Grok":   types.StatusUnknown,
	}
	if len(snap) != len(want) {
		t.Fatalf("snapshot has %d targets, want %d", len(snap), len(want))
	}
	for name, st := range want {
		if snap[name].Status != st {
			t.Errorf("%s: got %q, want %q", name, snap[name].Status, st)
		}
	}

	if _, err := os.Stat(cfg.Metrics.Textfile); err != nil {
		t.Errorf("metrics textfile not written: %v", err)
	}
}

func TestCycle_PublishFailureFailsRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Publish.File.Path = filepath.Join(t.TempDir(), "missing-dir", "status.json")
	cfg.Metrics.Textfile = ""

	a, err := newAppWithSource(cfg, cannedSource{})
	if err != nil {
		t.Fatalf("newAppWithSource: %v", err)
	}
	defer a.Close()

	if err := a.cycle(context.Background()); err == nil {
		t.Fatal("expected cycle to fail when the snapshot cannot be written")
	}
}

// blockingSource never answers; Fetch returns only when ctx ends.
type blockingSource struct{}

func (blockingSource) Fetch(ctx context.Context, _ string) ([]feed.Entry, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCycle_CancelledKeepsPreviousSnapshot(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Textfile = ""

	previous, err := wire.EncodeSnapshot(types.Snapshot{
		"GPT-4": {Status: types.StatusCritical, Sentiment: "Outage reports", Latency: "High", Color: "#ff0000"},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(cfg.Publish.File.Path, previous, 0o644); err != nil {
		t.Fatalf("seed status.json: %v", err)
	}

	a, err := newAppWithSource(cfg, blockingSource{})
	if err != nil {
		t.Fatalf("newAppWithSource: %v", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	err = a.cycle(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cycle: got %v, want context.Canceled", err)
	}

	data, err := os.ReadFile(cfg.Publish.File.Path)
	if err != nil {
		t.Fatalf("read status.json: %v", err)
	}
	if string(data) != string(previous) {
		t.Errorf("status.json was rewritten on shutdown:\n%s", data)
	}
}

func TestLoadConfig_DefaultFallback(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.Targets) != 4 {
		t.Errorf("targets: got %d, want 4", len(cfg.Targets))
	}

	if _, err := loadConfig("explicit-missing.yaml"); err == nil {
		t.Error("an explicitly named missing file must be an error")
	}
}

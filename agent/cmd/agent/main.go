package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/smokesignal/smokesignal/agent/internal/config"
)

const defaultConfigPath = "config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to config file")
	once := flag.Bool("once", false, "run a single cycle even if monitor.interval is set")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Secrets referenced by *_env keys may live in a local .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "err", err)
	}

	slog.Info("smokesignal-agent starting", "config", *configPath)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"targets", len(cfg.Targets),
		"concurrency", cfg.Monitor.Concurrency,
		"fetch_timeout", cfg.Monitor.FetchTimeout,
		"interval", cfg.Monitor.Interval,
	)

	a, err := newApp(cfg)
	if err != nil {
		slog.Error("failed to build agent", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once || cfg.Monitor.Interval <= 0 {
		if err := a.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				slog.Warn("cycle interrupted, snapshot not published", "err", err)
			} else {
				slog.Error("cycle failed", "err", err)
			}
			a.Close()
			os.Exit(1)
		}
		return
	}

	a.loop(ctx, cfg.Monitor.Interval)
	slog.Info("smokesignal-agent shutting down")
}

// loadConfig reads path, falling back to built-in defaults only when the
// default path was requested and does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && path == defaultConfigPath && errors.Is(err, fs.ErrNotExist) {
		slog.Info("no config file found, using built-in targets", "path", path)
		return config.Default(), nil
	}
	return cfg, err
}

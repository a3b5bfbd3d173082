package receiver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/smokesignal/smokesignal/pkg/wire"
	"github.com/smokesignal/smokesignal/server/internal/store"
)

// WatchFile loads path into st and reloads it on every change until ctx is
// cancelled. The parent directory is watched rather than the file, so atomic
// renames by the agent are seen. A missing file at start is not an error.
func WatchFile(ctx context.Context, path string, st *store.Store) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("receiver: watch %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("receiver: watch %q: %w", path, err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("receiver: watch %q: %w", path, err)
	}

	slog.Info("receiver: watching snapshot file", "path", abs)
	if err := loadFile(abs, st); err != nil && !os.IsNotExist(err) {
		slog.Error("receiver: initial load failed", "path", abs, "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := loadFile(abs, st); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				slog.Error("receiver: reload failed, keeping previous snapshot",
					"path", abs, "err", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("receiver: watcher error", "err", err)
		}
	}
}

// loadFile decodes path and stores it with origin "file:<path>".
func loadFile(path string, st *store.Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	snap, err := wire.DecodeSnapshot(data)
	if err != nil {
		return err
	}
	var generatedAt time.Time
	if info, err := os.Stat(path); err == nil {
		generatedAt = info.ModTime().UTC()
	}
	st.Put(snap, "file:"+path, generatedAt)
	slog.Debug("receiver: snapshot file loaded", "path", path, "targets", len(snap))
	return nil
}

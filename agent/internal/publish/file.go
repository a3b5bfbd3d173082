package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokesignal/smokesignal/pkg/types"
	"github.com/smokesignal/smokesignal/pkg/wire"
)

// FilePublisher writes the snapshot as status.json.
type FilePublisher struct {
	path string
}

// NewFilePublisher returns a publisher writing to path.
func NewFilePublisher(path string) *FilePublisher {
	return &FilePublisher{path: path}
}

// Name implements Publisher.
func (f *FilePublisher) Name() string { return "file" }

// Publish writes snap to a temp file in the destination directory and renames
// it over the previous snapshot.
func (f *FilePublisher) Publish(_ context.Context, _ time.Time, snap types.Snapshot) error {
	data, err := wire.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	return writeFileAtomic(f.path, data, 0o644)
}

// writeFileAtomic replaces path with data via a sibling temp file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("publish: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("publish: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("publish: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("publish: close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("publish: chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("publish: rename to %s: %w", path, err)
	}
	return nil
}

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSaver persists finished export bytes under a name. Every exporter goes
// through this one seam, so the save mechanism can be swapped without
// touching document assembly.
type FileSaver interface {
	Save(ctx context.Context, filename string, data []byte) error
}

// DiskSaver writes artifacts into a local output directory.
type DiskSaver struct {
	dir string
}

// NewDiskSaver creates a saver rooted at dir, creating it if needed.
func NewDiskSaver(dir string) (*DiskSaver, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &DiskSaver{dir: dir}, nil
}

// Save writes the artifact to <dir>/<filename>. Only the base name of
// filename is used, so callers cannot escape the output directory.
func (s *DiskSaver) Save(_ context.Context, filename string, data []byte) error {
	if filename == "" {
		return fmt.Errorf("empty artifact filename")
	}
	path := filepath.Join(s.dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", filename, err)
	}
	return nil
}

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
)

// FileBackend keeps the document in one JSON file.
type FileBackend struct {
	Path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

func (b *FileBackend) Init(_ context.Context) error {
	dir := filepath.Dir(b.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return nil
}

func (b *FileBackend) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.Path, err)
	}
	return data, nil
}

// Write replaces the file through a temp file and rename, so readers see
// either the old document or the new one.
func (b *FileBackend) Write(_ context.Context, data []byte) error {
	if err := atomic.WriteFile(b.Path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", b.Path, err)
	}
	return nil
}

// Preserve renames the current file to <path>.corrupt-<timestamp>.
func (b *FileBackend) Preserve(_ context.Context) (string, error) {
	dst := fmt.Sprintf("%s.corrupt-%s", b.Path, time.Now().Format("20060102T150405.000"))
	if err := os.Rename(b.Path, dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("preserve %s: %w", b.Path, err)
	}
	return dst, nil
}

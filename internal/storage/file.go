package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend keeps the blob in a single file
type FileBackend struct {
	path string
}

// NewFileBackend creates a file backend. The file is created on first write.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the file path
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Read() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.path, err)
	}
	return data, nil
}

// Write replaces the file through a temp file and rename
func (b *FileBackend) Write(data []byte) error {
	// Ensure directory exists
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", b.path, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", b.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", b.path, err)
	}

	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", b.path, err)
	}
	return nil
}

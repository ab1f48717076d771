// Package storage holds the durable key that the preset store reads once at
// startup and rewrites in full on every change.
package storage

import (
	"fmt"
	"time"

	"github.com/rebeliceyang/lazyfacet/internal/config"
)

// Backend stores one blob under one key
type Backend interface {
	// Read returns the stored blob, or nil, nil when nothing was ever written
	Read() ([]byte, error)

	// Write replaces the stored blob
	Write(data []byte) error
}

// Closer is implemented by backends holding connections
type Closer interface {
	Close() error
}

// Open creates the backend selected by cfg.Backend
func Open(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "file":
		if cfg.Path == "" {
			return nil, fmt.Errorf("file storage requires a path")
		}
		return NewFileBackend(cfg.Path), nil
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite storage requires a path")
		}
		b, err := NewSQLiteBackend(cfg.Path, cfg.Key)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "redis":
		b, err := NewRedisBackend(cfg.RedisURL, cfg.Key, time.Duration(cfg.TimeoutMs)*time.Millisecond)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// Close closes b when it holds resources
func Close(b Backend) error {
	if c, ok := b.(Closer); ok {
		return c.Close()
	}
	return nil
}

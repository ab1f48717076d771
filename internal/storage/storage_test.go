package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazyfacet/internal/config"
)

// exerciseBackend checks the Backend contract shared by every implementation
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()

	data, err := b.Read()
	require.NoError(t, err)
	assert.Nil(t, data, "never-written key reads as nil")

	require.NoError(t, b.Write([]byte(`[{"id":"p1"}]`)))
	data, err = b.Read()
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"p1"}]`, string(data))

	require.NoError(t, b.Write([]byte(`[]`)))
	data, err = b.Read()
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data), "writes replace the blob in full")
}

func TestFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "presets.json")
	b := NewFileBackend(path)
	exerciseBackend(t, b)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSQLiteBackend(t *testing.T) {
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "presets.db"), "filter-presets")
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	exerciseBackend(t, b)
}

func TestSQLiteBackend_KeysAreIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.db")
	a, err := NewSQLiteBackend(path, "a")
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	other, err := NewSQLiteBackend(path, "b")
	require.NoError(t, err)
	defer func() { _ = other.Close() }()

	require.NoError(t, a.Write([]byte("one")))
	data, err := other.Read()
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend()
	exerciseBackend(t, b)

	boom := errors.New("disk full")
	b.FailWrites(boom)
	assert.ErrorIs(t, b.Write([]byte("x")), boom)

	data, err := b.Read()
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data), "failed writes leave the blob untouched")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	b, err := Open(config.StorageConfig{Backend: "file", Path: filepath.Join(dir, "p.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, b)
	assert.NoError(t, Close(b))

	b, err = Open(config.StorageConfig{Backend: "sqlite", Path: filepath.Join(dir, "p.db"), Key: "k"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, b)
	assert.NoError(t, Close(b))

	b, err = Open(config.StorageConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	_, err = Open(config.StorageConfig{Backend: "etcd"})
	assert.Error(t, err)

	_, err = Open(config.StorageConfig{Backend: "file"})
	assert.Error(t, err)

	_, err = Open(config.StorageConfig{Backend: "redis", RedisURL: "not a url"})
	assert.Error(t, err)
}

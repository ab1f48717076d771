package storage

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteBackend keeps the blob in a key/value table
type SQLiteBackend struct {
	db  *sql.DB
	key string
}

// NewSQLiteBackend opens (and creates) the database at path
func NewSQLiteBackend(path, key string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Create schema
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteBackend{db: db, key: key}, nil
}

func (b *SQLiteBackend) Read() ([]byte, error) {
	var data []byte
	err := b.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, b.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.key, err)
	}
	return data, nil
}

func (b *SQLiteBackend) Write(data []byte) error {
	_, err := b.db.Exec(`
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		b.key, data)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", b.key, err)
	}
	return nil
}

// Close closes the database
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

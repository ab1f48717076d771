package storage

import "sync"

// MemoryBackend keeps the blob in process memory
type MemoryBackend struct {
	mu   sync.Mutex
	data []byte
	err  error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// NewMemoryBackendWith starts with data already written
func NewMemoryBackendWith(data []byte) *MemoryBackend {
	return &MemoryBackend{data: append([]byte(nil), data...)}
}

func (b *MemoryBackend) Read() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, nil
	}
	return append([]byte(nil), b.data...), nil
}

func (b *MemoryBackend) Write(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.data = append([]byte{}, data...)
	return nil
}

// FailWrites makes every following Write return err; nil restores writes
func (b *MemoryBackend) FailWrites(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStorage is an ephemeral BlobStore. Contents are lost on Close or process exit.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory allocates an empty in-memory blob store.
func NewMemory() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

var _ BlobStore = (*MemoryStorage)(nil)

func (m *MemoryStorage) Put(ctx context.Context, r io.Reader, suggestedName string) (PutResult, error) {
	if r == nil {
		return PutResult{}, fmt.Errorf("%w: nil reader", ErrWrite)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, contextReader{ctx: ctx, r: r})
	if err != nil {
		return PutResult{}, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	key := NewKey(suggestedName)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blobs == nil {
		return PutResult{}, fmt.Errorf("%w: store closed", ErrWrite)
	}
	m.blobs[key] = buf.Bytes()
	return PutResult{Path: key, Size: n}, nil
}

func (m *MemoryStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	// Blobs are never mutated after Put, so readers can share the slice.
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStorage) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

// Len reports how many blobs are held.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// Close releases all blobs. Subsequent writes fail.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs = nil
	return nil
}

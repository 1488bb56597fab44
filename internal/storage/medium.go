package storage

import (
	"fmt"
	"sync"
)

// Collection keys under which the record store persists its data.
const (
	CollectionAccounts     = "registeredUsers"
	CollectionObservations = "weatherEntries"
	KeyCurrentUser         = "user"
)

// Medium is the persistence medium behind the record store: an opaque
// mapping from key to serialized blob. Every collection is read and written
// as a whole.
type Medium interface {
	// Load returns the blob stored under key, or nil with no error when the
	// key is absent.
	Load(key string) ([]byte, error)
	Store(key string, data []byte) error
	Remove(key string) error
	Close() error
}

// MemoryMedium keeps blobs in process memory. Sessions sharing one
// MemoryMedium see each other's writes.
type MemoryMedium struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryMedium returns an empty in-memory medium.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{blobs: make(map[string][]byte)}
}

func (m *MemoryMedium) Load(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryMedium) Store(key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("storing blob: key must not be empty")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = buf
	return nil
}

func (m *MemoryMedium) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *MemoryMedium) Close() error { return nil }

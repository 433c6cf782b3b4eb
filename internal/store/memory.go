package store

import (
	"sync"

	"complib/internal/library"
)

// MemoryStore is an in-memory implementation of library.Store.
// Values are copied on the way in and out. Safe for concurrent use.
type MemoryStore struct {
	data map[string][]byte
	mu   sync.RWMutex
}

var _ library.BatchStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// PutMany stores every entry under a single lock.
func (m *MemoryStore) PutMany(entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.data[k] = append([]byte(nil), v...)
	}
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) ValidateSetup() error { return nil }

func (m *MemoryStore) Close() error { return nil }

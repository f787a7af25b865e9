// Package store implements the persisted client state: per-coordinate
// weather series, last-selected location, recent locations, and the
// system-capacity input. Storage access goes through the Backend interface
// so tests run against an in-memory implementation while production uses
// the file-backed one.
package store

import "sync"

// Backend is the raw key/value storage contract. Get reports whether the
// key existed; absence is not an error.
type Backend interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Memory is a concurrency-safe in-memory Backend, used in tests and as a
// fallback when no data directory is configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

package index

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and runs without Redis
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Index
	closed  bool
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Index),
	}
}

// Get retrieves a copy of the index stored under key
func (m *MemoryStore) Get(ctx context.Context, key string) (*Index, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	ix, ok := m.entries[key]
	if !ok {
		return nil, fmt.Errorf("index %s: %w", key, ErrMiss)
	}
	return copyIndex(ix), nil
}

// Put stores a copy of ix
func (m *MemoryStore) Put(ctx context.Context, ix *Index) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}
	if ix.Fingerprint == "" {
		return fmt.Errorf("index has no fingerprint")
	}
	if ix.CreatedAt.IsZero() {
		ix.CreatedAt = time.Now()
	}

	m.entries[ix.Key()] = copyIndex(ix)
	return nil
}

// Delete removes the index stored under key
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}
	if _, ok := m.entries[key]; !ok {
		return fmt.Errorf("index %s: %w", key, ErrMiss)
	}
	delete(m.entries, key)
	return nil
}

// Close marks the store closed
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

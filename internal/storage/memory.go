package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore implements Store in process memory.
// Values are kept encoded so readers never share mutable state with writers.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get decodes the value under key into dst.
func (s *MemoryStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	return true, decode(key, raw, dst)
}

// Set replaces the value under key.
func (s *MemoryStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}

	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

// SetMany replaces several keys under one lock.
func (s *MemoryStore) SetMany(ctx context.Context, values map[string]any) error {
	encoded, err := encodeAll(values)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, raw := range encoded {
		s.data[key] = raw
	}
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

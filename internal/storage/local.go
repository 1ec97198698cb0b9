package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// LocalStore implements Store as a single JSON document on disk, the
// server-side analogue of browser local storage.
//
// The whole document is rewritten on every write through a temp file and
// rename, so a crash leaves either the old or the new document.
type LocalStore struct {
	mu   sync.RWMutex
	path string
	data map[string]json.RawMessage
}

// NewLocalStore opens (or creates) the document at path.
func NewLocalStore(path string) (*LocalStore, error) {
	if path == "" {
		return nil, ErrFilePathRequired
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &LocalStore{path: path, data: make(map[string]json.RawMessage)}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	case len(raw) == 0:
		return s, nil
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, ErrCorrupt(path, err)
	}
	return s, nil
}

// Get decodes the value under key into dst.
func (s *LocalStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	return true, decode(key, raw, dst)
}

// Set replaces the value under key and flushes the document.
func (s *LocalStore) Set(ctx context.Context, key string, value any) error {
	return s.SetMany(ctx, map[string]any{key: value})
}

// SetMany replaces several keys and flushes once. The in-memory view only
// changes after the flush succeeds.
func (s *LocalStore) SetMany(ctx context.Context, values map[string]any) error {
	encoded, err := encodeAll(values)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]json.RawMessage, len(s.data)+len(encoded))
	for key, raw := range s.data {
		next[key] = raw
	}
	for key, raw := range encoded {
		next[key] = raw
	}

	if err := s.flush(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// Delete removes key and flushes the document.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}

	next := make(map[string]json.RawMessage, len(s.data))
	for k, raw := range s.data {
		if k != key {
			next[k] = raw
		}
	}

	if err := s.flush(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// Close is a no-op; every write is already on disk.
func (s *LocalStore) Close() error {
	return nil
}

func (s *LocalStore) flush(data map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".julg-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close store file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

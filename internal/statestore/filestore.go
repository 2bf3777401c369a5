package statestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// FileStore persists charm state as a TOML document. Every successful
// Set/SetDefault flushes to disk with a temp-file rename so a crashed
// unit restarts from the last committed mutation.
type FileStore struct {
	mu    sync.RWMutex
	path  string
	items map[string]any
}

// OpenFile loads the store at path, creating parent directories as
// needed. A missing file yields an empty store.
func OpenFile(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("statestore: mkdir failed (%s): %w", path, err)
	}

	s := &FileStore{path: path, items: make(map[string]any)}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("statestore: load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &s.items); err != nil {
		return nil, fmt.Errorf("statestore: parse failed (%s): %w", path, err)
	}
	return s, nil
}

func (s *FileStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

func (s *FileStore) Set(key string, value any) error {
	if err := validateEntry(key, value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = cloneValue(value)
	return s.flushLocked()
}

func (s *FileStore) SetDefault(key string, value any) error {
	if err := validateEntry(key, value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return nil
	}
	s.items[key] = cloneValue(value)
	return s.flushLocked()
}

func (s *FileStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.items))
	for k, v := range s.items {
		out[k] = cloneValue(v)
	}
	return out
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) flushLocked() error {
	data, err := toml.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("statestore: encode failed (%s): %w", s.path, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("statestore: write failed (%s): %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("statestore: commit failed (%s): %w", s.path, err)
	}
	return nil
}

// Package statestore provides the durable key-value storage consumed by
// charm state records. Values are restricted to TOML-representable
// scalars and string-keyed maps so file-backed stores can round-trip
// them across process restarts.
package statestore

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
)

var (
	ErrInvalidKey   = errors.New("statestore: invalid key")
	ErrInvalidValue = errors.New("statestore: unsupported value type")
)

// Store is the persistence boundary for one charm's stored state.
// SetDefault only writes when the key is unset, which gives records
// their initialize-once semantics.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any) error
	SetDefault(key string, value any) error
	Snapshot() map[string]any
}

// MemStore is an in-memory store for tests and ephemeral units.
type MemStore struct {
	mu    sync.RWMutex
	items map[string]any
}

func NewMemStore() *MemStore {
	return &MemStore{items: make(map[string]any)}
}

func (s *MemStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

func (s *MemStore) Set(key string, value any) error {
	if err := validateEntry(key, value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = cloneValue(value)
	return nil
}

func (s *MemStore) SetDefault(key string, value any) error {
	if err := validateEntry(key, value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return nil
	}
	s.items[key] = cloneValue(value)
	return nil
}

func (s *MemStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.items))
	for k, v := range s.items {
		out[k] = cloneValue(v)
	}
	return out
}

func validateEntry(key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	switch v := value.(type) {
	case nil:
		return fmt.Errorf("%w: nil for key %q", ErrInvalidValue, key)
	case bool, string, int, int64, float64:
		return nil
	case map[string]bool, map[string]string, map[string]any:
		return nil
	case []string:
		return nil
	default:
		return fmt.Errorf("%w: %T for key %q", ErrInvalidValue, v, key)
	}
}

// cloneValue copies map and slice values so callers cannot mutate
// stored state through shared references.
func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]bool:
		return maps.Clone(v)
	case map[string]string:
		return maps.Clone(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	default:
		return value
	}
}

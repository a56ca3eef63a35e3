// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package artifact

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps payloads in a map.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[Key][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[Key][]byte)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, k Key) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.items[k]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(data), nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, k Key, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[k] = slices.Clone(data)
	return nil
}

// Len returns the number of stored artifacts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

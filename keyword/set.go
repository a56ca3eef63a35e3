// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package keyword

import (
	"sync"
	"sync/atomic"
)

// LocalSet is a worker-local set of enabled keywords in enable order.
type LocalSet struct {
	items []Keyword
}

// Enable adds kw unless an entry with the same fingerprint is present.
func (s *LocalSet) Enable(kw Keyword) {
	if indexOf(s.items, kw.Fingerprint) >= 0 {
		return
	}
	s.items = append(s.items, kw)
}

// Disable removes every entry with fingerprint fp and reports whether
// anything was removed.
func (s *LocalSet) Disable(fp uint64) bool {
	var removed bool
	s.items, removed = removeAll(s.items, fp)
	return removed
}

// Contains reports whether fp is enabled.
func (s *LocalSet) Contains(fp uint64) bool {
	return indexOf(s.items, fp) >= 0
}

// Len returns the number of enabled keywords.
func (s *LocalSet) Len() int {
	return len(s.items)
}

// Each calls fn for every enabled keyword in enable order.
func (s *LocalSet) Each(fn func(Keyword)) {
	for _, kw := range s.items {
		fn(kw)
	}
}

// GlobalSet is the process-wide set of keywords enabled for every worker.
type GlobalSet struct {
	mu     sync.Mutex
	items  []Keyword
	active atomic.Bool // true iff items is non-empty
}

// Enable adds kw unless already present and raises the fast-path flag.
func (s *GlobalSet) Enable(kw Keyword) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.items, kw.Fingerprint) < 0 {
		s.items = append(s.items, kw)
	}
	s.active.Store(true)
}

// Disable removes every entry with fingerprint fp. Removing the last entry
// clears the fast-path flag.
func (s *GlobalSet) Disable(fp uint64) bool {
	if !s.active.Load() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed bool
	s.items, removed = removeAll(s.items, fp)
	if len(s.items) == 0 {
		s.active.Store(false)
	}
	return removed
}

// Active reports, without locking, whether any keyword is enabled globally.
func (s *GlobalSet) Active() bool {
	return s.active.Load()
}

// Contains reports whether fp is enabled globally.
func (s *GlobalSet) Contains(fp uint64) bool {
	if !s.active.Load() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.items, fp) >= 0
}

// Each calls fn for every globally enabled keyword while holding the set's
// lock. fn must not call back into the GlobalSet.
func (s *GlobalSet) Each(fn func(Keyword)) {
	if !s.active.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kw := range s.items {
		fn(kw)
	}
}

// Snapshot returns a copy of the globally enabled keywords.
func (s *GlobalSet) Snapshot() []Keyword {
	if !s.active.Load() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Keyword, len(s.items))
	copy(out, s.items)
	return out
}

func indexOf(items []Keyword, fp uint64) int {
	for i, kw := range items {
		if kw.Fingerprint == fp {
			return i
		}
	}
	return -1
}

func removeAll(items []Keyword, fp uint64) ([]Keyword, bool) {
	kept := items[:0]
	for _, kw := range items {
		if kw.Fingerprint != fp {
			kept = append(kept, kw)
		}
	}
	removed := len(kept) != len(items)
	clear(items[len(kept):])
	return kept, removed
}

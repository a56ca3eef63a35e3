// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package keyword

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/gogpu/variants/fingerprint"
)

// HashFunc maps a keyword name to its fingerprint.
type HashFunc func(name string) uint64

// Registry is the process-wide set of keywords. Entries are never removed.
type Registry struct {
	mu      sync.Mutex
	entries []Keyword
	index   map[uint64]int // fingerprint -> position in entries

	hash   HashFunc
	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithHash replaces the fingerprint function. Intended for tests that need
// deterministic collisions.
func WithHash(h HashFunc) RegistryOption {
	return func(r *Registry) {
		r.hash = h
	}
}

// WithLogger sets the logger used to report collisions.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		index:  make(map[uint64]int, 64),
		hash:   fingerprint.String64,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fingerprint returns the fingerprint name would be registered under.
func (r *Registry) Fingerprint(name string) uint64 {
	return r.hash(name)
}

// Reserve registers name and returns its fingerprint. Reserving a registered
// name again is a no-op that returns the same fingerprint. A different name
// with an existing fingerprint is rejected with a *CollisionError and 0.
func (r *Registry) Reserve(name string) (uint64, error) {
	if name == "" {
		return 0, ErrEmptyName
	}
	fp := r.hash(name)
	if fp == 0 {
		return 0, fmt.Errorf("%w: %q", ErrZeroFingerprint, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.index[fp]; ok {
		existing := r.entries[i].Name
		if existing != name {
			r.logger.LogAttrs(context.Background(), slog.LevelWarn, "keyword collision",
				slog.String("name", name),
				slog.String("existing", existing),
				slog.String("fingerprint", fmt.Sprintf("0x%x", fp)),
			)
			return 0, &CollisionError{Name: name, Existing: existing, Fingerprint: fp}
		}
		return fp, nil
	}

	r.index[fp] = len(r.entries)
	r.entries = append(r.entries, Keyword{Name: name, Fingerprint: fp})
	return fp, nil
}

// Lookup returns the fingerprint of a registered name.
func (r *Registry) Lookup(name string) (uint64, bool) {
	if name == "" {
		return 0, false
	}
	fp := r.hash(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[fp]
	if !ok || r.entries[i].Name != name {
		return 0, false
	}
	return fp, true
}

// Name returns the name registered under fp.
func (r *Registry) Name(fp uint64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[fp]
	if !ok {
		return "", false
	}
	return r.entries[i].Name, true
}

// List returns a copy of all keywords in registration order.
func (r *Registry) List() []Keyword {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Keyword, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered keywords.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Dump formats the registry for diagnostics: one "<fingerprint> <name>" line
// per keyword followed by "count = <n>".
func (r *Registry) Dump() string {
	list := r.List()

	var sb strings.Builder
	for _, kw := range list {
		sb.WriteString(kw.String())
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "count = %d\n", len(list))
	return sb.String()
}

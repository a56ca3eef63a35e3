// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package unit stores compiled shader units for one worker.
//
// Units live in an append-only arena and are addressed by Handle. A handle
// encodes the 1-based position and the arena generation, so handles issued
// before Clear are rejected instead of aliasing newer units.
package unit

import (
	"errors"
	"fmt"

	"github.com/gogpu/variants/backend"
)

// ErrInvalidHandle reports a zero, stale or out-of-range handle.
var ErrInvalidHandle = errors.New("unit: invalid handle")

// Handle addresses a Unit in a Store. The zero Handle is never valid.
type Handle uint64

// Index returns the 1-based position of the unit within its generation.
func (h Handle) Index() int {
	return int(uint32(h))
}

// Generation returns the store generation that issued h.
func (h Handle) Generation() uint32 {
	return uint32(h >> 32)
}

// Valid reports whether h is non-zero. It does not consult any store.
func (h Handle) Valid() bool {
	return uint32(h) != 0
}

func (h Handle) String() string {
	if !h.Valid() {
		return "unit(none)"
	}
	return fmt.Sprintf("unit(%d@%d)", h.Index(), h.Generation())
}

func makeHandle(gen uint32, index int) Handle {
	return Handle(uint64(gen)<<32 | uint64(uint32(index)))
}

// Unit is one compiled shader stage.
type Unit struct {
	Source string
	Stage  backend.Stage

	// Combo is the sealed combination fingerprint the unit was compiled
	// under, 0 when no keyword was enabled.
	Combo uint64

	// Parent is the unit this one was recompiled from, or zero.
	Parent Handle

	Compiled backend.Compiled
}

// Store is a per-worker unit arena. It is not safe for concurrent use.
type Store struct {
	units []Unit
	gen   uint32
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Put appends u and returns its handle.
func (s *Store) Put(u Unit) Handle {
	s.units = append(s.units, u)
	return makeHandle(s.gen, len(s.units))
}

// Get returns the unit addressed by h.
func (s *Store) Get(h Handle) (*Unit, bool) {
	if !h.Valid() || h.Generation() != s.gen {
		return nil, false
	}
	i := h.Index()
	if i > len(s.units) {
		return nil, false
	}
	return &s.units[i-1], true
}

// Len returns the number of units in the current generation.
func (s *Store) Len() int {
	return len(s.units)
}

// Clear drops every unit. Handles issued so far become invalid and
// numbering restarts at 1.
func (s *Store) Clear() {
	clear(s.units)
	s.units = s.units[:0]
	s.gen++
}

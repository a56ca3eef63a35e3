// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package variant

import (
	"slices"
	"strings"

	"github.com/gogpu/variants/fingerprint"
	"github.com/gogpu/variants/keyword"
)

// HashFunc computes a combination fingerprint from canonical members.
type HashFunc func(members []uint64) uint64

// Builder accumulates the keywords of one compilation cycle and the preamble
// that defines them. A cycle ends with Reset, normally on program link.
type Builder struct {
	pending  []uint64
	preamble strings.Builder
	sealed   uint64
	hash     HashFunc
}

// NewBuilder returns a Builder using fingerprint.Combo. A nil hash selects
// the default.
func NewBuilder(hash HashFunc) *Builder {
	if hash == nil {
		hash = fingerprint.Combo
	}
	return &Builder{hash: hash}
}

// Add records kw for the next seal and appends "#define <name>" to the
// preamble. A fingerprint already recorded in this cycle is ignored. Adding
// re-opens a sealed cycle.
func (b *Builder) Add(kw keyword.Keyword) {
	b.sealed = 0
	if slices.Contains(b.pending, kw.Fingerprint) {
		return
	}
	b.pending = append(b.pending, kw.Fingerprint)
	b.preamble.WriteString("#define ")
	b.preamble.WriteString(kw.Name)
	b.preamble.WriteByte('\n')
}

// Sealed reports whether the current cycle already has a non-empty
// combination.
func (b *Builder) Sealed() bool {
	return b.sealed != 0
}

// Fingerprint returns the sealed fingerprint, or 0.
func (b *Builder) Fingerprint() uint64 {
	return b.sealed
}

// Pending returns the number of distinct keywords recorded in this cycle.
func (b *Builder) Pending() int {
	return len(b.pending)
}

// Seal canonicalises the recorded members and derives the combination
// fingerprint. With no members the result is the zero Combo.
func (b *Builder) Seal() Combo {
	if len(b.pending) == 0 {
		b.sealed = 0
		return Combo{}
	}
	slices.Sort(b.pending)
	b.pending = slices.Compact(b.pending)

	members := slices.Clone(b.pending)
	b.sealed = b.hash(members)
	return Combo{Fingerprint: b.sealed, Members: members}
}

// Preamble returns the accumulated preamble text.
func (b *Builder) Preamble() string {
	return b.preamble.String()
}

// SetPreamble replaces the preamble text.
func (b *Builder) SetPreamble(text string) {
	b.preamble.Reset()
	b.preamble.WriteString(text)
}

// ClearPreamble empties the preamble text without touching the members.
func (b *Builder) ClearPreamble() {
	b.preamble.Reset()
}

// Reset starts a new cycle.
func (b *Builder) Reset() {
	b.pending = b.pending[:0]
	b.preamble.Reset()
	b.sealed = 0
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/variants/backend"
)

func TestStorePutGet(t *testing.T) {
	s := NewStore()
	h1 := s.Put(Unit{Source: "a", Stage: backend.StageVertex, Combo: 11})
	h2 := s.Put(Unit{Source: "b", Stage: backend.StageFragment})

	assert.Equal(t, 1, h1.Index())
	assert.Equal(t, 2, h2.Index())
	assert.Equal(t, 2, s.Len())

	u, ok := s.Get(h1)
	require.True(t, ok)
	assert.Equal(t, "a", u.Source)
	assert.Equal(t, uint64(11), u.Combo)
	assert.False(t, u.Parent.Valid())
}

func TestStoreInvalidHandles(t *testing.T) {
	s := NewStore()
	s.Put(Unit{})

	tests := []struct {
		name string
		h    Handle
	}{
		{"zero", 0},
		{"out of range", makeHandle(0, 2)},
		{"future generation", makeHandle(1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := s.Get(tt.h)
			assert.False(t, ok)
		})
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	old := s.Put(Unit{Source: "old"})
	s.Clear()

	assert.Zero(t, s.Len())
	_, ok := s.Get(old)
	assert.False(t, ok, "handle from before Clear must be rejected")

	h := s.Put(Unit{Source: "new"})
	assert.Equal(t, 1, h.Index())
	assert.NotEqual(t, old, h)

	u, ok := s.Get(h)
	require.True(t, ok)
	assert.Equal(t, "new", u.Source)
}

func TestHandleString(t *testing.T) {
	assert.Equal(t, "unit(none)", Handle(0).String())
	assert.Equal(t, "unit(3@1)", makeHandle(1, 3).String())
}

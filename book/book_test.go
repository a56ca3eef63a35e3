// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name  string
		base  []uint32
		words []uint32
		want  []Section
	}{
		{"identical", []uint32{1, 2, 3}, []uint32{1, 2, 3}, []Section{{0, 3, true}}},
		{"middle change", []uint32{1, 2, 3, 4}, []uint32{1, 9, 9, 4}, []Section{{0, 1, true}, {1, 3, false}, {3, 4, true}}},
		{"first differs", []uint32{1, 2}, []uint32{7, 2}, []Section{{0, 1, false}, {1, 2, true}}},
		{"longer chapter", []uint32{1, 2}, []uint32{1, 2, 3, 4}, []Section{{0, 2, true}, {2, 4, false}}},
		{"shorter chapter", []uint32{1, 2, 3}, []uint32{1}, []Section{{0, 1, true}, {1, 3, false}}},
		{"empty chapter", []uint32{1, 2}, nil, []Section{{0, 2, false}}},
		{"both empty", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Diff(tt.base, tt.words))
		})
	}
}

func TestDiffCoversLongerStream(t *testing.T) {
	base := []uint32{5, 5, 6, 6, 7}
	words := []uint32{5, 4, 6, 3, 7, 8, 9}
	sections := Diff(base, words)

	end := 0
	for i, s := range sections {
		assert.Equal(t, end, s.Start)
		assert.Positive(t, s.Len())
		if i > 0 {
			assert.NotEqual(t, sections[i-1].Match, s.Match)
		}
		end = s.End
	}
	assert.Equal(t, len(words), end)
}

func TestAddChapter(t *testing.T) {
	b := New([]uint32{1, 2, 3, 4})
	c := b.AddChapter(0xabc, []uint32{1, 2, 0, 4, 5})

	assert.Equal(t, uint64(0xabc), c.ID)
	assert.Equal(t, 5, c.Length)
	assert.Equal(t, 3, c.Shared())
	assert.Equal(t, 2, c.Changed())
	assert.Len(t, b.Chapters(), 1)
	assert.Contains(t, c.String(), "matches 0 to 2")
	assert.Contains(t, c.String(), "differs 4 to 5")
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package book compares variant binaries against a base binary.
//
// A Book holds the base word stream. Each added Chapter is another variant
// of the same shader, described as alternating runs of words that match the
// base at the same position and words that do not.
package book

import (
	"fmt"
	"strings"
)

// Section is the half-open word range [Start, End).
type Section struct {
	Start int
	End   int
	Match bool
}

// Len returns the number of words in the section.
func (s Section) Len() int {
	return s.End - s.Start
}

func (s Section) String() string {
	state := "differs"
	if s.Match {
		state = "matches"
	}
	return fmt.Sprintf("%s %d to %d", state, s.Start, s.End)
}

// Chapter is the comparison of one variant with the base.
type Chapter struct {
	// ID is the caller's identifier, normally the combination fingerprint.
	ID       uint64
	Length   int
	Sections []Section
}

// Shared returns the number of words equal to the base at the same offset.
func (c Chapter) Shared() int {
	n := 0
	for _, s := range c.Sections {
		if s.Match {
			n += s.Len()
		}
	}
	return n
}

// Changed returns the number of words that differ from the base, including
// words past the end of the shorter stream.
func (c Chapter) Changed() int {
	n := 0
	for _, s := range c.Sections {
		if !s.Match {
			n += s.Len()
		}
	}
	return n
}

func (c Chapter) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "chapter 0x%016x: %d words, %d shared\n", c.ID, c.Length, c.Shared())
	for _, s := range c.Sections {
		b.WriteString("  ")
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Book is a base stream and the chapters compared with it. It is not safe
// for concurrent use.
type Book struct {
	base     []uint32
	chapters []Chapter
}

// New returns a Book over base. The slice is retained.
func New(base []uint32) *Book {
	return &Book{base: base}
}

// Base returns the base stream.
func (b *Book) Base() []uint32 {
	return b.base
}

// AddChapter compares words with the base and records the result.
func (b *Book) AddChapter(id uint64, words []uint32) Chapter {
	c := Chapter{ID: id, Length: len(words), Sections: Diff(b.base, words)}
	b.chapters = append(b.chapters, c)
	return c
}

// Chapters returns the recorded chapters in insertion order.
func (b *Book) Chapters() []Chapter {
	return b.chapters
}

// Diff splits the common prefix range of base and words into maximal runs
// of matching and differing words. When the lengths differ, the remainder
// of the longer stream is one trailing differing section. Empty streams
// yield no sections.
func Diff(base, words []uint32) []Section {
	n := min(len(base), len(words))
	var sections []Section
	start := 0
	for i := 1; i <= n; i++ {
		if i == n || (base[i] == words[i]) != (base[start] == words[start]) {
			sections = append(sections, Section{Start: start, End: i, Match: base[start] == words[start]})
			start = i
		}
	}
	if longest := max(len(base), len(words)); longest > n {
		sections = append(sections, Section{Start: n, End: longest})
	}
	return sections
}

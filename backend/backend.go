// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"maps"
	"slices"
)

// Request is the input of a single compile.
type Request struct {
	// Source is the shader text as written by the user.
	Source string

	// Stage selects the entry point to compile.
	Stage Stage

	// Preamble is prepended to Source before parsing. It normally holds
	// one "#define" line per enabled keyword.
	Preamble string

	// Defines are extra NAME or NAME=VALUE definitions.
	Defines []string
}

// Compiled is one stage compiled by a Compiler. Object is owned by the
// Compiler that produced it and is only meaningful to the matching Linker.
type Compiled struct {
	Stage  Stage
	Object any
	Log    string
}

// Linked is the result of linking one or more compiled units.
type Linked struct {
	// Object is the linker's own representation, used by its Decompiler.
	Object any

	binaries map[Stage][]uint32
}

// NewLinked returns an empty Linked holding obj.
func NewLinked(obj any) Linked {
	return Linked{Object: obj, binaries: make(map[Stage][]uint32)}
}

// SetBinary stores the word stream of a stage.
func (l *Linked) SetBinary(s Stage, words []uint32) {
	if l.binaries == nil {
		l.binaries = make(map[Stage][]uint32)
	}
	l.binaries[s] = words
}

// Binary returns the word stream of a stage.
func (l Linked) Binary(s Stage) ([]uint32, bool) {
	w, ok := l.binaries[s]
	return w, ok
}

// Stages returns the linked stages in pipeline order.
func (l Linked) Stages() []Stage {
	return slices.Sorted(maps.Keys(l.binaries))
}

// Compiler compiles shader source for one stage.
type Compiler interface {
	Compile(ctx context.Context, req Request) (Compiled, error)
}

// Linker links compiled units into per-stage binaries.
type Linker interface {
	Link(ctx context.Context, units []Compiled) (Linked, error)
}

// Decompiler translates a linked stage into a target language.
type Decompiler interface {
	Decompile(ctx context.Context, l Linked, s Stage, t Target) (string, error)
}

// CodeGen operates on opaque 32-bit word streams.
type CodeGen interface {
	Assemble(text string) ([]uint32, error)
	Disassemble(words []uint32) (string, error)
	Validate(words []uint32) error
	Optimize(words []uint32) ([]uint32, error)
}

// Configured is implemented by collaborators whose output depends on their
// settings. Config describes those settings; equal settings give equal text.
type Configured interface {
	Config() string
}

// Backend bundles the collaborators a session needs.
type Backend interface {
	Compiler
	Linker
	Decompiler
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrCompile classifies compiler diagnostics.
	ErrCompile = errors.New("backend: compile failed")

	// ErrLink classifies linker diagnostics.
	ErrLink = errors.New("backend: link failed")

	// ErrDecompile classifies decompiler diagnostics.
	ErrDecompile = errors.New("backend: decompile failed")

	// ErrCodeGen classifies word stream tooling diagnostics.
	ErrCodeGen = errors.New("backend: codegen failed")
)

// Diagnostic is a collaborator failure. Log is the collaborator's own text.
type Diagnostic struct {
	Kind  error // one of the Err* sentinels
	Stage Stage
	Log   string
	Err   error // underlying cause, may be nil
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Kind == ErrCodeGen {
		return fmt.Sprintf("%v: %s", d.Kind, d.Log)
	}
	return fmt.Sprintf("%v (%s): %s", d.Kind, d.Stage, d.Log)
}

// Unwrap exposes both the kind sentinel and the cause.
func (d *Diagnostic) Unwrap() []error {
	if d.Err == nil {
		return []error{d.Kind}
	}
	return []error{d.Kind, d.Err}
}

// CompileError returns a compile Diagnostic for s.
func CompileError(s Stage, err error) *Diagnostic {
	return &Diagnostic{Kind: ErrCompile, Stage: s, Log: err.Error(), Err: err}
}

// LinkError returns a link Diagnostic for s.
func LinkError(s Stage, err error) *Diagnostic {
	return &Diagnostic{Kind: ErrLink, Stage: s, Log: err.Error(), Err: err}
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import "github.com/gogpu/variants/backend"

// Tools implements backend.CodeGen. Failures are reported as
// *backend.Diagnostic wrapping backend.ErrCodeGen and the *Error.
type Tools struct{}

var _ backend.CodeGen = Tools{}

func diagnose(err error) error {
	if err == nil {
		return nil
	}
	return &backend.Diagnostic{Kind: backend.ErrCodeGen, Log: err.Error(), Err: err}
}

// Assemble implements backend.CodeGen.
func (Tools) Assemble(text string) ([]uint32, error) {
	w, err := Assemble(text)
	return w, diagnose(err)
}

// Disassemble implements backend.CodeGen.
func (Tools) Disassemble(words []uint32) (string, error) {
	s, err := Disassemble(words)
	return s, diagnose(err)
}

// Validate implements backend.CodeGen.
func (Tools) Validate(words []uint32) error {
	return diagnose(Validate(words))
}

// Optimize implements backend.CodeGen.
func (Tools) Optimize(words []uint32) ([]uint32, error) {
	w, err := Optimize(words)
	return w, diagnose(err)
}

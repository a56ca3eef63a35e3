// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package spirv works on SPIR-V binaries as raw 32-bit word streams.
//
// It decodes and encodes the module header and instruction stream, converts
// between words and little-endian bytes, and provides four tools:
//
//   - Disassemble renders a module as .spvasm text with %_N ids.
//   - Assemble parses that text back into words.
//   - Validate checks the structural rules every consumer relies on.
//   - Optimize strips debug instructions.
//
// Disassemble and Assemble are inverse: assembling the disassembly of a
// valid module reproduces it word for word.
//
// Tools bundles the four operations behind the backend.CodeGen interface:
//
//	var gen backend.CodeGen = spirv.Tools{}
//	text, err := gen.Disassemble(words)
package spirv

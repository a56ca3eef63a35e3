// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package backend declares the collaborators the variant compiler drives.
//
// A Compiler turns preprocessed shader source into a compiled unit, a Linker
// combines units into per-stage binaries, a Decompiler translates a linked
// stage back into a high-level shading language, and a CodeGen operates on
// the raw 32-bit word stream. The compiler core treats all four as black
// boxes that either succeed or fail with a Diagnostic.
//
// The default implementation of Compiler, Linker and Decompiler lives in the
// wgsl subpackage; package spirv implements CodeGen.
package backend

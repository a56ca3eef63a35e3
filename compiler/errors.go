// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"errors"

	"github.com/gogpu/variants/backend"
	"github.com/gogpu/variants/keyword"
	"github.com/gogpu/variants/unit"
	"github.com/gogpu/variants/variant"
)

var (
	// ErrKeywordsSealed reports AddKeyword between a successful compile and
	// the next link.
	ErrKeywordsSealed = errors.New("compiler: keyword addition is closed until the next link")

	// ErrNotLinked reports use of a program that was never linked.
	ErrNotLinked = errors.New("compiler: program is not linked")

	// ErrUnknownCombo reports a combination fingerprint the session never
	// sealed.
	ErrUnknownCombo = errors.New("compiler: unknown combination")
)

// ErrorKind classifies errors returned by this package.
type ErrorKind uint8

const (
	// KindOther is any error not listed below, including context errors.
	KindOther ErrorKind = iota

	// NameCollision: a keyword name hashes to another keyword's fingerprint.
	NameCollision

	// ComboCollision: two keyword sets sealed to one fingerprint. Not retriable.
	ComboCollision

	// UnknownKeyword: a name or combination that was never registered.
	UnknownKeyword

	// InvalidHandle: a stale, unknown or already recompiled unit handle.
	InvalidHandle

	// ExternalCompileFailure: the backend compiler rejected the source.
	ExternalCompileFailure

	// ExternalLinkFailure: the backend linker rejected the units.
	ExternalLinkFailure

	// ExternalDecompileFailure: the backend could not produce the target.
	ExternalDecompileFailure

	// KeywordsSealed: keyword addition attempted inside a compiled cycle.
	KeywordsSealed
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case NameCollision:
		return "NameCollision"
	case ComboCollision:
		return "ComboCollision"
	case UnknownKeyword:
		return "UnknownKeyword"
	case InvalidHandle:
		return "InvalidHandle"
	case ExternalCompileFailure:
		return "ExternalCompileFailure"
	case ExternalLinkFailure:
		return "ExternalLinkFailure"
	case ExternalDecompileFailure:
		return "ExternalDecompileFailure"
	case KeywordsSealed:
		return "KeywordsSealed"
	default:
		return "Other"
	}
}

// KindOf classifies err. A nil error is KindOther.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, variant.ErrComboCollision):
		return ComboCollision
	case errors.Is(err, keyword.ErrNameCollision), errors.Is(err, keyword.ErrZeroFingerprint):
		return NameCollision
	case errors.Is(err, keyword.ErrUnknownKeyword), errors.Is(err, ErrUnknownCombo):
		return UnknownKeyword
	case errors.Is(err, unit.ErrInvalidHandle), errors.Is(err, ErrNotLinked):
		return InvalidHandle
	case errors.Is(err, ErrKeywordsSealed):
		return KeywordsSealed
	case errors.Is(err, backend.ErrCompile):
		return ExternalCompileFailure
	case errors.Is(err, backend.ErrLink):
		return ExternalLinkFailure
	case errors.Is(err, backend.ErrDecompile):
		return ExternalDecompileFailure
	}
	return KindOther
}

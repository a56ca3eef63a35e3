// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package keyword holds the keyword registry and the enabled-keyword sets.
//
// A keyword is a named boolean shader feature. It is identified by the 64-bit
// FNV-1a fingerprint of its name; the registry refuses a second name that
// hashes to an already registered fingerprint.
//
// # Sharing
//
// Registry and GlobalSet are shared by every compilation worker and are safe
// for concurrent use. They use separate locks and never hold both.
// Cache and LocalSet belong to a single worker and are not synchronized.
package keyword

import (
	"errors"
	"fmt"
)

// Keyword is a registered feature toggle.
type Keyword struct {
	Name        string
	Fingerprint uint64
}

// String returns the registry dump form of the keyword.
func (k Keyword) String() string {
	return fmt.Sprintf("0x%016x %s", k.Fingerprint, k.Name)
}

var (
	// ErrNameCollision reports two different names with the same fingerprint.
	ErrNameCollision = errors.New("keyword: fingerprint collision")

	// ErrUnknownKeyword reports a name that was never registered.
	ErrUnknownKeyword = errors.New("keyword: unknown keyword")

	// ErrEmptyName reports an attempt to register an empty name.
	ErrEmptyName = errors.New("keyword: empty name")

	// ErrZeroFingerprint reports a name whose fingerprint is the reserved
	// "absent" value 0 and therefore cannot be represented.
	ErrZeroFingerprint = errors.New("keyword: name hashes to reserved fingerprint 0")
)

// CollisionError describes a rejected registration.
type CollisionError struct {
	// Name is the rejected name.
	Name string

	// Existing is the name already registered under Fingerprint.
	Existing string

	// Fingerprint is the shared fingerprint.
	Fingerprint uint64
}

// Error implements the error interface.
func (e *CollisionError) Error() string {
	return fmt.Sprintf("keyword: %q collides with fingerprint 0x%x of %q", e.Name, e.Fingerprint, e.Existing)
}

// Unwrap makes errors.Is(err, ErrNameCollision) hold.
func (e *CollisionError) Unwrap() error {
	return ErrNameCollision
}

// UnknownError names the keyword that could not be resolved.
type UnknownError struct {
	Name string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("keyword: %q is not registered", e.Name)
}

func (e *UnknownError) Unwrap() error {
	return ErrUnknownKeyword
}

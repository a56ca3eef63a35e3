// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package variant seals keyword combinations into fingerprints and keeps the
// per-worker ledger that detects combination fingerprint collisions.
//
// A compilation cycle accumulates keywords in a Builder. Sealing sorts and
// deduplicates the member fingerprints and hashes them, so the resulting
// Combo does not depend on the order keywords were enabled in. A Ledger then
// admits the Combo only if its fingerprint was never sealed for a different
// member list.
package variant

import (
	"errors"
	"fmt"
	"slices"
)

// Combo is the exact keyword set that affected one compiled unit.
type Combo struct {
	// Fingerprint identifies the combination; 0 means "no keywords".
	Fingerprint uint64

	// Members are keyword fingerprints, ascending and unique.
	Members []uint64
}

// Empty reports whether the combo has no members.
func (c Combo) Empty() bool {
	return len(c.Members) == 0
}

// Equal reports whether both combos have the same fingerprint and members.
func (c Combo) Equal(o Combo) bool {
	return c.Fingerprint == o.Fingerprint && slices.Equal(c.Members, o.Members)
}

// ErrComboCollision reports two different keyword sets sealed to the same
// fingerprint. It is not retriable.
var ErrComboCollision = errors.New("variant: combination fingerprint collision")

// CollisionError carries both member lists of a combination collision.
type CollisionError struct {
	Fingerprint uint64
	Sealed      []uint64 // members already in the ledger
	Rejected    []uint64 // members of the refused combo
}

// Error implements the error interface.
func (e *CollisionError) Error() string {
	return fmt.Sprintf("variant: combination 0x%x already sealed as %v, refusing %v", e.Fingerprint, e.Sealed, e.Rejected)
}

// Unwrap makes errors.Is(err, ErrComboCollision) hold.
func (e *CollisionError) Unwrap() error {
	return ErrComboCollision
}

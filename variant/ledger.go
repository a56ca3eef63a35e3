// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package variant

import "slices"

// Ledger remembers every combination sealed by one worker.
type Ledger struct {
	combos []Combo
	index  map[uint64]int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{index: make(map[uint64]int)}
}

// Authenticate admits c. An unseen fingerprint is recorded; a known
// fingerprint is accepted only when its members are identical, otherwise a
// *CollisionError is returned. The empty combination is always accepted and
// never recorded.
func (l *Ledger) Authenticate(c Combo) error {
	if c.Fingerprint == 0 {
		return nil
	}
	if i, ok := l.index[c.Fingerprint]; ok {
		sealed := l.combos[i]
		if !slices.Equal(sealed.Members, c.Members) {
			return &CollisionError{
				Fingerprint: c.Fingerprint,
				Sealed:      slices.Clone(sealed.Members),
				Rejected:    slices.Clone(c.Members),
			}
		}
		return nil
	}
	l.index[c.Fingerprint] = len(l.combos)
	l.combos = append(l.combos, Combo{Fingerprint: c.Fingerprint, Members: slices.Clone(c.Members)})
	return nil
}

// Lookup returns the combination sealed under fp.
func (l *Ledger) Lookup(fp uint64) (Combo, bool) {
	i, ok := l.index[fp]
	if !ok {
		return Combo{}, false
	}
	return l.combos[i], true
}

// Len returns the number of recorded combinations.
func (l *Ledger) Len() int {
	return len(l.combos)
}

// Combos returns the recorded combinations in seal order.
func (l *Ledger) Combos() []Combo {
	return slices.Clone(l.combos)
}

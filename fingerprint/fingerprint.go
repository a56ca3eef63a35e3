// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package fingerprint implements the FNV-1a hashes used to identify keywords
// and keyword combinations.
//
// Keyword fingerprints are the 64-bit FNV-1a hash of the keyword name.
// Combination fingerprints hash the base-10 text of the sorted member
// fingerprints concatenated without separators, which keeps values
// bit-compatible with fingerprints persisted by earlier tools.
package fingerprint

import "strconv"

// FNV-1a parameters.
const (
	Offset64 uint64 = 14695981039346656037
	Prime64  uint64 = 1099511628211
	Offset32 uint32 = 2166136261
	Prime32  uint32 = 16777619
)

// Hash64 returns the 64-bit FNV-1a hash of b.
func Hash64(b []byte) uint64 {
	v := Offset64
	for _, c := range b {
		v = (v ^ uint64(c)) * Prime64
	}
	return v
}

// String64 returns the 64-bit FNV-1a hash of s without copying it.
func String64(s string) uint64 {
	v := Offset64
	for i := 0; i < len(s); i++ {
		v = (v ^ uint64(s[i])) * Prime64
	}
	return v
}

// Hash32 returns the 32-bit FNV-1a hash of b.
func Hash32(b []byte) uint32 {
	v := Offset32
	for _, c := range b {
		v = (v ^ uint32(c)) * Prime32
	}
	return v
}

// String32 returns the 32-bit FNV-1a hash of s.
func String32(s string) uint32 {
	v := Offset32
	for i := 0; i < len(s); i++ {
		v = (v ^ uint32(s[i])) * Prime32
	}
	return v
}

// Combo returns the combination fingerprint of members, which must already be
// sorted ascending and deduplicated. An empty slice yields 0.
func Combo(members []uint64) uint64 {
	if len(members) == 0 {
		return 0
	}
	// 20 digits is the widest uint64.
	buf := make([]byte, 0, 20*len(members))
	for _, m := range members {
		buf = strconv.AppendUint(buf, m, 10)
	}
	return Hash64(buf)
}

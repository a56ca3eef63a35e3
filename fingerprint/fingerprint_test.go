// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"hash/fnv"
	"strconv"
	"testing"
)

func TestHash64MatchesFNV1a(t *testing.T) {
	inputs := []string{"", "a", "FOO", "BAR", "LIT", "NOT_LOD_BIAS", "keyword with spaces", "\xff\x80"}
	for _, in := range inputs {
		t.Run(strconv.Quote(in), func(t *testing.T) {
			h := fnv.New64a()
			_, _ = h.Write([]byte(in))
			if got, want := Hash64([]byte(in)), h.Sum64(); got != want {
				t.Errorf("Hash64(%q) = %#x, want %#x", in, got, want)
			}
			if got, want := String64(in), h.Sum64(); got != want {
				t.Errorf("String64(%q) = %#x, want %#x", in, got, want)
			}
		})
	}
}

func TestHash32MatchesFNV1a(t *testing.T) {
	for _, in := range []string{"", "a", "FOO", "BAR"} {
		h := fnv.New32a()
		_, _ = h.Write([]byte(in))
		if got, want := Hash32([]byte(in)), h.Sum32(); got != want {
			t.Errorf("Hash32(%q) = %#x, want %#x", in, got, want)
		}
		if got, want := String32(in), h.Sum32(); got != want {
			t.Errorf("String32(%q) = %#x, want %#x", in, got, want)
		}
	}
}

func TestKnownVectors(t *testing.T) {
	// FNV-1a reference test vectors.
	if got := String64(""); got != 0xcbf29ce484222325 {
		t.Errorf("String64(\"\") = %#x", got)
	}
	if got := String64("a"); got != 0xaf63dc4c8601ec8c {
		t.Errorf("String64(\"a\") = %#x", got)
	}
	if got := String32("a"); got != 0xe40c292c {
		t.Errorf("String32(\"a\") = %#x", got)
	}
}

func TestComboEncoding(t *testing.T) {
	if got := Combo(nil); got != 0 {
		t.Fatalf("Combo(nil) = %d, want 0", got)
	}

	members := []uint64{3, 42, 18446744073709551615}
	want := String64("34218446744073709551615")
	if got := Combo(members); got != want {
		t.Errorf("Combo(%v) = %#x, want %#x", members, got, want)
	}
}

func TestComboDependsOnOrder(t *testing.T) {
	// Combo expects canonical input; callers sort before hashing.
	if Combo([]uint64{1, 2}) == Combo([]uint64{2, 1}) {
		t.Error("Combo should hash the given order verbatim")
	}
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Magic is the first word of every SPIR-V module.
const Magic uint32 = 0x07230203

// HeaderWords is the size of the module header in words.
const HeaderWords = 5

// Version is a SPIR-V version word: 0x00MMmm00.
type Version uint32

// Common SPIR-V versions.
const (
	Version1_0 Version = 0x00010000
	Version1_3 Version = 0x00010300
	Version1_5 Version = 0x00010500
	Version1_6 Version = 0x00010600
)

// MakeVersion builds a version word.
func MakeVersion(major, minor uint8) Version {
	return Version(uint32(major)<<16 | uint32(minor)<<8)
}

// Major returns the major version.
func (v Version) Major() uint8 { return uint8(v >> 16) }

// Minor returns the minor version.
func (v Version) Minor() uint8 { return uint8(v >> 8) }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

// Header is the five-word module header.
type Header struct {
	Version   Version
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// Instruction is one decoded instruction.
type Instruction struct {
	Opcode   uint16
	Operands []uint32

	// Offset is the word index of the instruction within the module.
	Offset int
}

// WordCount returns the encoded size of the instruction.
func (in Instruction) WordCount() int {
	return len(in.Operands) + 1
}

// Name returns the opcode mnemonic.
func (in Instruction) Name() string {
	return opcodeName(in.Opcode)
}

// Error is a malformed module or assembly failure.
type Error struct {
	// Offset is the word index for binary errors, -1 otherwise.
	Offset int
	// Line is the 1-based source line for assembly errors, 0 otherwise.
	Line    int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("spirv: line %d: %s", e.Line, e.Message)
	case e.Offset >= 0:
		return fmt.Sprintf("spirv: word %d: %s", e.Offset, e.Message)
	default:
		return "spirv: " + e.Message
	}
}

func wordErr(offset int, format string, args ...any) *Error {
	return &Error{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// Words converts a binary file to words. Big-endian modules are detected by
// the magic number and byte swapped.
func Words(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, &Error{Offset: -1, Message: fmt.Sprintf("size %d is not a multiple of 4", len(b))}
	}
	if len(b) < 4 {
		return nil, &Error{Offset: -1, Message: "empty module"}
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	if words[0] == bits.ReverseBytes32(Magic) {
		for i, w := range words {
			words[i] = bits.ReverseBytes32(w)
		}
	}
	return words, nil
}

// Bytes converts words to a little-endian binary.
func Bytes(words []uint32) []byte {
	b := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

// ParseHeader reads the module header.
func ParseHeader(words []uint32) (Header, error) {
	if len(words) < HeaderWords {
		return Header{}, wordErr(0, "module too small: %d words", len(words))
	}
	if words[0] != Magic {
		return Header{}, wordErr(0, "invalid magic 0x%08x", words[0])
	}
	return Header{
		Version:   Version(words[1]),
		Generator: words[2],
		Bound:     words[3],
		Schema:    words[4],
	}, nil
}

// Decode splits a module into its header and instructions.
func Decode(words []uint32) (Header, []Instruction, error) {
	h, err := ParseHeader(words)
	if err != nil {
		return Header{}, nil, err
	}
	var insts []Instruction
	for off := HeaderWords; off < len(words); {
		w := words[off]
		count := int(w >> 16)
		if count == 0 || off+count > len(words) {
			return h, insts, wordErr(off, "invalid word count %d", count)
		}
		insts = append(insts, Instruction{
			Opcode:   uint16(w),
			Operands: words[off+1 : off+count : off+count],
			Offset:   off,
		})
		off += count
	}
	return h, insts, nil
}

// Encode assembles a header and instructions into words.
func Encode(h Header, insts []Instruction) []uint32 {
	n := HeaderWords
	for _, in := range insts {
		n += in.WordCount()
	}
	words := make([]uint32, 0, n)
	words = append(words, Magic, uint32(h.Version), h.Generator, h.Bound, h.Schema)
	for _, in := range insts {
		words = append(words, uint32(in.WordCount())<<16|uint32(in.Opcode))
		words = append(words, in.Operands...)
	}
	return words
}

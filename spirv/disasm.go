// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"fmt"
	"strconv"
	"strings"
)

// Disassemble renders words as .spvasm text.
func Disassemble(words []uint32) (string, error) {
	h, insts, err := Decode(words)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("; SPIR-V\n")
	fmt.Fprintf(&b, "; Version: %s\n", h.Version)
	fmt.Fprintf(&b, "; Generator: 0x%08X\n", h.Generator)
	fmt.Fprintf(&b, "; Bound: %d\n", h.Bound)
	fmt.Fprintf(&b, "; Schema: %d\n", h.Schema)
	b.WriteByte('\n')

	for _, in := range insts {
		if err := writeInstruction(&b, in); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func id(n uint32) string {
	return "%_" + strconv.FormatUint(uint64(n), 10)
}

func writeInstruction(b *strings.Builder, in Instruction) error {
	ops := in.Operands
	first := 0
	switch resultShape(in.Opcode) {
	case shapeResult:
		if len(ops) < 1 {
			return wordErr(in.Offset, "%s has no result id", in.Name())
		}
		fmt.Fprintf(b, "         %s = %s", id(ops[0]), in.Name())
		first = 1
	case shapeTypedResult:
		if len(ops) < 2 {
			return wordErr(in.Offset, "%s has no result id", in.Name())
		}
		fmt.Fprintf(b, "         %s = %s %s", id(ops[1]), in.Name(), id(ops[0]))
		first = 2
	default:
		fmt.Fprintf(b, "               %s", in.Name())
	}

	for i, w := first, first; w < len(ops); i++ {
		b.WriteByte(' ')
		k := operandKind(in.Opcode, i, ops[:w])
		switch k.class {
		case classString:
			s, n, err := decodeString(ops[w:])
			if err != nil {
				return wordErr(in.Offset+1+w, "%v", err)
			}
			b.WriteString(quote(s))
			w += n
			continue
		case classLiteral:
			b.WriteString(strconv.FormatUint(uint64(ops[w]), 10))
		case classEnum:
			b.WriteString(k.enum.format(ops[w]))
		default:
			b.WriteString(id(ops[w]))
		}
		w++
	}
	b.WriteByte('\n')
	return nil
}

// decodeString reads a NUL-terminated literal string and returns the number
// of words it occupies.
func decodeString(words []uint32) (string, int, error) {
	var sb strings.Builder
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return sb.String(), i + 1, nil
			}
			sb.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("unterminated string literal")
}

// encodeString packs s with a terminating NUL into little-endian words.
func encodeString(s string) []uint32 {
	words := make([]uint32, len(s)/4+1)
	for i := 0; i < len(s); i++ {
		words[i/4] |= uint32(s[i]) << (8 * (i % 4))
	}
	return words
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

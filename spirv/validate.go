// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import "slices"

// Validate checks the module header, that every instruction fits the
// stream, and that every result id lies inside the id bound.
func Validate(words []uint32) error {
	h, insts, err := Decode(words)
	if err != nil {
		return err
	}
	if h.Version.Major() != 1 || h.Version.Minor() > 6 || uint32(h.Version)&0xFF0000FF != 0 {
		return wordErr(1, "unsupported version 0x%08x", uint32(h.Version))
	}
	if h.Bound == 0 {
		return wordErr(3, "id bound is zero")
	}
	if h.Schema != 0 {
		return wordErr(4, "schema must be 0, got %d", h.Schema)
	}
	if len(insts) == 0 {
		return wordErr(HeaderWords, "module has no instructions")
	}

	for _, in := range insts {
		var result, typ uint32
		switch resultShape(in.Opcode) {
		case shapeResult:
			if len(in.Operands) < 1 {
				return wordErr(in.Offset, "%s missing result id", in.Name())
			}
			result = in.Operands[0]
		case shapeTypedResult:
			if len(in.Operands) < 2 {
				return wordErr(in.Offset, "%s missing result id", in.Name())
			}
			typ, result = in.Operands[0], in.Operands[1]
			if typ == 0 || typ >= h.Bound {
				return wordErr(in.Offset, "%s result type %%%d out of bound %d", in.Name(), typ, h.Bound)
			}
		default:
			continue
		}
		if result == 0 || result >= h.Bound {
			return wordErr(in.Offset, "%s result id %%%d out of bound %d", in.Name(), result, h.Bound)
		}
	}
	return nil
}

// debugOpcodes are removed by Optimize.
var debugOpcodes = []uint16{
	2,   // OpSourceContinued
	3,   // OpSource
	4,   // OpSourceExtension
	5,   // OpName
	6,   // OpMemberName
	7,   // OpString
	8,   // OpLine
	317, // OpNoLine
	330, // OpModuleProcessed
}

// Optimize validates words and returns a copy without debug instructions.
// The header, including the id bound, is unchanged.
func Optimize(words []uint32) ([]uint32, error) {
	if err := Validate(words); err != nil {
		return nil, err
	}
	h, insts, _ := Decode(words)
	insts = slices.DeleteFunc(insts, func(in Instruction) bool {
		return slices.Contains(debugOpcodes, in.Opcode)
	})
	return Encode(h, insts), nil
}

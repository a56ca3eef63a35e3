// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"fmt"
	"strconv"
	"strings"
)

// shape describes where an instruction keeps its result.
type shape uint8

const (
	shapeNone          shape = iota // no result
	shapeResult                     // operand 0 is the result id
	shapeTypedResult                // operand 0 is the result type, operand 1 the result id
)

func resultShape(op uint16) shape {
	switch {
	case op == 7, op == 11, op >= 19 && op <= 33, op == 73, op == 248:
		return shapeResult
	case op == 1, op == 12,
		op >= 41 && op <= 46, op >= 48 && op <= 52,
		op == 54, op == 55, op == 57, op >= 59 && op <= 61,
		op >= 65 && op <= 70, op >= 77 && op <= 84,
		op >= 86 && op <= 107, op >= 109 && op <= 124,
		op >= 126 && op <= 152, op >= 164 && op <= 205,
		op >= 207 && op <= 215, op == 227, op >= 229 && op <= 242,
		op == 245:
		return shapeTypedResult
	}
	return shapeNone
}

type operandClass uint8

const (
	classID operandClass = iota
	classLiteral
	classString
	classEnum
)

type operand struct {
	class operandClass
	enum  *enum
}

var (
	idOperand      = operand{class: classID}
	literalOperand = operand{class: classLiteral}
	stringOperand  = operand{class: classString}
)

func enumOperand(e *enum) operand {
	return operand{class: classEnum, enum: e}
}

// operandKind returns the kind of logical operand i of op. prev holds the
// operand words decoded so far; OpDecorate and OpMemberDecorate depend on
// the decoration already read. Operands not described here are ids, which
// keeps unknown instructions lossless.
//
//nolint:gocyclo,cyclop,funlen // one case per opcode
func operandKind(op uint16, i int, prev []uint32) operand {
	switch op {
	case 3: // OpSource
		switch i {
		case 0:
			return enumOperand(sourceLanguages)
		case 1:
			return literalOperand
		case 3:
			return stringOperand
		}
	case 2, 4, 10, 330: // OpSourceContinued, OpSourceExtension, OpExtension, OpModuleProcessed
		return stringOperand
	case 5: // OpName
		if i == 1 {
			return stringOperand
		}
	case 6: // OpMemberName
		switch i {
		case 1:
			return literalOperand
		case 2:
			return stringOperand
		}
	case 7, 11: // OpString, OpExtInstImport
		if i == 1 {
			return stringOperand
		}
	case 8: // OpLine
		if i > 0 {
			return literalOperand
		}
	case 12: // OpExtInst
		if i == 3 {
			return literalOperand
		}
	case 14: // OpMemoryModel
		if i == 0 {
			return enumOperand(addressingModels)
		}
		return enumOperand(memoryModels)
	case 15: // OpEntryPoint
		switch i {
		case 0:
			return enumOperand(executionModels)
		case 2:
			return stringOperand
		}
	case 16: // OpExecutionMode
		switch {
		case i == 1:
			return enumOperand(executionModes)
		case i > 1:
			return literalOperand
		}
	case 17: // OpCapability
		return enumOperand(capabilities)
	case 21: // OpTypeInt
		if i > 0 {
			return literalOperand
		}
	case 22: // OpTypeFloat
		if i > 0 {
			return literalOperand
		}
	case 23, 24: // OpTypeVector, OpTypeMatrix
		if i == 2 {
			return literalOperand
		}
	case 25: // OpTypeImage
		switch {
		case i == 2:
			return enumOperand(dims)
		case i >= 3 && i <= 6:
			return literalOperand
		case i == 7:
			return enumOperand(imageFormats)
		case i == 8:
			return enumOperand(accessQualifiers)
		}
	case 32: // OpTypePointer
		if i == 1 {
			return enumOperand(storageClasses)
		}
	case 43, 50: // OpConstant, OpSpecConstant
		if i > 1 {
			return literalOperand
		}
	case 45: // OpConstantSampler
		if i > 1 {
			return literalOperand
		}
	case 52: // OpSpecConstantOp
		if i == 2 {
			return literalOperand
		}
	case 54: // OpFunction
		if i == 2 {
			return enumOperand(functionControl)
		}
	case 59: // OpVariable
		if i == 2 {
			return enumOperand(storageClasses)
		}
	case 61: // OpLoad
		if i > 2 {
			return literalOperand
		}
	case 62, 63: // OpStore, OpCopyMemory
		if i > 1 {
			return literalOperand
		}
	case 68: // OpArrayLength
		if i == 3 {
			return literalOperand
		}
	case 71: // OpDecorate
		switch {
		case i == 1:
			return enumOperand(decorations)
		case i == 2 && prev[1] == decorationBuiltIn:
			return enumOperand(builtins)
		case i > 1:
			return literalOperand
		}
	case 72: // OpMemberDecorate
		switch {
		case i == 1:
			return literalOperand
		case i == 2:
			return enumOperand(decorations)
		case i == 3 && prev[2] == decorationBuiltIn:
			return enumOperand(builtins)
		case i > 2:
			return literalOperand
		}
	case 79: // OpVectorShuffle
		if i > 3 {
			return literalOperand
		}
	case 81: // OpCompositeExtract
		if i > 2 {
			return literalOperand
		}
	case 82: // OpCompositeInsert
		if i > 3 {
			return literalOperand
		}
	case 87, 88, 89, 90, 91, 92, 93, 94, 95: // image sample and fetch
		if i == imageOperandsIndex(op) {
			return literalOperand
		}
	case 246: // OpLoopMerge
		switch {
		case i == 2:
			return enumOperand(loopControl)
		case i > 2:
			return literalOperand
		}
	case 247: // OpSelectionMerge
		if i == 1 {
			return enumOperand(selectionControl)
		}
	case 250: // OpBranchConditional
		if i > 2 {
			return literalOperand
		}
	case 251: // OpSwitch
		if i >= 2 && i%2 == 0 {
			return literalOperand
		}
	}
	return idOperand
}

const decorationBuiltIn = 11

// imageOperandsIndex is the position of the optional Image Operands mask.
func imageOperandsIndex(op uint16) int {
	switch op {
	case 89, 90, 93, 94: // Dref variants carry the reference value first
		return 5
	}
	return 4
}

var opcodeByName = func() map[string]uint16 {
	m := make(map[string]uint16, len(opcodeNames))
	for op, name := range opcodeNames {
		m[name] = op
	}
	return m
}()

func opcodeName(op uint16) string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op%d", op)
}

func parseOpcode(name string) (uint16, bool) {
	if op, ok := opcodeByName[name]; ok {
		return op, true
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(name, "Op"), 10, 16)
	if err != nil || !strings.HasPrefix(name, "Op") {
		return 0, false
	}
	return uint16(n), true
}

// enum maps operand values to names and back. Mask enums render set bits
// joined by '|' and 0 as "None".
type enum struct {
	kind   string
	mask   bool
	names  map[uint32]string
	values map[string]uint32
}

func newEnum(kind string, mask bool, names map[uint32]string) *enum {
	e := &enum{kind: kind, mask: mask, names: names, values: make(map[string]uint32, len(names))}
	for v, n := range names {
		e.values[n] = v
	}
	return e
}

func (e *enum) format(v uint32) string {
	if !e.mask {
		if n, ok := e.names[v]; ok {
			return n
		}
		return strconv.FormatUint(uint64(v), 10)
	}
	if v == 0 {
		return "None"
	}
	var parts []string
	for bit := uint32(1); bit != 0 && bit <= v; bit <<= 1 {
		if v&bit == 0 {
			continue
		}
		n, ok := e.names[bit]
		if !ok {
			return strconv.FormatUint(uint64(v), 10)
		}
		parts = append(parts, n)
	}
	return strings.Join(parts, "|")
}

func (e *enum) parse(tok string) (uint32, error) {
	if n, err := strconv.ParseUint(tok, 0, 32); err == nil {
		return uint32(n), nil
	}
	if !e.mask {
		if v, ok := e.values[tok]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("unknown %s %q", e.kind, tok)
	}
	if tok == "None" {
		return 0, nil
	}
	var v uint32
	for _, part := range strings.Split(tok, "|") {
		bit, ok := e.values[part]
		if !ok {
			return 0, fmt.Errorf("unknown %s %q", e.kind, part)
		}
		v |= bit
	}
	return v, nil
}

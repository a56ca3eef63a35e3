// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/variants/backend"
)

// fragmentModule writes a constant color to a fragment output.
const fragmentModule = `; SPIR-V
; Version: 1.3
; Generator: 0x00000000
; Bound: 0
; Schema: 0

               OpCapability Shader
         %_1 = OpExtInstImport "GLSL.std.450"
               OpMemoryModel Logical GLSL450
               OpEntryPoint Fragment %_4 "main" %_9
               OpExecutionMode %_4 OriginUpperLeft
               OpSource WGSL 100
               OpName %_4 "main"
               OpDecorate %_9 Location 0
         %_2 = OpTypeVoid
         %_3 = OpTypeFunction %_2
         %_6 = OpTypeFloat 32
         %_7 = OpTypeVector %_6 4
         %_8 = OpTypePointer Output %_7
         %_9 = OpVariable %_8 Output
        %_10 = OpConstant %_6 1065353216
        %_11 = OpConstantComposite %_7 %_10 %_10 %_10 %_10
         %_4 = OpFunction %_2 None %_3
         %_5 = OpLabel
               OpStore %_9 %_11
               OpReturn
               OpFunctionEnd
`

func assemble(t *testing.T, text string) []uint32 {
	t.Helper()
	words, err := Assemble(text)
	require.NoError(t, err)
	return words
}

func TestAssembleHeader(t *testing.T) {
	words := assemble(t, fragmentModule)

	h, err := ParseHeader(words)
	require.NoError(t, err)
	assert.Equal(t, Version1_3, h.Version)
	assert.Equal(t, uint32(12), h.Bound)
	assert.Zero(t, h.Schema)

	// OpCapability Shader
	assert.Equal(t, uint32(2<<16|17), words[5])
	assert.Equal(t, uint32(1), words[6])
}

func TestRoundTrip(t *testing.T) {
	words := assemble(t, fragmentModule)
	require.NoError(t, Validate(words))

	text, err := Disassemble(words)
	require.NoError(t, err)
	for _, want := range []string{
		"; Version: 1.3",
		"; Bound: 12",
		`OpEntryPoint Fragment %_4 "main" %_9`,
		"%_8 = OpTypePointer Output %_7",
		"%_4 = OpFunction %_2 None %_3",
		"%_10 = OpConstant %_6 1065353216",
		"OpSource WGSL 100",
		"OpDecorate %_9 Location 0",
	} {
		assert.Contains(t, text, want)
	}

	again := assemble(t, text)
	assert.Equal(t, words, again)
}

func TestRoundTripOperandKinds(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"image format", "%_1 = OpTypeFloat 32\n%_2 = OpTypeImage %_1 2D 0 0 0 2 Rgba8", "OpTypeImage %_1 2D 0 0 0 2 Rgba8"},
		{"function control mask", "%_1 = OpTypeVoid\n%_2 = OpTypeFunction %_1\n%_3 = OpFunction %_1 Inline|Pure %_2", "OpFunction %_1 Inline|Pure %_2"},
		{"builtin", "OpDecorate %_1 BuiltIn FragCoord", "OpDecorate %_1 BuiltIn FragCoord"},
		{"member builtin", "OpMemberDecorate %_1 0 BuiltIn Position", "OpMemberDecorate %_1 0 BuiltIn Position"},
		{"escaped string", `OpSourceExtension "say \"hi\"\n"`, `OpSourceExtension "say \"hi\"\n"`},
		{"load memory operands", "%_1 = OpTypeFloat 32\n%_3 = OpLoad %_1 %_2 2 4", "%_3 = OpLoad %_1 %_2 2 4"},
		{"unknown opcode", "Op4444 %_1 %_2", "Op4444 %_1 %_2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := assemble(t, tt.text)
			text, err := Disassemble(words)
			require.NoError(t, err)
			assert.Contains(t, text, tt.want)
			assert.Equal(t, words, assemble(t, text))
		})
	}
}

func TestAssembleSymbolicIDs(t *testing.T) {
	words := assemble(t, "%_4 = OpTypeVoid\n%fn = OpTypeFunction %_4\n%f32 = OpTypeFloat 32")
	_, insts, err := Decode(words)
	require.NoError(t, err)
	require.Len(t, insts, 3)
	assert.Equal(t, []uint32{5, 4}, insts[1].Operands)
	assert.Equal(t, []uint32{6, 32}, insts[2].Operands)
	assert.Equal(t, uint32(7), words[3])
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{"unknown opcode", "OpCapability Shader\nOpFrobnicate", 2},
		{"missing result", "OpTypeVoid", 1},
		{"unexpected result", "%_1 = OpReturn", 1},
		{"unknown enumerant", "OpCapability Teleport", 1},
		{"string expected", "OpName %_1 main", 1},
		{"string unexpected", `OpCapability "Shader"`, 1},
		{"unterminated string", `OpName %_1 "main`, 1},
		{"bad version", "; Version: one", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(tt.text)
			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.line, se.Line)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := assemble(t, fragmentModule)

	mutate := func(f func(w []uint32) []uint32) []uint32 {
		w := append([]uint32(nil), valid...)
		return f(w)
	}
	tests := []struct {
		name  string
		words []uint32
	}{
		{"too small", valid[:3]},
		{"magic", mutate(func(w []uint32) []uint32 { w[0] = 0xdeadbeef; return w })},
		{"version", mutate(func(w []uint32) []uint32 { w[1] = 0x00020000; return w })},
		{"zero bound", mutate(func(w []uint32) []uint32 { w[3] = 0; return w })},
		{"small bound", mutate(func(w []uint32) []uint32 { w[3] = 5; return w })},
		{"schema", mutate(func(w []uint32) []uint32 { w[4] = 1; return w })},
		{"word count overflow", mutate(func(w []uint32) []uint32 { w[len(w)-1] = 5<<16 | 56; return w })},
		{"header only", valid[:HeaderWords]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var se *Error
			require.ErrorAs(t, Validate(tt.words), &se)
		})
	}
}

func TestOptimizeStripsDebug(t *testing.T) {
	words := assemble(t, fragmentModule)
	out, err := Optimize(words)
	require.NoError(t, err)
	require.NoError(t, Validate(out))

	// OpSource WGSL 100 is 3 words, OpName %_4 "main" is 4.
	assert.Len(t, out, len(words)-7)

	_, insts, err := Decode(out)
	require.NoError(t, err)
	for _, in := range insts {
		assert.NotContains(t, debugOpcodes, in.Opcode, in.Name())
	}
	assert.Equal(t, words[:HeaderWords], out[:HeaderWords])
}

func TestOptimizeStripsSourceContinued(t *testing.T) {
	words := assemble(t, `
OpCapability Shader
OpMemoryModel Logical GLSL450
OpSource WGSL 100 %_1 "fn main() {"
OpSourceContinued "}"
%_1 = OpString "lit.wgsl"
%_2 = OpTypeVoid
`)
	text, err := Disassemble(words)
	require.NoError(t, err)
	assert.Contains(t, text, `OpSourceContinued "}"`)

	out, err := Optimize(words)
	require.NoError(t, err)
	_, insts, err := Decode(out)
	require.NoError(t, err)
	require.Len(t, insts, 3)
	for _, in := range insts {
		assert.NotEqual(t, uint16(2), in.Opcode, "OpSourceContinued survives without its OpSource")
	}
}

func TestWordsBytes(t *testing.T) {
	words := assemble(t, fragmentModule)
	b := Bytes(words)
	got, err := Words(b)
	require.NoError(t, err)
	assert.Equal(t, words, got)

	big := make([]byte, len(b))
	for i, w := range words {
		binary.BigEndian.PutUint32(big[i*4:], w)
	}
	got, err = Words(big)
	require.NoError(t, err)
	assert.Equal(t, words, got)

	_, err = Words(b[:5])
	assert.Error(t, err)
}

func TestStringPacking(t *testing.T) {
	for _, s := range []string{"", "abc", "main", "GLSL.std.450"} {
		w := encodeString(s)
		assert.Len(t, w, len(s)/4+1)
		got, n, err := decodeString(w)
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.Equal(t, len(w), n)
	}
	_, _, err := decodeString([]uint32{0x61616161})
	assert.Error(t, err)
}

func TestToolsDiagnostics(t *testing.T) {
	var gen backend.CodeGen = Tools{}

	err := gen.Validate([]uint32{1, 2, 3})
	assert.ErrorIs(t, err, backend.ErrCodeGen)
	var se *Error
	assert.ErrorAs(t, err, &se)

	words, err := gen.Assemble(fragmentModule)
	require.NoError(t, err)
	text, err := gen.Disassemble(words)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "; SPIR-V\n"))
	_, err = gen.Optimize(words)
	assert.NoError(t, err)
}

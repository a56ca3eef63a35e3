// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		in   string
		want Stage
	}{
		{"vertex", StageVertex},
		{".vert", StageVertex},
		{"FRAG", StageFragment},
		{"pixel", StageFragment},
		{"comp", StageCompute},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStage(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStage("geometry")
	assert.Error(t, err)
}

func TestStageText(t *testing.T) {
	var s Stage
	require.NoError(t, s.UnmarshalText([]byte("fragment")))
	assert.Equal(t, StageFragment, s)
	assert.Equal(t, "stage(9)", Stage(9).String())
}

func TestParseTarget(t *testing.T) {
	got, err := ParseTarget("metal")
	require.NoError(t, err)
	assert.Equal(t, TargetMSL, got)
	assert.Equal(t, ".metal", got.Ext())

	_, err = ParseTarget("wgsl")
	assert.Error(t, err)
}

func TestLinkedStagesOrdered(t *testing.T) {
	l := NewLinked(nil)
	l.SetBinary(StageCompute, []uint32{3})
	l.SetBinary(StageVertex, []uint32{1})

	assert.Equal(t, []Stage{StageVertex, StageCompute}, l.Stages())
	w, ok := l.Binary(StageVertex)
	require.True(t, ok)
	assert.Equal(t, []uint32{1}, w)

	_, ok = l.Binary(StageFragment)
	assert.False(t, ok)
}

func TestDiagnosticUnwrap(t *testing.T) {
	cause := errors.New("expected ';'")
	d := CompileError(StageFragment, cause)

	assert.ErrorIs(t, d, ErrCompile)
	assert.ErrorIs(t, d, cause)
	assert.NotErrorIs(t, d, ErrLink)
	assert.Contains(t, d.Error(), "fragment")
	assert.Contains(t, d.Error(), "expected ';'")

	bare := &Diagnostic{Kind: ErrLink, Log: "no entry point"}
	assert.ErrorIs(t, bare, ErrLink)
}

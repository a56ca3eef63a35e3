// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/variants/backend"
	"github.com/gogpu/variants/spirv"
)

const tinted = `
@fragment
fn main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
#ifdef RED
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
#else
    return color;
#endif
}
`

const vertex = `
@vertex
fn main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`

func testBackend() *Backend {
	opts := DefaultOptions()
	opts.Validate = false
	return New(opts)
}

func compileLink(t *testing.T, b *Backend, req backend.Request) backend.Linked {
	t.Helper()
	ctx := context.Background()
	c, err := b.Compile(ctx, req)
	require.NoError(t, err)
	l, err := b.Link(ctx, []backend.Compiled{c})
	require.NoError(t, err)
	return l
}

func TestCompileAndLink(t *testing.T) {
	b := testBackend()
	l := compileLink(t, b, backend.Request{Source: tinted, Stage: backend.StageFragment})

	words, ok := l.Binary(backend.StageFragment)
	require.True(t, ok)
	assert.Equal(t, spirv.Magic, words[0])
	assert.NoError(t, spirv.Validate(words))
	assert.Equal(t, []backend.Stage{backend.StageFragment}, l.Stages())
}

func TestPreambleSelectsVariant(t *testing.T) {
	b := testBackend()
	plain := compileLink(t, b, backend.Request{Source: tinted, Stage: backend.StageFragment})
	red := compileLink(t, b, backend.Request{Source: tinted, Stage: backend.StageFragment, Preamble: "#define RED\n"})
	viaDefine := compileLink(t, b, backend.Request{Source: tinted, Stage: backend.StageFragment, Defines: []string{"RED"}})

	pw, _ := plain.Binary(backend.StageFragment)
	rw, _ := red.Binary(backend.StageFragment)
	dw, _ := viaDefine.Binary(backend.StageFragment)
	assert.NotEqual(t, pw, rw)
	assert.Equal(t, rw, dw)
}

func TestLinkTwoStages(t *testing.T) {
	b := testBackend()
	ctx := context.Background()

	vs, err := b.Compile(ctx, backend.Request{Source: vertex, Stage: backend.StageVertex})
	require.NoError(t, err)
	fs, err := b.Compile(ctx, backend.Request{Source: tinted, Stage: backend.StageFragment})
	require.NoError(t, err)

	l, err := b.Link(ctx, []backend.Compiled{vs, fs})
	require.NoError(t, err)
	assert.Equal(t, []backend.Stage{backend.StageVertex, backend.StageFragment}, l.Stages())

	_, err = b.Link(ctx, []backend.Compiled{fs, fs})
	assert.ErrorIs(t, err, backend.ErrLink)
}

func TestCompileErrors(t *testing.T) {
	b := testBackend()
	tests := []struct {
		name string
		req  backend.Request
	}{
		{"syntax", backend.Request{Source: "fn main( {", Stage: backend.StageFragment}},
		{"wrong stage", backend.Request{Source: tinted, Stage: backend.StageCompute}},
		{"directive", backend.Request{Source: "#ifdef RED\n", Stage: backend.StageFragment}},
		{"preamble", backend.Request{Source: tinted, Stage: backend.StageFragment, Preamble: "#endif\n"}},
		{"define", backend.Request{Source: tinted, Stage: backend.StageFragment, Defines: []string{"1X"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Compile(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, backend.ErrCompile)

			var d *backend.Diagnostic
			require.ErrorAs(t, err, &d)
			assert.NotEmpty(t, d.Log)
			assert.Equal(t, tt.req.Stage, d.Stage)
		})
	}
}

func TestLinkRejectsForeignUnits(t *testing.T) {
	b := testBackend()
	ctx := context.Background()

	_, err := b.Link(ctx, nil)
	assert.ErrorIs(t, err, backend.ErrLink)

	_, err = b.Link(ctx, []backend.Compiled{{Stage: backend.StageVertex, Object: "elsewhere"}})
	assert.ErrorIs(t, err, backend.ErrLink)
}

func TestDecompile(t *testing.T) {
	b := testBackend()
	l := compileLink(t, b, backend.Request{Source: tinted, Stage: backend.StageFragment})
	ctx := context.Background()

	for _, target := range []backend.Target{backend.TargetGLSL, backend.TargetHLSL, backend.TargetMSL} {
		t.Run(target.String(), func(t *testing.T) {
			code, err := b.Decompile(ctx, l, backend.StageFragment, target)
			require.NoError(t, err)
			assert.NotEmpty(t, code)
		})
	}

	_, err := b.Decompile(ctx, l, backend.StageVertex, backend.TargetGLSL)
	assert.ErrorIs(t, err, backend.ErrDecompile)

	_, err = b.Decompile(ctx, backend.NewLinked(nil), backend.StageFragment, backend.TargetGLSL)
	assert.ErrorIs(t, err, backend.ErrDecompile)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testBackend().Compile(ctx, backend.Request{Source: tinted, Stage: backend.StageFragment})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfig(t *testing.T) {
	opts := DefaultOptions()
	base := New(opts).Config()
	assert.Contains(t, base, "spirv=1.3")
	assert.Equal(t, base, New(opts).Config())

	opts.StripDebug = true
	assert.NotEqual(t, base, New(opts).Config())

	opts = DefaultOptions()
	opts.Validate = !opts.Validate
	assert.Equal(t, base, New(opts).Config(), "validation does not change output")
}

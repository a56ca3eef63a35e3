// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package variants

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/gogpu/variants/backend"
	"github.com/gogpu/variants/backend/wgsl"
	"github.com/gogpu/variants/compiler"
	"github.com/gogpu/variants/manifest"
)

// ---------------------------------------------------------------------------
// Test shader sources
// ---------------------------------------------------------------------------

// shaderLit is a vertex+fragment pipeline with keyword-selected lighting.
const shaderLit = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) normal: vec3<f32>,
}

@vertex
fn vs_main(@location(0) pos: vec3<f32>, @location(1) normal: vec3<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4<f32>(pos.x, pos.y, pos.z, 1.0);
    out.normal = normal;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    var color = vec3<f32>(0.8, 0.2, 0.2);
#ifdef LIT
    let N = normalize(in.normal);
    let L = normalize(vec3<f32>(1.0, 1.0, 1.0));
    color = color * max(dot(N, L), 0.0);
#endif
#if defined(FOG) && !defined(NOT_LIT)
    color = mix(color, vec3<f32>(0.5, 0.5, 0.5), 0.25);
#endif
#ifdef HDR
    color = color / (color + vec3<f32>(1.0, 1.0, 1.0));
#endif
    return vec4<f32>(color.x, color.y, color.z, 1.0);
}
`

func litBenchManifest() *manifest.Manifest {
	return &manifest.Manifest{
		Name: "lit",
		Shaders: []manifest.Shader{
			{Stage: backend.StageVertex, Source: shaderLit},
			{Stage: backend.StageFragment, Source: shaderLit},
		},
		Global:   []string{"HDR"},
		Variants: []manifest.Layer{{"NOT_LIT", "LIT"}, {"", "FOG"}},
	}
}

func nagaEnv(b *testing.B) *compiler.Environment {
	b.Helper()
	opts := wgsl.DefaultOptions()
	opts.Validate = false
	env, err := compiler.New(compiler.Options{Backend: wgsl.New(opts)})
	if err != nil {
		b.Fatal(err)
	}
	return env
}

// ---------------------------------------------------------------------------
// End-to-end variant builds
// ---------------------------------------------------------------------------

// BenchmarkBuild builds every variant of the lit pipeline through naga.
func BenchmarkBuild(b *testing.B) {
	for _, workers := range []int{1, 2, 4} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			env := nagaEnv(b)
			m := litBenchManifest()
			opts := DefaultOptions()
			opts.Workers = workers
			opts.Validate = false
			b.ReportAllocs()
			b.ResetTimer()

			var res *Result
			for i := 0; i < b.N; i++ {
				var err error
				res, err = Build(context.Background(), env, m, opts)
				if err != nil {
					b.Fatalf("build failed: %v", err)
				}
			}
			runtime.KeepAlive(res)
		})
	}
}

// BenchmarkBuildDecompile adds GLSL and MSL output to every variant.
func BenchmarkBuildDecompile(b *testing.B) {
	env := nagaEnv(b)
	m := litBenchManifest()
	m.Targets = []backend.Target{backend.TargetGLSL, backend.TargetMSL}
	opts := DefaultOptions()
	opts.Validate = false
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := Build(context.Background(), env, m, opts); err != nil {
			b.Fatalf("build failed: %v", err)
		}
	}
}

// ---------------------------------------------------------------------------
// Keyword machinery without a real backend
// ---------------------------------------------------------------------------

// BenchmarkVariantCycle measures one AddKeyword/Recompile/Link cycle.
func BenchmarkVariantCycle(b *testing.B) {
	env, err := compiler.New(compiler.Options{Backend: &moduleBackend{}})
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	s := env.NewSession()
	base, err := s.Compile(ctx, backend.StageFragment, "fragment")
	if err != nil {
		b.Fatal(err)
	}
	if err := s.Link(ctx, s.NewProgram()); err != nil {
		b.Fatal(err)
	}
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := s.AddKeyword(names[i%len(names)]); err != nil {
			b.Fatal(err)
		}
		h, err := s.Recompile(ctx, base)
		if err != nil {
			b.Fatal(err)
		}
		p := s.NewProgram()
		if err := p.Add(h); err != nil {
			b.Fatal(err)
		}
		if err := s.Link(ctx, p); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkComboOf measures fingerprinting a keyword set.
func BenchmarkComboOf(b *testing.B) {
	env, err := compiler.New(compiler.Options{Backend: &moduleBackend{}})
	if err != nil {
		b.Fatal(err)
	}
	names := []string{"SHADOWS", "FOG", "LIT", "NORMAL_MAP", "SKINNED", "INSTANCED"}
	for _, n := range names {
		if _, err := env.ReserveKeyword(n); err != nil {
			b.Fatal(err)
		}
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := env.ComboOf(names...); err != nil {
			b.Fatal(err)
		}
	}
}

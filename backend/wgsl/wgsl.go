// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package wgsl implements the backend collaborators on top of naga.
//
// The compile pipeline is:
//  1. Apply the preamble and #-directives (package preprocess)
//  2. Parse WGSL to AST and lower it to naga IR
//  3. Validate the IR (if enabled)
//  4. Select the entry point of the requested stage
//
// Linking generates one SPIR-V module per stage and validates it with
// package spirv. Decompilation writes GLSL, HLSL or MSL from the IR kept in
// the linked result.
package wgsl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
	nagaspirv "github.com/gogpu/naga/spirv"

	"github.com/gogpu/variants/backend"
	"github.com/gogpu/variants/preprocess"
	"github.com/gogpu/variants/spirv"
)

// Options configures the naga backend.
type Options struct {
	// SPIRVVersion is the target SPIR-V version (default: 1.3)
	SPIRVVersion nagaspirv.Version

	// Debug emits OpName and friends in generated SPIR-V.
	Debug bool

	// StripDebug removes debug instructions after generation.
	StripDebug bool

	// Validate enables IR validation after lowering.
	Validate bool

	GLSL glsl.Options
	HLSL hlsl.Options
	MSL  msl.Options
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		SPIRVVersion: nagaspirv.Version1_3,
		Validate:     true,
		GLSL:         glsl.DefaultOptions(),
		HLSL:         *hlsl.DefaultOptions(),
		MSL:          msl.DefaultOptions(),
	}
}

// Backend implements backend.Compiler, backend.Linker and
// backend.Decompiler. It holds no mutable state and is safe for concurrent
// use.
type Backend struct {
	opts Options
}

var (
	_ backend.Backend    = (*Backend)(nil)
	_ backend.Configured = (*Backend)(nil)
)

// New returns a Backend.
func New(opts Options) *Backend {
	return &Backend{opts: opts}
}

// Config implements backend.Configured. Only the settings that change the
// linked SPIR-V are listed.
func (b *Backend) Config() string {
	v := b.opts.SPIRVVersion
	return fmt.Sprintf("naga spirv=%d.%d debug=%t strip=%t", v.Major, v.Minor, b.opts.Debug, b.opts.StripDebug)
}

// unit is the Compiled.Object produced by Compile.
type unit struct {
	module *ir.Module
	entry  ir.EntryPoint
	source string
}

// program is the Linked.Object produced by Link.
type program struct {
	stages map[backend.Stage]*unit
}

func irStage(s backend.Stage) (ir.ShaderStage, error) {
	switch s {
	case backend.StageVertex:
		return ir.StageVertex, nil
	case backend.StageFragment:
		return ir.StageFragment, nil
	case backend.StageCompute:
		return ir.StageCompute, nil
	}
	return 0, fmt.Errorf("unsupported stage %s", s)
}

// Compile implements backend.Compiler.
func (b *Backend) Compile(ctx context.Context, req backend.Request) (backend.Compiled, error) {
	if err := ctx.Err(); err != nil {
		return backend.Compiled{}, err
	}
	fail := func(err error) (backend.Compiled, error) {
		return backend.Compiled{}, backend.CompileError(req.Stage, err)
	}

	stage, err := irStage(req.Stage)
	if err != nil {
		return fail(err)
	}

	source, err := expand(req)
	if err != nil {
		return fail(err)
	}

	ast, err := naga.Parse(source)
	if err != nil {
		return fail(err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return fail(fmt.Errorf("lowering error: %w", err))
	}
	if b.opts.Validate {
		verrs, err := naga.Validate(module)
		if err != nil {
			return fail(fmt.Errorf("validation error: %w", err))
		}
		if len(verrs) > 0 {
			errs := make([]error, len(verrs))
			for i, ve := range verrs {
				errs[i] = ve
			}
			return fail(fmt.Errorf("validation failed: %w", errors.Join(errs...)))
		}
	}

	for _, ep := range module.EntryPoints {
		if ep.Stage == stage {
			return backend.Compiled{
				Stage:  req.Stage,
				Object: &unit{module: module, entry: ep, source: source},
			}, nil
		}
	}
	return fail(fmt.Errorf("no @%s entry point", req.Stage))
}

// expand runs the pre-processor over the preamble and then the source.
// Preamble lines that are not directives are kept in front of the source.
func expand(req backend.Request) (string, error) {
	p := preprocess.New()
	if err := p.DefineAll(req.Defines); err != nil {
		return "", err
	}
	var head []string
	if req.Preamble != "" {
		out, err := p.Process(req.Preamble)
		if err != nil {
			return "", fmt.Errorf("preamble: %w", err)
		}
		for _, line := range strings.Split(out, "\n") {
			if strings.TrimSpace(line) != "" {
				head = append(head, line)
			}
		}
	}
	body, err := p.Process(req.Source)
	if err != nil {
		return "", err
	}
	if len(head) == 0 {
		return body, nil
	}
	return strings.Join(head, "\n") + "\n" + body, nil
}

// Link implements backend.Linker. Each stage becomes its own SPIR-V module.
func (b *Backend) Link(ctx context.Context, units []backend.Compiled) (backend.Linked, error) {
	if err := ctx.Err(); err != nil {
		return backend.Linked{}, err
	}
	if len(units) == 0 {
		return backend.Linked{}, &backend.Diagnostic{Kind: backend.ErrLink, Log: "no units to link"}
	}

	prog := &program{stages: make(map[backend.Stage]*unit, len(units))}
	linked := backend.NewLinked(prog)
	for _, c := range units {
		u, ok := c.Object.(*unit)
		if !ok {
			return backend.Linked{}, backend.LinkError(c.Stage, fmt.Errorf("unit was not compiled by the wgsl backend"))
		}
		if _, dup := prog.stages[c.Stage]; dup {
			return backend.Linked{}, backend.LinkError(c.Stage, fmt.Errorf("duplicate %s stage", c.Stage))
		}

		words, err := b.generate(u)
		if err != nil {
			return backend.Linked{}, backend.LinkError(c.Stage, err)
		}
		prog.stages[c.Stage] = u
		linked.SetBinary(c.Stage, words)
	}
	return linked, nil
}

func (b *Backend) generate(u *unit) ([]uint32, error) {
	single := *u.module
	single.EntryPoints = []ir.EntryPoint{u.entry}

	bin, err := naga.GenerateSPIRV(&single, nagaspirv.Options{
		Version: b.opts.SPIRVVersion,
		Debug:   b.opts.Debug,
	})
	if err != nil {
		return nil, err
	}
	words, err := spirv.Words(bin)
	if err != nil {
		return nil, err
	}
	if b.opts.StripDebug {
		return spirv.Optimize(words)
	}
	if err := spirv.Validate(words); err != nil {
		return nil, err
	}
	return words, nil
}

// Decompile implements backend.Decompiler.
func (b *Backend) Decompile(ctx context.Context, l backend.Linked, s backend.Stage, t backend.Target) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fail := func(err error) (string, error) {
		return "", &backend.Diagnostic{Kind: backend.ErrDecompile, Stage: s, Log: err.Error(), Err: err}
	}

	prog, ok := l.Object.(*program)
	if !ok {
		return fail(fmt.Errorf("program was not linked by the wgsl backend"))
	}
	u, ok := prog.stages[s]
	if !ok {
		return fail(fmt.Errorf("program has no %s stage", s))
	}

	switch t {
	case backend.TargetGLSL:
		opts := b.opts.GLSL
		opts.EntryPoint = u.entry.Name
		code, _, err := glsl.Compile(u.module, opts)
		if err != nil {
			return fail(err)
		}
		return code, nil
	case backend.TargetHLSL:
		opts := b.opts.HLSL
		opts.EntryPoint = u.entry.Name
		code, _, err := hlsl.Compile(u.module, &opts)
		if err != nil {
			return fail(err)
		}
		return code, nil
	case backend.TargetMSL:
		code, _, err := msl.CompileWithPipeline(u.module, b.opts.MSL, msl.PipelineOptions{
			EntryPoint: &msl.EntryPointSelector{Stage: u.entry.Stage, Name: u.entry.Name},
		})
		if err != nil {
			return fail(err)
		}
		return code, nil
	}
	return fail(fmt.Errorf("unsupported target %s", t))
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package variants builds every keyword variant of a shader program.
//
// The keyword compiler lives in package compiler: keywords are registered
// once per process, enabled per worker session or globally, and sealed into
// a combination fingerprint when a unit is compiled. This package drives it
// from a manifest:
//
//	env, _ := compiler.New(compiler.DefaultOptions())
//	m, _ := manifest.Load("lit.yaml")
//	res, err := variants.Build(ctx, env, m, variants.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, v := range res.Variants {
//	    fmt.Printf("0x%016x %v\n", v.Combo, v.Keywords)
//	}
//
// Build compiles the base program once per worker, then for every
// combination adds the combination's keywords, recompiles each base unit
// and links the result. Linked binaries can be cached in an artifact.Store,
// keyed by a digest of the sources and codegen settings plus the
// combination, and are compared with the base program word by word.
// Unreadable cached payloads are rebuilt.
package variants

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/variants/artifact"
	"github.com/gogpu/variants/backend"
	"github.com/gogpu/variants/book"
	"github.com/gogpu/variants/compiler"
	"github.com/gogpu/variants/manifest"
	"github.com/gogpu/variants/spirv"
	"github.com/gogpu/variants/unit"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// Workers is the number of concurrent sessions. Values below 1 select
	// runtime.GOMAXPROCS(0).
	Workers int

	// Store caches linked binaries. Nil disables caching.
	Store artifact.Store

	// Targets overrides the manifest's decompile targets when non-nil.
	Targets []backend.Target

	// CodeGen checks and post-processes linked word streams. Nil selects
	// spirv.Tools.
	CodeGen backend.CodeGen

	// Validate checks every linked binary with CodeGen.
	Validate bool

	// StripDebug removes debug instructions from linked binaries.
	StripDebug bool

	// Listing keeps a disassembly of every binary.
	Listing bool
}

// DefaultOptions returns options with one worker per CPU and validation on.
func DefaultOptions() BuildOptions {
	return BuildOptions{
		Workers:  runtime.GOMAXPROCS(0),
		Validate: true,
	}
}

// Variant is one built combination.
type Variant struct {
	// Index is the position of the combination in manifest walk order.
	Index int

	// Keywords are the layer keywords of the combination.
	Keywords []string

	// Combo is the sealed combination fingerprint, global keywords
	// included.
	Combo uint64

	// Names is the newline-joined keyword list behind Combo. It is empty
	// for cached variants.
	Names string

	// Binaries holds the linked word stream of each stage.
	Binaries map[backend.Stage][]uint32

	// Sources holds decompiled code per stage and target. Cached variants
	// have no sources.
	Sources map[backend.Stage]map[backend.Target]string

	// Listings holds disassembly per stage when BuildOptions.Listing is set.
	Listings map[backend.Stage]string

	// Diff compares each stage with the base program.
	Diff map[backend.Stage]book.Chapter

	// Digest hashes the binaries of every stage in stage order. Variants
	// with equal digests produce the same code.
	Digest uint64

	// Cached reports that the binaries came from the artifact store.
	Cached bool
}

func digest(bins map[backend.Stage][]uint32) uint64 {
	d := xxhash.New()
	for _, stage := range backend.Stages {
		if words, ok := bins[stage]; ok {
			_, _ = d.WriteString(stage.String())
			_, _ = d.Write(spirv.Bytes(words))
		}
	}
	return d.Sum64()
}

// Result is the outcome of Build.
type Result struct {
	Name string

	// Base holds the binaries of the program compiled without layer
	// keywords.
	Base map[backend.Stage][]uint32

	// Variants are ordered by Index.
	Variants []Variant

	// Excluded counts combinations dropped by exclude rules.
	Excluded int

	// Books collect the per-stage comparisons against Base.
	Books map[backend.Stage]*book.Book

	Duration time.Duration
}

// Duplicates groups the indices of variants whose binaries are identical.
// Groups with a single member are omitted; groups appear in order of their
// first member.
func (r *Result) Duplicates() [][]int {
	byDigest := make(map[uint64][]int)
	var order []uint64
	for _, v := range r.Variants {
		if _, ok := byDigest[v.Digest]; !ok {
			order = append(order, v.Digest)
		}
		byDigest[v.Digest] = append(byDigest[v.Digest], v.Index)
	}
	var out [][]int
	for _, d := range order {
		if g := byDigest[d]; len(g) > 1 {
			out = append(out, g)
		}
	}
	return out
}

// Hits returns the number of variants served from the artifact store.
func (r *Result) Hits() int {
	n := 0
	for _, v := range r.Variants {
		if v.Cached {
			n++
		}
	}
	return n
}

type shader struct {
	stage  backend.Stage
	source string
}

// builder carries the state shared by the workers of one Build.
type builder struct {
	env     *compiler.Environment
	m       *manifest.Manifest
	opts    BuildOptions
	targets []backend.Target
	shaders []shader
	source  uint64
	logger  *slog.Logger
}

// Build compiles every combination of m.
func Build(ctx context.Context, env *compiler.Environment, m *manifest.Manifest, opts BuildOptions) (*Result, error) {
	start := time.Now()
	if opts.Workers < 1 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.CodeGen == nil {
		opts.CodeGen = spirv.Tools{}
	}

	combos, err := m.Enumerate()
	if err != nil {
		return nil, err
	}

	b := &builder{
		env:     env,
		m:       m,
		opts:    opts,
		targets: m.Targets,
		logger:  env.Logger().With(slog.String("program", m.Name)),
	}
	if opts.Targets != nil {
		b.targets = opts.Targets
	}
	for _, s := range m.Shaders {
		src, err := s.Load(m.Dir)
		if err != nil {
			return nil, err
		}
		b.shaders = append(b.shaders, shader{stage: s.Stage, source: src})
	}
	b.source = b.sourceDigest()

	for _, kw := range m.Keywords() {
		if _, err := env.ReserveKeyword(kw); err != nil {
			return nil, fmt.Errorf("%s: reserve %q: %w", m.Name, kw, err)
		}
	}
	setup := env.NewSession()
	for _, kw := range m.Global {
		if err := setup.EnableGlobalKeyword(kw); err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
	}

	res := &Result{
		Name:     m.Name,
		Variants: make([]Variant, len(combos)),
		Excluded: m.Count() - len(combos),
		Books:    make(map[backend.Stage]*book.Book),
	}
	if res.Base, err = b.base(ctx, setup); err != nil {
		return nil, err
	}

	workers := min(opts.Workers, max(len(combos), 1))
	b.logger.Info("building variants",
		slog.Int("combinations", len(combos)),
		slog.Int("excluded", res.Excluded),
		slog.Int("workers", workers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for w := range workers {
		g.Go(func() error {
			return b.work(ctx, combos, w, workers, res.Variants)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for stage, words := range res.Base {
		res.Books[stage] = book.New(words)
	}
	for i := range res.Variants {
		v := &res.Variants[i]
		v.Diff = make(map[backend.Stage]book.Chapter, len(v.Binaries))
		for _, stage := range backend.Stages {
			words, ok := v.Binaries[stage]
			if !ok {
				continue
			}
			if bk, ok := res.Books[stage]; ok {
				v.Diff[stage] = bk.AddChapter(v.Combo, words)
			}
		}
	}

	res.Duration = time.Since(start)
	b.logger.Info("variants built",
		slog.Int("variants", len(res.Variants)),
		slog.Int("cached", res.Hits()),
		slog.Duration("duration", res.Duration))
	return res, nil
}

// base compiles and links the program without layer keywords.
func (b *builder) base(ctx context.Context, s *compiler.Session) (map[backend.Stage][]uint32, error) {
	_, p, err := b.start(ctx, s)
	if err != nil {
		return nil, err
	}
	return b.binaries(p)
}

func (b *builder) compileBase(ctx context.Context, s *compiler.Session) ([]unit.Handle, error) {
	handles := make([]unit.Handle, 0, len(b.shaders))
	for _, sh := range b.shaders {
		h, err := s.Compile(ctx, sh.stage, sh.source)
		if err != nil {
			return nil, fmt.Errorf("%s: base: %w", b.m.Name, err)
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// work builds combos[w], combos[w+stride], ... with a session of its own.
func (b *builder) work(ctx context.Context, combos []manifest.Combination, w, stride int, out []Variant) error {
	s := b.env.NewSession()
	var base []unit.Handle

	for i := w; i < len(combos); i += stride {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := combos[i]
		v := Variant{Index: c.Index, Keywords: c.Keywords}

		hit, err := b.lookup(ctx, &v)
		if err != nil {
			return err
		}
		if !hit {
			if base == nil {
				if base, _, err = b.start(ctx, s); err != nil {
					return err
				}
			}
			if err := b.variant(ctx, s, base, &v); err != nil {
				return fmt.Errorf("%s: variant %d %v: %w", b.m.Name, c.Index, c.Keywords, err)
			}
			if v.Names, err = s.KeywordsFromID(v.Combo); err != nil {
				return err
			}
		}
		v.Digest = digest(v.Binaries)
		out[i] = v
		b.logger.Debug("variant built",
			slog.Int("index", v.Index),
			slog.String("combo", fmt.Sprintf("0x%016x", v.Combo)),
			slog.Bool("cached", v.Cached))
	}
	return nil
}

// start compiles and links the base units in s. Linking ends the base
// cycle so the first variant can add keywords.
func (b *builder) start(ctx context.Context, s *compiler.Session) ([]unit.Handle, *compiler.Program, error) {
	handles, err := b.compileBase(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	p := s.NewProgram()
	for _, h := range handles {
		if err := p.Add(h); err != nil {
			return nil, nil, err
		}
	}
	if err := s.Link(ctx, p); err != nil {
		return nil, nil, fmt.Errorf("%s: base: %w", b.m.Name, err)
	}
	return handles, p, nil
}

// lookup fills v from the artifact store when every stage is present.
func (b *builder) lookup(ctx context.Context, v *Variant) (bool, error) {
	combo, err := b.env.ComboOf(v.Keywords...)
	if err != nil {
		return false, err
	}
	v.Combo = combo
	if b.opts.Store == nil {
		return false, nil
	}

	bins := make(map[backend.Stage][]uint32, len(b.shaders))
	for _, sh := range b.shaders {
		k := b.key(combo, sh.stage)
		data, err := b.opts.Store.Get(ctx, k)
		if errors.Is(err, artifact.ErrNotFound) {
			b.env.Telemetry().Lookup(ctx, false)
			return false, nil
		}
		var words []uint32
		if err == nil {
			words, err = spirv.Words(data)
		}
		var malformed *spirv.Error
		if errors.Is(err, artifact.ErrCorrupt) || errors.As(err, &malformed) {
			b.logger.Warn("unreadable artifact, rebuilding",
				slog.String("key", k.String()),
				slog.String("error", err.Error()))
			b.env.Telemetry().Lookup(ctx, false)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		bins[sh.stage] = words
	}
	b.env.Telemetry().Lookup(ctx, true)
	v.Binaries = bins
	v.Cached = true
	return true, b.list(v)
}

func (b *builder) key(combo uint64, stage backend.Stage) artifact.Key {
	return artifact.Key{Program: b.m.Name, Source: b.source, Combo: combo, Stage: stage}
}

// sourceDigest hashes everything besides the keywords that shapes the
// binaries: the stage sources, the strip flag and the codegen settings.
func (b *builder) sourceDigest() uint64 {
	shaders := slices.Clone(b.shaders)
	slices.SortFunc(shaders, func(x, y shader) int { return cmp.Compare(x.stage, y.stage) })

	d := xxhash.New()
	for _, sh := range shaders {
		_, _ = fmt.Fprintf(d, "%s\x00%d\x00", sh.stage, len(sh.source))
		_, _ = d.WriteString(sh.source)
	}
	_, _ = fmt.Fprintf(d, "strip=%t\x00", b.opts.StripDebug)
	for _, c := range []any{b.env.Backend(), b.opts.CodeGen} {
		_, _ = fmt.Fprintf(d, "%T\x00", c)
		if cfg, ok := c.(backend.Configured); ok {
			_, _ = d.WriteString(cfg.Config())
		}
	}
	return d.Sum64()
}

// variant recompiles the base units under v's keywords and links them.
func (b *builder) variant(ctx context.Context, s *compiler.Session, base []unit.Handle, v *Variant) error {
	for _, kw := range v.Keywords {
		if err := s.AddKeyword(kw); err != nil {
			return err
		}
	}
	p := s.NewProgram()
	for _, h := range base {
		nh, err := s.Recompile(ctx, h)
		if err != nil {
			return err
		}
		if err := p.Add(nh); err != nil {
			return err
		}
	}
	v.Combo = s.KeywordsID()
	if err := s.Link(ctx, p); err != nil {
		return err
	}

	bins, err := b.binaries(p)
	if err != nil {
		return err
	}
	v.Binaries = bins

	if len(b.targets) > 0 {
		v.Sources = make(map[backend.Stage]map[backend.Target]string, len(bins))
		for _, stage := range p.Stages() {
			v.Sources[stage] = make(map[backend.Target]string, len(b.targets))
			for _, t := range b.targets {
				code, err := s.Decompile(ctx, p, stage, t)
				if err != nil {
					return err
				}
				v.Sources[stage][t] = code
			}
		}
	}

	if b.opts.Store != nil {
		for stage, words := range bins {
			if err := b.opts.Store.Put(ctx, b.key(v.Combo, stage), spirv.Bytes(words)); err != nil {
				return err
			}
		}
	}
	return b.list(v)
}

// binaries collects, checks and post-processes the linked streams of p.
func (b *builder) binaries(p *compiler.Program) (map[backend.Stage][]uint32, error) {
	out := make(map[backend.Stage][]uint32)
	for _, stage := range p.Stages() {
		words, _ := p.Binary(stage)
		if b.opts.Validate {
			if err := b.opts.CodeGen.Validate(words); err != nil {
				return nil, fmt.Errorf("%s stage: %w", stage, err)
			}
		}
		if b.opts.StripDebug {
			var err error
			if words, err = b.opts.CodeGen.Optimize(words); err != nil {
				return nil, fmt.Errorf("%s stage: %w", stage, err)
			}
		}
		out[stage] = words
	}
	return out, nil
}

func (b *builder) list(v *Variant) error {
	if !b.opts.Listing {
		return nil
	}
	v.Listings = make(map[backend.Stage]string, len(v.Binaries))
	for stage, words := range v.Binaries {
		text, err := b.opts.CodeGen.Disassemble(words)
		if err != nil {
			return fmt.Errorf("%s stage: %w", stage, err)
		}
		v.Listings[stage] = text
	}
	return nil
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gogpu/variants/backend"
	"github.com/gogpu/variants/keyword"
	"github.com/gogpu/variants/telemetry"
	"github.com/gogpu/variants/unit"
	"github.com/gogpu/variants/variant"
)

// Session is one worker's compilation context. It is not safe for
// concurrent use.
type Session struct {
	env     *Environment
	id      uint64
	cache   *keyword.Cache
	local   keyword.LocalSet
	builder *variant.Builder
	ledger  *variant.Ledger
	units   *unit.Store
	logger  *slog.Logger

	// compiled is set by a successful compile and cleared by Link and
	// ClearShaderCache. AddKeyword is refused while it is set.
	compiled bool
}

// ID returns the session number, unique within its Environment.
func (s *Session) ID() uint64 {
	return s.id
}

// Environment returns the environment the session belongs to.
func (s *Session) Environment() *Environment {
	return s.env
}

func (s *Session) resolve(name string) (keyword.Keyword, error) {
	kw, err := s.cache.Keyword(name)
	if err != nil {
		s.logger.Debug("unknown keyword", slog.String("name", name))
	}
	return kw, err
}

// EnableKeyword enables a registered keyword for this session only.
func (s *Session) EnableKeyword(name string) error {
	kw, err := s.resolve(name)
	if err != nil {
		return err
	}
	s.local.Enable(kw)
	return nil
}

// DisableKeyword removes name from the session's enabled keywords and
// reports whether it was enabled.
func (s *Session) DisableKeyword(name string) (bool, error) {
	kw, err := s.resolve(name)
	if err != nil {
		return false, err
	}
	return s.local.Disable(kw.Fingerprint), nil
}

// EnableGlobalKeyword enables a registered keyword for every session of the
// environment.
func (s *Session) EnableGlobalKeyword(name string) error {
	kw, err := s.resolve(name)
	if err != nil {
		return err
	}
	s.env.global.Enable(kw)
	return nil
}

// DisableGlobalKeyword removes name from the global set and reports whether
// it was enabled.
func (s *Session) DisableGlobalKeyword(name string) (bool, error) {
	kw, err := s.resolve(name)
	if err != nil {
		return false, err
	}
	return s.env.global.Disable(kw.Fingerprint), nil
}

// LocalKeywordEnabled reports whether name is enabled for this session.
func (s *Session) LocalKeywordEnabled(name string) bool {
	fp, ok := s.cache.Resolve(name)
	return ok && s.local.Contains(fp)
}

// AddKeyword registers name if needed and adds it to the current cycle
// directly. It fails with ErrKeywordsSealed once the cycle has compiled a
// unit; Link and ClearShaderCache re-open it.
func (s *Session) AddKeyword(name string) error {
	if s.compiled {
		return fmt.Errorf("add keyword %q: %w", name, ErrKeywordsSealed)
	}
	fp, err := s.cache.Reserve(name)
	if err != nil {
		s.env.tel.Collision(context.Background(), "keyword")
		return err
	}
	s.builder.Add(keyword.Keyword{Name: name, Fingerprint: fp})
	return nil
}

// seal drains the enabled keywords into the builder and authenticates the
// resulting combination.
func (s *Session) seal(ctx context.Context) error {
	s.local.Each(s.builder.Add)
	if s.env.global.Active() {
		s.env.global.Each(s.builder.Add)
	}

	combo := s.builder.Seal()
	if combo.Empty() {
		return nil
	}
	if err := s.ledger.Authenticate(combo); err != nil {
		s.builder.Reset()
		s.env.tel.Collision(ctx, "combo")
		s.logger.LogAttrs(ctx, slog.LevelError, "combination collision",
			slog.String("fingerprint", fmt.Sprintf("0x%x", combo.Fingerprint)),
			slog.Any("members", combo.Members))
		return err
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "combination sealed",
		slog.String("fingerprint", fmt.Sprintf("0x%x", combo.Fingerprint)),
		slog.Int("keywords", len(combo.Members)))
	return nil
}

// Compile compiles source for stage under the current combination and
// stores the result. Nothing is stored when compilation fails.
func (s *Session) Compile(ctx context.Context, stage backend.Stage, source string) (unit.Handle, error) {
	return s.compile(ctx, stage, source, 0)
}

// Recompile compiles the unit behind h again under the current combination.
// The new unit records h as its parent. Units that already have a parent
// cannot be recompiled.
func (s *Session) Recompile(ctx context.Context, h unit.Handle) (unit.Handle, error) {
	u, ok := s.units.Get(h)
	if !ok {
		return 0, fmt.Errorf("recompile %s: %w", h, unit.ErrInvalidHandle)
	}
	if u.Parent.Valid() {
		return 0, fmt.Errorf("recompile %s: already recompiled from %s: %w", h, u.Parent, unit.ErrInvalidHandle)
	}
	return s.compile(ctx, u.Stage, u.Source, h)
}

func (s *Session) compile(ctx context.Context, stage backend.Stage, source string, parent unit.Handle) (unit.Handle, error) {
	if !s.builder.Sealed() {
		if err := s.seal(ctx); err != nil {
			return 0, err
		}
	}
	combo := s.builder.Fingerprint()

	ctx, span := s.env.tel.Start(ctx, "variants.compile",
		attribute.String("stage", stage.String()),
		attribute.String("combo", fmt.Sprintf("0x%x", combo)))
	start := time.Now()
	c, err := s.env.backend.Compile(ctx, backend.Request{
		Source:   source,
		Stage:    stage,
		Preamble: s.builder.Preamble(),
	})
	s.env.tel.Compile(ctx, stage.String(), time.Since(start), err)
	telemetry.End(span, err)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "compile failed",
			slog.String("stage", stage.String()),
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("compile %s: %w", stage, err)
	}

	h := s.units.Put(unit.Unit{
		Source:   source,
		Stage:    stage,
		Combo:    combo,
		Parent:   parent,
		Compiled: c,
	})
	s.compiled = true
	s.logger.LogAttrs(ctx, slog.LevelDebug, "compiled",
		slog.String("stage", stage.String()),
		slog.String("unit", h.String()),
		slog.String("combo", fmt.Sprintf("0x%x", combo)))
	return h, nil
}

// Unit returns a copy of the unit behind h.
func (s *Session) Unit(h unit.Handle) (unit.Unit, bool) {
	u, ok := s.units.Get(h)
	if !ok {
		return unit.Unit{}, false
	}
	return *u, true
}

// Units returns the number of stored units.
func (s *Session) Units() int {
	return s.units.Len()
}

// Preamble returns the preamble of the current cycle.
func (s *Session) Preamble() string {
	return s.builder.Preamble()
}

// SetPreamble replaces the preamble of the current cycle. Keyword defines
// sealed later in the cycle are appended to it.
func (s *Session) SetPreamble(text string) {
	s.builder.SetPreamble(text)
}

// ClearPreamble empties the preamble of the current cycle.
func (s *Session) ClearPreamble() {
	s.builder.ClearPreamble()
}

// ClearShaderCache drops every stored unit and starts a new cycle. Handles
// issued before the call become invalid.
func (s *Session) ClearShaderCache() {
	s.units.Clear()
	s.resetCycle()
}

func (s *Session) resetCycle() {
	s.builder.Reset()
	s.compiled = false
}

// KeywordsID returns the combination fingerprint of the current cycle, or
// 0 when the cycle has no keywords or is not sealed yet.
func (s *Session) KeywordsID() uint64 {
	return s.builder.Fingerprint()
}

// Combo returns the combination sealed under fp.
func (s *Session) Combo(fp uint64) (variant.Combo, bool) {
	return s.ledger.Lookup(fp)
}

// KeywordsFromID returns the newline-joined names of the keywords sealed
// under fp, in fingerprint order. The empty combination 0 yields "".
func (s *Session) KeywordsFromID(fp uint64) (string, error) {
	if fp == 0 {
		return "", nil
	}
	c, ok := s.ledger.Lookup(fp)
	if !ok {
		return "", fmt.Errorf("keywords of 0x%x: %w", fp, ErrUnknownCombo)
	}
	names := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		name, ok := s.cache.Name(m)
		if !ok {
			name = fmt.Sprintf("0x%016x", m)
		}
		names = append(names, name)
	}
	return strings.Join(names, "\n"), nil
}

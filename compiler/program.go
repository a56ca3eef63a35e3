// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gogpu/variants/backend"
	"github.com/gogpu/variants/telemetry"
	"github.com/gogpu/variants/unit"
)

// Program is a set of units linked together. It belongs to the session
// that created it.
type Program struct {
	ID uuid.UUID

	session *Session
	handles []unit.Handle
	linked  *backend.Linked
	combo   uint64
}

// NewProgram creates an empty program.
func (s *Session) NewProgram() *Program {
	return &Program{ID: uuid.New(), session: s}
}

// Add attaches the unit behind h. Adding after a link requires another
// link before the new unit appears in the binaries.
func (p *Program) Add(h unit.Handle) error {
	if _, ok := p.session.units.Get(h); !ok {
		return fmt.Errorf("program %s: add %s: %w", p.ID, h, unit.ErrInvalidHandle)
	}
	if !slices.Contains(p.handles, h) {
		p.handles = append(p.handles, h)
	}
	return nil
}

// Handles returns the attached unit handles in insertion order.
func (p *Program) Handles() []unit.Handle {
	return slices.Clone(p.handles)
}

// Linked reports whether the last Link of the program succeeded.
func (p *Program) Linked() bool {
	return p.linked != nil
}

// Combo returns the combination fingerprint of the program's first unit as
// of the last successful link.
func (p *Program) Combo() uint64 {
	return p.combo
}

// Binary returns the linked word stream of stage.
func (p *Program) Binary(stage backend.Stage) ([]uint32, bool) {
	if p.linked == nil {
		return nil, false
	}
	return p.linked.Binary(stage)
}

// Stages returns the linked stages.
func (p *Program) Stages() []backend.Stage {
	if p.linked == nil {
		return nil
	}
	return p.linked.Stages()
}

// Link links p through the backend and ends the current cycle. The cycle
// ends even when linking fails.
func (s *Session) Link(ctx context.Context, p *Program) error {
	defer s.resetCycle()

	if p.session != s {
		return fmt.Errorf("program %s belongs to another session: %w", p.ID, unit.ErrInvalidHandle)
	}
	p.linked = nil

	compiled := make([]backend.Compiled, 0, len(p.handles))
	var combo uint64
	for i, h := range p.handles {
		u, ok := s.units.Get(h)
		if !ok {
			return fmt.Errorf("program %s: link %s: %w", p.ID, h, unit.ErrInvalidHandle)
		}
		if i == 0 {
			combo = u.Combo
		}
		compiled = append(compiled, u.Compiled)
	}

	ctx, span := s.env.tel.Start(ctx, "variants.link",
		attribute.String("program", p.ID.String()),
		attribute.Int("units", len(compiled)))
	start := time.Now()
	linked, err := s.env.backend.Link(ctx, compiled)
	s.env.tel.Link(ctx, time.Since(start), err)
	telemetry.End(span, err)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "link failed",
			slog.String("program", p.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("program %s: %w", p.ID, err)
	}

	p.linked = &linked
	p.combo = combo
	s.logger.LogAttrs(ctx, slog.LevelDebug, "linked",
		slog.String("program", p.ID.String()),
		slog.Int("units", len(compiled)),
		slog.String("combo", fmt.Sprintf("0x%x", combo)))
	return nil
}

// Decompile translates a linked stage of p into target.
func (s *Session) Decompile(ctx context.Context, p *Program, stage backend.Stage, target backend.Target) (string, error) {
	if p.linked == nil {
		return "", fmt.Errorf("program %s: %w", p.ID, ErrNotLinked)
	}
	ctx, span := s.env.tel.Start(ctx, "variants.decompile",
		attribute.String("stage", stage.String()),
		attribute.String("target", target.String()))
	code, err := s.env.backend.Decompile(ctx, *p.linked, stage, target)
	telemetry.End(span, err)
	if err != nil {
		return "", fmt.Errorf("program %s: decompile %s to %s: %w", p.ID, stage, target, err)
	}
	return code, nil
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"fmt"
	"strings"
)

// Stage identifies a shader pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
	StageCompute
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StageVertex, StageFragment, StageCompute}

// String returns the lower-case stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// ParseStage accepts a stage name or a common file extension.
func ParseStage(name string) (Stage, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "vertex", "vert", "vs":
		return StageVertex, nil
	case "fragment", "frag", "fs", "pixel":
		return StageFragment, nil
	case "compute", "comp", "cs":
		return StageCompute, nil
	}
	return 0, fmt.Errorf("backend: unknown stage %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(b []byte) error {
	v, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Target is a high-level language a linked stage can be decompiled to.
type Target uint8

const (
	TargetGLSL Target = iota
	TargetHLSL
	TargetMSL
)

// String returns the lower-case target name.
func (t Target) String() string {
	switch t {
	case TargetGLSL:
		return "glsl"
	case TargetHLSL:
		return "hlsl"
	case TargetMSL:
		return "msl"
	default:
		return fmt.Sprintf("target(%d)", uint8(t))
	}
}

// Ext returns the conventional file extension, including the dot.
func (t Target) Ext() string {
	switch t {
	case TargetGLSL:
		return ".glsl"
	case TargetHLSL:
		return ".hlsl"
	case TargetMSL:
		return ".metal"
	default:
		return ".txt"
	}
}

// ParseTarget accepts a target name.
func ParseTarget(name string) (Target, error) {
	switch strings.ToLower(name) {
	case "glsl":
		return TargetGLSL, nil
	case "hlsl":
		return TargetHLSL, nil
	case "msl", "metal":
		return TargetMSL, nil
	}
	return 0, fmt.Errorf("backend: unknown target %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Target) UnmarshalText(b []byte) error {
	v, err := ParseTarget(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package manifest loads variant build descriptions from YAML.
//
// A manifest names the shader stages of one program and the keyword layers
// its variants are built from:
//
//	name: lit
//	shaders:
//	  - stage: vertex
//	    file: lit.wgsl
//	  - stage: fragment
//	    file: lit.wgsl
//	global: [HDR]
//	variants:
//	  - [NOT_LIT, LIT]
//	  - ["", FOG]
//	exclude:
//	  - NOT_LIT && FOG
//	targets: [glsl, msl]
//
// Every variant picks exactly one entry from each layer. An empty entry
// picks no keyword.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/variants/backend"
)

// Manifest describes the variants of one program.
type Manifest struct {
	Name     string           `yaml:"name"`
	Shaders  []Shader         `yaml:"shaders"`
	Reserve  []string         `yaml:"reserve,omitempty"`
	Global   []string         `yaml:"global,omitempty"`
	Variants []Layer          `yaml:"variants,omitempty"`
	Exclude  []string         `yaml:"exclude,omitempty"`
	Targets  []backend.Target `yaml:"targets,omitempty"`

	// Dir resolves relative shader files. Load sets it to the manifest's
	// directory.
	Dir string `yaml:"-"`
}

// Shader is one stage of the program. Exactly one of File and Source is set.
type Shader struct {
	Stage  backend.Stage `yaml:"stage"`
	File   string        `yaml:"file,omitempty"`
	Source string        `yaml:"source,omitempty"`
}

// Layer is a list of mutually exclusive keywords.
type Layer []string

// ErrInvalid reports a manifest that fails validation.
var ErrInvalid = errors.New("manifest: invalid")

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the structural rules of the manifest.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalid)
	}
	if len(m.Shaders) == 0 {
		return fmt.Errorf("%w: no shaders", ErrInvalid)
	}
	seen := make(map[backend.Stage]bool)
	for i, s := range m.Shaders {
		if (s.File == "") == (s.Source == "") {
			return fmt.Errorf("%w: shader %d: exactly one of file and source must be set", ErrInvalid, i)
		}
		if seen[s.Stage] {
			return fmt.Errorf("%w: duplicate %s stage", ErrInvalid, s.Stage)
		}
		seen[s.Stage] = true
	}

	layerOf := make(map[string]int)
	for i, l := range m.Variants {
		if len(l) == 0 {
			return fmt.Errorf("%w: variant layer %d is empty", ErrInvalid, i)
		}
		for _, kw := range l {
			if kw == "" {
				continue
			}
			if j, ok := layerOf[kw]; ok {
				return fmt.Errorf("%w: keyword %q appears in layers %d and %d", ErrInvalid, kw, j, i)
			}
			layerOf[kw] = i
		}
	}
	return nil
}

// Load returns the text of s, reading File relative to dir.
func (s Shader) Load(dir string) (string, error) {
	if s.Source != "" {
		return s.Source, nil
	}
	path := s.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("manifest: %s shader: %w", s.Stage, err)
	}
	return string(b), nil
}

// Keywords returns every keyword the manifest mentions, in first-mention
// order: reserved, global, then layer keywords.
func (m *Manifest) Keywords() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(kw string) {
		if kw != "" && !seen[kw] {
			seen[kw] = true
			out = append(out, kw)
		}
	}
	for _, kw := range m.Reserve {
		add(kw)
	}
	for _, kw := range m.Global {
		add(kw)
	}
	for _, l := range m.Variants {
		for _, kw := range l {
			add(kw)
		}
	}
	return out
}

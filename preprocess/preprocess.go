// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package preprocess applies C-style conditional directives to WGSL source.
//
// WGSL has no pre-processor of its own. Keyword variants are expressed with
// "#define NAME" lines in a preamble and guarded blocks in the shader:
//
//	#ifdef FOG
//	color = mix(color, fog_color, fog_factor(depth));
//	#endif
//
// Supported directives are #define, #undef, #ifdef, #ifndef, #if, #elif,
// #else and #endif. #if and #elif accept defined(NAME), bare names,
// integer literals, !, && and || with parentheses. A bare name is true when
// it is defined with a value other than "0".
//
// Directive lines and lines in inactive blocks are replaced by empty lines,
// so line numbers reported by the WGSL front-end still match the input.
// Names defined with a value are substituted as whole identifiers in active
// code.
package preprocess

import (
	"fmt"
	"strings"
)

// Error is a pre-processing failure at a 1-based source line.
type Error struct {
	Line    int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("preprocess: line %d: %s", e.Line, e.Message)
}

func errorf(line int, format string, args ...any) *Error {
	return &Error{Line: line, Message: fmt.Sprintf(format, args...)}
}

// Processor holds the macro table. The table persists across Process calls
// so a preamble can be processed before the shader body.
type Processor struct {
	defines map[string]string
}

// New returns a Processor with an empty macro table.
func New() *Processor {
	return &Processor{defines: make(map[string]string)}
}

// Define sets name to value. An empty value defines a flag.
func (p *Processor) Define(name, value string) {
	p.defines[name] = value
}

// DefineAll parses NAME or NAME=VALUE entries.
func (p *Processor) DefineAll(defs []string) error {
	for _, d := range defs {
		name, value, _ := strings.Cut(d, "=")
		name = strings.TrimSpace(name)
		if !isIdent(name) {
			return fmt.Errorf("preprocess: invalid define %q", d)
		}
		p.Define(name, strings.TrimSpace(value))
	}
	return nil
}

// Undefine removes name.
func (p *Processor) Undefine(name string) {
	delete(p.defines, name)
}

// Defined reports whether name is defined.
func (p *Processor) Defined(name string) bool {
	_, ok := p.defines[name]
	return ok
}

// Value returns the value of name.
func (p *Processor) Value(name string) (string, bool) {
	v, ok := p.defines[name]
	return v, ok
}

type frame struct {
	outer  bool // enclosing block is active
	active bool // current branch is active
	taken  bool // some branch of this #if was taken
	inElse bool
	line   int
}

// Process evaluates the directives of source.
func (p *Processor) Process(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	var stack []frame

	active := func() bool {
		return len(stack) == 0 || stack[len(stack)-1].active
	}

	for i, line := range lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			if active() {
				out = append(out, p.substitute(line))
			} else {
				out = append(out, "")
			}
			continue
		}
		out = append(out, "")

		directive, rest := splitDirective(trimmed[1:])
		switch directive {
		case "define":
			if !active() {
				continue
			}
			name, value := splitDirective(rest)
			if !isIdent(name) {
				return "", errorf(n, "invalid macro name %q", name)
			}
			p.Define(name, value)
		case "undef":
			if !active() {
				continue
			}
			name, _ := splitDirective(rest)
			if !isIdent(name) {
				return "", errorf(n, "invalid macro name %q", name)
			}
			p.Undefine(name)
		case "ifdef", "ifndef":
			name, _ := splitDirective(rest)
			if !isIdent(name) {
				return "", errorf(n, "#%s expects a macro name", directive)
			}
			cond := p.Defined(name) == (directive == "ifdef")
			stack = append(stack, open(active(), cond, n))
		case "if":
			outer := active()
			cond := false
			if outer {
				v, err := p.eval(rest, n)
				if err != nil {
					return "", err
				}
				cond = v
			}
			stack = append(stack, open(outer, cond, n))
		case "elif":
			if len(stack) == 0 {
				return "", errorf(n, "#elif without #if")
			}
			f := &stack[len(stack)-1]
			if f.inElse {
				return "", errorf(n, "#elif after #else")
			}
			f.active = false
			if f.outer && !f.taken {
				v, err := p.eval(rest, n)
				if err != nil {
					return "", err
				}
				f.active, f.taken = v, v
			}
		case "else":
			if len(stack) == 0 {
				return "", errorf(n, "#else without #if")
			}
			f := &stack[len(stack)-1]
			if f.inElse {
				return "", errorf(n, "duplicate #else")
			}
			f.inElse = true
			f.active = f.outer && !f.taken
			f.taken = true
		case "endif":
			if len(stack) == 0 {
				return "", errorf(n, "#endif without #if")
			}
			stack = stack[:len(stack)-1]
		default:
			if active() {
				return "", errorf(n, "unknown directive #%s", directive)
			}
		}
	}
	if len(stack) > 0 {
		return "", errorf(stack[len(stack)-1].line, "unterminated conditional")
	}
	return strings.Join(out, "\n"), nil
}

func open(outer, cond bool, line int) frame {
	return frame{outer: outer, active: outer && cond, taken: cond, line: line}
}

func splitDirective(s string) (head, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t(")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// substitute replaces valued macros in a line of active code. Text after a
// line comment is left untouched.
func (p *Processor) substitute(line string) string {
	if len(p.defines) == 0 {
		return line
	}
	code, comment := line, ""
	if i := strings.Index(line, "//"); i >= 0 {
		code, comment = line[:i], line[i:]
	}

	var b strings.Builder
	replaced := false
	for i := 0; i < len(code); {
		c := code[i]
		if !isIdentStart(c) {
			b.WriteByte(c)
			i++
			continue
		}
		j := i + 1
		for j < len(code) && isIdentPart(code[j]) {
			j++
		}
		word := code[i:j]
		if v, ok := p.defines[word]; ok && v != "" {
			b.WriteString(v)
			replaced = true
		} else {
			b.WriteString(word)
		}
		i = j
	}
	if !replaced {
		return line
	}
	return b.String() + comment
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spirv

import (
	"fmt"
	"strconv"
	"strings"
)

type token struct {
	text   string
	quoted bool
}

type asmLine struct {
	line   int
	result string
	opcode string
	args   []token
}

// Assemble parses .spvasm text into words. Ids are written %_N or %N; any
// other %name is allocated after the highest numeric id, in order of first
// use. Header comments written by Disassemble are honoured; the bound is
// raised to cover every id used.
func Assemble(text string) ([]uint32, error) {
	h := Header{Version: Version1_3}
	var lines []asmLine

	for i, raw := range strings.Split(text, "\n") {
		n := i + 1
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ";") {
			if err := parseHeaderComment(&h, trimmed, n); err != nil {
				return nil, err
			}
			continue
		}
		toks, err := tokenizeLine(trimmed, n)
		if err != nil {
			return nil, err
		}
		if len(toks) == 0 {
			continue
		}
		l := asmLine{line: n}
		if len(toks) >= 2 && toks[1].text == "=" && !toks[1].quoted {
			l.result = toks[0].text
			toks = toks[2:]
		}
		if len(toks) == 0 || toks[0].quoted {
			return nil, lineErr(n, "missing opcode")
		}
		l.opcode, l.args = toks[0].text, toks[1:]
		lines = append(lines, l)
	}

	ids, maxID, err := allocateIDs(lines)
	if err != nil {
		return nil, err
	}

	insts := make([]Instruction, 0, len(lines))
	for _, l := range lines {
		in, err := assembleLine(l, ids)
		if err != nil {
			return nil, err
		}
		insts = append(insts, in)
	}
	h.Bound = max(h.Bound, maxID+1)
	return Encode(h, insts), nil
}

func lineErr(line int, format string, args ...any) *Error {
	return &Error{Offset: -1, Line: line, Message: fmt.Sprintf(format, args...)}
}

func parseHeaderComment(h *Header, line string, n int) error {
	key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, ";")), ":")
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	switch key {
	case "Version":
		major, minor, ok := strings.Cut(value, ".")
		ma, err1 := strconv.ParseUint(major, 10, 8)
		mi, err2 := strconv.ParseUint(minor, 10, 8)
		if !ok || err1 != nil || err2 != nil {
			return lineErr(n, "invalid version %q", value)
		}
		h.Version = MakeVersion(uint8(ma), uint8(mi))
	case "Generator", "Bound", "Schema":
		v, err := strconv.ParseUint(value, 0, 32)
		if err != nil {
			return lineErr(n, "invalid %s %q", strings.ToLower(key), value)
		}
		switch key {
		case "Generator":
			h.Generator = uint32(v)
		case "Bound":
			h.Bound = uint32(v)
		default:
			h.Schema = uint32(v)
		}
	}
	return nil
}

func tokenizeLine(s string, n int) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		switch c := s[i]; {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == ';':
			return toks, nil
		case c == '"':
			var sb strings.Builder
			j := i + 1
			for ; j < len(s) && s[j] != '"'; j++ {
				if s[j] != '\\' {
					sb.WriteByte(s[j])
					continue
				}
				j++
				if j >= len(s) {
					break
				}
				switch s[j] {
				case 'n':
					sb.WriteByte('\n')
				case 'r':
					sb.WriteByte('\r')
				default:
					sb.WriteByte(s[j])
				}
			}
			if j >= len(s) {
				return nil, lineErr(n, "unterminated string")
			}
			toks = append(toks, token{text: sb.String(), quoted: true})
			i = j + 1
		default:
			j := i
			for j < len(s) && s[j] != ' ' && s[j] != '\t' && s[j] != '\r' && s[j] != ';' {
				j++
			}
			toks = append(toks, token{text: s[i:j]})
			i = j
		}
	}
	return toks, nil
}

// numericID parses %_N and %N.
func numericID(tok string) (uint32, bool) {
	s := strings.TrimPrefix(tok, "%")
	s = strings.TrimPrefix(s, "_")
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err == nil
}

func isIDToken(t token) bool {
	return !t.quoted && len(t.text) > 1 && t.text[0] == '%'
}

func allocateIDs(lines []asmLine) (map[string]uint32, uint32, error) {
	ids := make(map[string]uint32)
	var names []string
	var maxID uint32

	visit := func(tok string) {
		if _, seen := ids[tok]; seen {
			return
		}
		if v, ok := numericID(tok); ok {
			ids[tok] = v
			maxID = max(maxID, v)
			return
		}
		ids[tok] = 0
		names = append(names, tok)
	}
	for _, l := range lines {
		if l.result != "" {
			if !isIDToken(token{text: l.result}) {
				return nil, 0, lineErr(l.line, "invalid result id %q", l.result)
			}
			visit(l.result)
		}
		for _, t := range l.args {
			if isIDToken(t) {
				visit(t.text)
			}
		}
	}
	for _, name := range names {
		maxID++
		ids[name] = maxID
	}
	return ids, maxID, nil
}

func assembleLine(l asmLine, ids map[string]uint32) (Instruction, error) {
	op, ok := parseOpcode(l.opcode)
	if !ok {
		return Instruction{}, lineErr(l.line, "unknown opcode %q", l.opcode)
	}

	var logical []token
	switch resultShape(op) {
	case shapeResult:
		if l.result == "" {
			return Instruction{}, lineErr(l.line, "%s needs a result id", l.opcode)
		}
		logical = append([]token{{text: l.result}}, l.args...)
	case shapeTypedResult:
		if l.result == "" || len(l.args) == 0 {
			return Instruction{}, lineErr(l.line, "%s needs a result type and id", l.opcode)
		}
		logical = append([]token{l.args[0], {text: l.result}}, l.args[1:]...)
	default:
		if l.result != "" {
			return Instruction{}, lineErr(l.line, "%s has no result", l.opcode)
		}
		logical = l.args
	}

	words := make([]uint32, 0, len(logical))
	for i, t := range logical {
		k := operandKind(op, i, words)
		if k.class == classString {
			if !t.quoted {
				return Instruction{}, lineErr(l.line, "operand %d of %s must be a string", i, l.opcode)
			}
			words = append(words, encodeString(t.text)...)
			continue
		}
		if t.quoted {
			return Instruction{}, lineErr(l.line, "unexpected string for operand %d of %s", i, l.opcode)
		}
		if isIDToken(t) {
			words = append(words, ids[t.text])
			continue
		}
		var (
			v   uint32
			err error
		)
		if k.class == classEnum {
			v, err = k.enum.parse(t.text)
		} else {
			var n uint64
			n, err = strconv.ParseUint(t.text, 0, 32)
			v = uint32(n)
		}
		if err != nil {
			return Instruction{}, lineErr(l.line, "operand %d of %s: %v", i, l.opcode, err)
		}
		words = append(words, v)
	}
	return Instruction{Opcode: op, Operands: words}, nil
}

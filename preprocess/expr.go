// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package preprocess

import (
	"strconv"
	"strings"
)

// exprParser evaluates #if expressions by recursive descent:
//
//	or    = and { "||" and }
//	and   = unary { "&&" unary }
//	unary = "!" unary | primary
//	primary = "(" or ")" | "defined" ( "(" ident ")" | ident ) | ident | int
type exprParser struct {
	p    *Processor
	toks []string
	pos  int
	line int
}

func (p *Processor) eval(expr string, line int) (bool, error) {
	toks, err := tokenize(expr, line)
	if err != nil {
		return false, err
	}
	if len(toks) == 0 {
		return false, errorf(line, "#if with no expression")
	}
	ep := &exprParser{p: p, toks: toks, line: line}
	v, err := ep.or()
	if err != nil {
		return false, err
	}
	if ep.pos != len(toks) {
		return false, errorf(line, "unexpected %q in expression", toks[ep.pos])
	}
	return v, nil
}

func tokenize(s string, line int) ([]string, error) {
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	var toks []string
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '(' || c == ')' || c == '!':
			toks = append(toks, s[i:i+1])
			i++
		case strings.HasPrefix(s[i:], "&&") || strings.HasPrefix(s[i:], "||"):
			toks = append(toks, s[i:i+2])
			i += 2
		case isIdentPart(c):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		default:
			return nil, errorf(line, "unexpected character %q in expression", c)
		}
	}
	return toks, nil
}

func (e *exprParser) peek() string {
	if e.pos < len(e.toks) {
		return e.toks[e.pos]
	}
	return ""
}

func (e *exprParser) next() string {
	t := e.peek()
	if t != "" {
		e.pos++
	}
	return t
}

func (e *exprParser) expect(tok string) error {
	if got := e.next(); got != tok {
		return errorf(e.line, "expected %q, found %q", tok, got)
	}
	return nil
}

func (e *exprParser) or() (bool, error) {
	v, err := e.and()
	if err != nil {
		return false, err
	}
	for e.peek() == "||" {
		e.next()
		r, err := e.and()
		if err != nil {
			return false, err
		}
		v = v || r
	}
	return v, nil
}

func (e *exprParser) and() (bool, error) {
	v, err := e.unary()
	if err != nil {
		return false, err
	}
	for e.peek() == "&&" {
		e.next()
		r, err := e.unary()
		if err != nil {
			return false, err
		}
		v = v && r
	}
	return v, nil
}

func (e *exprParser) unary() (bool, error) {
	if e.peek() == "!" {
		e.next()
		v, err := e.unary()
		return !v, err
	}
	return e.primary()
}

func (e *exprParser) primary() (bool, error) {
	tok := e.next()
	switch {
	case tok == "(":
		v, err := e.or()
		if err != nil {
			return false, err
		}
		return v, e.expect(")")
	case tok == "defined":
		paren := e.peek() == "("
		if paren {
			e.next()
		}
		name := e.next()
		if !isIdent(name) {
			return false, errorf(e.line, "defined expects a macro name")
		}
		if paren {
			if err := e.expect(")"); err != nil {
				return false, err
			}
		}
		return e.p.Defined(name), nil
	case isIdent(tok):
		v, ok := e.p.defines[tok]
		return ok && v != "0", nil
	case tok != "":
		n, err := strconv.ParseInt(tok, 0, 64)
		if err != nil {
			return false, errorf(e.line, "invalid integer %q", tok)
		}
		return n != 0, nil
	}
	return false, errorf(e.line, "unexpected end of expression")
}

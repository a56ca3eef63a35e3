// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package manifest

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/google/cel-go/cel"
)

var identifier = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*$`)

var celReserved = []string{
	"as", "break", "const", "continue", "else", "false", "for", "function",
	"if", "import", "in", "let", "loop", "package", "namespace", "null",
	"return", "true", "var", "void", "while",
}

// Rules are compiled CEL exclusion expressions. Each keyword that is a valid
// identifier is a bool variable; the list variable "keywords" holds the
// names of the combination.
type Rules struct {
	names    []string
	sources  []string
	programs []cel.Program
}

// CompileRules compiles exprs over the given keyword names. Every
// expression must evaluate to a bool.
func CompileRules(exprs, names []string) (*Rules, error) {
	r := &Rules{sources: exprs}
	opts := []cel.EnvOption{cel.Variable("keywords", cel.ListType(cel.StringType))}
	for _, n := range names {
		if !identifier.MatchString(n) || slices.Contains(celReserved, n) || n == "keywords" {
			continue
		}
		r.names = append(r.names, n)
		opts = append(opts, cel.Variable(n, cel.BoolType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("manifest: rules: %w", err)
	}

	for i, expr := range exprs {
		ast, iss := env.Compile(expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("%w: exclude rule %d: %v", ErrInvalid, i, iss.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("%w: exclude rule %d: want bool, got %v", ErrInvalid, i, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("manifest: exclude rule %d: %w", i, err)
		}
		r.programs = append(r.programs, prg)
	}
	return r, nil
}

// Len returns the number of rules.
func (r *Rules) Len() int {
	return len(r.programs)
}

// Excluded reports whether any rule matches the combination and returns
// the source of the first matching rule.
func (r *Rules) Excluded(keywords []string) (bool, string, error) {
	if len(r.programs) == 0 {
		return false, "", nil
	}
	vars := make(map[string]any, len(r.names)+1)
	for _, n := range r.names {
		vars[n] = false
	}
	for _, kw := range keywords {
		if _, ok := vars[kw]; ok {
			vars[kw] = true
		}
	}
	if keywords == nil {
		keywords = []string{}
	}
	vars["keywords"] = keywords

	for i, prg := range r.programs {
		out, _, err := prg.Eval(vars)
		if err != nil {
			return false, "", fmt.Errorf("manifest: exclude rule %q: %w", r.sources[i], err)
		}
		if b, ok := out.Value().(bool); ok && b {
			return true, r.sources[i], nil
		}
	}
	return false, "", nil
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package compiler drives keyword-selected shader variant compilation.
//
// An Environment owns the state shared by every worker: the keyword
// registry, the globally enabled keywords and the backend. Each worker
// creates its own Session, which carries everything that must not leak
// between workers: resolved keyword cache, locally enabled keywords, the
// current combination cycle, the ledger of sealed combinations and the
// compiled units.
//
// A cycle starts with an empty combination. The first compile of the cycle
// seals the enabled keywords into a combination, checks it against the
// ledger and compiles with a "#define" preamble for every member. Further
// compiles reuse the sealed combination. Linking a program ends the cycle:
//
//	env, err := compiler.New(compiler.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	env.ReserveKeyword("FOG")
//
//	s := env.NewSession()
//	s.EnableKeyword("FOG")
//	vs, err := s.Compile(ctx, backend.StageVertex, vertexSource)
//	fs, err := s.Compile(ctx, backend.StageFragment, fragmentSource)
//
//	p := s.NewProgram()
//	p.Add(vs)
//	p.Add(fs)
//	err = s.Link(ctx, p)
//	words, _ := p.Binary(backend.StageFragment)
//
// Session is not safe for concurrent use; Environment is.
package compiler

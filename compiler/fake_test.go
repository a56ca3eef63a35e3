// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/variants/backend"
	"github.com/gogpu/variants/fingerprint"
)

// fakeBackend compiles by remembering the request. Sources containing
// "compile error" fail to compile, "link error" fail to link.
type fakeBackend struct {
	mu       sync.Mutex
	requests []backend.Request
}

var _ backend.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) Compile(_ context.Context, req backend.Request) (backend.Compiled, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if strings.Contains(req.Source, "compile error") {
		return backend.Compiled{}, backend.CompileError(req.Stage, errors.New("1:1: compile error"))
	}
	return backend.Compiled{Stage: req.Stage, Object: req}, nil
}

func (f *fakeBackend) Link(_ context.Context, units []backend.Compiled) (backend.Linked, error) {
	l := backend.NewLinked(units)
	for _, u := range units {
		req := u.Object.(backend.Request)
		if strings.Contains(req.Source, "link error") {
			return backend.Linked{}, backend.LinkError(u.Stage, errors.New("unresolved symbol"))
		}
		h := fingerprint.String64(req.Preamble + req.Source)
		l.SetBinary(u.Stage, []uint32{0x07230203, uint32(h), uint32(h >> 32)})
	}
	return l, nil
}

func (f *fakeBackend) Decompile(_ context.Context, l backend.Linked, s backend.Stage, t backend.Target) (string, error) {
	for _, u := range l.Object.([]backend.Compiled) {
		if u.Stage == s {
			req := u.Object.(backend.Request)
			return "// " + t.String() + "\n" + req.Preamble + req.Source, nil
		}
	}
	return "", &backend.Diagnostic{Kind: backend.ErrDecompile, Stage: s, Log: "no such stage"}
}

func (f *fakeBackend) last() backend.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestEnv(t *testing.T, opts Options) (*Environment, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{}
	opts.Backend = fb
	env, err := New(opts)
	require.NoError(t, err)
	return env, fb
}

func reserve(t *testing.T, env *Environment, names ...string) {
	t.Helper()
	for _, n := range names {
		_, err := env.ReserveKeyword(n)
		require.NoError(t, err)
	}
}

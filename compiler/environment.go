// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package compiler

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gogpu/variants/backend"
	"github.com/gogpu/variants/backend/wgsl"
	"github.com/gogpu/variants/keyword"
	"github.com/gogpu/variants/telemetry"
	"github.com/gogpu/variants/unit"
	"github.com/gogpu/variants/variant"
)

// Options configures an Environment.
type Options struct {
	// Backend compiles, links and decompiles. Nil selects the naga WGSL
	// backend with its default options.
	Backend backend.Backend

	// Logger receives structured logs. Nil discards them.
	Logger *slog.Logger

	// Telemetry selects the OpenTelemetry providers.
	Telemetry telemetry.Options

	// KeywordHash overrides the keyword fingerprint function.
	KeywordHash keyword.HashFunc

	// ComboHash overrides the combination fingerprint function.
	ComboHash variant.HashFunc
}

// DefaultOptions returns options for the naga backend with logging off.
func DefaultOptions() Options {
	return Options{}
}

// NewTextLogger returns a logger writing human-readable lines to stderr.
func NewTextLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger returns a logger that discards all output.
func NoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Environment is the process-wide compiler state.
type Environment struct {
	registry *keyword.Registry
	global   keyword.GlobalSet
	backend  backend.Backend
	logger   *slog.Logger
	tel      *telemetry.Recorder
	combo    variant.HashFunc
	sessions atomic.Uint64
}

// New creates an Environment.
func New(opts Options) (*Environment, error) {
	logger := opts.Logger
	if logger == nil {
		logger = NoopLogger()
	}
	be := opts.Backend
	if be == nil {
		be = wgsl.New(wgsl.DefaultOptions())
	}
	tel, err := telemetry.New(opts.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	regOpts := []keyword.RegistryOption{keyword.WithLogger(logger)}
	if opts.KeywordHash != nil {
		regOpts = append(regOpts, keyword.WithHash(opts.KeywordHash))
	}
	return &Environment{
		registry: keyword.NewRegistry(regOpts...),
		backend:  be,
		logger:   logger,
		tel:      tel,
		combo:    opts.ComboHash,
	}, nil
}

// Registry returns the shared keyword registry.
func (e *Environment) Registry() *keyword.Registry {
	return e.registry
}

// Backend returns the configured backend.
func (e *Environment) Backend() backend.Backend {
	return e.backend
}

// Logger returns the environment logger.
func (e *Environment) Logger() *slog.Logger {
	return e.logger
}

// Telemetry returns the recorder shared by all sessions.
func (e *Environment) Telemetry() *telemetry.Recorder {
	return e.tel
}

// ReserveKeyword registers name and returns its fingerprint.
func (e *Environment) ReserveKeyword(name string) (uint64, error) {
	return e.registry.Reserve(name)
}

// Keywords lists the registered keywords in registration order.
func (e *Environment) Keywords() []keyword.Keyword {
	return e.registry.List()
}

// DumpKeywords renders the registry as "0x<fingerprint> <name>" lines
// followed by "count = <n>".
func (e *Environment) DumpKeywords() string {
	return e.registry.Dump()
}

// GlobalKeywords returns the globally enabled keywords.
func (e *Environment) GlobalKeywords() []keyword.Keyword {
	return e.global.Snapshot()
}

// NewSession creates the state for one worker.
func (e *Environment) NewSession() *Session {
	id := e.sessions.Add(1)
	return &Session{
		env:     e,
		id:      id,
		cache:   keyword.NewCache(e.registry),
		builder: variant.NewBuilder(e.combo),
		ledger:  variant.NewLedger(),
		units:   unit.NewStore(),
		logger:  e.logger.With(slog.Uint64("session", id)),
	}
}

// ComboOf returns the fingerprint a session would seal for the named
// keywords plus the keywords enabled globally right now. Nothing is
// recorded. An empty set yields 0.
func (e *Environment) ComboOf(names ...string) (uint64, error) {
	b := variant.NewBuilder(e.combo)
	for _, name := range names {
		fp, ok := e.registry.Lookup(name)
		if !ok {
			return 0, &keyword.UnknownError{Name: name}
		}
		b.Add(keyword.Keyword{Name: name, Fingerprint: fp})
	}
	e.global.Each(b.Add)
	return b.Seal().Fingerprint, nil
}

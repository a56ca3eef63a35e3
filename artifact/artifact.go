// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package artifact stores linked shader binaries keyed by program, source
// digest, keyword combination and stage.
//
// Stores other than MemoryStore persist payloads through a Codec, so a
// cache directory, Redis instance or bucket written with one codec must be
// read with the same codec.
package artifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/variants/backend"
)

// ErrNotFound reports a key with no stored artifact.
var ErrNotFound = errors.New("artifact: not found")

// Key identifies one stage binary of one variant.
type Key struct {
	Program string

	// Source digests the inputs other than keywords that shape the
	// binary, so edited shaders or changed codegen settings miss.
	Source uint64

	Combo uint64
	Stage backend.Stage
}

// String returns the key as a slash-separated path,
// "<program>/<source>/<combo>/<stage>" with both digests as 16 hex digits.
func (k Key) String() string {
	return fmt.Sprintf("%s/%016x/%016x/%s", k.Program, k.Source, k.Combo, k.Stage)
}

// Store is a binary artifact cache. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the payload stored under k or ErrNotFound.
	Get(ctx context.Context, k Key) ([]byte, error)

	// Put stores data under k, replacing any previous payload.
	Put(ctx context.Context, k Key, data []byte) error
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskStore keeps one encoded file per key under a root directory:
// <root>/<program>/<source>/<combo>.<stage>.spv
type DiskStore struct {
	root  string
	codec Codec
}

// NewDiskStore creates root if needed and returns a store writing with codec.
func NewDiskStore(root string, codec Codec) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: %w", err)
	}
	return &DiskStore{root: root, codec: codec}, nil
}

// Path returns the file that holds k.
func (s *DiskStore) Path(k Key) string {
	return filepath.Join(s.root, k.Program, fmt.Sprintf("%016x", k.Source), fmt.Sprintf("%016x.%s.spv", k.Combo, k.Stage))
}

// Get implements Store.
func (s *DiskStore) Get(ctx context.Context, k Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	block, err := os.ReadFile(s.Path(k))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("artifact: %w", err)
	}
	data, err := s.codec.Decode(block)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	return data, nil
}

// Put implements Store. The file is replaced atomically.
func (s *DiskStore) Put(ctx context.Context, k Key, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	block, err := s.codec.Encode(data)
	if err != nil {
		return err
	}

	path := s.Path(k)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	if _, err := tmp.Write(block); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("artifact: write %s: %w", k, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("artifact: write %s: %w", k, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("artifact: %w", err)
	}
	return nil
}

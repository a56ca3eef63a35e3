// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
)

// ObjectStore keeps encoded payloads in an S3-compatible bucket.
type ObjectStore struct {
	client *minio.Client
	bucket string
	prefix string
	codec  Codec
}

// NewObjectStore stores objects under prefix in bucket.
func NewObjectStore(client *minio.Client, bucket, prefix string, codec Codec) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, prefix: prefix, codec: codec}
}

func (s *ObjectStore) key(k Key) string {
	return path.Join(s.prefix, k.String()+".spv")
}

func notFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Get implements Store.
func (s *ObjectStore) Get(ctx context.Context, k Key) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(k), minio.GetObjectOptions{})
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("artifact: get %s: %w", k, err)
	}
	defer obj.Close()

	block, err := io.ReadAll(obj)
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("artifact: read %s: %w", k, err)
	}
	data, err := s.codec.Decode(block)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	return data, nil
}

// Put implements Store.
func (s *ObjectStore) Put(ctx context.Context, k Key, data []byte) error {
	block, err := s.codec.Encode(data)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.key(k), bytes.NewReader(block), int64(len(block)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return fmt.Errorf("artifact: put %s: %w", k, err)
	}
	return nil
}

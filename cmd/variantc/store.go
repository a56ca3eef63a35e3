// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gogpu/variants/artifact"
)

// openStore selects the artifact store from the cache flags. At most one of
// -cache, -redis and -s3 may be set.
func openStore(ctx context.Context) (artifact.Store, func(), error) {
	nop := func() {}
	set := 0
	for _, v := range []string{*cacheDir, *redisURL, *s3Endpoint} {
		if v != "" {
			set++
		}
	}
	if set == 0 {
		return nil, nop, nil
	}
	if set > 1 {
		return nil, nop, fmt.Errorf("-cache, -redis and -s3 are mutually exclusive")
	}

	codec, err := artifact.ParseCodec(*codecName)
	if err != nil {
		return nil, nop, err
	}

	switch {
	case *cacheDir != "":
		s, err := artifact.NewDiskStore(*cacheDir, codec)
		return s, nop, err
	case *redisURL != "":
		s, err := artifact.DialRedis(ctx, artifact.RedisOptions{URL: *redisURL, Codec: codec})
		if err != nil {
			return nil, nop, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		client, err := minio.New(*s3Endpoint, &minio.Options{
			Creds:  credentials.NewEnvAWS(),
			Secure: *s3Secure,
		})
		if err != nil {
			return nil, nop, fmt.Errorf("s3 client: %w", err)
		}
		exists, err := client.BucketExists(ctx, *s3Bucket)
		if err != nil {
			return nil, nop, fmt.Errorf("s3 bucket %s: %w", *s3Bucket, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, *s3Bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, nop, fmt.Errorf("s3 bucket %s: %w", *s3Bucket, err)
			}
		}
		return artifact.NewObjectStore(client, *s3Bucket, "", codec), nop, nil
	}
}

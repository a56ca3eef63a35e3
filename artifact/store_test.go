// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/variants/backend"
)

var testKey = Key{Program: "lit", Source: 0xabc, Combo: 0xfeed, Stage: backend.StageFragment}

// exerciseStore runs the behavior every Store shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, testKey)
	require.ErrorIs(t, err, ErrNotFound)

	payload := repetitive(512)
	require.NoError(t, s.Put(ctx, testKey, payload))
	got, err := s.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	other := testKey
	other.Stage = backend.StageVertex
	_, err = s.Get(ctx, other)
	assert.ErrorIs(t, err, ErrNotFound)

	edited := testKey
	edited.Source++
	_, err = s.Get(ctx, edited)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, testKey, []byte("replaced")))
	got, err = s.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("replaced"), got)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k := Key{Program: "lit", Combo: uint64(i), Stage: backend.StageVertex}
			data := []byte(fmt.Sprintf("payload %d", i))
			assert.NoError(t, s.Put(ctx, k, data))
			back, err := s.Get(ctx, k)
			assert.NoError(t, err)
			assert.Equal(t, data, back)
		}()
	}
	wg.Wait()
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "lit/0000000000000abc/000000000000feed/fragment", testKey.String())
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	assert.Equal(t, 9, s.Len())
}

func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	data := []byte("abc")
	require.NoError(t, s.Put(ctx, testKey, data))
	data[0] = 'x'
	got, err := s.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestDiskStore(t *testing.T) {
	for _, c := range []Codec{CodecNone, CodecLZ4, CodecZstd} {
		t.Run(c.String(), func(t *testing.T) {
			s, err := NewDiskStore(t.TempDir(), c)
			require.NoError(t, err)
			exerciseStore(t, s)

			_, err = os.Stat(s.Path(testKey))
			assert.NoError(t, err)
			assert.Equal(t, "0000000000000abc", filepath.Base(filepath.Dir(s.Path(testKey))))
		})
	}
}

func TestDiskStoreCorruptFile(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), CodecLZ4)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, testKey, repetitive(64)))
	require.NoError(t, os.WriteFile(s.Path(testKey), []byte{1, 2}, 0o644))

	_, err = s.Get(ctx, testKey)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDiskStoreCanceled(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), CodecNone)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, testKey, nil), context.Canceled)
	_, err = s.Get(ctx, testKey)
	assert.ErrorIs(t, err, context.Canceled)
}

func setupRedis(t *testing.T, opts RedisOptions) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	opts.URL = fmt.Sprintf("redis://%s", mr.Addr())
	s, err := DialRedis(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore(t *testing.T) {
	s, mr := setupRedis(t, RedisOptions{Codec: CodecZstd})
	exerciseStore(t, s)
	assert.True(t, mr.Exists("variants:"+testKey.String()))
}

func TestRedisStoreTTL(t *testing.T) {
	s, mr := setupRedis(t, RedisOptions{Prefix: "shaders:", TTL: time.Minute})
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, testKey, []byte("words")))

	key := "shaders:" + testKey.String()
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	_, err := s.Get(ctx, testKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreCorrupt(t *testing.T) {
	s, mr := setupRedis(t, RedisOptions{})
	require.NoError(t, mr.Set("variants:"+testKey.String(), "xx"))
	_, err := s.Get(context.Background(), testKey)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDialRedisErrors(t *testing.T) {
	_, err := DialRedis(context.Background(), RedisOptions{URL: "invalid://url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")

	_, err = DialRedis(context.Background(), RedisOptions{
		URL:            "redis://localhost:1",
		ConnectTimeout: 100 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

// TestObjectStoreIntegration requires a running MinIO instance.
func TestObjectStoreIntegration(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	const bucket = "test-variants"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	prefix := fmt.Sprintf("run-%d", time.Now().UnixNano())
	exerciseStore(t, NewObjectStore(client, bucket, prefix, CodecLZ4))
}

// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

package artifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures DialRedis.
type RedisOptions struct {
	// URL is the Redis connection string, e.g. "redis://localhost:6379/0".
	URL string

	// Prefix is prepended to every key. Defaults to "variants:".
	Prefix string

	// TTL expires entries. Zero keeps them forever.
	TTL time.Duration

	// Codec encodes payloads.
	Codec Codec

	// ConnectTimeout bounds the initial ping. Defaults to 5s.
	ConnectTimeout time.Duration
}

// RedisStore keeps encoded payloads in Redis strings.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	codec  Codec
}

// DialRedis connects to Redis and verifies the connection.
func DialRedis(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	ropts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("artifact: parse redis URL: %w", err)
	}
	ropts.DialTimeout = opts.ConnectTimeout
	client := redis.NewClient(ropts)

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("artifact: connect to redis: %w", err)
	}
	return NewRedisStore(client, opts.Prefix, opts.TTL, opts.Codec), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration, codec Codec) *RedisStore {
	if prefix == "" {
		prefix = "variants:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl, codec: codec}
}

func (s *RedisStore) key(k Key) string {
	return s.prefix + k.String()
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, k Key) ([]byte, error) {
	block, err := s.client.Get(ctx, s.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("artifact: redis get %s: %w", k, err)
	}
	data, err := s.codec.Decode(block)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	return data, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, k Key, data []byte) error {
	block, err := s.codec.Encode(data)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(k), block, s.ttl).Err(); err != nil {
		return fmt.Errorf("artifact: redis set %s: %w", k, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"complib/internal/library"
)

// DefaultRedisPrefix namespaces complib keys in a shared Redis database.
const DefaultRedisPrefix = "complib:"

// RedisStore keeps each key as a Redis string at <prefix><key>.
type RedisStore struct {
	client *redis.Client
	prefix string
	ctx    context.Context
}

var _ library.BatchStore = (*RedisStore)(nil)

// NewRedisStore wraps client. An empty prefix uses DefaultRedisPrefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ctx:    context.Background(),
	}
}

func (r *RedisStore) key(k string) string {
	return r.prefix + k
}

func (r *RedisStore) Get(key string) ([]byte, error) {
	data, err := r.client.Get(r.ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisStore) Put(key string, value []byte) error {
	if err := r.client.Set(r.ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// PutMany writes all entries in a MULTI/EXEC transaction.
func (r *RedisStore) PutMany(entries map[string][]byte) error {
	_, err := r.client.TxPipelined(r.ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(r.ctx, r.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(key string) error {
	if err := r.client.Del(r.ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) ValidateSetup() error {
	if err := r.client.Ping(r.ctx).Err(); err != nil {
		return fmt.Errorf("redis not reachable: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

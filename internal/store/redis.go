package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jobwatchd/jobwatch/internal/model"
)

// Ensure RedisKV implements KV.
var _ KV = (*RedisKV)(nil)

// RedisKV implements the KV contract over a Redis server. Set and hash
// mutations map directly onto Redis's atomic per-key commands, so the
// contract's no-lost-update requirement holds without any client locking.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV parses redisURL, verifies connectivity, and returns the backend.
func NewRedisKV(ctx context.Context, redisURL string) (*RedisKV, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisKV{client: client}, nil
}

func (r *RedisKV) SAdd(ctx context.Context, key string, members ...string) error {
	return wrap(r.client.SAdd(ctx, key, toAny(members)...).Err(), "sadd", key)
}

func (r *RedisKV) SRem(ctx context.Context, key string, members ...string) error {
	return wrap(r.client.SRem(ctx, key, toAny(members)...).Err(), "srem", key)
}

func (r *RedisKV) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := r.client.SMembers(ctx, key).Result()
	return members, wrap(err, "smembers", key)
}

func (r *RedisKV) SIsMember(ctx context.Context, key, member string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, key, member).Result()
	return ok, wrap(err, "sismember", key)
}

// TrimOldest is a no-op on Redis: sets are unordered and retention is
// covered by the TTL the subscription layer puts on seen sets. This is the
// accepted weak-ordering guarantee of the storage contract.
func (r *RedisKV) TrimOldest(_ context.Context, _ string, _ int) error {
	return nil
}

func (r *RedisKV) HSet(ctx context.Context, key, field, value string) error {
	return wrap(r.client.HSet(ctx, key, field, value).Err(), "hset", key)
}

func (r *RedisKV) HGet(ctx context.Context, key, field string) (string, error) {
	value, err := r.client.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", model.ErrNotFound
	}
	return value, wrap(err, "hget", key)
}

func (r *RedisKV) HDel(ctx context.Context, key string, fields ...string) error {
	return wrap(r.client.HDel(ctx, key, fields...).Err(), "hdel", key)
}

func (r *RedisKV) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	out, err := r.client.HGetAll(ctx, key).Result()
	return out, wrap(err, "hgetall", key)
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", model.ErrNotFound
	}
	return value, wrap(err, "get", key)
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return wrap(r.client.Set(ctx, key, value, 0).Err(), "set", key)
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return wrap(r.client.Del(ctx, key).Err(), "del", key)
}

func (r *RedisKV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return wrap(r.client.Expire(ctx, key, ttl).Err(), "expire", key)
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}

func wrap(err error, op, key string) error {
	if err == nil {
		return err
	}
	return fmt.Errorf("%s %s: %w: %w", op, key, model.ErrStorageUnavailable, err)
}

func toAny(members []string) []any {
	out := make([]any, len(members))
	for i, m := range members {
		out[i] = m
	}
	return out
}

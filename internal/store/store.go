// Package store defines the key-value storage contract the pipeline
// persists through, with interchangeable Redis, SQLite, file-backed JSON,
// and in-memory backends.
package store

import (
	"context"
	"log/slog"
	"time"
)

// KV is the storage contract: atomic set operations, hash fields, and
// plain keys with optional expiry. Mutations are atomic per (key, member)
// or (key, field) so concurrent writers never lose each other's updates.
//
// A missing key reads as an empty set/hash; HGet and Get on a missing
// entry return model.ErrNotFound. Backends that cannot enforce expiry
// (file, memory) treat Expire as a no-op, and backends with native expiry
// (Redis) treat TrimOldest as a no-op; each covers the seen-set retention
// requirement with the primitive it has.
type KV interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
	// TrimOldest keeps at most max members of a set, dropping the oldest
	// by insertion order where the backend tracks it.
	TrimOldest(ctx context.Context, key string, max int) error

	HSet(ctx context.Context, key, field, value string) error
	HGet(ctx context.Context, key, field string) (string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error

	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	Backend  string // "redis", "sqlite", "file", or "memory"
	RedisURL string // redis connection string
	Path     string // sqlite db path or file-store directory
}

// Open builds the configured backend. When Redis is selected but
// unreachable it falls back to the file store so the process keeps
// running; the failure is logged, never swallowed silently.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (KV, error) {
	switch cfg.Backend {
	case "redis":
		kv, err := NewRedisKV(ctx, cfg.RedisURL)
		if err == nil {
			logger.Info("using redis storage")
			return kv, nil
		}
		logger.Warn("redis unavailable, falling back to file storage", "error", err)
		return NewFileKV(cfg.Path)
	case "sqlite":
		logger.Info("using sqlite storage", "path", cfg.Path)
		return NewSQLiteKV(cfg.Path)
	case "memory":
		return NewMemoryKV(), nil
	default:
		logger.Info("using file storage", "dir", cfg.Path)
		return NewFileKV(cfg.Path)
	}
}

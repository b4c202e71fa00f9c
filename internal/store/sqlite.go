package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jobwatchd/jobwatch/internal/model"
)

// Ensure SQLiteKV implements KV.
var _ KV = (*SQLiteKV)(nil)

// SQLiteKV implements the KV contract over an embedded SQLite database.
// Set members keep a rowid insertion order, which gives TrimOldest a real
// oldest-first eviction.
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV opens (or creates) a SQLite database at dbPath and ensures
// the kv tables exist.
func NewSQLiteKV(dbPath string) (*SQLiteKV, error) {
	if dbPath == "" {
		dbPath = "jobwatch.db"
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS kv_sets (
			key    TEXT NOT NULL,
			member TEXT NOT NULL,
			PRIMARY KEY (key, member)
		)`,
		`CREATE TABLE IF NOT EXISTS kv_hashes (
			key   TEXT NOT NULL,
			field TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (key, field)
		)`,
		`CREATE TABLE IF NOT EXISTS kv_items (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			expires_at DATETIME
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating kv tables: %w", err)
		}
	}

	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) SAdd(ctx context.Context, key string, members ...string) error {
	for _, member := range members {
		_, err := s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO kv_sets (key, member) VALUES (?, ?)", key, member)
		if err != nil {
			return fmt.Errorf("sadd %s: %w", key, err)
		}
	}
	return nil
}

func (s *SQLiteKV) SRem(ctx context.Context, key string, members ...string) error {
	for _, member := range members {
		_, err := s.db.ExecContext(ctx,
			"DELETE FROM kv_sets WHERE key = ? AND member = ?", key, member)
		if err != nil {
			return fmt.Errorf("srem %s: %w", key, err)
		}
	}
	return nil
}

func (s *SQLiteKV) SMembers(ctx context.Context, key string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member FROM kv_sets WHERE key = ? ORDER BY rowid", key)
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", key, err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("smembers %s: %w", key, err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *SQLiteKV) SIsMember(ctx context.Context, key, member string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM kv_sets WHERE key = ? AND member = ?", key, member).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sismember %s: %w", key, err)
	}
	return true, nil
}

func (s *SQLiteKV) TrimOldest(ctx context.Context, key string, max int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_sets WHERE key = ? AND rowid NOT IN (
			SELECT rowid FROM kv_sets WHERE key = ? ORDER BY rowid DESC LIMIT ?
		)`, key, key, max)
	if err != nil {
		return fmt.Errorf("trim %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) HSet(ctx context.Context, key, field, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_hashes (key, field, value) VALUES (?, ?, ?)
		 ON CONFLICT (key, field) DO UPDATE SET value = excluded.value`,
		key, field, value)
	if err != nil {
		return fmt.Errorf("hset %s.%s: %w", key, field, err)
	}
	return nil
}

func (s *SQLiteKV) HGet(ctx context.Context, key, field string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv_hashes WHERE key = ? AND field = ?", key, field).Scan(&value)
	if err == sql.ErrNoRows {
		return "", model.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("hget %s.%s: %w", key, field, err)
	}
	return value, nil
}

func (s *SQLiteKV) HDel(ctx context.Context, key string, fields ...string) error {
	for _, field := range fields {
		_, err := s.db.ExecContext(ctx,
			"DELETE FROM kv_hashes WHERE key = ? AND field = ?", key, field)
		if err != nil {
			return fmt.Errorf("hdel %s.%s: %w", key, field, err)
		}
	}
	return nil
}

func (s *SQLiteKV) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT field, value FROM kv_hashes WHERE key = ?", key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("hgetall %s: %w", key, err)
		}
		out[field] = value
	}
	return out, rows.Err()
}

func (s *SQLiteKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	var expires sql.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM kv_items WHERE key = ?", key).Scan(&value, &expires)
	if err == sql.ErrNoRows {
		return "", model.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	if expires.Valid && time.Now().After(expires.Time) {
		_, _ = s.db.ExecContext(ctx, "DELETE FROM kv_items WHERE key = ?", key)
		return "", model.ErrNotFound
	}
	return value, nil
}

func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_items (key, value, expires_at) VALUES (?, ?, NULL)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = NULL`,
		key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	stmts := []string{
		"DELETE FROM kv_items WHERE key = ?",
		"DELETE FROM kv_sets WHERE key = ?",
		"DELETE FROM kv_hashes WHERE key = ?",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *SQLiteKV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE kv_items SET expires_at = ? WHERE key = ?", time.Now().Add(ttl), key)
	if err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

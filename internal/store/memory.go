package store

import (
	"context"
	"sync"
	"time"

	"github.com/jobwatchd/jobwatch/internal/model"
)

// Ensure MemoryKV implements KV.
var _ KV = (*MemoryKV)(nil)

// MemoryKV is a map-based backend for tests and throwaway runs. Sets keep
// insertion order so TrimOldest behaves the same as the durable backends.
type MemoryKV struct {
	mu     sync.Mutex
	sets   map[string][]string
	hashes map[string]map[string]string
	keys   map[string]string
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		sets:   make(map[string][]string),
		hashes: make(map[string]map[string]string),
		keys:   make(map[string]string),
	}
}

func (m *MemoryKV) SAdd(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range members {
		if !contains(m.sets[key], member) {
			m.sets[key] = append(m.sets[key], member)
		}
	}
	return nil
}

func (m *MemoryKV) SRem(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range members {
		m.sets[key] = remove(m.sets[key], member)
	}
	return nil
}

func (m *MemoryKV) SMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sets[key]))
	copy(out, m.sets[key])
	return out, nil
}

func (m *MemoryKV) SIsMember(_ context.Context, key, member string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return contains(m.sets[key], member), nil
}

func (m *MemoryKV) TrimOldest(_ context.Context, key string, max int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if set := m.sets[key]; len(set) > max {
		m.sets[key] = set[len(set)-max:]
	}
	return nil
}

func (m *MemoryKV) HSet(_ context.Context, key, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string]string)
	}
	m.hashes[key][field] = value
	return nil
}

func (m *MemoryKV) HGet(_ context.Context, key, field string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.hashes[key][field]
	if !ok {
		return "", model.ErrNotFound
	}
	return value, nil
}

func (m *MemoryKV) HDel(_ context.Context, key string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, field := range fields {
		delete(m.hashes[key], field)
	}
	return nil
}

func (m *MemoryKV) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.hashes[key]))
	for field, value := range m.hashes[key] {
		out[field] = value
	}
	return out, nil
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.keys[key]
	if !ok {
		return "", model.ErrNotFound
	}
	return value, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	delete(m.sets, key)
	delete(m.hashes, key)
	return nil
}

func (m *MemoryKV) Expire(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

func (m *MemoryKV) Close() error { return nil }

func contains(set []string, member string) bool {
	for _, v := range set {
		if v == member {
			return true
		}
	}
	return false
}

func remove(set []string, member string) []string {
	out := set[:0]
	for _, v := range set {
		if v != member {
			out = append(out, v)
		}
	}
	return out
}

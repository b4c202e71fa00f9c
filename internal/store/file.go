package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jobwatchd/jobwatch/internal/model"
)

// Ensure FileKV implements KV.
var _ KV = (*FileKV)(nil)

// FileKV persists the whole store as one JSON document, rewritten on every
// mutation. Good for development and small deployments; atomicity comes
// from a process-wide mutex plus write-to-temp-then-rename, so concurrent
// sweep and on-demand writes never interleave partially.
type FileKV struct {
	path string

	mu   sync.Mutex
	data fileData
}

type fileData struct {
	Sets   map[string][]string          `json:"sets"`
	Hashes map[string]map[string]string `json:"hashes"`
	Keys   map[string]string            `json:"keys"`
}

// NewFileKV opens (or creates) the JSON store under dir.
func NewFileKV(dir string) (*FileKV, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	kv := &FileKV{
		path: filepath.Join(dir, "jobwatch.json"),
		data: fileData{
			Sets:   make(map[string][]string),
			Hashes: make(map[string]map[string]string),
			Keys:   make(map[string]string),
		},
	}

	raw, err := os.ReadFile(kv.path)
	if os.IsNotExist(err) {
		return kv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store file: %w", err)
	}
	if err := json.Unmarshal(raw, &kv.data); err != nil {
		return nil, fmt.Errorf("parsing store file %s: %w", kv.path, err)
	}
	kv.ensureMaps()
	return kv, nil
}

func (f *FileKV) ensureMaps() {
	if f.data.Sets == nil {
		f.data.Sets = make(map[string][]string)
	}
	if f.data.Hashes == nil {
		f.data.Hashes = make(map[string]map[string]string)
	}
	if f.data.Keys == nil {
		f.data.Keys = make(map[string]string)
	}
}

// save writes the store atomically. Callers hold f.mu.
func (f *FileKV) save() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}

func (f *FileKV) SAdd(_ context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := false
	for _, member := range members {
		if !contains(f.data.Sets[key], member) {
			f.data.Sets[key] = append(f.data.Sets[key], member)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.save()
}

func (f *FileKV) SRem(_ context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, member := range members {
		f.data.Sets[key] = remove(f.data.Sets[key], member)
	}
	return f.save()
}

func (f *FileKV) SMembers(_ context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.data.Sets[key]))
	copy(out, f.data.Sets[key])
	return out, nil
}

func (f *FileKV) SIsMember(_ context.Context, key, member string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return contains(f.data.Sets[key], member), nil
}

func (f *FileKV) TrimOldest(_ context.Context, key string, max int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.data.Sets[key]
	if len(set) <= max {
		return nil
	}
	f.data.Sets[key] = set[len(set)-max:]
	return f.save()
}

func (f *FileKV) HSet(_ context.Context, key, field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data.Hashes[key] == nil {
		f.data.Hashes[key] = make(map[string]string)
	}
	f.data.Hashes[key][field] = value
	return f.save()
}

func (f *FileKV) HGet(_ context.Context, key, field string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data.Hashes[key][field]
	if !ok {
		return "", model.ErrNotFound
	}
	return value, nil
}

func (f *FileKV) HDel(_ context.Context, key string, fields ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, field := range fields {
		delete(f.data.Hashes[key], field)
	}
	return f.save()
}

func (f *FileKV) HGetAll(_ context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.data.Hashes[key]))
	for field, value := range f.data.Hashes[key] {
		out[field] = value
	}
	return out, nil
}

func (f *FileKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data.Keys[key]
	if !ok {
		return "", model.ErrNotFound
	}
	return value, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data.Keys[key] = value
	return f.save()
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data.Keys, key)
	delete(f.data.Sets, key)
	delete(f.data.Hashes, key)
	return f.save()
}

// Expire is a no-op: seen-set retention on this backend comes from
// TrimOldest instead.
func (f *FileKV) Expire(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

func (f *FileKV) Close() error { return nil }

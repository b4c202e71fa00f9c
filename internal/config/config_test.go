package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
feed_url: https://example.com/jobs.xml
poll_interval: 15m
storage:
  backend: sqlite
  path: /tmp/jobwatch.db
notification:
  type: webhook
  webhook_url: https://hooks.example.com/jobs
  messages_per_second: 2
notifications:
  mark_overflow_seen: true
retry:
  max_retries: 5
  base_delay: 500ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FeedURL != "https://example.com/jobs.xml" {
		t.Errorf("FeedURL = %q", cfg.FeedURL)
	}
	if cfg.PollInterval != 15*time.Minute {
		t.Errorf("PollInterval = %v, want 15m", cfg.PollInterval)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Path != "/tmp/jobwatch.db" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Notification.Type != "webhook" || cfg.Notification.MessagesPerSecond != 2 {
		t.Errorf("Notification = %+v", cfg.Notification)
	}
	if !cfg.Notifications.MarkOverflowSeen {
		t.Error("Notifications.MarkOverflowSeen = false, want true")
	}
	if cfg.Retry.MaxRetries != 5 || cfg.Retry.BaseDelay != 500*time.Millisecond {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `storage: {backend: memory}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FeedURL != defaultFeedURL {
		t.Errorf("FeedURL = %q, want default", cfg.FeedURL)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Errorf("PollInterval = %v, want default", cfg.PollInterval)
	}
	if cfg.Retry.MaxRetries != 3 || cfg.Retry.BaseDelay != 2*time.Second {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.Notifications.MarkOverflowSeen {
		t.Error("MarkOverflowSeen defaults to true, want false")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("JOBWATCH_TEST_REDIS", "redis://localhost:6379/2")
	cfg, err := Load(writeConfig(t, `
storage:
  backend: redis
  redis_url: ${JOBWATCH_TEST_REDIS}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("RedisURL = %q", cfg.Storage.RedisURL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "poll_interval: [broken"))
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"sub-minute poll interval", "poll_interval: 10s"},
		{"unknown storage backend", "storage: {backend: dynamo}"},
		{"redis without url", "storage: {backend: redis}"},
		{"webhook without url", "notification: {type: webhook}"},
		{"unknown notifier type", "notification: {type: carrier-pigeon}"},
		{"negative rate", "notification: {type: log, messages_per_second: -1}"},
		{"negative retries", "retry: {max_retries: -2}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Errorf("Load: expected error for %s", tt.name)
			}
		})
	}
}

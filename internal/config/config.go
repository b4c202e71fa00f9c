package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobwatch service.
type Config struct {
	FeedURL       string
	PollInterval  time.Duration
	Storage       StorageConfig
	Notification  NotificationConfig
	Notifications NotificationPolicy
	Retry         RetryConfig
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Backend  string `yaml:"backend"`   // "redis", "sqlite", "file" or "memory"
	RedisURL string `yaml:"redis_url"` // required if backend is "redis"
	Path     string `yaml:"path"`      // data directory or database file
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type              string  `yaml:"type"`        // "log" or "webhook"
	WebhookURL        string  `yaml:"webhook_url"` // required if type is "webhook"
	MessagesPerSecond float64 `yaml:"messages_per_second"`
}

// NotificationPolicy holds delivery policy knobs.
type NotificationPolicy struct {
	MarkOverflowSeen bool // mark jobs withheld by the per-sweep cap as seen
}

// RetryConfig controls the feed fetch retry decorator.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	FeedURL       string                `yaml:"feed_url"`
	PollInterval  string                `yaml:"poll_interval"`
	Storage       StorageConfig         `yaml:"storage"`
	Notification  NotificationConfig    `yaml:"notification"`
	Notifications rawNotificationPolicy `yaml:"notifications"`
	Retry         rawRetryConfig        `yaml:"retry"`
}

type rawNotificationPolicy struct {
	MarkOverflowSeen bool `yaml:"mark_overflow_seen"`
}

type rawRetryConfig struct {
	MaxRetries int    `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

const (
	defaultFeedURL      = "https://cryptojobslist.com/job-feed.xml"
	defaultPollInterval = 30 * time.Minute
)

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := defaultPollInterval
	if raw.PollInterval != "" {
		interval, err = time.ParseDuration(raw.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("parse poll_interval %q: %w", raw.PollInterval, err)
		}
	}

	baseDelay := 2 * time.Second
	if raw.Retry.BaseDelay != "" {
		baseDelay, err = time.ParseDuration(raw.Retry.BaseDelay)
		if err != nil {
			return nil, fmt.Errorf("parse retry.base_delay %q: %w", raw.Retry.BaseDelay, err)
		}
	}

	maxRetries := raw.Retry.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	feedURL := raw.FeedURL
	if feedURL == "" {
		feedURL = defaultFeedURL
	}

	cfg := &Config{
		FeedURL:      feedURL,
		PollInterval: interval,
		Storage:      raw.Storage,
		Notification: raw.Notification,
		Notifications: NotificationPolicy{
			MarkOverflowSeen: raw.Notifications.MarkOverflowSeen,
		},
		Retry: RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  baseDelay,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", cfg.PollInterval)
	}
	if cfg.PollInterval < time.Minute {
		return fmt.Errorf("poll_interval must be at least 1m, got %v", cfg.PollInterval)
	}

	switch cfg.Storage.Backend {
	case "", "redis", "sqlite", "file", "memory":
	default:
		return fmt.Errorf("storage.backend must be one of redis, sqlite, file, memory; got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == "redis" && cfg.Storage.RedisURL == "" {
		return fmt.Errorf("storage.redis_url is required when backend is \"redis\"")
	}

	switch cfg.Notification.Type {
	case "", "log":
	case "webhook":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"webhook\"")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"webhook\", got %q", cfg.Notification.Type)
	}
	if cfg.Notification.MessagesPerSecond < 0 {
		return fmt.Errorf("notification.messages_per_second must not be negative, got %v", cfg.Notification.MessagesPerSecond)
	}

	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}

	return nil
}

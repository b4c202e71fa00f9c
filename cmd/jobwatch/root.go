package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobwatchd/jobwatch/internal/config"
	"github.com/jobwatchd/jobwatch/internal/feed"
	"github.com/jobwatchd/jobwatch/internal/model"
	"github.com/jobwatchd/jobwatch/internal/notify"
	"github.com/jobwatchd/jobwatch/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobwatch",
	Short: "Job-feed watcher — new postings, filtered per subscriber",
	Long:  "jobwatch polls a job-listing RSS feed, classifies postings, and alerts subscribers whose filters match.",
	// Default to `start` so that `jobwatch` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBWATCH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBWATCH_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBWATCH_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "webhook":
		logger.Info("using webhook notifier")
		return notify.NewWebhookNotifier(cfg.Notification.WebhookURL, cfg.Notification.MessagesPerSecond, httpClient, logger)
	default:
		return notify.NewLogNotifier(logger)
	}
}

// setupSource builds the feed source: gofeed fetcher wrapped with the
// retry-then-degrade decorator.
func setupSource(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.FeedSource {
	fetcher := feed.NewFetcher(cfg.FeedURL, httpClient, logger)
	return feed.NewResilient(fetcher, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.KV, error) {
	return store.Open(ctx, store.Config{
		Backend:  cfg.Storage.Backend,
		RedisURL: cfg.Storage.RedisURL,
		Path:     cfg.Storage.Path,
	}, logger)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

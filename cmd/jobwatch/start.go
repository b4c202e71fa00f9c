package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobwatchd/jobwatch/internal/filter"
	"github.com/jobwatchd/jobwatch/internal/scheduler"
	"github.com/jobwatchd/jobwatch/internal/subs"
	"github.com/jobwatchd/jobwatch/internal/sweep"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sweep daemon",
	Long:  "Start the feed sweep scheduler; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"feed_url", cfg.FeedURL,
		"interval", cfg.PollInterval.String(),
		"storage", cfg.Storage.Backend,
		"notifier", cfg.Notification.Type,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	httpClient := newHTTPClient()
	source := setupSource(cfg, httpClient, logger)
	notifier := setupNotifier(cfg, httpClient, logger)
	subscriptions := subs.NewStore(kv)
	correlator := sweep.NewCorrelator(24*time.Hour, 4096)

	planner := sweep.NewPlanner(
		source,
		filter.NewEngine(),
		subscriptions,
		notifier,
		correlator,
		sweep.Options{MarkOverflowSeen: cfg.Notifications.MarkOverflowSeen},
		logger,
	)

	sched := scheduler.New(planner, cfg.PollInterval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}

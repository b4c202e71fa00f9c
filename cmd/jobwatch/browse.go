package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobwatchd/jobwatch/internal/browse"
	"github.com/jobwatchd/jobwatch/internal/model"
	"github.com/jobwatchd/jobwatch/internal/subs"
)

var browseUser string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the feed interactively",
	Long:  "Fetches the feed once and opens an interactive list/detail browser with job-type filtering.",
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseUser, "user", "u", "", "subscriber id for favorite toggling (empty: favorites disabled)")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := newHTTPClient()
	source := setupSource(cfg, httpClient, logger)
	jobs, err := source.FetchJobs(ctx)
	if err != nil {
		logger.Error("fetch failed", "error", err)
		os.Exit(1)
	}
	if len(jobs) == 0 {
		fmt.Println("The feed is empty or unreachable.")
		return nil
	}

	var favorites map[string]model.Job
	var favoriter browse.Favoriter
	if browseUser != "" {
		kv, err := openStore(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer kv.Close()

		subscriptions := subs.NewStore(kv)
		favorites, err = subscriptions.Favorites(ctx, browseUser)
		if err != nil {
			logger.Error("failed to load favorites", "error", err)
			os.Exit(1)
		}
		favoriter = subscriptions
	}

	return browse.Run(jobs, favorites, browseUser, favoriter)
}

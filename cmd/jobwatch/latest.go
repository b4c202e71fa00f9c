package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobwatchd/jobwatch/internal/filter"
	"github.com/jobwatchd/jobwatch/internal/notify"
	"github.com/jobwatchd/jobwatch/internal/subs"
	"github.com/jobwatchd/jobwatch/internal/sweep"
)

var (
	latestUser string
	latestPage int
	latestNew  bool
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print a page of the latest filtered jobs",
	Long:  "Fetches the feed once, applies the subscriber's filters, and prints one page of jobs. With --new, only unseen jobs are listed and the whole result is marked seen.",
	RunE:  runLatest,
}

func init() {
	latestCmd.Flags().StringVarP(&latestUser, "user", "u", "", "subscriber id whose filters apply (empty: no filters)")
	latestCmd.Flags().IntVarP(&latestPage, "page", "p", 1, "page number")
	latestCmd.Flags().BoolVar(&latestNew, "new", false, "only unseen jobs; marks the result seen")
	rootCmd.AddCommand(latestCmd)
}

func runLatest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

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
	planner := sweep.NewPlanner(
		source,
		filter.NewEngine(),
		subs.NewStore(kv),
		notify.NewLogNotifier(logger),
		nil,
		sweep.Options{},
		logger,
	)

	res, err := planner.Latest(ctx, sweep.LatestRequest{
		SubscriberID: latestUser,
		Page:         latestPage,
		NewOnly:      latestNew,
	})
	if err != nil {
		logger.Error("latest failed", "error", err)
		os.Exit(1)
	}

	if res.Total == 0 {
		fmt.Println("No jobs match.")
		return nil
	}

	fmt.Printf("Page %d of %d (%d jobs total)\n\n", res.Page, res.TotalPages, res.Total)
	for _, job := range res.Jobs {
		fmt.Println(notify.RenderMessage(job))
		fmt.Println()
	}
	return nil
}

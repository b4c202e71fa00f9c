package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobwatchd/jobwatch/internal/subs"
)

var subsCmd = &cobra.Command{
	Use:   "subs",
	Short: "Subscriber management subcommands",
}

var subsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscribers and their filters",
	RunE:  runSubsList,
}

var subsAddCmd = &cobra.Command{
	Use:   "add <subscriber-id>",
	Short: "Subscribe an id to sweep notifications",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubsAdd,
}

var subsRemoveCmd = &cobra.Command{
	Use:   "remove <subscriber-id>",
	Short: "Unsubscribe an id (filters are kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubsRemove,
}

var subsFilterCmd = &cobra.Command{
	Use:   "filter <subscriber-id> <add-type|remove-type|add-keyword|remove-keyword|clear> [value]",
	Short: "Edit a subscriber's job-type and keyword filters",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runSubsFilter,
}

func init() {
	rootCmd.AddCommand(subsCmd)
	subsCmd.AddCommand(subsListCmd)
	subsCmd.AddCommand(subsAddCmd)
	subsCmd.AddCommand(subsRemoveCmd)
	subsCmd.AddCommand(subsFilterCmd)
}

// withSubs opens the store and hands the subscriber layer to fn.
func withSubs(fn func(ctx context.Context, s *subs.Store) error) error {
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

	return fn(ctx, subs.NewStore(kv))
}

func runSubsList(cmd *cobra.Command, args []string) error {
	return withSubs(func(ctx context.Context, s *subs.Store) error {
		ids, err := s.Subscribers(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No subscribers.")
			return nil
		}

		fmt.Printf("%-20s %-30s %s\n", "Subscriber", "Job Types", "Keywords")
		fmt.Println(strings.Repeat("─", 70))
		for _, id := range ids {
			prefs, err := s.Preferences(ctx, id)
			if err != nil {
				return err
			}
			types := strings.Join(prefs.JobTypes, ",")
			if prefs.LegacyJobType != "" {
				types += " (legacy: " + prefs.LegacyJobType + ")"
			}
			if types == "" {
				types = "-"
			}
			keywords := strings.Join(prefs.Keywords, ",")
			if keywords == "" {
				keywords = "-"
			}
			fmt.Printf("%-20s %-30s %s\n", id, types, keywords)
		}
		fmt.Printf("\nTotal: %d subscribers\n", len(ids))
		return nil
	})
}

func runSubsAdd(cmd *cobra.Command, args []string) error {
	return withSubs(func(ctx context.Context, s *subs.Store) error {
		if err := s.Subscribe(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("subscribed %s\n", args[0])
		return nil
	})
}

func runSubsRemove(cmd *cobra.Command, args []string) error {
	return withSubs(func(ctx context.Context, s *subs.Store) error {
		if err := s.Unsubscribe(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("unsubscribed %s\n", args[0])
		return nil
	})
}

func runSubsFilter(cmd *cobra.Command, args []string) error {
	id, action := args[0], args[1]
	var value string
	if len(args) == 3 {
		value = args[2]
	}
	if action != "clear" && value == "" {
		return fmt.Errorf("action %q needs a value", action)
	}

	return withSubs(func(ctx context.Context, s *subs.Store) error {
		var err error
		switch action {
		case "add-type":
			err = s.AddJobTypeFilter(ctx, id, value)
		case "remove-type":
			err = s.RemoveJobTypeFilter(ctx, id, value)
		case "add-keyword":
			err = s.AddKeywordFilter(ctx, id, value)
		case "remove-keyword":
			err = s.RemoveKeywordFilter(ctx, id, value)
		case "clear":
			err = s.ClearAllFilters(ctx, id)
		default:
			return fmt.Errorf("unknown action %q", action)
		}
		if err != nil {
			return err
		}
		fmt.Printf("filters updated for %s\n", id)
		return nil
	})
}

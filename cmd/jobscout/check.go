package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jobscout/internal/dedup"
	"jobscout/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one cycle per source, print results, exit",
	Long:  "One-shot run: each configured source is polled once against an in-memory store, so nothing is persisted or marked as seen.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: nothing will be persisted")

	httpClient := &http.Client{Timeout: 30 * time.Second}
	memStore := store.NewMemoryStore()

	entries := buildEntries(cfg, memStore, nil, dedup.NewMemory(), httpClient, logger)
	if len(entries) == 0 {
		logger.Error("no sources to poll")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		stats, err := e.Ingestor.RunCycle(ctx)
		if err != nil {
			logger.Error("cycle failed", "source", e.Ingestor.Source(), "error", err)
			continue
		}
		logger.Info("check cycle",
			"source", stats.Source,
			"fetched", stats.Fetched,
			"new", stats.New,
			"duplicates", stats.Duplicates,
			"skipped", stats.Skipped,
			"failed", stats.Failed,
		)
	}

	logger.Info("check complete")
	return nil
}

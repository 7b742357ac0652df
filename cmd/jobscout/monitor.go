package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"jobscout/internal/monitor"
	"jobscout/internal/store"
)

var monitorWindow time.Duration

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Open the live health and postings dashboard",
	Long:  "Read-only terminal dashboard over the posting store. Safe to run alongside the daemon.",
	RunE:  runMonitor,
}

func init() {
	monitorCmd.Flags().DurationVar(&monitorWindow, "window", 24*time.Hour, "how far back the postings pane looks")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	return monitor.Run(sqlStore, sqlStore, monitorWindow)
}

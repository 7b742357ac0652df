package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"jobscout/internal/config"
	"jobscout/internal/dedup"
	"jobscout/internal/enrich"
	"jobscout/internal/filter"
	"jobscout/internal/health"
	"jobscout/internal/ingest"
	"jobscout/internal/model"
	"jobscout/internal/notifier"
	"jobscout/internal/ratelimit"
	"jobscout/internal/retry"
	"jobscout/internal/scheduler"
	"jobscout/internal/source"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Job-posting radar across Reddit, Hacker News and company pages",
	Long:  "Jobscout polls job sources, enriches what it finds and alerts on new postings.",
	// Default to `start` so that `jobscout` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSCOUT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBSCOUT_CONFIG"); env != "" {
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
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func setupCache(cfg *config.Config, logger *slog.Logger) model.SeenCache {
	if cfg.Dedup.Backend == "redis" {
		logger.Info("using redis seen cache", "addr", cfg.Dedup.RedisAddr)
		client := redis.NewClient(&redis.Options{Addr: cfg.Dedup.RedisAddr})
		return dedup.NewRedis(client, cfg.Dedup.TTL, logger)
	}
	return dedup.NewMemory()
}

// buildPollers creates one poller per enabled source, one per page for
// company pages. The returned intervals are index-aligned with the pollers.
func buildPollers(cfg *config.Config, keywords *filter.KeywordFilter, httpClient *http.Client, logger *slog.Logger) ([]model.Poller, []time.Duration) {
	var pollers []model.Poller
	var intervals []time.Duration
	for _, sc := range cfg.Sources {
		if !sc.Enabled {
			continue
		}
		switch sc.Kind {
		case model.SourceReddit:
			pollers = append(pollers, source.NewRedditPoller(sc.Subreddits, keywords, cfg.Filters.MaxAge, sc.Limit, httpClient, logger))
			intervals = append(intervals, sc.Interval)
		case model.SourceHackerNews:
			pollers = append(pollers, source.NewHackerNewsPoller(sc.RediscoverEvery, sc.MaxComments, httpClient, logger))
			intervals = append(intervals, sc.Interval)
		case model.SourceCompanyPage:
			for _, page := range sc.Pages {
				pollers = append(pollers, source.NewCompanyPagePoller(page.Company, page.URL, httpClient, logger))
				intervals = append(intervals, sc.Interval)
			}
		}
		logger.Info("registered source", "kind", sc.Kind, "interval", sc.Interval.String())
	}
	return pollers, intervals
}

// buildEntries wires the full pipeline for each poller and pairs it with
// its interval. healthStore may be nil for one-shot runs.
func buildEntries(cfg *config.Config, postingStore model.PostingStore, healthStore model.HealthStore, cache model.SeenCache, httpClient *http.Client, logger *slog.Logger) []scheduler.Entry {
	keywords := filter.NewKeywordFilter(cfg.Filters.Keywords)
	pipeline := enrich.NewPipeline(cfg.Enrichment.Weights, cfg.Enrichment.Skills, cfg.Enrichment.RedFlags, logger)
	tracker := health.NewTracker(cfg.Health.Staleness, nil, logger)
	n := setupNotifier(cfg, httpClient, logger)

	limiter := ratelimit.NewSourceLimiter()
	for _, sc := range cfg.Sources {
		if sc.Enabled {
			limiter.Register(sc.Kind, sc.Rate.Capacity, sc.Rate.PerSecond)
		}
	}

	policy := retry.Policy{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		BaseDelay:      cfg.Retry.BaseDelay,
		MaxDelay:       cfg.Retry.MaxDelay,
		JitterFraction: cfg.Retry.JitterFraction,
	}

	pollers, intervals := buildPollers(cfg, keywords, httpClient, logger)

	var entries []scheduler.Entry
	for i, p := range pollers {
		ing := ingest.New(ingest.Options{
			Poller:       retry.NewPoller(p, policy, logger),
			Limiter:      limiter,
			Health:       tracker,
			Cache:        cache,
			Store:        postingStore,
			HealthStore:  healthStore,
			Pipeline:     pipeline,
			Keywords:     keywords,
			Notifier:     n,
			MaxAge:       cfg.Filters.MaxAge,
			CycleTimeout: cfg.CycleTimeout,
			Logger:       logger,
		})
		entries = append(entries, scheduler.Entry{Ingestor: ing, Interval: intervals[i]})
	}
	return entries
}

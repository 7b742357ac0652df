// Package config loads and validates the YAML configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"jobscout/internal/enrich"
	"jobscout/internal/model"
)

// Config is the root configuration for the jobscout pipeline.
type Config struct {
	Sources      []SourceConfig
	Filters      FilterConfig
	Retry        RetryConfig
	Health       HealthConfig
	Dedup        DedupConfig
	Storage      StorageConfig
	Notification NotificationConfig
	Enrichment   EnrichmentConfig
	CycleTimeout time.Duration
}

// SourceConfig describes one source to poll. Kind selects the poller;
// the remaining fields apply to specific kinds.
type SourceConfig struct {
	Kind     model.Source
	Enabled  bool
	Interval time.Duration
	Rate     RateConfig

	// reddit
	Subreddits []string
	Limit      int

	// hackernews
	RediscoverEvery time.Duration
	MaxComments     int

	// companypage
	Pages []PageConfig
}

// RateConfig is the token bucket for one source: Capacity tokens refilled
// at PerSecond.
type RateConfig struct {
	Capacity  int
	PerSecond float64
}

// PageConfig is one company careers page to snapshot.
type PageConfig struct {
	Company string `yaml:"company"`
	URL     string `yaml:"url"`
}

// FilterConfig holds keyword and freshness filter settings.
type FilterConfig struct {
	Keywords []string
	MaxAge   time.Duration // postings older than this are dropped; zero disables
}

// RetryConfig maps onto retry.Policy.
type RetryConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	JitterFraction float64
}

// HealthConfig controls the staleness threshold for marking a source Down.
type HealthConfig struct {
	Staleness time.Duration
}

// DedupConfig selects the seen-cache backend.
type DedupConfig struct {
	Backend   string // "memory" or "redis"
	RedisAddr string
	TTL       time.Duration // redis entry lifetime; zero keeps entries forever
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// EnrichmentConfig carries the priority weights and optional vocabulary
// overrides. Empty overrides keep the built-in vocabularies.
type EnrichmentConfig struct {
	Weights  enrich.Weights
	Skills   []string
	RedFlags map[string][]string
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	CycleTimeout string              `yaml:"cycle_timeout"`
	Sources      []rawSourceConfig   `yaml:"sources"`
	Filters      rawFilterConfig     `yaml:"filters"`
	Retry        rawRetryConfig      `yaml:"retry"`
	Health       rawHealthConfig     `yaml:"health"`
	Dedup        rawDedupConfig      `yaml:"dedup"`
	Storage      StorageConfig       `yaml:"storage"`
	Notification NotificationConfig  `yaml:"notification"`
	Enrichment   rawEnrichmentConfig `yaml:"enrichment"`
}

type rawSourceConfig struct {
	Kind            string        `yaml:"kind"`
	Enabled         bool          `yaml:"enabled"`
	Interval        string        `yaml:"interval"`
	Rate            rawRateConfig `yaml:"rate"`
	Subreddits      []string      `yaml:"subreddits"`
	Limit           int           `yaml:"limit"`
	RediscoverEvery string        `yaml:"rediscover_every"`
	MaxComments     int           `yaml:"max_comments"`
	Pages           []PageConfig  `yaml:"pages"`
}

type rawRateConfig struct {
	Capacity  int     `yaml:"capacity"`
	PerSecond float64 `yaml:"per_second"`
}

type rawFilterConfig struct {
	Keywords []string `yaml:"keywords"`
	MaxAge   string   `yaml:"max_age"`
}

type rawRetryConfig struct {
	MaxAttempts    int     `yaml:"max_attempts"`
	BaseDelay      string  `yaml:"base_delay"`
	MaxDelay       string  `yaml:"max_delay"`
	JitterFraction float64 `yaml:"jitter_fraction"`
}

type rawHealthConfig struct {
	Staleness string `yaml:"staleness"`
}

type rawDedupConfig struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr"`
	TTL       string `yaml:"ttl"`
}

type rawEnrichmentConfig struct {
	Weights  rawWeights          `yaml:"weights"`
	Skills   []string            `yaml:"skills"`
	RedFlags map[string][]string `yaml:"red_flags"`
}

type rawWeights struct {
	Salary         *int `yaml:"salary"`
	Remote         *int `yaml:"remote"`
	Seniority      *int `yaml:"seniority"`
	RedFlagPenalty *int `yaml:"red_flag_penalty"`
	Keyword        *int `yaml:"keyword"`
}

// parseDuration parses s, returning def when s is empty.
func parseDuration(field, s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return d, nil
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Environment variables in the file are expanded first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		Storage:      raw.Storage,
		Notification: raw.Notification,
	}

	if cfg.CycleTimeout, err = parseDuration("cycle_timeout", raw.CycleTimeout, time.Minute); err != nil {
		return nil, err
	}

	for i, rs := range raw.Sources {
		sc := SourceConfig{
			Kind:        model.Source(rs.Kind),
			Enabled:     rs.Enabled,
			Subreddits:  rs.Subreddits,
			Limit:       rs.Limit,
			MaxComments: rs.MaxComments,
			Pages:       rs.Pages,
			Rate:        RateConfig{Capacity: rs.Rate.Capacity, PerSecond: rs.Rate.PerSecond},
		}
		field := fmt.Sprintf("sources[%d]", i)
		if sc.Interval, err = parseDuration(field+".interval", rs.Interval, 5*time.Minute); err != nil {
			return nil, err
		}
		if sc.RediscoverEvery, err = parseDuration(field+".rediscover_every", rs.RediscoverEvery, 24*time.Hour); err != nil {
			return nil, err
		}
		if sc.Rate.Capacity == 0 {
			sc.Rate.Capacity = 5
		}
		if sc.Rate.PerSecond == 0 {
			sc.Rate.PerSecond = 1
		}
		cfg.Sources = append(cfg.Sources, sc)
	}

	cfg.Filters.Keywords = raw.Filters.Keywords
	if cfg.Filters.MaxAge, err = parseDuration("filters.max_age", raw.Filters.MaxAge, 72*time.Hour); err != nil {
		return nil, err
	}

	cfg.Retry.MaxAttempts = raw.Retry.MaxAttempts
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	cfg.Retry.JitterFraction = raw.Retry.JitterFraction
	if cfg.Retry.BaseDelay, err = parseDuration("retry.base_delay", raw.Retry.BaseDelay, 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.Retry.MaxDelay, err = parseDuration("retry.max_delay", raw.Retry.MaxDelay, time.Minute); err != nil {
		return nil, err
	}

	if cfg.Health.Staleness, err = parseDuration("health.staleness", raw.Health.Staleness, 30*time.Minute); err != nil {
		return nil, err
	}

	cfg.Dedup.Backend = raw.Dedup.Backend
	if cfg.Dedup.Backend == "" {
		cfg.Dedup.Backend = "memory"
	}
	cfg.Dedup.RedisAddr = raw.Dedup.RedisAddr
	if cfg.Dedup.TTL, err = parseDuration("dedup.ttl", raw.Dedup.TTL, 7*24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "jobscout.db"
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "log"
	}

	cfg.Enrichment.Weights = weightsFrom(raw.Enrichment.Weights)
	cfg.Enrichment.Skills = raw.Enrichment.Skills
	cfg.Enrichment.RedFlags = raw.Enrichment.RedFlags

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// weightsFrom overlays the configured weights on the defaults; absent
// fields keep their default value so a partial weights block works.
func weightsFrom(raw rawWeights) enrich.Weights {
	w := enrich.DefaultWeights
	if raw.Salary != nil {
		w.Salary = *raw.Salary
	}
	if raw.Remote != nil {
		w.Remote = *raw.Remote
	}
	if raw.Seniority != nil {
		w.Seniority = *raw.Seniority
	}
	if raw.RedFlagPenalty != nil {
		w.RedFlagPenalty = *raw.RedFlagPenalty
	}
	if raw.Keyword != nil {
		w.Keyword = *raw.Keyword
	}
	return w
}

func validate(cfg *Config) error {
	enabled := 0
	for i, sc := range cfg.Sources {
		if !sc.Enabled {
			continue
		}
		enabled++
		field := fmt.Sprintf("sources[%d]", i)
		switch sc.Kind {
		case model.SourceReddit:
			if len(sc.Subreddits) == 0 {
				return fmt.Errorf("%s: at least one subreddit is required", field)
			}
		case model.SourceHackerNews:
			// no required fields
		case model.SourceCompanyPage:
			if len(sc.Pages) == 0 {
				return fmt.Errorf("%s: at least one page is required", field)
			}
			for _, p := range sc.Pages {
				if p.Company == "" || p.URL == "" {
					return fmt.Errorf("%s: every page needs a company and a url", field)
				}
			}
		default:
			return fmt.Errorf("%s: unknown source kind %q", field, sc.Kind)
		}
		if sc.Interval <= 0 {
			return fmt.Errorf("%s.interval must be positive, got %v", field, sc.Interval)
		}
		if sc.Rate.Capacity <= 0 || sc.Rate.PerSecond <= 0 {
			return fmt.Errorf("%s.rate: capacity and per_second must be positive", field)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	if cfg.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.JitterFraction < 0 || cfg.Retry.JitterFraction > 1 {
		return fmt.Errorf("retry.jitter_fraction must be in [0, 1], got %v", cfg.Retry.JitterFraction)
	}
	if cfg.Health.Staleness <= 0 {
		return fmt.Errorf("health.staleness must be positive, got %v", cfg.Health.Staleness)
	}

	switch cfg.Dedup.Backend {
	case "memory":
	case "redis":
		if cfg.Dedup.RedisAddr == "" {
			return fmt.Errorf("dedup.redis_addr is required when backend is \"redis\"")
		}
	default:
		return fmt.Errorf("dedup.backend must be \"memory\" or \"redis\", got %q", cfg.Dedup.Backend)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	// A negative weight would invert the priority ordering its input is
	// supposed to raise.
	for _, w := range []struct {
		name  string
		value int
	}{
		{"salary", cfg.Enrichment.Weights.Salary},
		{"remote", cfg.Enrichment.Weights.Remote},
		{"seniority", cfg.Enrichment.Weights.Seniority},
		{"red_flag_penalty", cfg.Enrichment.Weights.RedFlagPenalty},
		{"keyword", cfg.Enrichment.Weights.Keyword},
	} {
		if w.value < 0 {
			return fmt.Errorf("enrichment.weights.%s must be non-negative, got %d", w.name, w.value)
		}
	}
	for i, s := range cfg.Enrichment.Skills {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("enrichment.skills[%d] must not be empty", i)
		}
	}
	for tag, phrases := range cfg.Enrichment.RedFlags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("enrichment.red_flags contains an empty category name")
		}
		for i, phrase := range phrases {
			if strings.TrimSpace(phrase) == "" {
				return fmt.Errorf("enrichment.red_flags.%s[%d] must not be empty", tag, i)
			}
		}
	}

	return nil
}

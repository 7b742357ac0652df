// Package scheduler runs each source's ingestion loop on its own interval.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"jobscout/internal/ingest"
)

// Entry pairs an ingestor with its polling interval.
type Entry struct {
	Ingestor *ingest.Ingestor
	Interval time.Duration
}

// Scheduler owns the main loop: one goroutine per source, each running an
// immediate cycle and then ticking on its own interval. Failed cycles are
// logged and the loop keeps going; health tracking decides whether a source
// is in trouble.
type Scheduler struct {
	entries []Entry
	logger  *slog.Logger
}

// NewScheduler creates a scheduler over the given source entries.
func NewScheduler(entries []Entry, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		entries: entries,
		logger:  logger,
	}
}

// Run starts every source loop and blocks until ctx is cancelled, then
// waits for in-flight cycles to finish. Returns nil on graceful shutdown.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "sources", len(s.entries))

	var wg sync.WaitGroup
	for _, e := range s.entries {
		wg.Add(1)
		go func(e Entry) {
			defer wg.Done()
			s.runSource(ctx, e)
		}(e)
	}
	wg.Wait()

	s.logger.Info("scheduler stopped")
	return nil
}

// runSource runs one immediate cycle, then ticks on the entry's interval
// until ctx is cancelled.
func (s *Scheduler) runSource(ctx context.Context, e Entry) {
	source := e.Ingestor.Source()
	s.logger.Info("source loop started", "source", source, "interval", e.Interval.String())

	s.runCycle(ctx, e)

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("source loop stopped", "source", source)
			return
		case <-ticker.C:
			s.runCycle(ctx, e)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context, e Entry) {
	if ctx.Err() != nil {
		return
	}
	if _, err := e.Ingestor.RunCycle(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("cycle failed", "source", e.Ingestor.Source(), "error", err)
	}
}

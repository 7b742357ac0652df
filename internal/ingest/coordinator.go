// Package ingest runs the poll, filter, dedup, enrich, persist cycle for a
// single source.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"jobscout/internal/enrich"
	"jobscout/internal/filter"
	"jobscout/internal/health"
	"jobscout/internal/model"
	"jobscout/internal/ratelimit"
)

// CycleStats summarizes one ingestion cycle for a source.
type CycleStats struct {
	Source     model.Source
	Fetched    int // raw postings the poller returned
	New        int // persisted and emitted
	Duplicates int // already cached or stored
	Skipped    int // failed the age or keyword filter
	Failed     int // enrichment or persistence error
}

// Options wires one Ingestor. Poller is typically a retry.Poller wrapping
// the concrete source. HealthStore may be nil when health snapshots are not
// persisted (the one-shot check command).
type Options struct {
	Poller       model.Poller
	Limiter      *ratelimit.SourceLimiter
	Health       *health.Tracker
	Cache        model.SeenCache
	Store        model.PostingStore
	HealthStore  model.HealthStore
	Pipeline     *enrich.Pipeline
	Keywords     *filter.KeywordFilter
	Notifier     model.Notifier
	MaxAge       time.Duration // drop postings created longer ago; zero disables
	CycleTimeout time.Duration
	Logger       *slog.Logger
}

// Ingestor drives the ingestion cycle for one source. It owns the source's
// marker; RunCycle is meant to be called from a single goroutine.
type Ingestor struct {
	opts   Options
	source model.Source
	marker model.Marker
	logger *slog.Logger
}

// New creates an ingestor with an empty marker (first poll fetches from the
// source's default window).
func New(opts Options) *Ingestor {
	source := opts.Poller.Source()
	return &Ingestor{
		opts:   opts,
		source: source,
		logger: opts.Logger.With("source", source),
	}
}

// Source returns the source this ingestor polls.
func (in *Ingestor) Source() model.Source {
	return in.source
}

// RunCycle executes one full cycle: wait for a rate-limit token, poll the
// source, then filter, dedup, enrich, persist and emit each posting. A
// failure on one posting never aborts the rest of the batch; a poll failure
// ends the cycle with the marker unchanged.
func (in *Ingestor) RunCycle(ctx context.Context) (CycleStats, error) {
	stats := CycleStats{Source: in.source}

	if err := in.opts.Limiter.Wait(ctx, in.source); err != nil {
		return stats, err
	}

	pollCtx := ctx
	if in.opts.CycleTimeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, in.opts.CycleTimeout)
		defer cancel()
	}

	postings, next, err := in.opts.Poller.Poll(pollCtx, in.marker)
	if err != nil {
		if ctx.Err() == nil {
			in.opts.Health.RecordFailure(in.source, !model.IsTransient(err))
			in.persistHealth(ctx)
		}
		return stats, err
	}
	in.opts.Health.RecordSuccess(in.source)
	in.marker = next
	stats.Fetched = len(postings)

	for _, raw := range postings {
		in.processPosting(ctx, raw, &stats)
	}

	in.persistHealth(ctx)
	in.logger.Info("cycle complete",
		"fetched", stats.Fetched,
		"new", stats.New,
		"duplicates", stats.Duplicates,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats, nil
}

func (in *Ingestor) processPosting(ctx context.Context, raw model.RawPosting, stats *CycleStats) {
	if in.opts.MaxAge > 0 && time.Since(raw.CreatedAt) > in.opts.MaxAge {
		stats.Skipped++
		return
	}
	if !in.opts.Keywords.Match(raw) {
		stats.Skipped++
		return
	}

	// Fast path first, then the authoritative store check.
	if in.opts.Cache.Seen(ctx, raw.URL) {
		stats.Duplicates++
		return
	}
	exists, err := in.opts.Store.Exists(ctx, raw.URL)
	if err != nil {
		in.logger.Warn("store lookup failed", "url", raw.URL, "error", err)
		stats.Failed++
		return
	}
	if exists {
		in.opts.Cache.Mark(ctx, raw.URL)
		stats.Duplicates++
		return
	}

	enriched, err := in.opts.Pipeline.Enrich(raw, in.opts.Keywords.Count(raw.Title, raw.Body))
	if err != nil {
		in.logger.Warn("enrichment failed", "url", raw.URL, "error", err)
		stats.Failed++
		return
	}

	if err := in.opts.Store.Insert(ctx, enriched); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			// Raced with another writer; the unique constraint wins.
			in.opts.Cache.Mark(ctx, raw.URL)
			stats.Duplicates++
			return
		}
		in.logger.Error("persist failed", "url", raw.URL, "error", err)
		stats.Failed++
		return
	}
	in.opts.Cache.Mark(ctx, raw.URL)
	stats.New++

	if in.opts.Notifier != nil {
		// Delivery is best effort; the posting is already persisted.
		if err := in.opts.Notifier.Notify(ctx, enriched); err != nil {
			in.logger.Warn("notification failed", "url", raw.URL, "error", err)
		}
	}
}

// persistHealth writes the source's current health snapshot so external
// monitors can read it from the store.
func (in *Ingestor) persistHealth(ctx context.Context) {
	if in.opts.HealthStore == nil {
		return
	}
	h, ok := in.opts.Health.Get(in.source)
	if !ok {
		return
	}
	if err := in.opts.HealthStore.UpsertHealth(ctx, h); err != nil {
		in.logger.Warn("health snapshot write failed", "error", err)
	}
}

// Package health tracks per-source poll outcomes and staleness.
package health

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"jobscout/internal/model"
)

// AlertFunc is invoked exactly once per transition into Down.
type AlertFunc func(model.SourceHealth)

// Tracker records one outcome per poll attempt per source and derives a
// Healthy/Degraded/Down status. It only informs and alerts; it never halts
// polling on its own.
type Tracker struct {
	mu        sync.Mutex
	staleness time.Duration
	alert     AlertFunc
	logger    *slog.Logger
	now       func() time.Time
	states    map[model.Source]*sourceState
}

type sourceState struct {
	health   model.SourceHealth
	baseline time.Time // first attempt, staleness reference until a success
}

// NewTracker creates a tracker. A source is Down once the gap since its
// last success exceeds staleness. alert may be nil.
func NewTracker(staleness time.Duration, alert AlertFunc, logger *slog.Logger) *Tracker {
	return &Tracker{
		staleness: staleness,
		alert:     alert,
		logger:    logger,
		now:       time.Now,
		states:    make(map[model.Source]*sourceState),
	}
}

func (t *Tracker) state(source model.Source) *sourceState {
	s, ok := t.states[source]
	if !ok {
		s = &sourceState{health: model.SourceHealth{Source: source, Status: model.StatusHealthy}}
		t.states[source] = s
	}
	return s
}

// RecordSuccess resets the failure count and marks the source Healthy.
func (t *Tracker) RecordSuccess(source model.Source) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	s := t.state(source)
	recovered := s.health.Status != model.StatusHealthy
	s.health.LastAttemptAt = now
	s.health.LastSuccessAt = now
	s.health.ConsecutiveFailures = 0
	s.health.Status = model.StatusHealthy
	if recovered {
		t.logger.Info("source recovered", "source", source)
	}
}

// RecordFailure increments the failure count and downgrades the status.
// A permanent failure marks the source Down immediately; otherwise Down is
// reached only when the gap since the last success exceeds the staleness
// threshold. The alert fires once per transition into Down.
func (t *Tracker) RecordFailure(source model.Source, permanent bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	s := t.state(source)
	if s.baseline.IsZero() {
		s.baseline = now
	}
	s.health.LastAttemptAt = now
	s.health.ConsecutiveFailures++

	since := s.health.LastSuccessAt
	if since.IsZero() {
		since = s.baseline
	}

	next := model.StatusDegraded
	if permanent || now.Sub(since) > t.staleness {
		next = model.StatusDown
	}

	wasDown := s.health.Status == model.StatusDown
	s.health.Status = next

	if next == model.StatusDown && !wasDown {
		t.logger.Error("source marked down",
			"source", source,
			"consecutive_failures", s.health.ConsecutiveFailures,
			"last_success", s.health.LastSuccessAt,
		)
		if t.alert != nil {
			t.alert(s.health)
		}
	}
}

// Get returns the snapshot for one source, false when it was never recorded.
func (t *Tracker) Get(source model.Source) (model.SourceHealth, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[source]
	if !ok {
		return model.SourceHealth{}, false
	}
	return s.health, true
}

// Snapshot returns a copy of every source's health, sorted by source name.
func (t *Tracker) Snapshot() []model.SourceHealth {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.SourceHealth, 0, len(t.states))
	for _, s := range t.states {
		out = append(out, s.health)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

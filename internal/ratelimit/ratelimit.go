package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"jobscout/internal/model"
)

// SourceLimiter is a per-source token bucket: capacity C tokens refilled at
// R tokens/second. Each source gets its own bucket so a slow remote never
// starves the others.
type SourceLimiter struct {
	mu      sync.Mutex
	buckets map[model.Source]*rate.Limiter
}

// NewSourceLimiter creates a limiter with no registered sources.
func NewSourceLimiter() *SourceLimiter {
	return &SourceLimiter{
		buckets: make(map[model.Source]*rate.Limiter),
	}
}

// Register creates the bucket for a source. Capacity is the burst size,
// perSecond the steady refill rate.
func (l *SourceLimiter) Register(source model.Source, capacity int, perSecond float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets[source] = rate.NewLimiter(rate.Limit(perSecond), capacity)
}

// TryAcquire consumes one token for the source and returns zero when a
// token was available. Otherwise no token is consumed and the returned
// duration is how long until the next token; the caller suspends for that
// long and retries. An unregistered source is never limited.
func (l *SourceLimiter) TryAcquire(source model.Source) time.Duration {
	l.mu.Lock()
	bucket, ok := l.buckets[source]
	l.mu.Unlock()
	if !ok {
		return 0
	}

	r := bucket.Reserve()
	if !r.OK() {
		// Burst of zero; should be rejected by config validation.
		return time.Second
	}
	if d := r.Delay(); d > 0 {
		r.Cancel() // give the token back, caller will retry
		return d
	}
	return 0
}

// Wait blocks until a token is available for the source, suspending for the
// durations TryAcquire reports. Returns an error only when ctx is cancelled.
func (l *SourceLimiter) Wait(ctx context.Context, source model.Source) error {
	for {
		d := l.TryAcquire(source)
		if d == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limiter wait for %s: %w", source, ctx.Err())
		case <-time.After(d):
		}
	}
}

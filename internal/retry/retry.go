package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"jobscout/internal/model"
)

// Policy controls backoff behavior for a retried remote call.
type Policy struct {
	MaxAttempts    int           // total attempts, including the first
	BaseDelay      time.Duration // delay before the second attempt
	MaxDelay       time.Duration // cap on the pre-jitter delay
	JitterFraction float64       // uniform jitter in ±fraction*delay
}

// Delay returns the pre-jitter backoff after the given attempt (1-based):
// min(MaxDelay, BaseDelay * 2^(attempt-1)).
func (p Policy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// jittered applies ±JitterFraction random jitter to d, floored at zero.
func (p Policy) jittered(d time.Duration) time.Duration {
	if p.JitterFraction <= 0 {
		return d
	}
	jitter := float64(d) * p.JitterFraction
	d = time.Duration(float64(d) + (rand.Float64()*2-1)*jitter)
	if d < 0 {
		return 0
	}
	return d
}

// Poller is a decorator that retries transient source failures with
// exponential backoff and jitter before delegating to the wrapped poller.
type Poller struct {
	inner  model.Poller
	policy Policy
	logger *slog.Logger
}

// NewPoller wraps a poller with retry logic.
func NewPoller(inner model.Poller, policy Policy, logger *slog.Logger) *Poller {
	return &Poller{
		inner:  inner,
		policy: policy,
		logger: logger,
	}
}

func (p *Poller) Source() model.Source {
	return p.inner.Source()
}

// Poll attempts the wrapped poll up to MaxAttempts times. Only transient
// source errors are retried; permanent failures and context cancellation
// propagate immediately. Exhausting the attempts surfaces the last error.
func (p *Poller) Poll(ctx context.Context, since model.Marker) ([]model.RawPosting, model.Marker, error) {
	var lastErr error
	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		postings, next, err := p.inner.Poll(ctx, since)
		if err == nil {
			return postings, next, nil
		}
		if !model.IsTransient(err) {
			return nil, since, err
		}
		lastErr = err
		if attempt == p.policy.MaxAttempts {
			break
		}

		delay := p.policy.jittered(p.policy.Delay(attempt))
		// A remote-supplied Retry-After takes precedence.
		var se *model.SourceError
		if errors.As(err, &se) && se.RetryAfter > 0 {
			delay = se.RetryAfter
		}

		p.logger.Warn("retrying after transient source error",
			"source", p.inner.Source(),
			"attempt", attempt,
			"max_attempts", p.policy.MaxAttempts,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, since, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, since, lastErr
}

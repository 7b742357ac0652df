package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"jobscout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockPoller calls a function on each invocation, tracking call count.
type mockPoller struct {
	calls int
	fn    func(attempt int) ([]model.RawPosting, model.Marker, error)
}

func (m *mockPoller) Source() model.Source { return model.SourceReddit }

func (m *mockPoller) Poll(_ context.Context, _ model.Marker) ([]model.RawPosting, model.Marker, error) {
	m.calls++
	return m.fn(m.calls)
}

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond, MaxDelay: 100 * time.Millisecond}
}

func TestDelay_DoublesAndCaps(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 350 * time.Millisecond}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 350 * time.Millisecond}, // 400ms capped
		{4, 350 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := p.Delay(tc.attempt); got != tc.want {
			t.Errorf("Delay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestPoll_SucceedsOnFirstAttempt(t *testing.T) {
	postings := []model.RawPosting{{URL: "https://example.com/1", Title: "Engineer"}}
	mock := &mockPoller{fn: func(_ int) ([]model.RawPosting, model.Marker, error) {
		return postings, "m1", nil
	}}

	rp := NewPoller(mock, fastPolicy(), discardLogger())
	got, marker, err := rp.Poll(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || marker != "m1" {
		t.Fatalf("unexpected result: %v, marker %q", got, marker)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestPoll_RetriesTransient_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockPoller{fn: func(attempt int) ([]model.RawPosting, model.Marker, error) {
		if attempt == 1 {
			return nil, "", model.Transient(model.SourceReddit, errors.New("service unavailable"))
		}
		return []model.RawPosting{{URL: "https://example.com/1"}}, "m1", nil
	}}

	rp := NewPoller(mock, fastPolicy(), discardLogger())
	got, _, err := rp.Poll(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(got))
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestPoll_RetriesClientTimeout(t *testing.T) {
	mock := &mockPoller{fn: func(attempt int) ([]model.RawPosting, model.Marker, error) {
		if attempt == 1 {
			// The shape a slow remote produces: a transient source error
			// whose chain contains context.DeadlineExceeded.
			return nil, "", model.Transient(model.SourceReddit,
				fmt.Errorf("Get \"http://x\": %w", context.DeadlineExceeded))
		}
		return []model.RawPosting{{URL: "https://example.com/1"}}, "m1", nil
	}}

	rp := NewPoller(mock, fastPolicy(), discardLogger())
	if _, _, err := rp.Poll(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 2 {
		t.Fatalf("expected the timeout to be retried, got %d calls", mock.calls)
	}
}

func TestPoll_DoesNotRetryPermanent(t *testing.T) {
	mock := &mockPoller{fn: func(_ int) ([]model.RawPosting, model.Marker, error) {
		return nil, "", model.Permanent(model.SourceReddit, errors.New("not found"))
	}}

	rp := NewPoller(mock, fastPolicy(), discardLogger())
	_, _, err := rp.Poll(context.Background(), "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if model.IsTransient(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestPoll_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := &mockPoller{fn: func(_ int) ([]model.RawPosting, model.Marker, error) {
		return nil, "", model.Transient(model.SourceReddit, errors.New("internal error"))
	}}

	rp := NewPoller(mock, fastPolicy(), discardLogger())
	_, marker, err := rp.Poll(context.Background(), "m0")
	if err == nil {
		t.Fatal("expected error after max attempts, got nil")
	}
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (MaxAttempts), got %d", mock.calls)
	}
	// The marker must not advance on a failed poll.
	if marker != "m0" {
		t.Errorf("marker advanced on failure: %q", marker)
	}
}

func TestPoll_RetryAfterOverridesBackoff(t *testing.T) {
	mock := &mockPoller{fn: func(attempt int) ([]model.RawPosting, model.Marker, error) {
		if attempt == 1 {
			return nil, "", &model.SourceError{
				Source:     model.SourceReddit,
				Transient:  true,
				RetryAfter: 150 * time.Millisecond,
				Err:        errors.New("rate limited"),
			}
		}
		return nil, "m1", nil
	}}

	// Base delay far below the Retry-After hint.
	policy := Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Second}
	rp := NewPoller(mock, policy, discardLogger())

	start := time.Now()
	if _, _, err := rp.Poll(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Errorf("expected Retry-After to govern the delay, waited only %v", elapsed)
	}
}

func TestPoll_RespectsContextCancellation(t *testing.T) {
	mock := &mockPoller{fn: func(_ int) ([]model.RawPosting, model.Marker, error) {
		return nil, "", model.Transient(model.SourceReddit, errors.New("internal error"))
	}}

	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the backoff sleep is interrupted.
	cancel()

	policy := Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: time.Second}
	rp := NewPoller(mock, policy, discardLogger())
	_, _, err := rp.Poll(ctx, "")
	if err == nil {
		t.Fatal("expected error from context cancellation, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// Should have made the initial call, then been cancelled during backoff.
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

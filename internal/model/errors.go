package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrDuplicate is returned by PostingStore.Insert when the URL is already
// stored. Expected and non-fatal: the coordinator counts it as a duplicate.
var ErrDuplicate = errors.New("posting already stored")

// SourceError wraps a failed remote call so retry and health logic can
// inspect it. Transient errors (network, timeout, remote rate limit) are
// retried; permanent ones (auth, malformed feed) surface immediately.
type SourceError struct {
	Source     Source
	Transient  bool
	StatusCode int           // HTTP status when applicable, zero otherwise
	RetryAfter time.Duration // from a Retry-After header, zero if absent
	Err        error
}

func (e *SourceError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s source error (HTTP %d): %v", e.Source, kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s source error: %v", e.Source, kind, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable source failure.
func Transient(source Source, err error) *SourceError {
	return &SourceError{Source: source, Transient: true, Err: err}
}

// Permanent wraps err as a non-retryable source failure.
func Permanent(source Source, err error) *SourceError {
	return &SourceError{Source: source, Transient: false, Err: err}
}

// IsTransient reports whether err carries a transient SourceError. The
// classification made where the error was wrapped wins: an HTTP client
// timeout surfaces context.DeadlineExceeded inside a transient SourceError
// and must stay retryable. Callers that cancelled their own context check
// ctx.Err() themselves; a bare context error is never transient.
func IsTransient(err error) bool {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Transient
	}
	return false
}

// EnrichmentError marks a posting whose text could not be enriched. Caught
// per posting: the posting is skipped and the cycle continues.
type EnrichmentError struct {
	URL    string
	Reason string
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enriching %s: %s", e.URL, e.Reason)
}

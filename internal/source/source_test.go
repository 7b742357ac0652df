package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobscout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status     int
		retryAfter string
		wantErr    bool
		transient  bool
		wait       time.Duration
	}{
		{200, "", false, false, 0},
		{429, "30", true, true, 30 * time.Second},
		{429, "", true, true, 0},
		{500, "", true, true, 0},
		{503, "", true, true, 0},
		{404, "", true, false, 0},
		{403, "", true, false, 0},
	}
	for _, tc := range cases {
		resp := &http.Response{StatusCode: tc.status, Header: http.Header{}}
		if tc.retryAfter != "" {
			resp.Header.Set("Retry-After", tc.retryAfter)
		}

		err := classifyStatus(model.SourceReddit, resp)
		if (err != nil) != tc.wantErr {
			t.Errorf("status %d: err = %v, wantErr %v", tc.status, err, tc.wantErr)
			continue
		}
		if err == nil {
			continue
		}
		var se *model.SourceError
		if !errors.As(err, &se) {
			t.Errorf("status %d: expected SourceError, got %T", tc.status, err)
			continue
		}
		if se.Transient != tc.transient {
			t.Errorf("status %d: transient = %v, want %v", tc.status, se.Transient, tc.transient)
		}
		if se.RetryAfter != tc.wait {
			t.Errorf("status %d: retry-after = %v, want %v", tc.status, se.RetryAfter, tc.wait)
		}
	}
}

func TestGetBody_ClientTimeoutIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Timeout: 50 * time.Millisecond}
	_, err := getBody(context.Background(), client, model.SourceReddit, srv.URL)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	// The slow remote must stay retryable even though the underlying error
	// chain contains context.DeadlineExceeded.
	if !model.IsTransient(err) {
		t.Errorf("IsTransient(%v) = false, want true", err)
	}
}

func TestStripHTML(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"<p>Hello<p>World", "Hello World"},
		{"<a href=\"x\">link</a> text", "link text"},
		{"a &amp; b &gt; c", "a & b > c"},
		{"  spaced\n\nout  ", "spaced out"},
	}
	for _, tc := range cases {
		if got := stripHTML(tc.in); got != tc.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// Package source implements the per-source pollers: a subreddit listing, a
// HackerNews hiring-thread walker, and a company page snapshot differ. Each
// normalizes its feed into model.RawPosting.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jobscout/internal/model"
)

// classifyStatus maps an HTTP response to the source error taxonomy:
// 429 and 5xx are transient (the remote may recover), everything else in
// 4xx is permanent and needs operator attention.
func classifyStatus(source model.Source, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	se := &model.SourceError{
		Source:     source,
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		se.Transient = true
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			se.RetryAfter = time.Duration(secs) * time.Second
		}
	case resp.StatusCode >= 500:
		se.Transient = true
	}
	return se
}

// getJSON fetches url and decodes the body into v, wrapping failures as
// SourceErrors. A body that does not decode is a permanent failure: the
// feed shape changed.
func getJSON(ctx context.Context, client *http.Client, source model.Source, url string, v any) error {
	body, err := getBody(ctx, client, source, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return model.Permanent(source, fmt.Errorf("decoding %s: %w", url, err))
	}
	return nil
}

// getBody fetches url and returns the raw body.
func getBody(ctx context.Context, client *http.Client, source model.Source, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, model.Permanent(source, err)
	}
	req.Header.Set("User-Agent", "jobscout/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, model.Transient(source, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(source, resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.Transient(source, err)
	}
	return body, nil
}

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// stripHTML flattens markup into plain text.
func stripHTML(s string) string {
	s = strings.ReplaceAll(s, "<p>", "\n")
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&#x27;", "'")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&lt;", "<")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobscout/internal/model"
)

const (
	defaultHNSearchBaseURL = "https://hn.algolia.com/api/v1"
	defaultHNItemBaseURL   = "https://hacker-news.firebaseio.com/v0"
)

type hnSearchResponse struct {
	Hits []struct {
		ObjectID string `json:"objectID"`
		Title    string `json:"title"`
	} `json:"hits"`
}

type hnItem struct {
	ID      int    `json:"id"`
	By      string `json:"by"`
	Text    string `json:"text"`
	Time    int64  `json:"time"`
	Kids    []int  `json:"kids"`
	Deleted bool   `json:"deleted"`
	Dead    bool   `json:"dead"`
}

// HackerNewsPoller walks the most recent "Who is hiring?" thread, treating
// top-level replies as candidate postings. The thread itself is
// re-discovered on a longer interval than the replies are polled.
type HackerNewsPoller struct {
	client          *http.Client
	logger          *slog.Logger
	searchBaseURL   string
	itemBaseURL     string
	rediscoverEvery time.Duration
	maxComments     int

	threadID      int
	threadFoundAt time.Time
}

// NewHackerNewsPoller creates the thread-discovery poller. rediscoverEvery
// bounds how often the thread index is searched again; maxComments caps the
// replies fetched per poll.
func NewHackerNewsPoller(rediscoverEvery time.Duration, maxComments int, client *http.Client, logger *slog.Logger) *HackerNewsPoller {
	if maxComments <= 0 {
		maxComments = 200
	}
	return &HackerNewsPoller{
		client:          client,
		logger:          logger,
		searchBaseURL:   defaultHNSearchBaseURL,
		itemBaseURL:     defaultHNItemBaseURL,
		rediscoverEvery: rediscoverEvery,
		maxComments:     maxComments,
	}
}

func (p *HackerNewsPoller) Source() model.Source {
	return model.SourceHackerNews
}

// Poll fetches top-level replies newer than the marker (the highest comment
// ID ingested so far) from the current hiring thread.
func (p *HackerNewsPoller) Poll(ctx context.Context, since model.Marker) ([]model.RawPosting, model.Marker, error) {
	if p.threadID == 0 || time.Since(p.threadFoundAt) > p.rediscoverEvery {
		if err := p.discoverThread(ctx); err != nil {
			return nil, since, err
		}
	}

	var thread hnItem
	threadURL := fmt.Sprintf("%s/item/%d.json", p.itemBaseURL, p.threadID)
	if err := getJSON(ctx, p.client, model.SourceHackerNews, threadURL, &thread); err != nil {
		return nil, since, err
	}

	sinceID := 0
	if since != "" {
		sinceID, _ = strconv.Atoi(string(since))
	}
	maxID := sinceID

	now := time.Now().UTC()
	var postings []model.RawPosting
	fetched := 0
	retryFrom := 0
	for _, kid := range thread.Kids {
		if kid <= sinceID {
			continue
		}
		if fetched >= p.maxComments {
			break
		}
		fetched++

		var comment hnItem
		itemURL := fmt.Sprintf("%s/item/%d.json", p.itemBaseURL, kid)
		if err := getJSON(ctx, p.client, model.SourceHackerNews, itemURL, &comment); err != nil {
			// One bad comment fetch should not fail the whole poll. A
			// transient failure holds the marker back so the comment is
			// refetched next poll; permanent ones never will succeed.
			p.logger.Warn("skipping hn comment", "id", kid, "error", err)
			if model.IsTransient(err) && (retryFrom == 0 || kid < retryFrom) {
				retryFrom = kid
			}
			continue
		}
		if kid > maxID {
			maxID = kid
		}
		if comment.Deleted || comment.Dead || comment.Text == "" {
			continue
		}

		text := stripHTML(comment.Text)
		if len(text) < 50 {
			continue // too short to be a job posting
		}

		postings = append(postings, model.RawPosting{
			Source:       model.SourceHackerNews,
			SourceID:     strconv.Itoa(comment.ID),
			URL:          fmt.Sprintf("https://news.ycombinator.com/item?id=%d", comment.ID),
			Title:        firstSentence(text),
			Body:         text,
			Author:       comment.By,
			CreatedAt:    time.Unix(comment.Time, 0).UTC(),
			DiscoveredAt: now,
		})
	}

	// Re-emitted siblings above the held-back marker are absorbed by dedup.
	if retryFrom != 0 && maxID >= retryFrom {
		maxID = retryFrom - 1
	}

	p.logger.Debug("hn thread polled",
		"thread", p.threadID,
		"fetched", fetched,
		"postings", len(postings),
	)
	return postings, model.Marker(strconv.Itoa(maxID)), nil
}

// discoverThread locates the most recent qualifying monthly thread through
// the Algolia index.
func (p *HackerNewsPoller) discoverThread(ctx context.Context) error {
	q := url.Values{}
	q.Set("query", "who is hiring")
	q.Set("tags", "story,author_whoishiring")
	q.Set("hitsPerPage", "5")
	searchURL := fmt.Sprintf("%s/search?%s", p.searchBaseURL, q.Encode())

	var resp hnSearchResponse
	if err := getJSON(ctx, p.client, model.SourceHackerNews, searchURL, &resp); err != nil {
		return err
	}

	for _, hit := range resp.Hits {
		if !strings.Contains(strings.ToLower(hit.Title), "who is hiring") {
			continue
		}
		id, err := strconv.Atoi(hit.ObjectID)
		if err != nil {
			continue
		}
		if id != p.threadID {
			p.logger.Info("found hiring thread", "title", hit.Title, "id", id)
		}
		p.threadID = id
		p.threadFoundAt = time.Now()
		return nil
	}
	return model.Transient(model.SourceHackerNews, fmt.Errorf("no hiring thread in index"))
}

// firstSentence trims text to its first sentence, capped at 120 runes, for
// use as a posting title.
func firstSentence(text string) string {
	if i := strings.IndexAny(text, ".|\n"); i > 10 {
		text = text[:i]
	}
	runes := []rune(text)
	if len(runes) > 120 {
		return strings.TrimSpace(string(runes[:120]))
	}
	return strings.TrimSpace(text)
}

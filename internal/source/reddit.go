package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jobscout/internal/filter"
	"jobscout/internal/model"
)

const defaultRedditBaseURL = "https://www.reddit.com"

// redditListing is the shape of a subreddit /new.json response.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"` // fullname, e.g. t3_abc123
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Author     string  `json:"author"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

// RedditPoller pulls recent posts from one or more subreddits and keeps the
// ones that match the configured keyword set. "For hire" posts and posts
// past the age ceiling are dropped at the source.
type RedditPoller struct {
	subreddits []string
	keywords   *filter.KeywordFilter
	maxAge     time.Duration
	limit      int
	client     *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewRedditPoller creates a poller over the given subreddits.
func NewRedditPoller(subreddits []string, keywords *filter.KeywordFilter, maxAge time.Duration, limit int, client *http.Client, logger *slog.Logger) *RedditPoller {
	if limit <= 0 {
		limit = 100
	}
	return &RedditPoller{
		subreddits: subreddits,
		keywords:   keywords,
		maxAge:     maxAge,
		limit:      limit,
		client:     client,
		logger:     logger,
		baseURL:    defaultRedditBaseURL,
	}
}

func (p *RedditPoller) Source() model.Source {
	return model.SourceReddit
}

// Poll fetches the newest listing entries since the marker (a Reddit
// fullname) and normalizes the qualifying ones. The new marker is the
// fullname of the newest entry seen.
func (p *RedditPoller) Poll(ctx context.Context, since model.Marker) ([]model.RawPosting, model.Marker, error) {
	url := fmt.Sprintf("%s/r/%s/new.json?limit=%d", p.baseURL, strings.Join(p.subreddits, "+"), p.limit)
	if since != "" {
		url += "&before=" + string(since)
	}

	var listing redditListing
	if err := getJSON(ctx, p.client, model.SourceReddit, url, &listing); err != nil {
		return nil, since, err
	}

	now := time.Now()
	cutoff := now.Add(-p.maxAge)
	next := since

	var postings []model.RawPosting
	for i, child := range listing.Data.Children {
		post := child.Data
		if i == 0 {
			next = model.Marker(post.Name)
		}

		createdAt := time.Unix(int64(post.CreatedUTC), 0).UTC()
		if p.maxAge > 0 && createdAt.Before(cutoff) {
			continue
		}
		// People offering services, not hiring.
		if strings.Contains(strings.ToLower(post.Title), "for hire") {
			continue
		}

		raw := model.RawPosting{
			Source:       model.SourceReddit,
			SourceID:     post.ID,
			URL:          p.baseURL + post.Permalink,
			Title:        post.Title,
			Body:         post.SelfText,
			Author:       post.Author,
			CreatedAt:    createdAt,
			DiscoveredAt: now.UTC(),
		}
		if !p.keywords.Match(raw) {
			continue
		}
		postings = append(postings, raw)
	}

	p.logger.Debug("reddit listing polled",
		"fetched", len(listing.Data.Children),
		"matched", len(postings),
	)
	return postings, next, nil
}

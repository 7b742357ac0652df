package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jobscout/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier sends posting alerts to a Slack channel via Incoming
// Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each posting to Slack via
// webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends the posting as one Slack message using Block Kit. A 429 from
// Slack gets a single Retry-After wait before giving up.
func (s *SlackNotifier) Notify(ctx context.Context, p model.EnrichedPosting) error {
	body, err := json.Marshal(buildPayload(p))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, wait, err := s.post(ctx, body)
	if err != nil {
		return err
	}
	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "wait", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if status, _, err = s.post(ctx, body); err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
	}
	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Info("slack message sent", "source", p.Source, "title", p.Title)
	return nil
}

// post sends the payload once. On a 429 it also returns the wait Slack
// asked for (defaulting to one second when the header is absent).
func (s *SlackNotifier) post(ctx context.Context, body []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	wait := time.Second
	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, _ := strconv.Atoi(resp.Header.Get("Retry-After")); secs > 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	return resp.StatusCode, wait, nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatSalary(sal *model.Salary) string {
	if sal == nil {
		return "Not stated"
	}
	suffix := ""
	if sal.Period == model.PeriodHourly {
		suffix = "/hour"
	} else if sal.Period == model.PeriodAnnual {
		suffix = "/year"
	}
	switch {
	case sal.Min == 0:
		return fmt.Sprintf("Up to %d %s%s", sal.Max, sal.Currency, suffix)
	case sal.Max == 0:
		return fmt.Sprintf("From %d %s%s", sal.Min, sal.Currency, suffix)
	case sal.Min == sal.Max:
		return fmt.Sprintf("%d %s%s", sal.Min, sal.Currency, suffix)
	default:
		return fmt.Sprintf("%d-%d %s%s", sal.Min, sal.Max, sal.Currency, suffix)
	}
}

func buildPayload(p model.EnrichedPosting) slackPayload {
	location := p.Location
	if p.IsRemote {
		location = "Remote"
		if p.Location != "" {
			location = p.Location + " (remote)"
		}
	}
	if location == "" {
		location = "Not stated"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "🚀 " + p.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Salary:*\n" + formatSalary(p.Salary)},
				{Type: "mrkdwn", Text: "*Location:*\n" + location},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Level:*\n" + capitalize(string(p.Experience))},
				{Type: "mrkdwn", Text: "*Source:*\n" + capitalize(string(p.Source))},
			},
		},
	}

	detail := fmt.Sprintf("*Priority:* %d   *Sentiment:* %.2f", p.PriorityScore, p.SentimentScore)
	if len(p.Skills) > 0 {
		detail += "\n*Stack:* " + strings.Join(p.Skills, ", ")
	}
	if len(p.RedFlags) > 0 {
		detail += "\n:warning: *Red flags:* " + strings.Join(p.RedFlags, ", ")
	}
	blocks = append(blocks, slackBlock{
		Type: "section",
		Text: &slackText{Type: "mrkdwn", Text: detail},
	})

	blocks = append(blocks,
		slackBlock{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "View Posting"},
					URL:   p.URL,
					Style: "primary",
				},
			},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Blocks: blocks}
}

package source

import (
	"context"
	"crypto/md5"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"jobscout/internal/model"
)

// Heuristics for title-shaped entries on a careers page: role headings and
// elements tagged as job titles or positions.
var pageEntryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<h[23][^>]*>([^<]+(?:engineer|developer|designer|manager|analyst|scientist|architect)[^<]*)</h[23]>`),
	regexp.MustCompile(`(?i)job-title["'][^>]*>([^<]+)<`),
	regexp.MustCompile(`(?i)position["'][^>]*>([^<]+)<`),
}

var (
	scriptPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	stylePattern  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
)

// CompanyPagePoller snapshots one company's listing page and emits entries
// that were absent from the previous snapshot. The marker is the page
// content hash, so an unchanged page costs no extraction work.
type CompanyPagePoller struct {
	company string
	pageURL string
	client  *http.Client
	logger  *slog.Logger

	prevEntries map[string]bool // titles seen in the previous snapshot
}

// NewCompanyPagePoller monitors the given career page for company.
func NewCompanyPagePoller(company, pageURL string, client *http.Client, logger *slog.Logger) *CompanyPagePoller {
	return &CompanyPagePoller{
		company:     company,
		pageURL:     pageURL,
		client:      client,
		logger:      logger,
		prevEntries: make(map[string]bool),
	}
}

func (p *CompanyPagePoller) Source() model.Source {
	return model.SourceCompanyPage
}

// Poll fetches the page, short-circuits when its hash matches the marker,
// and otherwise diffs the extracted entries against the previous snapshot.
func (p *CompanyPagePoller) Poll(ctx context.Context, since model.Marker) ([]model.RawPosting, model.Marker, error) {
	body, err := getBody(ctx, p.client, model.SourceCompanyPage, p.pageURL)
	if err != nil {
		return nil, since, err
	}

	pageHash := fmt.Sprintf("%x", md5.Sum(body))
	if model.Marker(pageHash) == since {
		p.logger.Debug("company page unchanged", "company", p.company)
		return nil, since, nil
	}

	titles := p.extractEntries(string(body))
	now := time.Now().UTC()

	var postings []model.RawPosting
	entries := make(map[string]bool, len(titles))
	for _, title := range titles {
		entries[title] = true
		if p.prevEntries[title] {
			continue
		}
		entryID := fmt.Sprintf("%x", md5.Sum([]byte(p.company+":"+title)))[:12]
		postings = append(postings, model.RawPosting{
			Source:       model.SourceCompanyPage,
			SourceID:     entryID,
			URL:          p.pageURL + "#" + entryID,
			Title:        title,
			Body:         fmt.Sprintf("%s is hiring: %s", p.company, title),
			Author:       p.company,
			CreatedAt:    now,
			DiscoveredAt: now,
		})
	}
	p.prevEntries = entries

	p.logger.Debug("company page polled",
		"company", p.company,
		"entries", len(titles),
		"new", len(postings),
	)
	return postings, model.Marker(pageHash), nil
}

// extractEntries returns the unique, cleaned entry titles found on the page.
func (p *CompanyPagePoller) extractEntries(html string) []string {
	html = scriptPattern.ReplaceAllString(html, "")
	html = stylePattern.ReplaceAllString(html, "")

	seen := make(map[string]bool)
	var titles []string
	for _, pat := range pageEntryPatterns {
		for _, m := range pat.FindAllStringSubmatch(html, -1) {
			title := strings.TrimSpace(stripHTML(m[1]))
			if len(title) < 5 || len(title) > 200 || seen[title] {
				continue
			}
			seen[title] = true
			titles = append(titles, title)
		}
	}
	return titles
}

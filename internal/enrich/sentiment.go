package enrich

import (
	"regexp"
	"sort"
	"strings"
)

// Per-hit weights for the sentiment score, matching the curated vocabulary:
// each distinct red-flag phrase costs more than an indicator nudge.
const (
	redFlagPenalty  = 0.2
	indicatorWeight = 0.1
)

// SentimentAnalyzer scans posting text against a multi-category red-flag
// vocabulary and positive/negative indicator lists, producing category tags
// and a score in [-1, 1].
type SentimentAnalyzer struct {
	categories []flagCategory
}

type flagCategory struct {
	tag      string
	patterns []*regexp.Regexp
}

// NewSentimentAnalyzer builds an analyzer from the category vocabulary.
// A nil map falls back to DefaultRedFlags.
func NewSentimentAnalyzer(flags map[string][]string) *SentimentAnalyzer {
	if flags == nil {
		flags = DefaultRedFlags
	}
	tags := make([]string, 0, len(flags))
	for tag := range flags {
		tags = append(tags, tag)
	}
	sort.Strings(tags) // deterministic category order

	a := &SentimentAnalyzer{}
	for _, tag := range tags {
		a.categories = append(a.categories, flagCategory{
			tag:      tag,
			patterns: compileTerms(flags[tag]),
		})
	}
	return a
}

// Analyze returns the distinct category tags hit and the clamped sentiment
// score. Each matched phrase subtracts redFlagPenalty; positive and
// negative indicators nudge the score by indicatorWeight each.
func (a *SentimentAnalyzer) Analyze(text string) (tags []string, score float64) {
	if text == "" {
		return nil, 0
	}

	lower := strings.ToLower(text)
	hits := 0
	for _, cat := range a.categories {
		matched := false
		for _, pat := range cat.patterns {
			if pat.MatchString(text) {
				hits++
				matched = true
			}
		}
		if matched {
			tags = append(tags, cat.tag)
		}
	}

	for _, ind := range PositiveIndicators {
		if strings.Contains(lower, ind) {
			score += indicatorWeight
		}
	}
	for _, ind := range NegativeIndicators {
		if strings.Contains(lower, ind) {
			score -= indicatorWeight
		}
	}
	score -= float64(hits) * redFlagPenalty

	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return tags, score
}

// Package enrich turns a raw posting into a decision-ready record by
// running deterministic text-analysis stages over its title and body.
package enrich

import (
	"log/slog"
	"strings"

	"jobscout/internal/model"
)

// Pipeline composes the four stages (salary, experience, sentiment,
// extraction) and the final priority computation. The stages are pure and
// order-insensitive; the pipeline is safe for concurrent use.
type Pipeline struct {
	salary     *SalaryParser
	experience *ExperienceParser
	sentiment  *SentimentAnalyzer
	extractor  *Extractor
	weights    Weights
	logger     *slog.Logger
}

// NewPipeline builds a pipeline. Empty skills or nil flags fall back to the
// default vocabularies.
func NewPipeline(weights Weights, skills []string, flags map[string][]string, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		salary:     NewSalaryParser(),
		experience: NewExperienceParser(),
		sentiment:  NewSentimentAnalyzer(flags),
		extractor:  NewExtractor(skills),
		weights:    weights,
		logger:     logger,
	}
}

// Enrich runs every stage over the posting's title and body and returns a
// new EnrichedPosting. keywordMatches is the distinct configured-keyword
// hit count feeding the priority score. Returns an EnrichmentError when
// the posting carries no analyzable text.
func (p *Pipeline) Enrich(raw model.RawPosting, keywordMatches int) (model.EnrichedPosting, error) {
	text := strings.TrimSpace(raw.Title + "\n" + raw.Body)
	if text == "" {
		return model.EnrichedPosting{}, &model.EnrichmentError{URL: raw.URL, Reason: "posting has no text"}
	}

	enriched := model.EnrichedPosting{
		RawPosting:     raw,
		KeywordMatches: keywordMatches,
	}

	enriched.Salary = p.salary.Parse(text)
	enriched.Experience = p.experience.Parse(text)
	enriched.RedFlags, enriched.SentimentScore = p.sentiment.Analyze(text)
	enriched.Skills = p.extractor.Skills(text)
	enriched.Location, enriched.IsRemote = p.extractor.Location(text)
	enriched.PriorityScore = p.weights.Score(enriched)

	p.logger.Debug("enriched posting",
		"url", raw.URL,
		"salary", enriched.Salary != nil,
		"level", enriched.Experience,
		"red_flags", len(enriched.RedFlags),
		"skills", len(enriched.Skills),
		"priority", enriched.PriorityScore,
	)

	return enriched, nil
}

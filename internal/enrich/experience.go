package enrich

import (
	"regexp"

	"jobscout/internal/model"
)

// ExperienceParser classifies posting text into a seniority bucket by
// scoring level-indicative phrases. The highest-scoring bucket wins; ties
// resolve toward the more senior bucket. No signal means Unknown.
type ExperienceParser struct {
	buckets []experienceBucket
}

type experienceBucket struct {
	level    model.ExperienceLevel
	patterns []*regexp.Regexp
}

// NewExperienceParser compiles the default phrase buckets.
func NewExperienceParser() *ExperienceParser {
	return &ExperienceParser{buckets: []experienceBucket{
		{model.LevelJunior, compileTerms(juniorPhrases)},
		{model.LevelMid, compileTerms(midPhrases)},
		{model.LevelSenior, compileTerms(seniorPhrases)},
		{model.LevelLead, compileTerms(leadPhrases)},
	}}
}

// Parse returns the detected level. Each matched phrase scores one point
// for its bucket; on equal scores the more senior bucket is returned.
func (p *ExperienceParser) Parse(text string) model.ExperienceLevel {
	if text == "" {
		return model.LevelUnknown
	}

	best := model.LevelUnknown
	bestScore := 0
	for _, b := range p.buckets {
		score := 0
		for _, pat := range b.patterns {
			if pat.MatchString(text) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		// >= prefers the later bucket; buckets are ordered junior→lead.
		if score >= bestScore {
			best = b.level
			bestScore = score
		}
	}
	return best
}

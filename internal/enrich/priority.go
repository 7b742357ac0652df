package enrich

import "jobscout/internal/model"

// Weights parameterize the priority score. All values are consumed from
// configuration; the formula and its monotonicity are the contract: the
// score never decreases when a salary appears, when the posting is remote,
// when seniority rises, or when a red flag disappears.
type Weights struct {
	Salary         int // added once when any salary was detected
	Remote         int // added when the posting is remote
	Seniority      int // multiplied by the experience level rank
	RedFlagPenalty int // subtracted per red-flag category tag
	Keyword        int // added per distinct configured keyword matched
}

// DefaultWeights are used when the config omits the enrichment weights.
var DefaultWeights = Weights{
	Salary:         25,
	Remote:         15,
	Seniority:      5,
	RedFlagPenalty: 10,
	Keyword:        3,
}

// Score computes the priority of an enriched posting as a pure function of
// its fields.
func (w Weights) Score(p model.EnrichedPosting) int {
	score := 0
	if p.Salary != nil {
		score += w.Salary
	}
	if p.IsRemote {
		score += w.Remote
	}
	score += w.Seniority * p.Experience.Rank()
	score += w.Keyword * p.KeywordMatches
	score -= w.RedFlagPenalty * len(p.RedFlags)
	return score
}

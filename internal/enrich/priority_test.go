package enrich

import (
	"testing"

	"jobscout/internal/model"
)

func basePosting() model.EnrichedPosting {
	return model.EnrichedPosting{
		Experience: model.LevelUnknown,
	}
}

func TestScore_Monotonicity(t *testing.T) {
	w := DefaultWeights

	base := basePosting()
	baseScore := w.Score(base)

	withSalary := base
	withSalary.Salary = &model.Salary{Min: 100000, Max: 100000, Currency: "USD", Period: model.PeriodAnnual}
	if w.Score(withSalary) <= baseScore {
		t.Error("adding a salary must not lower the score")
	}

	remote := base
	remote.IsRemote = true
	if w.Score(remote) <= baseScore {
		t.Error("remote must not lower the score")
	}

	// Score rises with each seniority rank.
	prev := baseScore
	for _, level := range []model.ExperienceLevel{model.LevelJunior, model.LevelMid, model.LevelSenior, model.LevelLead} {
		p := base
		p.Experience = level
		s := w.Score(p)
		if s <= prev {
			t.Errorf("score for %s = %d, want > %d", level, s, prev)
		}
		prev = s
	}

	flagged := base
	flagged.RedFlags = []string{"culture"}
	if w.Score(flagged) >= baseScore {
		t.Error("a red flag must lower the score")
	}

	keywords := base
	keywords.KeywordMatches = 2
	if w.Score(keywords) <= baseScore {
		t.Error("keyword matches must raise the score")
	}
}

func TestScore_DefaultWeightsExample(t *testing.T) {
	p := basePosting()
	p.Salary = &model.Salary{Min: 120000, Max: 150000, Currency: "USD", Period: model.PeriodAnnual}
	p.IsRemote = true
	p.Experience = model.LevelSenior
	p.RedFlags = []string{"culture", "workload"}
	p.KeywordMatches = 3

	// 25 + 15 + 5*3 + 3*3 - 10*2 = 44
	if got := DefaultWeights.Score(p); got != 44 {
		t.Errorf("score = %d, want 44", got)
	}
}

func TestScore_ConfiguredWeights(t *testing.T) {
	w := Weights{Salary: 100, Remote: 0, Seniority: 0, RedFlagPenalty: 0, Keyword: 0}

	p := basePosting()
	p.Salary = &model.Salary{Min: 50000, Max: 50000, Currency: "USD"}
	if got := w.Score(p); got != 100 {
		t.Errorf("score = %d, want 100 (only the salary weight is set)", got)
	}
}

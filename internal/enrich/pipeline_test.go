package enrich

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"jobscout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnrich_AllStages(t *testing.T) {
	p := NewPipeline(DefaultWeights, nil, nil, discardLogger())

	raw := model.RawPosting{
		Source:       model.SourceReddit,
		URL:          "https://example.com/job/1",
		Title:        "Senior Go Engineer (Remote)",
		Body:         "We pay $120k-$150k/year. Stack: Go, PostgreSQL, Kubernetes. Location: Austin, TX.",
		CreatedAt:    time.Now(),
		DiscoveredAt: time.Now(),
	}

	got, err := p.Enrich(raw, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Salary == nil || got.Salary.Min != 120000 || got.Salary.Max != 150000 {
		t.Errorf("salary = %+v, want 120000-150000", got.Salary)
	}
	if got.Experience != model.LevelSenior {
		t.Errorf("experience = %s, want senior", got.Experience)
	}
	if !got.IsRemote {
		t.Error("expected remote")
	}
	if got.Location != "Austin, TX" {
		t.Errorf("location = %q, want Austin, TX", got.Location)
	}
	if len(got.Skills) == 0 {
		t.Error("expected extracted skills")
	}
	if got.KeywordMatches != 2 {
		t.Errorf("keyword matches = %d, want 2", got.KeywordMatches)
	}
	// salary 25 + remote 15 + senior 15 + keywords 6, no flags
	if got.PriorityScore != 61 {
		t.Errorf("priority = %d, want 61", got.PriorityScore)
	}
	if got.URL != raw.URL {
		t.Errorf("raw fields must carry through, url = %q", got.URL)
	}
}

func TestEnrich_NoTextFails(t *testing.T) {
	p := NewPipeline(DefaultWeights, nil, nil, discardLogger())

	_, err := p.Enrich(model.RawPosting{URL: "https://example.com/empty", Title: "  ", Body: "\n"}, 0)
	if err == nil {
		t.Fatal("expected an error for a posting with no text")
	}
	var ee *model.EnrichmentError
	if !errors.As(err, &ee) {
		t.Fatalf("expected EnrichmentError, got %T", err)
	}
	if ee.URL != "https://example.com/empty" {
		t.Errorf("error url = %q", ee.URL)
	}
}

func TestEnrich_AbsentSignalsAreZeroValues(t *testing.T) {
	p := NewPipeline(DefaultWeights, nil, nil, discardLogger())

	got, err := p.Enrich(model.RawPosting{URL: "u", Title: "Engineer wanted", Body: "Help us ship."}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Salary != nil {
		t.Errorf("salary = %+v, want nil", got.Salary)
	}
	if got.Experience != model.LevelUnknown {
		t.Errorf("experience = %s, want unknown", got.Experience)
	}
	if got.Location != "" || got.IsRemote {
		t.Errorf("location = (%q, %v), want empty", got.Location, got.IsRemote)
	}
	if len(got.RedFlags) != 0 {
		t.Errorf("red flags = %v, want none", got.RedFlags)
	}
}

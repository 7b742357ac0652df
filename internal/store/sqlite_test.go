package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"jobscout/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePosting(url string) model.EnrichedPosting {
	now := time.Now().UTC().Truncate(time.Second)
	return model.EnrichedPosting{
		RawPosting: model.RawPosting{
			Source:       model.SourceReddit,
			SourceID:     "abc",
			URL:          url,
			Title:        "Senior Go Engineer",
			Body:         "Remote, well paid",
			Author:       "u1",
			CreatedAt:    now.Add(-time.Hour),
			DiscoveredAt: now,
		},
		Salary:         &model.Salary{Min: 120000, Max: 150000, Currency: "USD", Period: model.PeriodAnnual},
		Experience:     model.LevelSenior,
		SentimentScore: 0.2,
		RedFlags:       []string{"culture"},
		Skills:         []string{"go", "postgresql"},
		Location:       "Austin, TX",
		IsRemote:       true,
		KeywordMatches: 2,
		PriorityScore:  44,
	}
}

func TestInsert_Roundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := samplePosting("https://example.com/1")
	if err := s.Insert(ctx, want); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.ListRecent(ctx, time.Time{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d postings, want 1", len(got))
	}

	p := got[0]
	if p.URL != want.URL || p.Title != want.Title || p.Source != want.Source {
		t.Errorf("identity fields differ: %+v", p)
	}
	if p.Salary == nil || *p.Salary != *want.Salary {
		t.Errorf("salary = %+v, want %+v", p.Salary, want.Salary)
	}
	if p.Experience != model.LevelSenior || !p.IsRemote || p.PriorityScore != 44 {
		t.Errorf("enrichment fields differ: %+v", p)
	}
	if len(p.RedFlags) != 1 || p.RedFlags[0] != "culture" {
		t.Errorf("red flags = %v", p.RedFlags)
	}
	if len(p.Skills) != 2 {
		t.Errorf("skills = %v", p.Skills)
	}
}

func TestInsert_DuplicateURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := samplePosting("https://example.com/1")
	if err := s.Insert(ctx, p); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	// Same URL from a different source is still a duplicate.
	dup := samplePosting("https://example.com/1")
	dup.Source = model.SourceHackerNews
	dup.Title = "different title"
	err := s.Insert(ctx, dup)
	if !errors.Is(err, model.ErrDuplicate) {
		t.Fatalf("second insert: err = %v, want ErrDuplicate", err)
	}

	// The first row must be untouched.
	got, err := s.ListRecent(ctx, time.Time{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Senior Go Engineer" {
		t.Errorf("stored row changed: %+v", got)
	}
}

func TestExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.Exists(ctx, "https://example.com/none")
	if err != nil || ok {
		t.Fatalf("Exists(absent) = (%v, %v), want (false, nil)", ok, err)
	}

	if err := s.Insert(ctx, samplePosting("https://example.com/1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ok, err = s.Exists(ctx, "https://example.com/1")
	if err != nil || !ok {
		t.Fatalf("Exists(present) = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestInsert_NilSalaryStaysNil(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := samplePosting("https://example.com/1")
	p.Salary = nil
	p.RedFlags = nil
	p.Skills = nil
	if err := s.Insert(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.ListRecent(ctx, time.Time{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got[0].Salary != nil {
		t.Errorf("salary = %+v, want nil", got[0].Salary)
	}
	if got[0].RedFlags != nil || got[0].Skills != nil {
		t.Errorf("sets = (%v, %v), want nil", got[0].RedFlags, got[0].Skills)
	}
}

func TestListRecent_WindowAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	old := samplePosting("https://example.com/old")
	old.DiscoveredAt = now.Add(-48 * time.Hour)
	mid := samplePosting("https://example.com/mid")
	mid.DiscoveredAt = now.Add(-2 * time.Hour)
	fresh := samplePosting("https://example.com/fresh")
	fresh.DiscoveredAt = now

	for _, p := range []model.EnrichedPosting{old, mid, fresh} {
		if err := s.Insert(ctx, p); err != nil {
			t.Fatalf("insert %s: %v", p.URL, err)
		}
	}

	got, err := s.ListRecent(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d postings, want 2 inside the window", len(got))
	}
	if got[0].URL != fresh.URL || got[1].URL != mid.URL {
		t.Errorf("order = [%s, %s], want newest first", got[0].URL, got[1].URL)
	}
}

func TestUpsertHealth(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	h := model.SourceHealth{
		Source:        model.SourceReddit,
		Status:        model.StatusHealthy,
		LastSuccessAt: now,
		LastAttemptAt: now,
	}
	if err := s.UpsertHealth(ctx, h); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	h.Status = model.StatusDown
	h.ConsecutiveFailures = 3
	if err := s.UpsertHealth(ctx, h); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.ListHealth(ctx)
	if err != nil {
		t.Fatalf("list health: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1 (upsert, not insert)", len(got))
	}
	if got[0].Status != model.StatusDown || got[0].ConsecutiveFailures != 3 {
		t.Errorf("health = %+v, want the updated snapshot", got[0])
	}
}

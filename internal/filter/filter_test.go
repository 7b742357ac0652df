package filter

import (
	"testing"

	"jobscout/internal/model"
)

func posting(title, body string) model.RawPosting {
	return model.RawPosting{Title: title, Body: body}
}

func TestMatch_TitleOrBody(t *testing.T) {
	f := NewKeywordFilter([]string{"golang", "backend"})

	cases := []struct {
		name string
		p    model.RawPosting
		want bool
	}{
		{"keyword in title", posting("Golang Engineer", ""), true},
		{"keyword in body", posting("Engineer", "We are a backend team"), true},
		{"case insensitive", posting("BACKEND developer", ""), true},
		{"keyword at punctuation boundary", posting("Backend, remote-first", ""), true},
		{"no whole-word hit", posting("Backends at scale", ""), false},
		{"no keyword", posting("Frontend Designer", "Figma all day"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.Match(tc.p); got != tc.want {
				t.Errorf("Match = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMatch_EmptyKeywordsMatchesAll(t *testing.T) {
	f := NewKeywordFilter(nil)
	if !f.Match(posting("Anything", "at all")) {
		t.Error("empty keyword list should match everything")
	}

	// Blank entries are dropped, leaving an effectively empty list.
	f = NewKeywordFilter([]string{"", "  "})
	if !f.Match(posting("Anything", "")) {
		t.Error("blank-only keyword list should match everything")
	}
}

func TestCount_DistinctKeywords(t *testing.T) {
	f := NewKeywordFilter([]string{"go", "remote", "senior"})

	// "go" appears in both title and body but counts once.
	n := f.Count("Go Engineer, remote", "Looking for go experience")
	if n != 2 {
		t.Errorf("Count = %d, want 2 (distinct keywords, not occurrences)", n)
	}

	if n := f.Count("Frontend role", "no match here"); n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestMatch_WholeWordsOnly(t *testing.T) {
	f := NewKeywordFilter([]string{"go"})

	for _, text := range []string{"Django developer", "Graphic Designer / logos", "algorithms team"} {
		if f.Match(posting(text, "")) {
			t.Errorf("Match(%q) = true, want false: %q only matches as a whole word", text, "go")
		}
	}
	if !f.Match(posting("Go Engineer", "")) {
		t.Error("whole-word keyword should still match")
	}
	if !f.Match(posting("We write Go.", "")) {
		t.Error("trailing punctuation should not block the match")
	}
}

func TestMatch_SymbolKeywords(t *testing.T) {
	f := NewKeywordFilter([]string{"c++", ".net"})

	if !f.Match(posting("Senior C++ Engineer", "")) {
		t.Error("c++ should match")
	}
	if n := f.Count("", "We ship .NET services"); n != 1 {
		t.Errorf("Count = %d, want 1 for .net", n)
	}
}

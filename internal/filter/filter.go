package filter

import (
	"regexp"
	"strings"

	"jobscout/internal/model"
)

// KeywordFilter matches postings whose title or body contains any of the
// configured keywords as a whole word, case-insensitive. Without word
// boundaries a keyword like "go" would light up inside "django" or "logos".
// An empty keyword list is treated as "match all".
type KeywordFilter struct {
	keywords []string
	patterns []*regexp.Regexp
}

var plainKeyword = regexp.MustCompile(`^[a-z0-9 ]+$`)

// NewKeywordFilter lowercases the keyword set and compiles one whole-word
// pattern per keyword. Keywords with symbol characters (c++, .net) cannot
// use \b, so they get explicit non-term-character boundaries instead.
func NewKeywordFilter(keywords []string) *KeywordFilter {
	f := &KeywordFilter{}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		quoted := regexp.QuoteMeta(kw)
		var pat *regexp.Regexp
		if plainKeyword.MatchString(kw) {
			pat = regexp.MustCompile(`(?i)\b` + quoted + `\b`)
		} else {
			pat = regexp.MustCompile(`(?i)(?:^|[^a-z0-9+#.])` + quoted + `(?:$|[^a-z0-9+#.])`)
		}
		f.keywords = append(f.keywords, kw)
		f.patterns = append(f.patterns, pat)
	}
	return f
}

// Match returns true if the posting's title or body contains any keyword.
func (f *KeywordFilter) Match(p model.RawPosting) bool {
	return len(f.keywords) == 0 || f.Count(p.Title, p.Body) > 0
}

// Count returns how many distinct keywords appear in title or body. It
// feeds the priority score's keyword-match term.
func (f *KeywordFilter) Count(title, body string) int {
	n := 0
	for _, pat := range f.patterns {
		if pat.MatchString(title) || pat.MatchString(body) {
			n++
		}
	}
	return n
}

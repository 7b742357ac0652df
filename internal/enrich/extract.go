package enrich

import (
	"regexp"
	"strings"
)

// Extractor pulls a location token and a skills set out of posting text.
type Extractor struct {
	locationPatterns []*regexp.Regexp
	skillTerms       []string
	skillPatterns    []*regexp.Regexp
}

// NewExtractor builds an extractor over the given technology vocabulary.
// An empty vocabulary falls back to DefaultSkills.
func NewExtractor(skills []string) *Extractor {
	if len(skills) == 0 {
		skills = DefaultSkills
	}
	return &Extractor{
		locationPatterns: []*regexp.Regexp{
			// Capitalized words after a location label, optional ", ST" tail.
			regexp.MustCompile(`(?i:location|based in|located in|office in)[:\s]+([A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*(?:,\s*[A-Z][a-zA-Z]*)?)`),
			// City, ST
			regexp.MustCompile(`\b([A-Z][a-z]+(?: [A-Z][a-z]+)*,\s*[A-Z]{2})\b`),
		},
		skillTerms:    skills,
		skillPatterns: compileTerms(skills),
	}
}

// Skills returns the vocabulary terms present in text, case-insensitive
// and deduplicated, in vocabulary order.
func (e *Extractor) Skills(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for i, pat := range e.skillPatterns {
		term := strings.ToLower(e.skillTerms[i])
		if seen[term] {
			continue
		}
		if pat.MatchString(text) {
			seen[term] = true
			out = append(out, term)
		}
	}
	return out
}

// Location returns the location token (empty when only a remote marker was
// found) and whether a remote-indicator phrase is present.
func (e *Extractor) Location(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	lower := strings.ToLower(text)
	isRemote := false
	for _, phrase := range remotePhrases {
		if strings.Contains(lower, phrase) {
			isRemote = true
			break
		}
	}

	for _, pat := range e.locationPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		loc := strings.TrimSpace(m[1])
		// A bare remote/hybrid marker is not a location token.
		switch strings.ToLower(loc) {
		case "remote", "hybrid", "on-site", "onsite", "anywhere":
			continue
		}
		return loc, isRemote
	}
	return "", isRemote
}

var plainTerm = regexp.MustCompile(`^[a-z0-9 ]+$`)

// compileTerms builds a whole-term, case-insensitive pattern per term.
// Terms containing symbol characters (c++, .net, ci/cd) cannot use \b, so
// they get explicit non-term-character boundaries instead.
func compileTerms(terms []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(terms))
	for i, term := range terms {
		quoted := regexp.QuoteMeta(strings.ToLower(term))
		if plainTerm.MatchString(strings.ToLower(term)) {
			patterns[i] = regexp.MustCompile(`(?i)\b` + quoted + `\b`)
		} else {
			patterns[i] = regexp.MustCompile(`(?i)(?:^|[^a-z0-9+#.])` + quoted + `(?:$|[^a-z0-9+#.])`)
		}
	}
	return patterns
}

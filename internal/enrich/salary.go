package enrich

import (
	"regexp"
	"strconv"
	"strings"

	"jobscout/internal/model"
)

// SalaryParser extracts a normalized salary from posting text by trying an
// ordered set of currency/period-aware patterns. The first pattern whose
// match survives the sanity bounds wins.
type SalaryParser struct {
	patterns []salaryPattern
}

type patternKind int

const (
	kindRange patternKind = iota
	kindSingle
	kindUpTo     // "up to $100k", upper bound only
	kindStarting // "starting at $80k", lower bound only
)

type salaryPattern struct {
	re     *regexp.Regexp
	kind   patternKind
	period model.SalaryPeriod // fixed period, or empty to detect from context
}

// amt matches a number with optional thousands separators, decimals, and a
// k-suffix shorthand.
const amt = `\d[\d,]*(?:\.\d+)?k?`

var currencyCodes = map[string]string{
	"$": "USD", "€": "EUR", "£": "GBP",
	"usd": "USD", "eur": "EUR", "gbp": "GBP", "cad": "CAD", "aud": "AUD",
}

// NewSalaryParser compiles the pattern set, ordered by specificity.
func NewSalaryParser() *SalaryParser {
	return &SalaryParser{patterns: []salaryPattern{
		// $50k-$70k, $80,000 - 100,000
		{regexp.MustCompile(`(?i)([$€£])(` + amt + `)\s*(?:-|–|—|to)\s*[$€£]?(` + amt + `)`), kindRange, ""},
		// 50-70k USD, 60k-80k eur
		{regexp.MustCompile(`(?i)\b(` + amt + `)\s*(?:-|–|—|to)\s*(` + amt + `)\s*(usd|eur|gbp|cad|aud)\b`), kindRange, ""},
		// $40/hr, €40 per hour
		{regexp.MustCompile(`(?i)([$€£])(\d[\d,]*(?:\.\d+)?)\s*(?:/|per\s+)\s*(?:hr|hour)`), kindSingle, model.PeriodHourly},
		// $5000/month, $5k/mo
		{regexp.MustCompile(`(?i)([$€£])(` + amt + `)\s*(?:/|per\s+)\s*(?:mo|month)`), kindSingle, periodMonthly},
		// up to $100k
		{regexp.MustCompile(`(?i)up\s+to\s+([$€£])(` + amt + `)`), kindUpTo, ""},
		// starting at $80k
		{regexp.MustCompile(`(?i)starting\s+(?:at|from)\s+([$€£])(` + amt + `)`), kindStarting, ""},
		// $80k, €60,000; bare small figures ("$5") deliberately excluded
		{regexp.MustCompile(`(?i)([$€£])(\d{1,3}(?:,\d{3})+k?|\d{4,}k?|\d{1,3}(?:\.\d+)?k)\b`), kindSingle, ""},
		// 80k USD, 60000 EUR
		{regexp.MustCompile(`(?i)\b(` + amt + `)\s*(usd|eur|gbp|cad|aud)\b`), kindSingle, ""},
	}}
}

// periodMonthly is internal only: monthly figures are normalized to annual
// before they leave the parser.
const periodMonthly model.SalaryPeriod = "monthly"

// Parse returns the first valid salary found in text, or nil when no
// pattern matches. Absent salary is nil, never zero.
func (p *SalaryParser) Parse(text string) *model.Salary {
	if text == "" {
		return nil
	}

	for _, pat := range p.patterns {
		loc := pat.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}

		matchText := text[loc[0]:loc[1]]
		contextEnd := loc[1] + 20
		if contextEnd > len(text) {
			contextEnd = len(text)
		}
		context := text[loc[1]:contextEnd]

		currency := "USD"
		var amounts []int
		for g := 1; g*2 < len(loc); g++ {
			if loc[g*2] < 0 {
				continue
			}
			group := text[loc[g*2]:loc[g*2+1]]
			if iso, ok := currencyCodes[strings.ToLower(group)]; ok {
				currency = iso
				continue
			}
			if v, ok := parseAmount(group); ok {
				amounts = append(amounts, v)
			}
		}
		if len(amounts) == 0 {
			continue
		}

		s := &model.Salary{Currency: currency}
		switch pat.kind {
		case kindRange:
			if len(amounts) < 2 {
				continue
			}
			s.Min, s.Max = amounts[0], amounts[1]
			if s.Min > s.Max {
				s.Min, s.Max = s.Max, s.Min
			}
		case kindUpTo:
			s.Max = amounts[0]
		case kindStarting:
			s.Min = amounts[0]
		default:
			s.Min, s.Max = amounts[0], amounts[0]
		}

		s.Period = pat.period
		if s.Period == "" {
			s.Period = detectPeriod(matchText, context)
		}
		if s.Period == periodMonthly {
			s.Min *= 12
			s.Max *= 12
			s.Period = model.PeriodAnnual
		}

		if validSalary(s) {
			return s
		}
	}
	return nil
}

// parseAmount parses "120", "120,000", "7.5k" into integer currency units.
func parseAmount(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	thousands := strings.HasSuffix(s, "k")
	s = strings.TrimSuffix(s, "k")
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if thousands {
		f *= 1000
	}
	return int(f), true
}

// detectPeriod scans the matched text and the 20 characters after it for a
// period keyword. No keyword leaves the period unspecified.
func detectPeriod(matchText, context string) model.SalaryPeriod {
	s := strings.ToLower(matchText + " " + context)
	switch {
	case containsAny(s, "/hr", "/hour", "per hour", "hourly", " an hour"):
		return model.PeriodHourly
	case containsAny(s, "/mo", "/month", "per month", "monthly"):
		return periodMonthly
	case containsAny(s, "year", "annual", "per annum", "p.a.", "/yr", "yearly"):
		return model.PeriodAnnual
	default:
		return model.PeriodUnspecified
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// validSalary applies sanity bounds so pattern noise ("raised $2") does not
// become a salary: hourly rates 1..2000, annualized figures 10k..1M. A zero
// bound means that bound was not stated.
func validSalary(s *model.Salary) bool {
	if s.Min == 0 && s.Max == 0 {
		return false
	}
	lo, hi := 10_000, 1_000_000
	if s.Period == model.PeriodHourly {
		lo, hi = 1, 2000
	}
	for _, v := range []int{s.Min, s.Max} {
		if v == 0 {
			continue
		}
		if v < lo || v > hi {
			return false
		}
	}
	if s.Min != 0 && s.Max != 0 && s.Min > s.Max {
		return false
	}
	return true
}

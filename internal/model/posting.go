package model

import (
	"context"
	"time"
)

// Source identifies which remote feed a posting came from.
type Source string

const (
	SourceReddit      Source = "reddit"
	SourceHackerNews  Source = "hackernews"
	SourceCompanyPage Source = "companypage"
)

// Marker is an opaque per-source cursor returned by a poll and handed back
// on the next one. Its contents are source-specific (a Reddit fullname, an
// HN comment ID, a page hash).
type Marker string

// RawPosting is a source-agnostic candidate job posting as produced by a
// Poller. Immutable once produced.
type RawPosting struct {
	Source       Source
	SourceID     string // source-local identifier
	URL          string // global dedup key
	Title        string
	Body         string
	Author       string
	CreatedAt    time.Time
	DiscoveredAt time.Time // our clock, set by the poller
}

// SalaryPeriod is the pay period a salary figure refers to.
type SalaryPeriod string

const (
	PeriodAnnual      SalaryPeriod = "annual"
	PeriodHourly      SalaryPeriod = "hourly"
	PeriodUnspecified SalaryPeriod = "unspecified"
)

// Salary holds a normalized compensation range. Min and Max are integer
// amounts in base currency units; Min == Max for a single figure, and a
// zero bound means that bound was not stated ("up to X", "from X").
type Salary struct {
	Min      int
	Max      int
	Currency string // ISO code: USD, EUR, GBP, CAD, AUD
	Period   SalaryPeriod
}

// ExperienceLevel is the seniority bucket detected for a posting.
type ExperienceLevel string

const (
	LevelUnknown ExperienceLevel = "unknown"
	LevelJunior  ExperienceLevel = "junior"
	LevelMid     ExperienceLevel = "mid"
	LevelSenior  ExperienceLevel = "senior"
	LevelLead    ExperienceLevel = "lead"
)

// Rank orders levels from Unknown (0) up to Lead (4). Used for tie-breaking
// toward the more senior bucket and for priority weighting.
func (l ExperienceLevel) Rank() int {
	switch l {
	case LevelJunior:
		return 1
	case LevelMid:
		return 2
	case LevelSenior:
		return 3
	case LevelLead:
		return 4
	default:
		return 0
	}
}

// EnrichedPosting is a RawPosting plus the structured signals extracted by
// the enrichment pipeline. Never mutated after creation; re-enrichment
// produces a new record.
type EnrichedPosting struct {
	RawPosting

	Salary         *Salary // nil when no salary phrase matched
	Experience     ExperienceLevel
	SentimentScore float64  // clamped to [-1, 1]
	RedFlags       []string // distinct category tags
	Skills         []string // matched technology vocabulary, deduplicated
	Location       string   // empty when only a remote marker was found
	IsRemote       bool
	KeywordMatches int // distinct configured keywords hit
	PriorityScore  int // derived, see enrich.Weights
}

// HealthStatus is the coarse per-source health classification.
type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusDegraded HealthStatus = "degraded"
	StatusDown     HealthStatus = "down"
)

// SourceHealth is a read-only snapshot of one source's poll health.
type SourceHealth struct {
	Source              Source
	Status              HealthStatus
	LastSuccessAt       time.Time
	LastAttemptAt       time.Time
	ConsecutiveFailures int
}

// Poller pulls candidate postings from one remote source. The returned
// marker is passed back on the next poll; pollers must tolerate an empty
// marker (first poll).
type Poller interface {
	Source() Source
	Poll(ctx context.Context, since Marker) ([]RawPosting, Marker, error)
}

// PostingStore is the persistent posting store. Uniqueness on URL is
// enforced here: Insert returns ErrDuplicate when the URL is already
// stored. This is the authoritative dedup mechanism.
type PostingStore interface {
	Exists(ctx context.Context, url string) (bool, error)
	Insert(ctx context.Context, p EnrichedPosting) error
	ListRecent(ctx context.Context, since time.Time) ([]EnrichedPosting, error)
}

// HealthStore persists per-source health snapshots so out-of-process
// monitors can poll them.
type HealthStore interface {
	UpsertHealth(ctx context.Context, h SourceHealth) error
	ListHealth(ctx context.Context) ([]SourceHealth, error)
}

// SeenCache is a fast-path dedup precheck in front of the store. A miss is
// always safe: the store remains authoritative.
type SeenCache interface {
	Seen(ctx context.Context, url string) bool
	Mark(ctx context.Context, url string)
}

// Notifier delivers an enriched posting downstream. Fire-and-forget from
// the coordinator's perspective.
type Notifier interface {
	Notify(ctx context.Context, p EnrichedPosting) error
}

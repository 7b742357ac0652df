package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"jobscout/internal/model"
)

// SQLiteStore persists enriched postings and per-source health snapshots.
// Uniqueness on url is enforced by the schema, making Insert the
// authoritative dedup check.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS postings (
			url             TEXT PRIMARY KEY,
			source          TEXT NOT NULL,
			source_id       TEXT NOT NULL,
			title           TEXT NOT NULL,
			body            TEXT,
			author          TEXT,
			created_at      DATETIME NOT NULL,
			discovered_at   DATETIME NOT NULL,
			salary_min      INTEGER,
			salary_max      INTEGER,
			salary_currency TEXT,
			salary_period   TEXT,
			experience      TEXT NOT NULL,
			sentiment       REAL NOT NULL,
			red_flags       TEXT,
			skills          TEXT,
			location        TEXT,
			is_remote       INTEGER NOT NULL,
			keyword_matches INTEGER NOT NULL,
			priority        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_discovered ON postings (discovered_at)`,
		`CREATE TABLE IF NOT EXISTS source_health (
			source               TEXT PRIMARY KEY,
			status               TEXT NOT NULL,
			last_success_at      DATETIME,
			last_attempt_at      DATETIME,
			consecutive_failures INTEGER NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Exists returns true if a posting with the given URL is already stored.
func (s *SQLiteStore) Exists(ctx context.Context, url string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM postings WHERE url = ?", url).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", url, err)
	}
	return true, nil
}

// Insert stores an enriched posting. Returns model.ErrDuplicate when the
// URL is already present; the existing row is never overwritten.
func (s *SQLiteStore) Insert(ctx context.Context, p model.EnrichedPosting) error {
	var salaryMin, salaryMax sql.NullInt64
	var currency, period sql.NullString
	if p.Salary != nil {
		salaryMin = sql.NullInt64{Int64: int64(p.Salary.Min), Valid: true}
		salaryMax = sql.NullInt64{Int64: int64(p.Salary.Max), Valid: true}
		currency = sql.NullString{String: p.Salary.Currency, Valid: true}
		period = sql.NullString{String: string(p.Salary.Period), Valid: true}
	}

	redFlags, err := marshalSet(p.RedFlags)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", p.URL, err)
	}
	skills, err := marshalSet(p.Skills)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", p.URL, err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO postings (
			url, source, source_id, title, body, author, created_at, discovered_at,
			salary_min, salary_max, salary_currency, salary_period,
			experience, sentiment, red_flags, skills, location, is_remote,
			keyword_matches, priority
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING`,
		p.URL, string(p.Source), p.SourceID, p.Title, p.Body, p.Author,
		p.CreatedAt.UTC(), p.DiscoveredAt.UTC(),
		salaryMin, salaryMax, currency, period,
		string(p.Experience), p.SentimentScore, redFlags, skills,
		p.Location, p.IsRemote, p.KeywordMatches, p.PriorityScore,
	)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", p.URL, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting %s: %w", p.URL, err)
	}
	if n == 0 {
		return model.ErrDuplicate
	}
	return nil
}

// ListRecent returns postings discovered at or after since, newest first.
func (s *SQLiteStore) ListRecent(ctx context.Context, since time.Time) ([]model.EnrichedPosting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, source, source_id, title, body, author, created_at, discovered_at,
			salary_min, salary_max, salary_currency, salary_period,
			experience, sentiment, red_flags, skills, location, is_remote,
			keyword_matches, priority
		FROM postings
		WHERE discovered_at >= ?
		ORDER BY discovered_at DESC`,
		since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent postings: %w", err)
	}
	defer rows.Close()

	var out []model.EnrichedPosting
	for rows.Next() {
		var p model.EnrichedPosting
		var source, experience string
		var salaryMin, salaryMax sql.NullInt64
		var currency, period sql.NullString
		var redFlags, skills sql.NullString
		if err := rows.Scan(
			&p.URL, &source, &p.SourceID, &p.Title, &p.Body, &p.Author,
			&p.CreatedAt, &p.DiscoveredAt,
			&salaryMin, &salaryMax, &currency, &period,
			&experience, &p.SentimentScore, &redFlags, &skills,
			&p.Location, &p.IsRemote, &p.KeywordMatches, &p.PriorityScore,
		); err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		p.Source = model.Source(source)
		p.Experience = model.ExperienceLevel(experience)
		if salaryMin.Valid {
			p.Salary = &model.Salary{
				Min:      int(salaryMin.Int64),
				Max:      int(salaryMax.Int64),
				Currency: currency.String,
				Period:   model.SalaryPeriod(period.String),
			}
		}
		if p.RedFlags, err = unmarshalSet(redFlags); err != nil {
			return nil, fmt.Errorf("scanning posting %s: %w", p.URL, err)
		}
		if p.Skills, err = unmarshalSet(skills); err != nil {
			return nil, fmt.Errorf("scanning posting %s: %w", p.URL, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpsertHealth records the latest health snapshot for a source.
func (s *SQLiteStore) UpsertHealth(ctx context.Context, h model.SourceHealth) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO source_health (source, status, last_success_at, last_attempt_at, consecutive_failures)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			status = excluded.status,
			last_success_at = excluded.last_success_at,
			last_attempt_at = excluded.last_attempt_at,
			consecutive_failures = excluded.consecutive_failures`,
		string(h.Source), string(h.Status), h.LastSuccessAt.UTC(), h.LastAttemptAt.UTC(), h.ConsecutiveFailures,
	)
	if err != nil {
		return fmt.Errorf("upserting health for %s: %w", h.Source, err)
	}
	return nil
}

// ListHealth returns the stored snapshot for every source.
func (s *SQLiteStore) ListHealth(ctx context.Context) ([]model.SourceHealth, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, status, last_success_at, last_attempt_at, consecutive_failures
		FROM source_health ORDER BY source`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing source health: %w", err)
	}
	defer rows.Close()

	var out []model.SourceHealth
	for rows.Next() {
		var h model.SourceHealth
		var source, status string
		if err := rows.Scan(&source, &status, &h.LastSuccessAt, &h.LastAttemptAt, &h.ConsecutiveFailures); err != nil {
			return nil, fmt.Errorf("scanning source health: %w", err)
		}
		h.Source = model.Source(source)
		h.Status = model.HealthStatus(status)
		out = append(out, h)
	}
	return out, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Sets are stored as JSON arrays; an empty set is NULL.
func marshalSet(set []string) (sql.NullString, error) {
	if len(set) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(set)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalSet(ns sql.NullString) ([]string, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var set []string
	if err := json.Unmarshal([]byte(ns.String), &set); err != nil {
		return nil, err
	}
	return set, nil
}

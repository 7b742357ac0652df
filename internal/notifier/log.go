package notifier

import (
	"context"
	"log/slog"

	"jobscout/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new postings to the given logger as structured
// messages. The default delivery collaborator.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the posting with its extracted signals. Returns nil (stdout
// logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, p model.EnrichedPosting) error {
	args := []any{
		"source", p.Source,
		"title", p.Title,
		"url", p.URL,
		"level", p.Experience,
		"priority", p.PriorityScore,
	}
	if p.Salary != nil {
		args = append(args, "salary_min", p.Salary.Min, "salary_max", p.Salary.Max,
			"currency", p.Salary.Currency, "period", p.Salary.Period)
	}
	if p.IsRemote {
		args = append(args, "remote", true)
	} else if p.Location != "" {
		args = append(args, "location", p.Location)
	}
	if len(p.RedFlags) > 0 {
		args = append(args, "red_flags", p.RedFlags)
	}
	n.logger.Info("new posting", args...)
	return nil
}

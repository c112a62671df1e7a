package scheduler

import (
	"context"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"RetentionSentinel/internal/model"
	"RetentionSentinel/internal/recorder"
	"RetentionSentinel/internal/report"
)

// Backfill records the cohort rows of every month from..to, overall and per
// country, as one run. It returns the number of months processed.
func (s *Scheduler) Backfill(ctx context.Context, from, to model.YearMonth) (int, error) {
	months := model.MonthRange(from, to)
	if len(months) == 0 {
		return 0, fmt.Errorf("empty backfill range %s..%s", from, to)
	}
	l, err := s.Ledger(ctx)
	if err != nil {
		return 0, fmt.Errorf("load ledger: %w", err)
	}
	countries := report.ByCountry(l)

	out := s.Progress
	if out == nil {
		out = io.Discard
	}
	bar := progressbar.NewOptions(len(months),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("backfill"),
		progressbar.OptionShowCount(),
	)

	run := &recorder.RunReport{Kind: "backfill", Reference: to, Orders: l.Len(), At: s.Now()}
	for _, ym := range months {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		for _, row := range s.Facade.Snapshot(l, ym).Rows {
			run.Retention = append(run.Retention, recorder.RetentionEntry{Scope: recorder.ScopeAll, CohortRow: row})
		}
		rows, err := s.Facade.RetentionBy(ctx, countries, []model.YearMonth{ym})
		if err != nil {
			return 0, err
		}
		for _, row := range rows {
			run.Retention = append(run.Retention, recorder.RetentionEntry{Scope: countryScope(row.Key), CohortRow: row.CohortRow})
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if _, err := s.Recorder.RecordRun(run); err != nil {
		return 0, fmt.Errorf("record backfill: %w", err)
	}
	return len(months), nil
}

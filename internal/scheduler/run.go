package scheduler

import (
	"context"
	"fmt"

	"RetentionSentinel/internal/model"
	"RetentionSentinel/internal/recorder"
	"RetentionSentinel/internal/report"
)

// countryScope is the recorder scope for a country slice.
func countryScope(code string) string { return "country:" + code }

// Result is everything one run computes for a reference month.
type Result struct {
	Reference       model.YearMonth
	Snapshot        *model.Snapshot
	Previous        *model.Snapshot
	Retention       []model.CohortRow
	ByCountry       []report.DimensionRow
	ByRegion        []report.DimensionRow
	ByManager       []report.DimensionRow
	Roster          []report.RosterEntry
	Recommendations *model.RecommendationSet
	CountrySets     map[string]*model.RecommendationSet
	Goals           []model.GoalRow
}

// Compute builds the retention window ending at ref, the recommendations
// from ref-1 to ref, per-dimension breakdowns, the roster and goal gaps on
// the given ledger.
func (s *Scheduler) Compute(ctx context.Context, l *model.Ledger, ref model.YearMonth) (*Result, error) {
	months := model.Trailing(ref, s.windowMonths())
	countries := report.ByCountry(l)

	res := &Result{
		Reference: ref,
		Snapshot:  s.Facade.Snapshot(l, ref),
		Previous:  s.Facade.Snapshot(l, ref.AddMonths(-1)),
	}

	var err error
	if res.Retention, err = s.Facade.Retention(ctx, l, months); err != nil {
		return nil, fmt.Errorf("retention: %w", err)
	}
	if res.ByCountry, err = s.Facade.RetentionBy(ctx, countries, months); err != nil {
		return nil, fmt.Errorf("retention by country: %w", err)
	}
	if res.ByRegion, err = s.Facade.RetentionBy(ctx, report.ByRegion(l), months); err != nil {
		return nil, fmt.Errorf("retention by region: %w", err)
	}
	if res.ByManager, err = s.Facade.RetentionBy(ctx, report.ByAccountManager(l), months); err != nil {
		return nil, fmt.Errorf("retention by account manager: %w", err)
	}
	if res.Recommendations, err = s.Facade.Recommendations(ctx, l, ref.AddMonths(-1), ref); err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	if res.CountrySets, err = s.Facade.RecommendationsBy(ctx, countries, ref.AddMonths(-1), ref); err != nil {
		return nil, fmt.Errorf("recommendations by country: %w", err)
	}
	res.Roster = report.Roster(l, ref)
	if s.Goals != nil {
		res.Goals = report.MergeGoals(s.Goals.List(), s.Facade.ActualBySegment(countries, ref))
	}
	return res, nil
}

// runReport converts a result into what the recorder stores.
func (r *Result) runReport(kind string, orders int) *recorder.RunReport {
	run := &recorder.RunReport{
		Kind:      kind,
		Reference: r.Reference,
		Orders:    orders,
		Goals:     r.Goals,
	}
	for _, row := range r.Retention {
		run.Retention = append(run.Retention, recorder.RetentionEntry{Scope: recorder.ScopeAll, CohortRow: row})
	}
	for _, row := range r.ByCountry {
		run.Retention = append(run.Retention, recorder.RetentionEntry{Scope: countryScope(row.Key), CohortRow: row.CohortRow})
	}
	run.Recommendations = append(run.Recommendations, recorder.RecommendationEntry{Scope: recorder.ScopeAll, Set: r.Recommendations})
	for _, key := range sortedSetKeys(r.CountrySets) {
		run.Recommendations = append(run.Recommendations, recorder.RecommendationEntry{Scope: countryScope(key), Set: r.CountrySets[key]})
	}
	return run
}

// Tables returns the flat tables exported after a run.
func (r *Result) Tables() []*report.Table {
	return []*report.Table{
		report.RetentionTable(r.Retention),
		report.DimensionTable("country", r.ByCountry),
		report.DimensionTable("region", r.ByRegion),
		report.DimensionTable("account_manager", r.ByManager),
		report.MatrixTable(r.Snapshot),
		report.RecommendationTable(r.Recommendations),
		report.CategorySummaryTable(r.Recommendations),
		report.GoalTable(r.Goals),
		report.RosterTable(r.Roster),
	}
}

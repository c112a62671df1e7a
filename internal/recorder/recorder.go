package recorder

import (
	"time"

	"RetentionSentinel/internal/model"
)

// ScopeAll tags rows computed on the whole ledger.
const ScopeAll = "ALL"

// RetentionEntry is a cohort row tagged with the slice it was computed on,
// e.g. ScopeAll or "country:FR".
type RetentionEntry struct {
	Scope string
	model.CohortRow
}

// RecommendationEntry is a recommendation set for one slice.
type RecommendationEntry struct {
	Scope string
	Set   *model.RecommendationSet
}

// RunReport holds everything computed by one scheduled or manual run.
type RunReport struct {
	Kind            string // "daily", "monthly", "backfill" or "once"
	Reference       model.YearMonth
	At              time.Time
	Orders          int
	Retention       []RetentionEntry
	Recommendations []RecommendationEntry
	Goals           []model.GoalRow
}

// Recorder persists run history for later analysis.
type Recorder interface {
	// RecordRun stores the report and returns the run id.
	RecordRun(run *RunReport) (string, error)
	Close() error
}

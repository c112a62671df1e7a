package report

import (
	"sort"

	"RetentionSentinel/internal/model"
)

// Actuals holds active-customer counts per slice key and segment.
type Actuals map[string]map[model.Segment]int

// ActualBySegment counts active customers per segment for ref in every slice.
func (f *Facade) ActualBySegment(parts map[string]*model.Ledger, ref model.YearMonth) Actuals {
	out := make(Actuals, len(parts))
	for k, l := range parts {
		snap := f.Snapshot(l, ref)
		counts := make(map[model.Segment]int, model.SegmentCount)
		for _, row := range snap.Rows {
			counts[row.Segment] = row.Count
		}
		out[k] = counts
	}
	return out
}

// MergeGoals joins goals with actual counts. A goal with no matching
// count, including one on an unknown segment, gets an actual of 0.
// Rows are sorted by country then segment order.
func MergeGoals(goals []model.Goal, actual Actuals) []model.GoalRow {
	rows := make([]model.GoalRow, 0, len(goals))
	for _, g := range goals {
		row := model.GoalRow{Country: g.Country, Segment: g.Segment, Target: g.Target}
		if seg, ok := model.ParseSegment(g.Segment); ok {
			row.Actual = actual[g.Country][seg]
		}
		row.Gap = row.Target - row.Actual
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Country != rows[j].Country {
			return rows[i].Country < rows[j].Country
		}
		return segmentRank(rows[i].Segment) < segmentRank(rows[j].Segment)
	})
	return rows
}

func segmentRank(name string) int {
	if seg, ok := model.ParseSegment(name); ok {
		return int(seg)
	}
	return model.SegmentCount
}

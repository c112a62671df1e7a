package report

import (
	"strconv"

	"RetentionSentinel/internal/model"
)

const dateLayout = "2006-01-02"

// Table is a flat, string-typed view of a report, ready for CSV or JSON export.
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Records returns the table as a slice of column-keyed maps.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64, prec int) string { return strconv.FormatFloat(f, 'f', prec, 64) }

func cohortCells(r model.CohortRow) []string {
	return []string{
		r.Month.String(), r.Segment.String(),
		itoa(r.Count), itoa(r.Possible), itoa(r.PreviousActive), ftoa(r.Ratio, 1),
	}
}

var cohortColumns = []string{"month", "segment", "count", "possible", "previous_active", "ratio"}

// RetentionTable flattens long-format retention rows.
func RetentionTable(rows []model.CohortRow) *Table {
	t := &Table{Name: "retention", Columns: append([]string(nil), cohortColumns...)}
	for _, r := range rows {
		t.Rows = append(t.Rows, cohortCells(r))
	}
	return t
}

// DimensionTable flattens per-slice retention rows; dimension names the key column.
func DimensionTable(dimension string, rows []DimensionRow) *Table {
	t := &Table{Name: "retention_by_" + dimension, Columns: append([]string{dimension}, cohortColumns...)}
	for _, r := range rows {
		t.Rows = append(t.Rows, append([]string{r.Key}, cohortCells(r.CohortRow)...))
	}
	return t
}

// RecommendationTable flattens a recommendation set.
func RecommendationTable(set *model.RecommendationSet) *Table {
	t := &Table{
		Name: "recommendations",
		Columns: []string{
			"customer_id", "customer_name", "country", "account_manager",
			"segment_from", "tier_from", "revenue_from",
			"active_in_to", "segment_to", "tier_to", "revenue_to",
			"last_order_date", "category",
		},
	}
	if set == nil {
		return t
	}
	for _, r := range set.Records {
		segTo, tierTo := "", ""
		if r.ActiveInTo {
			segTo, tierTo = r.SegmentTo.String(), r.TierTo.String()
		}
		last := ""
		if !r.LastOrderDate.IsZero() {
			last = r.LastOrderDate.Format(dateLayout)
		}
		t.Rows = append(t.Rows, []string{
			r.CustomerID, r.CustomerName, r.Country, r.AccountManager,
			r.SegmentFrom.String(), r.TierFrom.String(), ftoa(r.RevenueFrom, 2),
			strconv.FormatBool(r.ActiveInTo), segTo, tierTo, ftoa(r.RevenueTo, 2),
			last, r.Category.String(),
		})
	}
	return t
}

// CategorySummaryTable tallies a recommendation set per category, with the
// display color of each category.
func CategorySummaryTable(set *model.RecommendationSet) *Table {
	t := &Table{Name: "recommendation_summary", Columns: []string{"category", "count", "color"}}
	var counts [model.CategoryCount]int
	if set != nil {
		counts = set.CountByCategory()
	}
	for _, c := range model.Categories {
		t.Rows = append(t.Rows, []string{c.String(), itoa(counts[c]), c.Color()})
	}
	return t
}

// GoalTable flattens merged goal rows.
func GoalTable(rows []model.GoalRow) *Table {
	t := &Table{Name: "goals", Columns: []string{"country", "segment", "target", "actual", "gap"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Country, r.Segment, itoa(r.Target), itoa(r.Actual), itoa(r.Gap)})
	}
	return t
}

// RosterTable flattens a customer roster.
func RosterTable(entries []RosterEntry) *Table {
	t := &Table{
		Name:    "roster",
		Columns: []string{"customer_id", "customer_name", "account_manager", "country", "segment", "last_order_date", "active_in_month"},
	}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{
			e.CustomerID, e.CustomerName, e.AccountManager, e.Country,
			e.Segment.String(), e.LastOrderDate.Format(dateLayout), strconv.FormatBool(e.ActiveInMonth),
		})
	}
	return t
}

// MatrixTable flattens the segment by tier matrix of a snapshot.
func MatrixTable(snap *model.Snapshot) *Table {
	cols := []string{"segment"}
	for _, tier := range model.Tiers {
		cols = append(cols, tier.String())
	}
	t := &Table{Name: "segment_tier_matrix", Columns: cols}
	for _, seg := range model.Segments {
		row := []string{seg.String()}
		for _, tier := range model.Tiers {
			row = append(row, itoa(snap.Matrix[seg][tier]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

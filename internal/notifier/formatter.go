package notifier

import (
	"fmt"
	"html"
	"strings"

	"RetentionSentinel/internal/model"
	"RetentionSentinel/internal/report"
)

// maxListed caps the customers listed per category in a churn message.
const maxListed = 10

var categoryIcons = [...]string{"🔴", "🟠", "🟡", "🟢"}

// FormatRetentionDigest formats one reference month's cohort rows, plus
// the previous month's ratio when prev is non-nil.
func FormatRetentionDigest(scope string, snap *model.Snapshot, prev *model.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Retention %s</b> | %s\n\n", html.EscapeString(scope), snap.Month))
	b.WriteString(fmt.Sprintf("Active customers: %d\n\n", snap.ActiveCustomers))

	for _, row := range snap.Rows {
		b.WriteString(fmt.Sprintf("<b>%s</b>: %d", row.Segment.Label(), row.Count))
		if row.Segment != model.Acquisition {
			b.WriteString(fmt.Sprintf(" / %d prev. active (%d possible) = %.1f%%", row.PreviousActive, row.Possible, row.Ratio))
			if prev != nil {
				delta := row.Ratio - prev.Row(row.Segment).Ratio
				b.WriteString(fmt.Sprintf(" %s %+.1f pts", trendIcon(delta), delta))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func trendIcon(delta float64) string {
	switch {
	case delta > 0:
		return "📈"
	case delta < 0:
		return "📉"
	default:
		return "➖"
	}
}

// FormatRecommendationSummary formats category totals and lists the first
// customers of each non-green category.
func FormatRecommendationSummary(scope string, set *model.RecommendationSet) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧭 <b>Recommendations %s</b> | %s → %s\n\n", html.EscapeString(scope), set.From, set.To))

	counts := set.CountByCategory()
	for _, c := range model.Categories {
		b.WriteString(fmt.Sprintf("%s %s: %d\n", categoryIcons[c], c, counts[c]))
	}
	if set.Excluded > 0 {
		b.WriteString(fmt.Sprintf("⚠️ %d customers skipped (missing dates)\n", set.Excluded))
	}

	listed := [model.CategoryCount]int{}
	for _, r := range set.Records {
		if r.Category == model.DoingGreat || listed[r.Category] >= maxListed {
			continue
		}
		if listed[r.Category] == 0 {
			b.WriteString(fmt.Sprintf("\n%s <b>%s</b>\n", categoryIcons[r.Category], r.Category))
		}
		listed[r.Category]++
		b.WriteString(fmt.Sprintf("  • %s (%s → %s, %.0f → %.0f)", customerLabel(r), r.TierFrom, tierTo(r), r.RevenueFrom, r.RevenueTo))
		if !r.LastOrderDate.IsZero() {
			b.WriteString(fmt.Sprintf(", last order %s", r.LastOrderDate.Format("2006-01-02")))
		}
		b.WriteString("\n")
	}
	for _, c := range model.Categories {
		if more := counts[c] - listed[c]; c != model.DoingGreat && listed[c] > 0 && more > 0 {
			b.WriteString(fmt.Sprintf("… and %d more in %s\n", more, c))
		}
	}
	return b.String()
}

func customerLabel(r model.Recommendation) string {
	if r.CustomerName == "" {
		return html.EscapeString(r.CustomerID)
	}
	return html.EscapeString(r.CustomerName)
}

func tierTo(r model.Recommendation) string {
	if !r.ActiveInTo {
		return "inactive"
	}
	return r.TierTo.String()
}

// FormatGoalGaps formats merged goal rows for a month.
func FormatGoalGaps(ref model.YearMonth, rows []model.GoalRow) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎯 <b>Goals</b> | %s\n\n", ref))
	if len(rows) == 0 {
		b.WriteString("No goals set. Use -set-goal COUNTRY:SEGMENT:N.\n")
		return b.String()
	}
	country := ""
	for _, r := range rows {
		if r.Country != country {
			country = r.Country
			b.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(country)))
		}
		status := "✅"
		if r.Gap > 0 {
			status = fmt.Sprintf("%d to go", r.Gap)
		}
		b.WriteString(fmt.Sprintf("  %s: %d / %d %s\n", segmentLabel(r.Segment), r.Actual, r.Target, status))
	}
	return b.String()
}

func segmentLabel(name string) string {
	if seg, ok := model.ParseSegment(name); ok {
		return seg.Label()
	}
	return html.EscapeString(name)
}

// FormatRoster formats an account manager's customers, active ones marked
// green and lapsed ones red.
func FormatRoster(manager string, ref model.YearMonth, entries []report.RosterEntry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👤 <b>%s</b> | %s\n\n", html.EscapeString(manager), ref))
	active := 0
	for _, e := range entries {
		icon := "🔴"
		if e.ActiveInMonth {
			icon = "🟢"
			active++
		}
		name := e.CustomerName
		if name == "" {
			name = e.CustomerID
		}
		b.WriteString(fmt.Sprintf("%s %s (%s) last %s\n",
			icon, html.EscapeString(name), e.Segment.Label(), e.LastOrderDate.Format("2006-01-02")))
	}
	b.WriteString(fmt.Sprintf("\nActive: %d / %d\n", active, len(entries)))
	return b.String()
}

// FormatProfile formats one customer's detail view and suggested actions.
func FormatProfile(ref model.YearMonth, p *report.Profile) string {
	var b strings.Builder
	name := p.CustomerName
	if name == "" {
		name = p.CustomerID
	}
	b.WriteString(fmt.Sprintf("🏷️ <b>%s</b> (%s) | %s\n\n", html.EscapeString(name), html.EscapeString(p.CustomerID), ref))
	b.WriteString(fmt.Sprintf("Segment: %s, tier %s\n", p.Segment.Label(), p.Tier))
	b.WriteString(fmt.Sprintf("Total spend: %.2f € over %d orders\n", p.TotalSpend, p.Orders))
	b.WriteString(fmt.Sprintf("First order: %s\n", p.FirstOrderDate.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Last order: %s (%d days ago)\n", p.LastOrderDate.Format("2006-01-02"), p.DaysSinceLastOrder))
	if p.AccountManager != "" {
		b.WriteString(fmt.Sprintf("Account manager: %s\n", html.EscapeString(p.AccountManager)))
	}
	if len(p.Actions) > 0 {
		b.WriteString("\n<b>Actions</b>\n")
		for _, a := range p.Actions {
			b.WriteString("• " + html.EscapeString(a.Message) + "\n")
		}
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "🤖 <b>RetentionSentinel</b>\n\n" +
		"/retention [COUNTRY] - cohort rows for the reference month\n" +
		"/churn [COUNTRY] - month-over-month recommendations\n" +
		"/goals - goal progress per country and segment\n" +
		"/portfolio MANAGER - customers of an account manager\n" +
		"/client ID - profile and suggested actions for one customer\n" +
		"/help - this message\n"
}

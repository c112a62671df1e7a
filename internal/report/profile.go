package report

import (
	"fmt"
	"time"

	"RetentionSentinel/internal/model"
	"RetentionSentinel/internal/strategy"
)

// ReorderAfterDays is the silence after which a customer gets a reorder prompt.
const ReorderAfterDays = 15

// ActionKind names a rule-based action on a customer profile.
type ActionKind string

const (
	ActionStepUp  ActionKind = "step_up_effort"
	ActionKeep    ActionKind = "keep_effort"
	ActionReorder ActionKind = "reorder_prompt"
)

// Action is one suggestion for the account manager.
type Action struct {
	Kind    ActionKind
	Message string
}

// Profile is the detail view of one customer as seen from a reference month.
type Profile struct {
	CustomerID         string
	CustomerName       string
	Country            string
	AccountManager     string
	FirstOrderDate     time.Time
	LastOrderDate      time.Time
	DaysSinceLastOrder int
	TotalSpend         float64
	Orders             int
	Segment            model.Segment
	Tier               model.Tier // from the reference month's spend
	SpendPrevious      float64    // ref-1
	SpendCurrent       float64    // ref
	Actions            []Action
}

// CustomerProfile builds the profile of customer id from the orders placed
// up to the end of ref. now anchors the days-since-last-order count. The
// second result is false when the customer has no order by ref.
func CustomerProfile(l *model.Ledger, id string, ref model.YearMonth, now time.Time) (*Profile, bool) {
	first, ok := l.FirstOrderDate(id)
	if !ok || model.MonthOf(first).After(ref) {
		return nil, false
	}

	p := &Profile{CustomerID: id, FirstOrderDate: first}
	prev := ref.AddMonths(-1)
	for _, o := range l.Orders() {
		if o.CustomerID != id || o.Month().After(ref) {
			continue
		}
		if p.CustomerName == "" {
			p.CustomerName = o.CustomerName
		}
		if p.Country == "" {
			p.Country = o.Country
		}
		if p.AccountManager == "" {
			p.AccountManager = o.AccountManager
		}
		if o.OrderDate.After(p.LastOrderDate) {
			p.LastOrderDate = o.OrderDate
		}
		p.TotalSpend += o.Total
		p.Orders++
		switch {
		case ref.Contains(o.OrderDate):
			p.SpendCurrent += o.Total
		case prev.Contains(o.OrderDate):
			p.SpendPrevious += o.Total
		}
	}
	if p.Orders == 0 {
		return nil, false
	}

	p.Segment = strategy.ClassifySegment(model.MonthOf(first), ref)
	p.Tier = strategy.ClassifyTier(p.SpendCurrent)
	p.DaysSinceLastOrder = daysBetween(p.LastOrderDate, now)
	p.Actions = profileActions(p, prev, ref)
	return p, true
}

func profileActions(p *Profile, prev, ref model.YearMonth) []Action {
	var out []Action
	switch {
	case p.SpendCurrent < p.SpendPrevious:
		out = append(out, Action{ActionStepUp, fmt.Sprintf("Spend fell from %.2f in %s to %.2f in %s; step up recommendations.",
			p.SpendPrevious, prev, p.SpendCurrent, ref)})
	case p.SpendCurrent > p.SpendPrevious:
		out = append(out, Action{ActionKeep, fmt.Sprintf("Spend rose from %.2f in %s to %.2f in %s; keep the current recommendations.",
			p.SpendPrevious, prev, p.SpendCurrent, ref)})
	}
	if p.DaysSinceLastOrder > ReorderAfterDays {
		out = append(out, Action{ActionReorder, fmt.Sprintf("No order for %d days; suggest a reorder in other categories.",
			p.DaysSinceLastOrder)})
	}
	return out
}

// daysBetween counts calendar days from a to b, zero when b is not after a.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	if !db.After(da) {
		return 0
	}
	return int(db.Sub(da).Hours() / 24)
}

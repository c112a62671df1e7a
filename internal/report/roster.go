package report

import (
	"sort"
	"time"

	"RetentionSentinel/internal/model"
	"RetentionSentinel/internal/strategy"
)

// RosterEntry is one customer of a portfolio as seen from a reference month.
type RosterEntry struct {
	CustomerID     string
	CustomerName   string
	AccountManager string
	Country        string
	Segment        model.Segment
	LastOrderDate  time.Time
	ActiveInMonth  bool
}

// Roster lists every customer of the ledger acquired by ref, active or not,
// with its segment relative to ref. Sorted by customer id.
func Roster(l *model.Ledger, ref model.YearMonth) []RosterEntry {
	byID := make(map[string]*RosterEntry)
	for _, o := range l.Orders() {
		if o.Month().After(ref) {
			continue
		}
		e, ok := byID[o.CustomerID]
		if !ok {
			e = &RosterEntry{CustomerID: o.CustomerID}
			byID[o.CustomerID] = e
		}
		if e.CustomerName == "" {
			e.CustomerName = o.CustomerName
		}
		if e.AccountManager == "" {
			e.AccountManager = o.AccountManager
		}
		if e.Country == "" {
			e.Country = o.Country
		}
		if o.OrderDate.After(e.LastOrderDate) {
			e.LastOrderDate = o.OrderDate
		}
		if ref.Contains(o.OrderDate) {
			e.ActiveInMonth = true
		}
	}

	out := make([]RosterEntry, 0, len(byID))
	for id, e := range byID {
		first, ok := l.FirstOrderMonth(id)
		if !ok || first.After(ref) {
			continue
		}
		e.Segment = strategy.ClassifySegment(first, ref)
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out
}

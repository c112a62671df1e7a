package strategy

import (
	"sort"

	"RetentionSentinel/internal/model"
)

// CustomerMonths builds the per-customer table for ref: every customer
// with at least one order in ref, its revenue over the revenueWindow
// months ending at ref, and its tier and segment. A window below 1 is
// treated as 1 (ref only). The result is sorted by customer id.
func CustomerMonths(l *model.Ledger, ref model.YearMonth, revenueWindow int) []model.CustomerMonth {
	if revenueWindow < 1 {
		revenueWindow = 1
	}
	windowStart := ref.AddMonths(-(revenueWindow - 1))

	byID := make(map[string]*model.CustomerMonth)
	revenue := make(map[string]float64)

	for _, o := range l.Orders() {
		m := o.Month()
		if m.Before(windowStart) || m.After(ref) {
			continue
		}
		revenue[o.CustomerID] += o.Total
		if !m.Equal(ref) {
			continue
		}
		cm, ok := byID[o.CustomerID]
		if !ok {
			cm = &model.CustomerMonth{
				CustomerID:     o.CustomerID,
				CustomerName:   o.CustomerName,
				Country:        o.Country,
				AccountManager: o.AccountManager,
				Month:          ref,
			}
			byID[o.CustomerID] = cm
		}
		cm.Orders++
		if cm.CustomerName == "" {
			cm.CustomerName = o.CustomerName
		}
	}

	out := make([]model.CustomerMonth, 0, len(byID))
	for id, cm := range byID {
		first, _ := l.FirstOrderDate(id)
		last, _ := l.LastOrder(id)
		cm.FirstOrderDate = first
		cm.LastOrderDate = last
		cm.Revenue = revenue[id]
		cm.Tier = ClassifyTier(cm.Revenue)
		cm.Segment = ClassifySegment(model.MonthOf(first), ref)
		out = append(out, *cm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out
}

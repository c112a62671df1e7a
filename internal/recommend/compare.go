package recommend

import (
	"sort"

	"RetentionSentinel/internal/cohort"
	"RetentionSentinel/internal/model"
)

// Categorize picks the action for a customer seen in the earlier month.
// A tier change always wins over raw revenue; revenue only breaks ties
// inside an unchanged tier.
func Categorize(from model.CustomerMonth, to *model.CustomerMonth) model.Category {
	switch {
	case to == nil:
		return model.Reactivate
	case to.Tier < from.Tier:
		return model.Upsell
	case to.Tier > from.Tier:
		return model.DoingGreat
	case to.Revenue < from.Revenue:
		return model.CrossSell
	default:
		return model.DoingGreat
	}
}

// Compare left-joins the from table onto the to table by customer id and
// categorizes every customer of from. Customers with a missing first or
// last order date on either side are left out and counted in Excluded.
// Records are grouped by category in display order, keeping from's order
// inside each group.
func Compare(from, to []model.CustomerMonth) *model.RecommendationSet {
	set := &model.RecommendationSet{}
	if len(from) > 0 {
		set.From = from[0].Month
	}
	if len(to) > 0 {
		set.To = to[0].Month
	}

	later := make(map[string]*model.CustomerMonth, len(to))
	for i := range to {
		later[to[i].CustomerID] = &to[i]
	}

	for _, a := range from {
		b, present := later[a.CustomerID]
		if !usable(a) || (present && !usable(*b)) {
			set.Excluded++
			continue
		}
		if !present {
			b = nil
		}
		rec := model.Recommendation{
			CustomerID:     a.CustomerID,
			CustomerName:   a.CustomerName,
			Country:        a.Country,
			AccountManager: a.AccountManager,
			From:           a.Month,
			SegmentFrom:    a.Segment,
			TierFrom:       a.Tier,
			RevenueFrom:    a.Revenue,
			LastOrderDate:  a.LastOrderDate,
			Category:       Categorize(a, b),
		}
		if b != nil {
			rec.To = b.Month
			rec.ActiveInTo = true
			rec.SegmentTo = b.Segment
			rec.TierTo = b.Tier
			rec.RevenueTo = b.Revenue
			if b.LastOrderDate.After(rec.LastOrderDate) {
				rec.LastOrderDate = b.LastOrderDate
			}
			if rec.CustomerName == "" {
				rec.CustomerName = b.CustomerName
			}
		} else {
			rec.To = set.To
		}
		set.Records = append(set.Records, rec)
	}

	sort.SliceStable(set.Records, func(i, j int) bool {
		return set.Records[i].Category < set.Records[j].Category
	})
	return set
}

// CompareMonths aggregates both months from the ledger and compares them.
func CompareMonths(l *model.Ledger, from, to model.YearMonth, revenueWindow int) *model.RecommendationSet {
	a := cohort.AggregateWindow(l, from, revenueWindow)
	b := cohort.AggregateWindow(l, to, revenueWindow)
	set := Compare(a.Customers, b.Customers)
	set.From, set.To = from, to
	for i := range set.Records {
		set.Records[i].From = from
		set.Records[i].To = to
	}
	return set
}

func usable(cm model.CustomerMonth) bool {
	return !cm.FirstOrderDate.IsZero() && !cm.LastOrderDate.IsZero()
}

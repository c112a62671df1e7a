package cohort

import (
	"math"

	"RetentionSentinel/internal/model"
	"RetentionSentinel/internal/strategy"
)

// Aggregate computes the cohort snapshot for ref with revenue taken from
// ref alone.
func Aggregate(l *model.Ledger, ref model.YearMonth) *model.Snapshot {
	return AggregateWindow(l, ref, 1)
}

// AggregateWindow computes the cohort snapshot for ref; tiers use revenue
// over the revenueWindow months ending at ref.
//
// Count is the number of distinct customers active in ref per segment.
// Possible is the pool of customers already acquired by ref-1 whose
// first-order month places them in the segment for ref. PreviousActive
// is the part of that pool that ordered in ref-1. Acquisition has no
// pool, so both stay 0 for it.
func AggregateWindow(l *model.Ledger, ref model.YearMonth, revenueWindow int) *model.Snapshot {
	snap := &model.Snapshot{Month: ref}
	for _, seg := range model.Segments {
		snap.Rows[seg] = model.CohortRow{Month: ref, Segment: seg}
	}
	if l == nil {
		return snap
	}

	snap.Customers = strategy.CustomerMonths(l, ref, revenueWindow)
	snap.ActiveCustomers = len(snap.Customers)
	for _, cm := range snap.Customers {
		snap.Rows[cm.Segment].Count++
		snap.Matrix[cm.Segment][cm.Tier]++
	}

	prev := ref.AddMonths(-1)
	activePrev := l.ActiveIn(prev)
	for _, id := range l.Customers() {
		first, ok := l.FirstOrderMonth(id)
		if !ok || first.After(prev) {
			continue
		}
		seg := strategy.ClassifySegment(first, ref)
		snap.Rows[seg].Possible++
		if _, active := activePrev[id]; active {
			snap.Rows[seg].PreviousActive++
		}
	}

	for i := range snap.Rows {
		snap.Rows[i].Ratio = Ratio(snap.Rows[i].Count, snap.Rows[i].PreviousActive)
	}
	return snap
}

// Ratio returns count/base as a percentage rounded to one decimal, or 0
// when base is 0.
func Ratio(count, base int) float64 {
	if base == 0 {
		return 0
	}
	return round1(float64(count) / float64(base) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

package strategy

import "RetentionSentinel/internal/model"

// Lifecycle windows, in months between first order and reference month.
const (
	newlyReturningLag = 1
	recentlyActiveMin = 2
	recentlyActiveMax = 5
)

// ClassifySegment places a customer relative to the reference month by
// the month of its first-ever order:
//
//	same month        Acquisition
//	1 month before    NewlyReturning
//	2 to 5 months     RecentlyActive
//	more than 5       Established
//
// firstOrder must not be after ref; callers filter orders to ref first.
func ClassifySegment(firstOrder, ref model.YearMonth) model.Segment {
	lag := ref.MonthsSince(firstOrder)
	switch {
	case lag <= 0:
		return model.Acquisition
	case lag == newlyReturningLag:
		return model.NewlyReturning
	case lag <= recentlyActiveMax:
		return model.RecentlyActive
	default:
		return model.Established
	}
}

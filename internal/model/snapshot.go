package model

import "time"

// CustomerMonth is one customer's standing in a reference month.
type CustomerMonth struct {
	CustomerID     string
	CustomerName   string
	Country        string
	AccountManager string
	Month          YearMonth
	FirstOrderDate time.Time
	LastOrderDate  time.Time
	Revenue        float64
	Orders         int
	Tier           Tier
	Segment        Segment
}

// CohortRow is the per-segment line of a cohort snapshot.
type CohortRow struct {
	Month          YearMonth
	Segment        Segment
	Count          int     // distinct customers active in Month
	Possible       int     // pool that could land in Segment this month
	PreviousActive int     // pool members active the month before
	Ratio          float64 // Count / PreviousActive * 100, one decimal; 0 when PreviousActive is 0
}

// Snapshot is the cohort picture for one reference month.
type Snapshot struct {
	Month           YearMonth
	Rows            [SegmentCount]CohortRow
	Matrix          [SegmentCount][TierCount]int
	ActiveCustomers int
	Customers       []CustomerMonth // sorted by customer id
}

// Row returns the row for segment s.
func (s *Snapshot) Row(seg Segment) CohortRow { return s.Rows[seg] }

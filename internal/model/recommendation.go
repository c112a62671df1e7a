package model

import "time"

// Category is the action suggested for a customer after comparing two months.
type Category int

const (
	Reactivate Category = iota
	Upsell
	CrossSell
	DoingGreat
)

// Categories lists every category in display order.
var Categories = [...]Category{Reactivate, Upsell, CrossSell, DoingGreat}

// CategoryCount is the number of recommendation categories.
const CategoryCount = len(Categories)

var categoryNames = [...]string{
	"Reactivate / investigate churn",
	"Upsell opportunity",
	"Cross-sell / investigate spend cap",
	"Doing great",
}

// categoryColors follow the dashboard recap boxes: red, orange, yellow, green.
var categoryColors = [...]string{"#f8d7da", "#fd7e14", "#ffebcc", "#d4edda"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Color returns the display color of the category.
func (c Category) Color() string {
	if c < 0 || int(c) >= len(categoryColors) {
		return ""
	}
	return categoryColors[c]
}

// Recommendation compares one customer across two months, From and To.
type Recommendation struct {
	CustomerID     string
	CustomerName   string
	Country        string
	AccountManager string
	From           YearMonth
	To             YearMonth
	SegmentFrom    Segment
	TierFrom       Tier
	RevenueFrom    float64
	ActiveInTo     bool
	SegmentTo      Segment // meaningful only when ActiveInTo
	TierTo         Tier    // meaningful only when ActiveInTo
	RevenueTo      float64
	LastOrderDate  time.Time
	Category       Category
}

// RecommendationSet is the comparator output.
type RecommendationSet struct {
	From     YearMonth
	To       YearMonth
	Records  []Recommendation // grouped by category, display order
	Excluded int              // customers skipped for missing or unusable dates
}

// CountByCategory tallies records per category.
func (r *RecommendationSet) CountByCategory() [CategoryCount]int {
	var out [CategoryCount]int
	for _, rec := range r.Records {
		out[rec.Category]++
	}
	return out
}

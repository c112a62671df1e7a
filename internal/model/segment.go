package model

// Segment is a lifecycle segment relative to a reference month.
type Segment int

const (
	Acquisition Segment = iota
	NewlyReturning
	RecentlyActive
	Established
)

// Segments lists every segment in display order.
var Segments = [...]Segment{Acquisition, NewlyReturning, RecentlyActive, Established}

// SegmentCount is the number of lifecycle segments.
const SegmentCount = len(Segments)

var segmentNames = [...]string{"Acquisition", "NewlyReturning", "RecentlyActive", "Established"}

// segmentLabels are the account managers' names for each segment.
var segmentLabels = [...]string{"Acquisition", "Nouveaux Clients", "Clients Récents", "Anciens Clients"}

func (s Segment) String() string {
	if s < 0 || int(s) >= SegmentCount {
		return "Unknown"
	}
	return segmentNames[s]
}

// Label returns the dashboard label used in digests.
func (s Segment) Label() string {
	if s < 0 || int(s) >= SegmentCount {
		return "Unknown"
	}
	return segmentLabels[s]
}

// ParseSegment accepts either the canonical name or the dashboard label.
func ParseSegment(s string) (Segment, bool) {
	for i := range segmentNames {
		if s == segmentNames[i] || s == segmentLabels[i] {
			return Segment(i), true
		}
	}
	return 0, false
}

// Tier is a spend tier. Tiers are ordered: Basic < Silver < Gold < HighSpender.
type Tier int

const (
	Basic Tier = iota
	Silver
	Gold
	HighSpender
)

// Tiers lists every tier in ascending order.
var Tiers = [...]Tier{Basic, Silver, Gold, HighSpender}

// TierCount is the number of spend tiers.
const TierCount = len(Tiers)

var tierNames = [...]string{"Basic", "Silver", "Gold", "HighSpender"}

func (t Tier) String() string {
	if t < 0 || int(t) >= TierCount {
		return "Unknown"
	}
	return tierNames[t]
}

// ParseTier parses a canonical tier name.
func ParseTier(s string) (Tier, bool) {
	for i, n := range tierNames {
		if s == n {
			return Tier(i), true
		}
	}
	if s == "High Spenders" {
		return HighSpender, true
	}
	return 0, false
}

package model

import "time"

// Goal is an account-management target of active customers for a
// country and segment.
type Goal struct {
	Country   string    `json:"country"`
	Segment   string    `json:"segment"`
	Target    int       `json:"target"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GoalRow is a goal merged against the current cohort count.
type GoalRow struct {
	Country string
	Segment string
	Target  int
	Actual  int
	Gap     int // Target - Actual
}

package model

import "time"

// Round is the singleton gate deciding whether the game is live
type Round struct {
	IsActive  bool       `json:"isActive"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// RoundUpdate applies any subset of its fields
type RoundUpdate struct {
	IsActive  *bool
	StartTime *time.Time
	EndTime   *time.Time
}

// Apply mutates the round in place
func (r *Round) Apply(u RoundUpdate) {
	if u.IsActive != nil {
		r.IsActive = *u.IsActive
	}
	if u.StartTime != nil {
		t := *u.StartTime
		r.StartTime = &t
	}
	if u.EndTime != nil {
		t := *u.EndTime
		r.EndTime = &t
	}
}

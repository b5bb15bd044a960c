package model

import "time"

// CalibrationMission is a single-player code challenge against a station.
// At most one mission with Completed=false exists per owner.
type CalibrationMission struct {
	ID            string     `json:"id"`
	Owner         PlayerID   `json:"owner"`
	StationID     StationID  `json:"stationId"`
	Code          string     `json:"code"`
	TimeCreated   time.Time  `json:"timeCreated"`
	TimeCompleted *time.Time `json:"timeCompleted,omitempty"`
	Cancelled     bool       `json:"cancelled"`
	Completed     bool       `json:"completed"`
}

// Clone returns a deep copy
func (m *CalibrationMission) Clone() *CalibrationMission {
	c := *m
	if m.TimeCompleted != nil {
		at := *m.TimeCompleted
		c.TimeCompleted = &at
	}
	return &c
}

// Resolve marks the mission completed at the given time
func (m *CalibrationMission) Resolve(cancelled bool, at time.Time) {
	m.Completed = true
	m.Cancelled = cancelled
	m.TimeCompleted = &at
}

// CalibrationFilter narrows a mission listing. Nil fields match anything.
type CalibrationFilter struct {
	Owner     *PlayerID
	Completed *bool
}

// Match reports whether the mission satisfies the filter
func (f CalibrationFilter) Match(m *CalibrationMission) bool {
	if f.Owner != nil && m.Owner != *f.Owner {
		return false
	}
	if f.Completed != nil && m.Completed != *f.Completed {
		return false
	}
	return true
}

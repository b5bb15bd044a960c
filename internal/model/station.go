package model

import "time"

// StationID identifies a capturable station
type StationID int

// Station is a capturable game object fought over by teams
type Station struct {
	StationID         StationID `json:"stationId"`
	StationName       string    `json:"stationName"`
	SignalValue       int       `json:"signalValue"`
	IsActive          bool      `json:"isActive"`
	Owner             *TeamID   `json:"owner,omitempty"`
	IsUnderAttack     bool      `json:"isUnderAttack"`
	CalibrationReward int       `json:"calibrationReward"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// OwnershipChange is one of ClearOwner, SetOwner or SetUnderAttack.
// A single station update applies at most one of them.
type OwnershipChange interface {
	isOwnershipChange()
}

// ClearOwner unsets the owner and forces isUnderAttack to false
type ClearOwner struct{}

// SetOwner hands the station to a team and forces isUnderAttack to false
type SetOwner struct {
	TeamID TeamID
}

// SetUnderAttack sets only the under-attack flag
type SetUnderAttack struct {
	Value bool
}

func (ClearOwner) isOwnershipChange()     {}
func (SetOwner) isOwnershipChange()       {}
func (SetUnderAttack) isOwnershipChange() {}

// StationUpdate is a patch for a single station. Nil fields are left alone.
type StationUpdate struct {
	Ownership         OwnershipChange
	IsActive          *bool
	StationName       *string
	CalibrationReward *int
}

// Apply mutates the station in place
func (s *Station) Apply(u StationUpdate) {
	switch o := u.Ownership.(type) {
	case ClearOwner:
		s.Owner = nil
		s.IsUnderAttack = false
	case SetOwner:
		owner := o.TeamID
		s.Owner = &owner
		s.IsUnderAttack = false
	case SetUnderAttack:
		s.IsUnderAttack = o.Value
	}
	if u.IsActive != nil {
		s.IsActive = *u.IsActive
	}
	if u.StationName != nil {
		s.StationName = *u.StationName
	}
	if u.CalibrationReward != nil {
		s.CalibrationReward = *u.CalibrationReward
	}
}

// Clone returns a deep copy
func (s *Station) Clone() *Station {
	c := *s
	if s.Owner != nil {
		owner := *s.Owner
		c.Owner = &owner
	}
	return &c
}

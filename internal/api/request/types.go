package request

import (
	"time"

	"github.com/mcoot/lanterngame/internal/model"
)

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// JoinTeamRequest is the request body for joining a team
type JoinTeamRequest struct {
	TeamID int `json:"team_id"`
}

// CreateStationRequest is the request body for creating a station.
// A zero calibration reward gets the configured default.
type CreateStationRequest struct {
	StationID         int    `json:"station_id"`
	StationName       string `json:"station_name"`
	SignalValue       int    `json:"signal_value"`
	IsActive          *bool  `json:"is_active,omitempty"`
	CalibrationReward int    `json:"calibration_reward,omitempty"`
}

// ToModel converts the request; stations are active unless stated otherwise
func (r CreateStationRequest) ToModel() model.Station {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return model.Station{
		StationID:         model.StationID(r.StationID),
		StationName:       r.StationName,
		SignalValue:       r.SignalValue,
		IsActive:          active,
		CalibrationReward: r.CalibrationReward,
	}
}

// UpdateStationRequest patches a station. At most one of ResetOwner, Owner
// and IsUnderAttack may be set.
type UpdateStationRequest struct {
	ResetOwner        bool    `json:"reset_owner,omitempty"`
	Owner             *int    `json:"owner,omitempty"`
	IsUnderAttack     *bool   `json:"is_under_attack,omitempty"`
	IsActive          *bool   `json:"is_active,omitempty"`
	StationName       *string `json:"station_name,omitempty"`
	CalibrationReward *int    `json:"calibration_reward,omitempty"`
}

// ClearOwnerSentinel in the owner field clears ownership like reset_owner
const ClearOwnerSentinel = -1

// ToModel converts the request, rejecting more than one ownership branch
func (r UpdateStationRequest) ToModel() (model.StationUpdate, error) {
	update := model.StationUpdate{
		IsActive:          r.IsActive,
		StationName:       r.StationName,
		CalibrationReward: r.CalibrationReward,
	}

	branches := 0
	if r.ResetOwner || (r.Owner != nil && *r.Owner == ClearOwnerSentinel) {
		update.Ownership = model.ClearOwner{}
		branches++
	}
	if r.Owner != nil && *r.Owner != ClearOwnerSentinel {
		update.Ownership = model.SetOwner{TeamID: model.TeamID(*r.Owner)}
		branches++
	}
	if r.IsUnderAttack != nil {
		update.Ownership = model.SetUnderAttack{Value: *r.IsUnderAttack}
		branches++
	}
	if branches > 1 {
		return model.StationUpdate{}, model.Invalid("owner", "reset_owner, owner and is_under_attack are mutually exclusive")
	}
	return update, nil
}

// ResetSignalsRequest sets every station's signal value
type ResetSignalsRequest struct {
	Value int `json:"value"`
}

// CreateTeamRequest is the request body for creating a team
type CreateTeamRequest struct {
	TeamID    int    `json:"team_id"`
	TeamName  string `json:"team_name"`
	ShortName string `json:"short_name"`
	IsActive  *bool  `json:"is_active,omitempty"`
}

// ToModel converts the request; teams are active unless stated otherwise
func (r CreateTeamRequest) ToModel() model.Team {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return model.Team{
		TeamID:    model.TeamID(r.TeamID),
		TeamName:  r.TeamName,
		ShortName: r.ShortName,
		IsActive:  active,
	}
}

// UpdateTeamRequest patches a team. reset_points wins over points.
type UpdateTeamRequest struct {
	IsActive    *bool   `json:"is_active,omitempty"`
	TeamName    *string `json:"team_name,omitempty"`
	ShortName   *string `json:"short_name,omitempty"`
	Points      *int    `json:"points,omitempty"`
	ResetPoints bool    `json:"reset_points,omitempty"`
}

// ToModel converts the request
func (r UpdateTeamRequest) ToModel() model.TeamUpdate {
	return model.TeamUpdate{
		IsActive:    r.IsActive,
		TeamName:    r.TeamName,
		ShortName:   r.ShortName,
		Points:      r.Points,
		ResetPoints: r.ResetPoints,
	}
}

// UpdateRoundRequest patches the round
type UpdateRoundRequest struct {
	IsActive  *bool      `json:"is_active,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// ToModel converts the request
func (r UpdateRoundRequest) ToModel() model.RoundUpdate {
	return model.RoundUpdate{
		IsActive:  r.IsActive,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
}

// GameUser is one identity in a seeding request
type GameUser struct {
	UserName  string   `json:"user_name"`
	Passwords []string `json:"passwords"`
	StationID *int     `json:"station_id,omitempty"`
}

// SeedGameUsersRequest seeds the identity pool
type SeedGameUsersRequest struct {
	GameUsers []GameUser `json:"game_users"`
}

// ToModel converts the request
func (r SeedGameUsersRequest) ToModel() []model.GameUser {
	users := make([]model.GameUser, len(r.GameUsers))
	for i, u := range r.GameUsers {
		users[i] = model.GameUser{UserName: u.UserName, Passwords: u.Passwords}
		if u.StationID != nil {
			id := model.StationID(*u.StationID)
			users[i].StationID = &id
		}
	}
	return users
}

// AddFakePasswordsRequest grows the fake password pool
type AddFakePasswordsRequest struct {
	Passwords []string `json:"passwords"`
}

// StartHackRequest opens a hack session
type StartHackRequest struct {
	StationID int `json:"station_id"`
}

// Coordinates is an optional player position
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GuessRequest submits a credential against the live hack session
type GuessRequest struct {
	UserName    string       `json:"user_name"`
	Password    string       `json:"password"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// ToModel converts the request
func (r GuessRequest) ToModel() (model.Credential, *model.Coordinates) {
	guess := model.Credential{UserName: r.UserName, Password: r.Password}
	if r.Coordinates == nil {
		return guess, nil
	}
	return guess, &model.Coordinates{Latitude: r.Coordinates.Latitude, Longitude: r.Coordinates.Longitude}
}

// StartCalibrationRequest opens a calibration mission
type StartCalibrationRequest struct {
	StationID int `json:"station_id"`
}

// CompleteCalibrationRequest submits a mission code
type CompleteCalibrationRequest struct {
	Code string `json:"code"`
}

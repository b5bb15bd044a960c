package response

import (
	"time"

	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/services/auth"
	"github.com/mcoot/lanterngame/internal/services/calibration"
	"github.com/mcoot/lanterngame/internal/services/hacking"
	"github.com/mcoot/lanterngame/internal/services/scoring"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
	TeamID      *int   `json:"team_id,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	player := Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
	if p.TeamID != nil {
		id := int(*p.TeamID)
		player.TeamID = &id
	}
	return player
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// Wallet is a player's balance
type Wallet struct {
	Balance int `json:"balance"`
}

// Station represents a station in API responses
type Station struct {
	StationID         int       `json:"station_id"`
	StationName       string    `json:"station_name"`
	SignalValue       int       `json:"signal_value"`
	IsActive          bool      `json:"is_active"`
	Owner             *int      `json:"owner,omitempty"`
	IsUnderAttack     bool      `json:"is_under_attack"`
	CalibrationReward int       `json:"calibration_reward"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// StationFromModel converts model.Station
func StationFromModel(s *model.Station) Station {
	station := Station{
		StationID:         int(s.StationID),
		StationName:       s.StationName,
		SignalValue:       s.SignalValue,
		IsActive:          s.IsActive,
		IsUnderAttack:     s.IsUnderAttack,
		CalibrationReward: s.CalibrationReward,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.Owner != nil {
		owner := int(*s.Owner)
		station.Owner = &owner
	}
	return station
}

// StationsFromModel converts a station list
func StationsFromModel(stations []*model.Station) []Station {
	out := make([]Station, len(stations))
	for i, s := range stations {
		out[i] = StationFromModel(s)
	}
	return out
}

// Team represents a team in API responses
type Team struct {
	TeamID    int    `json:"team_id"`
	TeamName  string `json:"team_name"`
	ShortName string `json:"short_name"`
	Points    int    `json:"points"`
	IsActive  bool   `json:"is_active"`
}

// TeamFromModel converts model.Team
func TeamFromModel(t *model.Team) Team {
	return Team{
		TeamID:    int(t.TeamID),
		TeamName:  t.TeamName,
		ShortName: t.ShortName,
		Points:    t.Points,
		IsActive:  t.IsActive,
	}
}

// TeamsFromModel converts a team list
func TeamsFromModel(teams []*model.Team) []Team {
	out := make([]Team, len(teams))
	for i, t := range teams {
		out[i] = TeamFromModel(t)
	}
	return out
}

// Standing is one scoreboard row
type Standing struct {
	Rank         int  `json:"rank"`
	Team         Team `json:"team"`
	StationCount int  `json:"station_count"`
	TotalSignal  int  `json:"total_signal"`
}

// StandingsFromModel converts an ordered scoreboard
func StandingsFromModel(standings []model.Standing) []Standing {
	out := make([]Standing, len(standings))
	for i, s := range standings {
		out[i] = Standing{
			Rank:         i + 1,
			Team:         TeamFromModel(&s.Team),
			StationCount: s.StationCount,
			TotalSignal:  s.TotalSignal,
		}
	}
	return out
}

// Round represents the round in API responses
type Round struct {
	IsActive  bool       `json:"is_active"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// RoundFromModel converts model.Round
func RoundFromModel(r *model.Round) Round {
	return Round{IsActive: r.IsActive, StartTime: r.StartTime, EndTime: r.EndTime}
}

// GameUser is an identity in the admin pool listing
type GameUser struct {
	UserName  string   `json:"user_name"`
	Passwords []string `json:"passwords"`
	StationID *int     `json:"station_id,omitempty"`
}

// GameUsersFromModel converts the identity pool
func GameUsersFromModel(users []*model.GameUser) []GameUser {
	out := make([]GameUser, len(users))
	for i, u := range users {
		out[i] = GameUser{UserName: u.UserName, Passwords: u.Passwords}
		if u.StationID != nil {
			id := int(*u.StationID)
			out[i].StationID = &id
		}
	}
	return out
}

// SeedResult reports how many identities a seeding request created
type SeedResult struct {
	Submitted int `json:"submitted"`
	Created   int `json:"created"`
}

// FakePasswords is the fake password pool
type FakePasswords struct {
	Passwords []string `json:"passwords"`
}

// Hint reveals one character of an entry's password
type Hint struct {
	Index     int    `json:"index"`
	Character string `json:"character"`
}

// HackEntry is a credential as shown to the player. Whether it is correct
// and where its password came from are never exposed.
type HackEntry struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
	Hint     Hint   `json:"hint"`
}

// Coordinates is a resolved session's recorded position
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HackSession is the player's view of a session
type HackSession struct {
	StationID     int          `json:"station_id"`
	TriesLeft     int          `json:"tries_left"`
	Entries       []HackEntry  `json:"entries"`
	Done          bool         `json:"done"`
	WasSuccessful bool         `json:"was_successful"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	StartedAt     time.Time    `json:"started_at"`
	ResolvedAt    *time.Time   `json:"resolved_at,omitempty"`
}

// HackSessionFromModel converts model.HackSession into the player view
func HackSessionFromModel(h *model.HackSession) HackSession {
	entries := make([]HackEntry, len(h.GameUsers))
	for i, e := range h.GameUsers {
		entries[i] = HackEntry{
			UserName: e.UserName,
			Password: e.Password,
			Hint:     Hint{Index: e.PasswordHint.Index, Character: e.PasswordHint.Character},
		}
	}
	session := HackSession{
		StationID:     int(h.StationID),
		TriesLeft:     h.TriesLeft,
		Entries:       entries,
		Done:          h.Done,
		WasSuccessful: h.WasSuccessful,
		StartedAt:     h.StartedAt,
		ResolvedAt:    h.ResolvedAt,
	}
	if h.Coordinates != nil {
		session.Coordinates = &Coordinates{Latitude: h.Coordinates.Latitude, Longitude: h.Coordinates.Longitude}
	}
	return session
}

// Capture describes a station changing hands
type Capture struct {
	Station Station `json:"station"`
	Team    Team    `json:"team"`
	Awarded int     `json:"awarded"`
}

func captureFromModel(c *scoring.Capture) *Capture {
	if c == nil {
		return nil
	}
	return &Capture{Station: StationFromModel(c.Station), Team: TeamFromModel(c.Team), Awarded: c.Awarded}
}

// GuessResponse is the response after a guess. A guess that used the last
// try is resolved as failed before responding.
type GuessResponse struct {
	Correct bool        `json:"correct"`
	Session HackSession `json:"session"`
	Capture *Capture    `json:"capture,omitempty"`
}

// GuessResponseFromResult builds the response from the engine results
func GuessResponseFromResult(result *hacking.GuessResult, resolution *hacking.Resolution) GuessResponse {
	session := result.Session
	if resolution != nil {
		session = resolution.Session
	}
	return GuessResponse{
		Correct: result.Correct,
		Session: HackSessionFromModel(session),
		Capture: captureFromModel(result.Capture),
	}
}

// Resolution is the response after a session was resolved
type Resolution struct {
	Session HackSession `json:"session"`
	Capture *Capture    `json:"capture,omitempty"`
}

// ResolutionFromModel converts hacking.Resolution
func ResolutionFromModel(r *hacking.Resolution) Resolution {
	return Resolution{Session: HackSessionFromModel(r.Session), Capture: captureFromModel(r.Capture)}
}

// CalibrationMission represents a mission in API responses
type CalibrationMission struct {
	ID            string     `json:"id"`
	Owner         string     `json:"owner"`
	StationID     int        `json:"station_id"`
	Code          string     `json:"code"`
	TimeCreated   time.Time  `json:"time_created"`
	TimeCompleted *time.Time `json:"time_completed,omitempty"`
	Completed     bool       `json:"completed"`
	Cancelled     bool       `json:"cancelled"`
}

// CalibrationMissionFromModel converts model.CalibrationMission
func CalibrationMissionFromModel(m *model.CalibrationMission) CalibrationMission {
	return CalibrationMission{
		ID:            m.ID,
		Owner:         string(m.Owner),
		StationID:     int(m.StationID),
		Code:          m.Code,
		TimeCreated:   m.TimeCreated,
		TimeCompleted: m.TimeCompleted,
		Completed:     m.Completed,
		Cancelled:     m.Cancelled,
	}
}

// CalibrationMissionsFromModel converts a mission list
func CalibrationMissionsFromModel(missions []*model.CalibrationMission) []CalibrationMission {
	out := make([]CalibrationMission, len(missions))
	for i, m := range missions {
		out[i] = CalibrationMissionFromModel(m)
	}
	return out
}

// ActiveCalibration reports the player's unresolved mission, if any
type ActiveCalibration struct {
	Active  bool                `json:"active"`
	Mission *CalibrationMission `json:"mission,omitempty"`
}

// Completion is the response after completing a mission
type Completion struct {
	Mission CalibrationMission `json:"mission"`
	Reward  int                `json:"reward"`
	Balance int                `json:"balance"`
}

// CompletionFromModel converts calibration.Completion
func CompletionFromModel(c *calibration.Completion) Completion {
	return Completion{Mission: CalibrationMissionFromModel(c.Mission), Reward: c.Reward, Balance: c.Balance}
}

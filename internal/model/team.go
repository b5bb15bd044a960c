package model

import "time"

// TeamID identifies a competing team
type TeamID int

// Team competes for stations. TeamID, TeamName and ShortName are each unique.
type Team struct {
	TeamID    TeamID    `json:"teamId"`
	TeamName  string    `json:"teamName"`
	ShortName string    `json:"shortName"`
	Points    int       `json:"points"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TeamUpdate is a patch for a single team.
// ResetPoints wins over Points when both are set.
type TeamUpdate struct {
	IsActive    *bool
	TeamName    *string
	ShortName   *string
	Points      *int
	ResetPoints bool
}

// Apply mutates the team in place
func (t *Team) Apply(u TeamUpdate) {
	if u.IsActive != nil {
		t.IsActive = *u.IsActive
	}
	if u.TeamName != nil {
		t.TeamName = *u.TeamName
	}
	if u.ShortName != nil {
		t.ShortName = *u.ShortName
	}
	switch {
	case u.ResetPoints:
		t.Points = 0
	case u.Points != nil:
		t.Points = *u.Points
	}
}

// Standing is a team's position on the scoreboard
type Standing struct {
	Team         Team `json:"team"`
	StationCount int  `json:"stationCount"`
	TotalSignal  int  `json:"totalSignal"`
}

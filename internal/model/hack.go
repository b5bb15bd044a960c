package model

import "time"

// PasswordType tells where an entry's password was drawn from
type PasswordType string

const (
	PasswordTypeUser PasswordType = "user"
	PasswordTypeFake PasswordType = "fake"
)

// PasswordHint reveals a single character of an entry's password
type PasswordHint struct {
	Index     int    `json:"index"`
	Character string `json:"character"`
}

// GameUserEntry is one credential offered in a hack session
type GameUserEntry struct {
	UserName     string       `json:"userName"`
	Password     string       `json:"password"`
	IsCorrect    bool         `json:"isCorrect"`
	PasswordType PasswordType `json:"passwordType"`
	PasswordHint PasswordHint `json:"passwordHint"`
}

// Coordinates is where the player stood when the session resolved
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Credential is a guess submitted against a hack session
type Credential struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// HackSession binds a player to a station for one capture attempt.
// At most one session exists per owner.
type HackSession struct {
	Owner         PlayerID        `json:"owner"`
	StationID     StationID       `json:"stationId"`
	TriesLeft     int             `json:"triesLeft"`
	GameUsers     []GameUserEntry `json:"gameUsers"`
	Done          bool            `json:"done"`
	WasSuccessful bool            `json:"wasSuccessful"`
	Coordinates   *Coordinates    `json:"coordinates,omitempty"`
	StartedAt     time.Time       `json:"startedAt"`
	ResolvedAt    *time.Time      `json:"resolvedAt,omitempty"`
}

// Matches reports whether the guess names the entry flagged correct
func (h *HackSession) Matches(guess Credential) bool {
	for _, e := range h.GameUsers {
		if e.IsCorrect {
			return e.UserName == guess.UserName && e.Password == guess.Password
		}
	}
	return false
}

// Clone returns a deep copy
func (h *HackSession) Clone() *HackSession {
	c := *h
	c.GameUsers = append([]GameUserEntry(nil), h.GameUsers...)
	if h.Coordinates != nil {
		coords := *h.Coordinates
		c.Coordinates = &coords
	}
	if h.ResolvedAt != nil {
		at := *h.ResolvedAt
		c.ResolvedAt = &at
	}
	return &c
}

// HackSessionFilter narrows a session lookup. Nil fields match anything.
type HackSessionFilter struct {
	StationID *StationID
	Done      *bool
}

// Match reports whether the session satisfies the filter
func (f HackSessionFilter) Match(h *HackSession) bool {
	if f.StationID != nil && h.StationID != *f.StationID {
		return false
	}
	if f.Done != nil && h.Done != *f.Done {
		return false
	}
	return true
}

// HackResolution is the outcome written when a session is finalized
type HackResolution struct {
	WasSuccessful bool
	Coordinates   *Coordinates
	ResolvedAt    time.Time
}

// Apply finalizes the session in place
func (h *HackSession) Apply(r HackResolution) {
	h.Done = true
	h.WasSuccessful = r.WasSuccessful
	if r.Coordinates != nil {
		coords := *r.Coordinates
		h.Coordinates = &coords
	}
	at := r.ResolvedAt
	h.ResolvedAt = &at
}

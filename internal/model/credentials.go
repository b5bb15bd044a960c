package model

// GameUser is a decoy identity mixed into hack sessions
type GameUser struct {
	UserName  string     `json:"userName"`
	Passwords []string   `json:"passwords"`
	StationID *StationID `json:"stationId,omitempty"`
}

// FakePasswordContainer is the singleton pool of free-standing decoy passwords
type FakePasswordContainer struct {
	Passwords []string `json:"passwords"`
}

package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is an authenticated participant in the game
type Player struct {
	ID          PlayerID  `json:"id"`
	DisplayName string    `json:"displayName"`
	IsGuest     bool      `json:"isGuest"` // true for unregistered players
	TeamID      *TeamID   `json:"teamId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RegisteredPlayer extends Player with authentication data
// Stored separately so the hash never travels with a session
type RegisteredPlayer struct {
	PlayerID     PlayerID  `json:"playerId"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

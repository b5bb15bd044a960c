package auth

//go:generate mockgen -source=interfaces.go -destination=../../mock/roster_mock.go -package=mock

import (
	"context"

	"github.com/mcoot/lanterngame/internal/model"
)

// Roster resolves a player's team membership
type Roster interface {
	// TeamOf fails with model.ErrNoTeam when the player has not joined a team
	TeamOf(ctx context.Context, owner model.PlayerID) (model.TeamID, error)
}

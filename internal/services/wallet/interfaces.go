package wallet

//go:generate mockgen -source=interfaces.go -destination=../../mock/ledger_mock.go -package=mock

import (
	"context"

	"github.com/mcoot/lanterngame/internal/model"
)

// Ledger credits currency to a player
type Ledger interface {
	// Credit adds amount to the owner's balance and returns the new balance
	Credit(ctx context.Context, owner model.PlayerID, amount int) (int, error)
}

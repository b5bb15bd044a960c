// Package wallet is the minimal per-player currency ledger that calibration
// rewards are paid into.
package wallet

import (
	"context"

	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
)

// Service stores balances through the wallet store
type Service struct {
	storage storage.WalletStore
	logger  *logger.Logger
}

var _ Ledger = (*Service)(nil)

// New creates a new wallet Service
func New(store storage.WalletStore, log *logger.Logger) *Service {
	return &Service{
		storage: store,
		logger:  log.WithStr("service", "wallet"),
	}
}

// Credit adds a non-negative amount to the owner's balance
func (s *Service) Credit(ctx context.Context, owner model.PlayerID, amount int) (int, error) {
	if amount < 0 {
		return 0, model.Invalid("amount", "must not be negative")
	}

	balance, err := s.storage.AddToWallet(ctx, owner, amount)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", string(owner)).Msg("failed to credit wallet")
		return 0, err
	}

	s.logger.Info().
		Str("owner", string(owner)).
		Int("amount", amount).
		Int("balance", balance).
		Msg("wallet credited")
	return balance, nil
}

// Balance returns the owner's balance, zero for an unknown owner
func (s *Service) Balance(ctx context.Context, owner model.PlayerID) (int, error) {
	return s.storage.GetWalletBalance(ctx, owner)
}

// Package credentials manages the decoy identity pools hack sessions are
// built from.
package credentials

import (
	"context"
	"strings"

	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
)

// Service seeds and lists game users and fake passwords
type Service struct {
	storage storage.CredentialStore
	logger  *logger.Logger
}

// New creates a new credentials Service
func New(store storage.CredentialStore, log *logger.Logger) *Service {
	return &Service{
		storage: store,
		logger:  log.WithStr("service", "credentials"),
	}
}

// SeedGameUsers inserts every user whose name is not taken yet and returns
// how many were created. Existing users are left untouched.
func (s *Service) SeedGameUsers(ctx context.Context, users []model.GameUser) (int, error) {
	for i := range users {
		users[i].UserName = strings.TrimSpace(users[i].UserName)
		if users[i].UserName == "" {
			return 0, model.Invalid("userName", "must not be empty")
		}
	}

	created := 0
	for i := range users {
		ok, err := s.storage.CreateGameUserIfAbsent(ctx, &users[i])
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	s.logger.Info().Int("submitted", len(users)).Int("created", created).Msg("game users seeded")
	return created, nil
}

// ListGameUsers returns the identity pool sorted by name
func (s *Service) ListGameUsers(ctx context.Context) ([]*model.GameUser, error) {
	return s.storage.ListGameUsers(ctx)
}

// AddFakePasswords grows the free-standing password pool and returns it
func (s *Service) AddFakePasswords(ctx context.Context, passwords []string) ([]string, error) {
	cleaned := make([]string, 0, len(passwords))
	for _, p := range passwords {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, model.Invalid("passwords", "must not contain empty values")
		}
		cleaned = append(cleaned, p)
	}

	pool, err := s.storage.AddFakePasswords(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("added", len(cleaned)).Int("pool_size", len(pool)).Msg("fake passwords added")
	return pool, nil
}

// ListFakePasswords returns the free-standing password pool
func (s *Service) ListFakePasswords(ctx context.Context) ([]string, error) {
	return s.storage.GetFakePasswords(ctx)
}

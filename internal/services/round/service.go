// Package round owns the singleton round that gates play
package round

import (
	"context"
	"errors"

	"github.com/mcoot/lanterngame/internal/dependencies/clock"
	"github.com/mcoot/lanterngame/internal/events"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
)

// Store is the subset of storage the round service needs
type Store interface {
	storage.RoundStore
	storage.CredentialStore
}

// Service reads and toggles the round
type Service struct {
	storage   Store
	publisher events.Publisher
	clock     clock.Clock
	logger    *logger.Logger
}

// New creates a new round Service
func New(store Store, publisher events.Publisher, clk clock.Clock, log *logger.Logger) *Service {
	return &Service{
		storage:   store,
		publisher: publisher,
		clock:     clk,
		logger:    log.WithStr("service", "round"),
	}
}

// Bootstrap creates the round and the fake password container if they do
// not exist yet. Safe to call on every start, from every instance.
func (s *Service) Bootstrap(ctx context.Context) error {
	created, err := s.storage.CreateRoundIfAbsent(ctx, &model.Round{})
	if err != nil {
		return err
	}
	if created {
		s.logger.Info().Msg("round created")
	}

	created, err = s.storage.CreateFakePasswordContainerIfAbsent(ctx)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info().Msg("fake password container created")
	}
	return nil
}

// Get returns the round
func (s *Service) Get(ctx context.Context) (*model.Round, error) {
	return s.storage.GetRound(ctx)
}

// Update applies any subset of the round's fields
func (s *Service) Update(ctx context.Context, update model.RoundUpdate) (*model.Round, error) {
	if update.StartTime != nil && update.EndTime != nil && update.EndTime.Before(*update.StartTime) {
		return nil, model.Invalid("endTime", "must not precede startTime")
	}

	round, err := s.storage.UpdateRound(ctx, update)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.New(model.ChangeUpdate, model.EntityRound, round, s.clock.Now()))
	return round, nil
}

// Start opens the round now
func (s *Service) Start(ctx context.Context) (*model.Round, error) {
	active := true
	now := s.clock.Now()
	round, err := s.Update(ctx, model.RoundUpdate{IsActive: &active, StartTime: &now})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Time("start_time", now).Msg("round started")
	return round, nil
}

// Stop closes the round now
func (s *Service) Stop(ctx context.Context) (*model.Round, error) {
	active := false
	now := s.clock.Now()
	round, err := s.Update(ctx, model.RoundUpdate{IsActive: &active, EndTime: &now})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Time("end_time", now).Msg("round stopped")
	return round, nil
}

// RequireActive fails with model.ErrRoundNotActive unless play is open.
// A round that was never bootstrapped counts as inactive.
func (s *Service) RequireActive(ctx context.Context) error {
	round, err := s.storage.GetRound(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrRoundNotActive
	}
	if err != nil {
		return err
	}
	if !round.IsActive {
		return model.ErrRoundNotActive
	}
	return nil
}

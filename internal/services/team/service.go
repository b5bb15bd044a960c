// Package team is the registry of competing teams
package team

import (
	"context"
	"strings"

	"github.com/mcoot/lanterngame/internal/dependencies/clock"
	"github.com/mcoot/lanterngame/internal/events"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
)

// Service manages team records and announces their changes
type Service struct {
	storage   storage.TeamStore
	publisher events.Publisher
	clock     clock.Clock
	logger    *logger.Logger
}

// New creates a new team Service
func New(store storage.TeamStore, publisher events.Publisher, clk clock.Clock, log *logger.Logger) *Service {
	return &Service{
		storage:   store,
		publisher: publisher,
		clock:     clk,
		logger:    log.WithStr("service", "team"),
	}
}

// Create registers a new team with zero points
func (s *Service) Create(ctx context.Context, team model.Team) (*model.Team, error) {
	team.TeamName = strings.TrimSpace(team.TeamName)
	team.ShortName = strings.TrimSpace(team.ShortName)
	if err := validateNames(&team.TeamName, &team.ShortName); err != nil {
		return nil, err
	}
	if team.Points < 0 {
		return nil, model.Invalid("points", "must not be negative")
	}

	now := s.clock.Now()
	team.CreatedAt = now
	team.UpdatedAt = now

	if err := s.storage.CreateTeam(ctx, &team); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("team_id", int(team.TeamID)).
		Str("team_name", team.TeamName).
		Msg("team created")
	s.publisher.Publish(ctx, events.New(model.ChangeCreate, model.EntityTeam, &team, now))
	return &team, nil
}

// Get returns a single team
func (s *Service) Get(ctx context.Context, id model.TeamID) (*model.Team, error) {
	return s.storage.GetTeam(ctx, id)
}

// List returns every team sorted by id
func (s *Service) List(ctx context.Context) ([]*model.Team, error) {
	return s.storage.ListTeams(ctx)
}

// Update applies a patch to one team. Renames still honour name uniqueness.
func (s *Service) Update(ctx context.Context, id model.TeamID, update model.TeamUpdate) (*model.Team, error) {
	if update.TeamName != nil {
		name := strings.TrimSpace(*update.TeamName)
		if name == "" {
			return nil, model.Invalid("teamName", "must not be empty")
		}
		update.TeamName = &name
	}
	if update.ShortName != nil {
		short := strings.TrimSpace(*update.ShortName)
		if short == "" {
			return nil, model.Invalid("shortName", "must not be empty")
		}
		update.ShortName = &short
	}
	if update.Points != nil && *update.Points < 0 {
		return nil, model.Invalid("points", "must not be negative")
	}

	team, err := s.storage.UpdateTeam(ctx, id, update)
	if err != nil {
		return nil, err
	}

	if update.ResetPoints {
		s.logger.Info().Int("team_id", int(id)).Msg("team points reset")
	}
	s.publisher.Publish(ctx, events.New(model.ChangeUpdate, model.EntityTeam, team, s.clock.Now()))
	return team, nil
}

// ResetAllPoints zeroes every team's score
func (s *Service) ResetAllPoints(ctx context.Context) ([]*model.Team, error) {
	teams, err := s.storage.ListTeams(ctx)
	if err != nil {
		return nil, err
	}

	reset := make([]*model.Team, 0, len(teams))
	for _, t := range teams {
		updated, err := s.Update(ctx, t.TeamID, model.TeamUpdate{ResetPoints: true})
		if err != nil {
			return nil, err
		}
		reset = append(reset, updated)
	}
	return reset, nil
}

// Remove deletes a team unconditionally. Stations it owns keep the stale id.
func (s *Service) Remove(ctx context.Context, id model.TeamID) error {
	if err := s.storage.DeleteTeam(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int("team_id", int(id)).Msg("team removed")
	s.publisher.Publish(ctx, events.New(model.ChangeRemove, model.EntityTeam, map[string]model.TeamID{"teamId": id}, s.clock.Now()))
	return nil
}

func validateNames(name, short *string) error {
	if *name == "" {
		return model.Invalid("teamName", "must not be empty")
	}
	if *short == "" {
		return model.Invalid("shortName", "must not be empty")
	}
	return nil
}

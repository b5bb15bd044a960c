// Package scoring applies the outcome of a successful capture and builds
// the scoreboard.
package scoring

import (
	"context"
	"sort"

	"github.com/mcoot/lanterngame/internal/config"
	"github.com/mcoot/lanterngame/internal/dependencies/clock"
	"github.com/mcoot/lanterngame/internal/events"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
)

// Store is the subset of storage scoring mutates
type Store interface {
	storage.StationStore
	storage.TeamStore
}

// Service provides capture and scoreboard functionality
type Service struct {
	storage   Store
	publisher events.Publisher
	clock     clock.Clock
	cfg       config.Game
	logger    *logger.Logger
}

// New creates a new scoring Service
func New(store Store, publisher events.Publisher, clk clock.Clock, cfg config.Game, log *logger.Logger) *Service {
	return &Service{
		storage:   store,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		logger:    log.WithStr("service", "scoring"),
	}
}

// Capture is the result of handing a station to a team
type Capture struct {
	Station *model.Station `json:"station"`
	Team    *model.Team    `json:"team"`
	Awarded int            `json:"awarded"`
}

// CaptureStation hands the station to the team, bumps its signal and credits
// the team with the station's resulting signal value.
func (s *Service) CaptureStation(ctx context.Context, stationID model.StationID, teamID model.TeamID) (*Capture, error) {
	if _, err := s.storage.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}

	station, err := s.storage.UpdateStation(ctx, stationID, model.StationUpdate{Ownership: model.SetOwner{TeamID: teamID}})
	if err != nil {
		return nil, err
	}

	if s.cfg.CaptureSignalIncrement > 0 {
		station, err = s.storage.AddStationSignal(ctx, stationID, s.cfg.CaptureSignalIncrement)
		if err != nil {
			return nil, err
		}
	}

	team, err := s.storage.IncrementTeamPoints(ctx, teamID, station.SignalValue)
	if err != nil {
		s.logger.Error().Err(err).
			Int("station_id", int(stationID)).
			Int("team_id", int(teamID)).
			Msg("station captured but team credit failed")
		return nil, err
	}

	s.logger.Info().
		Int("station_id", int(stationID)).
		Int("team_id", int(teamID)).
		Int("awarded", station.SignalValue).
		Int("points", team.Points).
		Msg("station captured")

	now := s.clock.Now()
	s.publisher.Publish(ctx, events.New(model.ChangeUpdate, model.EntityStation, station, now))
	s.publisher.Publish(ctx, events.New(model.ChangeUpdate, model.EntityTeam, team, now))
	return &Capture{Station: station, Team: team, Awarded: station.SignalValue}, nil
}

// CreditTeam adds delta points to a team atomically
func (s *Service) CreditTeam(ctx context.Context, teamID model.TeamID, delta int) (*model.Team, error) {
	team, err := s.storage.IncrementTeamPoints(ctx, teamID, delta)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.New(model.ChangeUpdate, model.EntityTeam, team, s.clock.Now()))
	return team, nil
}

// BumpSignal adds delta to a station's signal value atomically
func (s *Service) BumpSignal(ctx context.Context, stationID model.StationID, delta int) (*model.Station, error) {
	station, err := s.storage.AddStationSignal(ctx, stationID, delta)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, events.New(model.ChangeUpdate, model.EntityStation, station, s.clock.Now()))
	return station, nil
}

// Standings ranks teams by points, then by owned signal, then by id
func (s *Service) Standings(ctx context.Context) ([]model.Standing, error) {
	teams, err := s.storage.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	stations, err := s.storage.ListStations(ctx, false)
	if err != nil {
		return nil, err
	}

	byTeam := make(map[model.TeamID]*model.Standing, len(teams))
	standings := make([]model.Standing, len(teams))
	for i, t := range teams {
		standings[i] = model.Standing{Team: *t}
		byTeam[t.TeamID] = &standings[i]
	}
	for _, station := range stations {
		if station.Owner == nil {
			continue
		}
		if standing, ok := byTeam[*station.Owner]; ok {
			standing.StationCount++
			standing.TotalSignal += station.SignalValue
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Team.Points != b.Team.Points {
			return a.Team.Points > b.Team.Points
		}
		if a.TotalSignal != b.TotalSignal {
			return a.TotalSignal > b.TotalSignal
		}
		return a.Team.TeamID < b.Team.TeamID
	})
	return standings, nil
}

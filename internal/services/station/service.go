// Package station is the registry of capturable stations
package station

import (
	"context"
	"strings"

	"github.com/mcoot/lanterngame/internal/config"
	"github.com/mcoot/lanterngame/internal/dependencies/clock"
	"github.com/mcoot/lanterngame/internal/events"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
)

// Service manages station records and announces their changes
type Service struct {
	storage   storage.StationStore
	publisher events.Publisher
	clock     clock.Clock
	cfg       config.Game
	logger    *logger.Logger
}

// New creates a new station Service
func New(store storage.StationStore, publisher events.Publisher, clk clock.Clock, cfg config.Game, log *logger.Logger) *Service {
	return &Service{
		storage:   store,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		logger:    log.WithStr("service", "station"),
	}
}

// Create registers a new station. A zero calibration reward is replaced by
// the configured default.
func (s *Service) Create(ctx context.Context, station model.Station) (*model.Station, error) {
	// Zero is reserved for "any station" in session lookups
	if station.StationID <= 0 {
		return nil, model.Invalid("stationId", "must be positive")
	}
	station.StationName = strings.TrimSpace(station.StationName)
	if station.StationName == "" {
		return nil, model.Invalid("stationName", "must not be empty")
	}
	if station.SignalValue < 0 {
		return nil, model.Invalid("signalValue", "must not be negative")
	}
	if station.CalibrationReward < 0 {
		return nil, model.Invalid("calibrationReward", "must not be negative")
	}
	if station.CalibrationReward == 0 {
		station.CalibrationReward = s.cfg.CalibrationRewardAmount
	}

	now := s.clock.Now()
	station.CreatedAt = now
	station.UpdatedAt = now

	if err := s.storage.CreateStation(ctx, &station); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("station_id", int(station.StationID)).
		Str("station_name", station.StationName).
		Msg("station created")
	s.publisher.Publish(ctx, events.New(model.ChangeCreate, model.EntityStation, &station, now))
	return &station, nil
}

// Get returns a single station
func (s *Service) Get(ctx context.Context, id model.StationID) (*model.Station, error) {
	return s.storage.GetStation(ctx, id)
}

// List returns all stations, or only active ones, sorted by id
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*model.Station, error) {
	return s.storage.ListStations(ctx, activeOnly)
}

// Update applies a patch to one station
func (s *Service) Update(ctx context.Context, id model.StationID, update model.StationUpdate) (*model.Station, error) {
	if update.StationName != nil && strings.TrimSpace(*update.StationName) == "" {
		return nil, model.Invalid("stationName", "must not be empty")
	}
	if update.CalibrationReward != nil && *update.CalibrationReward < 0 {
		return nil, model.Invalid("calibrationReward", "must not be negative")
	}

	station, err := s.storage.UpdateStation(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.New(model.ChangeUpdate, model.EntityStation, station, s.clock.Now()))
	return station, nil
}

// ResetSignals sets every station's signal value. The pass is not atomic
// across stations; calling it again is safe.
func (s *Service) ResetSignals(ctx context.Context, value int) ([]*model.Station, error) {
	if value < 0 {
		return nil, model.Invalid("signalValue", "must not be negative")
	}
	if err := s.storage.SetAllStationSignals(ctx, value); err != nil {
		s.logger.Error().Err(err).Int("value", value).Msg("failed to reset station signals")
		return nil, err
	}

	stations, err := s.storage.ListStations(ctx, false)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	for _, station := range stations {
		s.publisher.Publish(ctx, events.New(model.ChangeUpdate, model.EntityStation, station, now))
	}
	s.logger.Info().Int("value", value).Int("stations", len(stations)).Msg("station signals reset")
	return stations, nil
}

// Remove deletes a station unconditionally
func (s *Service) Remove(ctx context.Context, id model.StationID) error {
	if err := s.storage.DeleteStation(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int("station_id", int(id)).Msg("station removed")
	s.publisher.Publish(ctx, events.New(model.ChangeRemove, model.EntityStation, map[string]model.StationID{"stationId": id}, s.clock.Now()))
	return nil
}

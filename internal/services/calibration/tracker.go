// Package calibration runs the per-player calibration mission state machine.
// A mission is independent of any hack session the player may hold.
package calibration

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/mcoot/lanterngame/internal/config"
	"github.com/mcoot/lanterngame/internal/dependencies/clock"
	"github.com/mcoot/lanterngame/internal/dependencies/random"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/services/wallet"
	"github.com/mcoot/lanterngame/internal/storage"
)

// Store is the subset of storage missions need
type Store interface {
	storage.CalibrationStore
	storage.StationStore
}

// Tracker starts, completes and cancels calibration missions
type Tracker struct {
	storage Store
	ledger  wallet.Ledger
	clock   clock.Clock
	random  random.Random
	cfg     config.Game
	logger  *logger.Logger
}

// NewTracker creates a new mission Tracker
func NewTracker(store Store, ledger wallet.Ledger, clk clock.Clock, rnd random.Random, cfg config.Game, log *logger.Logger) *Tracker {
	return &Tracker{
		storage: store,
		ledger:  ledger,
		clock:   clk,
		random:  rnd,
		cfg:     cfg,
		logger:  log.WithStr("service", "calibration"),
	}
}

// Completion is the outcome of a completed mission
type Completion struct {
	Mission *model.CalibrationMission `json:"mission"`
	Reward  int                       `json:"reward"`
	Balance int                       `json:"balance"`
}

// Start creates a mission with a fresh numeric code. Fails with
// model.ErrConflict while the owner has an unresolved mission.
func (t *Tracker) Start(ctx context.Context, owner model.PlayerID, stationID model.StationID) (*model.CalibrationMission, error) {
	station, err := t.storage.GetStation(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if !station.IsActive {
		return nil, model.ErrStationInactive
	}

	// Fast path only; the storage constraint decides concurrent starts
	if _, active, err := t.GetActive(ctx, owner, true); err != nil {
		return nil, err
	} else if active {
		return nil, model.Conflict(model.EntityCalibrationMission, owner)
	}

	mission := &model.CalibrationMission{
		ID:          uuid.NewString(),
		Owner:       owner,
		StationID:   stationID,
		Code:        t.random.String(t.cfg.CalibrationCodeLength, random.Digits),
		TimeCreated: t.clock.Now(),
	}
	if err := t.storage.CreateCalibrationMission(ctx, mission); err != nil {
		return nil, err
	}

	t.logger.Info().
		Str("owner", string(owner)).
		Int("station_id", int(stationID)).
		Str("mission_id", mission.ID).
		Msg("calibration mission started")
	return mission, nil
}

// GetActive returns the owner's unresolved mission. With silent set a missing
// mission is reported through the bool instead of model.ErrNotFound.
func (t *Tracker) GetActive(ctx context.Context, owner model.PlayerID, silent bool) (*model.CalibrationMission, bool, error) {
	mission, err := t.storage.GetActiveCalibrationMission(ctx, owner)
	if err != nil {
		if silent && errors.Is(err, model.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return mission, true, nil
}

// ListInactive returns the owner's completed missions, oldest completion first
func (t *Tracker) ListInactive(ctx context.Context, owner model.PlayerID) ([]*model.CalibrationMission, error) {
	completed := true
	missions, err := t.storage.ListCalibrationMissions(ctx, model.CalibrationFilter{Owner: &owner, Completed: &completed})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(missions, func(i, j int) bool {
		return missions[i].TimeCompleted.Before(*missions[j].TimeCompleted)
	})
	return missions, nil
}

// ListAll returns every mission, only unresolved ones unless includeInactive
func (t *Tracker) ListAll(ctx context.Context, includeInactive bool) ([]*model.CalibrationMission, error) {
	filter := model.CalibrationFilter{}
	if !includeInactive {
		completed := false
		filter.Completed = &completed
	}
	return t.storage.ListCalibrationMissions(ctx, filter)
}

// Resolve marks the owner's unresolved mission completed. No reward is paid.
func (t *Tracker) Resolve(ctx context.Context, owner model.PlayerID, cancelled bool) (*model.CalibrationMission, error) {
	return t.resolve(ctx, owner, "", cancelled)
}

func (t *Tracker) resolve(ctx context.Context, owner model.PlayerID, missionID string, cancelled bool) (*model.CalibrationMission, error) {
	mission, err := t.storage.ResolveCalibrationMission(ctx, owner, missionID, cancelled, t.clock.Now())
	if err != nil {
		return nil, err
	}
	t.logger.Info().
		Str("owner", string(owner)).
		Str("mission_id", mission.ID).
		Bool("cancelled", cancelled).
		Msg("calibration mission resolved")
	return mission, nil
}

// Complete checks the submitted code, resolves the mission and pays the
// station's calibration reward into the owner's wallet.
func (t *Tracker) Complete(ctx context.Context, owner model.PlayerID, code string) (*Completion, error) {
	mission, _, err := t.GetActive(ctx, owner, false)
	if err != nil {
		return nil, err
	}
	if mission.Code != code {
		return nil, model.ErrCodeMismatch
	}

	// Read the reward before resolving so a deleted station fails cleanly
	station, err := t.storage.GetStation(ctx, mission.StationID)
	if err != nil {
		return nil, err
	}

	// Only the mission whose code was checked may be completed
	resolved, err := t.resolve(ctx, owner, mission.ID, false)
	if err != nil {
		return nil, err
	}

	balance, err := t.ledger.Credit(ctx, owner, station.CalibrationReward)
	if err != nil {
		t.logger.Error().Err(err).
			Str("owner", string(owner)).
			Str("mission_id", resolved.ID).
			Int("reward", station.CalibrationReward).
			Msg("calibration mission completed but wallet credit failed")
		return nil, err
	}

	return &Completion{Mission: resolved, Reward: station.CalibrationReward, Balance: balance}, nil
}

// Cancel resolves the owner's unresolved mission as cancelled
func (t *Tracker) Cancel(ctx context.Context, owner model.PlayerID) (*model.CalibrationMission, error) {
	return t.Resolve(ctx, owner, true)
}

// Remove deletes the owner's unresolved mission. Completed missions are kept.
func (t *Tracker) Remove(ctx context.Context, owner model.PlayerID) error {
	if err := t.storage.DeleteActiveCalibrationMission(ctx, owner); err != nil {
		return err
	}
	t.logger.Info().Str("owner", string(owner)).Msg("calibration mission removed")
	return nil
}

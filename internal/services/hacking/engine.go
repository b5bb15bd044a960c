// Package hacking runs the per-player hack session state machine.
//
// A session moves from none to active on Start, and from active to resolved
// on Resolve. Guess only decrements the try budget; once it reaches zero the
// caller must resolve the session as failed.
package hacking

import (
	"context"
	"errors"

	"github.com/mcoot/lanterngame/internal/config"
	"github.com/mcoot/lanterngame/internal/dependencies/clock"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/services/auth"
	"github.com/mcoot/lanterngame/internal/services/credentials"
	"github.com/mcoot/lanterngame/internal/services/round"
	"github.com/mcoot/lanterngame/internal/services/scoring"
	"github.com/mcoot/lanterngame/internal/services/station"
	"github.com/mcoot/lanterngame/internal/storage"
)

// Engine coordinates hack sessions with the station, round and score services
type Engine struct {
	sessions storage.HackSessionStore
	stations *station.Service
	round    *round.Service
	mixer    credentials.Mixer
	roster   auth.Roster
	scoring  *scoring.Service
	clock    clock.Clock
	cfg      config.Game
	logger   *logger.Logger
}

// NewEngine creates a new hack session Engine
func NewEngine(
	sessions storage.HackSessionStore,
	stations *station.Service,
	roundService *round.Service,
	mixer credentials.Mixer,
	roster auth.Roster,
	scoringService *scoring.Service,
	clk clock.Clock,
	cfg config.Game,
	log *logger.Logger,
) *Engine {
	return &Engine{
		sessions: sessions,
		stations: stations,
		round:    roundService,
		mixer:    mixer,
		roster:   roster,
		scoring:  scoringService,
		clock:    clk,
		cfg:      cfg,
		logger:   log.WithStr("service", "hacking"),
	}
}

// GuessResult is the outcome of one guess. Exhausted is set when a wrong
// guess used the last try; the session is still unresolved.
type GuessResult struct {
	Correct   bool               `json:"correct"`
	Exhausted bool               `json:"exhausted"`
	Session   *model.HackSession `json:"session"`
	Capture   *scoring.Capture   `json:"capture,omitempty"`
}

// Resolution is the outcome of resolving a session
type Resolution struct {
	Session *model.HackSession `json:"session"`
	Capture *scoring.Capture   `json:"capture,omitempty"`
}

// Start opens a new session for owner against the station, discarding any
// session the owner already had.
func (e *Engine) Start(ctx context.Context, owner model.PlayerID, stationID model.StationID) (*model.HackSession, error) {
	if err := e.round.RequireActive(ctx); err != nil {
		return nil, err
	}

	target, err := e.stations.Get(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive {
		return nil, model.ErrStationInactive
	}

	entries, err := e.mixer.Assemble(ctx, stationID)
	if err != nil {
		return nil, err
	}

	session := &model.HackSession{
		Owner:     owner,
		StationID: stationID,
		TriesLeft: e.cfg.HackingTriesAmount,
		GameUsers: entries,
		StartedAt: e.clock.Now(),
	}

	previous, err := e.sessions.ReplaceHackSession(ctx, session)
	if err != nil {
		return nil, err
	}
	if previous != nil && !previous.Done {
		e.logger.Info().
			Str("owner", string(owner)).
			Int("previous_station_id", int(previous.StationID)).
			Int("station_id", int(stationID)).
			Msg("unresolved hack session replaced")
		if previous.StationID != stationID {
			e.setUnderAttack(ctx, previous.StationID, false)
		}
	}

	e.setUnderAttack(ctx, stationID, true)

	e.logger.Info().
		Str("owner", string(owner)).
		Int("station_id", int(stationID)).
		Int("entries", len(entries)).
		Int("tries", session.TriesLeft).
		Msg("hack session started")
	return session, nil
}

// Guess checks a credential against the owner's live session. A correct
// guess resolves the session successfully; a wrong one spends a try.
func (e *Engine) Guess(ctx context.Context, owner model.PlayerID, guess model.Credential, coords *model.Coordinates) (*GuessResult, error) {
	if err := e.round.RequireActive(ctx); err != nil {
		return nil, err
	}

	session, err := e.sessions.GetHackSession(ctx, owner, model.HackSessionFilter{})
	if err != nil {
		return nil, err
	}
	if session.Done {
		return nil, model.ErrSessionResolved
	}
	if session.TriesLeft <= 0 {
		return nil, model.ErrNoTriesLeft
	}

	if session.Matches(guess) {
		resolution, err := e.Resolve(ctx, owner, session.StationID, true, coords)
		if err != nil {
			return nil, err
		}
		return &GuessResult{Correct: true, Session: resolution.Session, Capture: resolution.Capture}, nil
	}

	updated, err := e.sessions.DecrementHackTries(ctx, owner)
	if errors.Is(err, model.ErrNotFound) {
		// Lost a race with another guess or a resolve
		return nil, e.staleSessionError(ctx, owner)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("owner", string(owner)).
		Int("station_id", int(updated.StationID)).
		Int("tries_left", updated.TriesLeft).
		Msg("wrong guess")
	return &GuessResult{Exhausted: updated.TriesLeft == 0, Session: updated}, nil
}

// Resolve finalizes the owner's unresolved session against the station.
// Only one concurrent resolve can win; the others get model.ErrSessionResolved.
// On success the station is captured for the owner's team.
func (e *Engine) Resolve(ctx context.Context, owner model.PlayerID, stationID model.StationID, success bool, coords *model.Coordinates) (*Resolution, error) {
	var teamID model.TeamID
	if success {
		var err error
		if teamID, err = e.roster.TeamOf(ctx, owner); err != nil {
			return nil, err
		}
	}

	session, err := e.sessions.ResolveHackSession(ctx, owner, stationID, model.HackResolution{
		WasSuccessful: success,
		Coordinates:   coords,
		ResolvedAt:    e.clock.Now(),
	})
	if errors.Is(err, model.ErrNotFound) {
		if current, getErr := e.sessions.GetHackSession(ctx, owner, model.HackSessionFilter{StationID: &stationID}); getErr == nil && current.Done {
			return nil, model.ErrSessionResolved
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if !success {
		e.logger.Info().
			Str("owner", string(owner)).
			Int("station_id", int(stationID)).
			Msg("hack session failed")
		e.setUnderAttack(ctx, stationID, false)
		return &Resolution{Session: session}, nil
	}

	capture, err := e.scoring.CaptureStation(ctx, stationID, teamID)
	if err != nil {
		e.logger.Error().Err(err).
			Str("owner", string(owner)).
			Int("station_id", int(stationID)).
			Msg("hack session succeeded but capture failed")
		return nil, err
	}
	e.logger.Info().
		Str("owner", string(owner)).
		Int("station_id", int(stationID)).
		Int("team_id", int(teamID)).
		Msg("hack session succeeded")
	return &Resolution{Session: session, Capture: capture}, nil
}

// Abort resolves the owner's live session as failed
func (e *Engine) Abort(ctx context.Context, owner model.PlayerID) (*Resolution, error) {
	done := false
	session, err := e.sessions.GetHackSession(ctx, owner, model.HackSessionFilter{Done: &done})
	if err != nil {
		return nil, err
	}
	return e.Resolve(ctx, owner, session.StationID, false, nil)
}

// Get returns the owner's session. A non-zero stationID and a non-nil done
// narrow the match.
func (e *Engine) Get(ctx context.Context, owner model.PlayerID, stationID model.StationID, done *bool) (*model.HackSession, error) {
	filter := model.HackSessionFilter{Done: done}
	if stationID != 0 {
		filter.StationID = &stationID
	}
	return e.sessions.GetHackSession(ctx, owner, filter)
}

func (e *Engine) staleSessionError(ctx context.Context, owner model.PlayerID) error {
	session, err := e.sessions.GetHackSession(ctx, owner, model.HackSessionFilter{})
	if err != nil {
		return err
	}
	if session.Done {
		return model.ErrSessionResolved
	}
	return model.ErrNoTriesLeft
}

// setUnderAttack is best effort: a missing station only gets logged
func (e *Engine) setUnderAttack(ctx context.Context, stationID model.StationID, value bool) {
	if _, err := e.stations.Update(ctx, stationID, model.StationUpdate{Ownership: model.SetUnderAttack{Value: value}}); err != nil {
		e.logger.Warn().Err(err).
			Int("station_id", int(stationID)).
			Bool("under_attack", value).
			Msg("failed to update under-attack flag")
	}
}

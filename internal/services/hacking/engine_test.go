package hacking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/mcoot/lanterngame/internal/config"
	"github.com/mcoot/lanterngame/internal/dependencies/mocks"
	"github.com/mcoot/lanterngame/internal/events"
	"github.com/mcoot/lanterngame/internal/mock"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/services/round"
	"github.com/mcoot/lanterngame/internal/services/scoring"
	"github.com/mcoot/lanterngame/internal/services/station"
	"github.com/mcoot/lanterngame/internal/storage/memory"
	"github.com/mcoot/lanterngame/internal/testutil"
)

var testEntries = []model.GameUserEntry{
	{UserName: "bob", Password: "b1", PasswordType: model.PasswordTypeUser, PasswordHint: model.PasswordHint{Index: 0, Character: "b"}},
	{UserName: "alice", Password: "a1", IsCorrect: true, PasswordType: model.PasswordTypeUser, PasswordHint: model.PasswordHint{Index: 1, Character: "1"}},
	{UserName: "carol", Password: "zzz", PasswordType: model.PasswordTypeFake, PasswordHint: model.PasswordHint{Index: 2, Character: "z"}},
}

var wrongGuess = model.Credential{UserName: "bob", Password: "b1"}
var rightGuess = model.Credential{UserName: "alice", Password: "a1"}

type EngineSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	mixer   *mock.MockMixer
	roster  *mock.MockRoster
	round   *round.Service
	engine  *Engine
	ctx     context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.ctx = context.Background()
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.mixer = mock.NewMockMixer(ctrl)
	s.roster = mock.NewMockRoster(ctrl)

	log := testutil.NopLogger()
	cfg := config.DefaultGame()
	publisher := events.Nop{}
	stations := station.New(s.storage, publisher, s.clock, cfg, log)
	s.round = round.New(s.storage, publisher, s.clock, log)
	scores := scoring.New(s.storage, publisher, s.clock, cfg, log)
	s.engine = NewEngine(s.storage, stations, s.round, s.mixer, s.roster, scores, s.clock, cfg, log)

	s.Require().NoError(s.round.Bootstrap(s.ctx))
	_, err := s.round.Start(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.storage.CreateStation(s.ctx, &model.Station{StationID: 1, StationName: "alpha", SignalValue: 5, IsActive: true}))
	s.Require().NoError(s.storage.CreateStation(s.ctx, &model.Station{StationID: 2, StationName: "beta", SignalValue: 2, IsActive: true}))
	s.Require().NoError(s.storage.CreateTeam(s.ctx, &model.Team{TeamID: 1, TeamName: "Red", ShortName: "R", IsActive: true}))

	s.mixer.EXPECT().Assemble(gomock.Any(), gomock.Any()).Return(testEntries, nil).AnyTimes()
}

func (s *EngineSuite) station(id model.StationID) *model.Station {
	st, err := s.storage.GetStation(s.ctx, id)
	s.Require().NoError(err)
	return st
}

func (s *EngineSuite) start(owner model.PlayerID, stationID model.StationID) *model.HackSession {
	session, err := s.engine.Start(s.ctx, owner, stationID)
	s.Require().NoError(err)
	return session
}

// Start tests

func (s *EngineSuite) TestStartCreatesSession() {
	session := s.start("p1", 1)

	s.Equal(model.PlayerID("p1"), session.Owner)
	s.Equal(3, session.TriesLeft)
	s.False(session.Done)
	s.Len(session.GameUsers, 3)
	s.Equal(s.clock.Now(), session.StartedAt)
	s.True(s.station(1).IsUnderAttack)

	stored, err := s.engine.Get(s.ctx, "p1", 1, nil)
	s.Require().NoError(err)
	s.Equal(session.GameUsers, stored.GameUsers)
}

func (s *EngineSuite) TestStartRequiresActiveRound() {
	_, err := s.round.Stop(s.ctx)
	s.Require().NoError(err)

	_, err = s.engine.Start(s.ctx, "p1", 1)
	s.ErrorIs(err, model.ErrRoundNotActive)
}

func (s *EngineSuite) TestStartRequiresActiveStation() {
	inactive := false
	_, err := s.storage.UpdateStation(s.ctx, 2, model.StationUpdate{IsActive: &inactive})
	s.Require().NoError(err)

	_, err = s.engine.Start(s.ctx, "p1", 2)
	s.ErrorIs(err, model.ErrStationInactive)

	_, err = s.engine.Start(s.ctx, "p1", 42)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *EngineSuite) TestStartReplacesPreviousSession() {
	s.start("p1", 1)
	s.start("p1", 2)

	_, err := s.engine.Get(s.ctx, "p1", 1, nil)
	s.ErrorIs(err, model.ErrNotFound)

	current, err := s.engine.Get(s.ctx, "p1", 0, nil)
	s.Require().NoError(err)
	s.Equal(model.StationID(2), current.StationID)

	s.False(s.station(1).IsUnderAttack)
	s.True(s.station(2).IsUnderAttack)
}

func (s *EngineSuite) TestStartPropagatesEmptyPool() {
	ctrl := gomock.NewController(s.T())
	mixer := mock.NewMockMixer(ctrl)
	mixer.EXPECT().Assemble(gomock.Any(), model.StationID(1)).Return(nil, model.ErrCredentialPoolEmpty)
	s.engine.mixer = mixer

	_, err := s.engine.Start(s.ctx, "p1", 1)
	s.ErrorIs(err, model.ErrCredentialPoolEmpty)

	_, err = s.engine.Get(s.ctx, "p1", 0, nil)
	s.ErrorIs(err, model.ErrNotFound)
	s.False(s.station(1).IsUnderAttack)
}

// Guess tests

func (s *EngineSuite) TestWrongGuessesExhaustThenResolveFailed() {
	s.start("p1", 1)

	for want := 2; want >= 0; want-- {
		result, err := s.engine.Guess(s.ctx, "p1", wrongGuess, nil)
		s.Require().NoError(err)
		s.False(result.Correct)
		s.Equal(want, result.Session.TriesLeft)
		s.Equal(want == 0, result.Exhausted)
		s.False(result.Session.Done)
	}

	_, err := s.engine.Guess(s.ctx, "p1", rightGuess, nil)
	s.ErrorIs(err, model.ErrNoTriesLeft)

	resolution, err := s.engine.Resolve(s.ctx, "p1", 1, false, nil)
	s.Require().NoError(err)
	s.True(resolution.Session.Done)
	s.False(resolution.Session.WasSuccessful)
	s.Nil(resolution.Capture)

	st := s.station(1)
	s.Nil(st.Owner)
	s.False(st.IsUnderAttack)
}

func (s *EngineSuite) TestCorrectGuessCapturesStation() {
	s.roster.EXPECT().TeamOf(gomock.Any(), model.PlayerID("p1")).Return(model.TeamID(1), nil)
	s.start("p1", 1)
	coords := &model.Coordinates{Latitude: 51.5, Longitude: -0.12}

	result, err := s.engine.Guess(s.ctx, "p1", rightGuess, coords)
	s.Require().NoError(err)
	s.True(result.Correct)
	s.True(result.Session.Done)
	s.True(result.Session.WasSuccessful)
	s.Equal(coords, result.Session.Coordinates)
	s.Require().NotNil(result.Capture)

	st := s.station(1)
	s.Require().NotNil(st.Owner)
	s.Equal(model.TeamID(1), *st.Owner)
	s.False(st.IsUnderAttack)
	s.Equal(6, st.SignalValue)

	team, err := s.storage.GetTeam(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(6, team.Points)

	_, err = s.engine.Guess(s.ctx, "p1", rightGuess, nil)
	s.ErrorIs(err, model.ErrSessionResolved)
}

func (s *EngineSuite) TestGuessNeverMatchesDecoyWithCorrectPassword() {
	s.start("p1", 1)

	result, err := s.engine.Guess(s.ctx, "p1", model.Credential{UserName: "bob", Password: "a1"}, nil)
	s.Require().NoError(err)
	s.False(result.Correct)
	s.Equal(2, result.Session.TriesLeft)
}

func (s *EngineSuite) TestCorrectGuessWithoutTeamLeavesSessionOpen() {
	s.roster.EXPECT().TeamOf(gomock.Any(), model.PlayerID("p1")).Return(model.TeamID(0), model.ErrNoTeam)
	s.start("p1", 1)

	_, err := s.engine.Guess(s.ctx, "p1", rightGuess, nil)
	s.ErrorIs(err, model.ErrNoTeam)

	done := false
	_, err = s.engine.Get(s.ctx, "p1", 1, &done)
	s.NoError(err)
	s.Nil(s.station(1).Owner)
}

func (s *EngineSuite) TestGuessWithoutSession() {
	_, err := s.engine.Guess(s.ctx, "p1", rightGuess, nil)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *EngineSuite) TestGuessRequiresActiveRound() {
	s.start("p1", 1)
	_, err := s.round.Stop(s.ctx)
	s.Require().NoError(err)

	_, err = s.engine.Guess(s.ctx, "p1", wrongGuess, nil)
	s.ErrorIs(err, model.ErrRoundNotActive)
}

// Resolve tests

func (s *EngineSuite) TestResolveTwiceFails() {
	s.start("p1", 1)
	coords := &model.Coordinates{Latitude: 1, Longitude: 2}

	_, err := s.engine.Resolve(s.ctx, "p1", 1, false, coords)
	s.Require().NoError(err)

	_, err = s.engine.Resolve(s.ctx, "p1", 1, false, &model.Coordinates{Latitude: 9, Longitude: 9})
	s.ErrorIs(err, model.ErrSessionResolved)

	session, err := s.engine.Get(s.ctx, "p1", 1, nil)
	s.Require().NoError(err)
	s.Equal(coords, session.Coordinates)
	s.False(session.WasSuccessful)
}

func (s *EngineSuite) TestResolveWrongStation() {
	s.start("p1", 1)

	_, err := s.engine.Resolve(s.ctx, "p1", 2, false, nil)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *EngineSuite) TestConcurrentResolveHasOneWinner() {
	s.start("p1", 1)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.engine.Resolve(s.ctx, "p1", 1, false, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		s.ErrorIs(err, model.ErrSessionResolved)
	}
	s.Equal(1, wins)
}

func (s *EngineSuite) TestAbort() {
	s.start("p1", 1)

	resolution, err := s.engine.Abort(s.ctx, "p1")
	s.Require().NoError(err)
	s.True(resolution.Session.Done)
	s.False(resolution.Session.WasSuccessful)

	_, err = s.engine.Abort(s.ctx, "p1")
	s.ErrorIs(err, model.ErrNotFound)
}

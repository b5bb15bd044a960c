package factory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lanterngame/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

// setupField creates station alpha, team Red, a player on that team, the
// identity pool and an active round. It returns the player's ID.
func (s *IntegrationSuite) setupField() model.PlayerID {
	_, err := s.app.StationService.Create(s.ctx, model.Station{StationID: 1, StationName: "alpha", IsActive: true})
	s.Require().NoError(err)
	_, err = s.app.TeamService.Create(s.ctx, model.Team{TeamID: 1, TeamName: "Red", ShortName: "R", IsActive: true})
	s.Require().NoError(err)

	session, err := s.app.AuthService.CreateGuestPlayer(s.ctx, "p1")
	s.Require().NoError(err)
	_, err = s.app.AuthService.JoinTeam(s.ctx, session.Player.ID, 1)
	s.Require().NoError(err)

	_, err = s.app.CredentialService.SeedGameUsers(s.ctx, []model.GameUser{
		{UserName: "root", Passwords: []string{"hunter2"}},
		{UserName: "ops", Passwords: []string{"letmein"}},
		{UserName: "backup", Passwords: []string{"tape01"}},
		{UserName: "guest", Passwords: []string{"guest"}},
	})
	s.Require().NoError(err)
	_, err = s.app.CredentialService.AddFakePasswords(s.ctx, []string{"password1", "qwerty"})
	s.Require().NoError(err)

	_, err = s.app.RoundService.Start(s.ctx)
	s.Require().NoError(err)

	return session.Player.ID
}

func correctEntry(session *model.HackSession) model.GameUserEntry {
	for _, e := range session.GameUsers {
		if e.IsCorrect {
			return e
		}
	}
	return model.GameUserEntry{}
}

func (s *IntegrationSuite) TestFailedHackLeavesStationUnowned() {
	owner := s.setupField()

	session, err := s.app.HackingEngine.Start(s.ctx, owner, 1)
	s.Require().NoError(err)
	s.Equal(3, session.TriesLeft)

	station, err := s.app.StationService.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.True(station.IsUnderAttack)

	var result *model.HackSession
	for i := 0; i < 3; i++ {
		res, err := s.app.HackingEngine.Guess(s.ctx, owner, model.Credential{UserName: "nobody", Password: "wrong"}, nil)
		s.Require().NoError(err)
		s.False(res.Correct)
		result = res.Session
		s.Equal(i == 2, res.Exhausted)
	}
	s.Equal(0, result.TriesLeft)

	resolution, err := s.app.HackingEngine.Resolve(s.ctx, owner, 1, false, nil)
	s.Require().NoError(err)
	s.True(resolution.Session.Done)
	s.False(resolution.Session.WasSuccessful)
	s.Nil(resolution.Capture)

	station, err = s.app.StationService.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Nil(station.Owner)
	s.False(station.IsUnderAttack)
}

func (s *IntegrationSuite) TestSuccessfulHackCapturesStation() {
	owner := s.setupField()

	session, err := s.app.HackingEngine.Start(s.ctx, owner, 1)
	s.Require().NoError(err)
	answer := correctEntry(session)
	s.Require().NotEmpty(answer.UserName)

	res, err := s.app.HackingEngine.Guess(s.ctx, owner, model.Credential{UserName: answer.UserName, Password: answer.Password}, &model.Coordinates{Latitude: 1.5, Longitude: 2.5})
	s.Require().NoError(err)
	s.True(res.Correct)
	s.True(res.Session.Done)
	s.True(res.Session.WasSuccessful)
	s.Require().NotNil(res.Session.Coordinates)
	s.Require().NotNil(res.Capture)

	station, err := s.app.StationService.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().NotNil(station.Owner)
	s.Equal(model.TeamID(1), *station.Owner)
	s.False(station.IsUnderAttack)
	s.Equal(1, station.SignalValue)

	team, err := s.app.TeamService.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(1, team.Points)

	standings, err := s.app.ScoringService.Standings(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(standings, 1)
	s.Equal(1, standings[0].StationCount)
}

func (s *IntegrationSuite) TestResolveTwiceDoesNotMutate() {
	owner := s.setupField()

	_, err := s.app.HackingEngine.Start(s.ctx, owner, 1)
	s.Require().NoError(err)

	_, err = s.app.HackingEngine.Resolve(s.ctx, owner, 1, false, &model.Coordinates{Latitude: 1, Longitude: 1})
	s.Require().NoError(err)

	_, err = s.app.HackingEngine.Resolve(s.ctx, owner, 1, true, &model.Coordinates{Latitude: 9, Longitude: 9})
	s.ErrorIs(err, model.ErrSessionResolved)

	done := true
	session, err := s.app.HackingEngine.Get(s.ctx, owner, 1, &done)
	s.Require().NoError(err)
	s.False(session.WasSuccessful)
	s.Equal(1.0, session.Coordinates.Latitude)
}

func (s *IntegrationSuite) TestConcurrentStartsKeepOneLiveSession() {
	owner := s.setupField()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.app.HackingEngine.Start(s.ctx, owner, 1)
		}()
	}
	wg.Wait()

	live := false
	session, err := s.app.HackingEngine.Get(s.ctx, owner, 1, &live)
	s.Require().NoError(err)
	s.Equal(3, session.TriesLeft)

	station, err := s.app.StationService.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.True(station.IsUnderAttack)
}

func (s *IntegrationSuite) TestCalibrationCreditsWallet() {
	owner := s.setupField()
	s.app.MockRandom.QueueString("424242")

	mission, err := s.app.CalibrationTracker.Start(s.ctx, owner, 1)
	s.Require().NoError(err)
	s.Equal("424242", mission.Code)

	_, err = s.app.CalibrationTracker.Start(s.ctx, owner, 1)
	s.ErrorIs(err, model.ErrConflict)

	completion, err := s.app.CalibrationTracker.Complete(s.ctx, owner, "424242")
	s.Require().NoError(err)
	s.True(completion.Mission.Completed)
	s.NotNil(completion.Mission.TimeCompleted)
	s.Equal(10, completion.Reward)

	balance, err := s.app.WalletService.Balance(s.ctx, owner)
	s.Require().NoError(err)
	s.Equal(10, balance)

	_, err = s.app.CalibrationTracker.Start(s.ctx, owner, 1)
	s.NoError(err)
}

func (s *IntegrationSuite) TestBootstrapTwiceKeepsOneRound() {
	s.Require().NoError(s.app.RoundService.Bootstrap(s.ctx))
	s.Require().NoError(s.app.RoundService.Bootstrap(s.ctx))

	round, err := s.app.RoundService.Get(s.ctx)
	s.Require().NoError(err)
	s.False(round.IsActive)

	passwords, err := s.app.CredentialService.ListFakePasswords(s.ctx)
	s.Require().NoError(err)
	s.Empty(passwords)
}

func (s *IntegrationSuite) TestBulkResetSignals() {
	for i, name := range []string{"alpha", "beta", "gamma"} {
		_, err := s.app.StationService.Create(s.ctx, model.Station{StationID: model.StationID(i + 1), StationName: name, SignalValue: i * 4, IsActive: true})
		s.Require().NoError(err)
	}

	_, err := s.app.StationService.ResetSignals(s.ctx, 7)
	s.Require().NoError(err)

	stations, err := s.app.StationService.List(s.ctx, false)
	s.Require().NoError(err)
	s.Len(stations, 3)
	for _, st := range stations {
		s.Equal(7, st.SignalValue)
	}
}

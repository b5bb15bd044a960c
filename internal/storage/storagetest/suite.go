// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
)

// Suite runs the storage contract against the backend returned by NewStorage
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Store storage.Storage
	Ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.Store = s.NewStorage()
	s.Ctx = context.Background()
}

func ptr[T any](v T) *T { return &v }

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) createStation(id model.StationID, name string, active bool) {
	s.Require().NoError(s.Store.CreateStation(s.Ctx, &model.Station{
		StationID: id, StationName: name, IsActive: active, CalibrationReward: 10,
	}))
}

// Station tests

func (s *Suite) TestCreateAndGetStation() {
	s.createStation(1, "alpha", true)

	station, err := s.Store.GetStation(s.Ctx, 1)
	s.Require().NoError(err)
	s.Equal("alpha", station.StationName)
	s.Equal(10, station.CalibrationReward)
	s.Nil(station.Owner)
}

func (s *Suite) TestCreateStationDuplicateConflicts() {
	s.createStation(1, "alpha", true)

	err := s.Store.CreateStation(s.Ctx, &model.Station{StationID: 1, StationName: "other"})
	s.ErrorIs(err, model.ErrConflict)

	stations, err := s.Store.ListStations(s.Ctx, false)
	s.Require().NoError(err)
	s.Len(stations, 1)
}

func (s *Suite) TestGetStationNotFound() {
	_, err := s.Store.GetStation(s.Ctx, 99)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *Suite) TestListStationsSortedAndFiltered() {
	s.createStation(3, "gamma", true)
	s.createStation(1, "alpha", true)
	s.createStation(2, "beta", false)

	all, err := s.Store.ListStations(s.Ctx, false)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]model.StationID{1, 2, 3}, []model.StationID{all[0].StationID, all[1].StationID, all[2].StationID})

	active, err := s.Store.ListStations(s.Ctx, true)
	s.Require().NoError(err)
	s.Require().Len(active, 2)
	s.Equal(model.StationID(1), active[0].StationID)
	s.Equal(model.StationID(3), active[1].StationID)
}

func (s *Suite) TestUpdateStationOwnershipBranches() {
	s.createStation(1, "alpha", true)

	station, err := s.Store.UpdateStation(s.Ctx, 1, model.StationUpdate{Ownership: model.SetUnderAttack{Value: true}})
	s.Require().NoError(err)
	s.True(station.IsUnderAttack)

	station, err = s.Store.UpdateStation(s.Ctx, 1, model.StationUpdate{
		Ownership:   model.SetOwner{TeamID: 4},
		StationName: ptr("alpha prime"),
	})
	s.Require().NoError(err)
	s.Require().NotNil(station.Owner)
	s.Equal(model.TeamID(4), *station.Owner)
	s.False(station.IsUnderAttack)
	s.Equal("alpha prime", station.StationName)

	station, err = s.Store.UpdateStation(s.Ctx, 1, model.StationUpdate{Ownership: model.ClearOwner{}, IsActive: ptr(false)})
	s.Require().NoError(err)
	s.Nil(station.Owner)
	s.False(station.IsActive)

	stored, err := s.Store.GetStation(s.Ctx, 1)
	s.Require().NoError(err)
	s.Nil(stored.Owner)
	s.Equal("alpha prime", stored.StationName)
}

func (s *Suite) TestUpdateStationNotFound() {
	_, err := s.Store.UpdateStation(s.Ctx, 5, model.StationUpdate{IsActive: ptr(true)})
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *Suite) TestAddStationSignal() {
	s.createStation(1, "alpha", true)

	station, err := s.Store.AddStationSignal(s.Ctx, 1, 3)
	s.Require().NoError(err)
	s.Equal(3, station.SignalValue)

	station, err = s.Store.AddStationSignal(s.Ctx, 1, 2)
	s.Require().NoError(err)
	s.Equal(5, station.SignalValue)
}

func (s *Suite) TestSetAllStationSignals() {
	s.createStation(1, "alpha", true)
	s.createStation(2, "beta", false)
	_, err := s.Store.AddStationSignal(s.Ctx, 1, 9)
	s.Require().NoError(err)

	s.Require().NoError(s.Store.SetAllStationSignals(s.Ctx, 4))

	stations, err := s.Store.ListStations(s.Ctx, false)
	s.Require().NoError(err)
	for _, station := range stations {
		s.Equal(4, station.SignalValue)
	}
}

func (s *Suite) TestDeleteStation() {
	s.createStation(1, "alpha", true)
	s.Require().NoError(s.Store.DeleteStation(s.Ctx, 1))

	_, err := s.Store.GetStation(s.Ctx, 1)
	s.ErrorIs(err, model.ErrNotFound)
}

// Team tests

func (s *Suite) createTeam(id model.TeamID, name, short string) {
	s.Require().NoError(s.Store.CreateTeam(s.Ctx, &model.Team{TeamID: id, TeamName: name, ShortName: short, IsActive: true}))
}

func (s *Suite) TestCreateTeamUniqueFields() {
	s.createTeam(1, "Red", "R")

	s.ErrorIs(s.Store.CreateTeam(s.Ctx, &model.Team{TeamID: 1, TeamName: "Blue", ShortName: "B"}), model.ErrConflict)
	s.ErrorIs(s.Store.CreateTeam(s.Ctx, &model.Team{TeamID: 2, TeamName: "Red", ShortName: "B"}), model.ErrConflict)
	s.ErrorIs(s.Store.CreateTeam(s.Ctx, &model.Team{TeamID: 2, TeamName: "Blue", ShortName: "R"}), model.ErrConflict)
	s.NoError(s.Store.CreateTeam(s.Ctx, &model.Team{TeamID: 2, TeamName: "Blue", ShortName: "B"}))

	teams, err := s.Store.ListTeams(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(teams, 2)
	s.Equal(model.TeamID(1), teams[0].TeamID)
	s.Equal(model.TeamID(2), teams[1].TeamID)
}

func (s *Suite) TestUpdateTeam() {
	s.createTeam(1, "Red", "R")

	team, err := s.Store.UpdateTeam(s.Ctx, 1, model.TeamUpdate{TeamName: ptr("Crimson"), Points: ptr(12)})
	s.Require().NoError(err)
	s.Equal("Crimson", team.TeamName)
	s.Equal("R", team.ShortName)
	s.Equal(12, team.Points)

	team, err = s.Store.UpdateTeam(s.Ctx, 1, model.TeamUpdate{Points: ptr(50), ResetPoints: true, IsActive: ptr(false)})
	s.Require().NoError(err)
	s.Equal(0, team.Points)
	s.False(team.IsActive)
}

func (s *Suite) TestUpdateTeamRenameConflicts() {
	s.createTeam(1, "Red", "R")
	s.createTeam(2, "Blue", "B")

	_, err := s.Store.UpdateTeam(s.Ctx, 2, model.TeamUpdate{TeamName: ptr("Red")})
	s.ErrorIs(err, model.ErrConflict)

	team, err := s.Store.GetTeam(s.Ctx, 2)
	s.Require().NoError(err)
	s.Equal("Blue", team.TeamName)
}

func (s *Suite) TestUpdateTeamNotFound() {
	_, err := s.Store.UpdateTeam(s.Ctx, 9, model.TeamUpdate{ResetPoints: true})
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *Suite) TestIncrementTeamPointsConcurrently() {
	s.createTeam(1, "Red", "R")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Store.IncrementTeamPoints(s.Ctx, 1, 2)
		}()
	}
	wg.Wait()

	team, err := s.Store.GetTeam(s.Ctx, 1)
	s.Require().NoError(err)
	s.Equal(20, team.Points)
}

func (s *Suite) TestDeleteTeam() {
	s.createTeam(1, "Red", "R")
	s.Require().NoError(s.Store.DeleteTeam(s.Ctx, 1))

	_, err := s.Store.GetTeam(s.Ctx, 1)
	s.ErrorIs(err, model.ErrNotFound)

	// Freed names can be reused
	s.NoError(s.Store.CreateTeam(s.Ctx, &model.Team{TeamID: 2, TeamName: "Red", ShortName: "R"}))
}

// Round tests

func (s *Suite) TestRoundSingleton() {
	_, err := s.Store.GetRound(s.Ctx)
	s.ErrorIs(err, model.ErrNotFound)

	created, err := s.Store.CreateRoundIfAbsent(s.Ctx, &model.Round{})
	s.Require().NoError(err)
	s.True(created)

	created, err = s.Store.CreateRoundIfAbsent(s.Ctx, &model.Round{IsActive: true})
	s.Require().NoError(err)
	s.False(created)

	round, err := s.Store.GetRound(s.Ctx)
	s.Require().NoError(err)
	s.False(round.IsActive)
}

func (s *Suite) TestUpdateRound() {
	_, err := s.Store.UpdateRound(s.Ctx, model.RoundUpdate{IsActive: ptr(true)})
	s.ErrorIs(err, model.ErrNotFound)

	_, err = s.Store.CreateRoundIfAbsent(s.Ctx, &model.Round{})
	s.Require().NoError(err)

	round, err := s.Store.UpdateRound(s.Ctx, model.RoundUpdate{IsActive: ptr(true), StartTime: ptr(t0)})
	s.Require().NoError(err)
	s.True(round.IsActive)
	s.Require().NotNil(round.StartTime)
	s.True(round.StartTime.Equal(t0))
	s.Nil(round.EndTime)
}

// Credential tests

func (s *Suite) TestGameUsersSeedIdempotent() {
	created, err := s.Store.CreateGameUserIfAbsent(s.Ctx, &model.GameUser{UserName: "root", Passwords: []string{"toor"}})
	s.Require().NoError(err)
	s.True(created)

	created, err = s.Store.CreateGameUserIfAbsent(s.Ctx, &model.GameUser{UserName: "root", Passwords: []string{"other"}})
	s.Require().NoError(err)
	s.False(created)

	_, err = s.Store.CreateGameUserIfAbsent(s.Ctx, &model.GameUser{UserName: "admin", Passwords: []string{"admin"}, StationID: ptr(model.StationID(1))})
	s.Require().NoError(err)

	users, err := s.Store.ListGameUsers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal("admin", users[0].UserName)
	s.Equal(model.StationID(1), *users[0].StationID)
	s.Equal("root", users[1].UserName)
	s.Equal([]string{"toor"}, users[1].Passwords)
}

func (s *Suite) TestFakePasswordsSetSemantics() {
	_, err := s.Store.GetFakePasswords(s.Ctx)
	s.ErrorIs(err, model.ErrNotFound)

	created, err := s.Store.CreateFakePasswordContainerIfAbsent(s.Ctx)
	s.Require().NoError(err)
	s.True(created)
	created, err = s.Store.CreateFakePasswordContainerIfAbsent(s.Ctx)
	s.Require().NoError(err)
	s.False(created)

	all, err := s.Store.AddFakePasswords(s.Ctx, []string{"a", "b"})
	s.Require().NoError(err)
	s.ElementsMatch([]string{"a", "b"}, all)

	all, err = s.Store.AddFakePasswords(s.Ctx, []string{"b", "c"})
	s.Require().NoError(err)
	s.ElementsMatch([]string{"a", "b", "c"}, all)

	stored, err := s.Store.GetFakePasswords(s.Ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"a", "b", "c"}, stored)
}

// Hack session tests

func (s *Suite) newSession(owner model.PlayerID, station model.StationID) *model.HackSession {
	return &model.HackSession{
		Owner:     owner,
		StationID: station,
		TriesLeft: 3,
		GameUsers: []model.GameUserEntry{
			{UserName: "root", Password: "toor", IsCorrect: true, PasswordType: model.PasswordTypeUser},
			{UserName: "guest", Password: "guest", PasswordType: model.PasswordTypeFake},
		},
		StartedAt: t0,
	}
}

func (s *Suite) TestReplaceHackSessionReturnsPrevious() {
	previous, err := s.Store.ReplaceHackSession(s.Ctx, s.newSession("p1", 1))
	s.Require().NoError(err)
	s.Nil(previous)

	previous, err = s.Store.ReplaceHackSession(s.Ctx, s.newSession("p1", 2))
	s.Require().NoError(err)
	s.Require().NotNil(previous)
	s.Equal(model.StationID(1), previous.StationID)

	current, err := s.Store.GetHackSession(s.Ctx, "p1", model.HackSessionFilter{})
	s.Require().NoError(err)
	s.Equal(model.StationID(2), current.StationID)
	s.Len(current.GameUsers, 2)
	s.True(current.GameUsers[0].IsCorrect)
}

func (s *Suite) TestGetHackSessionFilters() {
	_, err := s.Store.ReplaceHackSession(s.Ctx, s.newSession("p1", 1))
	s.Require().NoError(err)

	_, err = s.Store.GetHackSession(s.Ctx, "p1", model.HackSessionFilter{StationID: ptr(model.StationID(2))})
	s.ErrorIs(err, model.ErrNotFound)
	_, err = s.Store.GetHackSession(s.Ctx, "p1", model.HackSessionFilter{Done: ptr(true)})
	s.ErrorIs(err, model.ErrNotFound)
	_, err = s.Store.GetHackSession(s.Ctx, "p1", model.HackSessionFilter{StationID: ptr(model.StationID(1)), Done: ptr(false)})
	s.NoError(err)
	_, err = s.Store.GetHackSession(s.Ctx, "p2", model.HackSessionFilter{})
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *Suite) TestDecrementHackTriesGuarded() {
	_, err := s.Store.ReplaceHackSession(s.Ctx, s.newSession("p1", 1))
	s.Require().NoError(err)

	for want := 2; want >= 0; want-- {
		session, err := s.Store.DecrementHackTries(s.Ctx, "p1")
		s.Require().NoError(err)
		s.Equal(want, session.TriesLeft)
		s.False(session.Done)
	}

	_, err = s.Store.DecrementHackTries(s.Ctx, "p1")
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *Suite) TestResolveHackSessionOnlyOnce() {
	_, err := s.Store.ReplaceHackSession(s.Ctx, s.newSession("p1", 1))
	s.Require().NoError(err)

	_, err = s.Store.ResolveHackSession(s.Ctx, "p1", 2, model.HackResolution{WasSuccessful: true, ResolvedAt: t0})
	s.ErrorIs(err, model.ErrNotFound)

	coords := &model.Coordinates{Latitude: 1.5, Longitude: -2}
	session, err := s.Store.ResolveHackSession(s.Ctx, "p1", 1, model.HackResolution{WasSuccessful: false, Coordinates: coords, ResolvedAt: t0})
	s.Require().NoError(err)
	s.True(session.Done)
	s.False(session.WasSuccessful)
	s.Equal(coords, session.Coordinates)

	_, err = s.Store.ResolveHackSession(s.Ctx, "p1", 1, model.HackResolution{WasSuccessful: true, ResolvedAt: t0.Add(time.Minute)})
	s.ErrorIs(err, model.ErrNotFound)

	_, err = s.Store.DecrementHackTries(s.Ctx, "p1")
	s.ErrorIs(err, model.ErrNotFound)

	stored, err := s.Store.GetHackSession(s.Ctx, "p1", model.HackSessionFilter{Done: ptr(true)})
	s.Require().NoError(err)
	s.False(stored.WasSuccessful)
	s.Equal(coords, stored.Coordinates)
}

func (s *Suite) TestResolveHackSessionConcurrentSingleWinner() {
	_, err := s.Store.ReplaceHackSession(s.Ctx, s.newSession("p1", 1))
	s.Require().NoError(err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Store.ResolveHackSession(s.Ctx, "p1", 1, model.HackResolution{WasSuccessful: true, ResolvedAt: t0}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, wins)
}

// Calibration mission tests

func (s *Suite) newMission(id string, owner model.PlayerID, created time.Time) *model.CalibrationMission {
	return &model.CalibrationMission{ID: id, Owner: owner, StationID: 1, Code: "123456", TimeCreated: created}
}

func (s *Suite) TestCalibrationMissionSingleActive() {
	s.Require().NoError(s.Store.CreateCalibrationMission(s.Ctx, s.newMission("m1", "p1", t0)))
	s.ErrorIs(s.Store.CreateCalibrationMission(s.Ctx, s.newMission("m2", "p1", t0)), model.ErrConflict)
	s.NoError(s.Store.CreateCalibrationMission(s.Ctx, s.newMission("m3", "p2", t0)))

	active, err := s.Store.GetActiveCalibrationMission(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("m1", active.ID)
	s.Equal("123456", active.Code)

	resolved, err := s.Store.ResolveCalibrationMission(s.Ctx, "p1", "", false, t0.Add(time.Minute))
	s.Require().NoError(err)
	s.True(resolved.Completed)
	s.False(resolved.Cancelled)
	s.Require().NotNil(resolved.TimeCompleted)

	_, err = s.Store.GetActiveCalibrationMission(s.Ctx, "p1")
	s.ErrorIs(err, model.ErrNotFound)
	_, err = s.Store.ResolveCalibrationMission(s.Ctx, "p1", "", true, t0)
	s.ErrorIs(err, model.ErrNotFound)

	s.NoError(s.Store.CreateCalibrationMission(s.Ctx, s.newMission("m4", "p1", t0.Add(2*time.Minute))))
}

func (s *Suite) TestResolveCalibrationMissionGuardsID() {
	s.Require().NoError(s.Store.CreateCalibrationMission(s.Ctx, s.newMission("m1", "p1", t0)))
	_, err := s.Store.ResolveCalibrationMission(s.Ctx, "p1", "m1", true, t0)
	s.Require().NoError(err)
	s.Require().NoError(s.Store.CreateCalibrationMission(s.Ctx, s.newMission("m2", "p1", t0.Add(time.Minute))))

	// A stale ID does not resolve the owner's newer mission
	_, err = s.Store.ResolveCalibrationMission(s.Ctx, "p1", "m1", false, t0.Add(2*time.Minute))
	s.ErrorIs(err, model.ErrNotFound)

	active, err := s.Store.GetActiveCalibrationMission(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("m2", active.ID)
	s.False(active.Completed)

	resolved, err := s.Store.ResolveCalibrationMission(s.Ctx, "p1", "m2", false, t0.Add(2*time.Minute))
	s.Require().NoError(err)
	s.Equal("m2", resolved.ID)
	s.True(resolved.Completed)
}

func (s *Suite) TestCalibrationMissionConcurrentCreateSingleWinner() {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := s.newMission("m"+string(rune('a'+i)), "p1", t0)
			if err := s.Store.CreateCalibrationMission(s.Ctx, m); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	s.Equal(1, wins)
}

func (s *Suite) TestListCalibrationMissions() {
	s.Require().NoError(s.Store.CreateCalibrationMission(s.Ctx, s.newMission("m1", "p1", t0)))
	_, err := s.Store.ResolveCalibrationMission(s.Ctx, "p1", "", true, t0.Add(time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(s.Store.CreateCalibrationMission(s.Ctx, s.newMission("m2", "p1", t0.Add(2*time.Minute))))
	s.Require().NoError(s.Store.CreateCalibrationMission(s.Ctx, s.newMission("m3", "p2", t0.Add(time.Second))))

	all, err := s.Store.ListCalibrationMissions(s.Ctx, model.CalibrationFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]string{"m1", "m3", "m2"}, []string{all[0].ID, all[1].ID, all[2].ID})

	active, err := s.Store.ListCalibrationMissions(s.Ctx, model.CalibrationFilter{Completed: ptr(false)})
	s.Require().NoError(err)
	s.Len(active, 2)

	done, err := s.Store.ListCalibrationMissions(s.Ctx, model.CalibrationFilter{Owner: ptr(model.PlayerID("p1")), Completed: ptr(true)})
	s.Require().NoError(err)
	s.Require().Len(done, 1)
	s.Equal("m1", done[0].ID)
	s.True(done[0].Cancelled)
}

func (s *Suite) TestDeleteActiveCalibrationMission() {
	s.Require().NoError(s.Store.CreateCalibrationMission(s.Ctx, s.newMission("m1", "p1", t0)))
	_, err := s.Store.ResolveCalibrationMission(s.Ctx, "p1", "", false, t0)
	s.Require().NoError(err)

	s.ErrorIs(s.Store.DeleteActiveCalibrationMission(s.Ctx, "p1"), model.ErrNotFound)

	s.Require().NoError(s.Store.CreateCalibrationMission(s.Ctx, s.newMission("m2", "p1", t0.Add(time.Minute))))
	s.Require().NoError(s.Store.DeleteActiveCalibrationMission(s.Ctx, "p1"))

	all, err := s.Store.ListCalibrationMissions(s.Ctx, model.CalibrationFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal("m1", all[0].ID)
}

// Player and wallet tests

func (s *Suite) TestSaveAndGetPlayer() {
	team := model.TeamID(1)
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, &model.Player{ID: "p1", DisplayName: "Alice", TeamID: &team, CreatedAt: t0}))

	player, err := s.Store.GetPlayer(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal("Alice", player.DisplayName)
	s.Equal(team, *player.TeamID)

	_, err = s.Store.GetPlayer(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestRegisteredPlayerUsernameUnique() {
	rp := &model.RegisteredPlayer{PlayerID: "p1", Username: "alice", PasswordHash: "hash", CreatedAt: t0, UpdatedAt: t0}
	s.Require().NoError(s.Store.CreateRegisteredPlayer(s.Ctx, rp))
	s.ErrorIs(s.Store.CreateRegisteredPlayer(s.Ctx, &model.RegisteredPlayer{PlayerID: "p2", Username: "alice"}), model.ErrConflict)

	got, err := s.Store.GetRegisteredPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), got.PlayerID)

	_, err = s.Store.GetRegisteredPlayerByUsername(s.Ctx, "bob")
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *Suite) TestWallet() {
	balance, err := s.Store.GetWalletBalance(s.Ctx, "p1")
	s.Require().NoError(err)
	s.Equal(0, balance)

	balance, err = s.Store.AddToWallet(s.Ctx, "p1", 10)
	s.Require().NoError(err)
	s.Equal(10, balance)
	balance, err = s.Store.AddToWallet(s.Ctx, "p1", 5)
	s.Require().NoError(err)
	s.Equal(15, balance)
}

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
)

func newTestStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewWithDB(db, logger.Nop()), mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func uniqueViolationOn(constraint string) error {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraint}
}

func conflictKey(t *testing.T, err error) string {
	t.Helper()
	var entityErr *model.EntityError
	require.ErrorAs(t, err, &entityErr)
	require.ErrorIs(t, err, model.ErrConflict)
	return entityErr.Key
}

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestCreateStation_UniqueViolationIsConflict(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectExec("INSERT INTO stations").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	err := store.CreateStation(context.Background(), &model.Station{StationID: 1, StationName: "alpha"})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestGetStation_NotFound(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery(`SELECT .* FROM stations WHERE station_id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(stationColumns))

	_, err := store.GetStation(context.Background(), 7)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGetStation_ScansOwner(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery(`SELECT .* FROM stations`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(stationColumns).
			AddRow(7, "alpha", 3, true, int64(2), false, 10, now, now))

	station, err := store.GetStation(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, station.Owner)
	assert.Equal(t, model.TeamID(2), *station.Owner)
	assert.Equal(t, 3, station.SignalValue)
}

func TestUpdateStation_ClearOwnerNullsColumn(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery(`UPDATE stations SET is_under_attack = \$1, owner = \$2, updated_at = \$3 WHERE station_id = \$4 RETURNING`).
		WithArgs(false, nil, sqlmock.AnyArg(), 7).
		WillReturnRows(sqlmock.NewRows(stationColumns).
			AddRow(7, "alpha", 3, true, nil, false, 10, now, now))

	station, err := store.UpdateStation(context.Background(), 7, model.StationUpdate{Ownership: model.ClearOwner{}})
	require.NoError(t, err)
	assert.Nil(t, station.Owner)
}

func TestIncrementTeamPoints_IsSingleStatement(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery(`UPDATE teams SET points = points \+ \$1, updated_at = \$2 WHERE team_id = \$3 RETURNING`).
		WithArgs(5, sqlmock.AnyArg(), 1).
		WillReturnRows(sqlmock.NewRows(teamColumns).
			AddRow(1, "Red", "R", 15, true, now, now))

	team, err := store.IncrementTeamPoints(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 15, team.Points)
}

func TestUpdateTeam_RenameConflict(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery("UPDATE teams").
		WillReturnError(uniqueViolationOn(teamNameConstraint))

	name := "Blue"
	_, err := store.UpdateTeam(context.Background(), 1, model.TeamUpdate{TeamName: &name})
	assert.Equal(t, "Blue", conflictKey(t, err))
}

func TestCreateTeam_ConflictNamesCollidingField(t *testing.T) {
	team := &model.Team{TeamID: 3, TeamName: "Red", ShortName: "R"}
	cases := map[string]struct {
		constraint string
		key        string
	}{
		"team id":    {"teams_pkey", "3"},
		"team name":  {teamNameConstraint, "Red"},
		"short name": {teamShortNameConstraint, "R"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			store, mock := newTestStorage(t)
			mock.ExpectExec("INSERT INTO teams").
				WillReturnError(uniqueViolationOn(tc.constraint))

			err := store.CreateTeam(context.Background(), team)
			assert.Equal(t, tc.key, conflictKey(t, err))
		})
	}
}

func TestCreateRoundIfAbsent_ExistingRound(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectExec(`INSERT INTO rounds .* ON CONFLICT \(id\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := store.CreateRoundIfAbsent(context.Background(), &model.Round{})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestAddFakePasswords_WithoutContainer(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM fake_password_containers`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := store.AddFakePasswords(context.Background(), []string{"hunter2"})
	assert.ErrorIs(t, err, model.NotFound(model.EntityFakePasswords, nil))
}

func TestAddFakePasswords_ReturnsSortedSet(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO fake_passwords .* ON CONFLICT \(password\) DO NOTHING`).
		WithArgs("zeta", "alpha").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("SELECT password FROM fake_passwords").
		WillReturnRows(sqlmock.NewRows([]string{"password"}).AddRow("zeta").AddRow("alpha"))

	passwords, err := store.AddFakePasswords(context.Background(), []string{"zeta", "alpha"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, passwords)
}

func hackRow(owner string, tries int, done bool) *sqlmock.Rows {
	users := []byte(`[{"userName":"u1","password":"p1","isCorrect":true,"passwordType":"user","passwordHint":{"index":0,"character":"p"}}]`)
	return sqlmock.NewRows(hackColumns).
		AddRow(owner, 7, tries, users, done, false, nil, now, nil)
}

func TestReplaceHackSession_ReturnsPrevious(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM hack_sessions WHERE owner = \$1 FOR UPDATE`).
		WithArgs("p1").
		WillReturnRows(hackRow("p1", 2, false))
	mock.ExpectExec(`INSERT INTO hack_sessions .* ON CONFLICT \(owner\) DO UPDATE SET station_id = EXCLUDED.station_id, tries_left = EXCLUDED.tries_left, .* resolved_at = EXCLUDED.resolved_at`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	previous, err := store.ReplaceHackSession(context.Background(), &model.HackSession{
		Owner: "p1", StationID: 8, TriesLeft: 3, StartedAt: now,
	})
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, model.StationID(7), previous.StationID)
	assert.Equal(t, 2, previous.TriesLeft)
	require.Len(t, previous.GameUsers, 1)
	assert.True(t, previous.GameUsers[0].IsCorrect)
	assert.Nil(t, previous.Coordinates)
	assert.Nil(t, previous.ResolvedAt)
}

// With no row to lock, a concurrent first start may still insert before us;
// the upsert absorbs it instead of raising a primary key violation
func TestReplaceHackSession_NoPreviousUpserts(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM hack_sessions").
		WillReturnRows(sqlmock.NewRows(hackColumns))
	mock.ExpectExec(`INSERT INTO hack_sessions .* ON CONFLICT \(owner\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	previous, err := store.ReplaceHackSession(context.Background(), &model.HackSession{Owner: "p1"})
	require.NoError(t, err)
	assert.Nil(t, previous)
}

func TestReplaceHackSession_InsertFailureRollsBack(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM hack_sessions").
		WillReturnRows(sqlmock.NewRows(hackColumns))
	mock.ExpectExec("INSERT INTO hack_sessions").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := store.ReplaceHackSession(context.Background(), &model.HackSession{Owner: "p1"})
	assert.ErrorIs(t, err, model.ErrStorage)
}

func TestDecrementHackTries_GuardMissIsNotFound(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery(`UPDATE hack_sessions SET tries_left = tries_left - 1 WHERE done = \$1 AND owner = \$2 AND tries_left > \$3`).
		WithArgs(false, "p1", 0).
		WillReturnRows(sqlmock.NewRows(hackColumns))

	_, err := store.DecrementHackTries(context.Background(), "p1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResolveHackSession(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery(`UPDATE hack_sessions SET coordinates = \$1, done = \$2, resolved_at = \$3, was_successful = \$4 WHERE done = \$5 AND owner = \$6 AND station_id = \$7`).
		WithArgs(`{"latitude":1.5,"longitude":2.5}`, true, now, true, false, "p1", 7).
		WillReturnRows(sqlmock.NewRows(hackColumns).
			AddRow("p1", 7, 2, []byte(`[]`), true, true, []byte(`{"latitude":1.5,"longitude":2.5}`), now, now))

	session, err := store.ResolveHackSession(context.Background(), "p1", 7, model.HackResolution{
		WasSuccessful: true,
		Coordinates:   &model.Coordinates{Latitude: 1.5, Longitude: 2.5},
		ResolvedAt:    now,
	})
	require.NoError(t, err)
	assert.True(t, session.Done)
	require.NotNil(t, session.Coordinates)
	assert.Equal(t, 2.5, session.Coordinates.Longitude)
	require.NotNil(t, session.ResolvedAt)
}

func TestCreateCalibrationMission_SecondActiveConflicts(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectExec("INSERT INTO calibration_missions").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	err := store.CreateCalibrationMission(context.Background(), &model.CalibrationMission{ID: "m2", Owner: "p1"})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestListCalibrationMissions_Filters(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery(`SELECT .* FROM calibration_missions WHERE completed = \$1 AND owner = \$2 ORDER BY time_created ASC`).
		WithArgs(true, "p1").
		WillReturnRows(sqlmock.NewRows(calibrationColumns).
			AddRow("m1", "p1", 7, "123456", now, now, false, true))

	owner, completed := model.PlayerID("p1"), true
	missions, err := store.ListCalibrationMissions(context.Background(), model.CalibrationFilter{Owner: &owner, Completed: &completed})
	require.NoError(t, err)
	require.Len(t, missions, 1)
	require.NotNil(t, missions[0].TimeCompleted)
}

func TestResolveCalibrationMission_StaleIDIsNotFound(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery(`UPDATE calibration_missions SET cancelled = \$1, completed = \$2, time_completed = \$3 WHERE completed = \$4 AND id = \$5 AND owner = \$6 RETURNING`).
		WithArgs(false, true, now, false, "m1", "p1").
		WillReturnRows(sqlmock.NewRows(calibrationColumns))

	_, err := store.ResolveCalibrationMission(context.Background(), "p1", "m1", false, now)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteActiveCalibrationMission_NoneIsNotFound(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectExec("DELETE FROM calibration_missions").
		WithArgs(false, "p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteActiveCalibrationMission(context.Background(), "p1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreateRegisteredPlayer_UsernameTaken(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectExec("INSERT INTO registered_players").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	err := store.CreateRegisteredPlayer(context.Background(), &model.RegisteredPlayer{Username: "alice"})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestGetPlayer_NotFound(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery("SELECT .* FROM players").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(playerColumns))

	_, err := store.GetPlayer(context.Background(), "p1")
	assert.ErrorIs(t, err, model.ErrPlayerNotFound)
}

func TestWallet(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery("SELECT balance FROM wallets").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}))
	mock.ExpectQuery(`INSERT INTO wallets .* ON CONFLICT \(owner\) DO UPDATE SET balance = wallets.balance \+ EXCLUDED.balance RETURNING balance`).
		WithArgs("p1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(10))

	balance, err := store.GetWalletBalance(context.Background(), "p1")
	require.NoError(t, err)
	assert.Zero(t, balance)

	balance, err = store.AddToWallet(context.Background(), "p1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
}

func TestUnexpectedErrorIsStorageFailure(t *testing.T) {
	store, mock := newTestStorage(t)

	mock.ExpectQuery("SELECT .* FROM teams").
		WillReturnError(errors.New("db network error"))

	_, err := store.ListTeams(context.Background())
	assert.ErrorIs(t, err, model.ErrStorage)
}

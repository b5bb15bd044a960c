package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
	"github.com/mcoot/lanterngame/internal/storage/storagetest"
)

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	mini := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mini.Addr(),
	})
	store := NewWithClient(client, DefaultConfig())
	t.Cleanup(func() { _ = store.Close() })
	return store, mini
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func() storage.Storage {
			store, _ := newTestStorage(t)
			return store
		},
	})
}

func TestKeysUsePrefix(t *testing.T) {
	store, mini := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.CreateStation(ctx, &model.Station{StationID: 1, StationName: "alpha"}))
	require.NoError(t, store.CreateTeam(ctx, &model.Team{TeamID: 2, TeamName: "Red", ShortName: "R"}))

	assert.True(t, mini.Exists("lantern:station:1"))
	assert.True(t, mini.Exists("lantern:team:2"))

	owner, err := mini.Get("lantern:idx:team_name:Red")
	require.NoError(t, err)
	assert.Equal(t, "2", owner)
}

func TestRenameTeamMovesIndexes(t *testing.T) {
	store, mini := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTeam(ctx, &model.Team{TeamID: 1, TeamName: "Red", ShortName: "R"}))
	name := "Crimson"
	_, err := store.UpdateTeam(ctx, 1, model.TeamUpdate{TeamName: &name})
	require.NoError(t, err)

	assert.False(t, mini.Exists("lantern:idx:team_name:Red"))
	assert.True(t, mini.Exists("lantern:idx:team_name:Crimson"))

	// The old name is free again
	require.NoError(t, store.CreateTeam(ctx, &model.Team{TeamID: 2, TeamName: "Red", ShortName: "B"}))
}

func TestActiveCalibrationPointerClearedOnResolve(t *testing.T) {
	store, mini := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.CreateCalibrationMission(ctx, &model.CalibrationMission{ID: "m1", Owner: "p1", StationID: 1, Code: "42"}))
	assert.True(t, mini.Exists("lantern:calibration:active:p1"))

	_, err := store.ResolveCalibrationMission(ctx, "p1", "m1", false, mini.Now())
	require.NoError(t, err)
	assert.False(t, mini.Exists("lantern:calibration:active:p1"))
	assert.True(t, mini.Exists("lantern:calibration:m1"))
}

func TestConnectionFailureIsStorageError(t *testing.T) {
	store, mini := newTestStorage(t)
	mini.Close()

	_, err := store.GetStation(context.Background(), 1)
	assert.ErrorIs(t, err, model.ErrStorage)
}

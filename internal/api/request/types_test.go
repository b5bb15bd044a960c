package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lanterngame/internal/model"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestUpdateStationOwnershipBranches(t *testing.T) {
	tests := []struct {
		name string
		req  UpdateStationRequest
		want model.OwnershipChange
	}{
		{"none", UpdateStationRequest{IsActive: boolPtr(true)}, nil},
		{"reset flag", UpdateStationRequest{ResetOwner: true}, model.ClearOwner{}},
		{"sentinel", UpdateStationRequest{Owner: intPtr(ClearOwnerSentinel)}, model.ClearOwner{}},
		{"set owner", UpdateStationRequest{Owner: intPtr(2)}, model.SetOwner{TeamID: 2}},
		{"under attack", UpdateStationRequest{IsUnderAttack: boolPtr(true)}, model.SetUnderAttack{Value: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update, err := tt.req.ToModel()
			require.NoError(t, err)
			assert.Equal(t, tt.want, update.Ownership)
		})
	}
}

func TestUpdateStationRejectsSeveralBranches(t *testing.T) {
	_, err := UpdateStationRequest{Owner: intPtr(2), IsUnderAttack: boolPtr(false)}.ToModel()
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = UpdateStationRequest{ResetOwner: true, Owner: intPtr(3)}.ToModel()
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestCreateStationDefaultsActive(t *testing.T) {
	station := CreateStationRequest{StationID: 1, StationName: "alpha"}.ToModel()
	assert.True(t, station.IsActive)

	station = CreateStationRequest{StationID: 1, StationName: "alpha", IsActive: boolPtr(false)}.ToModel()
	assert.False(t, station.IsActive)
}

func TestSeedGameUsersBindsStation(t *testing.T) {
	users := SeedGameUsersRequest{GameUsers: []GameUser{
		{UserName: "alice", Passwords: []string{"a1"}, StationID: intPtr(4)},
		{UserName: "bob", Passwords: []string{"b1"}},
	}}.ToModel()

	require.Len(t, users, 2)
	require.NotNil(t, users[0].StationID)
	assert.Equal(t, model.StationID(4), *users[0].StationID)
	assert.Nil(t, users[1].StationID)
}

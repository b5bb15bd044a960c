package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityErrorKinds(t *testing.T) {
	err := NotFound(EntityStation, StationID(7))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, "station 7 not found", err.Error())

	err = Conflict(EntityTeam, "Red")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "team Red already exists", err.Error())
}

func TestEntityErrorMatchesIgnoringKey(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound(EntityPlayer, "p_123"))
	assert.ErrorIs(t, err, ErrPlayerNotFound)
	assert.NotErrorIs(t, NotFound(EntityTeam, 1), ErrPlayerNotFound)
}

func TestGameRuleErrorKinds(t *testing.T) {
	for _, err := range []error{ErrRoundNotActive, ErrStationInactive, ErrSessionResolved, ErrNoTriesLeft, ErrCodeMismatch, ErrNoTeam} {
		assert.ErrorIs(t, err, ErrInvalidState, err.Error())
	}
	assert.ErrorIs(t, ErrCredentialPoolEmpty, ErrNotFound)
}

func TestStorageFailureWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := StorageFailure("get station", cause)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "get station")
}

func TestInvalidInput(t *testing.T) {
	err := Invalid("stationName", "must not be empty")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "invalid input: stationName must not be empty", err.Error())
}

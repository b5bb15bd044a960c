package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by storage and the game services
// matches exactly one of these through errors.Is. ErrInvalidInput is only
// raised by the services, before storage is touched.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrInvalidState = errors.New("invalid state")
	ErrStorage      = errors.New("storage failure")
	ErrInvalidInput = errors.New("invalid input")
)

// Game rule errors
var (
	ErrRoundNotActive      = fmt.Errorf("%w: round is not active", ErrInvalidState)
	ErrStationInactive     = fmt.Errorf("%w: station is not active", ErrInvalidState)
	ErrSessionResolved     = fmt.Errorf("%w: hack session already resolved", ErrInvalidState)
	ErrNoTriesLeft         = fmt.Errorf("%w: no tries left", ErrInvalidState)
	ErrCodeMismatch        = fmt.Errorf("%w: calibration code does not match", ErrInvalidState)
	ErrNoTeam              = fmt.Errorf("%w: player has no team", ErrInvalidState)
	ErrCredentialPoolEmpty = fmt.Errorf("%w: credential pool is empty", ErrNotFound)
)

// Invalid reports a rejected request field
func Invalid(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}

// Player errors
var (
	ErrPlayerNotFound = NotFound(EntityPlayer, "")
)

// Entity names a collection of the game's document store
type Entity string

const (
	EntityStation            Entity = "station"
	EntityTeam               Entity = "team"
	EntityRound              Entity = "round"
	EntityHackSession        Entity = "hack_session"
	EntityCalibrationMission Entity = "calibration_mission"
	EntityGameUser           Entity = "game_user"
	EntityFakePasswords      Entity = "fake_passwords"
	EntityPlayer             Entity = "player"
)

// EntityError is a NotFound or Conflict failure on a specific record
type EntityError struct {
	Kind   error
	Entity Entity
	Key    string
}

func (e *EntityError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s %v", e.Entity, e.Kind)
	}
	return fmt.Sprintf("%s %s %v", e.Entity, e.Key, e.Kind)
}

func (e *EntityError) Unwrap() error {
	return e.Kind
}

// Is matches another EntityError on kind and entity, ignoring the key,
// so ErrPlayerNotFound matches any missing player.
func (e *EntityError) Is(target error) bool {
	t, ok := target.(*EntityError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Entity == e.Entity && (t.Key == "" || t.Key == e.Key)
}

// NotFound returns an ErrNotFound failure for the given record
func NotFound(entity Entity, key any) error {
	return &EntityError{Kind: ErrNotFound, Entity: entity, Key: keyString(key)}
}

// Conflict returns an ErrConflict failure for the given record
func Conflict(entity Entity, key any) error {
	return &EntityError{Kind: ErrConflict, Entity: entity, Key: keyString(key)}
}

// StorageFailure wraps an unexpected backend error
func StorageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func keyString(key any) string {
	if key == nil {
		return ""
	}
	return fmt.Sprint(key)
}

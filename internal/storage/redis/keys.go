package redis

import (
	"fmt"

	"github.com/mcoot/lanterngame/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "lantern"

func stationKey(id model.StationID) string {
	return fmt.Sprintf("%s:station:%d", keyPrefix, id)
}

// stationsIndexKey is the SET of all station keys
func stationsIndexKey() string {
	return keyPrefix + ":idx:stations"
}

func teamKey(id model.TeamID) string {
	return fmt.Sprintf("%s:team:%d", keyPrefix, id)
}

func teamsIndexKey() string {
	return keyPrefix + ":idx:teams"
}

// teamNameIndexKey maps a team name to its team id
func teamNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:team_name:%s", keyPrefix, name)
}

// teamShortNameIndexKey maps a short name to its team id
func teamShortNameIndexKey(short string) string {
	return fmt.Sprintf("%s:idx:team_short:%s", keyPrefix, short)
}

func roundKey() string {
	return keyPrefix + ":round"
}

func gameUserKey(userName string) string {
	return fmt.Sprintf("%s:game_user:%s", keyPrefix, userName)
}

func gameUsersIndexKey() string {
	return keyPrefix + ":idx:game_users"
}

// fakePasswordsKey is the SET of fake passwords
func fakePasswordsKey() string {
	return keyPrefix + ":fake_passwords"
}

// fakePasswordsMarkerKey records that the container exists, since Redis
// drops empty sets
func fakePasswordsMarkerKey() string {
	return keyPrefix + ":fake_passwords:exists"
}

func hackSessionKey(owner model.PlayerID) string {
	return fmt.Sprintf("%s:hack:%s", keyPrefix, owner)
}

func calibrationKey(id string) string {
	return fmt.Sprintf("%s:calibration:%s", keyPrefix, id)
}

// activeCalibrationKey points at the owner's unresolved mission id
func activeCalibrationKey(owner model.PlayerID) string {
	return fmt.Sprintf("%s:calibration:active:%s", keyPrefix, owner)
}

// calibrationsIndexKey is a ZSET of mission keys scored by creation time
func calibrationsIndexKey() string {
	return keyPrefix + ":idx:calibrations"
}

func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

func registeredPlayerKey(username string) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, username)
}

func walletKey(owner model.PlayerID) string {
	return fmt.Sprintf("%s:wallet:%s", keyPrefix, owner)
}

package storage

import (
	"context"
	"time"

	"github.com/mcoot/lanterngame/internal/model"
)

// Storage is the persistence facade the game engine is built on.
// Missing records fail with model.ErrNotFound, uniqueness violations with
// model.ErrConflict, and backend failures with model.ErrStorage.
// Every guarded update is a single conditional write: of two concurrent
// callers matching the same record, exactly one succeeds.
type Storage interface {
	StationStore
	TeamStore
	RoundStore
	CredentialStore
	HackSessionStore
	CalibrationStore
	PlayerStore
	WalletStore

	Close() error
}

// StationStore persists stations keyed by StationID
type StationStore interface {
	CreateStation(ctx context.Context, station *model.Station) error
	GetStation(ctx context.Context, id model.StationID) (*model.Station, error)
	// ListStations returns stations sorted by StationID ascending
	ListStations(ctx context.Context, activeOnly bool) ([]*model.Station, error)
	UpdateStation(ctx context.Context, id model.StationID, update model.StationUpdate) (*model.Station, error)
	AddStationSignal(ctx context.Context, id model.StationID, delta int) (*model.Station, error)
	// SetAllStationSignals is not transactional across stations; retrying is safe
	SetAllStationSignals(ctx context.Context, value int) error
	DeleteStation(ctx context.Context, id model.StationID) error
}

// TeamStore persists teams. TeamID, TeamName and ShortName are each unique.
type TeamStore interface {
	CreateTeam(ctx context.Context, team *model.Team) error
	GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error)
	// ListTeams returns teams sorted by TeamID ascending
	ListTeams(ctx context.Context) ([]*model.Team, error)
	UpdateTeam(ctx context.Context, id model.TeamID, update model.TeamUpdate) (*model.Team, error)
	IncrementTeamPoints(ctx context.Context, id model.TeamID, delta int) (*model.Team, error)
	DeleteTeam(ctx context.Context, id model.TeamID) error
}

// RoundStore persists the singleton round
type RoundStore interface {
	CreateRoundIfAbsent(ctx context.Context, round *model.Round) (bool, error)
	GetRound(ctx context.Context) (*model.Round, error)
	UpdateRound(ctx context.Context, update model.RoundUpdate) (*model.Round, error)
}

// CredentialStore persists the decoy identity and password pools
type CredentialStore interface {
	CreateGameUserIfAbsent(ctx context.Context, user *model.GameUser) (bool, error)
	// ListGameUsers returns game users sorted by UserName
	ListGameUsers(ctx context.Context) ([]*model.GameUser, error)
	CreateFakePasswordContainerIfAbsent(ctx context.Context) (bool, error)
	// AddFakePasswords adds with set semantics and returns the full set
	AddFakePasswords(ctx context.Context, passwords []string) ([]string, error)
	GetFakePasswords(ctx context.Context) ([]string, error)
}

// HackSessionStore persists at most one hack session per owner
type HackSessionStore interface {
	// ReplaceHackSession stores the session and returns the one it displaced, if any
	ReplaceHackSession(ctx context.Context, session *model.HackSession) (*model.HackSession, error)
	GetHackSession(ctx context.Context, owner model.PlayerID, filter model.HackSessionFilter) (*model.HackSession, error)
	// DecrementHackTries is guarded on done=false and triesLeft>0
	DecrementHackTries(ctx context.Context, owner model.PlayerID) (*model.HackSession, error)
	// ResolveHackSession is guarded on owner, stationID and done=false
	ResolveHackSession(ctx context.Context, owner model.PlayerID, stationID model.StationID, resolution model.HackResolution) (*model.HackSession, error)
}

// CalibrationStore persists calibration missions. At most one mission per
// owner has completed=false; a second insert fails with model.ErrConflict.
type CalibrationStore interface {
	CreateCalibrationMission(ctx context.Context, mission *model.CalibrationMission) error
	GetActiveCalibrationMission(ctx context.Context, owner model.PlayerID) (*model.CalibrationMission, error)
	// ListCalibrationMissions returns missions sorted by TimeCreated ascending
	ListCalibrationMissions(ctx context.Context, filter model.CalibrationFilter) ([]*model.CalibrationMission, error)
	// ResolveCalibrationMission is guarded on owner and completed=false, and on
	// the mission ID unless missionID is empty
	ResolveCalibrationMission(ctx context.Context, owner model.PlayerID, missionID string, cancelled bool, at time.Time) (*model.CalibrationMission, error)
	DeleteActiveCalibrationMission(ctx context.Context, owner model.PlayerID) error
}

// PlayerStore persists player identities
type PlayerStore interface {
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)

	// CreateRegisteredPlayer fails with model.ErrConflict if the username is taken
	CreateRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)
}

// WalletStore persists per-player balances
type WalletStore interface {
	AddToWallet(ctx context.Context, owner model.PlayerID, amount int) (int, error)
	GetWalletBalance(ctx context.Context, owner model.PlayerID) (int, error)
}

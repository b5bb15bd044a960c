package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	stations          map[model.StationID]*model.Station
	teams             map[model.TeamID]*model.Team
	round             *model.Round
	gameUsers         map[string]*model.GameUser
	fakePasswords     *model.FakePasswordContainer
	hackSessions      map[model.PlayerID]*model.HackSession
	missions          []*model.CalibrationMission
	players           map[model.PlayerID]*model.Player
	registeredPlayers map[string]*model.RegisteredPlayer
	wallets           map[model.PlayerID]int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		stations:          make(map[model.StationID]*model.Station),
		teams:             make(map[model.TeamID]*model.Team),
		gameUsers:         make(map[string]*model.GameUser),
		hackSessions:      make(map[model.PlayerID]*model.HackSession),
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[string]*model.RegisteredPlayer),
		wallets:           make(map[model.PlayerID]int),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

// Station operations

func (s *Storage) CreateStation(ctx context.Context, station *model.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stations[station.StationID]; ok {
		return model.Conflict(model.EntityStation, station.StationID)
	}
	s.stations[station.StationID] = station.Clone()
	return nil
}

func (s *Storage) GetStation(ctx context.Context, id model.StationID) (*model.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	station, ok := s.stations[id]
	if !ok {
		return nil, model.NotFound(model.EntityStation, id)
	}
	return station.Clone(), nil
}

func (s *Storage) ListStations(ctx context.Context, activeOnly bool) ([]*model.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stations := make([]*model.Station, 0, len(s.stations))
	for _, station := range s.stations {
		if activeOnly && !station.IsActive {
			continue
		}
		stations = append(stations, station.Clone())
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].StationID < stations[j].StationID })
	return stations, nil
}

func (s *Storage) UpdateStation(ctx context.Context, id model.StationID, update model.StationUpdate) (*model.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	station, ok := s.stations[id]
	if !ok {
		return nil, model.NotFound(model.EntityStation, id)
	}
	station.Apply(update)
	station.UpdatedAt = time.Now()
	return station.Clone(), nil
}

func (s *Storage) AddStationSignal(ctx context.Context, id model.StationID, delta int) (*model.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	station, ok := s.stations[id]
	if !ok {
		return nil, model.NotFound(model.EntityStation, id)
	}
	station.SignalValue += delta
	station.UpdatedAt = time.Now()
	return station.Clone(), nil
}

func (s *Storage) SetAllStationSignals(ctx context.Context, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, station := range s.stations {
		station.SignalValue = value
	}
	return nil
}

func (s *Storage) DeleteStation(ctx context.Context, id model.StationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stations, id)
	return nil
}

// Team operations

func (s *Storage) CreateTeam(ctx context.Context, team *model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTeamUnique(team.TeamID, team.TeamName, team.ShortName, true); err != nil {
		return err
	}
	t := *team
	s.teams[team.TeamID] = &t
	return nil
}

// checkTeamUnique must be called with the lock held
func (s *Storage) checkTeamUnique(id model.TeamID, name, short string, checkID bool) error {
	for _, existing := range s.teams {
		switch {
		case checkID && existing.TeamID == id:
			return model.Conflict(model.EntityTeam, id)
		case existing.TeamID == id:
			continue
		case existing.TeamName == name:
			return model.Conflict(model.EntityTeam, name)
		case existing.ShortName == short:
			return model.Conflict(model.EntityTeam, short)
		}
	}
	return nil
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, model.NotFound(model.EntityTeam, id)
	}
	t := *team
	return &t, nil
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	teams := make([]*model.Team, 0, len(s.teams))
	for _, team := range s.teams {
		t := *team
		teams = append(teams, &t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].TeamID < teams[j].TeamID })
	return teams, nil
}

func (s *Storage) UpdateTeam(ctx context.Context, id model.TeamID, update model.TeamUpdate) (*model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, model.NotFound(model.EntityTeam, id)
	}
	next := *team
	next.Apply(update)
	if err := s.checkTeamUnique(id, next.TeamName, next.ShortName, false); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now()
	*team = next
	return &next, nil
}

func (s *Storage) IncrementTeamPoints(ctx context.Context, id model.TeamID, delta int) (*model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, model.NotFound(model.EntityTeam, id)
	}
	team.Points += delta
	team.UpdatedAt = time.Now()
	t := *team
	return &t, nil
}

func (s *Storage) DeleteTeam(ctx context.Context, id model.TeamID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.teams, id)
	return nil
}

// Round operations

func (s *Storage) CreateRoundIfAbsent(ctx context.Context, round *model.Round) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round != nil {
		return false, nil
	}
	r := *round
	s.round = &r
	return true, nil
}

func (s *Storage) GetRound(ctx context.Context) (*model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.round == nil {
		return nil, model.NotFound(model.EntityRound, nil)
	}
	r := *s.round
	return &r, nil
}

func (s *Storage) UpdateRound(ctx context.Context, update model.RoundUpdate) (*model.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil {
		return nil, model.NotFound(model.EntityRound, nil)
	}
	s.round.Apply(update)
	r := *s.round
	return &r, nil
}

// Credential operations

func (s *Storage) CreateGameUserIfAbsent(ctx context.Context, user *model.GameUser) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gameUsers[user.UserName]; ok {
		return false, nil
	}
	u := *user
	u.Passwords = slices.Clone(user.Passwords)
	s.gameUsers[user.UserName] = &u
	return true, nil
}

func (s *Storage) ListGameUsers(ctx context.Context) ([]*model.GameUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*model.GameUser, 0, len(s.gameUsers))
	for _, user := range s.gameUsers {
		u := *user
		u.Passwords = slices.Clone(user.Passwords)
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserName < users[j].UserName })
	return users, nil
}

func (s *Storage) CreateFakePasswordContainerIfAbsent(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fakePasswords != nil {
		return false, nil
	}
	s.fakePasswords = &model.FakePasswordContainer{Passwords: []string{}}
	return true, nil
}

func (s *Storage) AddFakePasswords(ctx context.Context, passwords []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fakePasswords == nil {
		return nil, model.NotFound(model.EntityFakePasswords, nil)
	}
	for _, p := range passwords {
		if !slices.Contains(s.fakePasswords.Passwords, p) {
			s.fakePasswords.Passwords = append(s.fakePasswords.Passwords, p)
		}
	}
	return slices.Clone(s.fakePasswords.Passwords), nil
}

func (s *Storage) GetFakePasswords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fakePasswords == nil {
		return nil, model.NotFound(model.EntityFakePasswords, nil)
	}
	return slices.Clone(s.fakePasswords.Passwords), nil
}

// Hack session operations

func (s *Storage) ReplaceHackSession(ctx context.Context, session *model.HackSession) (*model.HackSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.hackSessions[session.Owner]
	s.hackSessions[session.Owner] = session.Clone()
	return previous, nil
}

func (s *Storage) GetHackSession(ctx context.Context, owner model.PlayerID, filter model.HackSessionFilter) (*model.HackSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.hackSessions[owner]
	if !ok || !filter.Match(session) {
		return nil, model.NotFound(model.EntityHackSession, owner)
	}
	return session.Clone(), nil
}

func (s *Storage) DecrementHackTries(ctx context.Context, owner model.PlayerID) (*model.HackSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.hackSessions[owner]
	if !ok || session.Done || session.TriesLeft <= 0 {
		return nil, model.NotFound(model.EntityHackSession, owner)
	}
	session.TriesLeft--
	return session.Clone(), nil
}

func (s *Storage) ResolveHackSession(ctx context.Context, owner model.PlayerID, stationID model.StationID, resolution model.HackResolution) (*model.HackSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.hackSessions[owner]
	if !ok || session.Done || session.StationID != stationID {
		return nil, model.NotFound(model.EntityHackSession, owner)
	}
	session.Apply(resolution)
	return session.Clone(), nil
}

// Calibration mission operations

func (s *Storage) CreateCalibrationMission(ctx context.Context, mission *model.CalibrationMission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeMission(mission.Owner) != nil {
		return model.Conflict(model.EntityCalibrationMission, mission.Owner)
	}
	s.missions = append(s.missions, mission.Clone())
	return nil
}

// activeMission must be called with the lock held
func (s *Storage) activeMission(owner model.PlayerID) *model.CalibrationMission {
	for _, m := range s.missions {
		if m.Owner == owner && !m.Completed {
			return m
		}
	}
	return nil
}

func (s *Storage) GetActiveCalibrationMission(ctx context.Context, owner model.PlayerID) (*model.CalibrationMission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.activeMission(owner)
	if m == nil {
		return nil, model.NotFound(model.EntityCalibrationMission, owner)
	}
	return m.Clone(), nil
}

func (s *Storage) ListCalibrationMissions(ctx context.Context, filter model.CalibrationFilter) ([]*model.CalibrationMission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	missions := make([]*model.CalibrationMission, 0)
	for _, m := range s.missions {
		if filter.Match(m) {
			missions = append(missions, m.Clone())
		}
	}
	sort.SliceStable(missions, func(i, j int) bool { return missions[i].TimeCreated.Before(missions[j].TimeCreated) })
	return missions, nil
}

func (s *Storage) ResolveCalibrationMission(ctx context.Context, owner model.PlayerID, missionID string, cancelled bool, at time.Time) (*model.CalibrationMission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.activeMission(owner)
	if m == nil || (missionID != "" && m.ID != missionID) {
		return nil, model.NotFound(model.EntityCalibrationMission, owner)
	}
	m.Resolve(cancelled, at)
	return m.Clone(), nil
}

func (s *Storage) DeleteActiveCalibrationMission(ctx context.Context, owner model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.missions {
		if m.Owner == owner && !m.Completed {
			s.missions = slices.Delete(s.missions, i, i+1)
			return nil
		}
	}
	return model.NotFound(model.EntityCalibrationMission, owner)
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[player.ID] = &p
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.NotFound(model.EntityPlayer, id)
	}
	p := *player
	return &p, nil
}

func (s *Storage) CreateRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registeredPlayers[rp.Username]; ok {
		return model.Conflict(model.EntityPlayer, rp.Username)
	}
	r := *rp
	s.registeredPlayers[rp.Username] = &r
	return nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[username]
	if !ok {
		return nil, model.NotFound(model.EntityPlayer, username)
	}
	r := *rp
	return &r, nil
}

// Wallet operations

func (s *Storage) AddToWallet(ctx context.Context, owner model.PlayerID, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[owner] += amount
	return s.wallets[owner], nil
}

func (s *Storage) GetWalletBalance(ctx context.Context, owner model.PlayerID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallets[owner], nil
}

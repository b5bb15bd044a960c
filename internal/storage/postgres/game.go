package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mcoot/lanterngame/internal/model"
)

func columnList(cols []string) string {
	return strings.Join(cols, ", ")
}

func toJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Credential operations

func (s *Storage) CreateGameUserIfAbsent(ctx context.Context, user *model.GameUser) (bool, error) {
	passwords, err := toJSON(user.Passwords)
	if err != nil {
		return false, wrap("create game user", err)
	}
	var stationID any
	if user.StationID != nil {
		stationID = int(*user.StationID)
	}

	res, err := s.exec(ctx, psql.Insert("game_users").
		Columns("user_name", "passwords", "station_id").
		Values(user.UserName, passwords, stationID).
		Suffix("ON CONFLICT (user_name) DO NOTHING"))
	if err != nil {
		return false, wrap("create game user", err)
	}
	n, err := res.RowsAffected()
	return n == 1, wrap("create game user", err)
}

func scanGameUser(row scanner) (*model.GameUser, error) {
	var u model.GameUser
	var passwords []byte
	var stationID sql.NullInt64
	if err := row.Scan(&u.UserName, &passwords, &stationID); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(passwords, &u.Passwords); err != nil {
		return nil, err
	}
	if stationID.Valid {
		id := model.StationID(stationID.Int64)
		u.StationID = &id
	}
	return &u, nil
}

func (s *Storage) ListGameUsers(ctx context.Context) ([]*model.GameUser, error) {
	q := psql.Select("user_name", "passwords", "station_id").From("game_users")
	users, err := getMany(ctx, s, q, scanGameUser)
	if err != nil {
		return nil, wrap("list game users", err)
	}
	// Sorted here so ordering matches the other backends regardless of collation
	sort.Slice(users, func(i, j int) bool { return users[i].UserName < users[j].UserName })
	return users, nil
}

func (s *Storage) CreateFakePasswordContainerIfAbsent(ctx context.Context) (bool, error) {
	res, err := s.exec(ctx, psql.Insert("fake_password_containers").
		Columns("id").Values(1).
		Suffix("ON CONFLICT (id) DO NOTHING"))
	if err != nil {
		return false, wrap("create fake password container", err)
	}
	n, err := res.RowsAffected()
	return n == 1, wrap("create fake password container", err)
}

func (s *Storage) AddFakePasswords(ctx context.Context, passwords []string) ([]string, error) {
	if err := s.requireFakePasswordContainer(ctx); err != nil {
		return nil, err
	}

	if len(passwords) > 0 {
		q := psql.Insert("fake_passwords").Columns("password").Suffix("ON CONFLICT (password) DO NOTHING")
		for _, p := range passwords {
			q = q.Values(p)
		}
		if _, err := s.exec(ctx, q); err != nil {
			return nil, wrap("add fake passwords", err)
		}
	}
	return s.fakePasswords(ctx)
}

func (s *Storage) GetFakePasswords(ctx context.Context) ([]string, error) {
	if err := s.requireFakePasswordContainer(ctx); err != nil {
		return nil, err
	}
	return s.fakePasswords(ctx)
}

func (s *Storage) requireFakePasswordContainer(ctx context.Context) error {
	row, err := s.queryRow(ctx, psql.Select("count(*)").From("fake_password_containers"))
	if err != nil {
		return wrap("get fake passwords", err)
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return wrap("get fake passwords", err)
	}
	if n == 0 {
		return model.NotFound(model.EntityFakePasswords, nil)
	}
	return nil
}

func (s *Storage) fakePasswords(ctx context.Context) ([]string, error) {
	rows, err := s.query(ctx, psql.Select("password").From("fake_passwords"))
	if err != nil {
		return nil, wrap("get fake passwords", err)
	}
	defer rows.Close()

	passwords := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, wrap("get fake passwords", err)
		}
		passwords = append(passwords, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("get fake passwords", err)
	}
	sort.Strings(passwords)
	return passwords, nil
}

// Hack session operations

var hackColumns = []string{
	"owner", "station_id", "tries_left", "game_users", "done",
	"was_successful", "coordinates", "started_at", "resolved_at",
}

func scanHackSession(row scanner) (*model.HackSession, error) {
	var h model.HackSession
	var users, coords []byte
	var resolvedAt sql.NullTime
	err := row.Scan(&h.Owner, &h.StationID, &h.TriesLeft, &users, &h.Done,
		&h.WasSuccessful, &coords, &h.StartedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(users, &h.GameUsers); err != nil {
		return nil, err
	}
	if coords != nil {
		h.Coordinates = &model.Coordinates{}
		if err := json.Unmarshal(coords, h.Coordinates); err != nil {
			return nil, err
		}
	}
	h.ResolvedAt = nullTime(resolvedAt)
	return &h, nil
}

func nullableJSON[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	return toJSON(v)
}

// upsertHackSession overwrites every column of an existing row for the owner
var upsertHackSession = "ON CONFLICT (owner) DO UPDATE SET " + excludedList(hackColumns[1:])

func excludedList(cols []string) string {
	set := make([]string, len(cols))
	for i, c := range cols {
		set[i] = c + " = EXCLUDED." + c
	}
	return strings.Join(set, ", ")
}

// ReplaceHackSession locks the owner's current row, if any, and upserts the
// new session over it. Concurrent first starts for one owner serialize on the
// primary key instead of failing.
func (s *Storage) ReplaceHackSession(ctx context.Context, session *model.HackSession) (*model.HackSession, error) {
	users, err := toJSON(session.GameUsers)
	if err != nil {
		return nil, wrap("replace hack session", err)
	}
	coords, err := nullableJSON(session.Coordinates)
	if err != nil {
		return nil, wrap("replace hack session", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap("replace hack session", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.log.Err(rbErr).Str("func", "ReplaceHackSession").Msg("rollback failed")
		}
	}()

	query, args, err := psql.Select(hackColumns...).From("hack_sessions").
		Where(sq.Eq{"owner": string(session.Owner)}).
		Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, wrap("replace hack session", err)
	}
	previous, err := scanHackSession(tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		previous, err = nil, nil
	}
	if err != nil {
		return nil, wrap("replace hack session", err)
	}

	query, args, err = psql.Insert("hack_sessions").Columns(hackColumns...).Values(
		string(session.Owner), int(session.StationID), session.TriesLeft, users, session.Done,
		session.WasSuccessful, coords, session.StartedAt, session.ResolvedAt,
	).Suffix(upsertHackSession).ToSql()
	if err != nil {
		return nil, wrap("replace hack session", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, wrap("replace hack session", err)
	}

	return previous, wrap("replace hack session", tx.Commit())
}

func (s *Storage) GetHackSession(ctx context.Context, owner model.PlayerID, filter model.HackSessionFilter) (*model.HackSession, error) {
	where := sq.Eq{"owner": string(owner)}
	if filter.StationID != nil {
		where["station_id"] = int(*filter.StationID)
	}
	if filter.Done != nil {
		where["done"] = *filter.Done
	}

	q := psql.Select(hackColumns...).From("hack_sessions").Where(where)
	session, err := getOne(ctx, s, q, scanHackSession, model.NotFound(model.EntityHackSession, owner))
	return session, wrap("get hack session", err)
}

func (s *Storage) DecrementHackTries(ctx context.Context, owner model.PlayerID) (*model.HackSession, error) {
	q := psql.Update("hack_sessions").
		Set("tries_left", sq.Expr("tries_left - 1")).
		Where(sq.Eq{"owner": string(owner), "done": false}).
		Where(sq.Gt{"tries_left": 0}).
		Suffix("RETURNING " + columnList(hackColumns))
	session, err := getOne(ctx, s, q, scanHackSession, model.NotFound(model.EntityHackSession, owner))
	return session, wrap("decrement hack tries", err)
}

func (s *Storage) ResolveHackSession(ctx context.Context, owner model.PlayerID, stationID model.StationID, resolution model.HackResolution) (*model.HackSession, error) {
	set := map[string]any{
		"done":           true,
		"was_successful": resolution.WasSuccessful,
		"resolved_at":    resolution.ResolvedAt,
	}
	if resolution.Coordinates != nil {
		coords, err := toJSON(resolution.Coordinates)
		if err != nil {
			return nil, wrap("resolve hack session", err)
		}
		set["coordinates"] = coords
	}

	q := psql.Update("hack_sessions").SetMap(set).
		Where(sq.Eq{"owner": string(owner), "station_id": int(stationID), "done": false}).
		Suffix("RETURNING " + columnList(hackColumns))
	session, err := getOne(ctx, s, q, scanHackSession, model.NotFound(model.EntityHackSession, owner))
	return session, wrap("resolve hack session", err)
}

// Calibration mission operations

var calibrationColumns = []string{
	"id", "owner", "station_id", "code", "time_created", "time_completed", "cancelled", "completed",
}

func scanCalibration(row scanner) (*model.CalibrationMission, error) {
	var m model.CalibrationMission
	var completedAt sql.NullTime
	err := row.Scan(&m.ID, &m.Owner, &m.StationID, &m.Code, &m.TimeCreated, &completedAt, &m.Cancelled, &m.Completed)
	if err != nil {
		return nil, err
	}
	m.TimeCompleted = nullTime(completedAt)
	return &m, nil
}

func (s *Storage) CreateCalibrationMission(ctx context.Context, mission *model.CalibrationMission) error {
	_, err := s.exec(ctx, psql.Insert("calibration_missions").Columns(calibrationColumns...).Values(
		mission.ID, string(mission.Owner), int(mission.StationID), mission.Code,
		mission.TimeCreated, mission.TimeCompleted, mission.Cancelled, mission.Completed,
	))
	if isUniqueViolation(err) {
		return model.Conflict(model.EntityCalibrationMission, mission.Owner)
	}
	return wrap("create calibration mission", err)
}

func (s *Storage) GetActiveCalibrationMission(ctx context.Context, owner model.PlayerID) (*model.CalibrationMission, error) {
	q := psql.Select(calibrationColumns...).From("calibration_missions").
		Where(sq.Eq{"owner": string(owner), "completed": false})
	mission, err := getOne(ctx, s, q, scanCalibration, model.NotFound(model.EntityCalibrationMission, owner))
	return mission, wrap("get active calibration mission", err)
}

func (s *Storage) ListCalibrationMissions(ctx context.Context, filter model.CalibrationFilter) ([]*model.CalibrationMission, error) {
	where := sq.Eq{}
	if filter.Owner != nil {
		where["owner"] = string(*filter.Owner)
	}
	if filter.Completed != nil {
		where["completed"] = *filter.Completed
	}

	q := psql.Select(calibrationColumns...).From("calibration_missions").OrderBy("time_created ASC")
	if len(where) > 0 {
		q = q.Where(where)
	}
	missions, err := getMany(ctx, s, q, scanCalibration)
	return missions, wrap("list calibration missions", err)
}

func (s *Storage) ResolveCalibrationMission(ctx context.Context, owner model.PlayerID, missionID string, cancelled bool, at time.Time) (*model.CalibrationMission, error) {
	where := sq.Eq{"owner": string(owner), "completed": false}
	if missionID != "" {
		where["id"] = missionID
	}
	q := psql.Update("calibration_missions").SetMap(map[string]any{
		"completed":      true,
		"cancelled":      cancelled,
		"time_completed": at,
	}).
		Where(where).
		Suffix("RETURNING " + columnList(calibrationColumns))
	mission, err := getOne(ctx, s, q, scanCalibration, model.NotFound(model.EntityCalibrationMission, owner))
	return mission, wrap("resolve calibration mission", err)
}

func (s *Storage) DeleteActiveCalibrationMission(ctx context.Context, owner model.PlayerID) error {
	res, err := s.exec(ctx, psql.Delete("calibration_missions").
		Where(sq.Eq{"owner": string(owner), "completed": false}))
	if err != nil {
		return wrap("delete calibration mission", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("delete calibration mission", err)
	}
	if n == 0 {
		return model.NotFound(model.EntityCalibrationMission, owner)
	}
	return nil
}

// Player operations

var playerColumns = []string{"id", "display_name", "is_guest", "team_id", "created_at"}

func scanPlayer(row scanner) (*model.Player, error) {
	var p model.Player
	var teamID sql.NullInt64
	if err := row.Scan(&p.ID, &p.DisplayName, &p.IsGuest, &teamID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if teamID.Valid {
		id := model.TeamID(teamID.Int64)
		p.TeamID = &id
	}
	return &p, nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	var teamID any
	if player.TeamID != nil {
		teamID = int(*player.TeamID)
	}
	_, err := s.exec(ctx, psql.Insert("players").Columns(playerColumns...).
		Values(string(player.ID), player.DisplayName, player.IsGuest, teamID, player.CreatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, " +
			"is_guest = EXCLUDED.is_guest, team_id = EXCLUDED.team_id"))
	return wrap("save player", err)
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	q := psql.Select(playerColumns...).From("players").Where(sq.Eq{"id": string(id)})
	player, err := getOne(ctx, s, q, scanPlayer, model.NotFound(model.EntityPlayer, id))
	return player, wrap("get player", err)
}

var registeredPlayerColumns = []string{"username", "player_id", "password_hash", "created_at", "updated_at"}

func scanRegisteredPlayer(row scanner) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	if err := row.Scan(&rp.Username, &rp.PlayerID, &rp.PasswordHash, &rp.CreatedAt, &rp.UpdatedAt); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) CreateRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	_, err := s.exec(ctx, psql.Insert("registered_players").Columns(registeredPlayerColumns...).
		Values(rp.Username, string(rp.PlayerID), rp.PasswordHash, rp.CreatedAt, rp.UpdatedAt))
	if isUniqueViolation(err) {
		return model.Conflict(model.EntityPlayer, rp.Username)
	}
	return wrap("create registered player", err)
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	q := psql.Select(registeredPlayerColumns...).From("registered_players").Where(sq.Eq{"username": username})
	rp, err := getOne(ctx, s, q, scanRegisteredPlayer, model.NotFound(model.EntityPlayer, username))
	return rp, wrap("get registered player", err)
}

// Wallet operations

func (s *Storage) AddToWallet(ctx context.Context, owner model.PlayerID, amount int) (int, error) {
	row, err := s.queryRow(ctx, psql.Insert("wallets").Columns("owner", "balance").
		Values(string(owner), amount).
		Suffix("ON CONFLICT (owner) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance RETURNING balance"))
	if err != nil {
		return 0, wrap("add to wallet", err)
	}
	var balance int
	if err := row.Scan(&balance); err != nil {
		return 0, wrap("add to wallet", err)
	}
	return balance, nil
}

func (s *Storage) GetWalletBalance(ctx context.Context, owner model.PlayerID) (int, error) {
	row, err := s.queryRow(ctx, psql.Select("balance").From("wallets").Where(sq.Eq{"owner": string(owner)}))
	if err != nil {
		return 0, wrap("get wallet balance", err)
	}
	var balance int
	err = row.Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, wrap("get wallet balance", err)
}

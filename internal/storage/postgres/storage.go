package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
	"github.com/mcoot/lanterngame/migrations"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Storage is a Postgres-backed implementation of the storage interface.
// Guarded updates are single UPDATE ... WHERE statements; the per-owner
// active calibration mission is enforced by a partial unique index.
type Storage struct {
	db  *sql.DB
	log *logger.Logger
}

// Open connects to Postgres, optionally applying migrations
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*Storage, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "postgres.Open").Msg("error opening database")
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "postgres.Open").Msg("error connecting database (ping)")
		_ = db.Close()
		return nil, err
	}

	if cfg.Migrate {
		if err := migrations.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	log.Info().Str("func", "postgres.Open").Msg("connected to database")

	return NewWithDB(db, log), nil
}

// NewWithDB wraps an existing connection (for testing)
func NewWithDB(db *sql.DB, log *logger.Logger) *Storage {
	return &Storage{db: db, log: log}
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func postgresError(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return postgresError(err) == pgerrcode.UniqueViolation
}

// Unique constraints on teams, named in the migration
const (
	teamNameConstraint      = "teams_team_name_key"
	teamShortNameConstraint = "teams_short_name_key"
)

// teamConflict reports the identifying field that collided: the name or
// short name when their index was hit, the team ID otherwise
func teamConflict(err error, id model.TeamID, teamName, shortName string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.ConstraintName {
		case teamNameConstraint:
			return model.Conflict(model.EntityTeam, teamName)
		case teamShortNameConstraint:
			return model.Conflict(model.EntityTeam, shortName)
		}
	}
	return model.Conflict(model.EntityTeam, id)
}

// wrap passes domain errors through and marks everything else as a storage failure
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrConflict) || errors.Is(err, model.ErrInvalidState) {
		return err
	}
	return model.StorageFailure(op, err)
}

// queryRow runs a builder expected to return one row
func (s *Storage) queryRow(ctx context.Context, q sq.Sqlizer) (*sql.Row, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	return s.db.QueryRowContext(ctx, query, args...), nil
}

func (s *Storage) exec(ctx context.Context, q sq.Sqlizer) (sql.Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	return s.db.ExecContext(ctx, query, args...)
}

func (s *Storage) query(ctx context.Context, q sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	return s.db.QueryContext(ctx, query, args...)
}

// getOne runs q and scans a single row, mapping no rows to notFound
func getOne[T any](ctx context.Context, s *Storage, q sq.Sqlizer, scan func(scanner) (*T, error), notFound error) (*T, error) {
	row, err := s.queryRow(ctx, q)
	if err != nil {
		return nil, err
	}
	doc, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound
	}
	return doc, err
}

func getMany[T any](ctx context.Context, s *Storage, q sq.Sqlizer, scan func(scanner) (*T, error)) ([]*T, error) {
	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []*T{}
	for rows.Next() {
		doc, err := scan(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// Station operations

var stationColumns = []string{
	"station_id", "station_name", "signal_value", "is_active", "owner",
	"is_under_attack", "calibration_reward", "created_at", "updated_at",
}

func scanStation(row scanner) (*model.Station, error) {
	var st model.Station
	var owner sql.NullInt64
	err := row.Scan(&st.StationID, &st.StationName, &st.SignalValue, &st.IsActive, &owner,
		&st.IsUnderAttack, &st.CalibrationReward, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if owner.Valid {
		id := model.TeamID(owner.Int64)
		st.Owner = &id
	}
	return &st, nil
}

func (s *Storage) CreateStation(ctx context.Context, station *model.Station) error {
	var owner any
	if station.Owner != nil {
		owner = int(*station.Owner)
	}
	_, err := s.exec(ctx, psql.Insert("stations").Columns(stationColumns...).Values(
		int(station.StationID), station.StationName, station.SignalValue, station.IsActive, owner,
		station.IsUnderAttack, station.CalibrationReward, station.CreatedAt, station.UpdatedAt,
	))
	if isUniqueViolation(err) {
		return model.Conflict(model.EntityStation, station.StationID)
	}
	return wrap("create station", err)
}

func (s *Storage) GetStation(ctx context.Context, id model.StationID) (*model.Station, error) {
	q := psql.Select(stationColumns...).From("stations").Where(sq.Eq{"station_id": int(id)})
	station, err := getOne(ctx, s, q, scanStation, model.NotFound(model.EntityStation, id))
	return station, wrap("get station", err)
}

func (s *Storage) ListStations(ctx context.Context, activeOnly bool) ([]*model.Station, error) {
	q := psql.Select(stationColumns...).From("stations").OrderBy("station_id")
	if activeOnly {
		q = q.Where(sq.Eq{"is_active": true})
	}
	stations, err := getMany(ctx, s, q, scanStation)
	return stations, wrap("list stations", err)
}

// stationChanges maps an update onto SET clauses
func stationChanges(u model.StationUpdate) map[string]any {
	set := map[string]any{"updated_at": time.Now()}
	switch o := u.Ownership.(type) {
	case model.ClearOwner:
		set["owner"] = nil
		set["is_under_attack"] = false
	case model.SetOwner:
		set["owner"] = int(o.TeamID)
		set["is_under_attack"] = false
	case model.SetUnderAttack:
		set["is_under_attack"] = o.Value
	}
	if u.IsActive != nil {
		set["is_active"] = *u.IsActive
	}
	if u.StationName != nil {
		set["station_name"] = *u.StationName
	}
	if u.CalibrationReward != nil {
		set["calibration_reward"] = *u.CalibrationReward
	}
	return set
}

func (s *Storage) updateStation(ctx context.Context, op string, id model.StationID, set map[string]any) (*model.Station, error) {
	q := psql.Update("stations").SetMap(set).
		Where(sq.Eq{"station_id": int(id)}).
		Suffix("RETURNING " + columnList(stationColumns))
	station, err := getOne(ctx, s, q, scanStation, model.NotFound(model.EntityStation, id))
	return station, wrap(op, err)
}

func (s *Storage) UpdateStation(ctx context.Context, id model.StationID, update model.StationUpdate) (*model.Station, error) {
	return s.updateStation(ctx, "update station", id, stationChanges(update))
}

func (s *Storage) AddStationSignal(ctx context.Context, id model.StationID, delta int) (*model.Station, error) {
	return s.updateStation(ctx, "add station signal", id, map[string]any{
		"signal_value": sq.Expr("signal_value + ?", delta),
		"updated_at":   time.Now(),
	})
}

func (s *Storage) SetAllStationSignals(ctx context.Context, value int) error {
	_, err := s.exec(ctx, psql.Update("stations").Set("signal_value", value))
	return wrap("set station signals", err)
}

func (s *Storage) DeleteStation(ctx context.Context, id model.StationID) error {
	_, err := s.exec(ctx, psql.Delete("stations").Where(sq.Eq{"station_id": int(id)}))
	return wrap("delete station", err)
}

// Team operations

var teamColumns = []string{"team_id", "team_name", "short_name", "points", "is_active", "created_at", "updated_at"}

func scanTeam(row scanner) (*model.Team, error) {
	var t model.Team
	err := row.Scan(&t.TeamID, &t.TeamName, &t.ShortName, &t.Points, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Storage) CreateTeam(ctx context.Context, team *model.Team) error {
	_, err := s.exec(ctx, psql.Insert("teams").Columns(teamColumns...).Values(
		int(team.TeamID), team.TeamName, team.ShortName, team.Points, team.IsActive, team.CreatedAt, team.UpdatedAt,
	))
	if isUniqueViolation(err) {
		return teamConflict(err, team.TeamID, team.TeamName, team.ShortName)
	}
	return wrap("create team", err)
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	q := psql.Select(teamColumns...).From("teams").Where(sq.Eq{"team_id": int(id)})
	team, err := getOne(ctx, s, q, scanTeam, model.NotFound(model.EntityTeam, id))
	return team, wrap("get team", err)
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	teams, err := getMany(ctx, s, psql.Select(teamColumns...).From("teams").OrderBy("team_id"), scanTeam)
	return teams, wrap("list teams", err)
}

func teamChanges(u model.TeamUpdate) map[string]any {
	set := map[string]any{"updated_at": time.Now()}
	if u.IsActive != nil {
		set["is_active"] = *u.IsActive
	}
	if u.TeamName != nil {
		set["team_name"] = *u.TeamName
	}
	if u.ShortName != nil {
		set["short_name"] = *u.ShortName
	}
	switch {
	case u.ResetPoints:
		set["points"] = 0
	case u.Points != nil:
		set["points"] = *u.Points
	}
	return set
}

func (s *Storage) updateTeam(ctx context.Context, op string, id model.TeamID, set map[string]any) (*model.Team, error) {
	q := psql.Update("teams").SetMap(set).
		Where(sq.Eq{"team_id": int(id)}).
		Suffix("RETURNING " + columnList(teamColumns))
	team, err := getOne(ctx, s, q, scanTeam, model.NotFound(model.EntityTeam, id))
	if isUniqueViolation(err) {
		name, _ := set["team_name"].(string)
		short, _ := set["short_name"].(string)
		return nil, teamConflict(err, id, name, short)
	}
	return team, wrap(op, err)
}

func (s *Storage) UpdateTeam(ctx context.Context, id model.TeamID, update model.TeamUpdate) (*model.Team, error) {
	return s.updateTeam(ctx, "update team", id, teamChanges(update))
}

func (s *Storage) IncrementTeamPoints(ctx context.Context, id model.TeamID, delta int) (*model.Team, error) {
	return s.updateTeam(ctx, "increment team points", id, map[string]any{
		"points":     sq.Expr("points + ?", delta),
		"updated_at": time.Now(),
	})
}

func (s *Storage) DeleteTeam(ctx context.Context, id model.TeamID) error {
	_, err := s.exec(ctx, psql.Delete("teams").Where(sq.Eq{"team_id": int(id)}))
	return wrap("delete team", err)
}

// Round operations

// roundID is the primary key of the singleton round row
const roundID = 1

var roundColumns = []string{"is_active", "start_time", "end_time"}

func scanRound(row scanner) (*model.Round, error) {
	var r model.Round
	var start, end sql.NullTime
	if err := row.Scan(&r.IsActive, &start, &end); err != nil {
		return nil, err
	}
	r.StartTime = nullTime(start)
	r.EndTime = nullTime(end)
	return &r, nil
}

func (s *Storage) CreateRoundIfAbsent(ctx context.Context, round *model.Round) (bool, error) {
	res, err := s.exec(ctx, psql.Insert("rounds").
		Columns("id", "is_active", "start_time", "end_time").
		Values(roundID, round.IsActive, round.StartTime, round.EndTime).
		Suffix("ON CONFLICT (id) DO NOTHING"))
	if err != nil {
		return false, wrap("create round", err)
	}
	n, err := res.RowsAffected()
	return n == 1, wrap("create round", err)
}

func (s *Storage) GetRound(ctx context.Context) (*model.Round, error) {
	q := psql.Select(roundColumns...).From("rounds").Where(sq.Eq{"id": roundID})
	round, err := getOne(ctx, s, q, scanRound, model.NotFound(model.EntityRound, nil))
	return round, wrap("get round", err)
}

func (s *Storage) UpdateRound(ctx context.Context, update model.RoundUpdate) (*model.Round, error) {
	set := map[string]any{}
	if update.IsActive != nil {
		set["is_active"] = *update.IsActive
	}
	if update.StartTime != nil {
		set["start_time"] = *update.StartTime
	}
	if update.EndTime != nil {
		set["end_time"] = *update.EndTime
	}
	if len(set) == 0 {
		return s.GetRound(ctx)
	}

	q := psql.Update("rounds").SetMap(set).
		Where(sq.Eq{"id": roundID}).
		Suffix("RETURNING " + columnList(roundColumns))
	round, err := getOne(ctx, s, q, scanRound, model.NotFound(model.EntityRound, nil))
	return round, wrap("update round", err)
}

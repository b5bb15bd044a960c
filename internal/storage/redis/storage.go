package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage"
)

// errGuard is returned from a mutation when the document no longer
// matches the update's precondition
var errGuard = errors.New("guard did not match")

var errTooManyRetries = errors.New("optimistic transaction retries exhausted")

// Storage is a Redis-backed implementation of the storage interface.
// Documents are JSON blobs; guarded updates run as WATCH/MULTI transactions.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.TxRetries <= 0 {
		cfg.TxRetries = DefaultConfig().TxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

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

// watch runs fn in an optimistic transaction over keys, retrying when a
// concurrent writer changed a watched key first
func (s *Storage) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < s.cfg.TxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errTooManyRetries
}

// updateJSON applies mutate to the document at key in one guarded write.
// A mutate returning errGuard, or a missing key, yields notFound.
func updateJSON[T any](ctx context.Context, s *Storage, key string, notFound error, mutate func(*T) error) (*T, error) {
	var result *T
	err := s.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		if err != nil {
			return err
		}

		var doc T
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		if err := mutate(&doc); err != nil {
			if errors.Is(err, errGuard) {
				return notFound
			}
			return err
		}

		out, err := json.Marshal(&doc)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err == nil {
			result = &doc
		}
		return err
	}, key)
	return result, err
}

func getJSON[T any](ctx context.Context, s *Storage, key string, notFound error) (*T, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// mgetJSON fetches every key in one MGET, skipping keys that vanished
func mgetJSON[T any](ctx context.Context, s *Storage, keys []string) ([]*T, error) {
	if len(keys) == 0 {
		return []*T{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	docs := make([]*T, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Deleted between index read and fetch
		}
		var doc T
		if err := json.Unmarshal([]byte(str), &doc); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

// Station operations

func (s *Storage) CreateStation(ctx context.Context, station *model.Station) error {
	data, err := json.Marshal(station)
	if err != nil {
		return wrap("create station", err)
	}

	key := stationKey(station.StationID)
	ok, err := s.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return wrap("create station", err)
	}
	if !ok {
		return model.Conflict(model.EntityStation, station.StationID)
	}
	return wrap("create station", s.client.SAdd(ctx, stationsIndexKey(), key).Err())
}

func (s *Storage) GetStation(ctx context.Context, id model.StationID) (*model.Station, error) {
	station, err := getJSON[model.Station](ctx, s, stationKey(id), model.NotFound(model.EntityStation, id))
	return station, wrap("get station", err)
}

func (s *Storage) ListStations(ctx context.Context, activeOnly bool) ([]*model.Station, error) {
	keys, err := s.client.SMembers(ctx, stationsIndexKey()).Result()
	if err != nil {
		return nil, wrap("list stations", err)
	}

	all, err := mgetJSON[model.Station](ctx, s, keys)
	if err != nil {
		return nil, wrap("list stations", err)
	}

	stations := make([]*model.Station, 0, len(all))
	for _, station := range all {
		if activeOnly && !station.IsActive {
			continue
		}
		stations = append(stations, station)
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].StationID < stations[j].StationID })
	return stations, nil
}

func (s *Storage) UpdateStation(ctx context.Context, id model.StationID, update model.StationUpdate) (*model.Station, error) {
	station, err := updateJSON(ctx, s, stationKey(id), model.NotFound(model.EntityStation, id), func(st *model.Station) error {
		st.Apply(update)
		st.UpdatedAt = time.Now()
		return nil
	})
	return station, wrap("update station", err)
}

func (s *Storage) AddStationSignal(ctx context.Context, id model.StationID, delta int) (*model.Station, error) {
	station, err := updateJSON(ctx, s, stationKey(id), model.NotFound(model.EntityStation, id), func(st *model.Station) error {
		st.SignalValue += delta
		st.UpdatedAt = time.Now()
		return nil
	})
	return station, wrap("add station signal", err)
}

func (s *Storage) SetAllStationSignals(ctx context.Context, value int) error {
	stations, err := s.ListStations(ctx, false)
	if err != nil {
		return err
	}

	for _, station := range stations {
		_, err := updateJSON(ctx, s, stationKey(station.StationID), model.NotFound(model.EntityStation, station.StationID), func(st *model.Station) error {
			st.SignalValue = value
			return nil
		})
		// A station deleted mid-pass is simply skipped
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return wrap("set station signals", err)
		}
	}
	return nil
}

func (s *Storage) DeleteStation(ctx context.Context, id model.StationID) error {
	key := stationKey(id)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, stationsIndexKey(), key)
	_, err := pipe.Exec(ctx)
	return wrap("delete station", err)
}

// Team operations

func (s *Storage) CreateTeam(ctx context.Context, team *model.Team) error {
	data, err := json.Marshal(team)
	if err != nil {
		return wrap("create team", err)
	}

	key := teamKey(team.TeamID)
	nameKey := teamNameIndexKey(team.TeamName)
	shortKey := teamShortNameIndexKey(team.ShortName)
	id := strconv.Itoa(int(team.TeamID))

	err = s.watch(ctx, func(tx *redis.Tx) error {
		for conflictKey, value := range map[string]any{key: team.TeamID, nameKey: team.TeamName, shortKey: team.ShortName} {
			n, err := tx.Exists(ctx, conflictKey).Result()
			if err != nil {
				return err
			}
			if n > 0 {
				return model.Conflict(model.EntityTeam, value)
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.Set(ctx, nameKey, id, 0)
			pipe.Set(ctx, shortKey, id, 0)
			pipe.SAdd(ctx, teamsIndexKey(), key)
			return nil
		})
		return err
	}, key, nameKey, shortKey)
	return wrap("create team", err)
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	team, err := getJSON[model.Team](ctx, s, teamKey(id), model.NotFound(model.EntityTeam, id))
	return team, wrap("get team", err)
}

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	keys, err := s.client.SMembers(ctx, teamsIndexKey()).Result()
	if err != nil {
		return nil, wrap("list teams", err)
	}

	teams, err := mgetJSON[model.Team](ctx, s, keys)
	if err != nil {
		return nil, wrap("list teams", err)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].TeamID < teams[j].TeamID })
	return teams, nil
}

// UpdateTeam moves the name indexes along with the document when a team is renamed
func (s *Storage) UpdateTeam(ctx context.Context, id model.TeamID, update model.TeamUpdate) (*model.Team, error) {
	key := teamKey(id)
	watched := []string{key}
	if update.TeamName != nil {
		watched = append(watched, teamNameIndexKey(*update.TeamName))
	}
	if update.ShortName != nil {
		watched = append(watched, teamShortNameIndexKey(*update.ShortName))
	}
	idStr := strconv.Itoa(int(id))

	var result *model.Team
	err := s.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return model.NotFound(model.EntityTeam, id)
		}
		if err != nil {
			return err
		}

		var team model.Team
		if err := json.Unmarshal(data, &team); err != nil {
			return err
		}
		oldName, oldShort := team.TeamName, team.ShortName
		team.Apply(update)
		team.UpdatedAt = time.Now()

		if team.TeamName != oldName {
			if err := claimIndex(ctx, tx, teamNameIndexKey(team.TeamName), idStr, team.TeamName); err != nil {
				return err
			}
		}
		if team.ShortName != oldShort {
			if err := claimIndex(ctx, tx, teamShortNameIndexKey(team.ShortName), idStr, team.ShortName); err != nil {
				return err
			}
		}

		out, err := json.Marshal(&team)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			if team.TeamName != oldName {
				pipe.Del(ctx, teamNameIndexKey(oldName))
				pipe.Set(ctx, teamNameIndexKey(team.TeamName), idStr, 0)
			}
			if team.ShortName != oldShort {
				pipe.Del(ctx, teamShortNameIndexKey(oldShort))
				pipe.Set(ctx, teamShortNameIndexKey(team.ShortName), idStr, 0)
			}
			return nil
		})
		if err == nil {
			result = &team
		}
		return err
	}, watched...)
	return result, wrap("update team", err)
}

// claimIndex fails with a conflict when the index key belongs to another team
func claimIndex(ctx context.Context, tx *redis.Tx, indexKey, id string, value string) error {
	owner, err := tx.Get(ctx, indexKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	if owner != id {
		return model.Conflict(model.EntityTeam, value)
	}
	return nil
}

func (s *Storage) IncrementTeamPoints(ctx context.Context, id model.TeamID, delta int) (*model.Team, error) {
	team, err := updateJSON(ctx, s, teamKey(id), model.NotFound(model.EntityTeam, id), func(t *model.Team) error {
		t.Points += delta
		t.UpdatedAt = time.Now()
		return nil
	})
	return team, wrap("increment team points", err)
}

func (s *Storage) DeleteTeam(ctx context.Context, id model.TeamID) error {
	team, err := s.GetTeam(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	key := teamKey(id)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key, teamNameIndexKey(team.TeamName), teamShortNameIndexKey(team.ShortName))
	pipe.SRem(ctx, teamsIndexKey(), key)
	_, err = pipe.Exec(ctx)
	return wrap("delete team", err)
}

// Round operations

func (s *Storage) CreateRoundIfAbsent(ctx context.Context, round *model.Round) (bool, error) {
	data, err := json.Marshal(round)
	if err != nil {
		return false, wrap("create round", err)
	}
	created, err := s.client.SetNX(ctx, roundKey(), data, 0).Result()
	return created, wrap("create round", err)
}

func (s *Storage) GetRound(ctx context.Context) (*model.Round, error) {
	round, err := getJSON[model.Round](ctx, s, roundKey(), model.NotFound(model.EntityRound, nil))
	return round, wrap("get round", err)
}

func (s *Storage) UpdateRound(ctx context.Context, update model.RoundUpdate) (*model.Round, error) {
	round, err := updateJSON(ctx, s, roundKey(), model.NotFound(model.EntityRound, nil), func(r *model.Round) error {
		r.Apply(update)
		return nil
	})
	return round, wrap("update round", err)
}

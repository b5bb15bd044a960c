package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/lanterngame/internal/model"
)

// Credential operations

func (s *Storage) CreateGameUserIfAbsent(ctx context.Context, user *model.GameUser) (bool, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return false, wrap("create game user", err)
	}

	key := gameUserKey(user.UserName)
	created, err := s.client.SetNX(ctx, key, data, 0).Result()
	if err != nil || !created {
		return false, wrap("create game user", err)
	}
	return true, wrap("create game user", s.client.SAdd(ctx, gameUsersIndexKey(), key).Err())
}

func (s *Storage) ListGameUsers(ctx context.Context) ([]*model.GameUser, error) {
	keys, err := s.client.SMembers(ctx, gameUsersIndexKey()).Result()
	if err != nil {
		return nil, wrap("list game users", err)
	}

	users, err := mgetJSON[model.GameUser](ctx, s, keys)
	if err != nil {
		return nil, wrap("list game users", err)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserName < users[j].UserName })
	return users, nil
}

func (s *Storage) CreateFakePasswordContainerIfAbsent(ctx context.Context) (bool, error) {
	created, err := s.client.SetNX(ctx, fakePasswordsMarkerKey(), "1", 0).Result()
	return created, wrap("create fake password container", err)
}

func (s *Storage) AddFakePasswords(ctx context.Context, passwords []string) ([]string, error) {
	if err := s.requireFakePasswordContainer(ctx); err != nil {
		return nil, err
	}

	if len(passwords) > 0 {
		members := make([]any, len(passwords))
		for i, p := range passwords {
			members[i] = p
		}
		if err := s.client.SAdd(ctx, fakePasswordsKey(), members...).Err(); err != nil {
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
	n, err := s.client.Exists(ctx, fakePasswordsMarkerKey()).Result()
	if err != nil {
		return wrap("get fake passwords", err)
	}
	if n == 0 {
		return model.NotFound(model.EntityFakePasswords, nil)
	}
	return nil
}

func (s *Storage) fakePasswords(ctx context.Context) ([]string, error) {
	passwords, err := s.client.SMembers(ctx, fakePasswordsKey()).Result()
	if err != nil {
		return nil, wrap("get fake passwords", err)
	}
	sort.Strings(passwords)
	return passwords, nil
}

// Hack session operations

func (s *Storage) ReplaceHackSession(ctx context.Context, session *model.HackSession) (*model.HackSession, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, wrap("replace hack session", err)
	}

	old, err := s.client.GetSet(ctx, hackSessionKey(session.Owner), data).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("replace hack session", err)
	}

	var previous model.HackSession
	if err := json.Unmarshal(old, &previous); err != nil {
		return nil, wrap("replace hack session", err)
	}
	return &previous, nil
}

func (s *Storage) GetHackSession(ctx context.Context, owner model.PlayerID, filter model.HackSessionFilter) (*model.HackSession, error) {
	notFound := model.NotFound(model.EntityHackSession, owner)
	session, err := getJSON[model.HackSession](ctx, s, hackSessionKey(owner), notFound)
	if err != nil {
		return nil, wrap("get hack session", err)
	}
	if !filter.Match(session) {
		return nil, notFound
	}
	return session, nil
}

func (s *Storage) DecrementHackTries(ctx context.Context, owner model.PlayerID) (*model.HackSession, error) {
	session, err := updateJSON(ctx, s, hackSessionKey(owner), model.NotFound(model.EntityHackSession, owner), func(h *model.HackSession) error {
		if h.Done || h.TriesLeft <= 0 {
			return errGuard
		}
		h.TriesLeft--
		return nil
	})
	return session, wrap("decrement hack tries", err)
}

func (s *Storage) ResolveHackSession(ctx context.Context, owner model.PlayerID, stationID model.StationID, resolution model.HackResolution) (*model.HackSession, error) {
	session, err := updateJSON(ctx, s, hackSessionKey(owner), model.NotFound(model.EntityHackSession, owner), func(h *model.HackSession) error {
		if h.Done || h.StationID != stationID {
			return errGuard
		}
		h.Apply(resolution)
		return nil
	})
	return session, wrap("resolve hack session", err)
}

// Calibration mission operations

func (s *Storage) CreateCalibrationMission(ctx context.Context, mission *model.CalibrationMission) error {
	data, err := json.Marshal(mission)
	if err != nil {
		return wrap("create calibration mission", err)
	}

	activeKey := activeCalibrationKey(mission.Owner)
	key := calibrationKey(mission.ID)

	err = s.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, activeKey).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return model.Conflict(model.EntityCalibrationMission, mission.Owner)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.Set(ctx, activeKey, mission.ID, 0)
			pipe.ZAdd(ctx, calibrationsIndexKey(), redis.Z{
				Score:  float64(mission.TimeCreated.UnixNano()),
				Member: key,
			})
			return nil
		})
		return err
	}, activeKey)
	return wrap("create calibration mission", err)
}

func (s *Storage) GetActiveCalibrationMission(ctx context.Context, owner model.PlayerID) (*model.CalibrationMission, error) {
	notFound := model.NotFound(model.EntityCalibrationMission, owner)
	id, err := s.client.Get(ctx, activeCalibrationKey(owner)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, notFound
	}
	if err != nil {
		return nil, wrap("get active calibration mission", err)
	}

	mission, err := getJSON[model.CalibrationMission](ctx, s, calibrationKey(id), notFound)
	return mission, wrap("get active calibration mission", err)
}

func (s *Storage) ListCalibrationMissions(ctx context.Context, filter model.CalibrationFilter) ([]*model.CalibrationMission, error) {
	keys, err := s.client.ZRange(ctx, calibrationsIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, wrap("list calibration missions", err)
	}

	all, err := mgetJSON[model.CalibrationMission](ctx, s, keys)
	if err != nil {
		return nil, wrap("list calibration missions", err)
	}

	missions := make([]*model.CalibrationMission, 0, len(all))
	for _, m := range all {
		if filter.Match(m) {
			missions = append(missions, m)
		}
	}
	return missions, nil
}

func (s *Storage) ResolveCalibrationMission(ctx context.Context, owner model.PlayerID, missionID string, cancelled bool, at time.Time) (*model.CalibrationMission, error) {
	notFound := model.NotFound(model.EntityCalibrationMission, owner)
	activeKey := activeCalibrationKey(owner)

	var result *model.CalibrationMission
	err := s.watch(ctx, func(tx *redis.Tx) error {
		id, err := tx.Get(ctx, activeKey).Result()
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		if err != nil {
			return err
		}
		if missionID != "" && id != missionID {
			return notFound
		}

		key := calibrationKey(id)
		if err := tx.Watch(ctx, key).Err(); err != nil {
			return err
		}
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		if err != nil {
			return err
		}

		var mission model.CalibrationMission
		if err := json.Unmarshal(data, &mission); err != nil {
			return err
		}
		if mission.Completed {
			return notFound
		}
		mission.Resolve(cancelled, at)

		out, err := json.Marshal(&mission)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			pipe.Del(ctx, activeKey)
			return nil
		})
		if err == nil {
			result = &mission
		}
		return err
	}, activeKey)
	return result, wrap("resolve calibration mission", err)
}

func (s *Storage) DeleteActiveCalibrationMission(ctx context.Context, owner model.PlayerID) error {
	activeKey := activeCalibrationKey(owner)

	err := s.watch(ctx, func(tx *redis.Tx) error {
		id, err := tx.Get(ctx, activeKey).Result()
		if errors.Is(err, redis.Nil) {
			return model.NotFound(model.EntityCalibrationMission, owner)
		}
		if err != nil {
			return err
		}

		key := calibrationKey(id)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key, activeKey)
			pipe.ZRem(ctx, calibrationsIndexKey(), key)
			return nil
		})
		return err
	}, activeKey)
	return wrap("delete calibration mission", err)
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return wrap("save player", err)
	}
	return wrap("save player", s.client.Set(ctx, playerKey(player.ID), data, 0).Err())
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	player, err := getJSON[model.Player](ctx, s, playerKey(id), model.NotFound(model.EntityPlayer, id))
	return player, wrap("get player", err)
}

func (s *Storage) CreateRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return wrap("create registered player", err)
	}
	created, err := s.client.SetNX(ctx, registeredPlayerKey(rp.Username), data, 0).Result()
	if err != nil {
		return wrap("create registered player", err)
	}
	if !created {
		return model.Conflict(model.EntityPlayer, rp.Username)
	}
	return nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	rp, err := getJSON[model.RegisteredPlayer](ctx, s, registeredPlayerKey(username), model.NotFound(model.EntityPlayer, username))
	return rp, wrap("get registered player", err)
}

// Wallet operations

func (s *Storage) AddToWallet(ctx context.Context, owner model.PlayerID, amount int) (int, error) {
	balance, err := s.client.IncrBy(ctx, walletKey(owner), int64(amount)).Result()
	return int(balance), wrap("add to wallet", err)
}

func (s *Storage) GetWalletBalance(ctx context.Context, owner model.PlayerID) (int, error) {
	balance, err := s.client.Get(ctx, walletKey(owner)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return balance, wrap("get wallet balance", err)
}
